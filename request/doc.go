// Package request describes HTTP calls whose response type is fixed at
// compile time.
//
// A [Request] is parameterised by the type its response decodes into, so a
// client can only hand the response bytes to a parser for that type:
//
//	req, err := request.New[User]("https://api.example.com/user",
//		request.WithParam("id", 42),
//		request.WithHeader("Accept", "application/json"),
//	)
//
// Requests perform no I/O. They are immutable once built; every accessor
// returns a copy.
package request
