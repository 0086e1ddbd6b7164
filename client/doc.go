// Package client sends typed requests and delivers their decoded responses
// to a callback.
//
// # Building a Client
//
// Use [Build] to create a [Client] with functional options:
//
//	c, err := client.Build(
//		client.WithTimeout(10 * time.Second),
//		client.WithUserAgent("myapp/1.0"),
//	)
//
// Options can also come from a YAML file with [LoadConfig] and [WithConfig].
//
// # Sending Requests
//
// [Send] takes a [request.Request] and a handler typed to that request's
// response. It returns at once; the handler runs exactly once, later, on a
// goroutine owned by the transport:
//
//	req, err := request.New[User]("https://api.example.com/user")
//	client.Send(ctx, c, req, func(res result.Result[User]) {
//		user, err := res.Get()
//		...
//	})
//
// [Go] wraps the same call in a [Pending] for callers that prefer to wait
// on a channel.
//
// # Errors
//
// Every failure reaches the handler as a failed [result.Result]:
//
//   - [*MalformedURLError] when the url and query parameters do not form an absolute URL.
//   - [*TransportError] when the transport fails. It wraps [ErrEmptyResponse]
//     when the transport returned neither bytes nor an error, and
//     [*UnexpectedStatusError] when [WithStatusCheck] is enabled.
//   - [*parse.DecodeError] when the payload does not fit the response type.
//
// The context passed to Send carries values such as the trace parent. Its
// cancellation is not propagated to the call.
package client
