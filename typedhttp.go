// Package typedhttp sends HTTP requests whose responses decode into a type
// chosen at compile time.
//
// The pieces live in subpackages: [request] describes a call and binds its
// response type, [parse] turns bytes into that type, [result] carries the
// outcome, and [client] performs the call and hands the outcome to a
// callback.
package typedhttp

import (
	"github.com/adamwoolhether/typedhttp/client"
)

// NewClient instantiates a new *Client with the provided options.
// If not specified, a fresh http.Client over http.DefaultTransport is used.
func NewClient(opts ...client.Option) (*client.Client, error) {
	return client.Build(opts...)
}
