package request

import (
	"errors"
	"maps"
	"net/http"
	"slices"
)

var (
	ErrInvalidMethod = errors.New("invalid method")
	ErrNilParser     = errors.New("parser must not be nil")
	// ErrDuplicateHeader reports header keys that differ only in case.
	ErrDuplicateHeader = errors.New("duplicate header")
)

// Method is an HTTP verb.
type Method string

const (
	GET     Method = http.MethodGet
	POST    Method = http.MethodPost
	PUT     Method = http.MethodPut
	PATCH   Method = http.MethodPatch
	DELETE  Method = http.MethodDelete
	HEAD    Method = http.MethodHead
	OPTIONS Method = http.MethodOptions
)

// Valid reports whether m is one of the supported verbs.
func (m Method) Valid() bool {
	switch m {
	case GET, POST, PUT, PATCH, DELETE, HEAD, OPTIONS:
		return true
	}
	return false
}

func (m Method) String() string { return string(m) }

// Headers maps header names to values. A nil Headers means no custom
// headers are sent. Requests built with the options in this package never
// hold two keys that differ only in case.
type Headers map[string]string

// Clone returns a copy of h, preserving nil.
func (h Headers) Clone() Headers { return maps.Clone(h) }

// Param is a single query parameter. Value is rendered with fmt.Sprint.
type Param struct {
	Key   string
	Value any
}

// Params is an ordered list of query parameters. The composed query string
// follows slice order.
type Params []Param

// Clone returns a copy of p, preserving nil.
func (p Params) Clone() Params { return slices.Clone(p) }
