package client

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/adamwoolhether/typedhttp/request"
)

var errNotAbsolute = errors.New("scheme and host are required")

// Target composes the URL a request is sent to. Parameters are appended in
// order, the first prefixed with '?' (or '&' when the url already has a
// non-empty query) and the rest with '&'. Keys and values are
// query-escaped, and values are rendered with fmt.Sprint. A fragment in
// the url stays last.
func Target(d request.Descriptor) (*url.URL, error) {
	base, fragment, hasFragment := strings.Cut(d.URL(), "#")

	var sb strings.Builder
	sb.WriteString(base)

	sep := "?"
	if _, query, ok := strings.Cut(base, "?"); ok {
		sep = "&"
		if query == "" || strings.HasSuffix(query, "&") {
			sep = ""
		}
	}
	for _, p := range d.Parameters() {
		sb.WriteString(sep)
		sb.WriteString(url.QueryEscape(p.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(fmt.Sprint(p.Value)))
		sep = "&"
	}

	if hasFragment {
		sb.WriteByte('#')
		sb.WriteString(fragment)
	}

	raw := sb.String()

	u, err := url.Parse(raw)
	if err != nil {
		return nil, &MalformedURLError{URL: raw, Err: err}
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, &MalformedURLError{URL: raw, Err: errNotAbsolute}
	}

	return u, nil
}
