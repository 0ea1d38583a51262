package model

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go_mock_interceptor/utils"
)

const locationHeader = "Location"

// GenericResponse represents a generic HTTP response structure
type GenericResponse struct {
	StatusCode int
	Headers    map[string][]string
	Body       []byte
}

// Header returns the first value of key, matched case-insensitively.
func (g GenericResponse) Header(key string) string {
	if v := http.Header(g.Headers).Get(key); v != "" {
		return v
	}
	for k, vs := range g.Headers {
		if strings.EqualFold(k, key) && len(vs) > 0 {
			return vs[0]
		}
	}
	return ""
}

func (g GenericResponse) String() string {
	return fmt.Sprintf("Status: %d, Headers: %v, Body: %d bytes", g.StatusCode, g.Headers, len(g.Body))
}

// Produce builds the response the rule delivers for req. A response handler
// takes over status, headers and body. The second result is false when a
// static rule has no body for the request method.
func (m *MatchRule) Produce(req RequestInfo) (GenericResponse, bool) {
	if m.responseHandler != nil {
		resp := m.responseHandler(req)
		if resp.StatusCode == 0 {
			resp.StatusCode = http.StatusOK
		}
		if resp.Headers == nil {
			resp.Headers = map[string][]string{}
		}
		utils.GetLogger().Debugf("response handler of %s produced status %d", m.id, resp.StatusCode)
		return resp, true
	}

	method, ok := ParseHTTPMethod(req.GetMethod())
	if !ok {
		return GenericResponse{}, false
	}
	body, ok := m.responses[method]
	if !ok {
		return GenericResponse{}, false
	}

	headers := make(map[string][]string, len(m.headers))
	for k, v := range m.headers {
		headers[k] = []string{v}
	}
	return GenericResponse{
		StatusCode: m.statusCode,
		Headers:    headers,
		Body:       append([]byte(nil), body...),
	}, true
}

// RedirectLocation reports whether body is a raw redirect header block and
// returns its destination resolved against base. The block may open with an
// HTTP status line; every following line up to the first blank one must be a
// header, and the first Location header wins.
//
//	"Location: https://h/b\r\n" => https://h/b
func RedirectLocation(body []byte, base *url.URL) (*url.URL, bool) {
	lines := strings.Split(string(body), "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		if i == 0 && strings.HasPrefix(line, "HTTP/") {
			continue
		}
		if line == "" {
			return nil, false
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok || !isHeaderName(name) {
			return nil, false
		}
		if !strings.EqualFold(name, locationHeader) {
			continue
		}

		target, err := parseRedirectTarget(strings.TrimSpace(value))
		if err != nil {
			utils.GetLogger().Debugf("ignoring malformed redirect location %q: %v", value, err)
			return nil, false
		}
		if base != nil {
			target = base.ResolveReference(target)
		}
		return target, true
	}
	return nil, false
}

func isHeaderName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("!#$%&'*+-.^_`|~", r):
		default:
			return false
		}
	}
	return true
}

func parseRedirectTarget(target string) (*url.URL, error) {
	if target == "" {
		return nil, errors.New("empty location")
	}
	if strings.ContainsAny(target, " \t\"'<>{}") {
		return nil, errors.New("location contains invalid characters")
	}
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	if u.IsAbs() {
		if u, err = url.ParseRequestURI(target); err != nil {
			return nil, err
		}
		if u.Host == "" {
			return nil, errors.New("absolute location without host")
		}
	}
	return u, nil
}

// RedirectBody renders the raw body that makes a rule redirect to target.
func RedirectBody(target string) []byte {
	return []byte(locationHeader + ": " + target + "\r\n")
}
