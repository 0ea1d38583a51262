package model

import "strings"

// HTTPMethod is an HTTP request method a rule can answer for.
type HTTPMethod string

const (
	MethodOptions HTTPMethod = "OPTIONS"
	MethodGet     HTTPMethod = "GET"
	MethodHead    HTTPMethod = "HEAD"
	MethodPost    HTTPMethod = "POST"
	MethodPut     HTTPMethod = "PUT"
	MethodPatch   HTTPMethod = "PATCH"
	MethodDelete  HTTPMethod = "DELETE"
	MethodTrace   HTTPMethod = "TRACE"
	MethodConnect HTTPMethod = "CONNECT"
)

// ParseHTTPMethod maps a request method onto a known HTTPMethod. An empty
// method is treated as GET, the same way net/http does.
func ParseHTTPMethod(s string) (HTTPMethod, bool) {
	if s == "" {
		return MethodGet, true
	}
	m := HTTPMethod(strings.ToUpper(s))
	switch m {
	case MethodOptions, MethodGet, MethodHead, MethodPost, MethodPut,
		MethodPatch, MethodDelete, MethodTrace, MethodConnect:
		return m, true
	default:
		return "", false
	}
}

func (m HTTPMethod) String() string {
	return string(m)
}

// URLMatchMode decides how a rule URL is compared with a request URL.
type URLMatchMode string

const (
	// MatchFull compares the complete URL including the query.
	MatchFull URLMatchMode = "full"
	// MatchIgnoreQuery compares scheme, host and path only.
	MatchIgnoreQuery URLMatchMode = "ignore_query"
	// MatchPrefix matches when the rule URL is a prefix of the request URL.
	MatchPrefix URLMatchMode = "prefix"
)

func (m URLMatchMode) IsValid() bool {
	switch m {
	case MatchFull, MatchIgnoreQuery, MatchPrefix:
		return true
	default:
		return false
	}
}

// CachePolicy tells the host whether a delivered response may be cached.
type CachePolicy string

const (
	CacheAllowed    CachePolicy = "allowed"
	CacheNotAllowed CachePolicy = "not_allowed"
)

// Mode is the registry-wide policy for requests without a rule.
type Mode string

const (
	// ModeOptOut intercepts everything that is not explicitly ignored.
	ModeOptOut Mode = "optout"
	// ModeOptIn intercepts only requests that resolve to a rule.
	ModeOptIn Mode = "optin"
)

func (m Mode) IsValid() bool {
	return m == ModeOptOut || m == ModeOptIn
}

func (m Mode) String() string {
	return string(m)
}

// HTTPVersion is the protocol version stamped on produced responses.
const HTTPVersion = "HTTP/1.1"
