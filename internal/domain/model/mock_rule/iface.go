package model

import (
	"net/http"
	"net/url"
)

// RequestInfo is the view of an intercepted request that rules and callbacks
// work with.
type RequestInfo interface {
	GetMethod() string             // request method, upper-cased, GET when empty
	GetURL() *url.URL              // absolute request URL
	GetHeaders() map[string]string // lower-cased header names, values joined by ","
	GetBody() []byte               // request body, read once and cached
	GetBodyJSON() ParsedBody       // best-effort JSON decode of the body
	Request() *http.Request        // the underlying request, body rewound
}

// OnRequestFunc is called synchronously when a rule is selected for a
// request, before anything is delivered.
type OnRequestFunc func(req RequestInfo, body ParsedBody)

// ResponseHandlerFunc computes a response per delivery. It overrides the
// static status, headers and body of its rule.
type ResponseHandlerFunc func(req RequestInfo) GenericResponse

// CompletionFunc is called once after delivery reached a terminal state.
type CompletionFunc func()
