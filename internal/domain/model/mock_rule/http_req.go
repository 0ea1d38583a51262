package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go_mock_interceptor/utils"

	"github.com/PaesslerAG/jsonpath"
)

type HTTPRequestInfo struct {
	req       *http.Request
	bodyCache []byte
}

var _ RequestInfo = (*HTTPRequestInfo)(nil)

// NewHTTPRequest wraps r, reading and caching its body. The body of r is
// replaced with a fresh reader over the cached bytes so r stays usable.
func NewHTTPRequest(r *http.Request) *HTTPRequestInfo {
	var (
		body []byte
		err  error
	)
	if r.Body != nil && r.Body != http.NoBody {
		body, err = io.ReadAll(r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))
	} else if r.GetBody != nil {
		var rc io.ReadCloser
		if rc, err = r.GetBody(); err == nil {
			body, err = io.ReadAll(rc)
			rc.Close()
		}
	}
	if err != nil {
		utils.GetLogger().Debugf("reading body of %s %s: %v (kept %d bytes)", r.Method, r.URL, err, len(body))
	}

	return &HTTPRequestInfo{
		req:       r,
		bodyCache: body,
	}
}

func (h *HTTPRequestInfo) GetMethod() string {
	if h.req.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(h.req.Method)
}

func (h *HTTPRequestInfo) GetURL() *url.URL {
	return h.req.URL
}

func (h *HTTPRequestInfo) GetHeaders() map[string]string {
	headers := make(map[string]string, len(h.req.Header))
	for k, v := range h.req.Header {
		headers[strings.ToLower(k)] = strings.Join(v, ",")
	}
	return headers
}

func (h *HTTPRequestInfo) GetBody() []byte {
	return h.bodyCache
}

func (h *HTTPRequestInfo) GetBodyJSON() ParsedBody {
	return ParseBody(h.bodyCache)
}

func (h *HTTPRequestInfo) Request() *http.Request {
	h.req.Body = io.NopCloser(bytes.NewReader(h.bodyCache))
	return h.req
}

// ParsedBody is the result of decoding a request body as JSON. Decoding
// never fails loudly: a body that is empty or not JSON yields an empty
// ParsedBody.
type ParsedBody struct {
	raw   []byte
	value any
}

// ParseBody decodes data as JSON. Fragments (numbers, strings) are accepted.
func ParseBody(data []byte) ParsedBody {
	if len(bytes.TrimSpace(data)) == 0 {
		return ParsedBody{}
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return ParsedBody{}
	}
	return ParsedBody{raw: data, value: v}
}

// IsEmpty reports whether the body could not be decoded.
func (p ParsedBody) IsEmpty() bool {
	return p.raw == nil
}

// Value returns the decoded value as produced by encoding/json.
func (p ParsedBody) Value() any {
	return p.value
}

// Object returns the body as a JSON object.
func (p ParsedBody) Object() (map[string]any, bool) {
	obj, ok := p.value.(map[string]any)
	return obj, ok
}

// Array returns the body as a top-level JSON array of objects. Arrays that
// contain anything other than objects are rejected.
func (p ParsedBody) Array() ([]map[string]any, bool) {
	items, ok := p.value.([]any)
	if !ok {
		return nil, false
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		out = append(out, obj)
	}
	return out, true
}

// Decode unmarshals the body into v.
func (p ParsedBody) Decode(v any) error {
	if p.IsEmpty() {
		return errors.New("empty request body")
	}
	if err := json.Unmarshal(p.raw, v); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}
	return nil
}

// Lookup evaluates a JSONPath expression against the body.
func (p ParsedBody) Lookup(path string) (any, error) {
	if p.IsEmpty() {
		return nil, errors.New("empty request body")
	}
	return JsonPathLookup(p.value, path)
}

// JsonPathLookup executes a JSONPath query on decoded JSON data
func JsonPathLookup(jsonData any, path string) (any, error) {
	// Ensure path starts with $ root indicator
	switch {
	case strings.HasPrefix(path, "$"):
	case strings.HasPrefix(path, "."), strings.HasPrefix(path, "["):
		path = "$" + path
	default:
		path = "$." + path
	}

	result, err := jsonpath.Get(path, jsonData)
	if err != nil {
		return nil, fmt.Errorf("jsonpath lookup failed: %w", err)
	}

	return result, nil
}
