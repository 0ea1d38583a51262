package model

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

type MatchRuleIface interface {
	Matches(req RequestInfo) bool
	SameSlotAs(other *MatchRule) bool
	Produce(req RequestInfo) (GenericResponse, bool)
}

var _ MatchRuleIface = (*MatchRule)(nil)

// RuleSpec collects the construction parameters of a MatchRule.
type RuleSpec struct {
	// URL to match. Empty means the rule is keyed by a synthetic URL built
	// from ContentType, StatusCode and method, which requires a GET response.
	URL       string
	MatchMode URLMatchMode
	// FileExtensions, when set, replaces URL matching with a match on the
	// request path extension.
	FileExtensions []string
	// Responses holds the body returned per HTTP method. Required.
	Responses       map[HTTPMethod][]byte
	StatusCode      int
	Headers         map[string]string
	ContentType     *ContentType
	RequestError    error
	ResponseHandler ResponseHandlerFunc
	Delay           time.Duration
	CachePolicy     CachePolicy
	OnRequest       OnRequestFunc
	OnCompletion    CompletionFunc
}

// MatchRule is an immutable registered mock: match criteria plus the
// response it produces.
type MatchRule struct {
	id              string
	targetURL       *url.URL
	syntheticURL    *url.URL
	matchMode       URLMatchMode
	fileExtensions  []string
	responses       map[HTTPMethod][]byte
	methods         []HTTPMethod
	statusCode      int
	headers         map[string]string
	contentType     *ContentType
	requestError    error
	responseHandler ResponseHandlerFunc
	delay           time.Duration
	cachePolicy     CachePolicy
	onRequest       OnRequestFunc
	onCompletion    CompletionFunc
}

// NewMatchRule validates spec and builds a rule from it.
func NewMatchRule(spec RuleSpec) (*MatchRule, error) {
	if len(spec.Responses) == 0 {
		return nil, ErrNoResponses
	}

	responses := make(map[HTTPMethod][]byte, len(spec.Responses))
	for m, body := range spec.Responses {
		method, ok := ParseHTTPMethod(string(m))
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, m)
		}
		responses[method] = append([]byte(nil), body...)
	}

	r := &MatchRule{
		id:              uuid.NewString(),
		matchMode:       spec.MatchMode,
		fileExtensions:  NormalizeExtensions(spec.FileExtensions),
		responses:       responses,
		methods:         sortedMethods(responses),
		statusCode:      spec.StatusCode,
		requestError:    spec.RequestError,
		responseHandler: spec.ResponseHandler,
		delay:           spec.Delay,
		cachePolicy:     spec.CachePolicy,
		onRequest:       spec.OnRequest,
		onCompletion:    spec.OnCompletion,
	}
	if r.matchMode == "" {
		r.matchMode = MatchFull
	}
	if !r.matchMode.IsValid() {
		return nil, fmt.Errorf("unknown url match mode %q", r.matchMode)
	}
	if r.statusCode == 0 {
		r.statusCode = http.StatusOK
	}
	if r.cachePolicy == "" {
		r.cachePolicy = CacheNotAllowed
	}
	if spec.ContentType != nil {
		ct := *spec.ContentType
		r.contentType = &ct
	}

	if spec.URL != "" {
		u, err := url.Parse(spec.URL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
		}
		r.targetURL = u
	}
	r.syntheticURL = buildSyntheticURL(r.contentType, r.statusCode, r.methods[0])

	r.headers = make(map[string]string, len(spec.Headers)+1)
	for k, v := range spec.Headers {
		r.headers[k] = v
	}
	if r.contentType != nil {
		r.headers["Content-Type"] = r.contentType.HeaderValue
	}

	return r, nil
}

// MustMatchRule is like NewMatchRule but panics on an invalid spec.
func MustMatchRule(spec RuleSpec) *MatchRule {
	r, err := NewMatchRule(spec)
	if err != nil {
		panic(err)
	}
	return r
}

// FromRequest returns a copy of s keyed to req: its URL and a single
// response body for its method.
func (s RuleSpec) FromRequest(req *http.Request, body []byte) RuleSpec {
	method, ok := ParseHTTPMethod(req.Method)
	if !ok {
		method = HTTPMethod(req.Method)
	}
	s.URL = req.URL.String()
	s.FileExtensions = nil
	s.Responses = map[HTTPMethod][]byte{method: body}
	return s
}

// NewHandlerRule builds a rule for method and rawURL whose response is
// computed by handler on every delivery.
func NewHandlerRule(method HTTPMethod, rawURL string, mode URLMatchMode, handler ResponseHandlerFunc) (*MatchRule, error) {
	if handler == nil {
		return nil, fmt.Errorf("response handler is required")
	}
	return NewMatchRule(RuleSpec{
		URL:             rawURL,
		MatchMode:       mode,
		Responses:       map[HTTPMethod][]byte{method: nil},
		ResponseHandler: handler,
	})
}

func (m *MatchRule) ID() string { return m.id }

// URL returns the URL the rule is registered for. Rules without an explicit
// URL must carry a GET response; anything else is a programming error and
// panics, use Request instead.
func (m *MatchRule) URL() *url.URL {
	if m.targetURL != nil {
		return m.targetURL
	}
	if _, ok := m.responses[MethodGet]; !ok {
		panic("model: rule without url has no GET response, use Request() to get its method")
	}
	return m.syntheticURL
}

// Request builds a request that the rule answers: its URL with the primary
// method.
func (m *MatchRule) Request() *http.Request {
	u := *m.matchURL()
	return &http.Request{
		Method:     m.methods[0].String(),
		URL:        &u,
		Host:       u.Host,
		Header:     make(http.Header),
		Proto:      HTTPVersion,
		ProtoMajor: 1,
		ProtoMinor: 1,
	}
}

func (m *MatchRule) MatchMode() URLMatchMode { return m.matchMode }
func (m *MatchRule) FileExtensions() []string { return append([]string(nil), m.fileExtensions...) }
func (m *MatchRule) Methods() []HTTPMethod { return append([]HTTPMethod(nil), m.methods...) }
func (m *MatchRule) StatusCode() int { return m.statusCode }
func (m *MatchRule) ContentType() *ContentType { return m.contentType }
func (m *MatchRule) RequestError() error { return m.requestError }
func (m *MatchRule) Delay() time.Duration { return m.delay }
func (m *MatchRule) CachePolicy() CachePolicy { return m.cachePolicy }
func (m *MatchRule) HasResponseHandler() bool { return m.responseHandler != nil }
func (m *MatchRule) IsExtensionRule() bool { return len(m.fileExtensions) > 0 }
func (m *MatchRule) OnCompletion() CompletionFunc { return m.onCompletion }

// Headers returns a copy of the response headers, Content-Type included.
func (m *MatchRule) Headers() map[string]string {
	out := make(map[string]string, len(m.headers))
	for k, v := range m.headers {
		out[k] = v
	}
	return out
}

// ResponseFor returns the static body registered for method.
func (m *MatchRule) ResponseFor(method HTTPMethod) ([]byte, bool) {
	body, ok := m.responses[method]
	return body, ok
}

// NotifyRequest runs the on-request callback, if any, with the decoded body.
func (m *MatchRule) NotifyRequest(req RequestInfo) {
	if m.onRequest == nil {
		return
	}
	m.onRequest(req, req.GetBodyJSON())
}

// NotifyCompletion runs the completion callback, if any.
func (m *MatchRule) NotifyCompletion() {
	if m.onCompletion != nil {
		m.onCompletion()
	}
}

// WithCompletion returns a copy of the rule whose completion callback runs
// fn after the original callback.
func (m *MatchRule) WithCompletion(fn CompletionFunc) *MatchRule {
	c := *m
	orig := m.onCompletion
	c.onCompletion = func() {
		if orig != nil {
			orig()
		}
		fn()
	}
	return &c
}

func (m *MatchRule) String() string {
	target := "extensions " + fmt.Sprint(m.fileExtensions)
	if !m.IsExtensionRule() {
		target = CanonicalURL(m.matchURL()) + " (" + string(m.matchMode) + ")"
	}
	return fmt.Sprintf("rule %s: %v %s -> %d", m.id, m.methods, target, m.statusCode)
}

// matchURL is the URL used for matching and identity: the explicit URL or
// the synthetic one.
func (m *MatchRule) matchURL() *url.URL {
	if m.targetURL != nil {
		return m.targetURL
	}
	return m.syntheticURL
}
