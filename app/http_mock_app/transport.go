package http_mock_app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	model "go_mock_interceptor/internal/domain/model/mock_rule"
	"go_mock_interceptor/internal/domain/services"
	configs "go_mock_interceptor/internal/infra/config"
	"go_mock_interceptor/utils"

	"github.com/patrickmn/go-cache"
)

var (
	ErrTooManyRedirects = errors.New("too many mock redirects")
	// ErrNotIntercepted is returned for requests the interceptor declines
	// when pass-through to the network is disabled.
	ErrNotIntercepted = errors.New("request not intercepted and pass-through is disabled")
)

// networkTransport is http.DefaultTransport as it was before Install.
var networkTransport = http.DefaultTransport

// Transport is an http.RoundTripper that answers requests from registered
// rules. Requests the interceptor declines go to Fallback.
type Transport struct {
	interceptor  *services.Interceptor
	Fallback     http.RoundTripper
	cache        *cache.Cache
	maxRedirects int
}

var _ http.RoundTripper = (*Transport)(nil)

func NewTransport(interceptor *services.Interceptor, c *configs.MockerConfig) *Transport {
	var fallback http.RoundTripper = declineTransport{}
	if c.Transport.PassThrough {
		fallback = networkTransport
	}
	ttl := c.Transport.CacheTTL
	if ttl <= 0 {
		ttl = configs.DefaultCacheTTL
	}
	maxRedirects := c.Transport.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = configs.DefaultMaxRedirects
	}

	return &Transport{
		interceptor:  interceptor,
		Fallback:     fallback,
		cache:        cache.New(ttl, 2*ttl),
		maxRedirects: maxRedirects,
	}
}

// RoundTrip answers req from the matching rule. Redirects emitted by a rule
// are followed here, up to the configured hop limit.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	for hops := 0; ; hops++ {
		if !t.interceptor.CanInit(req) {
			return t.Fallback.RoundTrip(req)
		}
		req = t.interceptor.CanonicalRequest(req)

		version, cacheable := t.interceptor.RulesVersion()
		if cacheable {
			if resp, ok := t.cachedResponse(req, version); ok {
				return resp, nil
			}
		}

		out, err := t.load(req)
		if err != nil {
			return nil, err
		}
		if out.redirect == nil {
			if cacheable && out.policy == model.CacheAllowed {
				t.store(req, version, out.response, out.body)
			}
			return out.response, nil
		}

		if hops >= t.maxRedirects {
			return nil, fmt.Errorf("%w: stopped after %d hops", ErrTooManyRedirects, hops)
		}
		utils.GetLogger().Debugf("following mock redirect %s -> %s", req.URL, out.redirect.URL)
		req = out.redirect
	}
}

// load runs one interception session and waits for its outcome or for the
// request context to end.
func (t *Transport) load(req *http.Request) (*loadOutcome, error) {
	collector := &responseCollector{}
	session := t.interceptor.NewSession(req, collector)
	session.Start()

	select {
	case <-session.Done():
	case <-req.Context().Done():
		session.Stop()
		return nil, req.Context().Err()
	}

	if session.State() == services.StateCancelled {
		return nil, req.Context().Err()
	}
	return collector.outcome()
}

// CachedResponse returns a copy of a cached response for req, if a rule with
// an allowing cache policy answered it under the current rule set.
func (t *Transport) CachedResponse(req *http.Request) (*http.Response, bool) {
	version, cacheable := t.interceptor.RulesVersion()
	if !cacheable {
		return nil, false
	}
	return t.cachedResponse(req, version)
}

func (t *Transport) cachedResponse(req *http.Request, version uint64) (*http.Response, bool) {
	if req.Method != http.MethodGet && req.Method != "" {
		return nil, false
	}
	v, ok := t.cache.Get(cacheKey(req, version))
	if !ok {
		return nil, false
	}
	return v.(cachedEntry).response(req), true
}

// FlushCache drops all cached responses.
func (t *Transport) FlushCache() {
	t.cache.Flush()
}

func (t *Transport) store(req *http.Request, version uint64, resp *http.Response, body []byte) {
	if req.Method != http.MethodGet && req.Method != "" {
		return
	}
	t.cache.SetDefault(cacheKey(req, version), cachedEntry{
		statusCode: resp.StatusCode,
		header:     resp.Header.Clone(),
		body:       append([]byte(nil), body...),
		storedAt:   time.Now(),
	})
}

// cacheKey scopes entries to a rule set version, so replacing a rule or
// changing the mode never serves an older answer.
func cacheKey(req *http.Request, version uint64) string {
	return fmt.Sprintf("%d %s %s", version, http.MethodGet, model.CanonicalURL(req.URL))
}

type cachedEntry struct {
	statusCode int
	header     http.Header
	body       []byte
	storedAt   time.Time
}

func (c cachedEntry) response(req *http.Request) *http.Response {
	header := c.header.Clone()
	header.Set("Age", fmt.Sprintf("%d", int(time.Since(c.storedAt).Seconds())))
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", c.statusCode, http.StatusText(c.statusCode)),
		StatusCode:    c.statusCode,
		Proto:         model.HTTPVersion,
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(c.body)),
		ContentLength: int64(len(c.body)),
		Request:       req,
	}
}

type loadOutcome struct {
	response *http.Response
	body     []byte
	policy   model.CachePolicy
	redirect *http.Request
}

// responseCollector records the signals of one session. It never blocks, so
// a delivery that outlives a cancelled RoundTrip still completes.
type responseCollector struct {
	mu       sync.Mutex
	response *http.Response
	policy   model.CachePolicy
	body     bytes.Buffer
	finished bool
	err      error
	redirect *http.Request
}

func (c *responseCollector) DidReceiveResponse(resp *http.Response, policy model.CachePolicy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.response = resp
	c.policy = policy
}

func (c *responseCollector) DidLoad(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.body.Write(data)
}

func (c *responseCollector) DidFinishLoading() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finished = true
}

func (c *responseCollector) DidFail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

func (c *responseCollector) WasRedirected(req *http.Request, resp *http.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	c.redirect = req
}

func (c *responseCollector) outcome() (*loadOutcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.err != nil:
		return nil, c.err
	case c.redirect != nil:
		return &loadOutcome{redirect: c.redirect}, nil
	case c.response != nil && c.finished:
		body := append([]byte(nil), c.body.Bytes()...)
		resp := c.response
		resp.Body = io.NopCloser(bytes.NewReader(body))
		resp.ContentLength = int64(len(body))
		return &loadOutcome{response: resp, body: body, policy: c.policy}, nil
	default:
		return nil, errors.New("interception ended without a response")
	}
}

type declineTransport struct{}

func (declineTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return nil, fmt.Errorf("%w: %s %s", ErrNotIntercepted, req.Method, req.URL)
}

var (
	installMu sync.Mutex
	installed *Transport
)

// Install makes t the transport of http.DefaultTransport users. Only the
// first call has an effect; it reports whether t was installed.
func Install(t *Transport) bool {
	installMu.Lock()
	defer installMu.Unlock()
	if installed != nil {
		return installed == t
	}
	installed = t
	http.DefaultTransport = t
	utils.GetLogger().Info("mock transport installed as http.DefaultTransport")
	return true
}

// Uninstall restores the original http.DefaultTransport.
func Uninstall() {
	installMu.Lock()
	defer installMu.Unlock()
	if installed == nil {
		return
	}
	installed = nil
	http.DefaultTransport = networkTransport
}
