package services

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	model "go_mock_interceptor/internal/domain/model/mock_rule"
	configs "go_mock_interceptor/internal/infra/config"
	"go_mock_interceptor/internal/infra/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingClient records every delivery signal in order.
type recordingClient struct {
	mu       sync.Mutex
	signals  []string
	response *http.Response
	policy   model.CachePolicy
	body     []byte
	err      error
	redirect *http.Request
}

func (c *recordingClient) record(s string) {
	c.signals = append(c.signals, s)
}

func (c *recordingClient) DidReceiveResponse(resp *http.Response, policy model.CachePolicy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("response")
	c.response = resp
	c.policy = policy
}

func (c *recordingClient) DidLoad(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("load")
	c.body = append(c.body, data...)
}

func (c *recordingClient) DidFinishLoading() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("finish")
}

func (c *recordingClient) DidFail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("fail")
	c.err = err
}

func (c *recordingClient) WasRedirected(req *http.Request, resp *http.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("redirect")
	c.redirect = req
	c.response = resp
}

func (c *recordingClient) Signals() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.signals...)
}

type interceptorSuite struct {
	registry    repo.RegistryIface
	interceptor *Interceptor
}

func newInterceptorSuite(t *testing.T) *interceptorSuite {
	t.Helper()
	registry := repo.NewRegistry(model.ModeOptOut)
	interceptor, err := NewInterceptor(NewRuleMatchService(registry), configs.DefaultMockerConfig())
	require.NoError(t, err)
	t.Cleanup(interceptor.Close)
	return &interceptorSuite{registry: registry, interceptor: interceptor}
}

func waitDone(t *testing.T, s *Session) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("session did not finish")
	}
}

func TestSessionDeliversResponse(t *testing.T) {
	suite := newInterceptorSuite(t)

	var events []string
	var mu sync.Mutex
	note := func(e string) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	}
	suite.registry.Register(model.MustMatchRule(model.RuleSpec{
		URL:          "https://h/user",
		ContentType:  &model.ContentTypeJSON,
		Headers:      map[string]string{"X-Trace": "abc"},
		CachePolicy:  model.CacheAllowed,
		Responses:    map[model.HTTPMethod][]byte{model.MethodGet: []byte(`{"name":"Mocker"}`)},
		OnRequest:    func(model.RequestInfo, model.ParsedBody) { note("request") },
		OnCompletion: func() { note("complete") },
	}))

	client := &recordingClient{}
	session := suite.interceptor.NewSession(httptest.NewRequest(http.MethodGet, "https://h/user", nil), client)
	session.Start()
	waitDone(t, session)

	assert.Equal(t, []string{"response", "load", "finish"}, client.Signals())
	assert.Equal(t, StateDelivered, session.State())
	assert.Equal(t, http.StatusOK, client.response.StatusCode)
	assert.Equal(t, "abc", client.response.Header.Get("X-Trace"))
	assert.Equal(t, model.ContentTypeJSON.HeaderValue, client.response.Header.Get("Content-Type"))
	assert.Equal(t, model.HTTPVersion, client.response.Proto)
	assert.Equal(t, model.CacheAllowed, client.policy)
	assert.Equal(t, `{"name":"Mocker"}`, string(client.body))
	assert.Equal(t, []string{"request", "complete"}, events)
}

func TestSessionMissingMock(t *testing.T) {
	suite := newInterceptorSuite(t)

	client := &recordingClient{}
	session := suite.interceptor.NewSession(httptest.NewRequest(http.MethodGet, "https://h/unknown", nil), client)
	session.Start()
	waitDone(t, session)

	assert.Equal(t, []string{"fail"}, client.Signals())
	assert.Equal(t, StateErrored, session.State())
	assert.ErrorIs(t, client.err, model.ErrMissingMock)
	var missing *model.MissingMockError
	require.ErrorAs(t, client.err, &missing)
	assert.Equal(t, "GET", missing.Method)
}

func TestSessionRequestError(t *testing.T) {
	suite := newInterceptorSuite(t)
	ruleErr := errors.New("connection reset")
	completed := 0
	suite.registry.Register(model.MustMatchRule(model.RuleSpec{
		URL:          "https://h/p",
		RequestError: ruleErr,
		Responses:    map[model.HTTPMethod][]byte{model.MethodGet: nil},
		OnCompletion: func() { completed++ },
	}))

	client := &recordingClient{}
	session := suite.interceptor.NewSession(httptest.NewRequest(http.MethodGet, "https://h/p", nil), client)
	session.Start()
	waitDone(t, session)

	assert.Equal(t, []string{"fail"}, client.Signals())
	assert.Same(t, ruleErr, client.err)
	assert.Equal(t, 1, completed)
}

func TestSessionRedirectTakesPriority(t *testing.T) {
	suite := newInterceptorSuite(t)
	suite.registry.Register(model.MustMatchRule(model.RuleSpec{
		URL:          "https://h/a",
		StatusCode:   http.StatusFound,
		RequestError: errors.New("never delivered"),
		Responses:    map[model.HTTPMethod][]byte{model.MethodGet: model.RedirectBody("https://h/b")},
	}))

	client := &recordingClient{}
	session := suite.interceptor.NewSession(httptest.NewRequest(http.MethodGet, "https://h/a", nil), client)
	session.Start()
	waitDone(t, session)

	assert.Equal(t, []string{"redirect"}, client.Signals())
	assert.Equal(t, StateRedirected, session.State())
	assert.Equal(t, "https://h/b", client.redirect.URL.String())
	assert.Equal(t, http.MethodGet, client.redirect.Method)
	assert.Equal(t, http.StatusFound, client.response.StatusCode)
}

func TestSessionDelayedDelivery(t *testing.T) {
	suite := newInterceptorSuite(t)
	suite.registry.Register(model.MustMatchRule(model.RuleSpec{
		URL:       "https://h/slow",
		Delay:     50 * time.Millisecond,
		Responses: map[model.HTTPMethod][]byte{model.MethodGet: []byte("late")},
	}))

	client := &recordingClient{}
	session := suite.interceptor.NewSession(httptest.NewRequest(http.MethodGet, "https://h/slow", nil), client)
	start := time.Now()
	session.Start()
	assert.Equal(t, StateDelayed, session.State())
	waitDone(t, session)

	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	assert.Equal(t, []string{"response", "load", "finish"}, client.Signals())
	assert.Equal(t, "late", string(client.body))
}

func TestSessionStopCancelsPendingDelivery(t *testing.T) {
	suite := newInterceptorSuite(t)
	completed := make(chan struct{}, 1)
	suite.registry.Register(model.MustMatchRule(model.RuleSpec{
		URL:          "https://h/slow",
		Delay:        200 * time.Millisecond,
		Responses:    map[model.HTTPMethod][]byte{model.MethodGet: nil},
		OnCompletion: func() { completed <- struct{}{} },
	}))

	client := &recordingClient{}
	session := suite.interceptor.NewSession(httptest.NewRequest(http.MethodGet, "https://h/slow", nil), client)
	session.Start()
	time.Sleep(20 * time.Millisecond)
	session.Stop()
	session.Stop()

	assert.Equal(t, StateCancelled, session.State())
	waitDone(t, session)

	select {
	case <-completed:
		t.Fatal("completion fired after cancellation")
	case <-time.After(400 * time.Millisecond):
	}
	assert.Empty(t, client.Signals())
	assert.Equal(t, StateCancelled, session.State())
}

func TestSessionStopAfterDeliveryIsNoop(t *testing.T) {
	suite := newInterceptorSuite(t)
	suite.registry.Register(model.MustMatchRule(model.RuleSpec{
		URL:       "https://h/p",
		Responses: map[model.HTTPMethod][]byte{model.MethodGet: nil},
	}))

	client := &recordingClient{}
	session := suite.interceptor.NewSession(httptest.NewRequest(http.MethodGet, "https://h/p", nil), client)
	session.Start()
	waitDone(t, session)
	session.Stop()
	session.Start()

	assert.Equal(t, StateDelivered, session.State())
	assert.Equal(t, []string{"response", "load", "finish"}, client.Signals())
}

func TestSessionStopBeforeStart(t *testing.T) {
	suite := newInterceptorSuite(t)
	client := &recordingClient{}
	session := suite.interceptor.NewSession(httptest.NewRequest(http.MethodGet, "https://h/p", nil), client)
	session.Stop()
	session.Start()

	waitDone(t, session)
	assert.Equal(t, StateCancelled, session.State())
	assert.Empty(t, client.Signals())
}

func TestInterceptorCanInit(t *testing.T) {
	suite := newInterceptorSuite(t)
	ignore, err := model.NewIgnoreRule("https://h/static", model.MatchPrefix)
	require.NoError(t, err)
	suite.registry.Ignore(ignore)

	assert.False(t, suite.interceptor.CanInit(httptest.NewRequest(http.MethodGet, "https://h/static/a.js", nil)))
	assert.True(t, suite.interceptor.CanInit(httptest.NewRequest(http.MethodGet, "https://h/api", nil)))

	req := httptest.NewRequest(http.MethodGet, "https://h/api", nil)
	assert.Same(t, req, suite.interceptor.CanonicalRequest(req))
}

func TestSessionStateString(t *testing.T) {
	assert.Equal(t, "delayed", StateDelayed.String())
	assert.Equal(t, "unknown(42)", SessionState(42).String())
	assert.True(t, StateCancelled.Terminal())
	assert.False(t, StateDelivering.Terminal())
}
