package services

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go_mock_interceptor/internal/domain/iface"
	model "go_mock_interceptor/internal/domain/model/mock_rule"

	"github.com/sirupsen/logrus"
)

// SessionState is the position of a Session in its delivery lifecycle.
type SessionState int

const (
	StateIdle SessionState = iota
	StateMatching
	StateDelayed
	StateDelivering
	StateDelivered
	StateErrored
	StateRedirected
	StateCancelled
)

var stateNames = map[SessionState]string{
	StateIdle:       "idle",
	StateMatching:   "matching",
	StateDelayed:    "delayed",
	StateDelivering: "delivering",
	StateDelivered:  "delivered",
	StateErrored:    "errored",
	StateRedirected: "redirected",
	StateCancelled:  "cancelled",
}

func (s SessionState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown(" + strconv.Itoa(int(s)) + ")"
}

// Terminal reports whether no further transition is possible.
func (s SessionState) Terminal() bool {
	return s >= StateDelivered
}

// Session delivers one intercepted request. Start and Stop may be called from
// different goroutines.
type Session struct {
	id          string
	interceptor *Interceptor
	req         *http.Request
	info        *model.HTTPRequestInfo
	client      iface.Client
	log         *logrus.Entry

	mu    sync.Mutex
	state SessionState
	timer *time.Timer
	rule  *model.MatchRule
	done  chan struct{}
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed once the session reached a terminal state.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Start resolves the rule, fires its request callback and delivers the
// response now or after the rule's delay.
func (s *Session) Start() {
	if !s.transition(StateIdle, StateMatching) {
		return
	}

	rule, err := s.interceptor.match.MatchRule(s.req.Context(), s.info)
	if err != nil {
		s.fail(err)
		return
	}
	s.mu.Lock()
	s.rule = rule
	s.mu.Unlock()

	rule.NotifyRequest(s.info)

	delay := rule.Delay()
	if delay <= 0 {
		s.deliver()
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateMatching {
		return
	}
	s.state = StateDelayed
	s.timer = time.AfterFunc(delay, func() {
		s.interceptor.submit(s.deliver)
	})
	s.log.Debugf("delivery scheduled in %s", delay)
}

// Stop cancels a delivery that has not started yet. Once the response is
// being delivered Stop has no effect.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateIdle, StateMatching, StateDelayed:
	default:
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.state = StateCancelled
	close(s.done)
	s.log.Debug("delivery cancelled")
}

func (s *Session) transition(from, to SessionState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != from {
		return false
	}
	s.state = to
	return true
}

// begin moves the session into delivering unless it was cancelled first.
func (s *Session) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateMatching && s.state != StateDelayed {
		return false
	}
	s.state = StateDelivering
	return true
}

// finish records the terminal state, then runs the completion callback of
// the rule, if any, before Done is closed.
func (s *Session) finish(state SessionState) {
	s.mu.Lock()
	s.state = state
	rule := s.rule
	s.mu.Unlock()
	s.log.Debugf("delivery finished: %s", state)

	if rule != nil {
		rule.NotifyCompletion()
	}
	close(s.done)
}

func (s *Session) fail(err error) {
	if !s.begin() {
		return
	}
	s.client.DidFail(err)
	s.finish(StateErrored)
}

func (s *Session) deliver() {
	if !s.begin() {
		return
	}
	rule := s.rule

	produced, ok := rule.Produce(s.info)
	if !ok {
		s.client.DidFail(&model.MissingMockError{Method: s.info.GetMethod(), URL: s.req.URL.String()})
		s.finish(StateErrored)
		return
	}

	if location, ok := model.RedirectLocation(produced.Body, s.req.URL); ok {
		redirect, err := http.NewRequestWithContext(s.req.Context(), http.MethodGet, location.String(), nil)
		if err != nil {
			s.client.DidFail(fmt.Errorf("failed to build redirect request: %w", err))
			s.finish(StateErrored)
			return
		}
		s.log.Debugf("redirecting to %s", location)
		s.client.WasRedirected(redirect, s.response(produced))
		s.finish(StateRedirected)
		return
	}

	if err := rule.RequestError(); err != nil {
		s.client.DidFail(err)
		s.finish(StateErrored)
		return
	}

	s.client.DidReceiveResponse(s.response(produced), rule.CachePolicy())
	s.client.DidLoad(produced.Body)
	s.client.DidFinishLoading()
	s.finish(StateDelivered)
}

// response renders produced as an HTTP/1.1 response to the session request.
func (s *Session) response(produced model.GenericResponse) *http.Response {
	header := make(http.Header, len(produced.Headers))
	for k, vs := range produced.Headers {
		for _, v := range vs {
			header.Add(k, v)
		}
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", produced.StatusCode, http.StatusText(produced.StatusCode)),
		StatusCode:    produced.StatusCode,
		Proto:         model.HTTPVersion,
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(produced.Body)),
		ContentLength: int64(len(produced.Body)),
		Request:       s.req,
	}
}
