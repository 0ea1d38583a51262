package model

import (
	"fmt"
	"net/url"
	"slices"
)

// Matches reports whether the rule answers req. Extension rules compare the
// path extension only, all others compare URLs under the rule's match mode.
// The request method must have a response unless the rule has a handler.
func (m *MatchRule) Matches(req RequestInfo) bool {
	if req == nil {
		return false
	}
	if !m.acceptsMethod(req.GetMethod()) {
		return false
	}
	if m.IsExtensionRule() {
		ext := PathExtension(req.GetURL())
		return ext != "" && slices.Contains(m.fileExtensions, ext)
	}
	return MatchURL(m.matchURL(), req.GetURL(), m.matchMode)
}

// SameSlotAs reports whether other occupies the same registration slot:
// equal extension sets (or equal URLs when neither has extensions) plus the
// same set of methods.
func (m *MatchRule) SameSlotAs(other *MatchRule) bool {
	if other == nil {
		return false
	}
	if !slices.Equal(m.methods, other.methods) {
		return false
	}
	if m.IsExtensionRule() || other.IsExtensionRule() {
		return slices.Equal(m.fileExtensions, other.fileExtensions)
	}
	return CanonicalURL(m.matchURL()) == CanonicalURL(other.matchURL())
}

func (m *MatchRule) acceptsMethod(raw string) bool {
	method, ok := ParseHTTPMethod(raw)
	if !ok {
		return false
	}
	if m.responseHandler != nil {
		return true
	}
	_, ok = m.responses[method]
	return ok
}

// IgnoreRule excludes matching URLs from interception.
type IgnoreRule struct {
	URL  *url.URL
	Mode URLMatchMode
}

// NewIgnoreRule parses rawURL into an IgnoreRule.
func NewIgnoreRule(rawURL string, mode URLMatchMode) (IgnoreRule, error) {
	if mode == "" {
		mode = MatchFull
	}
	if !mode.IsValid() {
		return IgnoreRule{}, fmt.Errorf("unknown url match mode %q", mode)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return IgnoreRule{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	return IgnoreRule{URL: u, Mode: mode}, nil
}

func (i IgnoreRule) Matches(u *url.URL) bool {
	return MatchURL(i.URL, u, i.Mode)
}

func (i IgnoreRule) String() string {
	return fmt.Sprintf("ignore %s (%s)", CanonicalURL(i.URL), i.Mode)
}
