package iface

import (
	"context"
	"net/http"

	model "go_mock_interceptor/internal/domain/model/mock_rule"
	"go_mock_interceptor/internal/infra/repo"
)

// RuleService registers and removes rules.
type RuleService interface {
	CreateRule(rule *model.MatchRule)
	CreateChain(rules ...*model.MatchRule) error
	IgnoreURL(rawURL string, mode model.URLMatchMode) error
	RemoveAll()
	SetMode(mode model.Mode)
	SetOverrideHook(hook repo.OverrideHook)
	ClearOverrideHook()
}

type RuleMatchService interface {
	// CanHandle reports whether req is intercepted.
	CanHandle(reqInfo model.RequestInfo) bool
	// MatchRule resolves the rule for req; a *model.MissingMockError when
	// there is none.
	MatchRule(ctx context.Context, reqInfo model.RequestInfo) (*model.MatchRule, error)
	// RulesVersion identifies the current rule set; false when resolution is
	// dynamic.
	RulesVersion() (uint64, bool)
}

// Client is the delivery channel back to the host URL-loading layer. A
// session emits exactly one of: DidReceiveResponse, DidLoad and
// DidFinishLoading in that order; DidFail; or WasRedirected.
type Client interface {
	DidReceiveResponse(resp *http.Response, policy model.CachePolicy)
	DidLoad(data []byte)
	DidFinishLoading()
	DidFail(err error)
	WasRedirected(req *http.Request, resp *http.Response)
}
