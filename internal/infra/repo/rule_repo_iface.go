package repo

import (
	model "go_mock_interceptor/internal/domain/model/mock_rule"
)

// OverrideHook is consulted before any registered rule on every resolve. A
// nil result falls through to the static rules.
type OverrideHook func(req model.RequestInfo) *model.MatchRule

// RegistryIface stores rules and ignore rules and selects the rule for a
// request. Implementations are safe for concurrent use.
type RegistryIface interface {
	// Register adds rule, replacing a rule in the same slot. It reports
	// whether a rule was replaced.
	Register(rule *model.MatchRule) bool
	// RegisterChain adds rules that answer successive matching requests in
	// order.
	RegisterChain(chain *model.ChainedRules)
	Ignore(rule model.IgnoreRule)
	ShouldHandle(req model.RequestInfo) bool
	Resolve(req model.RequestInfo) *model.MatchRule
	// RemoveAll drops rules, ignore rules and chains. Mode and the override
	// hook are left alone.
	RemoveAll()

	SetMode(mode model.Mode)
	Mode() model.Mode
	SetOverrideHook(hook OverrideHook)
	ClearOverrideHook()

	Rules() []*model.MatchRule
	IgnoreRules() []model.IgnoreRule

	// Version changes whenever resolution may change: rules, chains, ignore
	// rules, mode or hook. The second result is false while an override hook
	// is installed.
	Version() (uint64, bool)
}
