package services

import (
	"fmt"

	"go_mock_interceptor/internal/domain/iface"
	model "go_mock_interceptor/internal/domain/model/mock_rule"
	"go_mock_interceptor/internal/infra/repo"
	"go_mock_interceptor/utils"
)

type RuleManageService struct {
	registry repo.RegistryIface
}

var _ iface.RuleService = (*RuleManageService)(nil)

func NewRuleManageService(registry repo.RegistryIface) *RuleManageService {
	return &RuleManageService{
		registry: registry,
	}
}

// CreateRule registers rule, replacing any rule in the same slot.
func (s *RuleManageService) CreateRule(rule *model.MatchRule) {
	if s.registry.Register(rule) {
		utils.GetLogger().Infof("replaced rule for slot of %s", rule)
	}
}

// CreateChain registers rules that answer successive requests in order.
func (s *RuleManageService) CreateChain(rules ...*model.MatchRule) error {
	chain := model.NewChainedRules(rules...)
	if chain.Exhausted() {
		return fmt.Errorf("chain needs at least one rule")
	}
	s.registry.RegisterChain(chain)
	return nil
}

func (s *RuleManageService) IgnoreURL(rawURL string, mode model.URLMatchMode) error {
	rule, err := model.NewIgnoreRule(rawURL, mode)
	if err != nil {
		return fmt.Errorf("failed to create ignore rule: %w", err)
	}
	s.registry.Ignore(rule)
	return nil
}

func (s *RuleManageService) RemoveAll() {
	s.registry.RemoveAll()
}

func (s *RuleManageService) SetMode(mode model.Mode) {
	s.registry.SetMode(mode)
}

func (s *RuleManageService) SetOverrideHook(hook repo.OverrideHook) {
	s.registry.SetOverrideHook(hook)
	utils.GetLogger().Debug("override hook installed")
}

func (s *RuleManageService) ClearOverrideHook() {
	s.registry.ClearOverrideHook()
	utils.GetLogger().Debug("override hook cleared")
}

// Registry exposes the underlying registry for read-only inspection.
func (s *RuleManageService) Registry() repo.RegistryIface {
	return s.registry
}
