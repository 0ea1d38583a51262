package services

import (
	"context"

	"go_mock_interceptor/internal/domain/iface"
	model "go_mock_interceptor/internal/domain/model/mock_rule"
	"go_mock_interceptor/internal/infra/repo"
	"go_mock_interceptor/utils"

	"github.com/sirupsen/logrus"
)

type RuleMatchService struct {
	registry repo.RegistryIface
}

var _ iface.RuleMatchService = (*RuleMatchService)(nil)

func NewRuleMatchService(registry repo.RegistryIface) *RuleMatchService {
	return &RuleMatchService{
		registry: registry,
	}
}

func (s *RuleMatchService) CanHandle(reqInfo model.RequestInfo) bool {
	return s.registry.ShouldHandle(reqInfo)
}

func (s *RuleMatchService) RulesVersion() (uint64, bool) {
	return s.registry.Version()
}

// MatchRule resolves reqInfo. A request that was accepted for interception
// but has no rule is a setup mistake and is reported loudly.
func (s *RuleMatchService) MatchRule(ctx context.Context, reqInfo model.RequestInfo) (*model.MatchRule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if rule := s.registry.Resolve(reqInfo); rule != nil {
		return rule, nil
	}

	err := &model.MissingMockError{
		Method: reqInfo.GetMethod(),
		URL:    reqInfo.GetURL().String(),
	}
	utils.GetLogger().WithFields(logrus.Fields{
		"method": err.Method,
		"url":    err.URL,
		"mode":   s.registry.Mode().String(),
	}).Error("missing mock: register a rule for this request or add an ignore rule")
	return nil, err
}
