package services

import (
	"go_mock_interceptor/internal/domain/iface"

	"github.com/google/wire"
)

var ServiceSet = wire.NewSet(
	NewRuleMatchService,
	wire.Bind(new(iface.RuleMatchService), new(*RuleMatchService)),
	NewRuleManageService,
	NewInterceptor,
)
