//go:build wireinject
// +build wireinject

package http_mock_app

import (
	configs "go_mock_interceptor/internal/infra/config"

	"github.com/google/wire"
)

func InitializeMocker(c *configs.MockerConfig) (*Mocker, error) {
	wire.Build(AppSet)
	return &Mocker{}, nil
}
