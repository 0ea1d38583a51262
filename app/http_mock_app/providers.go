package http_mock_app

import (
	"go_mock_interceptor/internal/domain/services"
	"go_mock_interceptor/internal/infra/repo"

	"github.com/google/wire"
)

var AppSet = wire.NewSet(
	repo.RegistrySet,
	services.ServiceSet,
	NewTransport,
	NewMocker,
)
