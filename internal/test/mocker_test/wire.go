//go:build wireinject
// +build wireinject

package mockertest

import (
	app "go_mock_interceptor/app/http_mock_app"
	configs "go_mock_interceptor/internal/infra/config"

	"github.com/google/wire"
)

type MockerTestSuite struct {
	Mocker *app.Mocker
}

func NewMockerTestSuite(m *app.Mocker) *MockerTestSuite {
	return &MockerTestSuite{Mocker: m}
}

func InitializeMockerTest(c *configs.MockerConfig) (*MockerTestSuite, error) {
	wire.Build(app.AppSet, NewMockerTestSuite)
	return &MockerTestSuite{}, nil
}
