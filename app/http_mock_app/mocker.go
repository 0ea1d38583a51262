package http_mock_app

import (
	"fmt"
	"net/http"

	"go_mock_interceptor/internal/domain/services"
	configs "go_mock_interceptor/internal/infra/config"
	"go_mock_interceptor/internal/infra/repo"
	"go_mock_interceptor/utils"
)

// Mocker bundles a registry with the interceptor and transport serving it.
type Mocker struct {
	Registry    repo.RegistryIface
	Manage      *services.RuleManageService
	Interceptor *services.Interceptor
	Transport   *Transport
}

func NewMocker(registry repo.RegistryIface, manage *services.RuleManageService, interceptor *services.Interceptor, transport *Transport) *Mocker {
	return &Mocker{
		Registry:    registry,
		Manage:      manage,
		Interceptor: interceptor,
		Transport:   transport,
	}
}

// NewMockerFromFile loads the config at path (see configs.LoadMockerConfig),
// configures logging and registers the rule fixtures.
func NewMockerFromFile(path string) (*Mocker, error) {
	c, err := configs.LoadMockerConfig(path)
	if err != nil {
		return nil, err
	}
	if err := utils.InitLogger(c.Log); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	m, err := InitializeMocker(c)
	if err != nil {
		return nil, fmt.Errorf("failed to build mocker: %w", err)
	}
	if err := m.LoadFixtures(c); err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}

// Client returns an http.Client whose requests go through the mock transport.
func (m *Mocker) Client() *http.Client {
	return &http.Client{Transport: m.Transport}
}

// LoadFixtures registers the rule fixtures of c in file order.
func (m *Mocker) LoadFixtures(c *configs.MockerConfig) error {
	rules, err := newFixtureLoader(c).ConvertAll()
	if err != nil {
		return fmt.Errorf("failed to load fixtures: %w", err)
	}
	for _, rule := range rules {
		m.Manage.CreateRule(rule)
	}
	utils.GetLogger().Infof("loaded %d rule fixtures", len(rules))
	return nil
}

// Reset removes all rules, the override hook and cached responses.
func (m *Mocker) Reset() {
	m.Manage.RemoveAll()
	m.Manage.ClearOverrideHook()
	m.Transport.FlushCache()
}

func (m *Mocker) Close() {
	m.Interceptor.Close()
}
