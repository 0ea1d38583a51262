package http_mock_app

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	model "go_mock_interceptor/internal/domain/model/mock_rule"
	configs "go_mock_interceptor/internal/infra/config"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// fixtureLoader converts rule fixtures into rules. Body files shared by
// several fixtures are read once.
type fixtureLoader struct {
	config  *configs.MockerConfig
	sfGroup singleflight.Group
}

func newFixtureLoader(c *configs.MockerConfig) *fixtureLoader {
	return &fixtureLoader{config: c}
}

// ConvertAll converts every rule fixture of the config, keeping their order.
func (l *fixtureLoader) ConvertAll() ([]*model.MatchRule, error) {
	rules := make([]*model.MatchRule, len(l.config.Rules))

	var g errgroup.Group
	for i := range l.config.Rules {
		g.Go(func() error {
			rule, err := l.ConvertToMatchRule(l.config.Rules[i])
			if err != nil {
				return fmt.Errorf("rules[%d]: %w", i, err)
			}
			rules[i] = rule
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rules, nil
}

// ConvertToMatchRule converts a RuleConfig DTO to a MatchRule model
func (l *fixtureLoader) ConvertToMatchRule(rc configs.RuleConfig) (*model.MatchRule, error) {
	responses := make(map[model.HTTPMethod][]byte, len(rc.Responses))
	for method, resp := range rc.Responses {
		m, ok := model.ParseHTTPMethod(method)
		if !ok {
			return nil, fmt.Errorf("%w: %q", model.ErrUnknownMethod, method)
		}
		body, err := l.body(resp)
		if err != nil {
			return nil, fmt.Errorf("response for %s: %w", m, err)
		}
		responses[m] = body
	}

	spec := model.RuleSpec{
		URL:            rc.URL,
		MatchMode:      model.URLMatchMode(rc.Match),
		FileExtensions: rc.FileExtensions,
		Responses:      responses,
		StatusCode:     rc.StatusCode,
		Headers:        rc.Headers,
		Delay:          rc.Delay,
		CachePolicy:    model.CachePolicy(rc.CachePolicy),
	}
	if rc.ContentType != "" {
		ct, err := contentType(rc.ContentType)
		if err != nil {
			return nil, err
		}
		spec.ContentType = &ct
	}
	if rc.Error != "" {
		spec.RequestError = errors.New(rc.Error)
	}

	return model.NewMatchRule(spec)
}

func (l *fixtureLoader) body(resp configs.ResponseConfig) ([]byte, error) {
	switch {
	case resp.Redirect != "":
		return model.RedirectBody(resp.Redirect), nil
	case resp.BodyBase64 != "":
		decoded, err := base64.StdEncoding.DecodeString(resp.BodyBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode bodyBase64: %w", err)
		}
		return decoded, nil
	case resp.BodyFile != "":
		path := l.config.ResolvePath(resp.BodyFile)
		data, err, _ := l.sfGroup.Do(path, func() (interface{}, error) {
			return os.ReadFile(path)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to read bodyFile: %w", err)
		}
		return append([]byte(nil), data.([]byte)...), nil
	default:
		return []byte(resp.Body), nil
	}
}

// contentType resolves a registered content type name, or accepts a raw
// MIME type such as "text/csv".
func contentType(name string) (model.ContentType, error) {
	if ct, ok := model.LookupContentType(name); ok {
		return ct, nil
	}
	if strings.Contains(name, "/") {
		return model.ContentType{Name: strings.ReplaceAll(name, "/", "-"), HeaderValue: name}, nil
	}
	return model.ContentType{}, fmt.Errorf("unknown content type %q", name)
}
