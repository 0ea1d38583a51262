package configs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMode         = "optout"
	DefaultPoolSize     = 64
	DefaultMaxRedirects = 10
	DefaultCacheTTL     = 5 * time.Minute
)

// MockerConfig is the file-level configuration of the interceptor.
type MockerConfig struct {
	Mode      string          `json:"mode" yaml:"mode" validate:"omitempty,oneof=optout optin"`
	Log       LogConfig       `json:"log" yaml:"log"`
	Delivery  DeliveryConfig  `json:"delivery" yaml:"delivery"`
	Transport TransportConfig `json:"transport" yaml:"transport"`
	Ignore    []IgnoreConfig  `json:"ignore" yaml:"ignore" validate:"dive"`
	Rules     []RuleConfig    `json:"rules" yaml:"rules" validate:"dive"`

	// dir is the directory of the loaded file; relative bodyFile paths
	// resolve against it.
	dir string
}

type LogConfig struct {
	Level      string `json:"level" yaml:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`
	Format     string `json:"format" yaml:"format" validate:"omitempty,oneof=text json"`
	File       string `json:"file" yaml:"file"`
	MaxSizeMB  int    `json:"maxSizeMB" yaml:"maxSizeMB" validate:"min=0"`
	MaxBackups int    `json:"maxBackups" yaml:"maxBackups" validate:"min=0"`
	MaxAgeDays int    `json:"maxAgeDays" yaml:"maxAgeDays" validate:"min=0"`
	Compress   bool   `json:"compress" yaml:"compress"`
}

// DeliveryConfig sizes the worker pool that runs deliveries.
type DeliveryConfig struct {
	PoolSize int `json:"poolSize" yaml:"poolSize" validate:"min=0"`
}

type TransportConfig struct {
	MaxRedirects int           `json:"maxRedirects" yaml:"maxRedirects" validate:"min=0"`
	CacheTTL     time.Duration `json:"cacheTTL" yaml:"cacheTTL" validate:"min=0"`
	// PassThrough lets requests the interceptor declines reach the real
	// network through http.DefaultTransport's original value.
	PassThrough bool `json:"passThrough" yaml:"passThrough"`
}

type IgnoreConfig struct {
	URL   string `json:"url" yaml:"url" validate:"required,url"`
	Match string `json:"match" yaml:"match" validate:"omitempty,oneof=full ignore_query prefix"`
}

// RuleConfig describes one rule fixture.
type RuleConfig struct {
	URL            string                    `json:"url" yaml:"url" validate:"omitempty,url"`
	Match          string                    `json:"match" yaml:"match" validate:"omitempty,oneof=full ignore_query prefix"`
	FileExtensions []string                  `json:"fileExtensions" yaml:"fileExtensions" validate:"dive,required"`
	Responses      map[string]ResponseConfig `json:"responses" yaml:"responses" validate:"required,min=1,dive"`
	StatusCode     int                       `json:"statusCode" yaml:"statusCode" validate:"omitempty,min=100,max=599"`
	Headers        map[string]string         `json:"headers" yaml:"headers"`
	ContentType    string                    `json:"contentType" yaml:"contentType"`
	Delay          time.Duration             `json:"delay" yaml:"delay" validate:"min=0"`
	CachePolicy    string                    `json:"cachePolicy" yaml:"cachePolicy" validate:"omitempty,oneof=allowed not_allowed"`
	Error          string                    `json:"error" yaml:"error"`
}

// ResponseConfig is the body of one method. At most one source may be set.
type ResponseConfig struct {
	Body       string `json:"body" yaml:"body"`
	BodyBase64 string `json:"bodyBase64" yaml:"bodyBase64" validate:"omitempty,base64"`
	BodyFile   string `json:"bodyFile" yaml:"bodyFile"`
	Redirect   string `json:"redirect" yaml:"redirect" validate:"omitempty,url"`
}

func DefaultLogConfig() LogConfig {
	return LogConfig{Level: "info", Format: "text"}
}

// DefaultMockerConfig returns the configuration used when no file exists.
func DefaultMockerConfig() *MockerConfig {
	c := &MockerConfig{}
	c.applyDefaults()
	return c
}

// LoadMockerConfig reads, defaults and validates the config at path. An empty
// path falls back to MOCKER_CONFIG_PATH and then to mocker.<env>.yaml; a
// missing fallback file yields the defaults.
func LoadMockerConfig(path string) (*MockerConfig, error) {
	explicit := path != ""
	if !explicit {
		path = getConfigPath()
		explicit = os.Getenv("MOCKER_CONFIG_PATH") != ""
	}

	configFile, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return DefaultMockerConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := ParseMockerConfig(configFile)
	if err != nil {
		return nil, err
	}
	config.dir = filepath.Dir(path)
	return config, nil
}

// ParseMockerConfig decodes YAML data, applies defaults and validates it.
func ParseMockerConfig(data []byte) (*MockerConfig, error) {
	config := &MockerConfig{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

// Dir is the directory the config was loaded from, "" for parsed data.
func (c *MockerConfig) Dir() string {
	return c.dir
}

// ResolvePath resolves a fixture path relative to the config directory.
func (c *MockerConfig) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

func (c *MockerConfig) applyDefaults() {
	if c.Mode == "" {
		c.Mode = DefaultMode
	}
	c.Mode = strings.ToLower(c.Mode)
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Delivery.PoolSize == 0 {
		c.Delivery.PoolSize = DefaultPoolSize
	}
	if c.Transport.MaxRedirects == 0 {
		c.Transport.MaxRedirects = DefaultMaxRedirects
	}
	if c.Transport.CacheTTL == 0 {
		c.Transport.CacheTTL = DefaultCacheTTL
	}
}

// Validate runs the struct tag checks plus the cross-field rules that tags
// cannot express.
func (c *MockerConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}

	for i, r := range c.Rules {
		if r.URL == "" && len(r.FileExtensions) == 0 && !r.hasResponse("GET") {
			return fmt.Errorf("rules[%d]: a rule without url or fileExtensions needs a GET response", i)
		}
		for method, resp := range r.Responses {
			if n := resp.sources(); n > 1 {
				return fmt.Errorf("rules[%d].responses[%s]: body, bodyBase64, bodyFile and redirect are exclusive", i, method)
			}
		}
	}
	return nil
}

// hasResponse matches method keys case-insensitively, as rule conversion does.
func (r RuleConfig) hasResponse(method string) bool {
	for k := range r.Responses {
		if strings.EqualFold(k, method) {
			return true
		}
	}
	return false
}

func (r ResponseConfig) sources() int {
	n := 0
	for _, s := range []string{r.Body, r.BodyBase64, r.BodyFile, r.Redirect} {
		if s != "" {
			n++
		}
	}
	return n
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if path := os.Getenv("MOCKER_CONFIG_PATH"); path != "" {
		return path
	}

	env := os.Getenv("MOCKER_ENV")
	if env == "" {
		env = "local"
	}

	return fmt.Sprintf("mocker.%s.yaml", env)
}
