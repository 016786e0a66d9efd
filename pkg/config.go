package semnet

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Host        string `yaml:"host" validate:"required"`
	Port        int    `yaml:"port" validate:"min=0,max=65535"`
	ScenarioDir string `yaml:"scenario_dir" validate:"required"`
	// MaxCompletions caps forcing for every request; requests may only
	// lower it.
	MaxCompletions int    `yaml:"max_completions" validate:"min=0"`
	LogLevel       string `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogConsole     bool   `yaml:"log_console"`
	// AllowedOrigins restricts websocket upgrades by Origin header. Empty
	// allows any origin.
	AllowedOrigins []string `yaml:"allowed_origins" validate:"dive,url"`
	Pprof          bool     `yaml:"pprof"`
}

func DefaultConfig() *Config {
	return &Config{
		Host:        "0.0.0.0",
		Port:        9000,
		ScenarioDir: "scenarios",
		LogLevel:    "info",
	}
}

// LoadConfig reads a YAML config over the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(c)
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
