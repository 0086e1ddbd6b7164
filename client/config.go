package client

import (
	"fmt"
	"os"
	"time"

	"github.com/adamwoolhether/typedhttp/client/throttle"
	"github.com/adamwoolhether/typedhttp/codec"
	"github.com/adamwoolhether/typedhttp/internal/validate"
)

// Config is the file form of the client options.
//
//	timeout: 10s
//	user_agent: myapp/1.0
//	request_id_header: X-Request-ID
//	status_check: true
//	throttle:
//	  rps: 20
//	  burst: 5
type Config struct {
	Timeout           time.Duration    `yaml:"timeout" validate:"gte=0"`
	UserAgent         string           `yaml:"user_agent"`
	RequestIDHeader   string           `yaml:"request_id_header"`
	NoFollowRedirects bool             `yaml:"no_follow_redirects"`
	StatusCheck       bool             `yaml:"status_check"`
	Throttle          *throttle.Config `yaml:"throttle"`
}

// Validate checks the config's field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.Throttle != nil {
		return c.Throttle.Validate()
	}

	return nil
}

// ParseConfig decodes and validates a YAML config. Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := (codec.YAML{KnownFields: true}).Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadConfig reads and parses the YAML config at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	return ParseConfig(data)
}
