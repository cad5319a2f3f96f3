package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/remedios-lab/remedios/pkg/service/worker"
	"github.com/remedios-lab/remedios/pkg/usecase"
)

// Duration parses "5s" style strings in TOML fields
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return goerr.Wrap(err, "invalid duration", goerr.V("value", string(text)))
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// AppConfig is the optional TOML tuning file for scheduling and dialogue
// behavior. Every field has a default, so running without the file is fine.
type AppConfig struct {
	Scheduler SchedulerConfig `toml:"scheduler"`
	Dialog    DialogConfig    `toml:"dialog"`
}

type SchedulerConfig struct {
	PollInterval Duration `toml:"poll_interval"`
	ReapInterval Duration `toml:"reap_interval"`
	SessionTTL   Duration `toml:"session_ttl"`
}

type DialogConfig struct {
	FailureReply string `toml:"failure_reply"`
}

// DefaultAppConfig returns the built-in tuning values.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Scheduler: SchedulerConfig{
			PollInterval: Duration(worker.DefaultPollInterval),
			ReapInterval: Duration(worker.DefaultReapInterval),
			SessionTTL:   Duration(worker.DefaultSessionTTL),
		},
		Dialog: DialogConfig{
			FailureReply: usecase.DefaultFailureReply,
		},
	}
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	if a.Scheduler.PollInterval <= 0 {
		return goerr.New("scheduler.poll_interval must be positive")
	}
	if a.Scheduler.ReapInterval <= 0 {
		return goerr.New("scheduler.reap_interval must be positive")
	}
	if a.Scheduler.SessionTTL <= 0 {
		return goerr.New("scheduler.session_ttl must be positive")
	}
	if a.Dialog.FailureReply == "" {
		return goerr.New("dialog.failure_reply must not be empty")
	}
	return nil
}

// LoadAppConfig loads the tuning file, layered over the defaults. An empty
// path returns the defaults unchanged.
func LoadAppConfig(path string) (*AppConfig, error) {
	config := DefaultAppConfig()
	if path == "" {
		return config, nil
	}

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V("path", path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V("path", path))
	}

	return config, nil
}
