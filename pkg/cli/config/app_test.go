package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/remedios-lab/remedios/pkg/cli/config"
)

func TestLoadAppConfig(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		cfg, err := config.LoadAppConfig("")
		gt.NoError(t, err).Required()
		gt.Value(t, cfg.Scheduler.PollInterval.Std()).Equal(5 * time.Second)
		gt.Value(t, cfg.Scheduler.ReapInterval.Std()).Equal(time.Hour)
		gt.Value(t, cfg.Scheduler.SessionTTL.Std()).Equal(time.Hour)
		gt.String(t, cfg.Dialog.FailureReply).NotEqual("")
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.toml")
		body := `
[scheduler]
poll_interval = "10s"
session_ttl = "30m"

[dialog]
failure_reply = "Something broke."
`
		gt.NoError(t, os.WriteFile(path, []byte(body), 0600)).Required()

		cfg, err := config.LoadAppConfig(path)
		gt.NoError(t, err).Required()
		gt.Value(t, cfg.Scheduler.PollInterval.Std()).Equal(10 * time.Second)
		gt.Value(t, cfg.Scheduler.SessionTTL.Std()).Equal(30 * time.Minute)
		// Untouched fields keep their defaults.
		gt.Value(t, cfg.Scheduler.ReapInterval.Std()).Equal(time.Hour)
		gt.Value(t, cfg.Dialog.FailureReply).Equal("Something broke.")
	})

	t.Run("rejects a non-positive interval", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.toml")
		body := `
[scheduler]
poll_interval = "0s"
`
		gt.NoError(t, os.WriteFile(path, []byte(body), 0600)).Required()

		_, err := config.LoadAppConfig(path)
		gt.Error(t, err)
	})

	t.Run("rejects an unparseable duration", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.toml")
		body := `
[scheduler]
poll_interval = "every so often"
`
		gt.NoError(t, os.WriteFile(path, []byte(body), 0600)).Required()

		_, err := config.LoadAppConfig(path)
		gt.Error(t, err)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := config.LoadAppConfig(filepath.Join(t.TempDir(), "nope.toml"))
		gt.Error(t, err)
	})
}
