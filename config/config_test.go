package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ratel-online/landlord/config"
	"github.com/ratel-online/landlord/consts"
	"github.com/ratel-online/landlord/rule"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, ":9999", cfg.Server.TcpAddr)
	require.Equal(t, ":9998", cfg.Server.WsAddr)
	require.Equal(t, consts.BidModeQuick, cfg.Game.BidMode)
	require.Equal(t, 10, cfg.Game.BaseScore)
	require.Equal(t, consts.RobTimeout, cfg.Game.RobTimeout)
	require.Equal(t, consts.PlayTimeout, cfg.Game.PlayTimeout)
	require.True(t, cfg.Robot.Enabled)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "landlord.yaml", `
game:
  bidMode: contest
  baseScore: 5
  kittyBonus: true
  playTimeout: 15s
robot:
  enabled: false
  thinkDelay: 200ms
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, consts.BidModeContest, cfg.Game.BidMode)
	require.Equal(t, 5, cfg.Game.BaseScore)
	require.True(t, cfg.Game.KittyBonus)
	require.Equal(t, 15*time.Second, cfg.Game.PlayTimeout)
	require.Equal(t, consts.RobTimeout, cfg.Game.RobTimeout)
	require.False(t, cfg.Robot.Enabled)
	require.Equal(t, 200*time.Millisecond, cfg.Robot.ThinkDelay)
	require.Equal(t, 3, cfg.Game.SpringMultiple)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("LANDLORD_GAME_BIDMODE", "contest")
	t.Setenv("LANDLORD_SERVER_TCPADDR", ":7000")
	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, consts.BidModeContest, cfg.Game.BidMode)
	require.Equal(t, ":7000", cfg.Server.TcpAddr)
}

func TestLoadRejects(t *testing.T) {
	scenarios := []struct {
		description string
		content     string
	}{
		{description: "unknown_bid_mode", content: "game:\n  bidMode: auction\n"},
		{description: "zero_base_score", content: "game:\n  baseScore: 0\n"},
		{description: "negative_timeout", content: "game:\n  robTimeout: -1s\n"},
	}
	for _, scenario := range scenarios {
		t.Run(scenario.description, func(t *testing.T) {
			_, err := config.Load(writeFile(t, "landlord.yaml", scenario.content))
			require.Error(t, err)
		})
	}
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rule.json")
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = rule.Default().WriteTo(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	cfg, err := config.Load(writeFile(t, "landlord.yaml", "game:\n  springMultiple: 2\nrule:\n  catalog: "+path+"\n"))
	require.NoError(t, err)
	settings, err := cfg.Settings()
	require.NoError(t, err)
	require.Equal(t, 2, settings.Game.SpringMultiple)
	require.Equal(t, rule.Default().Size(), settings.Catalog.Size())
	require.Equal(t, consts.PlayTimeout, settings.PlayTimeout)

	cfg.Rule.Catalog = filepath.Join(t.TempDir(), "missing.json")
	_, err = cfg.Settings()
	require.Error(t, err)
}
