package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ratel-online/landlord/consts"
	"github.com/ratel-online/landlord/database"
	"github.com/ratel-online/landlord/game"
	"github.com/ratel-online/landlord/rule"
	"github.com/spf13/viper"
)

const EnvPrefix = "LANDLORD"

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Game   GameConfig   `mapstructure:"game"`
	Robot  RobotConfig  `mapstructure:"robot"`
	Rule   RuleConfig   `mapstructure:"rule"`
}

type ServerConfig struct {
	TcpAddr string `mapstructure:"tcpAddr"`
	WsAddr  string `mapstructure:"wsAddr"`
}

type GameConfig struct {
	BaseScore      int           `mapstructure:"baseScore"`
	BidMode        string        `mapstructure:"bidMode"` // quick, contest
	SpringMultiple int           `mapstructure:"springMultiple"`
	KittyBonus     bool          `mapstructure:"kittyBonus"`
	RobTimeout     time.Duration `mapstructure:"robTimeout"`
	PlayTimeout    time.Duration `mapstructure:"playTimeout"`
	AbsentDelay    time.Duration `mapstructure:"absentDelay"`
	IdleTimeout    time.Duration `mapstructure:"idleTimeout"`
}

type RobotConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	JoinDelay  time.Duration `mapstructure:"joinDelay"`
	ThinkDelay time.Duration `mapstructure:"thinkDelay"`
}

type RuleConfig struct {
	Catalog string `mapstructure:"catalog"` // empty generates the catalog
}

func defaults(v *viper.Viper) {
	s := database.DefaultSettings()
	v.SetDefault("server.tcpAddr", ":9999")
	v.SetDefault("server.wsAddr", ":9998")
	v.SetDefault("game.baseScore", 10)
	v.SetDefault("game.bidMode", consts.BidModeQuick)
	v.SetDefault("game.springMultiple", 3)
	v.SetDefault("game.kittyBonus", false)
	v.SetDefault("game.robTimeout", s.RobTimeout)
	v.SetDefault("game.playTimeout", s.PlayTimeout)
	v.SetDefault("game.absentDelay", s.AbsentDelay)
	v.SetDefault("game.idleTimeout", s.IdleTimeout)
	v.SetDefault("robot.enabled", s.Robots)
	v.SetDefault("robot.joinDelay", s.RobotJoinDelay)
	v.SetDefault("robot.thinkDelay", s.RobotThinkDelay)
	v.SetDefault("rule.catalog", "")
}

// Load reads the YAML file at path over the defaults. Environment variables
// such as LANDLORD_GAME_BIDMODE win over both. An empty path loads defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	defaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Game.BidMode != consts.BidModeQuick && c.Game.BidMode != consts.BidModeContest {
		return fmt.Errorf("game.bidMode must be %s or %s, got %q", consts.BidModeQuick, consts.BidModeContest, c.Game.BidMode)
	}
	if c.Game.BaseScore <= 0 || c.Game.SpringMultiple <= 0 {
		return fmt.Errorf("game.baseScore and game.springMultiple must be positive")
	}
	if c.Game.RobTimeout <= 0 || c.Game.PlayTimeout <= 0 {
		return fmt.Errorf("game.robTimeout and game.playTimeout must be positive")
	}
	return nil
}

// Settings turns the configuration into room settings, loading the rule
// catalog file when one is configured.
func (c *Config) Settings() (database.Settings, error) {
	catalog := rule.Default()
	if c.Rule.Catalog != "" {
		loaded, err := rule.LoadFile(c.Rule.Catalog)
		if err != nil {
			return database.Settings{}, err
		}
		catalog = loaded
	}
	return database.Settings{
		Game: game.Options{
			BidMode:        c.Game.BidMode,
			BaseScore:      c.Game.BaseScore,
			SpringMultiple: c.Game.SpringMultiple,
			KittyBonus:     c.Game.KittyBonus,
		},
		Catalog:         catalog,
		RobTimeout:      c.Game.RobTimeout,
		PlayTimeout:     c.Game.PlayTimeout,
		AbsentDelay:     c.Game.AbsentDelay,
		Robots:          c.Robot.Enabled,
		RobotJoinDelay:  c.Robot.JoinDelay,
		RobotThinkDelay: c.Robot.ThinkDelay,
		IdleTimeout:     c.Game.IdleTimeout,
	}, nil
}
