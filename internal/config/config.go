package config

import (
	"io"
	"os"
	"time"

	"github.com/bale2838/Tetris/internal/domain"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var ErrInvalidRules = errors.New("invalid game rules")

const (
	minBoardSide = 4
	portEnv      = "SERVER_PORT"
)

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type SessionConfig struct {
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	JanitorPeriod time.Duration `yaml:"janitor_period"`
	UpdatesBuffer int           `yaml:"updates_buffer"`
}

type config struct {
	Server  ServerConfig  `yaml:"server"`
	Game    domain.Rules  `yaml:"game"`
	Session SessionConfig `yaml:"session"`
}

func Default() config {
	return config{
		Server: ServerConfig{Addr: ":8080"},
		Game:   domain.DefaultRules(),
		Session: SessionConfig{
			IdleTimeout:   10 * time.Minute,
			JanitorPeriod: 30 * time.Second,
			UpdatesBuffer: 16,
		},
	}
}

// New reads the YAML file at cfgPath over the defaults. A missing file is
// not an error; SERVER_PORT overrides the listen address.
func New(cfgPath string) (config, error) {
	cfg := Default()
	file, err := os.Open(cfgPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return config{}, errors.WithMessage(err, "open config file")
	default:
		defer func() {
			_ = file.Close()
		}()
		if err := yaml.NewDecoder(file).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return config{}, errors.WithMessage(err, "decode yaml config")
		}
	}
	if port := os.Getenv(portEnv); port != "" {
		cfg.Server.Addr = port
	}
	if err := Validate(cfg.Game); err != nil {
		return config{}, err
	}
	cfg.Session = withSessionDefaults(cfg.Session)
	return cfg, nil
}

func withSessionDefaults(cfg SessionConfig) SessionConfig {
	defaults := Default().Session
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaults.IdleTimeout
	}
	if cfg.JanitorPeriod <= 0 {
		cfg.JanitorPeriod = defaults.JanitorPeriod
	}
	if cfg.UpdatesBuffer < 1 {
		cfg.UpdatesBuffer = 1
	}
	return cfg
}

func Validate(rules domain.Rules) error {
	switch {
	case rules.Width < minBoardSide || rules.Height < minBoardSide:
		return errors.WithMessagef(ErrInvalidRules, "board %dx%d is smaller than %dx%d",
			rules.Width, rules.Height, minBoardSide, minBoardSide)
	case rules.IntervalFloor <= 0:
		return errors.WithMessage(ErrInvalidRules, "interval floor must be positive")
	case rules.BaseInterval < rules.IntervalFloor:
		return errors.WithMessagef(ErrInvalidRules, "base interval %s is below the floor %s",
			rules.BaseInterval, rules.IntervalFloor)
	case rules.IntervalStep < 0:
		return errors.WithMessage(ErrInvalidRules, "interval step must not be negative")
	case rules.LineCap < 1:
		return errors.WithMessage(ErrInvalidRules, "line cap must be positive")
	}
	return nil
}
