// Package cli holds the startup steps shared by the hirrd binaries.
package cli

import (
	"os"

	"github.com/hirrd/hirrd/internal/config"
	"github.com/hirrd/hirrd/internal/instance"
)

// Env is the resolved configuration of one invocation.
type Env struct {
	Config   *config.Config
	Instance string
}

// Load reads .env files (~/.hirrd/.env, then ./.env), the config file and
// HIRRD_* overrides, and resolves the instance name. Precedence for the
// instance: flag, config default_instance, "main".
func Load(instanceFlag string) (*Env, error) {
	if err := config.LoadDotEnv(instance.EnvPath(), ".env"); err != nil {
		return nil, err
	}
	cfg, err := config.LoadOrDefault(instance.ConfigPath())
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	name := instance.Resolve(instanceFlag, cfg)
	if err := instance.ValidateName(name); err != nil {
		return nil, err
	}
	return &Env{Config: cfg, Instance: name}, nil
}

// SocketPath returns the daemon socket of the resolved instance.
func (e *Env) SocketPath() string {
	return instance.SocketPath(e.Instance)
}
