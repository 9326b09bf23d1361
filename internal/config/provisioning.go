package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// ProvisioningConfig holds the defaults applied to users created on first login.
type ProvisioningConfig struct {
	DefaultPlanID   int64  `mapstructure:"defaultPlanId"`
	StartingCredits int64  `mapstructure:"startingCredits"`
	DefaultRole     string `mapstructure:"defaultRole"`
}

func DefaultProvisioningConfig() ProvisioningConfig {
	return ProvisioningConfig{
		DefaultPlanID:   1,
		StartingCredits: 10,
		DefaultRole:     "member",
	}
}

type ProvisioningConfigHolder struct {
	current atomic.Value // holds ProvisioningConfig
}

// NewProvisioningConfigHolder reads provisioning.yml from the well-known config
// directories, falling back to defaults when no file exists.
func NewProvisioningConfigHolder(log *zap.Logger) (*ProvisioningConfigHolder, error) {
	return LoadProvisioningConfig(log, "/etc/leadfuel", ".")
}

// LoadProvisioningConfig reads provisioning.yml from the given paths and keeps
// watching the file for changes.
func LoadProvisioningConfig(log *zap.Logger, paths ...string) (*ProvisioningConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}

	v := viper.New()
	v.SetConfigName("provisioning")
	v.SetConfigType("yml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("LEADFUEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultProvisioningConfig()
	v.SetDefault("provisioning.defaultPlanId", defaults.DefaultPlanID)
	v.SetDefault("provisioning.startingCredits", defaults.StartingCredits)
	v.SetDefault("provisioning.defaultRole", defaults.DefaultRole)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fileFound = false
	}

	var cfg ProvisioningConfig
	if err := v.UnmarshalKey("provisioning", &cfg); err != nil {
		return nil, err
	}
	if err := validateProvisioningConfig(cfg); err != nil {
		return nil, err
	}

	holder := &ProvisioningConfigHolder{}
	holder.current.Store(cfg)

	if !fileFound {
		return holder, nil
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		var updated ProvisioningConfig
		if err := v.UnmarshalKey("provisioning", &updated); err != nil {
			log.Warn("provisioning config reload failed", zap.Error(err))
			return
		}
		if err := validateProvisioningConfig(updated); err != nil {
			log.Warn("invalid provisioning config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("provisioning config reloaded", zap.String("file", e.Name))
	})
	v.WatchConfig()

	return holder, nil
}

// StaticProvisioningConfig returns a holder that never reloads.
func StaticProvisioningConfig(cfg ProvisioningConfig) *ProvisioningConfigHolder {
	holder := &ProvisioningConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *ProvisioningConfigHolder) Get() ProvisioningConfig {
	if h == nil {
		return DefaultProvisioningConfig()
	}
	return h.current.Load().(ProvisioningConfig)
}

func validateProvisioningConfig(cfg ProvisioningConfig) error {
	if cfg.DefaultPlanID <= 0 {
		return errors.New("provisioning.defaultPlanId must be positive")
	}
	if cfg.StartingCredits < 0 {
		return errors.New("provisioning.startingCredits cannot be negative")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.DefaultRole)) {
	case "admin", "member":
	default:
		return errors.New("provisioning.defaultRole must be admin or member")
	}
	return nil
}
