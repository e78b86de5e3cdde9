package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for environment-variable overrides, e.g.
// HILABS_DATABASE_HOST overrides database.host.
const envPrefix = "HILABS"

// Loader reads configuration from file and environment and supports hot
// reloading of the file.  Environment variables always win over file values.
type Loader struct {
	v  *viper.Viper
	mu sync.RWMutex

	current   *Config
	onChange  []func(*Config)
	watchOnce sync.Once
}

// NewLoader constructs a Loader bound to the optional configuration file at
// path.  An empty path means environment-and-defaults only.
func NewLoader(path string) *Loader {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Loader{v: v}
}

// Load reads, defaults, and validates the configuration.  The returned Config
// is a snapshot; subsequent reloads do not mutate it.
func (l *Loader) Load() (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.v.ConfigFileUsed() != "" {
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", l.v.ConfigFileUsed(), err)
		}
	}

	cfg, err := l.unmarshal()
	if err != nil {
		return nil, err
	}
	l.current = cfg
	return cfg, nil
}

func (l *Loader) unmarshal() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Current returns the most recently loaded Config, or nil before Load.
func (l *Loader) Current() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnChange registers a callback invoked with the new Config after each
// successful hot reload.  Callbacks run on viper's watch goroutine and must
// return quickly.
func (l *Loader) OnChange(fn func(*Config)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch begins watching the configuration file for changes.  A reload that
// fails validation is discarded and the previous Config stays active.
// Watch is a no-op when no configuration file is in use.
func (l *Loader) Watch() {
	if l.v.ConfigFileUsed() == "" {
		return
	}
	l.watchOnce.Do(func() {
		l.v.OnConfigChange(func(_ fsnotify.Event) {
			l.mu.Lock()
			cfg, err := l.unmarshal()
			if err != nil {
				l.mu.Unlock()
				return
			}
			l.current = cfg
			callbacks := make([]func(*Config), len(l.onChange))
			copy(callbacks, l.onChange)
			l.mu.Unlock()

			for _, fn := range callbacks {
				fn(cfg)
			}
		})
		l.v.WatchConfig()
	})
}
