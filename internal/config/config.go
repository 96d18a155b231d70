// Package config implements hierarchical YAML configuration, adapted
// from the teacher's viper-based singleton. The CLI's five required
// flags (interface/inputs/outputs/rate/port, spec §6) remain
// authoritative for device identity; this package supplies everything
// else (logging, persistence, transport buffer sizing) and picks up
// changes to those settings at runtime via fsnotify, exactly as the
// teacher does.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

var (
	instance *Config
	once     sync.Once
)

// Config is the root configuration document.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Device    DeviceConfig    `mapstructure:"device"`
	Transport TransportConfig `mapstructure:"transport"`
	Store     StoreConfig     `mapstructure:"store"`
	Advanced  AdvancedConfig  `mapstructure:"advanced"`

	v  *viper.Viper
	mu sync.RWMutex
}

// AppConfig holds process-wide identity and directory settings.
type AppConfig struct {
	Name    string `mapstructure:"name"`
	DataDir string `mapstructure:"data_dir"`
	LogDir  string `mapstructure:"log_dir"`
}

// DeviceConfig holds defaults for the audio device that the CLI's five
// required flags may override at startup (spec §6).
type DeviceConfig struct {
	Interface         string `mapstructure:"interface"`
	Inputs            int    `mapstructure:"inputs"`
	Outputs           int    `mapstructure:"outputs"`
	SampleRate        int    `mapstructure:"sample_rate"`
	RestoreMixerState bool   `mapstructure:"restore_mixer_state"`
	MixerStateFile    string `mapstructure:"mixer_state_file"`
}

// TransportConfig holds control-transport tuning knobs not fixed by the
// CLI's -port flag.
type TransportConfig struct {
	ReadBufferSize  int           `mapstructure:"read_buffer_size"`
	WriteBufferSize int           `mapstructure:"write_buffer_size"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
}

// StoreConfig holds the SQLite parameter store's connection settings.
type StoreConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// AdvancedConfig holds operational knobs that rarely need to change.
type AdvancedConfig struct {
	LogLevel  string `mapstructure:"log_level"`
	DebugMode bool   `mapstructure:"debug_mode"`
}

// Get returns the process-wide configuration singleton, loading it on
// first access.
func Get() *Config {
	once.Do(func() {
		instance = &Config{v: viper.New()}
		if err := instance.load(); err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
		}
	})
	return instance
}

func (c *Config) load() error {
	c.v.SetConfigName("config")
	c.v.SetConfigType("yaml")

	c.v.AddConfigPath(c.userConfigDir())
	c.v.AddConfigPath("/etc/audioproc")
	c.v.AddConfigPath(".")

	c.setDefaults()

	if err := c.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := c.createDefaultConfig(); err != nil {
				return fmt.Errorf("create default config: %w", err)
			}
		} else {
			return fmt.Errorf("read config: %w", err)
		}
	}

	if err := c.v.Unmarshal(c); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	c.v.WatchConfig()
	c.v.OnConfigChange(func(e fsnotify.Event) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if err := c.v.Unmarshal(c); err != nil {
			fmt.Fprintf(os.Stderr, "config: reload failed: %v\n", err)
		}
	})

	return nil
}

func (c *Config) setDefaults() {
	c.v.SetDefault("app.name", "audioproc")
	c.v.SetDefault("app.data_dir", c.dataDir())
	c.v.SetDefault("app.log_dir", filepath.Join(c.dataDir(), "logs"))

	c.v.SetDefault("device.interface", "default")
	c.v.SetDefault("device.inputs", 2)
	c.v.SetDefault("device.outputs", 2)
	c.v.SetDefault("device.sample_rate", 48000)
	c.v.SetDefault("device.restore_mixer_state", true)
	c.v.SetDefault("device.mixer_state_file", filepath.Join(os.Getenv("HOME"), ".config", "asound.state"))

	c.v.SetDefault("transport.read_buffer_size", 4096)
	c.v.SetDefault("transport.write_buffer_size", 4096)
	c.v.SetDefault("transport.write_timeout", 5*time.Second)

	c.v.SetDefault("store.path", filepath.Join(c.dataDir(), "audioproc.db"))
	c.v.SetDefault("store.max_open_conns", 10)
	c.v.SetDefault("store.max_idle_conns", 5)
	c.v.SetDefault("store.conn_max_lifetime", time.Hour)

	c.v.SetDefault("advanced.log_level", "info")
	c.v.SetDefault("advanced.debug_mode", false)
}

func (c *Config) userConfigDir() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "audioproc")
}

func (c *Config) dataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "audioproc")
}

func (c *Config) createDefaultConfig() error {
	dir := c.userConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return c.v.SafeWriteConfigAs(filepath.Join(dir, "config.yaml"))
}

// Reload re-reads the configuration file from disk.
func (c *Config) Reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v.ReadInConfig()
}
