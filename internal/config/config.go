// Package config provides configuration management for nvrdash.
//
// Configuration is loaded in the following order (later sources override
// earlier ones):
//  1. Default values (hardcoded)
//  2. Configuration files (./config.yaml, /etc/nvrdash/config.yaml)
//  3. Environment variables (NVRDASH_ prefix)
//
// Use NVRDASH_ prefix and underscores for nested keys:
//   - NVRDASH_SERVER_PORT=8443
//   - NVRDASH_NETWORK_IP_OVERRIDE=192.168.1.31
//   - NVRDASH_DOCKER_SERVICE_NAME=scrypted
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the root configuration structure for nvrdash.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Auth     AuthConfig     `mapstructure:"auth" yaml:"auth"`
	Network  NetworkConfig  `mapstructure:"network" yaml:"network"`
	Hardware HardwareConfig `mapstructure:"hardware" yaml:"hardware"`
	Docker   DockerConfig   `mapstructure:"docker" yaml:"docker"`
	NVR      NVRConfig      `mapstructure:"nvr" yaml:"nvr"`
	Backup   BackupConfig   `mapstructure:"backup" yaml:"backup"`
	Cache    CacheConfig    `mapstructure:"cache" yaml:"cache"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Host is the server bind address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the server listen port.
	Port int `mapstructure:"port" yaml:"port" validate:"min=1,max=65535"`

	// ReadTimeout and WriteTimeout bound request handling.
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`

	// ShutdownTimeout is the maximum duration for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	// TLSCert/TLSKey enable HTTPS when both are set. When loading them
	// fails the server logs a warning and falls back to plain HTTP so
	// the dashboard stays reachable on an appliance with a broken cert.
	TLSCert string `mapstructure:"tls_cert" yaml:"tls_cert"`
	TLSKey  string `mapstructure:"tls_key" yaml:"tls_key"`

	// RateLimit is the maximum requests per second per client, 0
	// disables limiting.
	RateLimit int `mapstructure:"rate_limit" yaml:"rate_limit" validate:"min=0"`

	// AllowedOrigins are the CORS allowed origins.
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`

	// Debug enables verbose errors.
	Debug bool `mapstructure:"debug" yaml:"debug"`
}

// AuthUser is one statically configured dashboard user.
type AuthUser struct {
	// Username for HTTP basic authentication.
	Username string `mapstructure:"username" yaml:"username" validate:"required"`

	// PasswordHash is a bcrypt hash of the user's password.
	PasswordHash string `mapstructure:"password_hash" yaml:"password_hash" validate:"required"`
}

// AuthConfig contains request-authentication settings. Credentials are
// checked by a pluggable checker; the built-in implementations read the
// static user list and an htpasswd-style file.
type AuthConfig struct {
	// Enabled guards all API routes behind basic auth.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Users is the static user list.
	Users []AuthUser `mapstructure:"users" yaml:"users" validate:"dive"`

	// HtpasswdFile is an optional bcrypt htpasswd file consulted after
	// the static list.
	HtpasswdFile string `mapstructure:"htpasswd_file" yaml:"htpasswd_file"`

	// Realm is the basic-auth realm presented on 401 responses.
	Realm string `mapstructure:"realm" yaml:"realm"`
}

// NetworkConfig contains operator inputs to host-identity resolution.
type NetworkConfig struct {
	// IPOverride forces the resolved host IP. Assignment mode becomes
	// static_override unconditionally.
	IPOverride string `mapstructure:"ip_override" yaml:"ip_override" validate:"omitempty,ip4_addr"`

	// Gateway and Subnet complete the static descriptor.
	Gateway string `mapstructure:"gateway" yaml:"gateway" validate:"omitempty,ip4_addr"`
	Subnet  string `mapstructure:"subnet" yaml:"subnet" validate:"omitempty,ip4_addr"`

	// InterfacePriority is the ordered interface list used as the final
	// address fallback and for traffic counters.
	InterfacePriority []string `mapstructure:"interface_priority" yaml:"interface_priority"`
}

// HardwareConfig locates the host facts visible to the sandbox.
type HardwareConfig struct {
	// HostRoot is the prefix the host's /dev, /proc and /sys are
	// bind-mounted under. Empty probes only the container namespace.
	HostRoot string `mapstructure:"host_root" yaml:"host_root"`

	// AcceleratorDevice, AcceleratorDriver and AcceleratorVendor
	// identify the AI accelerator.
	AcceleratorDevice string `mapstructure:"accelerator_device" yaml:"accelerator_device"`
	AcceleratorDriver string `mapstructure:"accelerator_driver" yaml:"accelerator_driver"`
	AcceleratorVendor string `mapstructure:"accelerator_vendor" yaml:"accelerator_vendor"`

	// BackupMount is the designated USB backup-volume mount point.
	BackupMount string `mapstructure:"backup_mount" yaml:"backup_mount"`

	// ThermalZone is the SoC temperature source.
	ThermalZone string `mapstructure:"thermal_zone" yaml:"thermal_zone"`
}

// DockerConfig contains container runtime settings.
type DockerConfig struct {
	// Socket is the runtime socket path, empty for environment defaults.
	Socket string `mapstructure:"socket" yaml:"socket"`

	// ServiceName is the monitored NVR service's container name.
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`

	// ContainerNameOverride short-circuits self-identity resolution.
	ContainerNameOverride string `mapstructure:"container_name_override" yaml:"container_name_override"`

	// Timeout bounds every runtime call.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// NVRConfig describes the monitored NVR service's on-disk layout.
type NVRConfig struct {
	// RecordingsPath is the recordings directory root.
	RecordingsPath string `mapstructure:"recordings_path" yaml:"recordings_path"`

	// CameraNames maps camera IDs to display names.
	CameraNames map[string]string `mapstructure:"camera_names" yaml:"camera_names"`
}

// BackupConfig points at the sibling backup service the dashboard
// proxies to.
type BackupConfig struct {
	// BaseURL is the backup API origin (self-signed HTTPS on the
	// runtime gateway by default).
	BaseURL string `mapstructure:"base_url" yaml:"base_url" validate:"omitempty,url"`

	// GetTimeout and PostTimeout bound proxied calls.
	GetTimeout  time.Duration `mapstructure:"get_timeout" yaml:"get_timeout"`
	PostTimeout time.Duration `mapstructure:"post_timeout" yaml:"post_timeout"`
}

// CacheConfig tunes per-category staleness.
type CacheConfig struct {
	// HardwareTTL boxes the hardware profile.
	HardwareTTL time.Duration `mapstructure:"hardware_ttl" yaml:"hardware_ttl"`

	// NetworkTTL boxes the network identity.
	NetworkTTL time.Duration `mapstructure:"network_ttl" yaml:"network_ttl"`

	// StatsTTL boxes the aggregated stats snapshot.
	StatsTTL time.Duration `mapstructure:"stats_ttl" yaml:"stats_ttl"`

	// ProbeTimeout bounds each external command a probe runs.
	ProbeTimeout time.Duration `mapstructure:"probe_timeout" yaml:"probe_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `mapstructure:"level" yaml:"level"`

	// Format is the log format (json, console).
	Format string `mapstructure:"format" yaml:"format"`

	// Output is the destination (stdout, stderr).
	Output string `mapstructure:"output" yaml:"output"`
}

// Load reads configuration from a file and environment variables. If
// cfgFile is empty, standard locations are searched; a missing file
// falls back to defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/nvrdash")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("NVRDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration, used by `config init` to
// emit a starter file.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	// Defaults always decode; the types are our own.
	_ = v.Unmarshal(cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8443)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.tls_cert", "/etc/ssl/dashboard/server.crt")
	v.SetDefault("server.tls_key", "/etc/ssl/dashboard/server.key")
	v.SetDefault("server.rate_limit", 20)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.debug", false)

	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.realm", "NVR Dashboard")
	v.SetDefault("auth.htpasswd_file", "")

	// Keys without a meaningful default are still registered: viper only
	// surfaces environment overrides for keys it knows about.
	v.SetDefault("network.ip_override", "")
	v.SetDefault("network.gateway", "")
	v.SetDefault("network.subnet", "")
	v.SetDefault("network.interface_priority", []string{"eth0", "end0", "wlan0"})

	v.SetDefault("hardware.host_root", "/host")
	v.SetDefault("hardware.accelerator_device", "/dev/hailo0")
	v.SetDefault("hardware.accelerator_driver", "hailo_pci")
	v.SetDefault("hardware.accelerator_vendor", "0x1e60")
	v.SetDefault("hardware.backup_mount", "/mnt/backup-ssd")
	v.SetDefault("hardware.thermal_zone", "/host/sys/class/thermal/thermal_zone0/temp")

	v.SetDefault("docker.socket", "/var/run/docker.sock")
	v.SetDefault("docker.service_name", "scrypted")
	v.SetDefault("docker.container_name_override", "")
	v.SetDefault("docker.timeout", "4s")

	v.SetDefault("nvr.recordings_path", "/scrypted/nvr/recordings")

	v.SetDefault("backup.base_url", "https://172.17.0.1:8081")
	v.SetDefault("backup.get_timeout", "5s")
	v.SetDefault("backup.post_timeout", "10s")

	v.SetDefault("cache.hardware_ttl", "30s")
	v.SetDefault("cache.network_ttl", "5s")
	v.SetDefault("cache.stats_ttl", "5s")
	v.SetDefault("cache.probe_timeout", "3s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}
