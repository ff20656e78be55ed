package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/pricemap/pkg/constants"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	Format  string

	// Config file
	ConfigFile string

	// Combiner configuration
	DatabaseRoot     string
	RegistryFile     string
	DebounceInterval time.Duration
	ShutdownTimeout  time.Duration

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (~/.pricemap.yaml or ./.pricemap.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	v.SetDefault("database_root", constants.DefaultDatabaseRoot)
	v.SetDefault("debounce_interval", constants.DefaultDebounceInterval)
	v.SetDefault("shutdown_timeout", constants.ShutdownTimeout)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")

	if configFile := os.Getenv("PRICEMAP_CONFIG"); configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(constants.ConfigFileName)
	}

	// Read config file (ignore error if not found)
	_ = v.ReadInConfig()

	return configFrom(v), nil
}

// configFrom builds a Config from a populated viper instance.
func configFrom(v *viper.Viper) *Config {
	return &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		Format:  v.GetString("output"),

		ConfigFile: v.ConfigFileUsed(),

		DatabaseRoot:     v.GetString("database_root"),
		RegistryFile:     v.GetString("registry_file"),
		DebounceInterval: v.GetDuration("debounce_interval"),
		ShutdownTimeout:  v.GetDuration("shutdown_timeout"),

		// LogLevel stays empty unless set so -v/-q can take effect
		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}
}

// ReadConfigFile merges an explicit config file (--config) over c. Values
// already set by flags are applied afterwards by UpdateFromFlags.
func (c *Config) ReadConfigFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	c.ConfigFile = v.ConfigFileUsed()
	if v.IsSet("database_root") {
		c.DatabaseRoot = v.GetString("database_root")
	}
	if v.IsSet("registry_file") {
		c.RegistryFile = v.GetString("registry_file")
	}
	if v.IsSet("debounce_interval") {
		c.DebounceInterval = v.GetDuration("debounce_interval")
	}
	if v.IsSet("shutdown_timeout") {
		c.ShutdownTimeout = v.GetDuration("shutdown_timeout")
	}
	if v.IsSet("output") {
		c.Format = v.GetString("output")
	}
	if v.IsSet("log_level") {
		c.LogLevel = v.GetString("log_level")
	}
	return nil
}

// Flags carries the values of the persistent command-line flags.
type Flags struct {
	Verbose  bool
	Quiet    bool
	Format   string
	LogLevel string
	Root     string
	Registry string
	Debounce time.Duration
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(f Flags) {
	c.Verbose = c.Verbose || f.Verbose
	c.Quiet = c.Quiet || f.Quiet
	if f.Format != "" {
		c.Format = f.Format
	}
	if f.LogLevel != "" {
		c.LogLevel = f.LogLevel
	}
	if f.Root != "" {
		c.DatabaseRoot = f.Root
	}
	if f.Registry != "" {
		c.RegistryFile = f.Registry
	}
	if f.Debounce != 0 {
		c.DebounceInterval = f.Debounce
	}
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// godotenv never overrides a variable that is already set, so the
	// first file loaded wins: .env.local takes precedence over .env
	envFiles := []string{
		".env.local",
		".env",
	}

	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}
