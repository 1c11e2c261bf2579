package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/yourusername/mediagrab-go/internal/domain"
)

// LoadConfig loads configuration from file and environment
func LoadConfig(configPath string) (*domain.Config, error) {
	config := domain.DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.mediagrab")
		v.AddConfigPath("/etc/mediagrab")
	}

	v.SetEnvPrefix("MEDIAGRAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config = expandPaths(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Download.DownloadsRoot = expandPath(config.Download.DownloadsRoot)
	config.Download.WorkDir = expandPath(config.Download.WorkDir)
	config.Download.LogsDir = expandPath(config.Download.LogsDir)
	config.Queue.DatabasePath = expandPath(config.Queue.DatabasePath)
	config.Tools.CookieFile = expandPath(config.Tools.CookieFile)

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	path = os.ExpandEnv(path)

	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	if strings.Contains(path, "$HOME") {
		if home, err := os.UserHomeDir(); err == nil {
			path = strings.ReplaceAll(path, "$HOME", home)
		}
	}

	return path
}

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Download.DownloadsRoot == "" {
		return fmt.Errorf("downloads root directory not configured")
	}
	if config.Download.WorkDir == "" {
		return fmt.Errorf("working directory not configured")
	}
	if config.Download.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if config.Queue.DatabasePath == "" {
		return fmt.Errorf("queue database path not configured")
	}
	if config.Tools.YTDLPBinary == "" {
		return fmt.Errorf("extraction tool binary not configured")
	}
	if config.Tools.FFmpegBinary == "" {
		return fmt.Errorf("transcoding tool binary not configured")
	}
	if config.Tools.AttemptTimeout <= 0 {
		return fmt.Errorf("attempt timeout must be positive")
	}
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	return nil
}
