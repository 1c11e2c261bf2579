package domain

import "time"

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Download     DownloadConfig     `mapstructure:"download"`
	Queue        QueueConfig        `mapstructure:"queue"`
	Tools        ToolsConfig        `mapstructure:"tools"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DownloadConfig contains download-related configuration
type DownloadConfig struct {
	// DownloadsRoot is the directory holding the per-platform output
	// directories (<Platform>_Videos).
	DownloadsRoot string `mapstructure:"downloads_root"`

	// WorkDir holds per-attempt temporary directories until a download is
	// post-processed into its final location.
	WorkDir string `mapstructure:"work_dir"`

	LogsDir          string        `mapstructure:"logs_dir"`
	MaxRetries       int           `mapstructure:"max_retries"`
	RetryDelay       time.Duration `mapstructure:"retry_delay"`
	AutoStartWorkers bool          `mapstructure:"auto_start_workers"`
}

// QueueConfig contains queue-related configuration
type QueueConfig struct {
	DatabasePath    string        `mapstructure:"database_path"`
	CheckInterval   time.Duration `mapstructure:"check_interval"`
	AutoExitOnEmpty bool          `mapstructure:"auto_exit_on_empty"`
	EmptyWaitTime   time.Duration `mapstructure:"empty_wait_time"`
}

// ToolsConfig locates the external executables and the session state they
// may reuse. Acquisition of the tools themselves is out of scope; resolved
// paths are injected here.
type ToolsConfig struct {
	YTDLPBinary    string `mapstructure:"ytdlp_binary"`
	AltYTDLPBinary string `mapstructure:"alt_ytdlp_binary"`
	FFmpegBinary   string `mapstructure:"ffmpeg_binary"`

	// CookieFile is a Netscape-format cookie jar used by cookie_auth
	// strategies when present.
	CookieFile string `mapstructure:"cookie_file"`

	// CookieBrowser is the browser whose stored session cookies
	// --cookies-from-browser reuses.
	CookieBrowser string `mapstructure:"cookie_browser"`

	// AttemptTimeout bounds the wall clock of a single extraction attempt.
	// An attempt exceeding it is classified as a network error and the
	// chain advances.
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout"`
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Sound   bool   `mapstructure:"sound"`
	Method  string `mapstructure:"method"` // osascript, notify-send, etc.
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8090,
		},
		Download: DownloadConfig{
			DownloadsRoot:    "$HOME/Downloads",
			WorkDir:          "$HOME/Downloads/.mediagrab/work",
			LogsDir:          "$HOME/Downloads/.mediagrab/logs",
			MaxRetries:       3,
			RetryDelay:       30 * time.Second,
			AutoStartWorkers: true,
		},
		Queue: QueueConfig{
			DatabasePath:    "$HOME/Downloads/.mediagrab/queue.db",
			CheckInterval:   10 * time.Second,
			AutoExitOnEmpty: false,
			EmptyWaitTime:   5 * time.Minute,
		},
		Tools: ToolsConfig{
			YTDLPBinary:    "yt-dlp",
			AltYTDLPBinary: "",
			FFmpegBinary:   "ffmpeg",
			CookieFile:     "",
			CookieBrowser:  "chrome",
			AttemptTimeout: 10 * time.Minute,
		},
		Notification: NotificationConfig{
			Enabled: true,
			Sound:   true,
			Method:  "notify-send",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
	}
}
