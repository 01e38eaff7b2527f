package domain

import "time"

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Remote       RemoteConfig       `mapstructure:"remote"`
	Queue        QueueConfig        `mapstructure:"queue"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig contains local API server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// RemoteConfig contains the remote download service configuration
type RemoteConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelay     time.Duration `mapstructure:"retry_delay"`
}

// QueueConfig contains reconciled-state configuration
type QueueConfig struct {
	DatabasePath      string        `mapstructure:"database_path"`
	HistoryLimit      int           `mapstructure:"history_limit"`
	NotificationLimit int           `mapstructure:"notification_limit"`
	VisibleLimit      int           `mapstructure:"visible_limit"`
	TickInterval      time.Duration `mapstructure:"tick_interval"`
}

// NotificationConfig contains desktop notification configuration
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
	LogsDir    string `mapstructure:"logs_dir"`    // directory for categorized event logs
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8084,
		},
		Remote: RemoteConfig{
			BaseURL:        "http://localhost:8004",
			PollInterval:   2 * time.Second,
			RequestTimeout: 10 * time.Second,
			MaxRetries:     3,
			RetryDelay:     time.Second,
		},
		Queue: QueueConfig{
			DatabasePath:      "$HOME/.bookqueue/state.db",
			HistoryLimit:      100,
			NotificationLimit: 50,
			VisibleLimit:      10,
			TickInterval:      100 * time.Millisecond,
		},
		Notification: NotificationConfig{
			Enabled: false,
			Sound:   false,
			Method:  "notify-send",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
			LogsDir:    "$HOME/.bookqueue/logs",
		},
	}
}
