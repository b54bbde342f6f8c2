package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Review    ReviewConfig    `mapstructure:"review" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url" validate:"required,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// ReviewConfig controls how due dates and review queues are computed.
type ReviewConfig struct {
	// Timezone is the IANA name whose midnight defines a review day.
	Timezone string `mapstructure:"timezone" validate:"required,timezone"`
	// DueLimit is the default number of words returned by the due queue.
	DueLimit int `mapstructure:"due_limit" validate:"gt=0,lte=100"`
}

// Location resolves Timezone. Validation guarantees it loads.
func (c ReviewConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// SchedulerConfig controls the background reminder job.
type SchedulerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	ReminderInterval time.Duration `mapstructure:"reminder_interval" validate:"min=1m"`
}
