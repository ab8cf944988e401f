package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Telegram  TelegramConfig
	Redis     RedisConfig
	Scheduler SchedulerConfig
}

type ServerConfig struct {
	Port           int `mapstructure:"port" default:"3000"`
	TimeoutSeconds int `mapstructure:"timeoutSeconds" default:"30"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host" envconfig:"DB_HOST" default:"localhost"`
	Port     int    `mapstructure:"port" envconfig:"DB_PORT" default:"5432"`
	User     string `mapstructure:"user" envconfig:"DB_USER" default:"postgres"`
	Password string `mapstructure:"password" envconfig:"DB_PASSWORD"`
	Name     string `mapstructure:"name" envconfig:"DB_NAME" default:"hr_tracker"`
	SSLMode  string `mapstructure:"sslmode" envconfig:"DB_SSLMODE" default:"disable"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token" envconfig:"TELEGRAM_BOT_TOKEN"`
	APIBase  string `mapstructure:"api_base" envconfig:"TELEGRAM_API_BASE" default:"https://api.telegram.org"`
	// Telegram caps broadcast throughput; sends beyond the rate queue up.
	SendsPerSecond int `mapstructure:"sends_per_second" default:"25"`
}

type RedisConfig struct {
	URL     string `mapstructure:"url" envconfig:"REDIS_URL"`
	Enabled bool   `mapstructure:"enabled" envconfig:"REDIS_ENABLED"`
}

type SchedulerConfig struct {
	Timezone           string        `mapstructure:"timezone" envconfig:"APP_TZ" default:"Europe/Kyiv"`
	PollInterval       time.Duration `mapstructure:"poll_interval" default:"30s"`
	InterviewLead      time.Duration `mapstructure:"interview_lead" default:"1h"`
	WindowHalfWidth    time.Duration `mapstructure:"window_half_width" default:"90s"`
	BirthdayHour       int           `mapstructure:"birthday_hour" default:"9"`
	BirthdayMinute     int           `mapstructure:"birthday_minute" default:"0"`
	UpcomingHour       int           `mapstructure:"upcoming_hour" default:"12"`
	UpcomingMinute     int           `mapstructure:"upcoming_minute" default:"0"`
	UpcomingOffsetDays int           `mapstructure:"upcoming_offset_days" default:"7"`
}

// LoadConfig reads config.yaml and applies environment overrides on top.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	var config Config
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to apply env overrides: %w", err)
	}

	applyDefaults(&config)
	return &config, nil
}

func applyDefaults(c *Config) {
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Scheduler.Timezone == "" {
		c.Scheduler.Timezone = "Europe/Kyiv"
	}
	if c.Scheduler.PollInterval == 0 {
		c.Scheduler.PollInterval = 30 * time.Second
	}
	if c.Scheduler.InterviewLead == 0 {
		c.Scheduler.InterviewLead = time.Hour
	}
	if c.Scheduler.WindowHalfWidth == 0 {
		c.Scheduler.WindowHalfWidth = 90 * time.Second
	}
	if c.Scheduler.BirthdayHour == 0 {
		c.Scheduler.BirthdayHour = 9
	}
	if c.Scheduler.UpcomingHour == 0 {
		c.Scheduler.UpcomingHour = 12
	}
	if c.Scheduler.UpcomingOffsetDays == 0 {
		c.Scheduler.UpcomingOffsetDays = 7
	}
	if c.Telegram.APIBase == "" {
		c.Telegram.APIBase = "https://api.telegram.org"
	}
	if c.Telegram.SendsPerSecond == 0 {
		c.Telegram.SendsPerSecond = 25
	}
}
