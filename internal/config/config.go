package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string `yaml:"env" env:"ENV" env-default:"local"`
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-required:"true"`
	RedisAddr   string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	HTTPServer  `yaml:"http_server"`
	Scheduling  `yaml:"scheduling"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" env-default:"localhost:8080"`
	Timeout         time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"15s"`
}

// Scheduling carries the booking policy. Every value is applied on every
// call path; none is optional per entry point.
type Scheduling struct {
	MinimumNoticeHours          int  `yaml:"minimum_notice_hours" env-default:"24"`
	CancellationDeadlineHours   int  `yaml:"cancellation_deadline_hours" env-default:"24"`
	BufferMinutes               int  `yaml:"buffer_minutes" env-default:"0"`
	SlotStepMinutes             int  `yaml:"slot_step_minutes" env-default:"15"`
	MaxDurationMinutes          int  `yaml:"max_duration_minutes" env-default:"480"`
	MaxActualDurationMinutes    int  `yaml:"max_actual_duration_minutes" env-default:"720"`
	MaxBookingsPerStudentPerDay int  `yaml:"max_bookings_per_student_per_day" env-default:"0"`
	AdminExemptFromDeadline     bool `yaml:"admin_exempt_from_cancellation_deadline" env-default:"false"`
}

func MustLoad() *Config {
	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("Config file does not exist: %s", configPath)
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	return &cfg
}
