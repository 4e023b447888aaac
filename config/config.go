package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"

	"github.com/libradesk/library-backend/pkg/kafka"
	"github.com/libradesk/library-backend/pkg/logger"
	"github.com/libradesk/library-backend/pkg/postgres"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration
}

type Fine struct {
	// DailyRate is the fine accrued per whole overdue day, in currency units.
	DailyRate int64 `yaml:"dailyRate" envconfig:"FINE_DAILY_RATE" default:"100"`
	// SweepHour is the local hour of day the fine sweep fires.
	SweepHour int `yaml:"sweepHour" envconfig:"FINE_SWEEP_HOUR" default:"1"`
}

type Config struct {
	Server   HTTPServer `yaml:"server"`
	Database postgres.Database
	Kafka    kafka.Config
	Fine     Fine
	Log      logger.Log `yaml:"log"`
}

var (
	once sync.Once
	cfg  Config
)

type Option func(*Config)

func WithLogLevel(level zapcore.Level) Option {
	return func(c *Config) {
		c.Log.LogLevel = level
	}
}

func WithWriteTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Server.WriteTimeout = timeout
	}
}

// NewConfig reads config from environment.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		for _, op := range ops {
			op(&config)
		}
		cfg = config
		printConfig(cfg)
	})

	return &cfg
}

func printConfig(cfg Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
