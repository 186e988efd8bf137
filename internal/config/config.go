package config

import (
	"github.com/maxviazov/cricket-stats-service/internal/logger"
)

type Config struct {
	App         AppConfig           `mapstructure:"app"`
	Logger      logger.LoggerConfig `mapstructure:"logger" validate:"-"` // validated by logger.New after defaults
	Postgres    PostgresConfig      `mapstructure:"postgres"`
	HTTP        HTTPConfig          `mapstructure:"http"`
	Ingest      IngestConfig        `mapstructure:"ingest"`
	Aggregation AggregationConfig   `mapstructure:"aggregation"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Env     string `mapstructure:"env"`
	Port    int    `mapstructure:"port" validate:"gte=1,lte=65535"`
}

// PostgresConfig holds connection and pool tuning. Durations are in seconds.
type PostgresConfig struct {
	Host              string `mapstructure:"host" validate:"required"`
	Port              int    `mapstructure:"port" validate:"gte=1,lte=65535"`
	User              string `mapstructure:"user" validate:"required"`
	Password          string `mapstructure:"password" validate:"required"`
	DBName            string `mapstructure:"dbname" validate:"required"`
	SSLMode           string `mapstructure:"sslmode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	MaxConns          int32  `mapstructure:"max_conns" validate:"gte=0"`
	MinConns          int32  `mapstructure:"min_conns" validate:"gte=0"`
	MaxConnLifetime   int    `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   int    `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod int    `mapstructure:"health_check_period"`
}

type HTTPConfig struct {
	AllowOrigins      []string `mapstructure:"allow_origins"`
	RateLimitEnabled  bool     `mapstructure:"rate_limit_enabled"`
	RateLimitRequests int      `mapstructure:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   int      `mapstructure:"rate_limit_window" validate:"gte=0"` // seconds
	RequestTimeout    int      `mapstructure:"request_timeout" validate:"gte=0"`   // seconds
}

type IngestConfig struct {
	DataDir   string `mapstructure:"data_dir"`
	Extension string `mapstructure:"extension"`
}

// AggregationConfig toggles the documented simplifications of the stats engine.
type AggregationConfig struct {
	CreditAllWicketsToBowler bool `mapstructure:"credit_all_wickets_to_bowler"`
	LostIncludesNoDecision   bool `mapstructure:"lost_includes_no_decision"`
	ComputeHighestScore      bool `mapstructure:"compute_highest_score"`
}
