package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	setDefaults(v)
	// Secrets usually never live in the yaml, so AutomaticEnv alone would not see them on Unmarshal.
	_ = v.BindEnv("postgres.user", "APP_POSTGRES_USER")
	_ = v.BindEnv("postgres.password", "APP_POSTGRES_PASSWORD")
	_ = v.BindEnv("postgres.dbname", "APP_POSTGRES_DB", "APP_POSTGRES_DBNAME")
	_ = v.BindEnv("postgres.host", "APP_POSTGRES_HOST")

	var config Config
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "cricket-stats-service")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.env", "prod")
	v.SetDefault("app.port", 8080)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 1)
	v.SetDefault("postgres.max_conn_lifetime", 3600)
	v.SetDefault("postgres.max_conn_idle_time", 300)
	v.SetDefault("postgres.health_check_period", 30)

	v.SetDefault("http.allow_origins", []string{"*"})
	v.SetDefault("http.rate_limit_enabled", true)
	v.SetDefault("http.rate_limit_requests", 60)
	v.SetDefault("http.rate_limit_window", 60)
	v.SetDefault("http.request_timeout", 10)

	v.SetDefault("ingest.data_dir", "data")
	v.SetDefault("ingest.extension", ".json")

	v.SetDefault("aggregation.credit_all_wickets_to_bowler", true)
	v.SetDefault("aggregation.lost_includes_no_decision", true)
	v.SetDefault("aggregation.compute_highest_score", false)
}
