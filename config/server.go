package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Corpus source kinds.
const (
	SourceMemory   = "memory"
	SourceFile     = "file"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
)

// EnvPrefix is the prefix of environment variables that override config keys,
// e.g. JOBMATCH_SERVER_PORT for server.port.
const EnvPrefix = "JOBMATCH"

type ServerSettings struct {
	Port int    `mapstructure:"port" validate:"gte=1,lte=65535"`
	Mode string `mapstructure:"mode" validate:"oneof=debug release test"` // gin mode
}

type LogSettings struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

type CorpusSettings struct {
	Source string `mapstructure:"source" validate:"oneof=memory file sqlite postgres"`
	Path   string `mapstructure:"path" validate:"required_if=Source file,required_if=Source sqlite"` // gob file or SQLite database
	DSN    string `mapstructure:"dsn" validate:"required_if=Source postgres"`                        // PostgreSQL connection string
	Table  string `mapstructure:"table"`
}

type JobSettings struct {
	MaxConcurrent int `mapstructure:"max-concurrent" validate:"gte=1"`
}

// ServerConfig is the process configuration of the jobmatch binary.
type ServerConfig struct {
	Server  ServerSettings  `mapstructure:"server"`
	Log     LogSettings     `mapstructure:"log"`
	Corpus  CorpusSettings  `mapstructure:"corpus"`
	Jobs    JobSettings     `mapstructure:"jobs"`
	Ranking RankingSettings `mapstructure:"ranking"`
}

// SetDefaults registers default values on v so that unset keys still unmarshal sensibly
// and environment overrides work for every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
	v.SetDefault("corpus.source", SourceFile)
	v.SetDefault("corpus.path", "data/corpus.gob")
	v.SetDefault("corpus.dsn", "")
	v.SetDefault("corpus.table", "jobs")
	v.SetDefault("jobs.max-concurrent", 2)
	v.SetDefault("ranking.weighting-scheme", SchemeFiveSignalWeighted)
	v.SetDefault("ranking.top-n", DefaultTopN)
	v.SetDefault("ranking.min-score", DefaultMinScore)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// LoadServerConfig unmarshals v into a ServerConfig, applies ranking defaults and validates the result.
func LoadServerConfig(v *viper.Viper) (*ServerConfig, error) {
	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.Ranking.ApplyDefaults()
	if err := cfg.Ranking.Validate(); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}
	return &cfg, nil
}
