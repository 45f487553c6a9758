package repo

import (
	"time"
)

type Config struct {
	RepoRoot string `mapstructure:"-" toml:"-"`
	API      API    `mapstructure:"api" toml:"api"`
	Ledger   Ledger `mapstructure:"ledger" toml:"ledger"`
	Log      Log    `mapstructure:"log" toml:"log"`
}

type API struct {
	Addr string `mapstructure:"addr" toml:"addr"`
	// AllowedOrigins lists CORS origins; empty means allow any origin.
	AllowedOrigins []string `mapstructure:"allowed_origins" toml:"allowed_origins"`
}

type Ledger struct {
	// ProgramID is the base58 identity the bounty records are owned by.
	ProgramID string `mapstructure:"program_id" toml:"program_id"`
	// DaoAccount is the base58 storage slot of the singleton DaoState.
	DaoAccount string `mapstructure:"dao_account" toml:"dao_account"`
}

type Log struct {
	Level        string        `mapstructure:"level" toml:"level"`
	Filename     string        `mapstructure:"filename" toml:"filename"`
	ReportCaller bool          `mapstructure:"report_caller" toml:"report_caller"`
	MaxAge       time.Duration `mapstructure:"max_age" toml:"max_age"`
	RotationTime time.Duration `mapstructure:"rotation_time" toml:"rotation_time"`
}

func DefaultConfig(repoRoot string) *Config {
	return &Config{
		RepoRoot: repoRoot,
		API: API{
			Addr: "127.0.0.1:9080",
		},
		Ledger: Ledger{
			ProgramID:  "4vJ9JU1bJJE96FWSJKvHsmmFADCg4gpZQff4P3bkLKi",
			DaoAccount: "8qbHbw2BbbTHBW1sbeqakYXVKRQM8Ne7pLK7m6CVfeR",
		},
		Log: Log{
			Level:        "info",
			Filename:     "turtle.log",
			ReportCaller: false,
			MaxAge:       30 * 24 * time.Hour,
			RotationTime: 24 * time.Hour,
		},
	}
}
