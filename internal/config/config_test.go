package config

import (
	"errors"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.HTTPPort)
	}
	if cfg.JWTAccessTTLMinutes != 30 {
		t.Fatalf("expected access ttl 30, got %d", cfg.JWTAccessTTLMinutes)
	}
	if len(cfg.ClassNames) != 3 || cfg.ClassNames[2] != "Healthy" {
		t.Fatalf("unexpected class names: %+v", cfg.ClassNames)
	}
	if len(cfg.CORSOrigins) != 3 {
		t.Fatalf("unexpected cors origins: %+v", cfg.CORSOrigins)
	}
	if cfg.S3Enabled() {
		t.Fatalf("expected s3 disabled without bucket")
	}
}

func TestLoadConfig_RequiresSecret(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want error
	}{
		{"postgres without url", Config{StoreDriver: "postgres", JWTSecret: "s"}, ErrDatabaseURLMissing},
		{"sqlite without path", Config{StoreDriver: "sqlite", JWTSecret: "s"}, ErrSQLitePathMissing},
		{"unknown driver", Config{StoreDriver: "mongo", JWTSecret: "s"}, ErrUnknownStoreDriver},
		{"blank secret", Config{StoreDriver: "memory", JWTSecret: "  "}, ErrJWTSecretMissing},
		{"driver is normalized", Config{StoreDriver: " SQLite ", SQLitePath: "x.db", JWTSecret: "s"}, nil},
		{"postgres ok", Config{StoreDriver: "postgres", DatabaseURL: "postgres://x", JWTSecret: "s"}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}
