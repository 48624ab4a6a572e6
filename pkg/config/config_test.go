package config

import (
	"strings"
	"testing"
)

func TestEnsureDSNPrefersExplicitDSN(t *testing.T) {
	t.Parallel()

	cfg := DBConfig{DSN: "postgres://app:secret@db:5432/dealership"}
	if err := cfg.ensureDSN(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DSN != "postgres://app:secret@db:5432/dealership" {
		t.Fatalf("dsn overwritten: %s", cfg.DSN)
	}
}

func TestEnsureDSNAssemblesLegacyParts(t *testing.T) {
	t.Parallel()

	cfg := DBConfig{
		LegacyHost:     "localhost",
		LegacyPort:     5432,
		LegacyUser:     "dealer",
		LegacyPassword: "pw",
		LegacyName:     "cars",
		LegacySSLMode:  "disable",
	}
	if err := cfg.ensureDSN(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(cfg.DSN, "postgres://dealer:pw@localhost:5432/cars") {
		t.Fatalf("unexpected dsn: %s", cfg.DSN)
	}
	if !strings.Contains(cfg.DSN, "sslmode=disable") {
		t.Fatalf("sslmode missing from dsn: %s", cfg.DSN)
	}
}

func TestEnsureDSNReportsMissingParts(t *testing.T) {
	t.Parallel()

	cfg := DBConfig{LegacyHost: "localhost"}
	err := cfg.ensureDSN()
	if err == nil {
		t.Fatal("expected error for missing legacy values")
	}
	if !strings.Contains(err.Error(), EnvDBUser) {
		t.Fatalf("expected %s in error, got %v", EnvDBUser, err)
	}
}
