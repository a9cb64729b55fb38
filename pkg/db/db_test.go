package db

import (
	"testing"

	"bookingflow/pkg/config"
)

func TestDSN_EscapesCredentials(t *testing.T) {
	got := dsn(config.DBConfig{Host: "db", Port: "5432", Name: "bookingflow", User: "svc", Password: "p@ss/word"})
	want := "postgres://svc:p%40ss%2Fword@db:5432/bookingflow?sslmode=disable"
	if got != want {
		t.Fatalf("dsn = %q, want %q", got, want)
	}
}

func TestConnStrings(t *testing.T) {
	cfg := config.Config{DB: config.DBConfig{Host: "h", Port: "1", Name: "n", User: "u", Password: "p", SSLMode: "require"}}
	if got := runtimeConnString(cfg); got != "postgres://u:p@h:1/n?sslmode=require" {
		t.Fatalf("runtime from parts = %q", got)
	}

	cfg.DatabaseURL = "postgres://pool/n?pgbouncer=true"
	if got := migrationConnString(cfg); got != cfg.DatabaseURL {
		t.Fatalf("migration without DIRECT_URL = %q", got)
	}

	cfg.DirectURL = "postgres://direct/n"
	if got := migrationConnString(cfg); got != cfg.DirectURL {
		t.Fatalf("migration with DIRECT_URL = %q", got)
	}
	if got := runtimeConnString(cfg); got != cfg.DatabaseURL {
		t.Fatalf("runtime should ignore DIRECT_URL, got %q", got)
	}
}

func TestBehindPgBouncer(t *testing.T) {
	if !behindPgBouncer("postgres://x/db?PgBouncer=TRUE") {
		t.Fatalf("pgbouncer flag should be case-insensitive")
	}
	if behindPgBouncer("postgres://x/db?sslmode=require") {
		t.Fatalf("plain DSN treated as pooled")
	}
}
