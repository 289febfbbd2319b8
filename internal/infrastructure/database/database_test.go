package database

import (
	"strings"
	"testing"

	"bankoffice/internal/config"

	"gorm.io/gorm/logger"
)

func TestDialectorByDriver(t *testing.T) {
	cases := []struct {
		driver string
		name   string
	}{
		{"mysql", "mysql"},
		{"postgres", "postgres"},
	}
	for _, tc := range cases {
		d, err := Dialector(&config.DatabaseConfig{Driver: tc.driver, Host: "db", Port: 1, Database: "bank"})
		if err != nil {
			t.Fatalf("%s: err=%v", tc.driver, err)
		}
		if d.Name() != tc.name {
			t.Fatalf("dialector name=%q want=%q", d.Name(), tc.name)
		}
	}
}

func TestDialectorUnknownDriver(t *testing.T) {
	_, err := Dialector(&config.DatabaseConfig{Driver: "sqlserver"})
	if err == nil || !strings.Contains(err.Error(), "sqlserver") {
		t.Fatalf("want unsupported driver error, got %v", err)
	}
}

func TestLogLevel(t *testing.T) {
	if logLevel("info") != logger.Info || logLevel("silent") != logger.Silent {
		t.Fatal("unexpected log level mapping")
	}
	if logLevel("") != logger.Warn {
		t.Fatal("empty level should default to warn")
	}
}
