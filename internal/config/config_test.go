package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validYAML = `
server:
  host: "127.0.0.1"
  port: 8080
database:
  host: "localhost"
  port: 5432
  name: "lyftup"
  user: "lyftup"
  password: "secret"
auth:
  api_key: "test-key-123"
`

const sqliteYAML = `
server:
  port: 8080
storage:
  driver: "sqlite"
  sqlite_path: "/var/lib/lyftup/sessions.db"
auth:
  api_key: "test-key-123"
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoadValid verifies a complete config parses and the postgres driver
// is the default.
func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 8080 {
		t.Errorf("server = %s:%d, want 127.0.0.1:8080", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Storage.Driver != "postgres" {
		t.Errorf("default driver = %q, want postgres", cfg.Storage.Driver)
	}
	if cfg.Database.Name != "lyftup" {
		t.Errorf("database.name = %q, want lyftup", cfg.Database.Name)
	}
	if cfg.Auth.APIKey != "test-key-123" {
		t.Errorf("api key = %q, want test-key-123", cfg.Auth.APIKey)
	}
}

// TestLoadSQLite verifies the sqlite driver needs only a path, not the
// database block.
func TestLoadSQLite(t *testing.T) {
	cfg, err := Load(writeTemp(t, sqliteYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("driver = %q, want sqlite", cfg.Storage.Driver)
	}
	if cfg.Storage.SQLitePath != "/var/lib/lyftup/sessions.db" {
		t.Errorf("sqlite_path = %q", cfg.Storage.SQLitePath)
	}
}

// TestEnvOverride verifies LYFTUP_ environment variables win over file
// values.
func TestEnvOverride(t *testing.T) {
	t.Setenv("LYFTUP_SERVER_PORT", "9999")
	t.Setenv("LYFTUP_DB_PASSWORD", "from-env")
	t.Setenv("LYFTUP_AUTH_API_KEY", "env-key")

	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d, want env override 9999", cfg.Server.Port)
	}
	if cfg.Database.Password != "from-env" {
		t.Errorf("password = %q, want from-env", cfg.Database.Password)
	}
	if cfg.Auth.APIKey != "env-key" {
		t.Errorf("api key = %q, want env-key", cfg.Auth.APIKey)
	}
}

// TestValidation covers the required-field and driver checks.
func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			"missing api key",
			strings.Replace(validYAML, `api_key: "test-key-123"`, `api_key: ""`, 1),
			"auth.api_key",
		},
		{
			"missing server port",
			strings.Replace(validYAML, "port: 8080", "port: 0", 1),
			"server.port",
		},
		{
			"postgres without host",
			strings.Replace(validYAML, `host: "localhost"`, `host: ""`, 1),
			"database.host",
		},
		{
			"sqlite without path",
			strings.Replace(sqliteYAML, `sqlite_path: "/var/lib/lyftup/sessions.db"`, `sqlite_path: ""`, 1),
			"storage.sqlite_path",
		},
		{
			"unknown driver",
			strings.Replace(sqliteYAML, `driver: "sqlite"`, `driver: "mysql"`, 1),
			"storage.driver",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeTemp(t, tt.yaml))
			if err == nil {
				t.Fatal("Load succeeded, want validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

// TestDSN verifies connection string assembly and the sslmode default.
func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "localhost", Port: 5432, Name: "lyftup", User: "u", Password: "p"}
	want := "postgres://u:p@localhost:5432/lyftup?sslmode=disable"
	if got := db.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}

	db.SSLMode = "require"
	if got := db.DSN(); !strings.HasSuffix(got, "sslmode=require") {
		t.Errorf("DSN() = %q, want sslmode=require suffix", got)
	}
}
