package config

import "testing"

func TestLoad_ReportsMissingRequired(t *testing.T) {
	// Ensure a clean env by not setting anything and calling validation directly.
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := Config{
		App: AppConfig{Env: "production", Port: 8080},
		DB: DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "telecom", SSLMode: ""},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth: AuthConfig{JWTSecret: "secret"},
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestLoad_LocalDefaultsSSLMode(t *testing.T) {
	for k, v := range map[string]string{
		"APP_ENV": "local", "APP_PORT": "8080",
		"DB_HOST": "localhost", "DB_PORT": "5432", "DB_USER": "postgres", "DB_PASSWORD": "x", "DB_NAME": "telecom", "DB_SSLMODE": "",
		"REDIS_HOST": "localhost", "REDIS_PORT": "6379",
		"JWT_SECRET": "secret", "JWT_ACCESS_TTL": "", "JWT_REFRESH_TTL": "",
		"STORAGE_TYPE": "memory",
	} {
		t.Setenv(k, v)
	}
	c, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
}

func TestValidate_PostgresqlStorageRequiresDatabaseURL(t *testing.T) {
	c := Config{
		App:     AppConfig{Env: "local", Port: 8080},
		DB:      DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "telecom", SSLMode: "disable"},
		Redis:   RedisConfig{Host: "localhost", Port: 6379},
		Auth:    AuthConfig{JWTSecret: "secret"},
		Storage: StorageConfig{Type: "postgresql"},
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for postgresql storage without DATABASE_URL")
	}
}

func TestValidate_UnknownStorageTypeRejected(t *testing.T) {
	c := Config{
		App:     AppConfig{Env: "local", Port: 8080},
		DB:      DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "telecom", SSLMode: "disable"},
		Redis:   RedisConfig{Host: "localhost", Port: 6379},
		Auth:    AuthConfig{JWTSecret: "secret"},
		Storage: StorageConfig{Type: "mongodb"},
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for unrecognized STORAGE_TYPE")
	}
}
