package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("SITE_URL", "https://agence.example/")
	cfg := Load()
	if cfg.Production() {
		t.Fatal("default env is development")
	}
	if cfg.App.SiteURL != "https://agence.example" {
		t.Fatalf("site url %q", cfg.App.SiteURL)
	}
	if cfg.Storage.URLTTL != 60*time.Second {
		t.Fatalf("url ttl %v", cfg.Storage.URLTTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("dev config should validate: %v", err)
	}
	if cfg.Session.Secret == "" || cfg.Storage.SigningSecret != cfg.Session.Secret {
		t.Fatal("dev secrets should be filled")
	}
}

func TestValidate_ProductionNeedsSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "short")
	cfg := Load()
	if !cfg.Session.Secure {
		t.Fatal("cookies are secure in production")
	}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "SESSION_SECRET") {
		t.Fatalf("expected secret error, got %v", err)
	}
}

func TestValidate_Cloudinary(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "cloudinary")
	t.Setenv("CLOUDINARY_CLOUD_NAME", "")
	if err := Load().Validate(); err == nil {
		t.Fatal("missing cloudinary credentials must fail")
	}
	t.Setenv("STORAGE_BACKEND", "s3")
	if err := Load().Validate(); err == nil {
		t.Fatal("unknown backend must fail")
	}
}

func TestDatabaseURL(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "agence", SSLMode: "disable"}
	if got := d.URL(); got != "postgres://u:p%40ss@db:5432/agence?sslmode=disable" {
		t.Fatalf("url %q", got)
	}
	if !strings.Contains(d.DSN(), "dbname=agence") {
		t.Fatalf("dsn %q", d.DSN())
	}
}
