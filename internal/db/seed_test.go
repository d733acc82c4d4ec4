package db

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/diewo77/agence/auth"
	"github.com/diewo77/agence/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := AutoMigrate(conn); err != nil {
		t.Fatal(err)
	}
	return conn
}

func TestSeedIdempotent(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	if err := Seed(ctx, conn); err != nil {
		t.Fatal(err)
	}
	if err := Seed(ctx, conn); err != nil {
		t.Fatal(err)
	}
	var count int64
	conn.Model(&models.BlogPost{}).Count(&count)
	if count != int64(len(seedPosts)) {
		t.Fatalf("expected %d posts, got %d", len(seedPosts), count)
	}
}

func TestCreateAdmin(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	a, err := CreateAdmin(ctx, conn, " root ", "first-password", "")
	if err != nil {
		t.Fatal(err)
	}
	if a.Username != "root" || a.Role != models.RoleAdmin {
		t.Fatalf("unexpected admin %+v", a)
	}
	if _, err := CreateAdmin(ctx, conn, "root", "second-password", models.RoleEditeur); err != nil {
		t.Fatal(err)
	}
	var stored models.AdminUser
	conn.Where("username = ?", "root").First(&stored)
	if stored.ID != a.ID || stored.Role != models.RoleEditeur {
		t.Fatalf("admin not updated in place: %+v", stored)
	}
	if !auth.CheckPassword(stored.PasswordHash, "second-password") {
		t.Fatal("password not reset")
	}
	if _, err := CreateAdmin(ctx, conn, "", "x", ""); err == nil {
		t.Fatal("empty username accepted")
	}
	if _, err := CreateAdmin(ctx, conn, "long", strings.Repeat("x", 73), ""); err == nil {
		t.Fatal("password over 72 bytes accepted")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	conn := openTestDB(t)
	c := models.Client{Email: "dup@x.fr", PasswordHash: "h", NomEntreprise: "X"}
	if err := conn.Create(&c).Error; err != nil {
		t.Fatal(err)
	}
	dup := models.Client{Email: "dup@x.fr", PasswordHash: "h", NomEntreprise: "Y"}
	if err := conn.Create(&dup).Error; !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
	if !IsUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatal("postgres code 23505")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) || IsUniqueViolation(errors.New("x")) || IsUniqueViolation(nil) {
		t.Fatal("false positive")
	}
}
