package services

import (
	"context"
	"testing"

	"github.com/diewo77/agence/auth"
	"github.com/diewo77/agence/internal/errs"
	"github.com/diewo77/agence/internal/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_LoginAdmin(t *testing.T) {
	conn := openTestDB(t)
	hash, err := auth.HashPassword("s3cret-pass")
	require.NoError(t, err)
	require.NoError(t, conn.Create(&models.AdminUser{Username: "alice", PasswordHash: hash, Role: models.RoleEditeur}).Error)

	svc := NewAuthService(conn, zap.NewNop())
	ctx := context.Background()

	claims, err := svc.LoginAdmin(ctx, "alice", "s3cret-pass")
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Username)
	require.Equal(t, models.RoleEditeur, claims.Role)

	var stored models.AdminUser
	require.NoError(t, conn.First(&stored, claims.ID).Error)
	require.NotNil(t, stored.LastLogin)

	tests := []struct {
		name, user, pass string
	}{
		{"wrong password", "alice", "nope"},
		{"unknown user", "bob", "s3cret-pass"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.LoginAdmin(ctx, tt.user, tt.pass)
			require.ErrorIs(t, err, errs.ErrInvalidCredentials)
			require.Equal(t, "Identifiants incorrects", err.Error())
		})
	}
}

func TestAuthService_LoginClientAfterCreate(t *testing.T) {
	conn := openTestDB(t)
	clients := NewClientService(conn, newMemStore(), zap.NewNop())
	ctx := context.Background()

	c, err := clients.Add(ctx, NewClient{Email: "a@b.com", Password: "hunter22", NomEntreprise: "ACME"})
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(c.PasswordHash))
	require.NoError(t, err)
	require.Equal(t, 12, cost)
	require.NotContains(t, c.PasswordHash, "hunter22")

	svc := NewAuthService(conn, zap.NewNop())
	claims, err := svc.LoginClient(ctx, "A@B.com ", "hunter22")
	require.NoError(t, err)
	require.Equal(t, c.ID, claims.ID)
	require.Equal(t, "ACME", claims.Entreprise)

	_, err = svc.LoginClient(ctx, "a@b.com", "wrong")
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)
	require.EqualError(t, err, "Identifiants incorrects")
}

func TestAuthService_LoginClientHunter2(t *testing.T) {
	conn := openTestDB(t)
	clients := NewClientService(conn, newMemStore(), zap.NewNop())
	_, err := clients.Add(context.Background(), NewClient{Email: "a@b.com", Password: "hunter2", NomEntreprise: "ACME"})
	require.NoError(t, err)

	svc := NewAuthService(conn, zap.NewNop())
	_, err = svc.LoginClient(context.Background(), "a@b.com", "hunter2")
	require.NoError(t, err)
	_, err = svc.LoginClient(context.Background(), "a@b.com", "wrong")
	require.EqualError(t, err, "Identifiants incorrects")
}

func TestAuthService_AdminRole(t *testing.T) {
	conn := openTestDB(t)
	require.NoError(t, conn.Create(&models.AdminUser{Username: "ed", PasswordHash: "x", Role: models.RoleEditeur}).Error)
	svc := NewAuthService(conn, zap.NewNop())

	role, err := svc.AdminRole(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, models.RoleEditeur, role)

	_, err = svc.AdminRole(context.Background(), 99)
	require.ErrorIs(t, err, errs.ErrNotFound)
}
