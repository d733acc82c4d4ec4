//go:build integration

package db

import (
	"context"
	"testing"
	"time"

	"github.com/diewo77/agence/internal/models"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestMigrationsOnPostgres(t *testing.T) {
	ctx := context.Background()
	pgContainer, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("agence"),
		postgres.WithUsername("agence"),
		postgres.WithPassword("agence"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	url, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, RunMigrations(url))
	require.NoError(t, RunMigrations(url), "second run is a no-op")

	conn, err := gorm.Open(pgdriver.Open(url), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, Seed(ctx, conn))

	c := models.Client{Email: "pg@x.fr", PasswordHash: "h", NomEntreprise: "PG"}
	require.NoError(t, conn.Create(&c).Error)
	err = conn.Create(&models.Client{Email: "pg@x.fr", PasswordHash: "h", NomEntreprise: "PG2"}).Error
	require.True(t, IsUniqueViolation(err), "got %v", err)

	doc := models.Document{ClientID: c.ID, Titre: "Contrat", Type: "contrat", FichierPath: "documents/1/x.pdf"}
	require.NoError(t, conn.Create(&doc).Error)
	require.Len(t, doc.ID, 36)
}
