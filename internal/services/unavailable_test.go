package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/diewo77/agence/internal/errs"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func openMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	conn, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return conn, mock
}

func TestServices_DatabaseFailureIsGeneric(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	log := zap.New(core)
	ctx := context.Background()

	tests := []struct {
		name string
		call func(conn *gorm.DB) error
	}{
		{"login client", func(conn *gorm.DB) error {
			_, err := NewAuthService(conn, log).LoginClient(ctx, "a@b.com", "hunter2")
			return err
		}},
		{"login admin", func(conn *gorm.DB) error {
			_, err := NewAuthService(conn, log).LoginAdmin(ctx, "root", "pw")
			return err
		}},
		{"get document", func(conn *gorm.DB) error {
			_, err := NewDocumentService(conn, newMemStore(), ownerGate(), log).Get(ctx, 1, uuid.NewString())
			return err
		}},
		{"resolve share", func(conn *gorm.DB) error {
			docs := NewDocumentService(conn, newMemStore(), ownerGate(), log)
			_, err := NewShareService(conn, docs, "", log).Resolve(ctx, "token")
			return err
		}},
		{"list notifications", func(conn *gorm.DB) error {
			_, err := NewNotificationService(conn, ownerGate(), log).List(ctx, 1)
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, mock := openMockDB(t)
			mock.ExpectQuery("SELECT").WillReturnError(errBoom)

			err := tt.call(conn)
			require.ErrorIs(t, err, errs.ErrUnavailable)
			require.NotContains(t, err.Error(), "boom")
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
	require.Equal(t, len(tests), logs.FilterMessage("database operation failed").Len())
}
