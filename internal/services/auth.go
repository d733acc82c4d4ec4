package services

import (
	"context"
	"strings"
	"sync"

	"github.com/diewo77/agence/auth"
	"github.com/diewo77/agence/internal/db"
	"github.com/diewo77/agence/internal/errs"
	"github.com/diewo77/agence/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthService verifies portal credentials. Unknown accounts and wrong
// passwords are indistinguishable to callers.
type AuthService struct {
	db  *gorm.DB
	log *zap.Logger
	now Clock
}

func NewAuthService(db *gorm.DB, log *zap.Logger) *AuthService {
	return &AuthService{db: db, log: log, now: utcNow}
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// burnCompare spends a bcrypt comparison when no account matched so both
// failure paths cost the same.
func burnCompare(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = auth.HashPassword("agence-timing-equalizer")
	})
	auth.CheckPassword(dummyHash, password)
}

// LoginAdmin checks an admin's credentials, records the login time and
// returns the claims to put in the session.
func (s *AuthService) LoginAdmin(ctx context.Context, username, password string) (auth.AdminClaims, error) {
	admin, err := s.loginAdmin(ctx, strings.TrimSpace(username), password)
	if err != nil {
		return auth.AdminClaims{}, err
	}
	return auth.AdminClaims{ID: admin.ID, Username: admin.Username, Role: admin.Role}, nil
}

// LoginClient checks a client's credentials.
func (s *AuthService) LoginClient(ctx context.Context, email, password string) (auth.ClientClaims, error) {
	client, err := s.loginClient(ctx, email, password)
	if err != nil {
		return auth.ClientClaims{}, err
	}
	return auth.ClientClaims{ID: client.ID, Email: client.Email, Entreprise: client.NomEntreprise}, nil
}

func (s *AuthService) loginAdmin(ctx context.Context, username, password string) (*models.AdminUser, error) {
	if username == "" || password == "" {
		return nil, errs.ErrInvalidCredentials
	}
	var admin models.AdminUser
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error
	if err != nil {
		if db.IsNotFound(err) {
			burnCompare(password)
			return nil, errs.ErrInvalidCredentials
		}
		return nil, storeErr(s.log, "login_admin", err, nil)
	}
	if !auth.CheckPassword(admin.PasswordHash, password) {
		return nil, errs.ErrInvalidCredentials
	}
	now := s.now()
	if err := s.db.WithContext(ctx).Model(&admin).UpdateColumn("last_login", now).Error; err != nil {
		s.log.Warn("last_login not updated", zap.Uint("admin_id", admin.ID), zap.Error(err))
	} else {
		admin.LastLogin = &now
	}
	return &admin, nil
}

func (s *AuthService) loginClient(ctx context.Context, email, password string) (*models.Client, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, errs.ErrInvalidCredentials
	}
	var client models.Client
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&client).Error
	if err != nil {
		if db.IsNotFound(err) {
			burnCompare(password)
			return nil, errs.ErrInvalidCredentials
		}
		return nil, storeErr(s.log, "login_client", err, nil)
	}
	if !auth.CheckPassword(client.PasswordHash, password) {
		return nil, errs.ErrInvalidCredentials
	}
	return &client, nil
}

// AdminRole returns the stored role of an admin, used by the permission resolver.
func (s *AuthService) AdminRole(ctx context.Context, adminID uint) (string, error) {
	var admin models.AdminUser
	if err := s.db.WithContext(ctx).Select("id", "role").First(&admin, adminID).Error; err != nil {
		return "", storeErr(s.log, "admin_role", err, errs.ErrNotFound)
	}
	return admin.Role, nil
}
