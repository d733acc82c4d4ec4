package services

import (
	"context"
	"strings"

	"github.com/diewo77/agence/internal/db"
	"github.com/diewo77/agence/internal/errs"
	"github.com/diewo77/agence/internal/models"
	"github.com/diewo77/agence/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ContactInput struct {
	Nom     string `json:"nom"`
	Email   string `json:"email"`
	Sujet   string `json:"sujet"`
	Message string `json:"message"`
}

// ContactService backs the contact and newsletter forms.
type ContactService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewContactService(db *gorm.DB, log *zap.Logger) *ContactService {
	return &ContactService{db: db, log: log}
}

func (s *ContactService) SendMessage(ctx context.Context, in ContactInput) (*models.ContactMessage, error) {
	m := &models.ContactMessage{
		Nom:     strings.TrimSpace(in.Nom),
		Email:   normalizeEmail(in.Email),
		Sujet:   strings.TrimSpace(in.Sujet),
		Message: strings.TrimSpace(in.Message),
	}
	v := validation.Violations{}
	validation.Required("nom", m.Nom, v)
	validation.MaxLen("nom", m.Nom, 255, v)
	validation.Email("email", m.Email, v)
	validation.MaxLen("sujet", m.Sujet, 255, v)
	validation.Required("message", m.Message, v)
	validation.MaxLen("message", m.Message, 5000, v)
	if err := errs.Invalid(v); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, storeErr(s.log, "send_contact", err, nil)
	}
	return m, nil
}

// Subscribe adds an email to the newsletter. Subscribing twice succeeds.
func (s *ContactService) Subscribe(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	v := validation.Violations{}
	validation.Email("email", email, v)
	if err := errs.Invalid(v); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Where(models.NewsletterSubscriber{Email: email}).
		FirstOrCreate(&models.NewsletterSubscriber{}).Error
	if err != nil && !db.IsUniqueViolation(err) {
		return storeErr(s.log, "subscribe", err, nil)
	}
	return nil
}

func (s *ContactService) ListMessages(ctx context.Context) ([]models.ContactMessage, error) {
	var out []models.ContactMessage
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, storeErr(s.log, "list_messages", err, nil)
	}
	return out, nil
}

func (s *ContactService) MarkMessageRead(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Model(&models.ContactMessage{}).Where("id = ?", id).Update("lu", true)
	if res.Error != nil {
		return storeErr(s.log, "mark_message_read", res.Error, nil)
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.ContactMessage{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return storeErr(s.log, "mark_message_read", err, nil)
		}
		if n == 0 {
			return errs.ErrNotFound
		}
	}
	return nil
}

func (s *ContactService) ListSubscribers(ctx context.Context) ([]models.NewsletterSubscriber, error) {
	var out []models.NewsletterSubscriber
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, storeErr(s.log, "list_subscribers", err, nil)
	}
	return out, nil
}
