package services

import (
	"context"

	"github.com/diewo77/agence/gate"
	"github.com/diewo77/agence/internal/errs"
	"github.com/diewo77/agence/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type NotificationService struct {
	db   *gorm.DB
	gate *gate.Gate[uint]
	log  *zap.Logger
	now  Clock
}

func NewNotificationService(db *gorm.DB, g *gate.Gate[uint], log *zap.Logger) *NotificationService {
	return &NotificationService{db: db, gate: g, log: log, now: utcNow}
}

// List returns the client's notifications, unread first.
func (s *NotificationService) List(ctx context.Context, clientID uint) ([]models.DocumentNotification, error) {
	if clientID == 0 {
		return nil, errs.ErrNotAuthenticated
	}
	var out []models.DocumentNotification
	err := s.db.WithContext(ctx).Where("client_id = ?", clientID).Order("est_lu ASC, created_at DESC").Find(&out).Error
	if err != nil {
		return nil, storeErr(s.log, "list_notifications", err, nil)
	}
	return out, nil
}

// MarkRead flags a notification as read. Reading it again is a no-op.
func (s *NotificationService) MarkRead(ctx context.Context, clientID, notificationID uint) error {
	if clientID == 0 {
		return errs.ErrNotAuthenticated
	}
	var n models.DocumentNotification
	if err := s.db.WithContext(ctx).First(&n, notificationID).Error; err != nil {
		return storeErr(s.log, "get_notification", err, errs.ErrNotFound)
	}
	if !s.gate.Can(ctx, clientID, gate.ActionUpdate, "notification", &n) {
		return errs.ErrNotFound
	}
	if n.EstLu {
		return nil
	}
	err := s.db.WithContext(ctx).Model(&n).Updates(map[string]any{"est_lu": true, "date_lecture": s.now()}).Error
	if err != nil {
		return storeErr(s.log, "mark_notification_read", err, nil)
	}
	return nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, clientID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.DocumentNotification{}).
		Where("client_id = ? AND est_lu = ?", clientID, false).Count(&n).Error
	if err != nil {
		return 0, storeErr(s.log, "count_notifications", err, nil)
	}
	return n, nil
}
