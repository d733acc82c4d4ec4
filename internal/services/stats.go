package services

import (
	"context"

	"github.com/diewo77/agence/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminStats feeds the back-office dashboard.
type AdminStats struct {
	NewQuotes      int64
	Clients        int64
	Documents      int64
	UnreadMessages int64
	LatestQuotes   []models.QuoteRequest
}

// ClientStats feeds the espace-client dashboard.
type ClientStats struct {
	Documents           int64
	UnreadNotifications int64
	Projects            []models.Project
}

type StatsService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewStatsService(db *gorm.DB, log *zap.Logger) *StatsService {
	return &StatsService{db: db, log: log}
}

func (s *StatsService) Admin(ctx context.Context) (*AdminStats, error) {
	var st AdminStats
	tx := s.db.WithContext(ctx)
	counts := []struct {
		dst   *int64
		model any
		where string
		args  []any
	}{
		{&st.NewQuotes, &models.QuoteRequest{}, "statut = ?", []any{models.DevisNouveau}},
		{&st.Clients, &models.Client{}, "", nil},
		{&st.Documents, &models.Document{}, "", nil},
		{&st.UnreadMessages, &models.ContactMessage{}, "lu = ?", []any{false}},
	}
	for _, c := range counts {
		q := tx.Model(c.model)
		if c.where != "" {
			q = q.Where(c.where, c.args...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, storeErr(s.log, "admin_stats", err, nil)
		}
	}
	if err := tx.Order("created_at DESC").Limit(5).Find(&st.LatestQuotes).Error; err != nil {
		return nil, storeErr(s.log, "admin_stats", err, nil)
	}
	return &st, nil
}

func (s *StatsService) Client(ctx context.Context, clientID uint) (*ClientStats, error) {
	var st ClientStats
	tx := s.db.WithContext(ctx)
	if err := tx.Model(&models.Document{}).Where("client_id = ?", clientID).Count(&st.Documents).Error; err != nil {
		return nil, storeErr(s.log, "client_stats", err, nil)
	}
	err := tx.Model(&models.DocumentNotification{}).Where("client_id = ? AND est_lu = ?", clientID, false).
		Count(&st.UnreadNotifications).Error
	if err != nil {
		return nil, storeErr(s.log, "client_stats", err, nil)
	}
	if err := tx.Where("client_id = ?", clientID).Order("created_at DESC").Find(&st.Projects).Error; err != nil {
		return nil, storeErr(s.log, "client_stats", err, nil)
	}
	return &st, nil
}
