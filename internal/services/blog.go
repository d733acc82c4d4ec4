package services

import (
	"context"

	"github.com/diewo77/agence/internal/errs"
	"github.com/diewo77/agence/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type BlogService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewBlogService(db *gorm.DB, log *zap.Logger) *BlogService {
	return &BlogService{db: db, log: log}
}

// List returns published posts, newest first. limit <= 0 means no limit.
func (s *BlogService) List(ctx context.Context, limit int) ([]models.BlogPost, error) {
	q := s.db.WithContext(ctx).Order("published_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []models.BlogPost
	if err := q.Find(&out).Error; err != nil {
		return nil, storeErr(s.log, "list_posts", err, nil)
	}
	return out, nil
}

func (s *BlogService) BySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	var p models.BlogPost
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&p).Error; err != nil {
		return nil, storeErr(s.log, "get_post", err, errs.ErrNotFound)
	}
	return &p, nil
}
