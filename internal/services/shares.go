package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"strings"
	"time"

	"github.com/diewo77/agence/gate"
	"github.com/diewo77/agence/internal/errs"
	"github.com/diewo77/agence/internal/models"
	"github.com/diewo77/agence/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultShareDays = 7
	MaxShareDays     = 30
	shareTokenBytes  = 32
	SharePathPrefix  = "/documents/partage/"
)

// ShareLink is what a client gets back after creating a share.
type ShareLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ShareService issues and resolves bearer links to documents.
type ShareService struct {
	db      *gorm.DB
	docs    *DocumentService
	log     *zap.Logger
	siteURL string
	now     Clock
	onEvent func(event string)
}

func NewShareService(db *gorm.DB, docs *DocumentService, siteURL string, log *zap.Logger) *ShareService {
	return &ShareService{db: db, docs: docs, log: log, siteURL: strings.TrimRight(siteURL, "/"), now: utcNow}
}

// WithClock replaces the time source.
func (s *ShareService) WithClock(now Clock) *ShareService {
	s.now = now
	return s
}

// OnEvent registers a callback for created, resolved and rejected links.
func (s *ShareService) OnEvent(fn func(event string)) { s.onEvent = fn }

func (s *ShareService) event(name string) {
	if s.onEvent != nil {
		s.onEvent(name)
	}
}

func newShareToken() (string, error) {
	b := make([]byte, shareTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Create issues a new link to a document the client owns. days of zero
// selects the default lifetime.
func (s *ShareService) Create(ctx context.Context, clientID uint, documentID string, days int) (ShareLink, error) {
	if days == 0 {
		days = DefaultShareDays
	}
	v := validation.Violations{}
	validation.RangeInt("expiration_days", days, 1, MaxShareDays, v)
	if err := errs.Invalid(v); err != nil {
		return ShareLink{}, err
	}
	doc, err := s.docs.Get(ctx, clientID, documentID)
	if err != nil {
		return ShareLink{}, err
	}
	if !s.docs.gate.Can(ctx, clientID, gate.ActionShare, "document", doc) {
		return ShareLink{}, errs.ErrNotFound
	}
	token, err := newShareToken()
	if err != nil {
		s.log.Error("share token generation failed", zap.Error(err))
		return ShareLink{}, errs.ErrUnavailable
	}
	share := &models.DocumentShare{
		DocumentID:     doc.ID,
		Token:          token,
		DateExpiration: s.now().Add(time.Duration(days) * 24 * time.Hour),
	}
	if err := s.db.WithContext(ctx).Create(share).Error; err != nil {
		return ShareLink{}, storeErr(s.log, "create_share", err, nil)
	}
	s.event("created")
	s.log.Info("share link created", zap.String("document_id", doc.ID), zap.Uint("client_id", clientID), zap.Int("days", days))
	return ShareLink{URL: s.siteURL + SharePathPrefix + token, ExpiresAt: share.DateExpiration}, nil
}

// Resolve returns the document behind a token and records the consultation.
// Unknown and expired tokens produce the same error.
func (s *ShareService) Resolve(ctx context.Context, token string) (*models.Document, error) {
	doc, _, err := s.resolve(ctx, token)
	return doc, err
}

func (s *ShareService) resolve(ctx context.Context, token string) (*models.Document, *models.DocumentShare, error) {
	if token == "" || len(token) > 64 {
		s.event("rejected")
		return nil, nil, errs.ErrInvalidShareLink
	}
	var share models.DocumentShare
	if err := s.db.WithContext(ctx).Where("token = ?", token).First(&share).Error; err != nil {
		err = storeErr(s.log, "resolve_share", err, errs.ErrInvalidShareLink)
		if err == errs.ErrInvalidShareLink {
			s.event("rejected")
		}
		return nil, nil, err
	}
	now := s.now()
	if share.Expired(now) {
		s.event("rejected")
		return nil, nil, errs.ErrInvalidShareLink
	}
	var doc models.Document
	if err := s.db.WithContext(ctx).Where("id = ?", share.DocumentID).First(&doc).Error; err != nil {
		return nil, nil, storeErr(s.log, "resolve_share_document", err, errs.ErrInvalidShareLink)
	}
	err := s.db.WithContext(ctx).Model(&share).Updates(map[string]any{"est_consulte": true, "date_consultation": now}).Error
	if err != nil {
		return nil, nil, storeErr(s.log, "mark_share_consulted", err, nil)
	}
	share.EstConsulte = true
	share.DateConsultation = &now
	s.event("resolved")
	return &doc, &share, nil
}

// DownloadURL resolves the token then signs a short-lived URL to the file.
func (s *ShareService) DownloadURL(ctx context.Context, token string) (string, error) {
	doc, err := s.Resolve(ctx, token)
	if err != nil {
		return "", err
	}
	return s.docs.signedURL(ctx, doc)
}

// ListForDocument returns the links issued for a document the client owns.
func (s *ShareService) ListForDocument(ctx context.Context, clientID uint, documentID string) ([]models.DocumentShare, error) {
	doc, err := s.docs.Get(ctx, clientID, documentID)
	if err != nil {
		return nil, err
	}
	var out []models.DocumentShare
	if err := s.db.WithContext(ctx).Where("document_id = ?", doc.ID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, storeErr(s.log, "list_shares", err, nil)
	}
	return out, nil
}
