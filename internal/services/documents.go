package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/diewo77/agence/gate"
	"github.com/diewo77/agence/internal/db"
	"github.com/diewo77/agence/internal/errs"
	"github.com/diewo77/agence/internal/models"
	"github.com/diewo77/agence/internal/storage"
	"github.com/diewo77/agence/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DownloadTTL is the lifetime of a signed download URL.
const DownloadTTL = 60 * time.Second

// MaxUploadSize bounds admin uploads.
const MaxUploadSize = 20 << 20

// UploadInput describes a document an admin publishes for a client.
type UploadInput struct {
	ClientID uint
	Titre    string
	Type     string
	Statut   string
	FileName string
	Size     int64
	Mime     string
}

func (in *UploadInput) normalize() {
	in.Titre = strings.TrimSpace(in.Titre)
	if in.Statut == "" {
		in.Statut = models.DocumentEnvoye
	}
	if in.Type == "" {
		in.Type = "autre"
	}
	if in.Mime == "" {
		in.Mime = "application/octet-stream"
	}
}

func (in UploadInput) validate() error {
	v := validation.Violations{}
	if in.ClientID == 0 {
		v.Add("client_id", "required")
	}
	validation.Required("titre", in.Titre, v)
	validation.MaxLen("titre", in.Titre, 255, v)
	validation.OneOf("type", in.Type, models.DocumentTypes, v)
	validation.OneOf("statut", in.Statut, models.DocumentStatuses, v)
	if in.FileName == "" || in.Size <= 0 {
		v.Add("fichier", "required")
	} else if in.Size > MaxUploadSize {
		v.Add("fichier", "too_large")
	}
	return errs.Invalid(v)
}

// DocumentFilter narrows the admin document list.
type DocumentFilter struct {
	ClientID uint
	Statut   string
}

// DocumentService enforces that a client only ever reaches its own documents.
type DocumentService struct {
	db      *gorm.DB
	store   storage.ObjectStore
	gate    *gate.Gate[uint]
	log     *zap.Logger
	urlTTL  time.Duration
	remover *objectRemover
}

// NewDocumentService expects g to carry a "document" policy keyed on the client id.
func NewDocumentService(db *gorm.DB, store storage.ObjectStore, g *gate.Gate[uint], log *zap.Logger) *DocumentService {
	return &DocumentService{db: db, store: store, gate: g, log: log, urlTTL: DownloadTTL, remover: newObjectRemover(store, log)}
}

// OnOrphan registers a callback run for every storage object left behind.
func (s *DocumentService) OnOrphan(fn func()) { s.remover.onOrphan = fn }

// WithURLTTL overrides the lifetime of download URLs.
func (s *DocumentService) WithURLTTL(ttl time.Duration) *DocumentService {
	if ttl > 0 {
		s.urlTTL = ttl
	}
	return s
}

// ListForClient returns the client's documents, newest first.
func (s *DocumentService) ListForClient(ctx context.Context, clientID uint) ([]models.Document, error) {
	if clientID == 0 {
		return nil, errs.ErrNotAuthenticated
	}
	var docs []models.Document
	if err := s.db.WithContext(ctx).Where("client_id = ?", clientID).Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, storeErr(s.log, "list_documents", err, nil)
	}
	return docs, nil
}

// Get returns a document the client owns. A missing document and one owned
// by another client produce the same error.
func (s *DocumentService) Get(ctx context.Context, clientID uint, documentID string) (*models.Document, error) {
	if clientID == 0 {
		return nil, errs.ErrNotAuthenticated
	}
	if _, err := uuid.Parse(documentID); err != nil {
		return nil, errs.ErrNotFound
	}
	var doc models.Document
	if err := s.db.WithContext(ctx).Where("id = ?", documentID).First(&doc).Error; err != nil {
		return nil, storeErr(s.log, "get_document", err, errs.ErrNotFound)
	}
	if !s.gate.Can(ctx, clientID, gate.ActionView, "document", &doc) {
		s.log.Info("document access denied", zap.Uint("client_id", clientID), zap.String("document_id", documentID))
		return nil, errs.ErrNotFound
	}
	return &doc, nil
}

// DownloadURL returns a short-lived signed URL for a document the client owns.
func (s *DocumentService) DownloadURL(ctx context.Context, clientID uint, documentID string) (string, error) {
	doc, err := s.Get(ctx, clientID, documentID)
	if err != nil {
		return "", err
	}
	if !s.gate.Can(ctx, clientID, gate.ActionDownload, "document", doc) {
		return "", errs.ErrNotFound
	}
	return s.signedURL(ctx, doc)
}

func (s *DocumentService) signedURL(ctx context.Context, doc *models.Document) (string, error) {
	u, err := s.store.SignedURL(ctx, doc.FichierPath, s.urlTTL)
	if err != nil {
		s.log.Error("signed url failed", zap.String("document_id", doc.ID), zap.Error(err))
		return "", errs.ErrUnavailable
	}
	return u, nil
}

// ListAll returns every document for the back-office.
func (s *DocumentService) ListAll(ctx context.Context, f DocumentFilter) ([]models.Document, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if f.ClientID != 0 {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.Statut != "" {
		q = q.Where("statut = ?", f.Statut)
	}
	var docs []models.Document
	if err := q.Find(&docs).Error; err != nil {
		return nil, storeErr(s.log, "list_all_documents", err, nil)
	}
	return docs, nil
}

// Upload stores the file then records the document and its notification in
// one transaction. The object is removed again if the insert fails.
func (s *DocumentService) Upload(ctx context.Context, in UploadInput, r io.Reader) (*models.Document, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}
	var client models.Client
	if err := s.db.WithContext(ctx).Select("id").First(&client, in.ClientID).Error; err != nil {
		if db.IsNotFound(err) {
			v := validation.Violations{}
			v.Add("client_id", "unknown_client")
			return nil, errs.Invalid(v)
		}
		return nil, storeErr(s.log, "upload_client", err, nil)
	}

	doc := &models.Document{
		ID:            uuid.NewString(),
		ClientID:      in.ClientID,
		Titre:         in.Titre,
		Type:          in.Type,
		Statut:        in.Statut,
		FichierNom:    in.FileName,
		FichierTaille: in.Size,
		FichierMime:   in.Mime,
	}
	doc.FichierPath = fmt.Sprintf("documents/%d/%s-%s", in.ClientID, doc.ID, storage.SafeName(in.FileName))

	if err := s.store.Put(ctx, doc.FichierPath, io.LimitReader(r, MaxUploadSize+1), in.Size, in.Mime); err != nil {
		s.log.Error("storage put failed", zap.String("key", doc.FichierPath), zap.Error(err))
		return nil, errs.ErrUnavailable
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return err
		}
		return tx.Create(&models.DocumentNotification{
			ClientID:   doc.ClientID,
			DocumentID: doc.ID,
			Titre:      "Nouveau document disponible",
			Message:    fmt.Sprintf("Le document « %s » a été ajouté à votre espace.", doc.Titre),
		}).Error
	})
	if err != nil {
		s.remover.remove(ctx, doc.FichierPath)
		return nil, storeErr(s.log, "upload_document", err, nil)
	}
	s.log.Info("document uploaded", zap.String("document_id", doc.ID), zap.Uint("client_id", doc.ClientID))
	return doc, nil
}

// UpdateStatus sets the status of a document.
func (s *DocumentService) UpdateStatus(ctx context.Context, id, statut string) error {
	v := validation.Violations{}
	validation.OneOf("statut", statut, models.DocumentStatuses, v)
	if err := errs.Invalid(v); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&models.Document{}).Where("id = ?", id).Update("statut", statut)
	if res.Error != nil {
		return storeErr(s.log, "update_document_status", res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes the document with its notifications and shares in one
// transaction, then the stored file.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	var doc models.Document
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&doc).Error; err != nil {
			return err
		}
		if err := tx.Where("document_id = ?", id).Delete(&models.DocumentNotification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("document_id = ?", id).Delete(&models.DocumentShare{}).Error; err != nil {
			return err
		}
		return tx.Delete(&doc).Error
	})
	if err != nil {
		return storeErr(s.log, "delete_document", err, errs.ErrNotFound)
	}
	s.remover.remove(ctx, doc.FichierPath)
	s.log.Info("document deleted", zap.String("document_id", id))
	return nil
}
