package services

import (
	"context"
	"strings"

	"github.com/diewo77/agence/auth"
	"github.com/diewo77/agence/internal/db"
	"github.com/diewo77/agence/internal/errs"
	"github.com/diewo77/agence/internal/models"
	"github.com/diewo77/agence/internal/storage"
	"github.com/diewo77/agence/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MinPasswordLen applies to self-service signup and password changes.
// Accounts created from the back-office only need a non-empty password.
const MinPasswordLen = 8

// NewClient is the input of addClient and self-service signup.
type NewClient struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	NomEntreprise string `json:"nom_entreprise"`
	NomContact    string `json:"nom_contact"`
	Telephone     string `json:"telephone"`
}

func (in *NewClient) normalize() {
	in.Email = normalizeEmail(in.Email)
	in.NomEntreprise = strings.TrimSpace(in.NomEntreprise)
	in.NomContact = strings.TrimSpace(in.NomContact)
	in.Telephone = strings.TrimSpace(in.Telephone)
}

func (in NewClient) validate(minPassword int) error {
	v := validation.Violations{}
	validation.Email("email", in.Email, v)
	validation.Required("password", in.Password, v)
	validation.MinLen("password", in.Password, minPassword, v)
	validation.MaxBytes("password", in.Password, auth.MaxPasswordBytes, v)
	validation.Required("nom_entreprise", in.NomEntreprise, v)
	validation.MaxLen("nom_entreprise", in.NomEntreprise, 255, v)
	return errs.Invalid(v)
}

// ProfileUpdate lists the only fields a client may change on their profile.
type ProfileUpdate struct {
	NomEntreprise string `json:"nom_entreprise"`
	NomContact    string `json:"nom_contact"`
	Telephone     string `json:"telephone"`
	Adresse       string `json:"adresse"`
	CodePostal    string `json:"code_postal"`
	Ville         string `json:"ville"`
	Pays          string `json:"pays"`
	SiteWeb       string `json:"site_web"`
}

func (p *ProfileUpdate) normalize() {
	for _, f := range []*string{&p.NomEntreprise, &p.NomContact, &p.Telephone, &p.Adresse, &p.CodePostal, &p.Ville, &p.Pays, &p.SiteWeb} {
		*f = strings.TrimSpace(*f)
	}
}

func (p ProfileUpdate) validate() error {
	v := validation.Violations{}
	validation.Required("nom_entreprise", p.NomEntreprise, v)
	validation.MaxLen("nom_entreprise", p.NomEntreprise, 255, v)
	validation.MaxLen("nom_contact", p.NomContact, 255, v)
	validation.MaxLen("telephone", p.Telephone, 50, v)
	validation.MaxLen("adresse", p.Adresse, 255, v)
	validation.MaxLen("code_postal", p.CodePostal, 20, v)
	validation.MaxLen("ville", p.Ville, 100, v)
	validation.MaxLen("pays", p.Pays, 100, v)
	validation.MaxLen("site_web", p.SiteWeb, 255, v)
	if p.SiteWeb != "" && !strings.HasPrefix(p.SiteWeb, "http://") && !strings.HasPrefix(p.SiteWeb, "https://") {
		v.Add("site_web", "invalid_url")
	}
	return errs.Invalid(v)
}

// ClientService manages espace-client accounts.
type ClientService struct {
	db      *gorm.DB
	log     *zap.Logger
	remover *objectRemover
}

func NewClientService(db *gorm.DB, store storage.ObjectStore, log *zap.Logger) *ClientService {
	return &ClientService{db: db, log: log, remover: newObjectRemover(store, log)}
}

// OnOrphan registers a callback run for every storage object left behind.
func (s *ClientService) OnOrphan(fn func()) { s.remover.onOrphan = fn }

// Add creates a client from the back-office.
func (s *ClientService) Add(ctx context.Context, in NewClient) (*models.Client, error) {
	return s.create(ctx, in, 1, "add_client")
}

// Signup creates a client from the public inscription form.
func (s *ClientService) Signup(ctx context.Context, in NewClient) (*models.Client, error) {
	return s.create(ctx, in, MinPasswordLen, "signup")
}

func (s *ClientService) create(ctx context.Context, in NewClient, minPassword int, op string) (*models.Client, error) {
	in.normalize()
	if err := in.validate(minPassword); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	c := &models.Client{
		Email:         in.Email,
		PasswordHash:  hash,
		NomEntreprise: in.NomEntreprise,
		NomContact:    in.NomContact,
		Telephone:     in.Telephone,
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return nil, errs.ErrAlreadyExists
		}
		return nil, storeErr(s.log, op, err, nil)
	}
	s.log.Info("client created", zap.String("op", op), zap.Uint("client_id", c.ID))
	return c, nil
}

// Get returns one client.
func (s *ClientService) Get(ctx context.Context, id uint) (*models.Client, error) {
	if id == 0 {
		return nil, errs.ErrNotAuthenticated
	}
	var c models.Client
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, storeErr(s.log, "get_client", err, errs.ErrNotFound)
	}
	return &c, nil
}

// List returns clients, newest first, optionally filtered on email or company.
func (s *ClientService) List(ctx context.Context, query string) ([]models.Client, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if query = strings.TrimSpace(query); query != "" {
		like := "%" + strings.ToLower(query) + "%"
		q = q.Where("LOWER(email) LIKE ? OR LOWER(nom_entreprise) LIKE ?", like, like)
	}
	var out []models.Client
	if err := q.Find(&out).Error; err != nil {
		return nil, storeErr(s.log, "list_clients", err, nil)
	}
	return out, nil
}

// UpdateProfile overwrites the editable profile fields.
func (s *ClientService) UpdateProfile(ctx context.Context, clientID uint, in ProfileUpdate) (*models.Client, error) {
	c, err := s.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}
	updates := map[string]any{
		"nom_entreprise": in.NomEntreprise,
		"nom_contact":    in.NomContact,
		"telephone":      in.Telephone,
		"adresse":        in.Adresse,
		"code_postal":    in.CodePostal,
		"ville":          in.Ville,
		"pays":           in.Pays,
		"site_web":       in.SiteWeb,
	}
	if err := s.db.WithContext(ctx).Model(c).Updates(updates).Error; err != nil {
		return nil, storeErr(s.log, "update_profile", err, nil)
	}
	return s.Get(ctx, clientID)
}

// ChangePassword replaces the password after checking the current one.
func (s *ClientService) ChangePassword(ctx context.Context, clientID uint, current, next string) error {
	c, err := s.Get(ctx, clientID)
	if err != nil {
		return err
	}
	v := validation.Violations{}
	validation.Required("current_password", current, v)
	validation.Required("new_password", next, v)
	validation.MinLen("new_password", next, MinPasswordLen, v)
	validation.MaxBytes("new_password", next, auth.MaxPasswordBytes, v)
	if err := errs.Invalid(v); err != nil {
		return err
	}
	if !auth.CheckPassword(c.PasswordHash, current) {
		v.Add("current_password", "invalid_credentials")
		return errs.Invalid(v)
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(c).Update("password_hash", hash).Error; err != nil {
		return storeErr(s.log, "change_password", err, nil)
	}
	return nil
}

// Delete removes a client with its documents, shares, notifications,
// collaborators and projects, then the stored files.
func (s *ClientService) Delete(ctx context.Context, id uint) error {
	var keys []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Client
		if err := tx.Select("id").First(&c, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Document{}).Where("client_id = ?", id).Pluck("fichier_path", &keys).Error; err != nil {
			return err
		}
		docIDs := tx.Model(&models.Document{}).Select("id").Where("client_id = ?", id)
		steps := []func() error{
			func() error { return tx.Where("client_id = ?", id).Delete(&models.DocumentNotification{}).Error },
			func() error { return tx.Where("document_id IN (?)", docIDs).Delete(&models.DocumentShare{}).Error },
			func() error { return tx.Where("client_id = ?", id).Delete(&models.Document{}).Error },
			func() error { return tx.Where("client_id = ?", id).Delete(&models.Collaborator{}).Error },
			func() error { return tx.Where("client_id = ?", id).Delete(&models.Project{}).Error },
			func() error { return tx.Delete(&c).Error },
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return storeErr(s.log, "delete_client", err, errs.ErrNotFound)
	}
	s.remover.remove(ctx, keys...)
	s.log.Info("client deleted", zap.Uint("client_id", id), zap.Int("files", len(keys)))
	return nil
}
