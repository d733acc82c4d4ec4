package services

import (
	"context"
	"strings"
	"time"

	"github.com/diewo77/agence/internal/db"
	"github.com/diewo77/agence/internal/errs"
	"github.com/diewo77/agence/internal/models"
	"github.com/diewo77/agence/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewProject is the admin input for a project or contract.
type NewProject struct {
	ClientID    uint       `json:"client_id"`
	Nom         string     `json:"nom"`
	Description string     `json:"description"`
	Statut      string     `json:"statut"`
	TypeContrat string     `json:"type_contrat"`
	Montant     float64    `json:"montant"`
	DateDebut   *time.Time `json:"date_debut"`
	DateFin     *time.Time `json:"date_fin"`
}

// MaxProjectAmount bounds Project.Montant, in euros.
const MaxProjectAmount = 10_000_000

func (in NewProject) validate() error {
	v := validation.Violations{}
	if in.ClientID == 0 {
		v.Add("client_id", "required")
	}
	validation.Required("nom", in.Nom, v)
	validation.MaxLen("nom", in.Nom, 255, v)
	validation.MaxLen("description", in.Description, 2000, v)
	validation.OneOf("statut", in.Statut, models.ProjectStatuses, v)
	validation.RangeFloat("montant", in.Montant, 0, MaxProjectAmount, v)
	if in.DateDebut != nil && in.DateFin != nil && in.DateFin.Before(*in.DateDebut) {
		v.Add("date_fin", "before_start")
	}
	return errs.Invalid(v)
}

type ProjectService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewProjectService(db *gorm.DB, log *zap.Logger) *ProjectService {
	return &ProjectService{db: db, log: log}
}

func (s *ProjectService) Create(ctx context.Context, in NewProject) (*models.Project, error) {
	in.Nom = strings.TrimSpace(in.Nom)
	if in.Statut == "" {
		in.Statut = models.ProjetEnCours
	}
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
		return nil, storeErr(s.log, "create_project_client", err, nil)
	}
	p := &models.Project{
		ClientID:    in.ClientID,
		Nom:         in.Nom,
		Description: strings.TrimSpace(in.Description),
		Statut:      in.Statut,
		TypeContrat: strings.TrimSpace(in.TypeContrat),
		Montant:     in.Montant,
		DateDebut:   in.DateDebut,
		DateFin:     in.DateFin,
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, storeErr(s.log, "create_project", err, nil)
	}
	return p, nil
}

func (s *ProjectService) UpdateStatus(ctx context.Context, id uint, statut string) error {
	v := validation.Violations{}
	validation.OneOf("statut", statut, models.ProjectStatuses, v)
	if err := errs.Invalid(v); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Update("statut", statut)
	if res.Error != nil {
		return storeErr(s.log, "update_project_status", res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *ProjectService) ListAll(ctx context.Context) ([]models.Project, error) {
	var out []models.Project
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, storeErr(s.log, "list_projects", err, nil)
	}
	return out, nil
}

// ListForClient returns the projects of one client, read-only.
func (s *ProjectService) ListForClient(ctx context.Context, clientID uint) ([]models.Project, error) {
	if clientID == 0 {
		return nil, errs.ErrNotAuthenticated
	}
	var out []models.Project
	if err := s.db.WithContext(ctx).Where("client_id = ?", clientID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, storeErr(s.log, "list_client_projects", err, nil)
	}
	return out, nil
}
