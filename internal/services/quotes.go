package services

import (
	"context"
	"strings"

	"github.com/diewo77/agence/internal/errs"
	"github.com/diewo77/agence/internal/models"
	"github.com/diewo77/agence/validation"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuoteSteps is the number of pages of the devis form.
const QuoteSteps = 3

// Choices offered by the devis form.
var (
	QuoteProjectTypes = []string{"site_vitrine", "e_commerce", "application_web", "refonte", "autre"}
	QuoteServices     = []string{"design", "developpement", "seo", "hebergement", "maintenance", "redaction"}
	QuoteBudgets      = []string{"moins_5k", "5k_10k", "10k_20k", "plus_20k", "a_definir"}
	QuoteDelais       = []string{"urgent", "1_mois", "3_mois", "6_mois", "flexible"}
)

// QuoteInput carries every field of the devis form. Earlier steps travel
// with later ones so the final submission is complete.
type QuoteInput struct {
	TypeProjet  string   `json:"type_projet"`
	Services    []string `json:"services"`
	Budget      string   `json:"budget"`
	Delai       string   `json:"delai"`
	Description string   `json:"description"`
	Nom         string   `json:"nom"`
	Email       string   `json:"email"`
	Telephone   string   `json:"telephone"`
	Entreprise  string   `json:"entreprise"`
}

func (in *QuoteInput) normalize() {
	in.TypeProjet = strings.TrimSpace(in.TypeProjet)
	in.Budget = strings.TrimSpace(in.Budget)
	in.Delai = strings.TrimSpace(in.Delai)
	in.Description = strings.TrimSpace(in.Description)
	in.Nom = strings.TrimSpace(in.Nom)
	in.Email = normalizeEmail(in.Email)
	in.Telephone = strings.TrimSpace(in.Telephone)
	in.Entreprise = strings.TrimSpace(in.Entreprise)
	seen := map[string]bool{}
	services := make([]string, 0, len(in.Services))
	for _, sv := range in.Services {
		sv = strings.TrimSpace(sv)
		if sv != "" && !seen[sv] {
			seen[sv] = true
			services = append(services, sv)
		}
	}
	in.Services = services
}

// quoteFieldSteps records which page of the form owns each field.
var quoteFieldSteps = map[string]int{
	"type_projet": 1, "services": 1,
	"budget": 2, "delai": 2, "description": 2,
	"nom": 3, "email": 3, "telephone": 3, "entreprise": 3,
}

// FirstInvalidStep returns the earliest step owning one of the violated
// fields, or 1 when none is known.
func FirstInvalidStep(v validation.Violations) int {
	first := QuoteSteps + 1
	for field := range v {
		if step, ok := quoteFieldSteps[field]; ok && step < first {
			first = step
		}
	}
	if first > QuoteSteps {
		return 1
	}
	return first
}

func (in QuoteInput) validateStep(step int, v validation.Violations) {
	switch step {
	case 1:
		validation.OneOf("type_projet", in.TypeProjet, QuoteProjectTypes, v)
		if len(in.Services) == 0 {
			v.Add("services", "required")
		}
		for _, sv := range in.Services {
			validation.OneOf("services", sv, QuoteServices, v)
		}
	case 2:
		validation.OneOf("budget", in.Budget, QuoteBudgets, v)
		validation.OneOf("delai", in.Delai, QuoteDelais, v)
		validation.Required("description", in.Description, v)
		validation.MinLen("description", in.Description, 10, v)
		validation.MaxLen("description", in.Description, 5000, v)
	case 3:
		validation.Required("nom", in.Nom, v)
		validation.MaxLen("nom", in.Nom, 255, v)
		validation.Email("email", in.Email, v)
		validation.MaxLen("telephone", in.Telephone, 50, v)
		validation.MaxLen("entreprise", in.Entreprise, 255, v)
	}
}

type QuoteService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewQuoteService(db *gorm.DB, log *zap.Logger) *QuoteService {
	return &QuoteService{db: db, log: log}
}

// ValidateStep checks the fields owned by one step of the form.
func (s *QuoteService) ValidateStep(step int, in QuoteInput) error {
	in.normalize()
	v := validation.Violations{}
	if step < 1 || step > QuoteSteps {
		v.Add("etape", "out_of_range")
		return errs.Invalid(v)
	}
	in.validateStep(step, v)
	return errs.Invalid(v)
}

// Submit validates every step and records the request under a fresh reference.
func (s *QuoteService) Submit(ctx context.Context, in QuoteInput) (*models.QuoteRequest, error) {
	in.normalize()
	v := validation.Violations{}
	for step := 1; step <= QuoteSteps; step++ {
		in.validateStep(step, v)
	}
	if err := errs.Invalid(v); err != nil {
		return nil, err
	}
	q := &models.QuoteRequest{
		Reference:   "DEV-" + ulid.Make().String(),
		TypeProjet:  in.TypeProjet,
		Services:    strings.Join(in.Services, ","),
		Budget:      in.Budget,
		Delai:       in.Delai,
		Description: in.Description,
		Nom:         in.Nom,
		Email:       in.Email,
		Telephone:   in.Telephone,
		Entreprise:  in.Entreprise,
		Statut:      models.DevisNouveau,
	}
	if err := s.db.WithContext(ctx).Create(q).Error; err != nil {
		return nil, storeErr(s.log, "submit_quote", err, nil)
	}
	s.log.Info("quote request received", zap.String("reference", q.Reference), zap.String("type_projet", q.TypeProjet))
	return q, nil
}

// ListAll returns quote requests, newest first, optionally by status.
func (s *QuoteService) ListAll(ctx context.Context, statut string) ([]models.QuoteRequest, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if statut != "" {
		q = q.Where("statut = ?", statut)
	}
	var out []models.QuoteRequest
	if err := q.Find(&out).Error; err != nil {
		return nil, storeErr(s.log, "list_quotes", err, nil)
	}
	return out, nil
}

func (s *QuoteService) UpdateStatus(ctx context.Context, id uint, statut string) error {
	v := validation.Violations{}
	validation.OneOf("statut", statut, models.QuoteStatuses, v)
	if err := errs.Invalid(v); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&models.QuoteRequest{}).Where("id = ?", id).Update("statut", statut)
	if res.Error != nil {
		return storeErr(s.log, "update_quote_status", res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}
