package services

import (
	"context"

	"github.com/diewo77/agence/gate"
	"github.com/diewo77/agence/internal/db"
	"github.com/diewo77/agence/internal/errs"
	"github.com/diewo77/agence/internal/mail"
	"github.com/diewo77/agence/internal/models"
	"github.com/diewo77/agence/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CollaboratorService handles the teammates a client invites.
type CollaboratorService struct {
	db      *gorm.DB
	gate    *gate.Gate[uint]
	mailer  mail.Sender
	log     *zap.Logger
	siteURL string
	now     Clock
}

func NewCollaboratorService(db *gorm.DB, g *gate.Gate[uint], mailer mail.Sender, siteURL string, log *zap.Logger) *CollaboratorService {
	return &CollaboratorService{db: db, gate: g, mailer: mailer, log: log, siteURL: siteURL, now: utcNow}
}

// Invite records a pending invitation then emails it. The invitation is kept
// when the email cannot be sent; mailed reports the delivery outcome.
func (s *CollaboratorService) Invite(ctx context.Context, clientID uint, email string) (c *models.Collaborator, mailed bool, err error) {
	if clientID == 0 {
		return nil, false, errs.ErrNotAuthenticated
	}
	email = normalizeEmail(email)
	v := validation.Violations{}
	validation.Email("email", email, v)
	if err := errs.Invalid(v); err != nil {
		return nil, false, err
	}

	var owner models.Client
	if err := s.db.WithContext(ctx).First(&owner, clientID).Error; err != nil {
		return nil, false, storeErr(s.log, "invite_owner", err, errs.ErrNotAuthenticated)
	}
	if normalizeEmail(owner.Email) == email {
		v.Add("email", "self_invite")
		return nil, false, errs.Invalid(v)
	}

	c = &models.Collaborator{
		ClientID:         clientID,
		Email:            email,
		StatutInvitation: models.InvitationPending,
		DateInvitation:   s.now(),
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return nil, false, errs.ErrAlreadyExists
		}
		return nil, false, storeErr(s.log, "invite_collaborator", err, nil)
	}

	if err := s.mailer.Send(ctx, mail.InvitationMessage(email, owner.NomEntreprise, s.siteURL)); err != nil {
		s.log.Warn("invitation email not sent", zap.Uint("client_id", clientID), zap.Uint("collaborator_id", c.ID), zap.Error(err))
		return c, false, nil
	}
	return c, true, nil
}

func (s *CollaboratorService) List(ctx context.Context, clientID uint) ([]models.Collaborator, error) {
	if clientID == 0 {
		return nil, errs.ErrNotAuthenticated
	}
	var out []models.Collaborator
	if err := s.db.WithContext(ctx).Where("client_id = ?", clientID).Order("date_invitation DESC").Find(&out).Error; err != nil {
		return nil, storeErr(s.log, "list_collaborators", err, nil)
	}
	return out, nil
}

// Remove deletes a collaborator of the client.
func (s *CollaboratorService) Remove(ctx context.Context, clientID, id uint) error {
	if clientID == 0 {
		return errs.ErrNotAuthenticated
	}
	var c models.Collaborator
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return storeErr(s.log, "get_collaborator", err, errs.ErrNotFound)
	}
	if !s.gate.Can(ctx, clientID, gate.ActionDelete, "collaborator", &c) {
		return errs.ErrNotFound
	}
	if err := s.db.WithContext(ctx).Delete(&c).Error; err != nil {
		return storeErr(s.log, "remove_collaborator", err, nil)
	}
	return nil
}
