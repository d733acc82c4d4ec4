package models

import "time"

// Client is a customer account of the espace-client.
type Client struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Email         string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash  string    `gorm:"size:255;not null" json:"-"`
	NomEntreprise string    `gorm:"size:255;not null" json:"nom_entreprise"`
	NomContact    string    `gorm:"size:255" json:"nom_contact,omitempty"`
	Telephone     string    `gorm:"size:50" json:"telephone,omitempty"`
	Adresse       string    `gorm:"size:255" json:"adresse,omitempty"`
	CodePostal    string    `gorm:"size:20" json:"code_postal,omitempty"`
	Ville         string    `gorm:"size:100" json:"ville,omitempty"`
	Pays          string    `gorm:"size:100" json:"pays,omitempty"`
	SiteWeb       string    `gorm:"size:255" json:"site_web,omitempty"`
}

// Collaborator invitation states.
const (
	InvitationPending  = "en_attente"
	InvitationAccepted = "acceptee"
)

// Collaborator is a teammate a client invited by email.
type Collaborator struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ClientID         uint      `gorm:"not null;uniqueIndex:idx_collaborator_client_email" json:"client_id"`
	Email            string    `gorm:"size:255;not null;uniqueIndex:idx_collaborator_client_email" json:"email"`
	StatutInvitation string    `gorm:"size:20;not null;default:en_attente" json:"statut_invitation"`
	DateInvitation   time.Time `gorm:"not null" json:"date_invitation"`
}

func (c *Collaborator) GetClientID() uint { return c.ClientID }
