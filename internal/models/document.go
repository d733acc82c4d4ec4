package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document statuses.
const (
	DocumentBrouillon = "brouillon"
	DocumentEnvoye    = "envoye"
	DocumentSigne     = "signe"
	DocumentArchive   = "archive"
)

// DocumentStatuses lists the accepted values of Document.Statut.
var DocumentStatuses = []string{DocumentBrouillon, DocumentEnvoye, DocumentSigne, DocumentArchive}

// DocumentTypes lists the accepted values of Document.Type.
var DocumentTypes = []string{"devis", "facture", "contrat", "cahier_des_charges", "maquette", "autre"}

// Document is a file an admin made available to exactly one client.
// FichierPath is the object-store key, never a public URL.
type Document struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	ClientID      uint      `gorm:"index;not null" json:"client_id"`
	Titre         string    `gorm:"size:255;not null" json:"titre"`
	Type          string    `gorm:"size:50;not null" json:"type"`
	Statut        string    `gorm:"size:20;not null;default:envoye" json:"statut"`
	FichierPath   string    `gorm:"size:512;not null" json:"-"`
	FichierNom    string    `gorm:"size:255" json:"fichier_nom"`
	FichierTaille int64     `json:"fichier_taille"`
	FichierMime   string    `gorm:"size:100" json:"fichier_mime"`
}

// BeforeCreate assigns a random UUID when none is set.
func (d *Document) BeforeCreate(*gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

func (d *Document) GetClientID() uint { return d.ClientID }

// DocumentShare is a bearer link to one document. Tokens are never renewed.
type DocumentShare struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	CreatedAt        time.Time  `json:"created_at"`
	DocumentID       string     `gorm:"type:varchar(36);index;not null" json:"document_id"`
	Token            string     `gorm:"uniqueIndex;size:64;not null" json:"-"`
	DateExpiration   time.Time  `gorm:"not null" json:"date_expiration"`
	EstConsulte      bool       `gorm:"not null;default:false" json:"est_consulte"`
	DateConsultation *time.Time `json:"date_consultation,omitempty"`
}

// Expired reports whether the link is no longer usable at now.
func (s *DocumentShare) Expired(now time.Time) bool { return !now.Before(s.DateExpiration) }

// DocumentNotification tells a client a document was published for them.
type DocumentNotification struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	ClientID    uint       `gorm:"index;not null" json:"client_id"`
	DocumentID  string     `gorm:"type:varchar(36);index;not null" json:"document_id"`
	Titre       string     `gorm:"size:255;not null" json:"titre"`
	Message     string     `gorm:"size:1000" json:"message"`
	EstLu       bool       `gorm:"not null;default:false" json:"est_lu"`
	DateLecture *time.Time `json:"date_lecture,omitempty"`
}

func (n *DocumentNotification) GetClientID() uint { return n.ClientID }
