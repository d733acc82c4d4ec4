package models

import "time"

const (
	ProjetEnCours = "en_cours"
	ProjetTermine = "termine"
	ProjetEnPause = "en_pause"
)

var ProjectStatuses = []string{ProjetEnCours, ProjetTermine, ProjetEnPause}

// Project is a client engagement together with its contract terms.
type Project struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ClientID    uint       `gorm:"index;not null" json:"client_id"`
	Nom         string     `gorm:"size:255;not null" json:"nom"`
	Description string     `gorm:"size:2000" json:"description,omitempty"`
	Statut      string     `gorm:"size:20;not null;default:en_cours" json:"statut"`
	TypeContrat string     `gorm:"size:50" json:"type_contrat,omitempty"`
	Montant     float64    `json:"montant"`
	DateDebut   *time.Time `json:"date_debut,omitempty"`
	DateFin     *time.Time `json:"date_fin,omitempty"`
}

func (p *Project) GetClientID() uint { return p.ClientID }
