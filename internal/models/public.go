package models

import "time"

// Quote request statuses.
const (
	DevisNouveau = "nouveau"
	DevisEnCours = "en_cours"
	DevisAccepte = "accepte"
	DevisRefuse  = "refuse"
)

var QuoteStatuses = []string{DevisNouveau, DevisEnCours, DevisAccepte, DevisRefuse}

// QuoteRequest is a "devis" submitted through the public multi-step form.
type QuoteRequest struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Reference   string    `gorm:"uniqueIndex;size:40;not null" json:"reference"`
	TypeProjet  string    `gorm:"size:50;not null" json:"type_projet"`
	Services    string    `gorm:"size:500" json:"services"`
	Budget      string    `gorm:"size:50" json:"budget"`
	Delai       string    `gorm:"size:50" json:"delai"`
	Description string    `gorm:"size:5000" json:"description"`
	Nom         string    `gorm:"size:255;not null" json:"nom"`
	Email       string    `gorm:"size:255;not null" json:"email"`
	Telephone   string    `gorm:"size:50" json:"telephone,omitempty"`
	Entreprise  string    `gorm:"size:255" json:"entreprise,omitempty"`
	Statut      string    `gorm:"size:20;not null;default:nouveau" json:"statut"`
}

// ContactMessage is a message from the public contact form.
type ContactMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Nom       string    `gorm:"size:255;not null" json:"nom"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	Sujet     string    `gorm:"size:255" json:"sujet"`
	Message   string    `gorm:"size:5000;not null" json:"message"`
	Lu        bool      `gorm:"not null;default:false" json:"lu"`
}

type NewsletterSubscriber struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
}

type BlogPost struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Slug        string    `gorm:"uniqueIndex;size:150;not null" json:"slug"`
	Titre       string    `gorm:"size:255;not null" json:"titre"`
	Extrait     string    `gorm:"size:500" json:"extrait"`
	Contenu     string    `gorm:"type:text" json:"contenu"`
	Auteur      string    `gorm:"size:100" json:"auteur"`
	PublishedAt time.Time `gorm:"index" json:"published_at"`
}
