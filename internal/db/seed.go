package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/diewo77/agence/auth"
	"github.com/diewo77/agence/internal/models"
	"gorm.io/gorm"
)

var seedPosts = []models.BlogPost{
	{
		Slug:    "bien-choisir-son-site-vitrine",
		Titre:   "Bien choisir son site vitrine",
		Extrait: "Les questions à se poser avant de lancer la refonte de votre site.",
		Contenu: "Un site vitrine doit d'abord servir vos objectifs commerciaux. Avant de parler design, listez vos cibles, vos offres et les actions attendues des visiteurs.",
		Auteur:  "L'équipe",
	},
	{
		Slug:    "referencement-local",
		Titre:   "Référencement local : les bases",
		Extrait: "Fiche d'établissement, avis clients et pages locales.",
		Contenu: "Le référencement local repose sur la cohérence de vos informations (nom, adresse, téléphone) et sur des pages dédiées à chaque zone desservie.",
		Auteur:  "L'équipe",
	},
	{
		Slug:    "securiser-vos-documents-clients",
		Titre:   "Partager des documents clients en toute sécurité",
		Extrait: "Liens expirants, espace client et bonnes pratiques.",
		Contenu: "Un lien de partage doit expirer, être impossible à deviner et ne jamais exposer l'adresse permanente du fichier.",
		Auteur:  "L'équipe",
	},
}

// Seed inserts reference content. Running it twice is harmless.
func Seed(ctx context.Context, conn *gorm.DB) error {
	base := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	for i, p := range seedPosts {
		post := p
		post.PublishedAt = base.AddDate(0, i, 0)
		err := conn.WithContext(ctx).Where(models.BlogPost{Slug: post.Slug}).FirstOrCreate(&post).Error
		if err != nil {
			return fmt.Errorf("seed blog post %s: %w", post.Slug, err)
		}
	}
	return nil
}

// CreateAdmin provisions an admin account, or resets the password and role
// of an existing one.
func CreateAdmin(ctx context.Context, conn *gorm.DB, username, password, role string) (*models.AdminUser, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New("admin username required")
	}
	if len(password) > auth.MaxPasswordBytes {
		return nil, fmt.Errorf("admin password longer than %d bytes", auth.MaxPasswordBytes)
	}
	if role == "" {
		role = models.RoleAdmin
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	var admin models.AdminUser
	err = conn.WithContext(ctx).Where("username = ?", username).First(&admin).Error
	switch {
	case err == nil:
		admin.PasswordHash = hash
		admin.Role = role
		if err := conn.WithContext(ctx).Save(&admin).Error; err != nil {
			return nil, err
		}
	case IsNotFound(err):
		admin = models.AdminUser{Username: username, PasswordHash: hash, Role: role}
		if err := conn.WithContext(ctx).Create(&admin).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	return &admin, nil
}
