package services

import (
	"context"
	"strings"
	"testing"

	"github.com/diewo77/agence/internal/errs"
	"github.com/diewo77/agence/internal/models"
	"github.com/stretchr/testify/require"
)

func TestClientService_Signup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.clients.Signup(ctx, NewClient{Email: " New@Client.FR", Password: "longenough", NomEntreprise: " Studio "})
	require.NoError(t, err)
	require.Equal(t, "new@client.fr", c.Email)
	require.Equal(t, "Studio", c.NomEntreprise)

	_, err = f.clients.Signup(ctx, NewClient{Email: "new@client.fr", Password: "longenough", NomEntreprise: "Other"})
	require.ErrorIs(t, err, errs.ErrAlreadyExists)

	_, err = f.clients.Signup(ctx, NewClient{Email: "bad", Password: "short", NomEntreprise: ""})
	ve, ok := errs.AsValidation(err)
	require.True(t, ok)
	require.Equal(t, "invalid_email", ve.Violations["email"])
	require.Equal(t, "too_short", ve.Violations["password"])
	require.Equal(t, "required", ve.Violations["nom_entreprise"])

	for _, create := range []func(context.Context, NewClient) (*models.Client, error){f.clients.Signup, f.clients.Add} {
		_, err = create(ctx, NewClient{Email: "long@client.fr", Password: strings.Repeat("a", 80), NomEntreprise: "Long"})
		ve, ok = errs.AsValidation(err)
		require.True(t, ok, "got %v", err)
		require.Equal(t, "too_long", ve.Violations["password"])
	}
}

func TestClientService_UpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.client(t, "p@x.fr")

	updated, err := f.clients.UpdateProfile(ctx, c.ID, ProfileUpdate{
		NomEntreprise: "Nouvelle SARL",
		Ville:         " Lyon ",
		SiteWeb:       "https://example.fr",
	})
	require.NoError(t, err)
	require.Equal(t, "Nouvelle SARL", updated.NomEntreprise)
	require.Equal(t, "Lyon", updated.Ville)
	require.Equal(t, "p@x.fr", updated.Email)

	_, err = f.clients.UpdateProfile(ctx, c.ID, ProfileUpdate{NomEntreprise: "X", SiteWeb: "javascript:alert(1)"})
	ve, ok := errs.AsValidation(err)
	require.True(t, ok)
	require.Equal(t, "invalid_url", ve.Violations["site_web"])

	_, err = f.clients.UpdateProfile(ctx, 0, ProfileUpdate{NomEntreprise: "X"})
	require.ErrorIs(t, err, errs.ErrNotAuthenticated)
}

func TestClientService_ChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.clients.Signup(ctx, NewClient{Email: "pw@x.fr", Password: "initial-pass", NomEntreprise: "PW"})
	require.NoError(t, err)

	err = f.clients.ChangePassword(ctx, c.ID, "not-it", "another-pass")
	ve, ok := errs.AsValidation(err)
	require.True(t, ok)
	require.Equal(t, "invalid_credentials", ve.Violations["current_password"])

	err = f.clients.ChangePassword(ctx, c.ID, "initial-pass", "short")
	ve, ok = errs.AsValidation(err)
	require.True(t, ok)
	require.Equal(t, "too_short", ve.Violations["new_password"])

	err = f.clients.ChangePassword(ctx, c.ID, "initial-pass", strings.Repeat("b", 73))
	ve, ok = errs.AsValidation(err)
	require.True(t, ok, "got %v", err)
	require.Equal(t, "too_long", ve.Violations["new_password"])

	require.NoError(t, f.clients.ChangePassword(ctx, c.ID, "initial-pass", "another-pass"))
}

func TestClientService_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.client(t, "a@x.fr")
	b := f.client(t, "b@x.fr")
	docA := f.upload(t, a.ID, "contrat")
	docB := f.upload(t, b.ID, "facture")
	require.NoError(t, f.db.Create(&models.DocumentShare{DocumentID: docA.ID, Token: "tok-a"}).Error)
	require.NoError(t, f.db.Create(&models.Collaborator{ClientID: a.ID, Email: "c@x.fr"}).Error)
	require.NoError(t, f.db.Create(&models.Project{ClientID: a.ID, Nom: "Site"}).Error)

	require.NoError(t, f.clients.Delete(ctx, a.ID))

	for _, m := range []any{&models.Document{}, &models.DocumentNotification{}, &models.Collaborator{}, &models.Project{}} {
		var n int64
		require.NoError(t, f.db.Model(m).Where("client_id = ?", a.ID).Count(&n).Error)
		require.Zerof(t, n, "%T rows left", m)
	}
	var shares int64
	f.db.Model(&models.DocumentShare{}).Count(&shares)
	require.Zero(t, shares)
	require.False(t, f.store.has(docA.FichierPath))
	require.True(t, f.store.has(docB.FichierPath))

	_, err := f.docs.Get(ctx, b.ID, docB.ID)
	require.NoError(t, err)

	require.ErrorIs(t, f.clients.Delete(ctx, a.ID), errs.ErrNotFound)
}

func TestClientService_List(t *testing.T) {
	f := newFixture(t)
	f.client(t, "one@acme.fr")
	f.client(t, "two@other.fr")

	all, err := f.clients.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	some, err := f.clients.List(context.Background(), "ACME")
	require.NoError(t, err)
	require.Len(t, some, 2) // both company names start with "ACME "

	one, err := f.clients.List(context.Background(), "other.fr")
	require.NoError(t, err)
	require.Len(t, one, 1)
}
