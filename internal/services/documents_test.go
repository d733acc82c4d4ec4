package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/agence/gate"
	"github.com/diewo77/agence/internal/errs"
	"github.com/diewo77/agence/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDocumentService_UploadCreatesNotification(t *testing.T) {
	f := newFixture(t)
	c := f.client(t, "a@x.fr")
	doc := f.upload(t, c.ID, "devis-2026")

	require.True(t, strings.HasPrefix(doc.FichierPath, "documents/"))
	require.Contains(t, doc.FichierPath, doc.ID+"-devis-2026.pdf")
	require.True(t, f.store.has(doc.FichierPath))

	var notes []models.DocumentNotification
	require.NoError(t, f.db.Where("document_id = ?", doc.ID).Find(&notes).Error)
	require.Len(t, notes, 1)
	require.Equal(t, c.ID, notes[0].ClientID)
	require.False(t, notes[0].EstLu)
}

func TestDocumentService_UploadRemovesObjectWhenInsertFails(t *testing.T) {
	f := newFixture(t)
	c := f.client(t, "a@x.fr")
	require.NoError(t, f.db.Migrator().DropTable(&models.DocumentNotification{}))

	_, err := f.docs.Upload(context.Background(), UploadInput{
		ClientID: c.ID, Titre: "x", FileName: "x.pdf", Size: 3,
	}, strings.NewReader("abc"))
	require.ErrorIs(t, err, errs.ErrUnavailable)

	var n int64
	f.db.Model(&models.Document{}).Count(&n)
	require.Zero(t, n)
	require.Empty(t, f.store.objects)
}

func TestDocumentService_UploadValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.docs.Upload(context.Background(), UploadInput{ClientID: 42, Titre: "x", Type: "nope", FileName: "a", Size: 1}, strings.NewReader("a"))
	ve, ok := errs.AsValidation(err)
	require.True(t, ok)
	require.Equal(t, "invalid_choice", ve.Violations["type"])

	_, err = f.docs.Upload(context.Background(), UploadInput{ClientID: 42, Titre: "x", FileName: "a", Size: 1}, strings.NewReader("a"))
	ve, ok = errs.AsValidation(err)
	require.True(t, ok)
	require.Equal(t, "unknown_client", ve.Violations["client_id"])
}

func TestDocumentService_ForeignDocumentLooksMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.client(t, "a@x.fr")
	b := f.client(t, "b@x.fr")
	doc := f.upload(t, a.ID, "secret")

	got, err := f.docs.Get(ctx, a.ID, doc.ID)
	require.NoError(t, err)
	require.Equal(t, doc.ID, got.ID)

	_, foreignErr := f.docs.Get(ctx, b.ID, doc.ID)
	_, missingErr := f.docs.Get(ctx, b.ID, uuid.NewString())
	_, garbageErr := f.docs.Get(ctx, b.ID, "../../etc/passwd")
	require.ErrorIs(t, foreignErr, errs.ErrNotFound)
	require.Equal(t, missingErr, foreignErr)
	require.Equal(t, garbageErr, foreignErr)
	require.Equal(t, "Document introuvable ou accès non autorisé", foreignErr.Error())

	_, err = f.docs.Get(ctx, 0, doc.ID)
	require.ErrorIs(t, err, errs.ErrNotAuthenticated)

	_, err = f.docs.DownloadURL(ctx, b.ID, doc.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
	u, err := f.docs.DownloadURL(ctx, a.ID, doc.ID)
	require.NoError(t, err)
	require.Contains(t, u, "ttl=1m0s")
}

func TestDocumentService_ListForClient(t *testing.T) {
	f := newFixture(t)
	a := f.client(t, "a@x.fr")
	b := f.client(t, "b@x.fr")
	f.upload(t, a.ID, "one")
	f.upload(t, a.ID, "two")
	f.upload(t, b.ID, "three")

	docs, err := f.docs.ListForClient(context.Background(), a.ID)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	for _, d := range docs {
		require.Equal(t, a.ID, d.ClientID)
	}

	all, err := f.docs.ListAll(context.Background(), DocumentFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestDocumentService_UpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.upload(t, f.client(t, "a@x.fr").ID, "s")

	require.NoError(t, f.docs.UpdateStatus(ctx, doc.ID, models.DocumentSigne))
	var got models.Document
	require.NoError(t, f.db.Where("id = ?", doc.ID).First(&got).Error)
	require.Equal(t, models.DocumentSigne, got.Statut)

	_, ok := errs.AsValidation(f.docs.UpdateStatus(ctx, doc.ID, "perdu"))
	require.True(t, ok)
	require.ErrorIs(t, f.docs.UpdateStatus(ctx, uuid.NewString(), models.DocumentArchive), errs.ErrNotFound)
}

func TestDocumentService_DeleteIsTransactional(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.upload(t, f.client(t, "a@x.fr").ID, "d")
	require.NoError(t, f.db.Create(&models.DocumentShare{DocumentID: doc.ID, Token: "tok"}).Error)

	require.NoError(t, f.db.Migrator().DropTable(&models.DocumentShare{}))
	require.ErrorIs(t, f.docs.Delete(ctx, doc.ID), errs.ErrUnavailable)

	var notes int64
	f.db.Model(&models.DocumentNotification{}).Where("document_id = ?", doc.ID).Count(&notes)
	require.EqualValues(t, 1, notes, "notification delete must roll back")
	require.True(t, f.store.has(doc.FichierPath))

	require.NoError(t, f.db.AutoMigrate(&models.DocumentShare{}))
	require.NoError(t, f.docs.Delete(ctx, doc.ID))
	require.False(t, f.store.has(doc.FichierPath))
	require.ErrorIs(t, f.docs.Delete(ctx, doc.ID), errs.ErrNotFound)
}

func TestDocumentService_DeleteReportsOrphan(t *testing.T) {
	f := newFixture(t)
	doc := f.upload(t, f.client(t, "a@x.fr").ID, "d")
	f.store.deleteErr = errBoom
	orphans := 0
	f.docs.OnOrphan(func() { orphans++ })

	require.NoError(t, f.docs.Delete(context.Background(), doc.ID))
	require.Equal(t, 1, orphans)
	require.Equal(t, 3, f.store.deleteCalls)

	var n int64
	f.db.Model(&models.Document{}).Count(&n)
	require.Zero(t, n)
}

func TestObjectRemover_OutlivesCanceledRequest(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.Put(context.Background(), "documents/1/a.pdf", strings.NewReader("x"), 1, ""))
	store.deleteFails = 1
	r := newObjectRemover(store, zap.NewNop())
	r.backoff = time.Millisecond
	orphans := 0
	r.onOrphan = func() { orphans++ }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.remove(ctx, "documents/1/a.pdf")

	require.Zero(t, orphans)
	require.Equal(t, 2, store.deleteCalls)
	require.False(t, store.has("documents/1/a.pdf"))
}

func TestDocumentService_DownloadNeedsDownloadPermission(t *testing.T) {
	f := newFixture(t)
	c := f.client(t, "a@x.fr")
	doc := f.upload(t, c.ID, "plan")

	viewOnly := gate.NewGate[uint]()
	viewOnly.Register("document", gate.PolicyFunc[uint](func(_ context.Context, _ uint, action gate.Action, _ any) bool {
		return action != gate.ActionDownload
	}))
	docs := NewDocumentService(f.db, f.store, viewOnly, zap.NewNop())

	_, err := docs.Get(context.Background(), c.ID, doc.ID)
	require.NoError(t, err)
	_, err = docs.DownloadURL(context.Background(), c.ID, doc.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)

	u, err := f.docs.DownloadURL(context.Background(), c.ID, doc.ID)
	require.NoError(t, err)
	require.Contains(t, u, doc.FichierPath)
}

func TestObjectRemover_BudgetBoundsRetries(t *testing.T) {
	store := newMemStore()
	store.deleteErr = errBoom
	r := newObjectRemover(store, zap.NewNop())
	r.backoff = time.Hour
	r.budget = 10 * time.Millisecond
	orphans := 0
	r.onOrphan = func() { orphans++ }

	start := time.Now()
	r.remove(context.Background(), "documents/1/a.pdf", "documents/1/b.pdf")
	require.Less(t, time.Since(start), time.Minute)
	require.Equal(t, 2, orphans)
}
