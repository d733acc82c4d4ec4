package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/diewo77/agence/gate"
	"github.com/diewo77/agence/internal/db"
	"github.com/diewo77/agence/internal/models"
	"github.com/diewo77/agence/internal/storage"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(conn))
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

// ownerGate grants a client access to the resources carrying its id.
func ownerGate() *gate.Gate[uint] {
	g := gate.NewGate[uint]()
	owner := gate.PolicyFunc[uint](func(_ context.Context, clientID uint, _ gate.Action, r any) bool {
		o, ok := r.(interface{ GetClientID() uint })
		return ok && o.GetClientID() == clientID
	})
	for _, rt := range []string{"document", "notification", "collaborator", "project"} {
		g.Register(rt, owner)
	}
	return g
}

type memStore struct {
	mu          sync.Mutex
	objects     map[string][]byte
	deleteErr   error
	deleteFails int
	deleteCalls int
}

var _ storage.ObjectStore = (*memStore)(nil)

func newMemStore() *memStore { return &memStore{objects: map[string][]byte{}} }

func (m *memStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = buf.Bytes()
	return nil
}

func (m *memStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if m.deleteFails > 0 {
		m.deleteFails--
		return errBoom
	}
	delete(m.objects, key)
	return nil
}

func (m *memStore) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	return "https://files.test/" + key + "?ttl=" + ttl.String(), nil
}

func (m *memStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

type fixture struct {
	db      *gorm.DB
	store   *memStore
	gate    *gate.Gate[uint]
	clients *ClientService
	docs    *DocumentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := openTestDB(t)
	store := newMemStore()
	g := ownerGate()
	log := zap.NewNop()
	f := &fixture{
		db:      conn,
		store:   store,
		gate:    g,
		clients: NewClientService(conn, store, log),
		docs:    NewDocumentService(conn, store, g, log),
	}
	f.docs.remover.backoff = 0
	f.clients.remover.backoff = 0
	return f
}

// client inserts a client directly, skipping bcrypt.
func (f *fixture) client(t *testing.T, email string) *models.Client {
	t.Helper()
	c := &models.Client{Email: email, PasswordHash: "x", NomEntreprise: "ACME " + email}
	require.NoError(t, f.db.Create(c).Error)
	return c
}

func (f *fixture) upload(t *testing.T, clientID uint, titre string) *models.Document {
	t.Helper()
	content := "%PDF-1.4 " + titre
	doc, err := f.docs.Upload(context.Background(), UploadInput{
		ClientID: clientID,
		Titre:    titre,
		Type:     "devis",
		FileName: titre + ".pdf",
		Size:     int64(len(content)),
		Mime:     "application/pdf",
	}, strings.NewReader(content))
	require.NoError(t, err)
	return doc
}

var errBoom = errors.New("boom")
