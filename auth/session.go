// Package auth issues and validates the signed session cookies of the two
// portals (admin back-office and espace-client) and guards their routes.
package auth

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AdminCookie  = "admin_session"
	ClientCookie = "client_session"

	AdminTTL  = 24 * time.Hour
	ClientTTL = 7 * 24 * time.Hour

	issuer         = "agence"
	audienceAdmin  = "admin"
	audienceClient = "client"
)

// AdminClaims is the payload of an admin_session token.
type AdminClaims struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// ClientClaims is the payload of a client_session token.
type ClientClaims struct {
	ID         uint   `json:"id"`
	Email      string `json:"email"`
	Entreprise string `json:"entreprise"`
	jwt.RegisteredClaims
}

// Expires returns the expiry carried by the token.
func (c *AdminClaims) Expires() time.Time { return expiresOf(c.RegisteredClaims) }

func (c *ClientClaims) Expires() time.Time { return expiresOf(c.RegisteredClaims) }

func expiresOf(rc jwt.RegisteredClaims) time.Time {
	if rc.ExpiresAt == nil {
		return time.Time{}
	}
	return rc.ExpiresAt.Time
}

// Manager signs and verifies session cookies. Issuance and validation share
// the same clock.
type Manager struct {
	secret []byte
	secure bool
	now    func() time.Time
}

func NewManager(secret string, secure bool) *Manager {
	return &Manager{secret: []byte(secret), secure: secure, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the time source.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// IssueAdmin sets admin_session for c and returns the cookie expiry.
func (m *Manager) IssueAdmin(w http.ResponseWriter, c AdminClaims) (time.Time, error) {
	if c.ID == 0 {
		return time.Time{}, errors.New("auth: admin id required")
	}
	exp := m.now().Add(AdminTTL)
	c.RegisteredClaims = m.registered(c.ID, audienceAdmin, exp)
	return exp, m.setCookie(w, AdminCookie, &c, exp)
}

// IssueClient sets client_session for c and returns the cookie expiry.
func (m *Manager) IssueClient(w http.ResponseWriter, c ClientClaims) (time.Time, error) {
	if c.ID == 0 {
		return time.Time{}, errors.New("auth: client id required")
	}
	exp := m.now().Add(ClientTTL)
	c.RegisteredClaims = m.registered(c.ID, audienceClient, exp)
	return exp, m.setCookie(w, ClientCookie, &c, exp)
}

// ParseAdmin returns the admin claims of r. Any failure (missing cookie,
// bad signature, wrong audience, expired) yields false.
func (m *Manager) ParseAdmin(r *http.Request) (*AdminClaims, bool) {
	var c AdminClaims
	if !m.parse(r, AdminCookie, audienceAdmin, &c) || c.ID == 0 {
		return nil, false
	}
	return &c, true
}

func (m *Manager) ParseClient(r *http.Request) (*ClientClaims, bool) {
	var c ClientClaims
	if !m.parse(r, ClientCookie, audienceClient, &c) || c.ID == 0 {
		return nil, false
	}
	return &c, true
}

func (m *Manager) ClearAdmin(w http.ResponseWriter)  { m.clear(w, AdminCookie) }
func (m *Manager) ClearClient(w http.ResponseWriter) { m.clear(w, ClientCookie) }

func (m *Manager) registered(id uint, aud string, exp time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   strconv.FormatUint(uint64(id), 10),
		Audience:  jwt.ClaimStrings{aud},
		IssuedAt:  jwt.NewNumericDate(m.now()),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
}

func (m *Manager) setCookie(w http.ResponseWriter, name string, claims jwt.Claims, exp time.Time) error {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    signed,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *Manager) parse(r *http.Request, name, aud string, claims jwt.Claims) bool {
	ck, err := r.Cookie(name)
	if err != nil || ck.Value == "" {
		return false
	}
	tok, err := jwt.ParseWithClaims(ck.Value, claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(aud),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	return err == nil && tok.Valid
}

func (m *Manager) clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
