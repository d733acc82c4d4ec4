// Package storage keeps document files out of the web root. Files are only
// reachable through short-lived signed URLs.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"
)

// ObjectStore is the minimal blob API the document service needs.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Delete removes key; deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
	// SignedURL returns a URL granting read access to key for ttl.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

var (
	ErrInvalidKey       = errors.New("storage: invalid object key")
	ErrInvalidSignature = errors.New("storage: invalid or expired signature")
	ErrNotFound         = errors.New("storage: object not found")
)

// CleanKey normalizes key and rejects absolute or escaping paths.
func CleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidKey
	}
	return clean, nil
}

// SafeName reduces a user-supplied filename to [A-Za-z0-9._-].
func SafeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "fichier"
	}
	if len(out) > 120 {
		out = out[len(out)-120:]
	}
	return out
}
