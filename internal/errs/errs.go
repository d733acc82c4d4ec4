// Package errs holds the sentinel errors shared by services and handlers.
// Messages are user-facing (French) and deliberately generic.
package errs

import (
	"errors"
	"strings"

	"github.com/diewo77/agence/validation"
)

var (
	ErrInvalidCredentials = errors.New("Identifiants incorrects")
	ErrNotAuthenticated   = errors.New("Non authentifié")
	ErrForbidden          = errors.New("Accès refusé")
	// ErrNotFound covers both a missing row and a row owned by someone else.
	ErrNotFound         = errors.New("Document introuvable ou accès non autorisé")
	ErrInvalidShareLink = errors.New("Lien invalide ou expiré")
	ErrAlreadyExists    = errors.New("Cette ressource existe déjà")
	ErrUnavailable      = errors.New("Service temporairement indisponible")
)

// ValidationError carries field violations collected at the boundary.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for f := range e.Violations {
		fields = append(fields, f)
	}
	return "validation failed: " + strings.Join(fields, ",")
}

// Invalid returns a *ValidationError when v is non-empty, nil otherwise.
func Invalid(v validation.Violations) error {
	if v.Empty() {
		return nil
	}
	return &ValidationError{Violations: v}
}

// AsValidation unwraps a *ValidationError from err.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
