// Package gate is a small authorization layer built around policies keyed by
// resource type. A Gate answers "may subject U perform action A on resource R";
// a HybridGate additionally requires the subject's profile to grant the
// "resource:action" permission before any resource policy runs.
//
// The package knows nothing about the application's models: subjects are any
// comparable type (admin ids, client ids) and resources are opaque values that
// policies type-assert.
package gate

import (
	"context"
	"errors"
)

// Action is the verb half of a permission.
type Action string

const (
	ActionView     Action = "view"
	ActionList     Action = "list"
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionShare    Action = "share"
	ActionDownload Action = "download"
)

var (
	ErrUnauthorized    = errors.New("gate: unauthorized")
	ErrNoPolicyDefined = errors.New("gate: no policy defined for resource")
)

// Policy decides whether user may perform action on resource. resource is nil
// for list/create style checks.
type Policy[U any] interface {
	Can(ctx context.Context, user U, action Action, resource any) bool
}

// PolicyFunc adapts a plain function to Policy.
type PolicyFunc[U any] func(ctx context.Context, user U, action Action, resource any) bool

func (f PolicyFunc[U]) Can(ctx context.Context, user U, action Action, resource any) bool {
	return f(ctx, user, action, resource)
}

// Gate is a registry of policies. The zero subject is always denied.
type Gate[U comparable] struct {
	policies map[string]Policy[U]
}

func NewGate[U comparable]() *Gate[U] {
	return &Gate[U]{policies: make(map[string]Policy[U])}
}

// Register sets the policy for resourceType, replacing any previous one.
func (g *Gate[U]) Register(resourceType string, p Policy[U]) {
	g.policies[resourceType] = p
}

// Authorize returns nil when allowed, ErrNoPolicyDefined when nothing is
// registered for resourceType and ErrUnauthorized otherwise.
func (g *Gate[U]) Authorize(ctx context.Context, user U, action Action, resourceType string, resource any) error {
	var zero U
	if user == zero {
		return ErrUnauthorized
	}
	p, ok := g.policies[resourceType]
	if !ok {
		return ErrNoPolicyDefined
	}
	if !p.Can(ctx, user, action, resource) {
		return ErrUnauthorized
	}
	return nil
}

func (g *Gate[U]) Can(ctx context.Context, user U, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, user, action, resourceType, resource) == nil
}
