package policy

import (
	"context"

	"github.com/diewo77/agence/gate"
)

// Ownable is implemented by models that belong to one client.
type Ownable interface {
	GetClientID() uint
}

// OwnershipPolicy lets a client act only on resources carrying its id.
type OwnershipPolicy struct{}

func NewOwnershipPolicy() *OwnershipPolicy {
	return &OwnershipPolicy{}
}

// Can allows list/create checks (nil resource) and otherwise compares owners.
// Resources that are not Ownable are denied.
func (p *OwnershipPolicy) Can(_ context.Context, clientID uint, _ gate.Action, resource any) bool {
	if resource == nil {
		return true
	}
	ownable, ok := resource.(Ownable)
	if !ok {
		return false
	}
	return ownable.GetClientID() == clientID
}

// ClientResources are the resource types an espace-client user can own.
var ClientResources = []string{"document", "notification", "collaborator", "project"}

// NewClientGate returns the gate the espace-client services check ownership with.
func NewClientGate() *gate.Gate[uint] {
	g := gate.NewGate[uint]()
	owner := NewOwnershipPolicy()
	for _, rt := range ClientResources {
		g.Register(rt, owner)
	}
	return g
}
