// Package controlplane implements the narrow surface an HTTP server uses
// to drive the fault registry, plus a concrete chi-routed HTTP server
// exposing it. The HTTP routing mechanics themselves are a thin shell;
// only the adapter's contract with the registry matters to callers.
package controlplane

import (
	"github.com/Toyota-Connected-India/red-monkey-go/internal/faultstore"
)

// Adapter is the exact surface the HTTP server calls into: create, get,
// list, delete, delete-all, plus a read-only stats snapshot.
type Adapter struct {
	registry *faultstore.Registry
}

// NewAdapter wraps registry for use by the HTTP layer.
func NewAdapter(registry *faultstore.Registry) *Adapter {
	return &Adapter{registry: registry}
}

func (a *Adapter) Create(p faultstore.FaultPlan) (faultstore.FaultPlan, error) {
	return a.registry.Create(p)
}

func (a *Adapter) GetByName(name string) (faultstore.FaultPlan, bool) {
	return a.registry.GetByName(name)
}

func (a *Adapter) List() []faultstore.FaultPlan {
	return a.registry.List()
}

func (a *Adapter) DeleteByName(name string) error {
	return a.registry.DeleteByName(name)
}

func (a *Adapter) DeleteAll() {
	a.registry.DeleteAll()
}

func (a *Adapter) Stats() faultstore.Stats {
	return a.registry.Stats()
}
