// Package security implements the capability registry gating operations on
// named permissions. The registry is read-mostly: concurrent lookups never
// block each other, grant/revoke take a brief exclusive section, and a
// lookup racing an administrative mutation observes either the pre- or
// post-state but never a torn one.
package security

import (
	"sort"
	"sync"

	"github.com/hupe1980/agentphysics/core"
)

// Registry holds the granted capability set per entity.
type Registry struct {
	mu     sync.RWMutex
	grants map[core.EntityID]map[string]struct{}
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{grants: make(map[core.EntityID]map[string]struct{})}
}

// Grant adds a capability to an entity. Granting an already-held
// capability is a success with no state change.
func (r *Registry) Grant(entity core.EntityID, capability string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.grants[entity]
	if !ok {
		set = make(map[string]struct{})
		r.grants[entity] = set
	}
	set[capability] = struct{}{}
}

// Revoke removes a capability from an entity. Revoking an absent
// capability is a success with no state change.
func (r *Registry) Revoke(entity core.EntityID, capability string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if set, ok := r.grants[entity]; ok {
		delete(set, capability)
		if len(set) == 0 {
			delete(r.grants, entity)
		}
	}
}

// Has reports whether the entity holds the capability.
func (r *Registry) Has(entity core.EntityID, capability string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.grants[entity][capability]
	return ok
}

// Check validates an operation's capability requirement. An empty
// requirement is an automatic pass; a missing grant fails with
// CapabilityDenied. The lookup is a pure read.
func (r *Registry) Check(entity core.EntityID, capability string) error {
	if capability == "" {
		return nil
	}
	if !r.Has(entity, capability) {
		return &core.CapabilityDeniedError{Entity: entity, Capability: capability}
	}
	return nil
}

// Capabilities returns the sorted capability names held by an entity.
func (r *Registry) Capabilities(entity core.EntityID) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.grants[entity]
	caps := make([]string, 0, len(set))
	for c := range set {
		caps = append(caps, c)
	}
	sort.Strings(caps)
	return caps
}

// RemoveEntity drops every grant for an entity (teardown).
func (r *Registry) RemoveEntity(entity core.EntityID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.grants, entity)
}
