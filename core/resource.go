package core

import (
	"fmt"
	"time"
)

// ResourceKind enumerates the resource dimensions tracked by the resource
// ledger. Budgets and usage are accounted per entity per kind.
type ResourceKind string

const (
	// ResourceMemory is working memory, in megabytes.
	ResourceMemory ResourceKind = "memory"
	// ResourceCPU is compute share, in percent.
	ResourceCPU ResourceKind = "cpu"
	// ResourceNetwork is network bandwidth, in KB/s.
	ResourceNetwork ResourceKind = "network"
)

// Kinds returns all known resource kinds.
func Kinds() []ResourceKind {
	return []ResourceKind{ResourceMemory, ResourceCPU, ResourceNetwork}
}

// ParseResourceKind converts a raw string (typically from a configuration
// document) into a ResourceKind, rejecting unknown values.
func ParseResourceKind(s string) (ResourceKind, error) {
	switch ResourceKind(s) {
	case ResourceMemory, ResourceCPU, ResourceNetwork:
		return ResourceKind(s), nil
	default:
		return "", fmt.Errorf("unknown resource kind %q", s)
	}
}

// ResourceRequest is the resource portion of an operation: a quantity the
// issuing entity wants reserved against its budget. A zero amount is a
// no-op that always admits without creating an allocation.
type ResourceRequest struct {
	Kind   ResourceKind `json:"kind"`
	Amount float64      `json:"amount"`
}

// AllocationRef is an opaque handle to a live allocation, used to release
// it later. References are UUID strings minted at commit time.
type AllocationRef string

// Allocation is a committed resource reservation. It stays live (counted
// against the entity's budget) until released via the administrative API
// or entity teardown.
type Allocation struct {
	Ref         AllocationRef `json:"ref"`
	Entity      EntityID      `json:"entity"`
	Kind        ResourceKind  `json:"kind"`
	Amount      float64       `json:"amount"`
	AllocatedAt time.Time     `json:"allocated_at"`
}
