package core

import "github.com/google/uuid"

// EntityID uniquely identifies an agent or actor in the runtime. It is
// opaque, comparable and usable as a map key. Entity identifiers are
// normally declared in the configuration document; NewEntityID exists for
// dynamically spawned entities and tests.
type EntityID string

// NewEntityID generates a new UUID-backed entity identifier.
func NewEntityID() EntityID { return EntityID(uuid.NewString()) }

// String returns the raw identifier.
func (e EntityID) String() string { return string(e) }
