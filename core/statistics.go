package core

// Statistics is a read-only snapshot of engine state for observability
// tooling. Producing it never mutates any ledger.
type Statistics struct {
	// EventCount is the number of committed events in the event ledger.
	EventCount int `json:"event_count"`

	// Usage is the live allocation sum per entity per resource kind.
	Usage map[EntityID]map[ResourceKind]float64 `json:"usage"`

	// LiveAllocations is the number of unreleased allocations.
	LiveAllocations int `json:"live_allocations"`

	// Violations counts rejected operations by violation class.
	Violations map[ViolationClass]uint64 `json:"violations"`

	// Energy is the current energy conservation state.
	Energy EnergyState `json:"energy"`
}

// EnergyState describes the energy ledger at a point in time. The
// conservation invariant is AllocatedEnergy <= TotalEnergy, with
// FreeEnergy = TotalEnergy - AllocatedEnergy.
type EnergyState struct {
	TotalEnergy     float64            `json:"total_energy"`
	AllocatedEnergy float64            `json:"allocated_energy"`
	FreeEnergy      float64            `json:"free_energy"`
	ActiveEntities  int                `json:"active_entities"`
	Distribution    EnergyDistribution `json:"distribution"`
}

// EnergyDistribution summarizes how allocated energy is spread across
// active entities.
type EnergyDistribution struct {
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}
