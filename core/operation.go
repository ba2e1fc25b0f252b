package core

import "time"

// Operation is the unit submitted for admission. All sections are optional;
// absent sections skip the corresponding validator. The payload is opaque
// to the engine and is considered authorized only once the operation has
// been admitted.
type Operation struct {
	// Entity is the issuing agent. Required.
	Entity EntityID `json:"entity"`

	// Event, when set, asks for a node to be appended to the event ledger
	// as part of the commit.
	Event *EventDescriptor `json:"event,omitempty"`

	// Resource, when set, asks for a budget reservation as part of the
	// commit.
	Resource *ResourceRequest `json:"resource,omitempty"`

	// EnergyTransfer, when set, moves energy from Entity to another entity
	// under conservation rules.
	EnergyTransfer *EnergyTransfer `json:"energy_transfer,omitempty"`

	// RequiredCapability names the capability the issuing entity must hold.
	// Empty means no capability is required and the security check passes
	// automatically.
	RequiredCapability string `json:"required_capability,omitempty"`

	// Payload is handed to the external executor untouched after admission.
	Payload any `json:"payload,omitempty"`
}

// EnergyTransfer moves a conserved quantity of energy from the operation's
// issuing entity to the destination entity.
type EnergyTransfer struct {
	To     EntityID `json:"to"`
	Amount float64  `json:"amount"`
}

// AdmissionReceipt is returned for every admitted operation. It records
// which ledger entries the commit produced so callers can correlate or
// compensate later (e.g. release the allocation).
type AdmissionReceipt struct {
	ID            string        `json:"id"`
	Entity        EntityID      `json:"entity"`
	EventID       string        `json:"event_id,omitempty"`
	AllocationRef AllocationRef `json:"allocation_ref,omitempty"`
	EnergyTxID    string        `json:"energy_tx_id,omitempty"`
	AdmittedAt    time.Time     `json:"admitted_at"`
}
