package model

// Status is the lifecycle state of an order, persisted as a string.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAccepted  Status = "ACCEPTED"
	StatusPickedUp  Status = "PICKED_UP"
	StatusInTransit Status = "IN_TRANSIT"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// successors holds the directed transition graph. The happy path is linear,
// CANCELLED is reachable only from PENDING and ACCEPTED. Terminal states have
// no successors.
var successors = map[Status][]Status{
	StatusPending:   {StatusAccepted, StatusCancelled},
	StatusAccepted:  {StatusPickedUp, StatusCancelled},
	StatusPickedUp:  {StatusInTransit},
	StatusInTransit: {StatusDelivered},
	StatusDelivered: {},
	StatusCancelled: {},
}

func (s Status) IsValid() bool {
	_, ok := successors[s]
	return ok
}

func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// IsCancellable reports whether a customer may still cancel an order in
// this state.
func (s Status) IsCancellable() bool {
	return s == StatusPending || s == StatusAccepted
}

// CanTransition reports whether from -> to is an edge of the lifecycle graph.
func CanTransition(from, to Status) bool {
	for _, s := range successors[from] {
		if s == to {
			return true
		}
	}
	return false
}

// NextDeliveryStatus returns the single legal driver-driven successor of the
// given state. Cancellation is not a driver transition and is never returned.
func NextDeliveryStatus(from Status) (Status, bool) {
	switch from {
	case StatusAccepted:
		return StatusPickedUp, true
	case StatusPickedUp:
		return StatusInTransit, true
	case StatusInTransit:
		return StatusDelivered, true
	default:
		return "", false
	}
}

// Outcome is the tri-state result of a store transition. Infrastructure
// failures travel separately as errors.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeApplied
	OutcomeInvalidState
	OutcomeUnauthorized
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "APPLIED"
	case OutcomeInvalidState:
		return "REJECTED_INVALID_STATE"
	case OutcomeUnauthorized:
		return "REJECTED_UNAUTHORIZED"
	default:
		return "NONE"
	}
}
