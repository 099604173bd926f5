package domain

import "time"

// MoveAction identifies what a MoveInstruction does to a solution.
type MoveAction string

const (
	MoveActionMove   MoveAction = "MOVE"
	MoveActionInsert MoveAction = "INSERT"
	MoveActionRemove MoveAction = "REMOVE"
)

// MoveInstruction is one user-directed edit to an existing solution: move an
// allocation to a different field/date/area, insert a new one, or remove one
// outright. Optional fields default to the touched allocation's current
// value when not set (MOVE only touches what it specifies).
type MoveInstruction struct {
	AllocationID string
	Action       MoveAction

	ToFieldID    string
	HasToFieldID bool

	ToCropID    string
	HasToCropID bool

	ToStartDate    time.Time
	HasToStartDate bool

	ToAreaUsed    float64
	HasToAreaUsed bool
}
