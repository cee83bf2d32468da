package dseframe

// CheckState is the tri-state of the explorer's "check all" box.
type CheckState string

const (
	Unchecked        CheckState = "UNCHECKED"         // No group enabled
	Checked          CheckState = "CHECKED"           // Every group enabled
	PartiallyChecked CheckState = "PARTIALLY_CHECKED" // Some groups enabled
)

// DeriveCheckState computes the check-all state from per-group enabled flags.
//
// It is a pure read over the flags, never stored, so it cannot drift from them.
// An empty session reads as Unchecked.
func DeriveCheckState(enabled []bool) CheckState {
	on := 0
	for _, e := range enabled {
		if e {
			on++
		}
	}

	switch {
	case on == 0:
		return Unchecked
	case on == len(enabled):
		return Checked
	default:
		return PartiallyChecked
	}
}
