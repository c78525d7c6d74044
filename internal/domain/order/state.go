package order

// Transition describes how a reconciliation write related to the status it found.
type Transition string

const (
	// TransitionApplied moved a pending order into a terminal state.
	TransitionApplied Transition = "applied"
	// TransitionReplayed rewrote the terminal state the order already had.
	TransitionReplayed Transition = "replayed"
	// TransitionIgnored left a terminal order alone because the event asked for the other terminal state.
	TransitionIgnored Transition = "ignored"
)

// Classify names the transition from prev to next. next must be terminal.
func Classify(prev, next Status) (Transition, error) {
	if !next.Terminal() || !prev.Valid() {
		return "", ErrInvalidStatus
	}
	switch {
	case prev == StatusPending:
		return TransitionApplied, nil
	case prev == next:
		return TransitionReplayed, nil
	default:
		return TransitionIgnored, nil
	}
}

// Settles reports whether an order found in prev accepts next. Terminal states are final.
func Settles(prev, next Status) bool {
	return prev == StatusPending || prev == next
}

// Changed reports whether the write altered the order's status.
func (t Transition) Changed() bool {
	return t == TransitionApplied
}
