package pyramid

// Status tracks pyramid generation progress for one artwork.
type Status string

const (
	// StatusNone means no pyramid exists and none is in progress.
	StatusNone Status = "none"
	// StatusPending means generation has been requested but no batch has run.
	StatusPending Status = "pending"
	// StatusGenerating means tile batches are being processed.
	StatusGenerating Status = "generating"
	// StatusComplete means every batch finished; the pyramid is servable.
	StatusComplete Status = "complete"
	// StatusFailed means generation hit a terminal error.
	StatusFailed Status = "failed"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusNone, StatusPending, StatusGenerating, StatusComplete, StatusFailed:
		return true
	}
	return false
}

// Processing reports whether the pyramid is still being built. The admin UI
// shows these states as "processing".
func (s Status) Processing() bool {
	return s == StatusPending || s == StatusGenerating
}

// CanTransition reports whether moving from s to next is a legal status
// transition. Cleanup may force any state back to none; everything else
// follows none/failed -> pending -> generating -> {complete, failed}.
func (s Status) CanTransition(next Status) bool {
	if next == StatusNone {
		return true
	}
	switch next {
	case StatusPending:
		return s == StatusNone || s == StatusFailed
	case StatusGenerating:
		return s == StatusPending
	case StatusComplete, StatusFailed:
		return s == StatusGenerating
	}
	return false
}
