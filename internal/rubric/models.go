package rubric

type Criterion struct {
	ID          int64   `json:"id"`
	EventID     int64   `json:"event_id"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"` // percent, (0,100]
}

// Warning codes attached to force-mutations.
const WarnExistingScoresMayBeInvalidated = "ExistingScoresMayBeInvalidated"
