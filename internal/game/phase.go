package game

// Phase is the state of the game's phase machine.
type Phase uint8

const (
	PhaseStart Phase = iota
	PhaseCountdown
	PhaseActive
	PhaseResult
)

// Phases lists every phase in order.
func Phases() []Phase {
	return []Phase{PhaseStart, PhaseCountdown, PhaseActive, PhaseResult}
}

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseCountdown:
		return "countdown"
	case PhaseActive:
		return "active"
	case PhaseResult:
		return "result"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func phaseNames() []string {
	out := make([]string, 0, 4)
	for _, p := range Phases() {
		out = append(out, p.String())
	}
	return out
}
