package game

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty controls how often prices move and news breaks.
type Difficulty uint8

const (
	DifficultyHigh Difficulty = iota + 1
	DifficultyMedium
	DifficultyLow
)

// Difficulties lists every difficulty, hardest first.
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyHigh, DifficultyMedium, DifficultyLow}
}

func (d Difficulty) String() string {
	switch d {
	case DifficultyHigh:
		return "high"
	case DifficultyMedium:
		return "medium"
	case DifficultyLow:
		return "low"
	default:
		return "unknown"
	}
}

// Valid reports whether d is one of the defined difficulties.
func (d Difficulty) Valid() bool {
	return d >= DifficultyHigh && d <= DifficultyLow
}

// PriceInterval is the period of routine price ticks.
func (d Difficulty) PriceInterval() time.Duration {
	switch d {
	case DifficultyHigh:
		return time.Second
	case DifficultyLow:
		return 5 * time.Second
	default:
		return 3 * time.Second
	}
}

// EventInterval is the period of news event ticks.
func (d Difficulty) EventInterval() time.Duration {
	switch d {
	case DifficultyHigh:
		return 3 * time.Second
	case DifficultyLow:
		return 10 * time.Second
	default:
		return 5 * time.Second
	}
}

// ParseDifficulty accepts a difficulty name or its first letter, in any case.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "h":
		return DifficultyHigh, nil
	case "medium", "m", "":
		return DifficultyMedium, nil
	case "low", "l":
		return DifficultyLow, nil
	}
	return 0, fmt.Errorf("unknown difficulty %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (d Difficulty) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Difficulty) UnmarshalText(b []byte) error {
	v, err := ParseDifficulty(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
