package portfolio

import "github.com/google/uuid"

// ActivityKind labels a cash movement on the ledger.
type ActivityKind uint8

const (
	ActivityBuy ActivityKind = iota + 1
	ActivityExercise
	ActivityDecline
)

func (k ActivityKind) String() string {
	switch k {
	case ActivityBuy:
		return "buy"
	case ActivityExercise:
		return "exercise"
	case ActivityDecline:
		return "decline"
	default:
		return "unknown"
	}
}

// Activity is one ledger entry. Amount is the signed change to capital:
// negative for a purchase, the gross payout for an exercise, zero for a
// declined quote.
type Activity struct {
	Seq       uint64
	Kind      ActivityKind
	HoldingID uuid.UUID
	Index     int
	Asset     string
	Quantity  int64
	Amount    int64
	Capital   int64
}

// DefaultTapeSize bounds the activity history a ledger keeps.
const DefaultTapeSize = 256

// ActivityTape is a ring buffer of ledger activity. It is not safe for
// concurrent use; the ledger guards it with its own mutex.
type ActivityTape struct {
	buf   []Activity
	start int
	count int
	seq   uint64
}

// NewActivityTape creates a tape holding at most capacity entries.
func NewActivityTape(capacity int) *ActivityTape {
	if capacity <= 0 {
		capacity = 1
	}
	return &ActivityTape{buf: make([]Activity, capacity)}
}

// Append stamps a with the next sequence number and stores it, evicting the
// oldest entry when full.
func (t *ActivityTape) Append(a Activity) Activity {
	t.seq++
	a.Seq = t.seq
	size := len(t.buf)
	if t.count < size {
		t.buf[(t.start+t.count)%size] = a
		t.count++
		return a
	}
	t.buf[t.start] = a
	t.start = (t.start + 1) % size
	return a
}

// Last returns up to n entries, oldest first.
func (t *ActivityTape) Last(n int) []Activity {
	if n <= 0 || t.count == 0 {
		return nil
	}
	n = min(n, t.count)
	size := len(t.buf)
	out := make([]Activity, n)
	first := t.start + t.count - n
	for i := range out {
		out[i] = t.buf[(first+i)%size]
	}
	return out
}

// Count returns the number of stored entries.
func (t *ActivityTape) Count() int {
	return t.count
}

// Clear empties the tape and restarts the sequence.
func (t *ActivityTape) Clear() {
	clear(t.buf)
	t.start, t.count, t.seq = 0, 0, 0
}
