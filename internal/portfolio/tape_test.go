package portfolio

import "testing"

func TestActivityTapeWraps(t *testing.T) {
	tape := NewActivityTape(3)
	for i := 1; i <= 5; i++ {
		tape.Append(Activity{Kind: ActivityBuy, Quantity: int64(i)})
	}
	if tape.Count() != 3 {
		t.Fatalf("expected 3 entries, got %d", tape.Count())
	}

	got := tape.Last(10)
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	for i, a := range got {
		if a.Quantity != int64(i+3) || a.Seq != uint64(i+3) {
			t.Errorf("entry %d: expected quantity and seq %d, got %d/%d", i, i+3, a.Quantity, a.Seq)
		}
	}
	if last := tape.Last(1); len(last) != 1 || last[0].Quantity != 5 {
		t.Errorf("expected newest entry last, got %+v", last)
	}
	if tape.Last(0) != nil {
		t.Error("expected nil for n=0")
	}

	tape.Clear()
	if tape.Count() != 0 || tape.Last(5) != nil {
		t.Error("expected empty tape after clear")
	}
	if a := tape.Append(Activity{}); a.Seq != 1 {
		t.Errorf("expected sequence to restart, got %d", a.Seq)
	}
}

func TestLedgerRecordsActivity(t *testing.T) {
	l := NewLedger(DefaultCapital)
	if _, err := l.Buy("Butcher Co", butcherQuote, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := l.Buy("Butcher Co", butcherQuote, 1_000_000); err == nil {
		t.Fatal("expected insufficient funds")
	}

	q, err := l.ProposeExercise(0, 60_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := l.CommitExercise(q, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := l.CommitExercise(q, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := l.Activity(10)
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	want := []struct {
		kind    ActivityKind
		amount  int64
		capital int64
	}{
		{ActivityBuy, -2_400, 997_600},
		{ActivityDecline, 0, 997_600},
		{ActivityExercise, 10_000, 1_007_600},
	}
	for i, w := range want {
		if got[i].Kind != w.kind || got[i].Amount != w.amount || got[i].Capital != w.capital {
			t.Errorf("entry %d: expected %s %d -> %d, got %s %d -> %d",
				i, w.kind, w.amount, w.capital, got[i].Kind, got[i].Amount, got[i].Capital)
		}
	}

	l.Reset()
	if len(l.Activity(10)) != 0 {
		t.Error("expected reset to clear activity")
	}
}
