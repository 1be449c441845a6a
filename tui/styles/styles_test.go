package styles

import "testing"

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1_000, "1,000"},
		{997_600, "997,600"},
		{1_000_000, "1,000,000"},
		{-2_400, "-2,400"},
		{-125, "-125"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.in); got != tt.want {
			t.Errorf("FormatMoney(%d): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
