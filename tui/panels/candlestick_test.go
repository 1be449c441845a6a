package panels

import (
	"testing"
	"time"

	"github.com/zappabad/optionsim/internal/market"
)

func TestCandlestickAggregatesWithinPeriod(t *testing.T) {
	p := NewCandlestickPanel(10 * time.Second)
	base := int64(100 * time.Second)

	p.AddMove(market.PriceMove{Name: "Bitcoin", From: 1_000, To: 1_040}, base)
	p.AddMove(market.PriceMove{Name: "Bitcoin", From: 1_040, To: 960}, base+int64(3*time.Second))
	p.AddMove(market.PriceMove{Name: "Bitcoin", From: 960, To: 990}, base+int64(9*time.Second))

	cs := p.Candles("Bitcoin")
	if len(cs) != 1 {
		t.Fatalf("expected 1 candle, got %d", len(cs))
	}
	c := cs[0]
	if c.Open != 1_000 || c.High != 1_040 || c.Low != 960 || c.Close != 990 {
		t.Errorf("unexpected candle %+v", c)
	}

	p.AddMove(market.PriceMove{Name: "Bitcoin", From: 990, To: 1_010}, base+int64(10*time.Second))
	if cs := p.Candles("Bitcoin"); len(cs) != 2 || cs[1].Open != 990 {
		t.Errorf("expected a second candle opening at 990, got %+v", cs)
	}
	if len(p.Candles("K-Index")) != 0 {
		t.Error("moves leaked into another asset")
	}
}

func TestCandlestickKeepsBoundedHistory(t *testing.T) {
	p := NewCandlestickPanel(time.Second)
	for i := 0; i < 100; i++ {
		p.AddMove(market.PriceMove{Name: "Gold", From: 100, To: 101}, int64(i)*int64(time.Second))
	}
	cs := p.Candles("Gold")
	if len(cs) != p.maxCandles {
		t.Fatalf("expected %d candles, got %d", p.maxCandles, len(cs))
	}
	if cs[len(cs)-1].Time != int64(99*time.Second) {
		t.Errorf("expected newest candle kept, got %d", cs[len(cs)-1].Time)
	}

	p.Reset()
	if len(p.Candles("Gold")) != 0 {
		t.Error("expected history cleared")
	}
}
