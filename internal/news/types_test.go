package news

import "testing"

type constRand float64

func (r constRand) Float64() float64 { return float64(r) }

func TestImpactResolve(t *testing.T) {
	fixed := FixedImpact(-0.3)
	if fixed.Randomized() || fixed.Resolve(constRand(0.9)) != -0.3 {
		t.Errorf("fixed impact should ignore randomness")
	}

	either := EitherImpact(0.2, -0.2)
	if !either.Randomized() {
		t.Fatal("expected randomized impact")
	}
	if got := either.Resolve(constRand(0.51)); got != 0.2 {
		t.Errorf("expected 0.2, got %v", got)
	}
	if got := either.Resolve(constRand(0.5)); got != -0.2 {
		t.Errorf("expected -0.2, got %v", got)
	}
}

func TestPolarityOf(t *testing.T) {
	if PolarityOf(0.01) != PolarityPositive {
		t.Error("expected positive")
	}
	if PolarityOf(0) != PolarityNegative || PolarityOf(-0.1) != PolarityNegative {
		t.Error("expected zero and negative to be negative")
	}
}

func TestDefaultTemplatesCoverEveryCategory(t *testing.T) {
	seen := map[string]int{}
	for _, tpl := range DefaultTemplates() {
		seen[string(tpl.Category)]++
	}
	if len(DefaultTemplates()) != 12 {
		t.Fatalf("expected 12 templates, got %d", len(DefaultTemplates()))
	}
	for cat, n := range seen {
		if n != 2 {
			t.Errorf("expected 2 templates for %s, got %d", cat, n)
		}
	}
}
