package news

import "github.com/zappabad/optionsim/internal/market"

// DefaultTemplates returns the event catalog.
func DefaultTemplates() []Template {
	return []Template{
		{market.CategoryEconomy, "GDP jumps! Investor expectations soar", FixedImpact(0.3), -0.03},
		{market.CategoryEconomy, "Fears of a global recession deepen", FixedImpact(-0.3), 0.14},
		{market.CategorySentiment, "Investor optimism spreads", EitherImpact(0.2, -0.2), -0.02},
		{market.CategorySentiment, "Fear index spikes, markets on edge", EitherImpact(0.2, -0.2), 0.12},
		{market.CategoryManagement, "Major companies report strong earnings", FixedImpact(0.24), -0.09},
		{market.CategoryManagement, "Large-scale restructuring announced", FixedImpact(-0.24), 0.18},
		{market.CategoryLegal, "Deregulation bill passes", FixedImpact(0.27), -0.05},
		{market.CategoryLegal, "Antitrust lawsuit filed", FixedImpact(-0.26), 0.11},
		{market.CategorySocial, "Consumer sentiment shows signs of recovery", FixedImpact(0.15), -0.01},
		{market.CategorySocial, "Weak employment figures released", FixedImpact(-0.15), 0.09},
		{market.CategoryEnvironment, "Carbon tax cut approved", FixedImpact(0.16), -0.06},
		{market.CategoryEnvironment, "Natural disaster strikes", FixedImpact(-0.16), 0.2},
	}
}
