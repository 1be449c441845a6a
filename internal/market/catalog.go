package market

// DefaultCatalog returns a fresh copy of the assets every game starts with.
func DefaultCatalog() []Asset {
	return []Asset{
		{Name: "Butcher Co", Price: 50_000, Volatility: 0.4, Events: []Category{CategoryEconomy, CategorySentiment}},
		{Name: "Soju Works", Price: 40_000, Volatility: 0.18, Events: []Category{CategorySocial, CategoryManagement, CategoryEconomy, CategoryEnvironment}},
		{Name: "K-Pop Shares", Price: 10_000, Volatility: 0.3, Events: []Category{CategoryEconomy, CategoryLegal}},
		{Name: "Confession Corp", Price: 70_000, Volatility: 0.5, Events: []Category{CategorySentiment, CategorySocial}},
		{Name: "Bitcoin", Price: 200_000, Volatility: 0.6, Events: []Category{CategorySentiment, CategoryLegal, CategoryEconomy}},
		{Name: "K-Index", Price: 100_000, Volatility: 0.2, Events: []Category{CategorySocial, CategoryEconomy, CategoryLegal}},
		{Name: "Part-Timer Holdings", Price: 120_000, Volatility: 0.38, Events: []Category{CategoryEconomy, CategorySentiment}},
		{Name: "Chicken House", Price: 30_000, Volatility: 0.34, Events: []Category{CategorySentiment, CategoryEconomy, CategoryManagement, CategoryEnvironment, CategorySocial}},
	}
}
