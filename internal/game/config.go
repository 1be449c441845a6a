package game

import (
	"github.com/zappabad/optionsim/internal/market"
	marketservice "github.com/zappabad/optionsim/internal/market/service"
	"github.com/zappabad/optionsim/internal/news"
	newsservice "github.com/zappabad/optionsim/internal/news/service"
	"github.com/zappabad/optionsim/internal/portfolio"
)

// Config holds configuration for the game.
type Config struct {
	// Difficulty is preselected on the start screen and restored by Reset.
	Difficulty Difficulty
	// StartingCapital is the cash a game starts with.
	StartingCapital int64
	// Countdown is the number of seconds between Start and Active.
	Countdown int
	// Duration is the length of the Active phase in seconds.
	Duration int
	// Seed seeds the random source. Zero seeds from the clock.
	Seed int64
	// Catalog is the set of assets restored on every reset.
	Catalog []market.Asset
	// Templates is the news event catalog.
	Templates []news.Template
	// MarketConfig is the configuration for the market service.
	MarketConfig marketservice.Config
	// NewsConfig is the configuration for the news service.
	NewsConfig newsservice.Config
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Difficulty:      DifficultyMedium,
		StartingCapital: portfolio.DefaultCapital,
		Countdown:       3,
		Duration:        180,
		Catalog:         market.DefaultCatalog(),
		Templates:       news.DefaultTemplates(),
		MarketConfig:    marketservice.DefaultConfig(),
		NewsConfig:      newsservice.DefaultConfig(),
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.StartingCapital <= 0 {
		c.StartingCapital = def.StartingCapital
	}
	if c.Countdown <= 0 {
		c.Countdown = def.Countdown
	}
	if c.Duration <= 0 {
		c.Duration = def.Duration
	}
	if len(c.Catalog) == 0 {
		c.Catalog = def.Catalog
	}
	if len(c.Templates) == 0 {
		c.Templates = def.Templates
	}
	if !c.Difficulty.Valid() {
		c.Difficulty = def.Difficulty
	}
	return c
}
