package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zappabad/optionsim/internal/broker"
	"github.com/zappabad/optionsim/internal/game"
	"github.com/zappabad/optionsim/internal/market"
	"github.com/zappabad/optionsim/internal/news"
	"github.com/zappabad/optionsim/internal/portfolio"
)

type assetDTO struct {
	Name       string   `json:"name"`
	Price      int64    `json:"price"`
	Volatility float64  `json:"volatility"`
	Events     []string `json:"events"`
	Direction  string   `json:"direction"`
	Premium    int64    `json:"premium"`
	Strike     int64    `json:"strike"`
}

type holdingDTO struct {
	ID             uuid.UUID `json:"id"`
	Index          int       `json:"index"`
	Asset          string    `json:"asset"`
	Quantity       int64     `json:"quantity"`
	PremiumPerUnit int64     `json:"premium_per_unit"`
	TotalCost      int64     `json:"total_cost"`
	Strike         int64     `json:"strike"`
	Executed       bool      `json:"executed"`
	Profit         *int64    `json:"profit,omitempty"`
	Spot           int64     `json:"spot"`
	Moneyness      string    `json:"moneyness"`
}

type newsDTO struct {
	ID               int64    `json:"id"`
	Time             string   `json:"time"`
	Category         string   `json:"category"`
	Message          string   `json:"message"`
	Impact           float64  `json:"impact"`
	VolatilityImpact float64  `json:"volatility_impact"`
	Affected         []string `json:"affected"`
}

type summaryDTO struct {
	Capital     int64           `json:"capital"`
	Invested    int64           `json:"invested"`
	Realized    int64           `json:"realized"`
	Executed    int             `json:"executed"`
	Unexecuted  int             `json:"unexecuted"`
	ProfitCount int             `json:"profit_count"`
	LossCount   int             `json:"loss_count"`
	MaxProfit   *holdingDTO     `json:"max_profit,omitempty"`
	MaxLoss     *holdingDTO     `json:"max_loss,omitempty"`
	ROI         decimal.Decimal `json:"roi"`
}

type resultDTO struct {
	Summary     summaryDTO       `json:"summary"`
	AIProfit    int64            `json:"ai_profit"`
	AIExecuted  int              `json:"ai_executed"`
	PlayerROI   decimal.Decimal  `json:"player_roi"`
	AIROI       decimal.Decimal  `json:"ai_roi"`
	Verdict     string           `json:"verdict"`
	FinalPrices map[string]int64 `json:"final_prices"`
}

type stateDTO struct {
	Phase      string       `json:"phase"`
	Difficulty string       `json:"difficulty"`
	Countdown  int          `json:"countdown"`
	Remaining  int          `json:"remaining"`
	Now        *time.Time   `json:"now,omitempty"`
	Capital    int64        `json:"capital"`
	Assets     []assetDTO   `json:"assets"`
	Holdings   []holdingDTO `json:"holdings"`
	Log        []newsDTO    `json:"log"`
	Flash      bool         `json:"flash"`
	Result     *resultDTO   `json:"result,omitempty"`
}

type quoteDTO struct {
	Asset      string `json:"asset"`
	Quantity   int64  `json:"quantity"`
	Spot       int64  `json:"spot"`
	Strike     int64  `json:"strike"`
	Premium    int64  `json:"premium"`
	Total      int64  `json:"total"`
	Affordable bool   `json:"affordable"`
}

type exerciseQuoteDTO struct {
	HoldingID uuid.UUID `json:"holding_id"`
	Index     int       `json:"index"`
	Asset     string    `json:"asset"`
	Quantity  int64     `json:"quantity"`
	Spot      int64     `json:"spot"`
	Strike    int64     `json:"strike"`
	TotalCost int64     `json:"total_cost"`
	Gross     int64     `json:"gross"`
	Net       int64     `json:"net"`
	Recommend bool      `json:"recommend"`
}

type exerciseRequestDTO struct {
	RequestID uuid.UUID        `json:"request_id"`
	Quote     exerciseQuoteDTO `json:"quote"`
	Processed bool             `json:"processed"`
	Accepted  bool             `json:"accepted"`
}

type settlementDTO struct {
	RequestID uuid.UUID `json:"request_id"`
	Accepted  bool      `json:"accepted"`
	Capital   int64     `json:"capital"`
	Net       int64     `json:"net"`
}

type activityDTO struct {
	Seq       uint64    `json:"seq"`
	Kind      string    `json:"kind"`
	HoldingID uuid.UUID `json:"holding_id"`
	Index     int       `json:"index"`
	Asset     string    `json:"asset"`
	Quantity  int64     `json:"quantity"`
	Amount    int64     `json:"amount"`
	Capital   int64     `json:"capital"`
}

type moveDTO struct {
	Name      string `json:"name"`
	From      int64  `json:"from"`
	To        int64  `json:"to"`
	Direction string `json:"direction"`
}

type wsMessage struct {
	Type  string    `json:"type"`
	State *stateDTO `json:"state,omitempty"`
	News  *newsDTO  `json:"news,omitempty"`
	Moves []moveDTO `json:"moves,omitempty"`
}

type startRequest struct {
	Difficulty string `json:"difficulty"`
}

type buyRequest struct {
	Asset    string `json:"asset"`
	Quantity int64  `json:"quantity"`
}

type decideRequest struct {
	Accepted bool `json:"accepted"`
}

func toHoldingDTO(h portfolio.Holding, index int, spot int64) holdingDTO {
	d := holdingDTO{
		ID:             h.ID,
		Index:          index,
		Asset:          h.Asset,
		Quantity:       h.Quantity,
		PremiumPerUnit: h.PremiumPerUnit,
		TotalCost:      h.TotalCost,
		Strike:         h.Strike,
		Executed:       h.Executed,
		Spot:           spot,
		Moneyness:      string(game.MoneynessOf(spot, h.Strike)),
	}
	if h.Executed {
		p := h.Profit
		d.Profit = &p
	}
	return d
}

func toNewsDTO(it news.Item) newsDTO {
	return newsDTO{
		ID:               int64(it.ID),
		Time:             time.Unix(0, it.Time).UTC().Format(time.RFC3339),
		Category:         string(it.Category),
		Message:          it.Message,
		Impact:           it.Impact,
		VolatilityImpact: it.VolatilityImpact,
		Affected:         it.Affected,
	}
}

func toActivityDTO(entries []portfolio.Activity) []activityDTO {
	out := make([]activityDTO, len(entries))
	for i, a := range entries {
		out[i] = activityDTO{
			Seq:       a.Seq,
			Kind:      a.Kind.String(),
			HoldingID: a.HoldingID,
			Index:     a.Index,
			Asset:     a.Asset,
			Quantity:  a.Quantity,
			Amount:    a.Amount,
			Capital:   a.Capital,
		}
	}
	return out
}

func toMovesDTO(moves []market.PriceMove) []moveDTO {
	out := make([]moveDTO, len(moves))
	for i, mv := range moves {
		out[i] = moveDTO{Name: mv.Name, From: mv.From, To: mv.To, Direction: mv.Direction.String()}
	}
	return out
}

func toExerciseQuoteDTO(q portfolio.ExerciseQuote) exerciseQuoteDTO {
	return exerciseQuoteDTO{
		HoldingID: q.HoldingID,
		Index:     q.Index,
		Asset:     q.Asset,
		Quantity:  q.Quantity,
		Spot:      q.Spot,
		Strike:    q.Strike,
		TotalCost: q.TotalCost,
		Gross:     q.Gross,
		Net:       q.Net,
		Recommend: q.Recommend,
	}
}

func toRequestDTO(req broker.Request) exerciseRequestDTO {
	return exerciseRequestDTO{
		RequestID: req.ID,
		Quote:     toExerciseQuoteDTO(req.Quote),
		Processed: req.Processed,
		Accepted:  req.Accepted,
	}
}

func toResultDTO(r *game.Result, holdings []game.HoldingView) *resultDTO {
	if r == nil {
		return nil
	}
	s := r.Summary
	sum := summaryDTO{
		Capital:     s.Capital,
		Invested:    s.Invested,
		Realized:    s.Realized,
		Executed:    s.Executed,
		Unexecuted:  s.Unexecuted,
		ProfitCount: s.ProfitCount,
		LossCount:   s.LossCount,
		ROI:         s.ROI,
	}
	pick := func(i int) *holdingDTO {
		if i < 0 || i >= len(holdings) {
			return nil
		}
		h := holdings[i]
		d := toHoldingDTO(h.Holding, h.Index, r.FinalPrices[h.Asset])
		return &d
	}
	sum.MaxProfit = pick(s.MaxProfit)
	sum.MaxLoss = pick(s.MaxLoss)

	return &resultDTO{
		Summary:     sum,
		AIProfit:    r.Report.AIProfit,
		AIExecuted:  r.Report.AIExecuted,
		PlayerROI:   r.Report.PlayerROI,
		AIROI:       r.Report.AIROI,
		Verdict:     r.Report.Verdict.String(),
		FinalPrices: r.FinalPrices,
	}
}

func toStateDTO(st game.State) *stateDTO {
	out := &stateDTO{
		Phase:      st.Phase.String(),
		Difficulty: st.Difficulty.String(),
		Countdown:  st.Countdown,
		Remaining:  st.Remaining,
		Capital:    st.Capital,
		Assets:     make([]assetDTO, len(st.Assets)),
		Holdings:   make([]holdingDTO, len(st.Holdings)),
		Log:        make([]newsDTO, len(st.Log)),
		Flash:      st.Flash,
		Result:     toResultDTO(st.Result, st.Holdings),
	}
	if !st.Now.IsZero() {
		now := st.Now
		out.Now = &now
	}
	for i, a := range st.Assets {
		events := make([]string, len(a.Events))
		for j, c := range a.Events {
			events[j] = string(c)
		}
		out.Assets[i] = assetDTO{
			Name:       a.Name,
			Price:      a.Price,
			Volatility: a.Volatility,
			Events:     events,
			Direction:  a.Direction.String(),
			Premium:    a.Quote.Premium,
			Strike:     a.Quote.Strike,
		}
	}
	for i, h := range st.Holdings {
		out.Holdings[i] = toHoldingDTO(h.Holding, h.Index, h.Spot)
	}
	for i, it := range st.Log {
		out.Log[i] = toNewsDTO(it)
	}
	return out
}
