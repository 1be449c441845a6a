// Package pricing values European call options with the Black–Scholes closed form.
package pricing

import "math"

// Fixed contract parameters applied to every option sold by the simulator.
const (
	// MaturityYears is the time to maturity as a year fraction.
	MaturityYears = 0.1
	// RiskFreeRate is the continuously compounded annual rate.
	RiskFreeRate = 0.03
	// StrikeMarkup sets the strike relative to the spot at purchase time.
	StrikeMarkup = 1.10
	// MinVolatility is the floor QuoteCall applies before calling CallPrice.
	MinVolatility = 0.01
)

// CallPrice returns the Black–Scholes value of a European call.
//
// Preconditions: vol > 0 and t > 0. Neither is checked; a zero value divides by
// zero in d1 and the result is NaN or Inf. Callers that read volatility from a
// mutable asset must go through QuoteCall, which floors it.
//
// The erf approximation can leave deep out-of-the-money values a few millionths
// below zero, so the result is clamped at 0.
func CallPrice(spot, strike, t, rate, vol float64) float64 {
	sqrtT := math.Sqrt(t)
	d1 := (math.Log(spot/strike) + (rate+vol*vol/2)*t) / (vol * sqrtT)
	d2 := d1 - vol*sqrtT
	v := spot*NormCDF(d1) - strike*math.Exp(-rate*t)*NormCDF(d2)
	if v < 0 {
		return 0
	}
	return v
}

// NormCDF is the standard normal cumulative distribution function.
func NormCDF(x float64) float64 {
	return 0.5 * (1 + Erf(x/math.Sqrt2))
}

// Erf approximates the error function with Abramowitz & Stegun 7.1.26
// (absolute error below 1.5e-7).
func Erf(x float64) float64 {
	const (
		a1 = 0.254829592
		a2 = -0.284496736
		a3 = 1.421413741
		a4 = -1.453152027
		a5 = 1.061405429
		p  = 0.3275911
	)

	sign := 1.0
	if x < 0 {
		sign = -1
		x = -x
	}

	t := 1 / (1 + p*x)
	y := 1 - ((((a5*t+a4)*t+a3)*t+a2)*t+a1)*t*math.Exp(-x*x)
	return sign * y
}

// Quote is the premium and strike offered for one option unit on an asset.
type Quote struct {
	Spot    int64
	Strike  int64
	Premium int64
}

// StrikeFor returns the strike for a purchase at spot, rounded to whole units.
func StrikeFor(spot int64) int64 {
	return int64(math.Round(float64(spot) * StrikeMarkup))
}

// QuoteCall prices one unit at the simulator's fixed maturity, rate and markup.
// The premium is computed against the unrounded strike and rounded to whole
// currency units.
func QuoteCall(spot int64, vol float64) Quote {
	if vol < MinVolatility {
		vol = MinVolatility
	}
	s := float64(spot)
	premium := CallPrice(s, s*StrikeMarkup, MaturityYears, RiskFreeRate, vol)
	if math.IsNaN(premium) {
		premium = 0
	}
	return Quote{
		Spot:    spot,
		Strike:  StrikeFor(spot),
		Premium: int64(math.Round(premium)),
	}
}
