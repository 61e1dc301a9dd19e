package simulator

// DefaultBasePrice is used for pairs without a seeded reference price.
const DefaultBasePrice = 100.0

var basePrices = map[string]float64{
	"ETH/USDC":  2450,
	"ETH/USDT":  2448,
	"WBTC/USDC": 48500,
	"UNI/USDC":  12.5,
	"LINK/USDC": 18.3,
}

// StaticPrices resolves base prices from the seeded per-pair constants.
type StaticPrices struct{}

func (StaticPrices) BasePrice(pair string) float64 {
	if p, ok := basePrices[pair]; ok {
		return p
	}
	return DefaultBasePrice
}

// LivePrices resolves base prices from the running PriceSimulator and falls
// back to the seeded constants for pairs it does not track.
type LivePrices struct {
	Prices   *PriceSimulator
	Fallback BasePriceSource
}

func (l LivePrices) BasePrice(pair string) float64 {
	if l.Prices != nil {
		if p, ok := l.Prices.Get(pair); ok {
			return p.Price
		}
	}
	if l.Fallback != nil {
		return l.Fallback.BasePrice(pair)
	}
	return StaticPrices{}.BasePrice(pair)
}
