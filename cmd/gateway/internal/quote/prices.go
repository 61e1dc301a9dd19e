package quote

import "github.com/shubham-shewale/market-terminal/pkg/models"

// DefaultTokenPrices is the reference USD price of every known token.
var DefaultTokenPrices = StaticTokenPrices{
	"ETH":  2450,
	"USDC": 1,
	"USDT": 1,
	"WBTC": 48500,
	"DAI":  1,
	"UNI":  12.5,
	"LINK": 18.3,
	"AAVE": 285,
}

type TokenPriceSource interface {
	TokenPrice(symbol string) (float64, bool)
}

// StaticTokenPrices is read-only after construction.
type StaticTokenPrices map[string]float64

func (s StaticTokenPrices) TokenPrice(symbol string) (float64, bool) {
	p, ok := s[symbol]
	return p, ok
}

// PairPrices is the read side of the price simulator.
type PairPrices interface {
	Get(pair string) (models.PricePoint, bool)
}

// LiveTokenPrices prices a token from the simulator's <TOKEN>/<Quote> pair when
// one is tracked, and from Fallback otherwise.
type LiveTokenPrices struct {
	Prices   PairPrices
	Quote    string
	Fallback TokenPriceSource
}

func (l LiveTokenPrices) TokenPrice(symbol string) (float64, bool) {
	if symbol != l.Quote {
		if p, ok := l.Prices.Get(symbol + "/" + l.Quote); ok && p.Price > 0 {
			return p.Price, true
		}
	}
	return l.Fallback.TokenPrice(symbol)
}
