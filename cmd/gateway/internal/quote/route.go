package quote

const (
	hubToken    = "ETH"
	routeViaUSD = "USDC"
)

var stablecoins = map[string]bool{"USDC": true, "USDT": true, "DAI": true}

// DetermineRoute picks the hop sequence for a swap. Rules apply in order:
// same token, direct stable/ETH pair, exotic-to-exotic via ETH, else via USDC.
func DetermineRoute(from, to string) []string {
	if from == to {
		return []string{from}
	}

	if (stablecoins[from] && stablecoins[to]) ||
		(from == hubToken && stablecoins[to]) ||
		(stablecoins[from] && to == hubToken) {
		return []string{from, to}
	}

	if !isMajor(from) && !isMajor(to) {
		return []string{from, hubToken, to}
	}

	return []string{from, routeViaUSD, to}
}

func isMajor(token string) bool {
	return token == hubToken || stablecoins[token]
}
