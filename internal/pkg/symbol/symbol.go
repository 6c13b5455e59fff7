package symbol

import (
	"strings"
)

// Symbol 是拆分后的交易对，例如 BTC/USDT。
type Symbol struct {
	Base  string
	Quote string
}

func (s Symbol) Internal() string {
	if s.Base == "" || s.Quote == "" {
		return ""
	}
	return s.Base + "/" + s.Quote
}

func (s Symbol) Binance() string {
	if s.Base == "" || s.Quote == "" {
		return ""
	}
	return s.Base + s.Quote
}

var quoteCurrencies = []string{"USDT", "BUSD", "USDC", "FDUSD", "TUSD", "BTC", "ETH", "BNB"}

func Parse(s string) Symbol {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return Symbol{}
	}

	// freqtrade 风格的结算币后缀，如 BTC/USDT:USDT
	if idx := strings.Index(s, ":"); idx >= 0 {
		s = s[:idx]
	}

	if parts := strings.SplitN(s, "/", 2); len(parts) == 2 {
		return Symbol{
			Base:  strings.TrimSpace(parts[0]),
			Quote: strings.TrimSpace(parts[1]),
		}
	}

	for _, quote := range quoteCurrencies {
		if strings.HasSuffix(s, quote) && len(s) > len(quote) {
			return Symbol{
				Base:  s[:len(s)-len(quote)],
				Quote: quote,
			}
		}
	}

	return Symbol{}
}

// ToBinance converts any supported spelling to the exchange form (BTCUSDT).
// Pairs with an unknown quote currency are upper-cased and passed through,
// the exchange is the authority on what it lists.
func ToBinance(s string) string {
	if out := Parse(s).Binance(); out != "" {
		return out
	}
	clean := strings.ToUpper(strings.TrimSpace(s))
	return strings.ReplaceAll(clean, "/", "")
}

func IsValid(s string) bool {
	sym := Parse(s)
	return sym.Base != "" && sym.Quote != ""
}
