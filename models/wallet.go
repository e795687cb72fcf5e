// models/wallet.go
package models

// Wallet is an entry of userwallet/test_wallets.json
type Wallet struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// WalletBalance mirrors balance/wallet_<address>_balance.json.
// Balances is keyed by ticker ("sol", "usdc") or guild token key ("g1-token1").
type WalletBalance struct {
	WalletID    string             `json:"walletID"`
	Owner       string             `json:"owner"`
	Guilds      []string           `json:"guilds"`
	Balances    map[string]float64 `json:"balances"`
	LastUpdated string             `json:"lastUpdated"`
}

// DefaultBalanceTickers are zero-filled when a wallet has no balance fixture.
var DefaultBalanceTickers = []string{"sol", "usdc", "wbtc", "atlas", "polis"}

// InGuild reports whether the wallet belongs to guildID.
func (b *WalletBalance) InGuild(guildID string) bool {
	if b == nil {
		return false
	}
	for _, g := range b.Guilds {
		if g == guildID {
			return true
		}
	}
	return false
}

// PriceList maps a ticker to its USD price
type PriceList map[string]float64
