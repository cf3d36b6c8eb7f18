package model

// TokenInfo is what a launched token reports about itself on chain.
type TokenInfo struct {
	Address     string `json:"address"`
	CoinID      string `json:"coin_id"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    uint8  `json:"decimals"`
	TotalSupply string `json:"total_supply"`
}
