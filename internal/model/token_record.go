package model

import "time"

// TokenRecord is a persisted launch. It is written once after the chain call succeeds.
type TokenRecord struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Symbol       string    `json:"symbol"`
	Description  *string   `json:"description"`
	TokenAddress *string   `json:"token_address"`
	Twitter      *string   `json:"twitter"`
	Telegram     *string   `json:"telegram"`
	Website      *string   `json:"website"`
	ImageURL     string    `json:"image_url"`
	CreatedAt    time.Time `json:"created_at"`
}

// UnpersistedLaunch records a launch whose chain effect succeeded but whose
// record could not be stored.
type UnpersistedLaunch struct {
	Record   TokenRecord `json:"record"`
	CoinID   string      `json:"coin_id"`
	TxHash   string      `json:"tx_hash"`
	TokenURI ContentRef  `json:"token_uri"`
	Error    string      `json:"error"`
	At       string      `json:"at"`
}

// OptionalString maps an empty string to nil.
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
