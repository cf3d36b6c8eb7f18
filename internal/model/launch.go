package model

// LaunchRequest is the inbound request to launch a token.
type LaunchRequest struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Description string `json:"description,omitempty"`
	Twitter     string `json:"twitter,omitempty"`
	Telegram    string `json:"telegram,omitempty"`
	Website     string `json:"website,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// LaunchResult describes a completed launch.
type LaunchResult struct {
	TokenAddress string     `json:"token_address"`
	CoinID       string     `json:"coin_id,omitempty"`
	TxHash       string     `json:"tx_hash,omitempty"`
	TokenURI     ContentRef `json:"token_uri,omitempty"`
	ImageURI     ContentRef `json:"image_uri,omitempty"`
	RecordID     int64      `json:"record_id,omitempty"`
	Persisted    bool       `json:"persisted"`
}
