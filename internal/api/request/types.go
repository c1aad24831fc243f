package request

// SavePlayerRequest is the request body for overwriting a player record
type SavePlayerRequest struct {
	Name      string `json:"name"`
	MaxHP     *int   `json:"max_hp"`
	CurrentHP *int   `json:"current_hp"`
}

// AdjustRequest is the request body for healing or damaging a player
type AdjustRequest struct {
	Delta *int `json:"delta"`
}
