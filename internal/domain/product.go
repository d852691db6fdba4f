package domain

// Product is a catalog item sold through the app. Field names follow the
// persisted JSON layout, so the struct doubles as the file record.
type Product struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	PackSize  string  `json:"pack_size"`
	Price     float64 `json:"price"`
	IsSpecial bool    `json:"isSpecial"`
}
