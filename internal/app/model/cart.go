package model

// CartItem pairs a product snapshot with a quantity. Carts live with the client;
// this type is never a database table.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}
