package domain

// ProductRecord es la tarjeta de producto que consume la capa de presentación.
// Los defaults (nombre placeholder, precio 0, id por índice) los aplica el
// normalizador al decodificar payloads sueltos del webhook.
type ProductRecord struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl"`
}

// OrderItem es una línea de pedido dentro de un OrderRecord.
type OrderItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// OrderRecord describe el estado de un pedido. Todos los campos son
// opcionales: un campo vacío significa que la UI omite esa línea, no es un
// error.
type OrderRecord struct {
	OrderID              string      `json:"orderId,omitempty"`
	Status               string      `json:"status,omitempty"`
	Items                []OrderItem `json:"items,omitempty"`
	CouponCode           string      `json:"couponCode,omitempty"`
	ExpectedDeliveryDate string      `json:"expectedDeliveryDate,omitempty"`
}
