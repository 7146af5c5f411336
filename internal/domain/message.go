package domain

import "time"

// Role identifica quién produjo un mensaje dentro de la conversación.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Kind clasifica el mensaje para el renderizado. Los tres valores canónicos
// son KindText, KindProductList y KindOrderStatus; un type desconocido del
// webhook se conserva literal y el consumidor lo renderiza como texto.
type Kind string

const (
	KindText        Kind = "text"
	KindProductList Kind = "product-list"
	KindOrderStatus Kind = "order-status"
)

// Message es una entrada inmutable del log de conversación. Products u Orders
// solo vienen pobladas cuando Kind no es texto; si la clasificación quedara
// con payload vacío, el mensaje degrada a KindText sin payload.
type Message struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id,omitempty"`
	Role      Role            `json:"role"`
	Content   string          `json:"content"`
	Kind      Kind            `json:"kind"`
	Products  []ProductRecord `json:"products,omitempty"`
	Orders    []OrderRecord   `json:"orders,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
