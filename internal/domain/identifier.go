package domain

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// SessionIDPrefix antecede a todos los ids de sesión del widget.
const SessionIDPrefix = "LSC-"

// NewMessageID genera un id único para un mensaje.
func NewMessageID() string {
	return newUUID()
}

// NewSessionID genera un id de sesión con el prefijo del widget. El token
// conserva el layout canónico 8-4-4-4-12 de un UUID v4 incluso cuando la
// fuente segura de aleatoriedad falla.
func NewSessionID() string {
	return SessionIDPrefix + newUUID()
}

func newUUID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	return pseudoUUID()
}

// pseudoUUID arma un token con forma de UUID v4 usando math/rand, fijando los
// nibbles de versión y variante.
func pseudoUUID() string {
	var b [16]byte
	for i := range b {
		b[i] = byte(rand.Intn(256))
	}
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}
