package webhook

import (
	"errors"
	"fmt"
)

// FailureClass agrupa los fallos del webhook en las categorías que la capa de
// conversación traduce a mensajes amigables.
type FailureClass string

const (
	FailureTransport FailureClass = "transport"
	FailureTimeout   FailureClass = "timeout"
	FailureNotFound  FailureClass = "not_found"
	FailureServer    FailureClass = "server"
	FailureStatus    FailureClass = "status"
)

// Error es el fallo tipado que devuelve el cliente. Status es 0 cuando la
// petición nunca llegó a completarse.
type Error struct {
	Class   FailureClass
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("webhook %s failure: status=%d %s", e.Class, e.Status, e.Message)
	}
	return fmt.Sprintf("webhook %s failure: %s", e.Class, e.Message)
}

// ClassOf extrae la clase de fallo de un error; FailureTransport cuando el
// error no viene de este paquete.
func ClassOf(err error) FailureClass {
	var werr *Error
	if errors.As(err, &werr) {
		return werr.Class
	}
	return FailureTransport
}
