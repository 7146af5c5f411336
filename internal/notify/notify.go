// Package notify define el canal lateral de avisos al usuario (el análogo a
// los toasts del widget). Los consumidores deciden cómo presentarlos.
package notify

import (
	"sync"

	"go.uber.org/zap"
)

// Severity marca la gravedad de un aviso.
type Severity string

const SeverityDestructive Severity = "destructive"

// Notification es el payload del aviso.
type Notification struct {
	Severity    Severity `json:"severity"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
}

// Notifier recibe avisos generados por el pipeline de envío.
type Notifier interface {
	Notify(n Notification)
}

// ZapNotifier registra los avisos en el log estructurado. Es el notifier por
// defecto cuando ningún transporte reclama los toasts.
type ZapNotifier struct {
	logger *zap.Logger
}

func NewZapNotifier(logger *zap.Logger) *ZapNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapNotifier{logger: logger}
}

func (z *ZapNotifier) Notify(n Notification) {
	z.logger.Warn("user notification",
		zap.String("severity", string(n.Severity)),
		zap.String("title", n.Title),
		zap.String("description", n.Description),
	)
}

// Collector acumula avisos en memoria; lo usan los tests y el cliente de
// terminal.
type Collector struct {
	mu    sync.Mutex
	items []Notification
}

func (c *Collector) Notify(n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, n)
}

func (c *Collector) Items() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}

// Drain devuelve los avisos acumulados y vacía el buffer.
func (c *Collector) Drain() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.items
	c.items = nil
	return out
}
