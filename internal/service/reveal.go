package service

import (
	"strings"
	"sync"
	"time"
)

// TextReveal convierte un texto final en una secuencia temporizada de
// prefijos crecientes, de a chunkSize palabras por tick. Es one-shot: un
// TextReveal pertenece a un solo texto; para otro texto se construye otro.
// Cada mensaje del bot tiene el suyo, con timer e índice propios, así varios
// pueden revelarse a la vez sin interferirse.
type TextReveal struct {
	mu        sync.Mutex
	words     []string
	chunkSize int
	displayed string
	complete  bool

	updates  chan string
	stop     chan struct{}
	stopOnce sync.Once
}

// NewTextReveal arranca la revelación. Con enabled=false el texto completo se
// emite de inmediato y la revelación queda completa.
func NewTextReveal(text string, chunkSize int, delay time.Duration, enabled bool) *TextReveal {
	if chunkSize <= 0 {
		chunkSize = 3
	}
	if delay <= 0 {
		delay = 50 * time.Millisecond
	}

	r := &TextReveal{
		chunkSize: chunkSize,
		stop:      make(chan struct{}),
	}

	words := strings.Fields(text)
	if !enabled || len(words) == 0 {
		r.displayed = text
		r.complete = true
		r.updates = make(chan string, 1)
		r.updates <- text
		close(r.updates)
		return r
	}

	r.words = words
	// Buffer para todos los ticks: el productor nunca se bloquea aunque el
	// consumidor abandone el canal.
	ticks := (len(words) + chunkSize - 1) / chunkSize
	r.updates = make(chan string, ticks)

	go r.run(delay)
	return r
}

func (r *TextReveal) run(delay time.Duration) {
	defer close(r.updates)

	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	idx := 0
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			idx += r.chunkSize
			if idx > len(r.words) {
				idx = len(r.words)
			}
			prefix := strings.Join(r.words[:idx], " ")
			done := idx == len(r.words)

			r.mu.Lock()
			r.displayed = prefix
			r.complete = done
			r.mu.Unlock()

			r.updates <- prefix
			if done {
				return
			}
		}
	}
}

// Updates expone los prefijos a medida que se revelan; el canal se cierra al
// completar o al cancelar.
func (r *TextReveal) Updates() <-chan string {
	return r.updates
}

// Displayed devuelve el prefijo visible actual.
func (r *TextReveal) Displayed() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.displayed
}

// Complete informa si ya se reveló el texto entero.
func (r *TextReveal) Complete() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.complete
}

// Stop cancela el timer. Es idempotente y obligatorio cuando el dueño del
// mensaje se descarta antes de terminar, para no filtrar callbacks
// periódicos.
func (r *TextReveal) Stop() {
	r.stopOnce.Do(func() {
		close(r.stop)
	})
}
