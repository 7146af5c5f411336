package service

import (
	"strings"
	"sync"

	"leanbot-chat/internal/domain"
)

// SessionFactory construye el pipeline de una conversación nueva. El registry
// no sabe con qué limiter ni con qué cliente se arma un ChatService, eso lo
// decide quien lo instala.
type SessionFactory func(sessionID string) *ChatService

// SessionRegistry mantiene un ChatService vivo por sesión. Cada widget en el
// navegador mapea a una entrada; las conversaciones no se comparten.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*ChatService
	factory  SessionFactory
}

func NewSessionRegistry(factory SessionFactory) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*ChatService),
		factory:  factory,
	}
}

// Resolve devuelve el pipeline de la sesión, creándolo si no existe. Con id
// vacío se abre una sesión nueva con id generado.
func (r *SessionRegistry) Resolve(sessionID string) *ChatService {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		sessionID = domain.NewSessionID()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if svc, ok := r.sessions[sessionID]; ok {
		return svc
	}
	svc := r.factory(sessionID)
	r.sessions[sessionID] = svc
	return svc
}

// Lookup devuelve el pipeline existente sin crear uno nuevo.
func (r *SessionRegistry) Lookup(sessionID string) (*ChatService, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	svc, ok := r.sessions[sessionID]
	return svc, ok
}

// Remove descarta la sesión; la próxima Resolve arranca de cero.
func (r *SessionRegistry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

// Len informa cuántas sesiones viven en memoria.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
