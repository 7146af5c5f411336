package service

import (
	"sync"

	"leanbot-chat/internal/domain"
)

// ConversationStore es el log ordenado de la conversación más el flag de
// carga. Solo el pipeline de envío lo muta; los mensajes son append-only y
// nunca se editan ni se borran tras insertarse.
type ConversationStore struct {
	mu       sync.RWMutex
	messages []domain.Message
	loading  bool
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{}
}

func (s *ConversationStore) Append(msg domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// Messages devuelve una copia del log para no exponer el slice interno.
func (s *ConversationStore) Messages() []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *ConversationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

func (s *ConversationStore) SetLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = v
}

func (s *ConversationStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}
