package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"leanbot-chat/internal/domain"
	"leanbot-chat/internal/metrics"
	"leanbot-chat/internal/notify"
	"leanbot-chat/internal/webhook"
)

// ErrSendInFlight indica que ya hay un envío en curso: el pipeline admite un
// solo request en vuelo por conversación y los demás se ignoran.
var ErrSendInFlight = errors.New("send already in flight")

// RateLimitError señala un envío rechazado por el gate de admisión.
type RateLimitError struct {
	RetryAfter int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry in %ds", e.RetryAfter)
}

// ChatService orquesta un envío: admisión, append optimista del mensaje del
// usuario, llamada al webhook, normalización y append de la respuesta del
// bot. Es el contexto explícito de la sesión: el id, el limiter y el store
// viven acá, no en estado global. Todo fallo termina con el pipeline en Idle,
// exactamente un mensaje extra del bot y la conversación usable.
type ChatService struct {
	logger     *zap.Logger
	client     webhook.Client
	limiter    Admitter
	store      *ConversationStore
	notifier   notify.Notifier
	normalizer ResponseNormalizer
	now        func() time.Time

	sessionID   string
	sessionOnce sync.Once
	sending     atomic.Bool
}

// NewChatService construye el pipeline para una conversación. Con sessionID
// vacío el id se genera perezosamente en el primer uso.
func NewChatService(
	logger *zap.Logger,
	client webhook.Client,
	limiter Admitter,
	store *ConversationStore,
	notifier notify.Notifier,
	sessionID string,
) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = NewConversationStore()
	}
	if notifier == nil {
		notifier = notify.NewZapNotifier(logger)
	}
	return &ChatService{
		logger:    logger,
		client:    client,
		limiter:   limiter,
		store:     store,
		notifier:  notifier,
		now:       time.Now,
		sessionID: strings.TrimSpace(sessionID),
	}
}

// SessionID devuelve el id de sesión, creándolo en el primer acceso. Una vez
// creado no cambia por el resto de la vida del widget.
func (s *ChatService) SessionID() string {
	s.sessionOnce.Do(func() {
		if s.sessionID == "" {
			s.sessionID = domain.NewSessionID()
		}
	})
	return s.sessionID
}

// Messages expone el log de conversación.
func (s *ChatService) Messages() []domain.Message {
	return s.store.Messages()
}

// IsLoading informa si hay un envío en curso.
func (s *ChatService) IsLoading() bool {
	return s.store.Loading()
}

// SetNotifier redirige los avisos (p.ej. hacia una conexión WebSocket).
func (s *ChatService) SetNotifier(n notify.Notifier) {
	if n != nil {
		s.notifier = n
	}
}

// Send ejecuta el pipeline completo para un texto del usuario y devuelve el
// mensaje del bot que quedó en el log. Input vacío es un no-op silencioso
// (nil, nil).
func (s *ChatService) Send(ctx context.Context, text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	if res := s.limiter.TryAdmit(s.now()); !res.Admitted {
		metrics.RateLimitRejections.Inc()
		s.logger.Info("message rejected by rate limiter",
			zap.String("session_id", s.SessionID()),
			zap.Int("retry_after_s", res.RetryAfterSeconds),
		)
		s.notifier.Notify(notify.Notification{
			Severity:    notify.SeverityDestructive,
			Title:       "Rate Limit Exceeded",
			Description: fmt.Sprintf("Please wait %d seconds before sending another message.", res.RetryAfterSeconds),
		})
		return nil, &RateLimitError{RetryAfter: res.RetryAfterSeconds}
	}

	if !s.sending.CompareAndSwap(false, true) {
		return nil, ErrSendInFlight
	}
	defer func() {
		s.store.SetLoading(false)
		s.sending.Store(false)
	}()

	userMsg := domain.Message{
		ID:        domain.NewMessageID(),
		SessionID: s.SessionID(),
		Role:      domain.RoleUser,
		Content:   text,
		Kind:      domain.KindText,
		CreatedAt: s.now().UTC(),
	}
	s.store.Append(userMsg)
	s.store.SetLoading(true)
	metrics.MessagesTotal.WithLabelValues(string(domain.RoleUser)).Inc()

	raw, err := s.client.Send(ctx, webhook.Request{
		ChatInput: text,
		SessionID: s.SessionID(),
	})
	if err != nil {
		bot := s.appendFailure(err)
		return &bot, err
	}

	res := s.normalizer.Normalize(raw)
	bot := domain.Message{
		ID:        domain.NewMessageID(),
		SessionID: s.SessionID(),
		Role:      domain.RoleBot,
		Content:   res.DisplayText,
		Kind:      res.Kind,
		Products:  res.Products,
		Orders:    res.Orders,
		CreatedAt: s.now().UTC(),
	}
	s.store.Append(bot)
	metrics.MessagesTotal.WithLabelValues(string(domain.RoleBot)).Inc()
	metrics.NormalizedResponses.WithLabelValues(string(res.Kind)).Inc()

	s.logger.Info("bot message appended",
		zap.String("session_id", s.SessionID()),
		zap.String("kind", string(res.Kind)),
		zap.Int("products", len(res.Products)),
	)
	return &bot, nil
}

// appendFailure traduce el fallo a una explicación segura para el usuario,
// la deja en el log como mensaje del bot y emite el aviso lateral.
func (s *ChatService) appendFailure(err error) domain.Message {
	class := webhook.ClassOf(err)
	metrics.WebhookFailures.WithLabelValues(string(class)).Inc()

	var title, content string
	switch class {
	case webhook.FailureTimeout:
		title = "Request Timeout"
		content = "The request took too long. Please try again."
	case webhook.FailureNotFound:
		title = "Service Unavailable"
		content = "The chat service is temporarily unavailable. Please try again later."
	case webhook.FailureServer:
		title = "Server Error"
		content = "The service ran into a problem. Please try again or rephrase your message."
	default:
		title = "Network Error"
		content = "Sorry, I couldn't reach the service. Please check your connection and try again."
	}

	s.logger.Warn("send pipeline failure",
		zap.String("session_id", s.SessionID()),
		zap.String("class", string(class)),
		zap.Error(err),
	)
	s.notifier.Notify(notify.Notification{
		Severity:    notify.SeverityDestructive,
		Title:       title,
		Description: err.Error(),
	})

	bot := domain.Message{
		ID:        domain.NewMessageID(),
		SessionID: s.SessionID(),
		Role:      domain.RoleBot,
		Content:   content,
		Kind:      domain.KindText,
		CreatedAt: s.now().UTC(),
	}
	s.store.Append(bot)
	metrics.MessagesTotal.WithLabelValues(string(domain.RoleBot)).Inc()
	return bot
}
