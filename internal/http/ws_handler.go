package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"leanbot-chat/internal/domain"
	"leanbot-chat/internal/metrics"
	"leanbot-chat/internal/notify"
	"leanbot-chat/internal/service"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RevealOptions controla el goteo progresivo del texto del bot sobre el
// socket. Deshabilitado, el texto llega entero en un solo frame.
type RevealOptions struct {
	Enabled   bool
	ChunkSize int
	Delay     time.Duration
}

// WSHandler atiende la conexión persistente del widget: recibe mensajes del
// usuario y devuelve typing, texto progresivo, mensajes completos y toasts.
type WSHandler struct {
	logger   *zap.Logger
	registry *service.SessionRegistry
	reveal   RevealOptions
}

func NewWSHandler(logger *zap.Logger, registry *service.SessionRegistry, reveal RevealOptions) *WSHandler {
	return &WSHandler{logger: logger, registry: registry, reveal: reveal}
}

// wsFrame es el sobre de todo lo que viaja por el socket hacia el cliente.
type wsFrame struct {
	Type         string               `json:"type"`
	SessionID    string               `json:"session_id,omitempty"`
	Text         string               `json:"text,omitempty"`
	Message      *domain.Message      `json:"message,omitempty"`
	Notification *notify.Notification `json:"notification,omitempty"`
}

// wsIncoming es lo único que el cliente manda: texto plano del usuario.
type wsIncoming struct {
	Text string `json:"text"`
}

// wsConn serializa las escrituras: el reveal corre en su goroutine y no puede
// pisar los frames del loop principal.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsConn) writeFrame(f wsFrame) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(f)
}

// wsNotifier redirige los toasts del pipeline a la conexión.
type wsNotifier struct {
	conn *wsConn
}

func (n *wsNotifier) Notify(nf notify.Notification) {
	_ = n.conn.writeFrame(wsFrame{Type: "toast", Notification: &nf})
}

// Serve maneja GET /ws. El query param session_id reengancha una conversación
// existente; sin él se abre una nueva.
func (h *WSHandler) Serve(c *gin.Context) {
	raw, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer raw.Close()

	metrics.WSConnectionsActive.Inc()
	defer metrics.WSConnectionsActive.Dec()

	conn := &wsConn{conn: raw}
	svc := h.registry.Resolve(c.Query("session_id"))
	svc.SetNotifier(&wsNotifier{conn: conn})

	if err := conn.writeFrame(wsFrame{Type: "session", SessionID: svc.SessionID()}); err != nil {
		h.logger.Warn("session frame failed", zap.Error(err))
		return
	}

	for {
		_, payload, err := raw.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket closed unexpectedly", zap.Error(err))
			}
			return
		}

		var in wsIncoming
		if err := json.Unmarshal(payload, &in); err != nil {
			_ = conn.writeFrame(wsFrame{Type: "error", Text: "Invalid message format. Send JSON with a 'text' field."})
			continue
		}
		if strings.TrimSpace(in.Text) == "" {
			continue
		}

		h.handleUserMessage(c, conn, svc, in.Text)
	}
}

func (h *WSHandler) handleUserMessage(c *gin.Context, conn *wsConn, svc *service.ChatService, text string) {
	_ = conn.writeFrame(wsFrame{Type: "typing", Text: "on"})
	defer func() { _ = conn.writeFrame(wsFrame{Type: "typing", Text: "off"}) }()

	// Rate limit y single-flight ya emitieron su toast y no dejan mensaje;
	// los fallos del webhook dejan un mensaje del bot que se entrega abajo
	// como cualquier otro.
	bot, _ := svc.Send(c.Request.Context(), text)
	if bot == nil {
		return
	}

	// Solo el texto plano gotea; productos y pedidos llegan enteros para que
	// el cliente pinte las cards de una vez.
	if h.reveal.Enabled && bot.Kind == domain.KindText {
		reveal := service.NewTextReveal(bot.Content, h.reveal.ChunkSize, h.reveal.Delay, true)
		for partial := range reveal.Updates() {
			if err := conn.writeFrame(wsFrame{Type: "reveal", Text: partial}); err != nil {
				reveal.Stop()
				return
			}
		}
	}

	_ = conn.writeFrame(wsFrame{Type: "bot_message", Message: bot})
}
