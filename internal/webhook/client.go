package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"leanbot-chat/internal/metrics"
)

// Request es el cuerpo que espera el webhook de automatización.
type Request struct {
	ChatInput string `json:"chatInput"`
	SessionID string `json:"sessionId"`
}

// Client define la interfaz hacia el webhook remoto. La respuesta es el body
// crudo: el webhook no garantiza ningún schema, de eso se encarga el
// normalizador.
type Client interface {
	Send(ctx context.Context, req Request) (string, error)
}

// HTTPClient implementa Client contra el endpoint HTTP del webhook.
type HTTPClient struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewHTTPClient construye un cliente apuntando al webhook configurado.
func NewHTTPClient(url string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		url:    strings.TrimSpace(url),
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (c *HTTPClient) Send(ctx context.Context, r Request) (string, error) {
	bodyBytes, err := json.Marshal(r)
	if err != nil {
		return "", &Error{Class: FailureTransport, Message: "marshal request: " + err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", &Error{Class: FailureTransport, Message: "create request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.WebhookDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if isTimeout(err) {
			return "", &Error{Class: FailureTimeout, Message: err.Error()}
		}
		return "", &Error{Class: FailureTransport, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Class: FailureTransport, Message: "read response: " + err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := errorMessageFromBody(respBody)
		if msg == "" {
			msg = "HTTP status " + strconv.Itoa(resp.StatusCode)
		}
		c.logger.Warn("webhook error status",
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)
		return "", &Error{Class: classForStatus(resp.StatusCode), Status: resp.StatusCode, Message: msg}
	}

	return string(respBody), nil
}

func classForStatus(status int) FailureClass {
	switch {
	case status == http.StatusNotFound:
		return FailureNotFound
	case status >= 500:
		return FailureServer
	default:
		return FailureStatus
	}
}

// errorMessageFromBody intenta leer un mensaje estructurado de un body de
// error; devuelve "" cuando el body no trae nada usable.
func errorMessageFromBody(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if strings.TrimSpace(payload.Error) != "" {
		return strings.TrimSpace(payload.Error)
	}
	return strings.TrimSpace(payload.Message)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
