package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"leanbot-chat/internal/config"
	"leanbot-chat/internal/domain"
	"leanbot-chat/internal/notify"
	"leanbot-chat/internal/service"
	"leanbot-chat/internal/webhook"
)

// Cliente de terminal para probar el chat sin levantar el servidor: misma
// tubería de envío, mismos límites, con el goteo de texto impreso en vivo.
func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	client := webhook.NewHTTPClient(cfg.WebhookURL, cfg.WebhookTimeout, logger)
	toasts := &notify.Collector{}
	svc := service.NewChatService(
		logger,
		client,
		service.NewSlidingWindowLimiter(cfg.RateLimitWindow, cfg.RateLimitMax),
		service.NewConversationStore(),
		toasts,
		"",
	)

	fmt.Printf("---- Chat (%s) — escribe 'salir' para terminar ----\n", svc.SessionID())
	for {
		fmt.Print("Tu > ")
		text, err := reader.ReadString('\n')
		if err != nil {
			log.Fatalf("leer input: %v", err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if strings.EqualFold(text, "salir") || strings.EqualFold(text, "exit") {
			fmt.Println("Saliendo del chat...")
			return
		}

		bot, err := svc.Send(ctx, text)
		printToasts(toasts)
		if err != nil {
			var rl *service.RateLimitError
			if errors.As(err, &rl) {
				continue
			}
		}
		if bot == nil {
			continue
		}

		printBotMessage(cfg, bot)
	}
}

// printBotMessage imprime la respuesta: las cards de productos y pedidos van
// enteras, el texto plano gotea con el mismo ritmo que usa el widget.
func printBotMessage(cfg *config.Config, bot *domain.Message) {
	switch bot.Kind {
	case domain.KindProductList:
		fmt.Printf("Bot > %s\n", bot.Content)
		for _, p := range bot.Products {
			fmt.Printf("  [%d] %s — %.2f\n", p.ID, p.Name, p.Price)
		}
	case domain.KindOrderStatus:
		fmt.Printf("Bot > %s\n", bot.Content)
		for _, o := range bot.Orders {
			fmt.Printf("  Pedido %s: %s", o.OrderID, o.Status)
			if o.ExpectedDeliveryDate != "" {
				fmt.Printf(" (entrega %s)", o.ExpectedDeliveryDate)
			}
			fmt.Println()
		}
	default:
		fmt.Print("Bot > ")
		reveal := service.NewTextReveal(bot.Content, cfg.RevealChunkSize, cfg.RevealDelay, cfg.RevealEnabled)
		printed := 0
		for partial := range reveal.Updates() {
			fmt.Print(partial[printed:])
			printed = len(partial)
		}
		fmt.Println()
	}
}

func printToasts(toasts *notify.Collector) {
	for _, n := range toasts.Drain() {
		fmt.Printf("[%s] %s: %s\n", n.Severity, n.Title, n.Description)
	}
}
