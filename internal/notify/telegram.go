// Package notify holds the two outbound order-notification channels:
// a Telegram bot client and an SMTP mailer. Both make a single attempt
// with a short timeout; delivery failure is reported, never fatal.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"MetizStore/internal/orders"
)

const telegramTimeout = 10 * time.Second

type Telegram struct {
	apiURL  string
	chatIDs []string
	client  *http.Client
	log     *zap.Logger
}

// NewTelegram returns nil when the bot token or the recipient list is
// missing; callers treat a nil client as "service not configured".
func NewTelegram(botToken string, chatIDs []string, log *zap.Logger) *Telegram {
	if botToken == "" || len(chatIDs) == 0 {
		return nil
	}
	return &Telegram{
		apiURL:  "https://api.telegram.org/bot" + botToken,
		chatIDs: chatIDs,
		client:  &http.Client{Timeout: telegramTimeout},
		log:     log,
	}
}

// SendOrder notifies every configured chat about a new order and
// reports success when at least one send went through.
func (t *Telegram) SendOrder(ctx context.Context, o orders.Order) bool {
	return t.broadcast(ctx, orderMessage(o))
}

// SendTest sends a fixed connectivity-check message to every configured chat.
func (t *Telegram) SendTest(ctx context.Context) bool {
	return t.broadcast(ctx, "Connection test: the storefront bot is up.")
}

func (t *Telegram) broadcast(ctx context.Context, text string) bool {
	sent := 0
	for _, chatID := range t.chatIDs {
		if err := t.sendMessage(ctx, chatID, text); err != nil {
			t.log.Warn("telegram send failed",
				zap.String("chat_id", chatID), zap.Error(err))
			continue
		}
		sent++
	}
	return sent > 0
}

func (t *Telegram) sendMessage(ctx context.Context, chatID, text string) error {
	payload, err := json.Marshal(map[string]string{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.apiURL+"/sendMessage", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("telegram status %d", resp.StatusCode)
	}
	return nil
}

// orderMessage renders the order for the chat. A parsable cart is
// expanded into per-item lines with totals; anything else is passed
// through as submitted.
func orderMessage(o orders.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<b>New order request</b>\n\n")
	fmt.Fprintf(&b, "Customer: %s\n", o.Name)
	fmt.Fprintf(&b, "Email: %s\n", o.Email)
	fmt.Fprintf(&b, "Phone: %s\n", o.Phone)
	fmt.Fprintf(&b, "Total quantity: %d pcs\n\n", o.TotalQuantity)

	b.WriteString("Items:\n")
	cart := orders.ParseCart(string(o.Items))
	if len(cart) == 0 {
		b.WriteString(string(o.Items))
		b.WriteString("\n")
	} else {
		var total float64
		for _, it := range cart {
			fmt.Fprintf(&b, "- %s: %d pcs", it.Name, it.Quantity)
			if it.Price > 0 {
				line := float64(it.Quantity) * it.Price
				total += line
				fmt.Fprintf(&b, " x %.2f = %.2f", it.Price, line)
			}
			b.WriteString("\n")
		}
		if total > 0 {
			fmt.Fprintf(&b, "\n<b>Order total: %.2f</b>\n", total)
		}
	}

	if c := strings.TrimSpace(o.Comment); c != "" {
		fmt.Fprintf(&b, "\nComment: %s\n", c)
	}
	fmt.Fprintf(&b, "\nSubmitted: %s", o.Timestamp)

	return b.String()
}
