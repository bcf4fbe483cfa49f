package notify

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"MetizStore/internal/orders"
)

const (
	smtpTimeout = 10 * time.Second

	// The mail body carries only an excerpt of the raw cart payload.
	itemsExcerptLen = 500
)

type Mailer struct {
	server    string
	port      int
	username  string
	password  string
	recipient string
	log       *zap.Logger
}

func NewMailer(server string, port int, username, password, recipient string, log *zap.Logger) *Mailer {
	return &Mailer{
		server:    server,
		port:      port,
		username:  username,
		password:  password,
		recipient: recipient,
		log:       log,
	}
}

// Configured reports whether a sending credential is present; the
// health endpoint exposes this.
func (m *Mailer) Configured() bool {
	return m.password != ""
}

// SendOrder makes one delivery attempt and reports whether it
// succeeded. Failures are logged, never propagated: the submission
// flow treats a failed channel as a qualified success.
func (m *Mailer) SendOrder(o orders.Order) bool {
	if !m.Configured() {
		return false
	}
	if err := m.send(o); err != nil {
		m.log.Warn("email send failed", zap.Error(err))
		return false
	}
	return true
}

func (m *Mailer) send(o orders.Order) error {
	addr := net.JoinHostPort(m.server, strconv.Itoa(m.port))

	conn, err := net.DialTimeout("tcp", addr, smtpTimeout)
	if err != nil {
		return err
	}
	_ = conn.SetDeadline(time.Now().Add(smtpTimeout))

	c, err := smtp.NewClient(conn, m.server)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.server}); err != nil {
			return err
		}
	}

	auth := smtp.PlainAuth("", m.username, m.password, m.server)
	if err := c.Auth(auth); err != nil {
		return err
	}

	if err := c.Mail(m.username); err != nil {
		return err
	}
	if err := c.Rcpt(m.recipient); err != nil {
		return err
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(m.message(o)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return c.Quit()
}

func (m *Mailer) message(o orders.Order) []byte {
	items := string(o.Items)
	if len(items) > itemsExcerptLen {
		// The cart text is usually Cyrillic; cut on a rune boundary so
		// the excerpt never carries a split multibyte sequence.
		cut := itemsExcerptLen
		for cut > 0 && !utf8.RuneStart(items[cut]) {
			cut--
		}
		items = items[:cut] + "..."
	}

	body := fmt.Sprintf(
		"New order request:\nName: %s\nEmail: %s\nPhone: %s\nQuantity: %d pcs\n\nItems: %s\n",
		o.Name, o.Email, o.Phone, o.TotalQuantity, items,
	)

	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: New order request - %d pcs\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		m.username, m.recipient, o.TotalQuantity, body,
	)
	return []byte(msg)
}
