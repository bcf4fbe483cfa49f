// Package site serves the public storefront: catalog pages, the
// bulk-order submission API and the health endpoint.
package site

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"MetizStore/internal/catalog"
	"MetizStore/internal/notify"
	"MetizStore/internal/orders"
	"MetizStore/internal/settings"
	"MetizStore/pkg/kit"
)

type Server struct {
	Catalog  *catalog.Store
	Orders   *orders.Log
	Mailer   *notify.Mailer
	Telegram *notify.Telegram
	Settings *settings.Store
	Log      *zap.Logger

	MinOrderQuantity int
	Version          string
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.home)
	r.Get("/catalog", s.catalogPage)
	r.Get("/cart", s.cartPage)
	r.Get("/payment", s.paymentPage)
	r.Get("/product/{id}", s.productPage)

	r.Post("/api/submit-request", s.submitRequest)
	r.Get("/api/test-telegram", s.testTelegram)
	r.Get("/health", s.health)

	r.NotFound(s.ErrorPage(http.StatusNotFound))

	return r
}

func (s *Server) home(w http.ResponseWriter, _ *http.Request) {
	cfg := s.Settings.Load()
	s.render(w, http.StatusOK, "index.html.tmpl", map[string]any{
		"Settings": cfg,
	})
}

// catalogPage hands the full visible set to the client; pagination is
// client-side.
func (s *Server) catalogPage(w http.ResponseWriter, _ *http.Request) {
	visible := s.Catalog.ListVisible()

	s.render(w, http.StatusOK, "catalog.html.tmpl", map[string]any{
		"Products":   visible,
		"Categories": categoriesOf(visible),
		"Total":      len(visible),
	})
}

func (s *Server) cartPage(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, "cart.html.tmpl", map[string]any{
		"MinOrderQuantity": s.MinOrderQuantity,
	})
}

func (s *Server) paymentPage(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, "payment.html.tmpl", nil)
}

func (s *Server) productPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Hidden products 404 on the public surface without revealing that
	// the record still exists.
	if s.Catalog.IsHidden(id) {
		s.notFoundPage(w)
		return
	}

	p, err := s.Catalog.Get(id)
	if err != nil {
		s.notFoundPage(w)
		return
	}

	s.render(w, http.StatusOK, "product.html.tmpl", map[string]any{
		"Product": p,
	})
}

func (s *Server) submitRequest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		kit.WriteResult(w, http.StatusBadRequest, false, "malformed form data")
		return
	}

	qty, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("total_quantity")))
	if err != nil {
		kit.WriteResult(w, http.StatusBadRequest, false, "total_quantity must be a number")
		return
	}
	if qty < s.MinOrderQuantity {
		kit.WriteResult(w, http.StatusBadRequest, false,
			"Minimum order quantity is "+strconv.Itoa(s.MinOrderQuantity)+" pcs.")
		return
	}

	o := orders.Order{
		Name:          r.PostFormValue("name"),
		Email:         r.PostFormValue("email"),
		Phone:         r.PostFormValue("phone"),
		Items:         orders.RawItems(r.PostFormValue("items")),
		TotalQuantity: qty,
		Comment:       r.PostFormValue("comment"),
	}

	// The log write is best-effort: the contract prioritizes delivering
	// the notification, so a persistence failure is logged and the
	// submission still proceeds.
	o, err = s.Orders.Append(o)
	if err != nil {
		s.Log.Error("order log write failed", zap.Error(err))
	}

	cfg := s.Settings.Load()

	emailOK := false
	if cfg.EmailEnabled {
		emailOK = s.Mailer.SendOrder(o)
	}

	telegramOK := false
	if cfg.TelegramEnabled && s.Telegram != nil {
		telegramOK = s.Telegram.SendOrder(r.Context(), o)
	}

	kit.WriteResult(w, http.StatusOK, true, submitMessage(emailOK, telegramOK))
}

func submitMessage(emailOK, telegramOK bool) string {
	switch {
	case emailOK && telegramOK:
		return "Your request has been sent. You will get a Telegram confirmation."
	case emailOK:
		return "Your request has been sent. (Email delivered, Telegram unavailable.)"
	case telegramOK:
		return "Your request has been sent. (Telegram delivered, email unavailable.)"
	default:
		return "Your request has been recorded, but notifications are currently unavailable."
	}
}

func (s *Server) testTelegram(w http.ResponseWriter, r *http.Request) {
	if s.Telegram == nil {
		kit.WriteResult(w, http.StatusOK, false,
			"Telegram service is not configured. Check the environment variables.")
		return
	}

	if s.Telegram.SendTest(r.Context()) {
		kit.WriteResult(w, http.StatusOK, true, "Test message sent to Telegram.")
		return
	}
	kit.WriteResult(w, http.StatusOK, false, "Failed to send the test message.")
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   s.Version,
		"services": map[string]bool{
			"telegram":        s.Telegram != nil,
			"email":           s.Mailer.Configured(),
			"products_loaded": s.Catalog.Count() > 0,
		},
	})
}

func categoriesOf(products []catalog.Product) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}
