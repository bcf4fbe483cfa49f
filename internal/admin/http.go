// Package admin serves the cookie-gated panel for hiding and editing
// products and reviewing submitted order requests.
package admin

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"MetizStore/internal/catalog"
	"MetizStore/internal/notify"
	"MetizStore/internal/orders"
	"MetizStore/internal/settings"
	"MetizStore/pkg/kit"
)

const (
	sessionCookie = "admin_session"
	cookieMaxAge  = 86400 // 24h

	ordersPageLimit = 50

	loginLimitPerMin = 5
	limitWindowSecs  = 60
)

// Credentials is the single admin account. When PasswordHash is set it
// takes precedence over the plain Password.
type Credentials struct {
	Username     string
	Password     string
	PasswordHash string
}

func (c Credentials) verify(username, password string) bool {
	if subtle.ConstantTimeCompare([]byte(username), []byte(c.Username)) != 1 {
		return false
	}
	if c.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil
	}
	if c.Password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(c.Password)) == 1
}

type Server struct {
	Catalog  *catalog.Store
	Orders   *orders.Log
	Settings *settings.Store
	Telegram *notify.Telegram
	Sessions *Sessions
	Creds    Credentials
	Log      *zap.Logger

	// NotFound renders unmatched panel paths. The public site owns the
	// themed error pages, so the composition root passes its renderer in.
	NotFound http.HandlerFunc
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	loginLimiter := kit.NewIPRateLimiter(loginLimitPerMin, limitWindowSecs)

	if s.NotFound != nil {
		r.NotFound(s.NotFound)
	}

	// Mounted under /admin by the composition root; paths here are
	// relative to the mount point.
	r.Get("/login", s.loginPage)
	r.With(loginLimiter.Middleware).Post("/login", s.login)
	r.Get("/logout", s.logout)

	r.Group(func(gr chi.Router) {
		gr.Use(s.requireAdmin)

		gr.Get("/", s.dashboard)
		gr.Get("/products", s.productsPage)
		gr.Get("/products/hidden", s.hiddenProductsPage)
		gr.Get("/orders", s.ordersPage)
		gr.Get("/settings", s.settingsPage)

		gr.Post("/test-telegram", s.testTelegram)
		gr.Post("/refresh-products", s.refreshProducts)
		gr.Post("/products/hide", s.hideProduct)
		gr.Post("/products/show", s.showProduct)
		gr.Get("/products/edit/{id}", s.editProductPage)
		gr.Post("/products/update/{id}", s.updateProduct)
		gr.Post("/products/add", s.addProduct)
	})

	return r
}

// requireAdmin redirects unauthenticated requests to the login page.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(sessionCookie)
		if err != nil || c.Value == "" {
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}
		if _, ok := s.Sessions.Lookup(c.Value); !ok {
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loginPage(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, "login.html.tmpl", map[string]any{})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, "login.html.tmpl", map[string]any{
			"Error": "Malformed form data",
		})
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	if !s.Creds.verify(username, password) {
		s.render(w, http.StatusOK, "login.html.tmpl", map[string]any{
			"Error": "Invalid username or password",
		})
		return
	}

	token := s.Sessions.Create(username)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   cookieMaxAge,
	})
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		s.Sessions.Delete(c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

func (s *Server) dashboard(w http.ResponseWriter, _ *http.Request) {
	st := s.Orders.Stats()

	s.render(w, http.StatusOK, "dashboard.html.tmpl", map[string]any{
		"TotalProducts":   s.Catalog.Count(),
		"VisibleProducts": len(s.Catalog.ListVisible()),
		"HiddenProducts":  len(s.Catalog.ListHidden()),
		"OrderStats":      st,
	})
}

func (s *Server) productsPage(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, "products.html.tmpl", map[string]any{
		"Products": s.Catalog.All(),
	})
}

func (s *Server) hiddenProductsPage(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, "products.html.tmpl", map[string]any{
		"Products":     s.Catalog.ListHidden(),
		"IsHiddenPage": true,
	})
}

func (s *Server) ordersPage(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, "orders.html.tmpl", map[string]any{
		"Orders": s.Orders.ListRecent(ordersPageLimit),
	})
}

func (s *Server) settingsPage(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, "settings.html.tmpl", map[string]any{
		"Settings": s.Settings.Load(),
	})
}

func (s *Server) testTelegram(w http.ResponseWriter, r *http.Request) {
	if s.Telegram == nil {
		kit.WriteResult(w, http.StatusOK, false, "Telegram service is not configured.")
		return
	}
	if s.Telegram.SendTest(r.Context()) {
		kit.WriteResult(w, http.StatusOK, true, "Test message sent to Telegram.")
		return
	}
	kit.WriteResult(w, http.StatusOK, false, "Failed to send the test message.")
}

type refreshResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	ProductsCount int    `json:"products_count"`
}

func (s *Server) refreshProducts(w http.ResponseWriter, _ *http.Request) {
	n := s.Catalog.Refresh()
	kit.WriteJSON(w, http.StatusOK, refreshResponse{
		Success:       true,
		Message:       fmt.Sprintf("Product cache refreshed, %d products loaded", n),
		ProductsCount: n,
	})
}

func (s *Server) hideProduct(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PostFormValue("product_id"))

	if _, err := s.Catalog.Get(id); err != nil {
		kit.WriteResult(w, http.StatusNotFound, false, "Product not found")
		return
	}
	if s.Catalog.IsHidden(id) {
		kit.WriteResult(w, http.StatusBadRequest, false, "Product is already hidden")
		return
	}

	if err := s.Catalog.Hide(id); err != nil {
		s.Log.Error("hide product failed", zap.String("id", id), zap.Error(err))
		kit.WriteResult(w, http.StatusInternalServerError, false, "Failed to hide the product")
		return
	}
	kit.WriteResult(w, http.StatusOK, true, "Product hidden from the site")
}

func (s *Server) showProduct(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PostFormValue("product_id"))

	if _, err := s.Catalog.Get(id); err != nil {
		kit.WriteResult(w, http.StatusNotFound, false, "Product not found")
		return
	}
	if !s.Catalog.IsHidden(id) {
		kit.WriteResult(w, http.StatusBadRequest, false, "Product is not hidden")
		return
	}

	if err := s.Catalog.Show(id); err != nil {
		s.Log.Error("show product failed", zap.String("id", id), zap.Error(err))
		kit.WriteResult(w, http.StatusInternalServerError, false, "Failed to show the product")
		return
	}
	kit.WriteResult(w, http.StatusOK, true, "Product is visible on the site again")
}

func (s *Server) editProductPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := s.Catalog.Get(id)
	if err != nil {
		kit.WriteResult(w, http.StatusNotFound, false, "Product not found")
		return
	}

	s.render(w, http.StatusOK, "edit_product.html.tmpl", map[string]any{
		"Product": p,
	})
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := s.Catalog.Get(id); err != nil {
		kit.WriteResult(w, http.StatusNotFound, false, "Product not found")
		return
	}

	fields, err := productFields(r)
	if err != nil {
		kit.WriteResult(w, http.StatusBadRequest, false, err.Error())
		return
	}

	if err := s.Catalog.Update(id, fields); err != nil {
		if err == catalog.ErrNotFound {
			kit.WriteResult(w, http.StatusNotFound, false, "Product not found")
			return
		}
		s.Log.Error("update product failed", zap.String("id", id), zap.Error(err))
		kit.WriteResult(w, http.StatusInternalServerError, false, "Failed to update the product")
		return
	}
	kit.WriteResult(w, http.StatusOK, true, "Product updated")
}

type addResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ProductID string `json:"product_id"`
}

func (s *Server) addProduct(w http.ResponseWriter, r *http.Request) {
	fields, err := productFields(r)
	if err != nil {
		kit.WriteResult(w, http.StatusBadRequest, false, err.Error())
		return
	}

	id, err := s.Catalog.Append(fields)
	if err != nil {
		s.Log.Error("add product failed", zap.Error(err))
		kit.WriteResult(w, http.StatusInternalServerError, false, "Failed to add the product")
		return
	}

	kit.WriteJSON(w, http.StatusOK, addResponse{
		Success:   true,
		Message:   fmt.Sprintf("Product %q added with id %s", fields[catalog.ColTitle], id),
		ProductID: id,
	})
}

// productFields maps the admin form onto table columns. Name and
// category are required; everything else defaults to empty.
func productFields(r *http.Request) (map[string]string, error) {
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("malformed form data")
	}

	name := strings.TrimSpace(r.PostFormValue("name"))
	if name == "" {
		return nil, fmt.Errorf("product name is required")
	}
	category := strings.TrimSpace(r.PostFormValue("category"))
	if category == "" {
		return nil, fmt.Errorf("product category is required")
	}

	description := strings.TrimSpace(r.PostFormValue("description"))

	return map[string]string{
		catalog.ColTitle:          name,
		catalog.ColCategory:       category,
		catalog.ColBrand:          strings.TrimSpace(r.PostFormValue("brand")),
		catalog.ColSKU:            strings.TrimSpace(r.PostFormValue("sku")),
		catalog.ColMark:           strings.TrimSpace(r.PostFormValue("standard")),
		catalog.ColDescription:    description,
		catalog.ColText:           description,
		catalog.ColPhoto:          strings.TrimSpace(r.PostFormValue("image")),
		catalog.ColMaterial:       strings.TrimSpace(r.PostFormValue("material")),
		catalog.ColApplication:    strings.TrimSpace(r.PostFormValue("application")),
		catalog.ColAnalogs:        strings.TrimSpace(r.PostFormValue("analogs")),
		catalog.ColDiameterLength: strings.TrimSpace(r.PostFormValue("diameter_length")),
		catalog.ColDrive:          strings.TrimSpace(r.PostFormValue("drive")),
		catalog.ColWeight:         strings.TrimSpace(r.PostFormValue("weight")),
		catalog.ColLength:         strings.TrimSpace(r.PostFormValue("length")),
		catalog.ColWidth:          strings.TrimSpace(r.PostFormValue("width")),
		catalog.ColHeight:         strings.TrimSpace(r.PostFormValue("height")),
	}, nil
}
