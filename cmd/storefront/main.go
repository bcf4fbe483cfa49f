package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"MetizStore/internal/admin"
	"MetizStore/internal/catalog"
	"MetizStore/internal/config"
	"MetizStore/internal/notify"
	"MetizStore/internal/orders"
	"MetizStore/internal/settings"
	"MetizStore/internal/site"
	"MetizStore/pkg/kit"
)

const (
	service = "storefront"
	version = "1.0.0"
)

func main() {
	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	cfg := config.Load()

	store := catalog.NewStore(cfg.ProductsCSV, cfg.HiddenProductsFile(), cfg.CacheMaxAge, log)
	log.Info("product table loaded", zap.Int("products", store.Count()))

	if cfg.WatchProducts {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			if err := store.Watch(ctx); err != nil && err != context.Canceled {
				log.Warn("table watcher stopped", zap.Error(err))
			}
		}()
	}

	orderLog := orders.NewLog(cfg.OrdersFile(), log)
	settingsStore := settings.NewStore(cfg.SettingsFile())

	mailer := notify.NewMailer(cfg.SMTPServer, cfg.SMTPPort,
		cfg.SMTPUsername, cfg.SMTPPassword, cfg.RecipientEmail, log)

	telegram := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatIDs, log)
	if telegram == nil {
		log.Warn("telegram notifications disabled: bot token or chat ids missing")
	}

	public := &site.Server{
		Catalog:          store,
		Orders:           orderLog,
		Mailer:           mailer,
		Telegram:         telegram,
		Settings:         settingsStore,
		Log:              log,
		MinOrderQuantity: cfg.MinOrderQuantity,
		Version:          version,
	}

	panel := &admin.Server{
		Catalog:  store,
		Orders:   orderLog,
		Settings: settingsStore,
		Telegram: telegram,
		Sessions: admin.NewSessions(),
		Creds: admin.Credentials{
			Username:     cfg.AdminUsername,
			Password:     cfg.AdminPassword,
			PasswordHash: cfg.AdminPasswordHash,
		},
		Log:      log,
		NotFound: public.ErrorPage(http.StatusNotFound),
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer(log, public.ErrorPage(http.StatusInternalServerError)))
	r.Use(kit.Logging(log))

	registry := prometheus.NewRegistry()
	metrics := kit.NewMetrics(registry)
	r.Use(metrics.Middleware(service, kit.ChiRoutePatternOrPath))

	if cfg.MetricsEnabled {
		r.With(kit.MetricsAuth(cfg.MetricsToken)).
			Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Mount("/admin", panel.Routes())
	r.Mount("/", public.Routes())

	timeouts := kit.Timeouts{
		Read:  cfg.ReadTimeout,
		Write: cfg.WriteTimeout,
		Idle:  cfg.IdleTimeout,
	}
	if err := kit.RunHTTPServer(cfg.Addr(), r, timeouts, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
