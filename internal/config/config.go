// Package config loads runtime settings from the environment, with an
// optional .env file overlay for local development.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Host string
	Port string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	SMTPServer     string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	RecipientEmail string

	MinOrderQuantity int

	TelegramBotToken string
	TelegramChatIDs  []string

	AdminUsername     string
	AdminPassword     string
	AdminPasswordHash string

	ProductsCSV string
	DataDir     string

	CacheMaxAge   time.Duration
	WatchProducts bool

	MetricsEnabled bool
	MetricsToken   string
}

// Load reads the optional .env file and builds a Config from the
// environment. A missing .env is not an error.
func Load() *Config {
	_ = godotenv.Load()

	dataDir := getenv("DATA_DIR", ".")

	return &Config{
		Host: getenv("HOST", "0.0.0.0"),
		Port: getenv("PORT", "8000"),

		ReadTimeout:  seconds("READ_TIMEOUT", 30),
		WriteTimeout: seconds("WRITE_TIMEOUT", 30),
		IdleTimeout:  seconds("IDLE_TIMEOUT", 120),

		SMTPServer:     getenv("SMTP_SERVER", "smtp.bk.ru"),
		SMTPPort:       intenv("SMTP_PORT", 587),
		SMTPUsername:   os.Getenv("SMTP_USERNAME"),
		SMTPPassword:   os.Getenv("SMTP_PASSWORD"),
		RecipientEmail: os.Getenv("RECIPIENT_EMAIL"),

		MinOrderQuantity: intenv("MIN_ORDER_QUANTITY", 100),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatIDs:  splitList(os.Getenv("TELEGRAM_CHAT_IDS")),

		AdminUsername:     getenv("ADMIN_USERNAME", "admin"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),

		ProductsCSV: getenv("PRODUCTS_CSV", filepath.Join(dataDir, "products.csv")),
		DataDir:     dataDir,

		CacheMaxAge:   seconds("CACHE_MAX_AGE", 3600),
		WatchProducts: boolenv("WATCH_PRODUCTS", false),

		MetricsEnabled: boolenv("METRICS_ENABLED", false),
		MetricsToken:   os.Getenv("METRICS_TOKEN"),
	}
}

func (c *Config) Addr() string { return c.Host + ":" + c.Port }

func (c *Config) HiddenProductsFile() string {
	return filepath.Join(c.DataDir, "hidden_products.json")
}

func (c *Config) OrdersFile() string {
	return filepath.Join(c.DataDir, "orders.json")
}

func (c *Config) SettingsFile() string {
	return filepath.Join(c.DataDir, "settings.json")
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func intenv(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolenv(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func seconds(k string, def int) time.Duration {
	return time.Duration(intenv(k, def)) * time.Second
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
