// Package settings reads the admin settings document, applying
// defaults for any key the file does not carry.
package settings

import (
	"encoding/json"
	"os"
)

type Settings struct {
	MinOrderQuantity int    `json:"min_order_quantity"`
	TelegramEnabled  bool   `json:"telegram_enabled"`
	EmailEnabled     bool   `json:"email_enabled"`
	SiteTitle        string `json:"site_title"`
	ContactPhone     string `json:"contact_phone"`
	ContactEmail     string `json:"contact_email"`
}

func Defaults() Settings {
	return Settings{
		MinOrderQuantity: 100,
		TelegramEnabled:  true,
		EmailEnabled:     true,
		SiteTitle:        "METRIKS",
		ContactPhone:     "+7 (900) 199-39-69",
		ContactEmail:     "metriks66@bk.ru",
	}
}

type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load overlays the file's keys onto the defaults. An absent or
// unparsable file yields the defaults unchanged.
func (s *Store) Load() Settings {
	out := Defaults()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return out
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return Defaults()
	}
	return out
}
