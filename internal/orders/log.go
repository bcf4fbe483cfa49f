// Package orders keeps the append-only, size-bounded record of
// submitted bulk-order requests in a single JSON file.
package orders

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// maxRetained caps the file at the most recent entries; older ones are
// silently dropped on append.
const maxRetained = 100

// Order is one submitted bulk-order request. Items holds the cart
// exactly as the client serialized it; ListRecent parses it back.
type Order struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone"`
	Items         RawItems `json:"items"`
	TotalQuantity int      `json:"total_quantity"`
	Comment       string   `json:"comment"`
	Timestamp     string   `json:"timestamp"`
}

// RawItems is the cart payload as submitted. Older files may hold the
// cart as a literal JSON list instead of serialized text; both decode.
type RawItems string

func (r *RawItems) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*r = RawItems(s)
		return nil
	}
	*r = RawItems(b)
	return nil
}

func (r RawItems) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(r))
}

// CartItem is one parsed line of an order's Items payload.
type CartItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// OrderView is an Order with its Items normalized to a parsed list for
// the admin dashboard.
type OrderView struct {
	Order
	Cart []CartItem `json:"cart"`
}

// Stats aggregates the log for the admin dashboard.
type Stats struct {
	TotalOrders   int    `json:"total_orders"`
	TotalQuantity int    `json:"total_quantity"`
	LastOrder     *Order `json:"last_order"`
}

// Log serializes all reads and writes of the orders file behind one
// mutex; the file itself is rewritten in full on every append.
type Log struct {
	path string
	log  *zap.Logger

	mu sync.Mutex
}

func NewLog(path string, log *zap.Logger) *Log {
	return &Log{path: path, log: log}
}

// Append assigns the next id and timestamp, appends o and truncates the
// file to the most recent entries. Ids stay monotonic across the
// truncation window because the newest entry always survives it.
func (l *Log) Append(o Order) (Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	all := l.readAll()

	next := 1
	for _, e := range all {
		if e.ID >= next {
			next = e.ID + 1
		}
	}
	o.ID = next
	if o.Timestamp == "" {
		o.Timestamp = time.Now().Format(time.RFC3339)
	}

	all = append(all, o)
	if len(all) > maxRetained {
		all = all[len(all)-maxRetained:]
	}

	if err := l.writeAll(all); err != nil {
		return o, err
	}
	return o, nil
}

// ListRecent returns at most limit most-recent entries, oldest first,
// with each entry's cart normalized: a serialized list is parsed, and
// anything unparsable is coerced to an empty list.
func (l *Log) ListRecent(limit int) []OrderView {
	l.mu.Lock()
	all := l.readAll()
	l.mu.Unlock()

	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}

	out := make([]OrderView, 0, len(all))
	for _, o := range all {
		out = append(out, OrderView{Order: o, Cart: ParseCart(string(o.Items))})
	}
	return out
}

// Stats reports the total count, the summed requested quantities, and
// the entry with the maximal timestamp string as the last order. The
// RFC 3339 timestamps written here sort lexicographically, so the raw
// string comparison is sound.
func (l *Log) Stats() Stats {
	l.mu.Lock()
	all := l.readAll()
	l.mu.Unlock()

	st := Stats{TotalOrders: len(all)}
	for i := range all {
		st.TotalQuantity += all[i].TotalQuantity
		if st.LastOrder == nil || all[i].Timestamp > st.LastOrder.Timestamp {
			st.LastOrder = &all[i]
		}
	}
	return st
}

// ParseCart decodes a serialized cart list, returning an empty list for
// anything that is not valid JSON.
func ParseCart(items string) []CartItem {
	var cart []CartItem
	if err := json.Unmarshal([]byte(items), &cart); err != nil {
		return []CartItem{}
	}
	if cart == nil {
		cart = []CartItem{}
	}
	return cart
}

// readAll yields an empty list when the file is absent or unparsable.
func (l *Log) readAll() []Order {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil
	}

	var all []Order
	if err := json.Unmarshal(data, &all); err != nil {
		l.log.Warn("orders file unparsable", zap.Error(err))
		return nil
	}
	return all
}

func (l *Log) writeAll(all []Order) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(l.path, data, 0o644)
}
