package styles

import (
	"strings"
	"sync"
)

// Inserter registers the sheets a component renders with.
// Implementations must tolerate the same sheet being inserted on every render.
type Inserter interface {
	Insert(sheets ...*Sheet)
}

// Collector gathers the sheets used while rendering one document.
// Each sheet is kept once, in the order it was first inserted.
type Collector struct {
	mu     sync.Mutex
	seen   map[string]struct{}
	sheets []*Sheet
}

// NewCollector returns an empty collector, normally one per request
func NewCollector() *Collector {
	return &Collector{seen: make(map[string]struct{})}
}

// Insert records sheets not seen before. Nil sheets are ignored.
func (c *Collector) Insert(sheets ...*Sheet) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.seen == nil {
		c.seen = make(map[string]struct{})
	}

	for _, s := range sheets {
		if s == nil {
			continue
		}
		if _, ok := c.seen[s.id]; ok {
			continue
		}
		c.seen[s.id] = struct{}{}
		c.sheets = append(c.sheets, s)
	}
}

// CSS joins the CSS of every collected sheet
func (c *Collector) CSS() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	parts := make([]string, 0, len(c.sheets))
	for _, s := range c.sheets {
		if s.css != "" {
			parts = append(parts, s.css)
		}
	}
	return strings.Join(parts, "\n")
}

// IDs lists collected sheet ids in insertion order
func (c *Collector) IDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, len(c.sheets))
	for i, s := range c.sheets {
		ids[i] = s.id
	}
	return ids
}

// Len is the number of distinct sheets collected
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sheets)
}
