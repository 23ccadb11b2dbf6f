package notify

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// maxRoutes bounds the click-routing table. Unclicked notifications never
// consume their mapping, so old routes are evicted as new ones arrive.
const maxRoutes = 64

// Dispatcher owns outgoing notifications and their click routing. Each
// notification gets an id mapped to its target URL; a click consumes the
// mapping and opens the URL. Clicks on unknown, already-consumed, or
// evicted ids just dismiss.
type Dispatcher struct {
	mu     sync.Mutex
	routes map[string]string
	order  []string // insertion order, for eviction
	seq    int

	send func(title, body string) error
	open func(url string) error
	log  *zap.Logger
}

func NewDispatcher(log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		routes: make(map[string]string),
		send:   Send,
		open:   OpenBrowser,
		log:    log,
	}
}

// NewTestDispatcher injects the delivery and open functions.
func NewTestDispatcher(send func(title, body string) error, open func(url string) error) *Dispatcher {
	d := NewDispatcher(nil)
	d.send = send
	d.open = open
	return d
}

// Notify delivers an OS notification and registers its click target.
// Returns the notification id. A delivery failure is logged, not fatal; the
// route is still registered so a later click can route.
func (d *Dispatcher) Notify(title, body, url string) string {
	d.mu.Lock()
	d.seq++
	id := fmt.Sprintf("notif-%d", d.seq)
	if url != "" {
		d.routes[id] = url
		d.order = append(d.order, id)
		d.evictLocked()
	}
	d.mu.Unlock()

	if err := d.send(title, body); err != nil {
		d.log.Warn("notification delivery failed", zap.String("title", title), zap.Error(err))
	}
	return id
}

// evictLocked drops the oldest routes once the table exceeds maxRoutes, and
// compacts the order queue of ids already consumed by Click or Dismiss.
// Caller holds d.mu.
func (d *Dispatcher) evictLocked() {
	for len(d.order) > 0 && len(d.routes) > maxRoutes {
		oldest := d.order[0]
		d.order = d.order[1:]
		delete(d.routes, oldest)
	}
	if len(d.order) > maxRoutes*2 {
		kept := d.order[:0]
		for _, id := range d.order {
			if _, ok := d.routes[id]; ok {
				kept = append(kept, id)
			}
		}
		d.order = kept
	}
}

// Click routes a notification click: opens the mapped URL and consumes the
// mapping. Returns false when the id has no mapping (already consumed or
// never routed), which callers treat as a plain dismiss.
func (d *Dispatcher) Click(id string) bool {
	d.mu.Lock()
	url, ok := d.routes[id]
	if ok {
		delete(d.routes, id)
	}
	d.mu.Unlock()

	if !ok {
		return false
	}
	if err := d.open(url); err != nil {
		d.log.Warn("failed to open url", zap.String("url", url), zap.Error(err))
	}
	return true
}

// Dismiss drops the mapping for a notification without routing it.
func (d *Dispatcher) Dismiss(id string) {
	d.mu.Lock()
	delete(d.routes, id)
	d.mu.Unlock()
}
