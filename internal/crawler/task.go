package crawler

import (
	"strings"

	"github.com/law-makers/contractors/internal/scraper"
	"github.com/law-makers/contractors/pkg/models"
	"github.com/rs/zerolog/log"
)

// task is the mutable state of one crawl.
type task struct {
	contractor *models.Contractor
	frontier   *frontier
	pending    map[models.FieldKind]bool
	scrapers   scraper.Set
	state      State
	visited    int
}

func newTask(c *models.Contractor, fields []models.FieldKind, scrapers scraper.Set) *task {
	pending := make(map[models.FieldKind]bool, len(fields))
	for _, kind := range fields {
		if _, ok := scrapers[kind]; !ok {
			log.Warn().Str("field", kind.String()).Msg("No scraper registered for field")
			continue
		}
		pending[kind] = true
	}
	return &task{
		contractor: c,
		frontier:   newFrontier(),
		pending:    pending,
		scrapers:   scrapers,
		state:      StateInit,
	}
}

// pendingKinds returns the unresolved fields in a stable order.
func (t *task) pendingKinds() []models.FieldKind {
	kinds := make([]models.FieldKind, 0, len(t.pending))
	for _, kind := range models.AllFields() {
		if t.pending[kind] {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// frontier is an insertion-ordered set of URLs. A URL is accepted at most once,
// so a popped URL can never come back.
type frontier struct {
	queue []string
	seen  map[string]bool
}

func newFrontier() *frontier {
	return &frontier{seen: make(map[string]bool)}
}

// push queues url unless it was seen before. URLs differing only by a
// trailing slash are the same page.
func (f *frontier) push(url string) {
	key := strings.TrimRight(url, "/")
	if url == "" || f.seen[key] {
		return
	}
	f.seen[key] = true
	f.queue = append(f.queue, url)
}

func (f *frontier) pop() string {
	url := f.queue[0]
	f.queue = f.queue[1:]
	return url
}

func (f *frontier) empty() bool {
	return len(f.queue) == 0
}
