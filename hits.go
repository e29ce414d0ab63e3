package inkwell

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// hitsSaveInterval is the number of page hits between persisted snapshots.
const hitsSaveInterval = 5

const (
	totalHitsFile = "total_views.json"
	pageHitsFile  = "page_views.json"
)

// Hits tracks the total site hit count and per-route view counts, persisted
// to JSON files so counts survive restarts.
type Hits struct {
	dir     string
	log     zerolog.Logger
	total   atomic.Uint64
	mu      sync.Mutex
	pages   map[string]uint64
	unsaved int
}

type totalHitsFileData struct {
	Total uint64 `json:"total"`
}

// LoadHits reads persisted counters from dir, starting fresh when the files
// do not exist yet.
func LoadHits(dir string, log zerolog.Logger) *Hits {
	h := &Hits{
		dir:   dir,
		log:   log,
		pages: make(map[string]uint64),
	}
	var total totalHitsFileData
	if b, err := os.ReadFile(filepath.Join(dir, totalHitsFile)); err == nil {
		if err := json.Unmarshal(b, &total); err != nil {
			log.Warn().Err(err).Msg("Could not read total hit count, starting at zero")
		}
	}
	h.total.Store(total.Total)
	if b, err := os.ReadFile(filepath.Join(dir, pageHitsFile)); err == nil {
		if err := json.Unmarshal(b, &h.pages); err != nil {
			log.Warn().Err(err).Msg("Could not read page hit counts, starting at zero")
		}
	}
	return h
}

// Hit records a view of the given route and returns the route's count and
// the site total. Counters are persisted every hitsSaveInterval hits.
func (h *Hits) Hit(route string) (uint64, uint64) {
	total := h.total.Add(1)
	h.mu.Lock()
	h.pages[route]++
	page := h.pages[route]
	h.unsaved++
	save := h.unsaved >= hitsSaveInterval
	if save {
		h.unsaved = 0
	}
	h.mu.Unlock()
	if save {
		if err := h.Save(); err != nil {
			h.log.Error().Err(err).Msg("Could not persist hit counters")
		}
	}
	return page, total
}

// Pages returns a copy of the per-route counts.
func (h *Hits) Pages() map[string]uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]uint64, len(h.pages))
	for k, v := range h.pages {
		out[k] = v
	}
	return out
}

// Total returns the site-wide hit count.
func (h *Hits) Total() uint64 {
	return h.total.Load()
}

// Save writes both counter files.
func (h *Hits) Save() error {
	totalBytes, err := json.MarshalIndent(totalHitsFileData{Total: h.total.Load()}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(h.dir, totalHitsFile), totalBytes, 0644); err != nil {
		return err
	}
	h.mu.Lock()
	pageBytes, err := json.MarshalIndent(h.pages, "", "  ")
	h.mu.Unlock()
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(h.dir, pageHitsFile), pageBytes, 0644)
}
