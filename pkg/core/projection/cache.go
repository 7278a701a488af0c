package projection

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"wealth_planner/pkg/models"
)

// CachedEngine memoises projections keyed by a hash of items and
// assumptions. The engine is pure, so a hit is always equivalent to a
// recomputation; the cache only saves work on rapid repeated requests.
type CachedEngine struct {
	engine *Engine
	cache  *gocache.Cache
}

// NewCachedEngine wraps engine with a cache whose entries expire after ttl.
func NewCachedEngine(engine *Engine, ttl time.Duration) *CachedEngine {
	if engine == nil {
		engine = NewEngine()
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedEngine{
		engine: engine,
		cache:  gocache.New(ttl, 2*ttl),
	}
}

// Project returns cached rows when the same request was seen recently.
// Callers receive their own copy and may modify it freely.
func (c *CachedEngine) Project(items []models.BalanceSheetItem, assumptions Assumptions) []models.ProjectionRow {
	a := assumptions.Sanitized()
	key, err := CacheKey(items, a)
	if err != nil {
		return c.engine.Project(items, a)
	}

	if hit, ok := c.cache.Get(key); ok {
		if rows, ok := hit.([]models.ProjectionRow); ok {
			return cloneRows(rows)
		}
	}

	rows := c.engine.Project(items, a)
	c.cache.SetDefault(key, cloneRows(rows))
	return rows
}

// Len reports the number of live cache entries.
func (c *CachedEngine) Len() int {
	return c.cache.ItemCount()
}

// Flush drops every cached projection.
func (c *CachedEngine) Flush() {
	c.cache.Flush()
}

// CacheKey hashes items and assumptions into a stable key.
// encoding/json sorts map keys, so equal inputs give equal keys.
func CacheKey(items []models.BalanceSheetItem, assumptions Assumptions) (string, error) {
	payload, err := json.Marshal(struct {
		Items       []models.BalanceSheetItem `json:"items"`
		Assumptions Assumptions               `json:"assumptions"`
	}{items, assumptions})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

func cloneRows(rows []models.ProjectionRow) []models.ProjectionRow {
	out := make([]models.ProjectionRow, len(rows))
	for i, row := range rows {
		row.Series = append([]float64(nil), row.Series...)
		out[i] = row
	}
	return out
}
