package cache

import (
	"sync"
	"time"

	"github.com/Freeeeeet/tutor_clinic/internal/model"
)

// Entry снимок слотов месяца
type Entry struct {
	Key       string // YYYY-MM
	FetchedAt time.Time
	Slots     []*model.SessionSlot
}

// MonthCache кэш чтения слотов по месяцам с TTL.
// Источник истины — хранилище; кэш только ускоряет отображение.
type MonthCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]*Entry
	// поколение месяца растёт при каждой инвалидации
	gens map[string]uint64
}

// NewMonthCache создаёт кэш с указанным временем жизни записей
func NewMonthCache(ttl time.Duration) *MonthCache {
	return &MonthCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*Entry),
		gens:    make(map[string]uint64),
	}
}

// WithClock подменяет часы (для тестов)
func (c *MonthCache) WithClock(now func() time.Time) *MonthCache {
	c.now = now
	return c
}

// Get возвращает копию снимка, если он есть и не устарел
func (c *MonthCache) Get(key string) ([]*model.SessionSlot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists {
		return nil, false
	}
	if c.now().Sub(entry.FetchedAt) >= c.ttl {
		return nil, false
	}
	return cloneSlots(entry.Slots), true
}

// Set сохраняет снимок месяца
func (c *MonthCache) Set(key string, slots []*model.SessionSlot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &Entry{
		Key:       key,
		FetchedAt: c.now(),
		Slots:     cloneSlots(slots),
	}
}

// Begin возвращает поколение месяца; берётся до чтения из хранилища
func (c *MonthCache) Begin(key string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gens[key]
}

// SetIfCurrent сохраняет снимок, только если с Begin месяц не инвалидировали
func (c *MonthCache) SetIfCurrent(key string, gen uint64, slots []*model.SessionSlot) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gens[key] != gen {
		return false
	}
	c.entries[key] = &Entry{
		Key:       key,
		FetchedAt: c.now(),
		Slots:     cloneSlots(slots),
	}
	return true
}

// Invalidate удаляет снимки указанных месяцев
func (c *MonthCache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		delete(c.entries, key)
		c.gens[key]++
	}
}

// Purge удаляет устаревшие записи
func (c *MonthCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := c.now()
	for key, entry := range c.entries {
		if now.Sub(entry.FetchedAt) >= c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

func cloneSlots(slots []*model.SessionSlot) []*model.SessionSlot {
	if slots == nil {
		return nil
	}
	out := make([]*model.SessionSlot, len(slots))
	for i, s := range slots {
		out[i] = s.Clone()
	}
	return out
}
