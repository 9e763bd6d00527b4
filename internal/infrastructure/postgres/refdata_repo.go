package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/harshitrathi14/LOS-LMS/pkg/bizcal"
	pkgpostgres "github.com/harshitrathi14/LOS-LMS/pkg/postgres"
)

// calendarTTL bounds staleness of the per-process calendar cache; reference
// data is read-mostly and never mutates during an operation.
const calendarTTL = 5 * time.Minute

type cachedCalendar struct {
	cal      *bizcal.Calendar
	loadedAt time.Time
}

// refDataCache is shared across transactions within one process.
type refDataCache struct {
	mu        sync.RWMutex
	calendars map[uuid.UUID]cachedCalendar
}

func newRefDataCache() *refDataCache {
	return &refDataCache{calendars: make(map[uuid.UUID]cachedCalendar)}
}

// Invalidate drops every cached calendar; the explicit refresh hook.
func (c *refDataCache) Invalidate() {
	c.mu.Lock()
	c.calendars = make(map[uuid.UUID]cachedCalendar)
	c.mu.Unlock()
}

// RefDataRepo serves holiday calendars and benchmark rate history.
type RefDataRepo struct {
	q     pkgpostgres.Querier
	cache *refDataCache
}

// Calendar loads a holiday calendar, caching it per process.
func (r *RefDataRepo) Calendar(ctx context.Context, id uuid.UUID) (*bizcal.Calendar, error) {
	r.cache.mu.RLock()
	if cached, ok := r.cache.calendars[id]; ok && time.Since(cached.loadedAt) < calendarTTL {
		r.cache.mu.RUnlock()
		return cached.cal, nil
	}
	r.cache.mu.RUnlock()

	var weeklyOffMask int
	err := r.q.QueryRow(ctx, `SELECT weekly_off_mask FROM holiday_calendars WHERE id = $1`, id).
		Scan(&weeklyOffMask)
	if errors.Is(err, pgx.ErrNoRows) {
		// Unknown calendar: weekend-only adjustment.
		cal := bizcal.New(nil, nil)
		r.store(id, cal)
		return cal, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query calendar: %w", err)
	}

	rows, err := r.q.Query(ctx, `SELECT holiday_date FROM holidays WHERE calendar_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("query holidays: %w", err)
	}
	defer rows.Close()

	var holidays []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan holiday: %w", err)
		}
		holidays = append(holidays, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var weeklyOff []time.Weekday
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if weeklyOffMask&(1<<uint(wd)) != 0 {
			weeklyOff = append(weeklyOff, wd)
		}
	}

	cal := bizcal.New(weeklyOff, holidays)
	r.store(id, cal)
	return cal, nil
}

func (r *RefDataRepo) store(id uuid.UUID, cal *bizcal.Calendar) {
	r.cache.mu.Lock()
	r.cache.calendars[id] = cachedCalendar{cal: cal, loadedAt: time.Now()}
	r.cache.mu.Unlock()
}

// BenchmarkRateOn returns the latest publication on or before asOf.
func (r *RefDataRepo) BenchmarkRateOn(ctx context.Context, benchmarkID uuid.UUID, asOf time.Time) (decimal.Decimal, bool, error) {
	var rate decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT rate FROM benchmark_rates
		WHERE benchmark_id = $1 AND effective_date <= $2
		ORDER BY effective_date DESC
		LIMIT 1`, benchmarkID, asOf).Scan(&rate)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("query benchmark rate: %w", err)
	}
	return rate, true, nil
}
