package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type countingGenerator struct {
	mu    sync.Mutex
	calls []int
}

func (g *countingGenerator) Generate(_ context.Context, weeksAhead int) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, weeksAhead)
	return 3, nil
}

func (g *countingGenerator) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

type recordingPayroll struct {
	months []string
	fail   string
}

func (p *recordingPayroll) RecalculateMonth(_ context.Context, ym string) (int, error) {
	p.months = append(p.months, ym)
	if ym == p.fail {
		return 0, errors.New("store unavailable")
	}
	return 2, nil
}

func TestSchedulerGeneratesOnStart(t *testing.T) {
	gen := &countingGenerator{}
	s := NewScheduler(gen, &recordingPayroll{}, 4, "0 3 * * *", zaptest.NewLogger(t))

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool { return gen.count() == 1 }, time.Second, 10*time.Millisecond)
	s.Stop()

	assert.Equal(t, []int{4}, gen.calls)
}

func TestSchedulerRejectsBadCron(t *testing.T) {
	s := NewScheduler(&countingGenerator{}, &recordingPayroll{}, 4, "whenever", zaptest.NewLogger(t))
	assert.Error(t, s.Start(context.Background()))
}

func TestPayrollMonths(t *testing.T) {
	assert.Equal(t, []string{"2025-03"}, payrollMonths(time.Date(2025, 3, 15, 3, 0, 0, 0, time.UTC)))
	assert.Equal(t, []string{"2025-02", "2025-03"}, payrollMonths(time.Date(2025, 3, 1, 3, 0, 0, 0, time.UTC)))
	assert.Equal(t, []string{"2024-12", "2025-01"}, payrollMonths(time.Date(2025, 1, 1, 3, 0, 0, 0, time.UTC)))
}

func TestRecalculatePayrollContinuesAfterFailure(t *testing.T) {
	p := &recordingPayroll{fail: "2025-02"}
	s := NewScheduler(&countingGenerator{}, p, 4, "0 3 * * *", zaptest.NewLogger(t))
	s.now = func() time.Time { return time.Date(2025, 3, 1, 3, 0, 0, 0, time.UTC) }

	s.recalculatePayroll(context.Background())
	assert.Equal(t, []string{"2025-02", "2025-03"}, p.months)
}

type fakePurger struct{ calls int }

func (p *fakePurger) Purge() int {
	p.calls++
	return 1
}

func TestPurgeCache(t *testing.T) {
	p := &fakePurger{}
	s := NewScheduler(&countingGenerator{}, &recordingPayroll{}, 4, "0 3 * * *", zaptest.NewLogger(t)).WithCachePurge(p)

	s.purgeCache()
	assert.Equal(t, 1, p.calls)
}
