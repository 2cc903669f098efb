package pagecache

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Monitor periodically logs buffer-pool occupancy so operators have
// something to watch without instrumenting every call site. Grounded
// on the teacher's Scheduler (internal/storage/scheduler.go), which
// wraps github.com/robfig/cron/v3 with the same Start()/Stop()
// lifecycle (there via cron.New(cron.WithSeconds()); here via plain
// cron.New(), the standard 5-field parser) to run catalog-registered
// SQL jobs; here there is exactly one job and it
// never touches pool state, only reads a snapshot, so the teacher's
// running-jobs tracking map has no counterpart.
type Monitor struct {
	pool *BufferPool
	cron *cron.Cron
	log  *zap.Logger
}

// NewMonitor builds a Monitor that snapshots pool's stats on the given
// cron schedule (standard 5-field cron, e.g. "*/10 * * * *"; use
// "@every 10s" for sub-minute periods, matching cron/v3's syntax).
func NewMonitor(pool *BufferPool, schedule string, logger *zap.Logger) (*Monitor, error) {
	m := &Monitor{
		pool: pool,
		cron: cron.New(),
		log:  nopIfNil(logger),
	}
	if _, err := m.cron.AddFunc(schedule, m.logSnapshot); err != nil {
		return nil, &DbError{Reason: "invalid monitor schedule: " + err.Error()}
	}
	return m, nil
}

func (m *Monitor) logSnapshot() {
	s := m.pool.snapshotStats()
	m.log.Info("buffer pool snapshot",
		zap.Int("cached_pages", s.cached),
		zap.Int("capacity", s.capacity),
		zap.Int("dirty_pages", s.dirty),
		zap.Time("at", time.Now()),
	)
}

// Start begins the periodic snapshot job.
func (m *Monitor) Start() { m.cron.Start() }

// Stop halts the scheduler, waiting for any in-flight snapshot to
// finish (it never blocks for long: logSnapshot only reads a
// snapshot, it never waits on a lock held across a blocking
// acquisition).
func (m *Monitor) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
}
