package pagecache

import "go.uber.org/zap"

// Structured logging follows the pack's transaction-manager precedent
// (other_examples' minisql TransactionManager logs begin/commit/
// rollback with go.uber.org/zap) rather than the teacher's plain
// stdlib `log` (teacher only reaches for `log` in code paths — the
// scheduler and the generic worker pool — that aren't transaction- or
// page-lifecycle logic). A nil logger falls back to a no-op logger,
// mirroring the nil-safety idiom the teacher uses throughout db.go.
func nopIfNil(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
