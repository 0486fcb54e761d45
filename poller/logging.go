package poller

import (
	"sync"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
)

var (
	// Global structured logger, used when no WithLogger option is provided
	defaultLogger struct {
		sync.RWMutex
		logger *logiface.Logger[logiface.Event]
	}

	// swallowedLimiter caps how often errors that are deliberately ignored
	// (wake writes, wake-write closes) reach the logger, per category.
	swallowedLimiter = catrate.NewLimiter(map[time.Duration]int{
		time.Second: 5,
		time.Minute: 60,
	})
)

// SetDefaultLogger sets the logger used by pollers created without
// WithLogger. Pass nil to disable.
func SetDefaultLogger(logger *logiface.Logger[logiface.Event]) {
	defaultLogger.Lock()
	defer defaultLogger.Unlock()
	defaultLogger.logger = logger
}

func getDefaultLogger() *logiface.Logger[logiface.Event] {
	defaultLogger.RLock()
	defer defaultLogger.RUnlock()
	return defaultLogger.logger
}

// swallowedCategory identifies a rate limited log site.
type swallowedCategory struct {
	op string
	id uint64
}

// logSwallowed logs an ignored error at debug level, subject to rate limiting.
func logSwallowed(logger *logiface.Logger[logiface.Event], id uint64, op string, fd int, err error) {
	b := logger.Debug()
	if !b.Enabled() {
		return
	}
	if _, ok := swallowedLimiter.Allow(swallowedCategory{op: op, id: id}); !ok {
		b.Release()
		return
	}
	b.Uint64(`poller`, id).
		Str(`op`, op).
		Int(`fd`, fd).
		Err(err).
		Log(`ignored error`)
}
