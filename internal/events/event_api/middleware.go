package event_api

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"evento/internal/auth"
	"evento/internal/logger"
	"evento/internal/utils"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// RequestLogger logs one API line per request with status and latency.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.LogAPI(r.Method, r.URL.Path, status, time.Since(start).Round(time.Microsecond))
		})
	}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// UserRateLimiter throttles each authenticated user with its own token
// bucket. Buckets idle for longer than idleTTL are dropped.
type UserRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
	log       *logger.Logger
}

// NewUserRateLimiter returns a limiter allowing perSecond requests with the
// given burst. A non-positive perSecond disables limiting.
func NewUserRateLimiter(perSecond float64, burst int, log *logger.Logger) *UserRateLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &UserRateLimiter{
		limiters: make(map[string]*limiterEntry),
		limit:    limit,
		burst:    burst,
		idleTTL:  10 * time.Minute,
		now:      time.Now,
		log:      log,
	}
}

func (l *UserRateLimiter) reserve(userID string) *rate.Reservation {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.idleTTL {
		for id, e := range l.limiters {
			if now.Sub(e.lastSeen) > l.idleTTL {
				delete(l.limiters, id)
			}
		}
		l.lastSweep = now
	}

	e, ok := l.limiters[userID]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[userID] = e
	}
	e.lastSeen = now
	return e.limiter.ReserveN(now, 1)
}

// Allow reports whether userID may proceed now, and if not, how long to wait.
func (l *UserRateLimiter) Allow(userID string) (bool, time.Duration) {
	res := l.reserve(userID)
	if !res.OK() {
		return false, time.Second
	}
	delay := res.DelayFrom(l.now())
	if delay == 0 {
		return true, 0
	}
	res.CancelAt(l.now())
	return false, delay
}

// Middleware must run after auth.Authenticate.
func (l *UserRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.UserFromContext(r.Context())
		ok, wait := l.Allow(user.ID)
		if !ok {
			l.log.LogSecurity("RATE_LIMITED", fmt.Sprintf("user %s on %s %s", user.ID, r.Method, r.URL.Path))
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			utils.WriteError(w, http.StatusTooManyRequests, "too many requests", fmt.Errorf("retry in %s", wait.Round(time.Millisecond)))
			return
		}
		next.ServeHTTP(w, r)
	})
}
