package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/fraudshield/admin-dashboard/internal/clock"
	"github.com/fraudshield/admin-dashboard/internal/service/scan"
	"github.com/fraudshield/admin-dashboard/internal/ui/toast"
	"github.com/fraudshield/admin-dashboard/pkg/metrics"
)

const (
	CookieName = "fs_session"
	contextKey = "session"
)

var ErrNoSession = errors.New("no session on request")

type Config struct {
	TTL          time.Duration
	CleanupEvery time.Duration
	SecureCookie bool
}

func DefaultConfig() Config {
	return Config{
		TTL:          30 * time.Minute,
		CleanupEvery: 5 * time.Minute,
	}
}

// Store maps session cookies to live sessions. Sessions idle for longer
// than the TTL are evicted and closed.
type Store struct {
	cfg       Config
	clock     clock.Clock
	scanner   scan.Scanner
	toastOpts []toast.Option
	metrics   *metrics.Metrics
	sessions  *cache.Cache
}

func NewStore(cfg Config, c clock.Clock, scanner scan.Scanner, m *metrics.Metrics, toastOpts ...toast.Option) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	if m == nil {
		m = metrics.Nop()
	}
	s := &Store{
		cfg:       cfg,
		clock:     c,
		scanner:   scanner,
		toastOpts: toastOpts,
		metrics:   m,
		sessions:  cache.New(cfg.TTL, cfg.CleanupEvery),
	}
	s.sessions.OnEvicted(func(_ string, v interface{}) {
		v.(*Session).Close()
		s.metrics.ActiveSessions.Dec()
	})
	return s
}

// Get returns the live session for id, refreshing its TTL.
func (s *Store) Get(id string) (*Session, bool) {
	v, ok := s.sessions.Get(id)
	if !ok {
		return nil, false
	}
	sess := v.(*Session)
	s.sessions.SetDefault(id, sess)
	return sess, true
}

// Create starts a new session with a fresh id.
func (s *Store) Create() *Session {
	opts := append([]toast.Option{
		toast.WithOnShow(func(t toast.Toast) {
			s.metrics.ToastsShown.WithLabelValues(string(t.Type)).Inc()
		}),
		toast.WithOnExpire(func(toast.Toast) {
			s.metrics.ToastsExpired.Inc()
		}),
	}, s.toastOpts...)
	sess := newSession(uuid.NewString(), s.clock, s.scanner, opts...)
	s.sessions.SetDefault(sess.ID, sess)
	s.metrics.ActiveSessions.Inc()
	return sess
}

// Delete closes and forgets a session.
func (s *Store) Delete(id string) {
	s.sessions.Delete(id)
}

// Len is the number of sessions, including expired ones not yet
// cleaned up.
func (s *Store) Len() int {
	return s.sessions.ItemCount()
}

// Flush closes every session. Called on shutdown.
func (s *Store) Flush() {
	for id := range s.sessions.Items() {
		s.sessions.Delete(id)
	}
}

// Middleware loads or creates the caller's session and installs its
// toast dispatcher as the request's notifier.
func (s *Store) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var sess *Session
		if id, err := c.Cookie(CookieName); err == nil {
			sess, _ = s.Get(id)
		}
		if sess == nil {
			sess = s.Create()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(CookieName, sess.ID, int(s.cfg.TTL/time.Second), "/", "", s.cfg.SecureCookie, true)
		}

		c.Set(contextKey, sess)
		c.Request = c.Request.WithContext(toast.NewContext(c.Request.Context(), sess.Toasts))
		c.Next()
	}
}

// FromGin returns the session installed by Middleware.
func FromGin(c *gin.Context) (*Session, error) {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil, ErrNoSession
	}
	return v.(*Session), nil
}
