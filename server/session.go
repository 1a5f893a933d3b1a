package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"meshbrowse/dispatch"
	"meshbrowse/logger"
	"meshbrowse/navigation"
	"meshbrowse/store"
)

// SessionCookie names the cookie carrying the viewer session id.
const SessionCookie = "meshbrowse_session"

const sessionKey = "meshbrowse.session"

// session is one browser's navigation state and content scope.
type session struct {
	id       string
	content  *store.Session
	nav      *navigation.Controller
	dispatch *dispatch.Dispatcher

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen.Before(cutoff)
}

// sessions tracks live sessions and drops those idle longer than ttl.
type sessions struct {
	mu     sync.Mutex
	byID   map[string]*session
	ttl    time.Duration
	create func(id string) *session
	now    func() time.Time
	// onEvict runs with mu held for each dropped session.
	onEvict func(id string)
}

func newSessions(ttl time.Duration, create func(string) *session) *sessions {
	return &sessions{byID: make(map[string]*session), ttl: ttl, create: create, now: time.Now}
}

// get returns the session for id, creating a fresh one when id is unknown.
func (ss *sessions) get(id string) (*session, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	now := ss.now()
	if sess, ok := ss.byID[id]; ok && !sess.idleSince(now.Add(-ss.ttl)) {
		sess.touch(now)
		return sess, false
	}

	ss.evict(now)
	sess := ss.create(uuid.NewString())
	sess.touch(now)
	ss.byID[sess.id] = sess
	return sess, true
}

// evict drops idle sessions. Called with mu held.
func (ss *sessions) evict(now time.Time) int {
	cutoff := now.Add(-ss.ttl)
	n := 0
	for id, sess := range ss.byID {
		if sess.idleSince(cutoff) {
			delete(ss.byID, id)
			if ss.onEvict != nil {
				ss.onEvict(id)
			}
			n++
		}
	}
	return n
}

func (ss *sessions) len() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.byID)
}

func (s *Server) newSession(id string) *session {
	content := store.NewSession(s.backend, id, s.sessions.ttl)
	log := s.log.With(logger.String("session", id))
	return &session{
		id:      id,
		content: content,
		nav: navigation.NewController(navigation.Options{
			Status:    s.status,
			Retriever: s.retriever,
			Store:     content,
			Log:       log,
			OnTransition: func(_, to navigation.State) {
				s.metrics.transitions.WithLabelValues(to.String()).Inc()
			},
		}),
		dispatch: dispatch.New(s.status, s.retriever, content, log),
	}
}

// session resolves the session cookie, issuing a new one when it is
// missing, malformed or expired.
func (s *Server) session(c *gin.Context) {
	id, _ := c.Cookie(SessionCookie)
	if _, err := uuid.Parse(id); err != nil {
		id = ""
	}
	sess, created := s.sessions.get(id)
	if created {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, sess.id, int(s.sessions.ttl.Seconds()), "/", "", false, true)
		s.metrics.sessions.Set(float64(s.sessions.len()))
		if sw, ok := s.backend.(sweeper); ok {
			sw.Sweep()
		}
	}
	c.Set(sessionKey, sess)
	c.Next()
}

// sweeper is implemented by backends that expire entries lazily.
type sweeper interface {
	Sweep() int
}

func sessionOf(c *gin.Context) *session {
	return c.MustGet(sessionKey).(*session)
}
