// Package session holds the process-lifetime token registry. Sessions live
// only in memory: a restart invalidates every issued token.
package session

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/gommon/random"
)

// Session records who a token belongs to and when it was issued.
type Session struct {
	UserID    int
	CreatedAt time.Time
}

// Registry maps opaque tokens to sessions. A zero ttl means sessions never
// expire, which is the shipped default; the knob exists so the policy is a
// visible part of the contract rather than an accident.
type Registry struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[string]Session
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		ttl: ttl,
		m:   make(map[string]Session),
	}
}

// Create issues a new token for userID. The token mixes random characters
// with the current time in base36, unpredictable and unique in practice.
func (r *Registry) Create(userID int) string {
	token := strings.ToLower(random.String(16)) +
		strconv.FormatInt(time.Now().UnixNano(), 36)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[token] = Session{UserID: userID, CreatedAt: time.Now()}
	return token
}

// Resolve returns the user id a token was issued for. Unknown and expired
// tokens both report false.
func (r *Registry) Resolve(token string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.m[token]
	if !ok {
		return 0, false
	}
	if r.ttl > 0 && time.Since(sess.CreatedAt) > r.ttl {
		delete(r.m, token)
		return 0, false
	}
	return sess.UserID, true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.m)
}
