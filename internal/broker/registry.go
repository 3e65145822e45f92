package broker

import (
	"errors"
	"sort"
	"sync"
)

// ErrUsernameTaken is returned when a registration collides with an active
// session.
var ErrUsernameTaken = errors.New("username already taken")

type session struct {
	color string
	slot  *PendingSlot
}

// Registry tracks active sessions: username, assigned color, and the current
// pending slot. All structural mutations run under a single mutex so that
// color assignment and slot replacement stay atomic with respect to
// concurrent registration, polling, and delivery.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*session
	colors   *ColorAssigner
}

// NewRegistry creates an empty registry with a fresh color assigner.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*session),
		colors:   NewColorAssigner(),
	}
}

// Register creates a session for username and returns its assigned color.
// It fails with ErrUsernameTaken when a session already exists. The new
// session has no pending slot until the client starts polling.
func (r *Registry) Register(username string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[username]; exists {
		return "", ErrUsernameTaken
	}

	color := r.colors.Assign(username)
	r.sessions[username] = &session{color: color}
	return color, nil
}

// BeginLongPoll installs a fresh pending slot for username and returns it for
// the caller to await. Any previous slot is discarded without being
// fulfilled, so an earlier poll still waiting on it is abandoned. Unknown
// usernames get a session on the fly, matching clients that poll without an
// explicit registration call.
func (r *Registry) BeginLongPoll(username string) *PendingSlot {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[username]
	if !ok {
		sess = &session{color: r.colors.Assign(username)}
		r.sessions[username] = sess
	}

	sess.slot = NewPendingSlot()
	return sess.slot
}

// Fulfill completes username's current slot with msg. It returns false when
// the session or slot does not exist, or when the slot was already fulfilled.
func (r *Registry) Fulfill(username string, msg Message) bool {
	r.mu.Lock()
	sess, ok := r.sessions[username]
	var slot *PendingSlot
	if ok {
		slot = sess.slot
	}
	r.mu.Unlock()

	if slot == nil {
		return false
	}
	return slot.Fulfill(msg)
}

// HasPendingSlot reports whether username currently has an unfulfilled slot
// installed, i.e. a long poll is waiting for delivery.
func (r *Registry) HasPendingSlot(username string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[username]
	return ok && sess.slot != nil && !sess.slot.Fulfilled()
}

// Remove deregisters username. An outstanding unfulfilled slot is abandoned
// in place; its awaiter returns only when its own context is done.
func (r *Registry) Remove(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, username)
}

// Color reports the color assigned to username's session.
func (r *Registry) Color(username string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[username]
	if !ok {
		return "", false
	}
	return sess.color, true
}

// ListOthers returns a sorted snapshot of active usernames minus excluding.
func (r *Registry) ListOthers(excluding string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	others := make([]string, 0, len(r.sessions))
	for username := range r.sessions {
		if username != excluding {
			others = append(others, username)
		}
	}
	sort.Strings(others)
	return others
}
