package realtime

import (
	"sort"
	"sync"

	"github.com/TestimonyAdegoke/montessa-sub006/logger"
)

// Registry tracks which users currently have open streams. It is safe for
// concurrent use: registration, dispatch and deregistration race freely.
//
// A user with no handles has no entry.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]map[string]Handle
	log      *logger.Logger
}

// NewRegistry creates an empty registry. A nil log discards output.
func NewRegistry(log *logger.Logger) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{
		channels: make(map[string]map[string]Handle),
		log:      log,
	}
}

// Register adds h to userID's channel, creating the channel if needed.
func (r *Registry) Register(userID string, h Handle) {
	r.mu.Lock()
	set, ok := r.channels[userID]
	if !ok {
		set = make(map[string]Handle)
		r.channels[userID] = set
	}
	set[h.ID()] = h
	n := len(set)
	r.mu.Unlock()

	r.log.Debug("Stream registered", logger.Fields(
		logger.FieldUserID, userID,
		logger.FieldHandleID, h.ID(),
		"user_handles", n,
	))
}

// Deregister removes h from userID's channel and drops the channel once it
// is empty. It reports whether h was present, so a second call for the same
// handle changes nothing.
func (r *Registry) Deregister(userID string, h Handle) bool {
	r.mu.Lock()
	set, ok := r.channels[userID]
	if !ok {
		r.mu.Unlock()
		return false
	}
	if _, ok := set[h.ID()]; !ok {
		r.mu.Unlock()
		return false
	}
	delete(set, h.ID())
	if len(set) == 0 {
		delete(r.channels, userID)
	}
	n := len(set)
	r.mu.Unlock()

	r.log.Debug("Stream deregistered", logger.Fields(
		logger.FieldUserID, userID,
		logger.FieldHandleID, h.ID(),
		"user_handles", n,
	))
	return true
}

// Handles returns a snapshot of userID's handles. Unknown users yield nil.
func (r *Registry) Handles(userID string) []Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.channels[userID]
	if len(set) == 0 {
		return nil
	}
	out := make([]Handle, 0, len(set))
	for _, h := range set {
		out = append(out, h)
	}
	return out
}

// ActiveUsers returns the ids of users with at least one open stream, sorted.
func (r *Registry) ActiveUsers() []string {
	r.mu.RLock()
	users := make([]string, 0, len(r.channels))
	for id := range r.channels {
		users = append(users, id)
	}
	r.mu.RUnlock()

	sort.Strings(users)
	return users
}

// Count returns the number of connected users and open handles.
func (r *Registry) Count() (users, handles int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, set := range r.channels {
		handles += len(set)
	}
	return len(r.channels), handles
}

// CloseAll closes every handle and empties the registry. Stream owners see
// their handle close and finish their own teardown.
func (r *Registry) CloseAll() int {
	r.mu.Lock()
	channels := r.channels
	r.channels = make(map[string]map[string]Handle)
	r.mu.Unlock()

	closed := 0
	for _, set := range channels {
		for _, h := range set {
			_ = h.Close()
			closed++
		}
	}
	return closed
}
