package user

import (
	"strings"
	"sync"

	"chatrelay/internal/pkg/errs"
)

// Registry is the in-memory store of active users, keyed by connection id.
// It is the single shared-mutable-state boundary of the relay: the hub
// goroutine writes it and HTTP handlers read it concurrently, so every
// operation holds the lock.
//
// Users are kept in join order; room queries preserve that order.
type Registry struct {
	mu    sync.RWMutex
	users []User
	index map[string]int
}

// NewRegistry returns an empty registry. Construct one per process (or per
// test) and pass it by reference; there is no package-level instance.
func NewRegistry() *Registry {
	return &Registry{
		index: make(map[string]int),
	}
}

// normalize trims surrounding whitespace and lowercases. Applied to
// usernames and room names at join and to room names at lookup, so a user
// who joins "  Foo " is always found by a query for "foo".
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Add registers a user for the given connection id. It fails without
// mutating the registry when the normalized username or room is empty, or
// when the id is already registered (at most one user per connection).
//
// Duplicate usernames within a room are accepted; the relay identifies
// users by connection id, not by name.
func (r *Registry) Add(id, username, room string) (User, *errs.CustomError) {
	username = normalize(username)
	room = normalize(room)

	if username == "" || room == "" {
		return User{}, errs.NewError(errs.ErrNameRequired)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[id]; ok {
		return User{}, errs.NewError(errs.ErrAlreadyJoined)
	}

	u := User{ID: id, Username: username, Room: room}
	r.index[id] = len(r.users)
	r.users = append(r.users, u)

	return u, nil
}

// Remove deletes and returns the user for id. The second return value is
// false when no user was registered for id; that is not an error.
func (r *Registry) Remove(id string) (User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos, ok := r.index[id]
	if !ok {
		return User{}, false
	}

	u := r.users[pos]

	r.users = append(r.users[:pos], r.users[pos+1:]...)
	delete(r.index, id)
	for i := pos; i < len(r.users); i++ {
		r.index[r.users[i].ID] = i
	}

	return u, true
}

// Get returns the user for id, if registered.
func (r *Registry) Get(id string) (User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pos, ok := r.index[id]
	if !ok {
		return User{}, false
	}

	return r.users[pos], true
}

// InRoom returns the users whose normalized room matches room, in join
// order. An unknown room yields an empty slice.
func (r *Registry) InRoom(room string) []User {
	room = normalize(room)

	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]User, 0)
	for _, u := range r.users {
		if u.Room == room {
			members = append(members, u)
		}
	}

	return members
}
