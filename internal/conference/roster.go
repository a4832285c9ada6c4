package conference

import (
	"strings"
	"sync"

	"github.com/samber/lo"
)

// DefaultDisplayName is shown for participants that joined without a name.
const DefaultDisplayName = "Anonymous"

// Participant is one roster entry.
type Participant struct {
	Identity    string
	DisplayName string
	Self        bool
}

// Label is the name rendered in the participants panel.
func (p Participant) Label() string {
	if p.Self {
		return p.DisplayName + " (You)"
	}
	return p.DisplayName
}

// Roster is the set of participants currently in the room, in join order.
// Each identity appears at most once.
type Roster struct {
	self   string
	notify Notifier

	mu      sync.RWMutex
	order   []string
	entries map[string]Participant
}

func NewRoster(self string, notify Notifier) *Roster {
	return &Roster{
		self:    self,
		notify:  notify,
		entries: make(map[string]Participant),
	}
}

// Add records identity under name. Adding a known identity is a no-op and
// reports false.
func (r *Roster) Add(identity, name string) bool {
	if identity == "" {
		return false
	}

	r.mu.Lock()
	if _, ok := r.entries[identity]; ok {
		r.mu.Unlock()
		return false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultDisplayName
	}
	r.entries[identity] = Participant{
		Identity:    identity,
		DisplayName: name,
		Self:        identity == r.self,
	}
	r.order = append(r.order, identity)
	snapshot := r.snapshot()
	r.mu.Unlock()

	r.notify.emit(RosterChanged{Participants: snapshot})
	return true
}

// Remove drops identity. Removing an unknown identity reports false.
func (r *Roster) Remove(identity string) bool {
	r.mu.Lock()
	if _, ok := r.entries[identity]; !ok {
		r.mu.Unlock()
		return false
	}
	delete(r.entries, identity)
	r.order = lo.Without(r.order, identity)
	snapshot := r.snapshot()
	r.mu.Unlock()

	r.notify.emit(RosterChanged{Participants: snapshot})
	return true
}

// Count is the number of distinct identities, including the local user.
func (r *Roster) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *Roster) Has(identity string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[identity]
	return ok
}

func (r *Roster) Get(identity string) (Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.entries[identity]
	return p, ok
}

// Name returns the display name for identity, or the default name if unknown.
func (r *Roster) Name(identity string) string {
	if p, ok := r.Get(identity); ok {
		return p.DisplayName
	}
	return DefaultDisplayName
}

func (r *Roster) Participants() []Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot()
}

// Remote returns the identities of every participant except the local user.
func (r *Roster) Remote() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Filter(r.order, func(id string, _ int) bool { return id != r.self })
}

func (r *Roster) snapshot() []Participant {
	return lo.Map(r.order, func(id string, _ int) Participant { return r.entries[id] })
}
