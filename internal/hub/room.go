package hub

import (
	"github.com/samber/lo"

	"github.com/HarshithaPadmanabha/StudyHub/internal/signaling"
)

// Room is a set of clients keyed by identity, kept in join order.
type Room struct {
	ID string

	members map[string]*Client
	order   []string
}

func newRoom(id string) *Room {
	return &Room{ID: id, members: make(map[string]*Client)}
}

func (r *Room) add(c *Client) {
	if _, ok := r.members[c.identity]; !ok {
		r.order = append(r.order, c.identity)
	}
	r.members[c.identity] = c
}

func (r *Room) remove(identity string) {
	delete(r.members, identity)
	r.order = lo.Without(r.order, identity)
}

func (r *Room) get(identity string) (*Client, bool) {
	c, ok := r.members[identity]
	return c, ok
}

func (r *Room) size() int { return len(r.members) }

func (r *Room) empty() bool { return len(r.members) == 0 }

// clients returns the members in join order, skipping except.
func (r *Room) clients(except *Client) []*Client {
	out := make([]*Client, 0, len(r.order))
	for _, id := range r.order {
		if c := r.members[id]; c != except {
			out = append(out, c)
		}
	}
	return out
}

func (r *Room) snapshot() signaling.RoomStatePayload {
	return signaling.RoomStatePayload{
		Participants: lo.Map(r.order, func(id string, _ int) signaling.PeerInfo {
			c := r.members[id]
			return signaling.PeerInfo{Identity: c.identity, Name: c.name}
		}),
	}
}
