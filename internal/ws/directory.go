package ws

import "sync"

// Directory maps a team id to the set of live subscribers for that team.
// Subscribers are keyed by ID, so registering the same connection twice
// leaves a single entry.
type Directory struct {
	mu    sync.RWMutex
	teams map[int64]map[string]Subscriber
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{teams: make(map[int64]map[string]Subscriber)}
}

// Subscribe adds sub under teamID and reports whether it was newly added.
func (d *Directory) Subscribe(teamID int64, sub Subscriber) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	set, ok := d.teams[teamID]
	if !ok {
		set = make(map[string]Subscriber)
		d.teams[teamID] = set
	}
	if _, exists := set[sub.ID()]; exists {
		return false
	}
	set[sub.ID()] = sub
	return true
}

// Unsubscribe removes sub from teamID and reports whether it was present.
func (d *Directory) Unsubscribe(teamID int64, sub Subscriber) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	set, ok := d.teams[teamID]
	if !ok {
		return false
	}
	if _, exists := set[sub.ID()]; !exists {
		return false
	}
	delete(set, sub.ID())
	if len(set) == 0 {
		delete(d.teams, teamID)
	}
	return true
}

// ListenersFor returns a copy of the subscribers registered for teamID.
func (d *Directory) ListenersFor(teamID int64) []Subscriber {
	d.mu.RLock()
	defer d.mu.RUnlock()
	set := d.teams[teamID]
	out := make([]Subscriber, 0, len(set))
	for _, sub := range set {
		out = append(out, sub)
	}
	return out
}

// Count reports the number of subscribers for teamID.
func (d *Directory) Count(teamID int64) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.teams[teamID])
}

// Total reports the number of subscribers across all teams.
func (d *Directory) Total() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	total := 0
	for _, set := range d.teams {
		total += len(set)
	}
	return total
}

// Reset removes every subscription and returns the removed subscribers.
func (d *Directory) Reset() []Subscriber {
	d.mu.Lock()
	defer d.mu.Unlock()
	var removed []Subscriber
	for _, set := range d.teams {
		for _, sub := range set {
			removed = append(removed, sub)
		}
	}
	d.teams = make(map[int64]map[string]Subscriber)
	return removed
}
