package registry

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"tickframe/internal/collision"
	"tickframe/internal/entity"
	"tickframe/internal/fault"
	"tickframe/pkg/geom"
)

// CommitStats summarizes what a commit resolved.
type CommitStats struct {
	Staged      int
	Collisions  int
	Outcomes    map[entity.Outcome]int
	Annihilated int64
	Dissipated  int64
}

// Registry pairs the published snapshot with the staging area for the next
// one. Readers call Snapshot concurrently with Stage; only Commit publishes.
type Registry struct {
	resolver collision.Resolver
	current  atomic.Pointer[Snapshot]

	mu        sync.Mutex
	staged    map[geom.Vec][]entity.Entity
	count     int
	misplaced []string
}

// New creates a registry publishing initial and resolving collisions with
// resolver.
func New(initial *Snapshot, resolver collision.Resolver) *Registry {
	r := &Registry{resolver: resolver, staged: make(map[geom.Vec][]entity.Entity)}
	r.current.Store(initial)
	return r
}

// Snapshot returns the currently published snapshot.
func (r *Registry) Snapshot() *Snapshot { return r.current.Load() }

// Stage records e at pos for the next snapshot. Safe for concurrent use.
func (r *Registry) Stage(pos geom.Vec, e entity.Entity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pos != e.Pos() {
		r.misplaced = append(r.misplaced, fmt.Sprintf("%s staged at %v but located at %v", e.Ident(), pos, e.Pos()))
	}
	r.staged[pos] = append(r.staged[pos], e)
	r.count++
}

// Staged reports how many placements are pending.
func (r *Registry) Staged() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Discard drops every pending placement. The published snapshot stays
// authoritative.
func (r *Registry) Discard() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reset()
}

func (r *Registry) reset() {
	r.staged = make(map[geom.Vec][]entity.Entity)
	r.count = 0
	r.misplaced = nil
}

// Commit turns the staged placements for tick into the snapshot for tick+1.
// Positions with two or more entities go through the resolver first. On error
// nothing is published and the staging area is cleared.
func (r *Registry) Commit(tick int64) (*Snapshot, CommitStats, error) {
	r.mu.Lock()
	staged, count, misplaced := r.staged, r.count, r.misplaced
	r.reset()
	r.mu.Unlock()

	stats := CommitStats{Staged: count, Outcomes: map[entity.Outcome]int{}}
	if cur := r.Snapshot(); cur.Tick() != tick {
		return nil, stats, fault.New(fault.Registry, tick, fmt.Sprintf("commit for tick %d while snapshot is at tick %d", tick, cur.Tick()))
	}
	if len(misplaced) > 0 {
		return nil, stats, fault.New(fault.Registry, tick, misplaced[0])
	}
	if err := checkIdentities(tick, staged); err != nil {
		return nil, stats, err
	}

	positions := make([]geom.Vec, 0, len(staged))
	for pos := range staged {
		positions = append(positions, pos)
	}
	slices.SortFunc(positions, geom.Vec.Compare)

	next := make(map[geom.Vec]entity.Entity, len(staged))
	for _, pos := range positions {
		group := staged[pos]
		if len(group) == 1 {
			next[pos] = group[0]
			continue
		}
		entity.SortByID(group)
		res, err := r.resolver.Resolve(tick, pos, group)
		if err != nil {
			return nil, stats, fault.Wrap(fault.Collision, tick, fmt.Sprintf("%s resolver at %v", r.resolver.Name(), pos), err)
		}
		if len(res.Survivors) > 1 {
			return nil, stats, fault.New(fault.Collision, tick, fmt.Sprintf("%s resolver left %d occupants at %v", r.resolver.Name(), len(res.Survivors), pos))
		}
		stats.Collisions++
		stats.Outcomes[res.Outcome]++
		stats.Annihilated += res.Annihilated
		stats.Dissipated += res.Dissipated
		if len(res.Survivors) == 1 {
			s := res.Survivors[0]
			if s.Pos() != pos {
				return nil, stats, fault.New(fault.Collision, tick, fmt.Sprintf("%s resolver moved survivor from %v to %v", r.resolver.Name(), pos, s.Pos()))
			}
			next[pos] = s
		}
	}

	seen := make(map[uuid.UUID]geom.Vec, len(next))
	for _, pos := range positions {
		e, ok := next[pos]
		if !ok {
			continue
		}
		if prev, dup := seen[e.Ident()]; dup {
			return nil, stats, &fault.Error{Kind: fault.Registry, Tick: tick, Entity: e.Ident(),
				Message: fmt.Sprintf("resolved identity occupies %v and %v", prev, pos)}
		}
		seen[e.Ident()] = pos
	}

	snap := &Snapshot{tick: tick + 1, byPos: next}
	r.current.Store(snap)
	return snap, stats, nil
}

// checkIdentities rejects any identity staged more than once. Evaluation
// never produces that, so it points at a scheduler bug.
func checkIdentities(tick int64, staged map[geom.Vec][]entity.Entity) error {
	seen := make(map[uuid.UUID]geom.Vec)
	for pos, group := range staged {
		for _, e := range group {
			prev, dup := seen[e.Ident()]
			if !dup {
				seen[e.Ident()] = pos
				continue
			}
			msg := fmt.Sprintf("identity staged at %v and %v", prev, pos)
			if prev == pos {
				msg = fmt.Sprintf("identity staged twice at %v", pos)
			}
			return &fault.Error{Kind: fault.Registry, Tick: tick, Entity: e.Ident(), Message: msg}
		}
	}
	return nil
}
