package entity

import (
	"strconv"

	"github.com/google/uuid"
)

// Identities are derived, not drawn: every new ID is a name-based (SHA-1)
// UUID of its origin, so a rerun with the same seed yields the same IDs no
// matter how evaluation was scheduled.
var namespace = uuid.MustParse("3b2f7a4e-9c1d-5e8f-a6b0-7d4c2e1f9a38")

// SeedID identifies the index-th seed entity of a run.
func SeedID(seed int64, index int) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte("seed/"+strconv.FormatInt(seed, 10)+"/"+strconv.Itoa(index)))
}

// ChildID identifies the index-th offspring an entity emits at tick.
func ChildID(parent uuid.UUID, tick int64, index int) uuid.UUID {
	return derive(parent, "child", tick, index)
}

// MergeID identifies the single entity a group merges into at tick.
func MergeID(first uuid.UUID, tick int64) uuid.UUID {
	return derive(first, "merge", tick, 0)
}

// CollisionID identifies a Colliding entity formed at tick.
func CollisionID(first uuid.UUID, tick int64) uuid.UUID {
	return derive(first, "collide", tick, 0)
}

func derive(parent uuid.UUID, tag string, tick int64, index int) uuid.UUID {
	name := make([]byte, 0, 32)
	name = append(name, tag...)
	name = append(name, '/')
	name = strconv.AppendInt(name, tick, 10)
	name = append(name, '/')
	name = strconv.AppendInt(name, int64(index), 10)
	return uuid.NewSHA1(parent, name)
}
