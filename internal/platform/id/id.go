package id

import "github.com/google/uuid"

// Generator creates opaque identifiers.
type Generator interface {
	New() string
}

// Short trims a UUID to its first block; chat transcripts use it for
// message ids where collisions inside one session are not a concern.
type Short struct{}

func (Short) New() string {
	return uuid.NewString()[:8]
}
