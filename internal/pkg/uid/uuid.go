package uid

import "github.com/google/uuid"

// UUID yields time-ordered (v7) UUID strings so token ids and correlation ids
// sort by creation time. A random v4 is used when the v7 source fails.
type UUID struct {
	v7 func() (uuid.UUID, error)
}

// NewUUID returns a UUID generator.
func NewUUID() *UUID {
	return &UUID{v7: uuid.NewV7}
}

func (u *UUID) Generate() string {
	if id, err := u.v7(); err == nil {
		return id.String()
	}

	return uuid.New().String()
}
