package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New returns a fresh ULID string. Every entity id in the service is a
// ULID, so listing by id range yields insertion order; messages and posts
// rely on that for their feeds.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
