package domaintest

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func NewUUID(t *testing.T) string {
	t.Helper()

	id, err := uuid.NewRandom()
	require.NoError(t, err)
	return id.String()
}

// NewUUIDSequence returns a generator of distinct, predictable UUIDs
func NewUUIDSequence() func() string {
	next := 0
	return func() string {
		next++
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte{byte(next >> 8), byte(next)}).String()
	}
}
