package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/formula/lang"
)

func names(users []User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.Name
	}

	return out
}

func TestSQLite_All(t *testing.T) {
	s, err := OpenSample(t.Context())
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Close() })

	users, err := s.All(t.Context())
	require.NoError(t, err)

	assert.Equal(t, []string{"Alice", "Bob", "Charlie", "Diana", "Eve"}, names(users))
	assert.Equal(t, time.Date(1982, time.December, 5, 0, 0, 0, 0, time.UTC), users[3].BirthDate)
}

func TestSQLite_BornBefore(t *testing.T) {
	s, err := OpenSample(t.Context())
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Close() })

	users, err := s.BornBefore(t.Context(), time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob", "Diana", "Eve"}, names(users))

	users, err = s.BornBefore(t.Context(), time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestSQLite_FilePersists(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "users.db")

	s, err := Open(t.Context(), dsn)
	require.NoError(t, err)
	require.NoError(t, s.Insert(t.Context(), Sample()[:2]...))
	require.NoError(t, s.Close())

	s, err = Open(t.Context(), dsn)
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Close() })

	users, err := s.All(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob"}, names(users))
}

func TestSQLite_ClosedStoreFails(t *testing.T) {
	s, err := Open(t.Context(), MemoryDSN)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.All(t.Context())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuery))
	assert.Equal(t, lang.KindServiceUnavailable, lang.KindOf(err))
}
