package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/fet-timetable-api/pkg/errors"
	"github.com/noah-isme/fet-timetable-api/pkg/storage"
)

func TestUploadRepositorySaveLoad(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := NewUploadRepository(store)

	require.NoError(t, repo.Save("s2", "teachers", []byte("<Teachers/>")))
	require.NoError(t, repo.Save("s1", "activities", []byte("<Activities/>")))

	docs, err := repo.Load("s2", "teachers", "subgroups", "activities")
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.Equal(t, "<Teachers/>", string(docs["teachers"]))

	sessions, err := repo.Sessions()
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, sessions)

	require.NoError(t, repo.Delete("s1"))
	sessions, err = repo.Sessions()
	require.NoError(t, err)
	assert.Equal(t, []string{"s2"}, sessions)
}

func TestCacheRepositoryWithoutClientMisses(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	var dest []string
	assert.ErrorIs(t, repo.Get(context.Background(), "k", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "k", []string{"x"}, 0))
	assert.NoError(t, repo.DeleteByPattern(context.Background(), SessionPattern("s1")))
	assert.NoError(t, repo.Close())
	assert.Equal(t, "timetable:view:s1:*", SessionPattern("s1"))
}
