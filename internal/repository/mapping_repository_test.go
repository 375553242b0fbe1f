package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fet-timetable-api/internal/models"
	"github.com/noah-isme/fet-timetable-api/pkg/storage"
)

func newMappingRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestFileMappingRepositoryRoundTrip(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := NewFileMappingRepository(store)
	ctx := context.Background()

	empty, err := repo.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, empty.Teachers)
	assert.NotNil(t, empty.Rooms)

	m := models.NewMappings()
	m.Teachers["Dupont"] = "M. Dupont"
	m.Rooms["A1"] = "Atelier"
	require.NoError(t, repo.Save(ctx, "s1", m))

	raw, err := store.Read("s1/mappings.json")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"teachers"`)
	assert.Contains(t, string(raw), `"rooms"`)

	loaded, err := repo.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, m, loaded)
}

func TestFileMappingRepositoryRejectsCorruptFile(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	_, err = store.Save("s1/mappings.json", []byte("{not json"))
	require.NoError(t, err)

	_, err = NewFileMappingRepository(store).Load(context.Background(), "s1")
	assert.Error(t, err)
}

func TestPostgresMappingRepositoryLoad(t *testing.T) {
	db, mock, cleanup := newMappingRepoMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"kind", "original", "renamed"}).
		AddRow("room", "A1", "Atelier").
		AddRow("teacher", "Dupont", "M. Dupont")
	mock.ExpectQuery("SELECT kind, original, renamed FROM rename_mappings").
		WithArgs("s1").
		WillReturnRows(rows)

	m, err := NewPostgresMappingRepository(db).Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "Atelier", m.Rooms["A1"])
	assert.Equal(t, "M. Dupont", m.Teachers["Dupont"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMappingRepositorySave(t *testing.T) {
	db, mock, cleanup := newMappingRepoMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM rename_mappings").
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO rename_mappings").
		WithArgs("s1", "teacher", "Dupont", "M. Dupont", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO rename_mappings").
		WithArgs("s1", "room", "A1", "Atelier", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	m := models.NewMappings()
	m.Teachers["Dupont"] = "M. Dupont"
	m.Rooms["A1"] = "Atelier"
	require.NoError(t, NewPostgresMappingRepository(db).Save(context.Background(), "s1", m))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMappingRepositoryEnsureSchema(t *testing.T) {
	db, mock, cleanup := newMappingRepoMock(t)
	defer cleanup()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS rename_mappings").
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, NewPostgresMappingRepository(db).EnsureSchema(context.Background()))
}
