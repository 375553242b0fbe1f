package service

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fet-timetable-api/internal/dto"
	"github.com/noah-isme/fet-timetable-api/internal/models"
	appErrors "github.com/noah-isme/fet-timetable-api/pkg/errors"
	"github.com/noah-isme/fet-timetable-api/pkg/storage"
)

func newBatchFixture(t *testing.T) (*BatchExportService, timetableFixture) {
	t.Helper()
	f := newTimetableFixture(t, "", nil)
	exports := NewExportService(f.svc, nil, nil, nil, nil, nil, nil)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := NewBatchExportService(f.svc, exports, store, storage.NewSignedURLSigner("secret", time.Hour), nil, nil, BatchConfig{
		APIPrefix:  "/api",
		Workers:    1,
		RetryDelay: 10 * time.Millisecond,
	})
	ctx, cancel := context.WithCancel(context.Background())
	svc.Start(ctx)
	t.Cleanup(func() {
		cancel()
		svc.Stop()
	})
	return svc, f
}

func waitForJob(t *testing.T, svc *BatchExportService, sessionID, id string) *models.BatchJob {
	t.Helper()
	var job *models.BatchJob
	require.Eventually(t, func() bool {
		current, err := svc.Get(sessionID, id)
		if err != nil {
			return false
		}
		job = current
		return job.Status == models.BatchStatusFinished || job.Status == models.BatchStatusFailed
	}, 5*time.Second, 20*time.Millisecond)
	return job
}

func TestBatchExportTeachersArchive(t *testing.T) {
	svc, f := newBatchFixture(t)
	ctx := context.Background()
	f.upload(t, "s1")
	_, err := f.svc.Rename(ctx, "s1", models.RenameKindTeacher, dto.RenameRequest{Original: "Sara", Renamed: "Mme Sära"})
	require.NoError(t, err)

	created, err := svc.Create(ctx, "s1", dto.BatchExportRequest{Kind: models.BatchKindTeachers})
	require.NoError(t, err)
	assert.Equal(t, models.BatchStatusQueued, created.Status)
	assert.Equal(t, 2, created.Total)

	job := waitForJob(t, svc, "s1", created.ID)
	require.Equal(t, models.BatchStatusFinished, job.Status)
	assert.Equal(t, 2, job.Done)
	require.NotNil(t, job.ResultURL)
	require.True(t, strings.HasPrefix(*job.ResultURL, "/api/export/download/"))

	file, filename, err := svc.Download(strings.TrimPrefix(*job.ResultURL, "/api/export/download/"))
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, "emplois-du-temps-teachers.zip", filename)

	info, err := file.Stat()
	require.NoError(t, err)
	reader, err := zip.NewReader(file, info.Size())
	require.NoError(t, err)
	var names []string
	for _, entry := range reader.File {
		names = append(names, entry.Name)
		rc, err := entry.Open()
		require.NoError(t, err)
		head := make([]byte, 4)
		_, err = io.ReadFull(rc, head)
		require.NoError(t, err)
		rc.Close()
		assert.Equal(t, "%PDF", string(head))
	}
	sort.Strings(names)
	assert.Equal(t, []string{"emploi-temps-professeur-ahmed.pdf", "emploi-temps-professeur-mme-sara.pdf"}, names)
}

func TestBatchExportClassesAndOwnership(t *testing.T) {
	svc, f := newBatchFixture(t)
	ctx := context.Background()
	f.upload(t, "s1")

	created, err := svc.Create(ctx, "s1", dto.BatchExportRequest{Kind: models.BatchKindClasses})
	require.NoError(t, err)
	job := waitForJob(t, svc, "s1", created.ID)
	assert.Equal(t, models.BatchStatusFinished, job.Status)

	_, err = svc.Get("other", created.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestBatchExportValidation(t *testing.T) {
	svc, _ := newBatchFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "s1", dto.BatchExportRequest{Kind: "rooms"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Create(ctx, "empty", dto.BatchExportRequest{Kind: models.BatchKindTeachers})
	assert.True(t, errors.Is(err, appErrors.ErrNoData))
}

func TestBatchExportDownloadRejectsBadTokens(t *testing.T) {
	svc, _ := newBatchFixture(t)

	_, _, err := svc.Download("garbage")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	expired := storage.NewSignedURLSigner("secret", time.Millisecond)
	token, _, err := expired.Generate("job", "job.zip")
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)
	_, _, err = svc.Download(token)
	assert.True(t, errors.Is(err, appErrors.ErrExpired))
}

func TestBatchExportCleanupForgetsOldJobs(t *testing.T) {
	svc, f := newBatchFixture(t)
	ctx := context.Background()
	f.upload(t, "s1")

	created, err := svc.Create(ctx, "s1", dto.BatchExportRequest{Kind: models.BatchKindTeachers})
	require.NoError(t, err)
	waitForJob(t, svc, "s1", created.ID)

	svc.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	forgotten, _, err := svc.Cleanup()
	require.NoError(t, err)
	assert.Equal(t, 1, forgotten)
	_, err = svc.Get("s1", created.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
