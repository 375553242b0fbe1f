package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fet-timetable-api/internal/dto"
	"github.com/noah-isme/fet-timetable-api/internal/importer"
	"github.com/noah-isme/fet-timetable-api/internal/models"
	appErrors "github.com/noah-isme/fet-timetable-api/pkg/errors"
)

func TestTimetableServiceUploadAndViews(t *testing.T) {
	f := newTimetableFixture(t, "", nil)
	ctx := context.Background()

	resp, err := f.svc.Upload(ctx, "s1", fixtureFiles())
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []string{"Ahmed", "Sara"}, resp.Teachers)
	assert.Equal(t, []string{"2BAC-1", "3APIC-5"}, resp.Classes)
	assert.Equal(t, []string{"2BAC-1", "3APIC-5"}, resp.Subgroups)
	assert.Equal(t, "s1", resp.SessionID)

	teacher := f.svc.TeacherView(ctx, "s1", "Ahmed")
	require.Len(t, teacher, 1)
	assert.Equal(t, "H1-H2", teacher[0].HourID)
	assert.Equal(t, "08:30 - 10:30", teacher[0].Timeslot)
	assert.Equal(t, models.PeriodMorning, teacher[0].Period)

	class, err := f.svc.ClassView(ctx, "s1", "3APIC-5", dto.ClassViewQuery{})
	require.NoError(t, err)
	require.Len(t, class, 2)
	assert.Equal(t, "3APIC-5", class[0].Subgroup)

	room := f.svc.RoomView(ctx, "s1", "labo")
	require.Len(t, room, 1)
	assert.Equal(t, "SVT", room[0].Subject)

	vacant := f.svc.VacantRooms(ctx, "s1")
	assert.Len(t, vacant, 5)

	assert.Equal(t, []string{"101", "102", "Labo"}, f.svc.Rooms(ctx, "s1"))
	assert.Equal(t, map[string][]string{"Math": {"Ahmed"}, "SVT": {"Sara"}}, f.svc.TeachersBySubject(ctx, "s1"))
	assert.Equal(t, []string{"3APIC-5"}, f.svc.SubgroupsForClass(ctx, "s1", "3APIC-5"))

	diag := f.svc.Diagnostics(ctx, "s1")
	assert.Equal(t, 2, diag.TeachersCount)
	assert.Equal(t, 3, diag.AllRoomsCount)
	assert.Equal(t, 3, diag.UsedKeysCount)

	listing := f.svc.Sessions()
	assert.Equal(t, 1, listing.ActiveSessions)
	assert.True(t, listing.Sessions[0].HasData)

	assert.True(t, f.store.Exists("s1/teachers.xml"))
	assert.True(t, f.store.Exists("s1/activities.xml"))
}

func TestTimetableServiceUnknownEntitiesGiveEmptyViews(t *testing.T) {
	f := newTimetableFixture(t, "", nil)
	ctx := context.Background()

	assert.Empty(t, f.svc.TeacherView(ctx, "fresh", "Nobody"))
	assert.NotNil(t, f.svc.TeacherView(ctx, "fresh", "Nobody"))
	assert.Empty(t, f.svc.VacantRooms(ctx, "fresh"))
	assert.Equal(t, 0, f.svc.Diagnostics(ctx, "fresh").UsedKeysCount)
}

func TestTimetableServiceUploadValidation(t *testing.T) {
	f := newTimetableFixture(t, "", nil)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, "s1", nil)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	big := make([]byte, (1<<20)+1)
	_, err = f.svc.Upload(ctx, "s1", map[importer.Document][]byte{importer.DocumentTeachers: big})
	assert.True(t, errors.Is(err, appErrors.ErrPayloadTooLarge))
}

func TestTimetableServiceUploadIsAllOrNothing(t *testing.T) {
	f := newTimetableFixture(t, "", nil)
	ctx := context.Background()
	f.upload(t, "s1")
	before := f.svc.Snapshot(ctx, "s1")

	_, err := f.svc.Upload(ctx, "s1", map[importer.Document][]byte{
		importer.DocumentTeachers:  []byte(`<Teachers_Timetable></Teachers_Timetable>`),
		importer.DocumentSubgroups: []byte(`<Students_Timetable><broken`),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidImport))

	after := f.svc.Snapshot(ctx, "s1")
	assert.Same(t, before, after)
	assert.Len(t, after.Teachers, 2)
}

func TestTimetableServiceRename(t *testing.T) {
	f := newTimetableFixture(t, "", nil)
	ctx := context.Background()
	f.upload(t, "s1")

	m, err := f.svc.Rename(ctx, "s1", models.RenameKindTeacher, dto.RenameRequest{Original: "Ahmed", Renamed: " M. Ahmed "})
	require.NoError(t, err)
	assert.Equal(t, "M. Ahmed", m.Teachers["Ahmed"])

	view := f.svc.TeacherView(ctx, "s1", "M. Ahmed")
	require.Len(t, view, 1)
	assert.Equal(t, "M. Ahmed", view[0].Teacher)
	assert.Equal(t, []string{"M. Ahmed"}, f.svc.TeachersBySubject(ctx, "s1")["Math"])

	_, err = f.svc.Rename(ctx, "s1", models.RenameKindRoom, dto.RenameRequest{Original: "Labo", Renamed: "Laboratoire"})
	require.NoError(t, err)
	rooms := f.svc.RenameList(ctx, "s1", models.RenameKindRoom)
	assert.Contains(t, rooms, models.RenameEntry{Original: "Labo", Renamed: "Laboratoire"})
	assert.Contains(t, rooms, models.RenameEntry{Original: "101", Renamed: ""})

	raw, err := f.store.Read("s1/mappings.json")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Laboratoire")

	m, err = f.svc.Rename(ctx, "s1", models.RenameKindTeacher, dto.RenameRequest{Original: "Ahmed", Renamed: ""})
	require.NoError(t, err)
	assert.NotContains(t, m.Teachers, "Ahmed")
	assert.Equal(t, "Laboratoire", f.svc.Mappings(ctx, "s1").Rooms["Labo"])
}

func TestTimetableServiceRenameRequiresOriginal(t *testing.T) {
	f := newTimetableFixture(t, "", nil)
	_, err := f.svc.Rename(context.Background(), "s1", models.RenameKindTeacher, dto.RenameRequest{Original: "   ", Renamed: "x"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestTimetableServiceRestoresArchivedSession(t *testing.T) {
	first := newTimetableFixture(t, "", nil)
	ctx := context.Background()
	first.upload(t, "s1")
	_, err := first.svc.Rename(ctx, "s1", models.RenameKindTeacher, dto.RenameRequest{Original: "Sara", Renamed: "Mme Sara"})
	require.NoError(t, err)

	restarted := newTimetableFixture(t, first.dir, nil)
	snap := restarted.svc.Snapshot(ctx, "s1")
	assert.Len(t, snap.Teachers, 2)
	assert.Len(t, snap.Activities, 2)
	assert.Equal(t, "Mme Sara", snap.Mappings.Teachers["Sara"])

	again := newTimetableFixture(t, first.dir, nil)
	n, err := again.svc.RestoreAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, again.sessions.Len())
}

func TestTimetableServiceCachesViewsPerVersion(t *testing.T) {
	mem := newMemoryCache()
	cache := NewCacheService(mem, nil, 0, nil, true)
	f := newTimetableFixture(t, "", cache)
	ctx := context.Background()
	f.upload(t, "s1")

	first := f.svc.TeacherView(ctx, "s1", "Ahmed")
	assert.Equal(t, 1, mem.len())
	second := f.svc.TeacherView(ctx, "s1", "Ahmed")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, mem.len())

	_, err := f.svc.Rename(ctx, "s1", models.RenameKindRoom, dto.RenameRequest{Original: "101", Renamed: "Salle 101"})
	require.NoError(t, err)
	assert.Equal(t, 0, mem.len(), "mutations invalidate the session's views")

	view := f.svc.TeacherView(ctx, "s1", "Ahmed")
	require.Len(t, view, 1)
	assert.Equal(t, "Salle 101", view[0].Room)
}

func TestTimetableServiceClassViewValidatesQuery(t *testing.T) {
	f := newTimetableFixture(t, "", nil)
	_, err := f.svc.ClassView(context.Background(), "s1", "3APIC-5", dto.ClassViewQuery{LabelMode: "sometimes"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
