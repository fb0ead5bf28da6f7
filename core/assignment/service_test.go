package assignment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/deptportal/core"
	"github.com/trezcool/deptportal/core/assignment"
	"github.com/trezcool/deptportal/core/listing"
	"github.com/trezcool/deptportal/core/notification"
	"github.com/trezcool/deptportal/core/subject"
	"github.com/trezcool/deptportal/core/subscriber"
	logsvc "github.com/trezcool/deptportal/services/logger"
	pushsvc "github.com/trezcool/deptportal/services/push"
	inmemdb "github.com/trezcool/deptportal/storage/database/inmem"
	diskstore "github.com/trezcool/deptportal/storage/files/disk"
	testutil "github.com/trezcool/deptportal/tests"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	repo     assignment.Repository
	svc      *assignment.Service
	notifSvc *notification.Service
	subjSvc  *subject.Service
	clock    *testutil.Clock
}

func setup(t *testing.T) fixture {
	t.Helper()
	conf := testutil.NewConfig()
	conf.Files.Dir = t.TempDir()
	logger := logsvc.NewSilentLogger(conf)
	db := inmemdb.Open()

	files, err := diskstore.New(conf)
	require.NoError(t, err)

	subs := subscriber.NewService(inmemdb.NewSubscriberRepository(db))
	push := pushsvc.NewConsoleServiceMock(logger, conf)
	f := fixture{
		repo:     inmemdb.NewAssignmentRepository(db),
		notifSvc: notification.NewService(inmemdb.NewNotificationRepository(db), subs, push, logger, conf),
		subjSvc:  subject.NewService(inmemdb.NewSubjectRepository(db)),
		clock:    testutil.NewClock(t0),
	}
	f.svc = assignment.NewService(f.repo, db, f.notifSvc, files, logger, conf)
	f.svc.SetNowFunc(f.clock.Func())
	f.notifSvc.SetNowFunc(f.clock.Func())

	_, err = f.subjSvc.Seed(context.Background(), core.DefaultSubjects...)
	require.NoError(t, err)
	return f
}

func (f fixture) create(t *testing.T, title string) assignment.Assignment {
	t.Helper()
	na := assignment.NewAssignment{
		Title:       title,
		Description: "Solve the problems in chapter 4",
		Subject:     "Physics",
		Level:       core.Level200,
		Deadline:    time.Date(2024, 3, 8, 23, 59, 0, 0, time.UTC),
		File:        testutil.NewUpload(t, "chapter4.pdf", testutil.PDF),
	}
	require.NoError(t, na.Validate(context.Background(), core.NewValidator(core.NewTranslator()), f.subjSvc))
	asg, err := f.svc.Create(context.Background(), na)
	require.NoError(t, err)
	return asg
}

func TestService_Create(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	asg := f.create(t, "Kinematics homework")
	assert.Equal(t, t0, asg.Date)
	assert.Equal(t, core.FileTypePDF, asg.File.Type)
	assert.Equal(t, "chapter4.pdf", asg.File.Filename)
	assert.Contains(t, asg.File.URL, "/assignments/")
	assert.Nil(t, asg.Answer)

	notif, err := f.notifSvc.GetByID(ctx, asg.NotificationID)
	require.NoError(t, err)
	assert.Equal(t, "New Assignment: Kinematics homework", notif.Title)
	assert.Equal(t, "Solve the problems in chapter 4. Deadline: Mar 8, 2024. View details in the Assignments section.", notif.Description)
	assert.Equal(t, core.Level200, notif.Level)
}

func TestNewAssignment_Validate(t *testing.T) {
	f := setup(t)
	validate := core.NewValidator(core.NewTranslator())
	ctx := context.Background()

	tests := []struct {
		name    string
		modify  func(na *assignment.NewAssignment)
		wantErr bool
	}{
		{name: "valid", modify: func(na *assignment.NewAssignment) {}},
		{name: "image file", modify: func(na *assignment.NewAssignment) { na.File = testutil.NewUpload(t, "scan.png", testutil.PNG) }},
		{name: "short title", modify: func(na *assignment.NewAssignment) { na.Title = "Hw" }, wantErr: true},
		{name: "bad level", modify: func(na *assignment.NewAssignment) { na.Level = "500" }, wantErr: true},
		{name: "unknown subject", modify: func(na *assignment.NewAssignment) { na.Subject = "Alchemy" }, wantErr: true},
		{name: "missing file", modify: func(na *assignment.NewAssignment) { na.File = nil }, wantErr: true},
		{name: "video file", modify: func(na *assignment.NewAssignment) { na.File = testutil.NewUpload(t, "lecture.mp4", testutil.MP4) }, wantErr: true},
		{name: "video answer", modify: func(na *assignment.NewAssignment) { na.Answer = testutil.NewUpload(t, "answer.mp4", testutil.MP4) }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			na := assignment.NewAssignment{
				Title:       "Essay on waves",
				Description: "Write two pages about waves",
				Subject:     " Physics ",
				Deadline:    t0.Add(7 * 24 * time.Hour),
				File:        testutil.NewUpload(t, "essay.pdf", testutil.PDF),
			}
			tt.modify(&na)
			err := na.Validate(ctx, validate, f.subjSvc)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				assert.Equal(t, core.Level100, na.Level)
				assert.Equal(t, "Physics", na.Subject)
			}
		})
	}
}

func TestService_Submit(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	asg := f.create(t, "Kinematics homework")

	f.clock.Advance(time.Hour)
	submitted, err := f.svc.Submit(ctx, asg.ID)
	require.NoError(t, err)
	require.True(t, submitted.Submitted)
	assert.Equal(t, t0.Add(time.Hour), *submitted.SubmissionDate)

	// the assignment and its notification are submitted at the same instant
	notif, err := f.notifSvc.GetByID(ctx, asg.NotificationID)
	require.NoError(t, err)
	require.True(t, notif.Submitted)
	assert.Equal(t, *submitted.SubmissionDate, *notif.SubmissionDate)

	// still listed within the window
	f.clock.Set(t0.Add(25 * time.Hour))
	page, err := f.svc.Query(ctx, listing.Filter{}, 1)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	// hidden once the window has elapsed, on both listings
	f.clock.Set(t0.Add(25*time.Hour + time.Second))
	page, err = f.svc.Query(ctx, listing.Filter{}, 1)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	notifs, err := f.notifSvc.Query(ctx, listing.Filter{}, 1)
	require.NoError(t, err)
	assert.Empty(t, notifs.Items)

	// resubmitting restarts the window
	_, err = f.svc.Submit(ctx, asg.ID)
	require.NoError(t, err)
	page, err = f.svc.Query(ctx, listing.Filter{}, 1)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	_, err = f.svc.Submit(ctx, "nope")
	assert.Equal(t, assignment.ErrNotFound, err)
}

func TestService_SubmitWithoutNotification(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	asg := f.create(t, "Kinematics homework")
	require.NoError(t, f.notifSvc.Delete(ctx, asg.NotificationID))

	submitted, err := f.svc.Submit(ctx, asg.ID)
	require.NoError(t, err)
	assert.True(t, submitted.Submitted)
}

func TestService_UploadAnswer(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	asg := f.create(t, "Kinematics homework")

	_, err := f.svc.UploadAnswer(ctx, asg.ID, testutil.NewUpload(t, "answer.mp4", testutil.MP4))
	assert.IsType(t, &core.ValidationError{}, err)

	got, err := f.svc.UploadAnswer(ctx, asg.ID, testutil.NewUpload(t, "answer.png", testutil.PNG))
	require.NoError(t, err)
	require.NotNil(t, got.Answer)
	assert.Equal(t, core.FileTypeImage, got.Answer.Type)
	assert.Equal(t, "answer.png", got.Answer.Filename)

	_, err = f.svc.UploadAnswer(ctx, "nope", testutil.NewUpload(t, "answer.pdf", testutil.PDF))
	assert.Equal(t, assignment.ErrNotFound, err)
}

func TestService_Delete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	asg := f.create(t, "Kinematics homework")

	require.NoError(t, f.svc.Delete(ctx, asg.ID))
	_, err := f.svc.GetByID(ctx, asg.ID)
	assert.Equal(t, assignment.ErrNotFound, err)
	_, err = f.notifSvc.GetByID(ctx, asg.NotificationID)
	assert.Equal(t, notification.ErrNotFound, err)

	assert.Equal(t, assignment.ErrNotFound, f.svc.Delete(ctx, asg.ID))
}
