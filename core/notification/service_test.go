package notification_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/deptportal/core"
	"github.com/trezcool/deptportal/core/listing"
	"github.com/trezcool/deptportal/core/notification"
	"github.com/trezcool/deptportal/core/subscriber"
	logsvc "github.com/trezcool/deptportal/services/logger"
	pushsvc "github.com/trezcool/deptportal/services/push"
	inmemdb "github.com/trezcool/deptportal/storage/database/inmem"
	testutil "github.com/trezcool/deptportal/tests"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	repo  notification.Repository
	subs  *subscriber.Service
	svc   *notification.Service
	clock *testutil.Clock
}

func setup(t *testing.T) fixture {
	t.Helper()
	conf := testutil.NewConfig()
	logger := logsvc.NewSilentLogger(conf)
	db := inmemdb.Open()

	f := fixture{
		repo:  inmemdb.NewNotificationRepository(db),
		subs:  subscriber.NewService(inmemdb.NewSubscriberRepository(db)),
		clock: testutil.NewClock(t0),
	}
	f.svc = notification.NewService(f.repo, f.subs, pushsvc.NewConsoleServiceMock(logger, conf), logger, conf)
	f.svc.SetNowFunc(f.clock.Func())
	pushsvc.ResetSentMessages()
	return f
}

func TestService_Create(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// nobody subscribed yet
	_, err := f.svc.Create(ctx, notification.NewNotification{Title: "Exam week", Description: "Exams start on Monday.", Level: core.Level200})
	require.NoError(t, err)
	assert.Empty(t, pushsvc.Sent())

	_, err = f.subs.Subscribe(ctx, subscriber.NewSubscriber{Token: "device-1"})
	require.NoError(t, err)

	notif, err := f.svc.Create(ctx, notification.NewNotification{Title: "Lab closed", Description: "The lab is closed on Friday."})
	require.NoError(t, err)
	assert.Equal(t, core.Level100, notif.Level)
	assert.Equal(t, t0, notif.Date)
	assert.False(t, notif.Submitted)

	sent := pushsvc.Sent()
	if assert.Len(t, sent, 1) {
		assert.Equal(t, []string{"device-1"}, sent[0].Tokens)
		assert.Equal(t, "Lab closed", sent[0].Title)
		assert.Equal(t, notif.ID, sent[0].Data["notification_id"])
	}
}

func TestService_Query(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for i, id := range []string{"n1", "n2", "n3", "n4", "n5", "n6"} {
		testutil.CreateNotification(t, f.repo, id, core.Level100, t0.Add(time.Duration(i)*time.Hour))
	}
	// submitted 25h before "now": hidden
	testutil.CreateNotification(t, f.repo, "old", core.Level100, t0.Add(-20*time.Hour), t0.Add(-19*time.Hour))
	f.clock.Set(t0.Add(6 * time.Hour))

	page, err := f.svc.Query(ctx, listing.Filter{}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"n6", "n5", "n4", "n3", "n2"}, ids(page.Items))
	assert.Equal(t, 6, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)

	page, err = f.svc.Query(ctx, listing.Filter{}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"n1"}, ids(page.Items))

	page, err = f.svc.Query(ctx, listing.Filter{Level: core.Level100, Subject: "Physics", FileType: "pdf", Query: "n1"}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"n1"}, ids(page.Items))
	assert.Equal(t, 6, page.TotalItems)

	page, err = f.svc.Query(ctx, listing.Filter{Level: core.Level300}, 1)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.TotalPages)

	_, err = f.svc.Query(ctx, listing.Filter{}, 0)
	assert.True(t, errors.Is(err, listing.ErrInvalidPageRequest))
}

func TestService_Latest(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for i, id := range []string{"n1", "n2", "n3", "n4"} {
		testutil.CreateNotification(t, f.repo, id, core.Level400, t0.Add(time.Duration(i)*time.Hour))
	}
	testutil.CreateNotification(t, f.repo, "other", core.Level100, t0.Add(5*time.Hour))
	f.clock.Set(t0.Add(6 * time.Hour))

	latest, err := f.svc.Latest(ctx, core.Level400)
	require.NoError(t, err)
	assert.Equal(t, []string{"n4", "n3", "n2"}, ids(latest))
}

func TestService_MarkSubmitted(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	testutil.CreateNotification(t, f.repo, "n1", core.Level100, t0)

	require.NoError(t, f.svc.MarkSubmitted(ctx, "n1", t0.Add(time.Hour)))
	f.clock.Set(t0.Add(26 * time.Hour))
	page, err := f.svc.Query(ctx, listing.Filter{}, 1)
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	assert.True(t, core.IsNotFound(f.svc.MarkSubmitted(ctx, "nope", t0)))
}

func ids(notifs []notification.Notification) []string {
	out := make([]string, 0, len(notifs))
	for _, n := range notifs {
		out = append(out, n.ID)
	}
	return out
}
