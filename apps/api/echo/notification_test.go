package echoapi_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/deptportal/core"
	"github.com/trezcool/deptportal/core/listing"
	"github.com/trezcool/deptportal/core/notification"
	"github.com/trezcool/deptportal/core/subscriber"
	pushsvc "github.com/trezcool/deptportal/services/push"
	testutil "github.com/trezcool/deptportal/tests"
)

func notifPage(items []notification.Notification, number, total int) listing.Page[notification.Notification] {
	return listing.Page[notification.Notification]{
		Items:      items,
		Number:     number,
		Size:       5,
		TotalItems: total,
		TotalPages: listing.TotalPages(total, 5),
	}
}

func Test_notificationApi_query(t *testing.T) {
	app := setup(t)
	app.clock.Set(t0.Add(30 * time.Hour))

	var all []notification.Notification
	for i, id := range []string{"n1", "n2", "n3", "n4", "n5", "n6"} {
		all = append(all, testutil.CreateNotification(t, app.notifs, id, core.Level100, t0.Add(time.Duration(i)*time.Hour)))
	}
	n7 := testutil.CreateNotification(t, app.notifs, "n7", core.Level300, t0.Add(7*time.Hour), t0.Add(20*time.Hour))
	testutil.CreateNotification(t, app.notifs, "n8", core.Level300, t0.Add(4*time.Hour), t0.Add(5*time.Hour)) // window is over

	runHTTPTests(t, app, []httpTest{
		{
			name:     "first page by default",
			method:   http.MethodGet,
			path:     "/api/notifications",
			wantCode: http.StatusOK,
			wantData: marchallObj(t, notifPage([]notification.Notification{n7, all[5], all[4], all[3], all[2]}, 1, 7)),
		},
		{
			name:     "second page",
			method:   http.MethodGet,
			path:     "/api/notifications?page=2",
			wantCode: http.StatusOK,
			wantData: marchallObj(t, notifPage([]notification.Notification{all[1], all[0]}, 2, 7)),
		},
		{
			name:     "beyond the last page",
			method:   http.MethodGet,
			path:     "/api/notifications?page=3",
			wantCode: http.StatusOK,
			wantData: marchallObj(t, notifPage([]notification.Notification{}, 3, 7)),
		},
		{
			name:     "level filter",
			method:   http.MethodGet,
			path:     "/api/notifications?level=300",
			wantCode: http.StatusOK,
			wantData: marchallObj(t, notifPage([]notification.Notification{n7}, 1, 1)),
		},
		{
			name:     "All levels",
			method:   http.MethodGet,
			path:     "/api/notifications?level=All&page=2",
			wantCode: http.StatusOK,
			wantData: marchallObj(t, notifPage([]notification.Notification{all[1], all[0]}, 2, 7)),
		},
		{
			name:     "filters notifications do not carry are ignored",
			method:   http.MethodGet,
			path:     "/api/notifications?subject=Physics&file_type=pdf&q=exam&page=2",
			wantCode: http.StatusOK,
			wantData: marchallObj(t, notifPage([]notification.Notification{all[1], all[0]}, 2, 7)),
		},
		{
			name:     "page zero",
			method:   http.MethodGet,
			path:     "/api/notifications?page=0",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "page not a number",
			method:   http.MethodGet,
			path:     "/api/notifications?page=last",
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"page": "page must be an integer"}),
		},
		{
			name:     "detail",
			method:   http.MethodGet,
			path:     "/api/notifications/n7",
			wantCode: http.StatusOK,
			wantData: marchallObj(t, n7),
		},
		{
			name:     "detail not found",
			method:   http.MethodGet,
			path:     "/api/notifications/nope",
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "notification not found"}),
		},
	})
}

func Test_notificationApi_brokenRecord(t *testing.T) {
	app := setup(t)
	app.clock.Set(t0.Add(6 * time.Hour))
	testutil.CreateNotification(t, app.notifs, "n1", core.Level100, t0)
	testutil.CreateNotification(t, app.notifs, "n-broken", core.Level100, t0.Add(5*time.Hour), t0.Add(time.Hour))

	for _, path := range []string{"/api/notifications", "/api/levels/100"} {
		t.Run(path, func(t *testing.T) {
			app.logs.Reset()
			req, rec := newRequest(http.MethodGet, path)
			app.serve(req, rec)

			checkCodeAndData(t, httpTest{
				wantCode: http.StatusInternalServerError,
				wantData: marchallObj(t, httpErr{Error: http.StatusText(http.StatusInternalServerError)}),
			}, rec)
			assert.NotContains(t, rec.Body.String(), "invalid record state")
			assert.NotContains(t, rec.Body.String(), "n-broken")
			assert.Contains(t, app.logs.String(), "record_id:n-broken")
		})
	}
}

func Test_notificationApi_create(t *testing.T) {
	app := setup(t)

	// subscribe a device first
	req, rec := newRequest(http.MethodPost, "/api/subscribers", marchallObj(t, subscriber.NewSubscriber{Token: "device-1"}))
	app.serve(req, rec)
	require.Equal(t, http.StatusCreated, rec.Code)

	data := notification.NewNotification{Title: "Exam week", Description: "Exams start on Monday.", Level: core.Level200}

	runHTTPTests(t, app, []httpTest{
		{
			name:     "not authenticated",
			method:   http.MethodPost,
			path:     "/api/notifications",
			body:     marchallObj(t, data),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "invalid",
			method:   http.MethodPost,
			path:     "/api/notifications",
			body:     marchallObj(t, notification.NewNotification{Title: "Exam week", Description: "Soon", Level: "500"}),
			token:    app.token,
			wantCode: http.StatusBadRequest,
		},
	})
	assert.Empty(t, pushsvc.Sent())

	req, rec = newAuthRequest(http.MethodPost, "/api/notifications", app.token, marchallObj(t, data))
	app.serve(req, rec)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var notif notification.Notification
	unmarshal(t, rec, &notif)
	assert.Equal(t, data.Title, notif.Title)
	assert.Equal(t, core.Level200, notif.Level)
	assert.True(t, notif.Date.Equal(t0))
	assert.False(t, notif.Submitted)

	sent := pushsvc.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"device-1"}, sent[0].Tokens)
	assert.Equal(t, data.Title, sent[0].Title)
}

func Test_notificationApi_destroy(t *testing.T) {
	app := setup(t)
	testutil.CreateNotification(t, app.notifs, "n1", core.Level100, t0)

	runHTTPTests(t, app, []httpTest{
		{
			name:     "not authenticated",
			method:   http.MethodDelete,
			path:     "/api/notifications/n1",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "deleted",
			method:   http.MethodDelete,
			path:     "/api/notifications/n1",
			token:    app.token,
			wantCode: http.StatusNoContent,
		},
		{
			name:     "already deleted",
			method:   http.MethodDelete,
			path:     "/api/notifications/n1",
			token:    app.token,
			wantCode: http.StatusNotFound,
		},
	})
}
