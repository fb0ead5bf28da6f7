package echoapi_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/deptportal/apps/api/echo"
	"github.com/trezcool/deptportal/core"
)

func Test_adminApi_login(t *testing.T) {
	app := setup(t)

	tests := []struct {
		name     string
		data     LoginRequest
		wantCode int
		wantData []byte
	}{
		{
			name:     "valid",
			data:     LoginRequest{Email: " Admin@Dept.edu ", Password: adminPassword},
			wantCode: http.StatusOK,
		},
		{
			name:     "wrong password",
			data:     LoginRequest{Email: adminEmail, Password: "wrong"},
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "unknown admin",
			data:     LoginRequest{Email: "nobody@dept.edu", Password: adminPassword},
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "missing password",
			data:     LoginRequest{Email: adminEmail},
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password": "this field is required"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/admin/login", marchallObj(t, tt.data))
			app.serve(req, rec)
			checkCodeAndData(t, httpTest{wantCode: tt.wantCode, wantData: tt.wantData}, rec)

			if tt.wantCode == http.StatusOK {
				var resp LoginResponse
				unmarshal(t, rec, &resp)
				require.NotEmpty(t, resp.Token)

				// the token opens admin endpoints
				req, rec = newAuthRequest(http.MethodPost, "/api/subjects", resp.Token, marchallObj(t, map[string]string{"name": "Physics"}))
				app.serve(req, rec)
				assert.Equal(t, http.StatusCreated, rec.Code)
			}
		})
	}
}

func Test_adminApi_refreshToken(t *testing.T) {
	app := setup(t)

	removed := getToken(t, app.conf, core.Admin{Email: "former@dept.edu"})
	stale := getToken(t, app.conf, core.Admin{Email: adminEmail}, time.Now().Add(-48*time.Hour).Unix())

	tests := []httpTest{
		{
			name:     "no token",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "invalid token",
			token:    "not-a-jwt",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "invalid or expired jwt"}),
		},
		{
			name:     "admin removed since login",
			token:    removed,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "admin account removed"}),
		},
		{
			name:     "refresh expired",
			token:    stale,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "refresh has expired"}),
		},
		{
			name:     "valid",
			token:    app.token,
			wantCode: http.StatusOK,
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/api/admin/token-refresh"
	}
	runHTTPTests(t, app, tests)
}

func Test_adminMiddleware(t *testing.T) {
	app := setup(t)
	removed := getToken(t, app.conf, core.Admin{Email: "former@dept.edu"})

	runHTTPTests(t, app, []httpTest{
		{
			name:     "no token",
			method:   http.MethodPost,
			path:     "/api/subjects",
			body:     marchallObj(t, map[string]string{"name": "Physics"}),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "admin no longer configured",
			method:   http.MethodPost,
			path:     "/api/subjects",
			body:     marchallObj(t, map[string]string{"name": "Physics"}),
			token:    removed,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
	})
}
