package tests

import (
	"net/http"
	"testing"

	. "github.com/trezcool/comatt/apps/api/echo"
	"github.com/trezcool/comatt/core/user"
)

func Test_userApi_login(t *testing.T) {
	badCreds := httpErr{Error: "authentication failed"}

	tests := []httpTest{
		{
			name:     "ok",
			body:     marchallObj(t, LoginRequest{Username: "plain", Password: "Secret123!"}),
			wantCode: http.StatusOK,
		},
		{
			name:     "login is case insensitive",
			body:     marchallObj(t, LoginRequest{Username: " Plain ", Password: "Secret123!"}),
			wantCode: http.StatusOK,
		},
		{
			name:     "email works too",
			body:     marchallObj(t, LoginRequest{Username: "plain@test.cd", Password: "Secret123!"}),
			wantCode: http.StatusOK,
		},
		{
			name:     "wrong password",
			body:     marchallObj(t, LoginRequest{Username: "plain", Password: "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, badCreds),
		},
		{
			name:     "unknown user",
			body:     marchallObj(t, LoginRequest{Username: "ghost", Password: "Secret123!"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, badCreds),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != http.StatusOK {
					t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
				}
				var resp LoginResponse
				decodeBody(t, rec, &resp)
				if resp.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_access(t *testing.T) {
	adminToken := getToken(t, admin)
	teacherToken := getToken(t, teacherUsr)

	tests := []httpTest{
		{
			name:     "query requires auth",
			method:   http.MethodGet,
			path:     "/v1/users",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "query requires admin",
			method:   http.MethodGet,
			path:     "/v1/users",
			token:    teacherToken,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errPermDenied),
		},
		{
			name:     "roles requires admin",
			method:   http.MethodGet,
			path:     "/v1/users/roles",
			token:    teacherToken,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errPermDenied),
		},
		{
			name:     "roles ok",
			method:   http.MethodGet,
			path:     "/v1/users/roles",
			token:    adminToken,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, user.Roles),
		},
		{
			name:     "self retrieve ok",
			method:   http.MethodGet,
			path:     "/v1/users/" + teacherUsr.ID,
			token:    teacherToken,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, teacherUsr),
		},
		{
			name:     "non-admin cannot retrieve others",
			method:   http.MethodGet,
			path:     "/v1/users/" + admin.ID,
			token:    teacherToken,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, errNotFound),
		},
		{
			name:     "admin can retrieve others",
			method:   http.MethodGet,
			path:     "/v1/users/" + teacherUsr.ID,
			token:    adminToken,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, teacherUsr),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_tokenRefresh(t *testing.T) {
	token := getToken(t, teacherUsr)

	req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
	}
	var resp LoginResponse
	decodeBody(t, rec, &resp)
	if resp.Token == "" {
		t.Error("failed! empty token")
	}
}
