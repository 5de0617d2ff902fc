package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kelasi/core/user"
)

func Test_userLogin(t *testing.T) {
	env := newTestEnv(t)

	env.createUser(t, "Active Admin", "admin@test.cd", "LePassword7", user.RoleAdmin, true)
	env.createUser(t, "Inactive Admin", "inactive@test.cd", "LePassword7", user.RoleAdmin, false)

	tests := []httpTest{
		{
			name: "empty body", method: http.MethodPost, path: "/v1/users/login",
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown user", method: http.MethodPost, path: "/v1/users/login",
			body:     marchallObj(t, LoginRequest{Email: "who@test.cd", Password: "LePassword7"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", method: http.MethodPost, path: "/v1/users/login",
			body:     marchallObj(t, LoginRequest{Email: "admin@test.cd", Password: "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", method: http.MethodPost, path: "/v1/users/login",
			body:     marchallObj(t, LoginRequest{Email: "inactive@test.cd", Password: "LePassword7"}),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("success", func(t *testing.T) {
		body := marchallObj(t, LoginRequest{Email: "admin@test.cd", Password: "LePassword7"})
		req, rec := newRequest(http.MethodPost, "/v1/users/login", body)
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var res TokenResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.NotEmpty(t, res.Token)
	})
}

func Test_userRetrieveSelf(t *testing.T) {
	env := newTestEnv(t)
	usr := env.createUser(t, "Admin", "admin@test.cd", "LePassword7", user.RoleAdmin, true)

	t.Run("unauthenticated", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
		req, rec := newRequest(http.MethodGet, "/v1/users/me")
		env.server.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("authenticated", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/me", getToken(t, usr))
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var got user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, usr.ID, got.ID)
		assert.Equal(t, usr.Email, got.Email)
	})
}

func Test_userAdministration(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "Admin", "admin@test.cd", "LePassword7", user.RoleAdmin, true)
	super := env.createUser(t, "Super", "super@test.cd", "LePassword7", user.RoleSuperadmin, true)
	adminToken := getToken(t, admin)
	superToken := getToken(t, super)

	forbidden := marchallObj(t, httpErr{Error: "permission denied"})

	tests := []httpTest{
		{
			name: "query: plain admin is forbidden", method: http.MethodGet, path: "/v1/users",
			token: adminToken, wantCode: http.StatusForbidden, wantData: forbidden,
		},
		{
			name: "create: plain admin is forbidden", method: http.MethodPost, path: "/v1/users",
			token: adminToken, wantCode: http.StatusForbidden, wantData: forbidden,
		},
		{
			name: "destroy self is forbidden", method: http.MethodDelete, path: "/v1/users/" + super.ID,
			token: superToken, wantCode: http.StatusForbidden, wantData: forbidden,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("superadmin can create users", func(t *testing.T) {
		body := marchallObj(t, user.NewUser{
			Name:            "New Admin",
			Email:           "new@test.cd",
			Password:        "LeGrandSecret7",
			PasswordConfirm: "LeGrandSecret7",
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/users", superToken, body)
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var got user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, user.RoleAdmin, got.Role) // default role
		assert.True(t, got.Active())
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		body := marchallObj(t, user.NewUser{
			Name:            "Dupe",
			Email:           "new@test.cd",
			Password:        "LeGrandSecret7",
			PasswordConfirm: "LeGrandSecret7",
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/users", superToken, body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("superadmin can query users", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users", superToken)
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var got []user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Len(t, got, 3)
	})

	t.Run("superadmin can update role", func(t *testing.T) {
		body := marchallObj(t, user.UpdateUser{Role: user.RoleSuperadmin})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+admin.ID, superToken, body)
		env.server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var got user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, user.RoleSuperadmin, got.Role)
	})

	t.Run("superadmin cannot demote themselves", func(t *testing.T) {
		body := marchallObj(t, user.UpdateUser{Role: user.RoleAdmin})
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+super.ID, superToken, body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("superadmin can delete another user", func(t *testing.T) {
		victim := env.createUser(t, "Victim", "victim@test.cd", "LePassword7", user.RoleAdmin, true)
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+victim.ID, superToken)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
