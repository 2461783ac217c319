package handler_test

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	env := newTestEnv(t)
	c := env.newSession(t)

	resp, body := doJSON(t, c, http.MethodPost, env.srv.URL+"/api/auth/signup", map[string]string{
		"email":    "a@x.com",
		"fullName": "A",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	user := body["user"].(map[string]interface{})
	assert.Equal(t, "a@x.com", user["email"])
	assert.Equal(t, "A", user["fullName"])

	// the session cookie is set on signup
	var hasJWT bool
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "jwt" && cookie.Value != "" {
			hasJWT = true
			assert.True(t, cookie.HttpOnly, "session cookie must be HTTP-only")
		}
	}
	assert.True(t, hasJWT, "signup did not set the jwt cookie")
}

func TestSignup_NeverLeaksPasswordHash(t *testing.T) {
	env := newTestEnv(t)
	c := env.newSession(t)

	resp, body := doJSON(t, c, http.MethodPost, env.srv.URL+"/api/auth/signup", map[string]string{
		"email":    "a@x.com",
		"fullName": "A",
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	raw, err := json.Marshal(body)
	require.NoError(t, err)
	lower := strings.ToLower(string(raw))
	assert.NotContains(t, lower, "password")
	assert.NotContains(t, lower, "hash")
}

func TestSignup_ShortPassword(t *testing.T) {
	env := newTestEnv(t)
	c := env.newSession(t)

	resp, _ := doJSON(t, c, http.MethodPost, env.srv.URL+"/api/auth/signup", map[string]string{
		"email":    "a@x.com",
		"fullName": "A",
		"password": "12345",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// no user record was created: login with any password stays 401
	resp, _ = doJSON(t, c, http.MethodPost, env.srv.URL+"/api/auth/login", map[string]string{
		"email":    "a@x.com",
		"password": "12345",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSignup_MissingFields(t *testing.T) {
	env := newTestEnv(t)
	c := env.newSession(t)

	testCases := []map[string]string{
		{"fullName": "A", "password": "secret1"},
		{"email": "a@x.com", "password": "secret1"},
		{"email": "a@x.com", "fullName": "A"},
		{},
	}

	for _, tc := range testCases {
		resp, _ := doJSON(t, c, http.MethodPost, env.srv.URL+"/api/auth/signup", tc)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "payload %v", tc)
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	c := env.newSession(t)

	env.signup(t, c, "a@x.com", "A", "secret1")

	resp, _ := doJSON(t, c, http.MethodPost, env.srv.URL+"/api/auth/signup", map[string]string{
		"email":    "a@x.com",
		"fullName": "Other",
		"password": "different7",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// original record unchanged: its password still logs in
	resp, _ = doJSON(t, c, http.MethodPost, env.srv.URL+"/api/auth/login", map[string]string{
		"email":    "a@x.com",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// case-insensitive uniqueness
	resp, _ = doJSON(t, c, http.MethodPost, env.srv.URL+"/api/auth/signup", map[string]string{
		"email":    "A@X.COM",
		"fullName": "Shout",
		"password": "different7",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	c := env.newSession(t)

	env.signup(t, c, "a@x.com", "A", "secret1")

	resp, body := doJSON(t, c, http.MethodPost, env.srv.URL+"/api/auth/login", map[string]string{
		"email":    "a@x.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "a@x.com", user["email"])

	resp, _ = doJSON(t, c, http.MethodPost, env.srv.URL+"/api/auth/login", map[string]string{
		"email":    "a@x.com",
		"password": "not-the-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_NoUserEnumeration(t *testing.T) {
	env := newTestEnv(t)
	c := env.newSession(t)

	env.signup(t, c, "a@x.com", "A", "secret1")

	respWrongPwd, bodyWrongPwd := doJSON(t, c, http.MethodPost, env.srv.URL+"/api/auth/login", map[string]string{
		"email":    "a@x.com",
		"password": "wrong",
	})
	respNoUser, bodyNoUser := doJSON(t, c, http.MethodPost, env.srv.URL+"/api/auth/login", map[string]string{
		"email":    "nobody@x.com",
		"password": "wrong",
	})

	// wrong password and unknown email must be indistinguishable
	assert.Equal(t, http.StatusUnauthorized, respWrongPwd.StatusCode)
	assert.Equal(t, respWrongPwd.StatusCode, respNoUser.StatusCode)
	assert.Equal(t, bodyWrongPwd["message"], bodyNoUser["message"])
}

func TestCheckAuthAndLogout(t *testing.T) {
	env := newTestEnv(t)
	c := env.newSession(t)

	resp, _ := doJSON(t, c, http.MethodGet, env.srv.URL+"/api/auth/check-auth", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "unauthenticated check-auth")

	env.signup(t, c, "a@x.com", "A", "secret1")

	resp, body := doJSON(t, c, http.MethodGet, env.srv.URL+"/api/auth/check-auth", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "a@x.com", body["email"])

	resp, _ = doJSON(t, c, http.MethodPost, env.srv.URL+"/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// session is gone after logout
	resp, _ = doJSON(t, c, http.MethodGet, env.srv.URL+"/api/auth/check-auth", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	c := env.newSession(t)

	env.signup(t, c, "a@x.com", "A", "secret1")

	png := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte{
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	})
	resp, body := doJSON(t, c, http.MethodPut, env.srv.URL+"/api/auth/update-profile", map[string]string{
		"profilePic": png,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	url, _ := body["profilePic"].(string)
	assert.True(t, strings.HasPrefix(url, "http://localhost/uploads/"), "got %q", url)

	// the new URL shows up on check-auth
	resp, body = doJSON(t, c, http.MethodGet, env.srv.URL+"/api/auth/check-auth", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, url, body["profilePic"])
}

func TestUpdateProfile_MissingPicture(t *testing.T) {
	env := newTestEnv(t)
	c := env.newSession(t)

	env.signup(t, c, "a@x.com", "A", "secret1")

	resp, _ := doJSON(t, c, http.MethodPut, env.srv.URL+"/api/auth/update-profile", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
