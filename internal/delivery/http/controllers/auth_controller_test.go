package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"eventscout/internal/delivery/http/helpers"
	"eventscout/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserService struct {
	registerUser *domain.User
	registerErr  error
	loginToken   string
	loginUser    *domain.User
	loginErr     error
	loginAs      string
	prefs        *domain.Preferences
	prefsErr     error
	updateErr    error
	updateEmail  string
	updateCity   *string
	updateInts   []string
	upgradeURL   string
	upgradeErr   error
}

func (f *fakeUserService) Register(ctx context.Context, name, email, password, role string) (*domain.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.registerUser, nil
}

func (f *fakeUserService) Login(ctx context.Context, email, password, loginAs string) (string, *domain.User, error) {
	f.loginAs = loginAs
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return f.loginToken, f.loginUser, nil
}

func (f *fakeUserService) GetPreferences(ctx context.Context, email string) (*domain.Preferences, error) {
	if f.prefsErr != nil {
		return nil, f.prefsErr
	}
	return f.prefs, nil
}

func (f *fakeUserService) UpdatePreferences(ctx context.Context, email string, city *string, interests []string) error {
	f.updateEmail = email
	f.updateCity = city
	f.updateInts = interests
	return f.updateErr
}

func (f *fakeUserService) UpgradePlan(ctx context.Context, email string) (string, error) {
	if f.upgradeErr != nil {
		return "", f.upgradeErr
	}
	return f.upgradeURL, nil
}

func postJSON(t *testing.T, handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestAuthController_Register(t *testing.T) {
	t.Run("creates a user", func(t *testing.T) {
		svc := &fakeUserService{registerUser: &domain.User{
			ID: 1, Name: "Asha", Email: "asha@example.com",
			Role: "user", Plan: "free", Interests: []string{}, CreatedAt: time.Now(),
		}}
		ctrl := NewAuthController(testLogger, svc)

		rec := postJSON(t, ctrl.Register, "/api/auth/register",
			`{"name": "Asha", "email": "asha@example.com", "password": "s3cret"}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
		resp := decodeResponse(t, rec)
		assert.Nil(t, resp.Error)
		data, ok := resp.Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "asha@example.com", data["email"])
		assert.NotContains(t, rec.Body.String(), "password", "password hash must never leave the API")
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		ctrl := NewAuthController(testLogger, &fakeUserService{})

		rec := postJSON(t, ctrl.Register, "/api/auth/register", `{"email": "asha@example.com"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeResponse(t, rec)
		require.NotNil(t, resp.Error)
		assert.Equal(t, helpers.ErrCodeBadRequest, resp.Error.Code)
	})

	t.Run("rejects bad email format", func(t *testing.T) {
		ctrl := NewAuthController(testLogger, &fakeUserService{})

		rec := postJSON(t, ctrl.Register, "/api/auth/register",
			`{"name": "Asha", "email": "not-an-email", "password": "s3cret"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc := &fakeUserService{registerErr: domain.ErrDuplicateEmail}
		ctrl := NewAuthController(testLogger, svc)

		rec := postJSON(t, ctrl.Register, "/api/auth/register",
			`{"name": "Asha", "email": "asha@example.com", "password": "s3cret"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeResponse(t, rec)
		require.NotNil(t, resp.Error)
		assert.Contains(t, resp.Error.Message, "already registered")
	})

	t.Run("service failure", func(t *testing.T) {
		svc := &fakeUserService{registerErr: errors.New("connection refused")}
		ctrl := NewAuthController(testLogger, svc)

		rec := postJSON(t, ctrl.Register, "/api/auth/register",
			`{"name": "Asha", "email": "asha@example.com", "password": "s3cret"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestAuthController_Login(t *testing.T) {
	t.Run("returns token and user", func(t *testing.T) {
		svc := &fakeUserService{
			loginToken: "tok123",
			loginUser:  &domain.User{ID: 1, Email: "asha@example.com", Role: "user"},
		}
		ctrl := NewAuthController(testLogger, svc)

		rec := postJSON(t, ctrl.Login, "/api/auth/login",
			`{"email": "asha@example.com", "password": "s3cret"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		resp := decodeResponse(t, rec)
		data, ok := resp.Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "tok123", data["token"])
		assert.Equal(t, "Bearer", data["token_type"])
	})

	t.Run("normalizes login_as before the service call", func(t *testing.T) {
		svc := &fakeUserService{loginToken: "tok123", loginUser: &domain.User{}}
		ctrl := NewAuthController(testLogger, svc)

		postJSON(t, ctrl.Login, "/api/auth/login",
			`{"email": "asha@example.com", "password": "s3cret", "login_as": " Admin "}`)

		assert.Equal(t, "admin", svc.loginAs)
	})

	t.Run("bad credentials map to 401", func(t *testing.T) {
		for _, svcErr := range []error{domain.ErrUserNotFound, domain.ErrInvalidCredentials} {
			svc := &fakeUserService{loginErr: svcErr}
			ctrl := NewAuthController(testLogger, svc)

			rec := postJSON(t, ctrl.Login, "/api/auth/login",
				`{"email": "asha@example.com", "password": "wrong"}`)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			resp := decodeResponse(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "invalid credentials", resp.Error.Message,
				"unknown email and wrong password must be indistinguishable")
		}
	})

	t.Run("role mismatch maps to 403", func(t *testing.T) {
		svc := &fakeUserService{loginErr: domain.ErrWrongRole}
		ctrl := NewAuthController(testLogger, svc)

		rec := postJSON(t, ctrl.Login, "/api/auth/login",
			`{"email": "asha@example.com", "password": "s3cret", "login_as": "admin"}`)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		ctrl := NewAuthController(testLogger, &fakeUserService{})

		rec := postJSON(t, ctrl.Login, "/api/auth/login", `{"email": "asha@example.com"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthController_GetPreferences(t *testing.T) {
	t.Run("returns preferences", func(t *testing.T) {
		svc := &fakeUserService{prefs: &domain.Preferences{City: ptr("Ahmedabad"), Interests: []string{"Music"}}}
		ctrl := NewAuthController(testLogger, svc)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/preferences?email=asha@example.com", nil)
		rec := httptest.NewRecorder()
		ctrl.GetPreferences(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"data": {"city": "Ahmedabad", "interests": ["Music"]}, "error": null}`, rec.Body.String())
	})

	t.Run("missing email", func(t *testing.T) {
		ctrl := NewAuthController(testLogger, &fakeUserService{})

		req := httptest.NewRequest(http.MethodGet, "/api/auth/preferences", nil)
		rec := httptest.NewRecorder()
		ctrl.GetPreferences(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc := &fakeUserService{prefsErr: domain.ErrUserNotFound}
		ctrl := NewAuthController(testLogger, svc)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/preferences?email=ghost@example.com", nil)
		rec := httptest.NewRecorder()
		ctrl.GetPreferences(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		resp := decodeResponse(t, rec)
		require.NotNil(t, resp.Error)
		assert.Equal(t, helpers.ErrCodeNotFound, resp.Error.Code)
	})
}

func TestAuthController_UpdatePreferences(t *testing.T) {
	t.Run("stores and echoes the preferences", func(t *testing.T) {
		svc := &fakeUserService{}
		ctrl := NewAuthController(testLogger, svc)

		rec := postJSON(t, ctrl.UpdatePreferences, "/api/auth/preferences",
			`{"email": "asha@example.com", "city": "Ahmedabad", "interests": ["Music", "Tech"]}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "asha@example.com", svc.updateEmail)
		require.NotNil(t, svc.updateCity)
		assert.Equal(t, "Ahmedabad", *svc.updateCity)
		assert.Equal(t, []string{"Music", "Tech"}, svc.updateInts)
		assert.JSONEq(t, `{"data": {"city": "Ahmedabad", "interests": ["Music", "Tech"]}, "error": null}`, rec.Body.String())
	})

	t.Run("omitted interests echo as an empty list", func(t *testing.T) {
		svc := &fakeUserService{}
		ctrl := NewAuthController(testLogger, svc)

		rec := postJSON(t, ctrl.UpdatePreferences, "/api/auth/preferences",
			`{"email": "asha@example.com", "city": "Ahmedabad"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"data": {"city": "Ahmedabad", "interests": []}, "error": null}`, rec.Body.String())
	})

	t.Run("unknown user", func(t *testing.T) {
		svc := &fakeUserService{updateErr: domain.ErrUserNotFound}
		ctrl := NewAuthController(testLogger, svc)

		rec := postJSON(t, ctrl.UpdatePreferences, "/api/auth/preferences",
			`{"email": "ghost@example.com", "city": "Ahmedabad"}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing email", func(t *testing.T) {
		ctrl := NewAuthController(testLogger, &fakeUserService{})

		rec := postJSON(t, ctrl.UpdatePreferences, "/api/auth/preferences", `{"city": "Ahmedabad"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
