package views

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/taskflow/internal/api"
	"github.com/tgienger/taskflow/internal/models"
)

func fillLogin(v *LoginView, email, password string) {
	typeText(v, email)
	press(v, "tab")
	typeText(v, password)
}

func TestLoginSubmitsCredentials(t *testing.T) {
	auth := &stubAuth{identity: &models.Identity{Email: "ada@example.com", FullName: "Ada"}}
	v := NewLoginView(auth)

	fillLogin(v, "ada@example.com", "secret")
	cmd := press(v, "enter")
	require.NotNil(t, cmd)
	assert.True(t, v.Submitting())

	settle(t, v, cmd)

	assert.Equal(t, 1, auth.logins)
	assert.Equal(t, "ada@example.com", auth.lastEmail)
	assert.False(t, v.Submitting())
	assert.Empty(t, v.Err())
}

func TestLoginShowsBackendMessage(t *testing.T) {
	auth := &stubAuth{err: &api.Error{StatusCode: http.StatusUnauthorized, Message: "Invalid email or password"}}
	v := NewLoginView(auth)

	fillLogin(v, "ada@example.com", "wrong")
	settle(t, v, press(v, "enter"))

	assert.Equal(t, "Invalid email or password", v.Err())
	assert.Contains(t, v.View(), "Invalid email or password")
	assert.False(t, v.Submitting())
}

func TestLoginRequiresBothFields(t *testing.T) {
	auth := &stubAuth{}
	v := NewLoginView(auth)

	typeText(v, "ada@example.com")
	press(v, "tab")
	assert.Nil(t, press(v, "enter"))

	assert.Equal(t, 0, auth.logins)
	assert.Equal(t, "Email and password are required", v.Err())
}

func TestLoginEnterOnEmailMovesFocus(t *testing.T) {
	auth := &stubAuth{}
	v := NewLoginView(auth)

	typeText(v, "ada@example.com")
	assert.Nil(t, press(v, "enter"))
	typeText(v, "secret")

	assert.Equal(t, "ada@example.com", v.email.Value())
	assert.Equal(t, "secret", v.password.Value())
	assert.Equal(t, 0, auth.logins)
}
