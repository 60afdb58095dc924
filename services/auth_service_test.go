package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbowman189/vitruvian/models"
	"github.com/nbowman189/vitruvian/utils"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	newTestDB(t)

	require.NoError(t, RegisterUser("me@example.com", "hunter2hunter2", "N. Bowman"))

	user, err := FindUserByEmail("me@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2hunter2", user.Password) // stored hashed
	assert.True(t, utils.CheckPasswordHash("hunter2hunter2", user.Password))

	token, err := AuthenticateUser("me@example.com", "hunter2hunter2", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = AuthenticateUser("me@example.com", "wrong-password", time.Hour)
	assert.Error(t, err)

	_, err = AuthenticateUser("nobody@example.com", "hunter2hunter2", time.Hour)
	assert.Error(t, err)
}

func TestDuplicateEmailRejected(t *testing.T) {
	newTestDB(t)

	require.NoError(t, RegisterUser("dup@example.com", "hunter2hunter2", "One"))
	assert.Error(t, RegisterUser("dup@example.com", "hunter2hunter2", "Two"))
}

func TestPasswordReset(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, RegisterUser("reset@example.com", "original-pass", "R."))

	// The mailer is uninitialized in tests, so StartPasswordReset only
	// stores the code.
	require.NoError(t, StartPasswordReset("reset@example.com"))

	var user models.User
	require.NoError(t, db.Where("email = ?", "reset@example.com").First(&user).Error)
	require.NotEmpty(t, user.ResetToken)

	require.NoError(t, ResetPassword(user.ResetToken, "brand-new-pass"))

	require.NoError(t, db.Where("email = ?", "reset@example.com").First(&user).Error)
	assert.Empty(t, user.ResetToken)
	assert.True(t, utils.CheckPasswordHash("brand-new-pass", user.Password))

	assert.Error(t, ResetPassword("bogus-token", "whatever-pass"))
}

func TestExpiredResetTokenRejected(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, RegisterUser("expired@example.com", "original-pass", "E."))
	require.NoError(t, StartPasswordReset("expired@example.com"))

	var user models.User
	require.NoError(t, db.Where("email = ?", "expired@example.com").First(&user).Error)
	user.ResetTokenExp = time.Now().Add(-time.Minute)
	require.NoError(t, db.Save(&user).Error)

	assert.Error(t, ResetPassword(user.ResetToken, "new-pass-12345"))
}
