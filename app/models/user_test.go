package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	u, err := CreateUser(" Jean.Dupont@Iglesia.com ", "jeandupont", "motdepasse123", "Jean", "Dupont")
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "jean.dupont@iglesia.com", u.Email)
	assert.Equal(t, ROLE_MEMBER, u.Role)
	assert.True(t, u.IsActive())
	assert.False(t, u.IsAdmin())
	assert.True(t, u.DonationTotal.IsZero())
	require.NotNil(t, u.ProfilePicture)
	assert.Contains(t, *u.ProfilePicture, "gravatar.com/avatar/")

	assert.NotEqual(t, "motdepasse123", u.Password)
	assert.True(t, u.CheckPassword("motdepasse123"))
	assert.False(t, u.CheckPassword("wrongpassword"))
}

func TestCreateUserRejectsInvalidEmail(t *testing.T) {
	_, err := CreateUser("not-an-email", "jeandupont", "motdepasse123", "Jean", "Dupont")
	assert.Error(t, err)
}

func TestUserPasswordIsNeverSerialized(t *testing.T) {
	u, err := CreateUser("jean@iglesia.com", "jeandupont", "motdepasse123", "Jean", "Dupont")
	require.NoError(t, err)

	raw, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), u.Password)
}

func TestDecimalAmountsMarshalAsNumbers(t *testing.T) {
	d := Donation{Amount: decimal.RequireFromString("50.00")}

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"amount":50`)
}
