package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	token, err := Generate("s3cret", "u-1", RoleAdmin, "ventas-lotes-api", 5)
	require.NoError(t, err)

	claims, err := Parse("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "ventas-lotes-api", claims.Issuer)
}

func TestParse_Rejects(t *testing.T) {
	token, err := Generate("s3cret", "u-1", RoleSeller, "x", 5)
	require.NoError(t, err)
	expired, err := Generate("s3cret", "u-1", RoleSeller, "x", -1)
	require.NoError(t, err)

	_, err = Parse("otro", token)
	assert.Error(t, err)
	_, err = Parse("s3cret", expired)
	assert.Error(t, err)
	_, err = Parse("s3cret", "no-es-un-token")
	assert.Error(t, err)
	_, err = Parse("", token)
	assert.Error(t, err)
}

func TestGenerate_RequiresSecretAndUser(t *testing.T) {
	_, err := Generate("", "u-1", RoleAdmin, "x", 5)
	assert.Error(t, err)
	_, err = Generate("s", "", RoleAdmin, "x", 5)
	assert.Error(t, err)
}
