package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/Inventario-kardex/pkg/jwt"
)

const secret = "test-secret-key-for-unit-tests"

func TestJWT_GenerateAndParse(t *testing.T) {
	id := pkgjwt.Identity{UserID: "u1", TenantID: "t1", Role: "bodeguero"}
	tok, err := pkgjwt.Generate(secret, id, "kardex-test", time.Hour)
	require.NoError(t, err)

	got, err := pkgjwt.Parse(secret, "kardex-test", tok)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestJWT_Errores(t *testing.T) {
	id := pkgjwt.Identity{UserID: "u1", TenantID: "t1", Role: "admin"}

	expired, err := pkgjwt.Generate(secret, id, "kardex-test", -time.Minute)
	require.NoError(t, err)
	_, err = pkgjwt.Parse(secret, "", expired)
	assert.Error(t, err, "token expirado")

	tok, err := pkgjwt.Generate(secret, id, "kardex-test", time.Hour)
	require.NoError(t, err)
	_, err = pkgjwt.Parse("otro-secret", "", tok)
	assert.Error(t, err, "secret incorrecto")
	_, err = pkgjwt.Parse(secret, "otro-emisor", tok)
	assert.Error(t, err, "emisor distinto")

	noTenant, err := pkgjwt.Generate(secret, pkgjwt.Identity{UserID: "u1"}, "", time.Hour)
	require.NoError(t, err)
	_, err = pkgjwt.Parse(secret, "", noTenant)
	assert.ErrorIs(t, err, pkgjwt.ErrMissingIdentity)

	_, err = pkgjwt.Generate("", id, "", time.Hour)
	assert.Error(t, err)
}
