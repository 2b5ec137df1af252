package jwt_test

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodega-api/pkg/jwt"
)

const secret = "secreto-de-prueba"

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := jwt.Generate("", "u1", "admin", "bodega-api", 5)
	assert.ErrorIs(t, err, jwt.ErrEmptySecret)

	_, err = jwt.Parse("", "x.y.z")
	assert.ErrorIs(t, err, jwt.ErrEmptySecret)
}

func TestParse_SubjectComoUserID(t *testing.T) {
	claims := jwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   "5b0e4c4e-7a43-4a4e-9d0b-2d7a4b0c1e11",
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
		Role: "bodeguero",
	}
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	identity, err := jwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "5b0e4c4e-7a43-4a4e-9d0b-2d7a4b0c1e11", identity.UserID)
	assert.Equal(t, "bodeguero", identity.Role)
}

func TestParse_RechazaAlgoritmoNone(t *testing.T) {
	claims := jwt.Claims{UserID: "u1", Role: "admin"}
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, claims).SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = jwt.Parse(secret, tok)
	assert.Error(t, err)
}

func TestGenerateYParse_ConservaRol(t *testing.T) {
	tok, err := jwt.Generate(secret, "5b0e4c4e-7a43-4a4e-9d0b-2d7a4b0c1e11", "bodeguero", "bodega-api", 5)
	require.NoError(t, err)

	identity, err := jwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "5b0e4c4e-7a43-4a4e-9d0b-2d7a4b0c1e11", identity.UserID)
	assert.Equal(t, "bodeguero", identity.Role)
}

func TestParse_TokenVencidoOSecretDistinto(t *testing.T) {
	expired, err := jwt.Generate(secret, "u1", "admin", "bodega-api", -1)
	require.NoError(t, err)
	_, err = jwt.Parse(secret, expired)
	assert.Error(t, err, "token vencido")

	valid, err := jwt.Generate(secret, "u1", "admin", "bodega-api", 5)
	require.NoError(t, err)
	_, err = jwt.Parse("otro-secreto", valid)
	assert.Error(t, err, "firma con otro secreto")
}
