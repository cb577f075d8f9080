package helpers

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_GenerateAndParse(t *testing.T) {
	m := NewJWTManager("test-secret", 10*time.Hour)

	token, exp, err := m.Generate("ada@x.com", "ADMIN")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(10*time.Hour), exp, 5*time.Second)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "ada@x.com", claims.Subject)
	assert.Equal(t, "ADMIN", claims.Role)
}

func TestJWTManager_ExpiredToken(t *testing.T) {
	m := NewJWTManager("test-secret", -time.Minute)

	token, _, err := m.Generate("ada@x.com", "ADMIN")
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_TamperedSignature(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, _, err := m.Generate("ada@x.com", "ADMIN")
	require.NoError(t, err)

	// flip a byte in the signature segment
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = m.Parse(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// A tampered token and an expired token must be indistinguishable to the
// caller: both collapse to the same sentinel with no sub-cause.
func TestJWTManager_FailuresCollapse(t *testing.T) {
	expired := NewJWTManager("test-secret", -time.Minute)
	expiredToken, _, err := expired.Generate("ada@x.com", "ADMIN")
	require.NoError(t, err)

	valid := NewJWTManager("test-secret", time.Hour)
	goodToken, _, err := valid.Generate("ada@x.com", "ADMIN")
	require.NoError(t, err)
	repl := "A"
	if strings.HasSuffix(goodToken, "A") {
		repl = "B"
	}
	tampered := goodToken[:len(goodToken)-1] + repl

	_, errExpired := valid.Parse(expiredToken)
	_, errTampered := valid.Parse(tampered)
	_, errMalformed := valid.Parse("not-a-token")

	assert.Equal(t, errExpired, errTampered)
	assert.Equal(t, errTampered, errMalformed)
	assert.ErrorIs(t, errExpired, ErrInvalidToken)
}

func TestJWTManager_WrongKeyRejected(t *testing.T) {
	issuer := NewJWTManager("secret-a", time.Hour)
	verifier := NewJWTManager("secret-b", time.Hour)

	token, _, err := issuer.Generate("ada@x.com", "ADMIN")
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
