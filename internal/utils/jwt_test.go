package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret          = "test-secret-key-for-jwt-testing"
	testWrongSecret     = "wrong-secret-key-for-jwt-testing"
	testTokenDuration   = 1 * time.Hour
	testExpiredDuration = -1 * time.Hour
)

func TestGenerateToken_RoundTrip(t *testing.T) {
	for _, isAdmin := range []bool{false, true} {
		userID := uuid.New()

		token, err := GenerateToken(userID, isAdmin, testSecret, testTokenDuration)
		require.NoError(t, err)

		claims, err := ValidateToken(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, isAdmin, claims.IsAdmin)
		assert.Equal(t, userID.String(), claims.Subject)
		assert.True(t, claims.ExpiresAt.Time.After(time.Now()), "Token should not be expired")
	}
}

func TestValidateToken_ExpiredIsDistinct(t *testing.T) {
	token, err := GenerateToken(uuid.New(), false, testSecret, testExpiredDuration)
	require.NoError(t, err, "Setup: GenerateToken should not fail")

	claims, err := ValidateToken(token, testSecret)

	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Nil(t, claims)
}

func TestValidateToken_InvalidToken(t *testing.T) {
	invalidTokens := []string{
		"",
		"invalid.token.here",
		"not-a-jwt-token",
		"a.b",
		"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9",
	}

	for _, invalidToken := range invalidTokens {
		t.Run(invalidToken, func(t *testing.T) {
			claims, err := ValidateToken(invalidToken, testSecret)

			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken(uuid.New(), true, testSecret, testTokenDuration)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testWrongSecret)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)

	_, err = ValidateToken(token, "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_TamperedToken(t *testing.T) {
	token, err := GenerateToken(uuid.New(), false, testSecret, testTokenDuration)
	require.NoError(t, err)

	tamperedToken := token[:len(token)-5] + "XXXXX"

	claims, err := ValidateToken(tamperedToken, testSecret)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestValidateToken_RejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{
		UserID:  uuid.New(),
		IsAdmin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ValidateToken(token, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ValidateToken(unsigned, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func BenchmarkValidateToken(b *testing.B) {
	token, _ := GenerateToken(uuid.New(), false, testSecret, testTokenDuration)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ValidateToken(token, testSecret)
	}
}
