package password_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"karaoke/shared/password"
)

func TestHash(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{name: "customer sign-up password", password: "secret1"},
		{name: "seeded admin password", password: "Adm1n!karaoke"},
		{name: "passphrase with spaces", password: "nyanyi bersama 123"},
		{name: "exactly the bcrypt limit", password: strings.Repeat("a", password.MaxLength)},
		{name: "empty", password: "", wantErr: password.ErrEmptyPassword},
		{name: "one byte over the limit", password: strings.Repeat("a", password.MaxLength+1), wantErr: password.ErrTooLong},
		{name: "multibyte runes over the limit", password: strings.Repeat("é", 40), wantErr: password.ErrTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := password.Hash(tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, hash)

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, tt.password, hash)

			cost, err := bcrypt.Cost([]byte(hash))
			require.NoError(t, err)
			assert.Equal(t, password.DefaultCost, cost)

			assert.NoError(t, password.Verify(tt.password, hash))
		})
	}
}

func TestHash_Salted(t *testing.T) {
	first, err := password.Hash("secret1")
	require.NoError(t, err)

	second, err := password.Hash("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "two customers with the same password get different hashes")
}

func TestVerify(t *testing.T) {
	hash, err := password.Hash("secret1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		wantErr  error
	}{
		{name: "correct password", password: "secret1", hash: hash},
		{name: "wrong password", password: "secret2", hash: hash, wantErr: password.ErrInvalidPassword},
		{name: "case matters", password: "SECRET1", hash: hash, wantErr: password.ErrInvalidPassword},
		{name: "empty password", password: "", hash: hash, wantErr: password.ErrInvalidPassword},
		{name: "account without a hash", password: "secret1", hash: "", wantErr: password.ErrInvalidPassword},
		{name: "hash that is not bcrypt", password: "secret1", hash: "secret1", wantErr: password.ErrVerifyingPassword},
		{name: "truncated hash", password: "secret1", hash: hash[:10], wantErr: password.ErrVerifyingPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := password.Verify(tt.password, tt.hash)

			if tt.wantErr == nil {
				assert.NoError(t, err)

				return
			}

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
