package permissions_test

import (
	"net/http"
	"testing"

	"karaoke/permissions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_EmbeddedPermissions(t *testing.T) {
	data := permissions.Get()
	require.NotNil(t, data)

	tests := []struct {
		name      string
		path      string
		method    string
		wantRoles []string
		wantSkip  bool
	}{
		{"login is public", "/v1/auth/login", http.MethodPost, nil, true},
		{"room listing with trailing slash", "/v1/rooms/", http.MethodGet, nil, true},
		{"room creation is staff only", "/v1/rooms/", http.MethodPost, []string{"admin"}, false},
		{"customers may cancel", "/v1/bookings/{id}/cancel", http.MethodPatch, []string{"admin", "user"}, false},
		{"only staff confirm", "/v1/bookings/{id}/confirm", http.MethodPatch, []string{"admin"}, false},
		{"sweep is staff only", "/v1/bookings/sweep", http.MethodPost, []string{"admin"}, false},
		{"unknown route", "/v1/unknown", http.MethodGet, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			permission := data.FindPermissions(tt.path, tt.method)

			assert.Equal(t, tt.wantSkip, permission.Skip)
			assert.Equal(t, tt.wantRoles, permission.Permissions)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := permissions.Parse([]byte("{"))
	assert.Error(t, err)
}
