package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"karaoke/infras/postgres"
	"karaoke/shared/constant"
)

func TestServerState_String(t *testing.T) {
	assert.Equal(t, "starting", ServerState(0).String())
	assert.Equal(t, "ready", ServerStateReady.String())
	assert.Equal(t, "grace_period", ServerStateInGracePeriod.String())
	assert.Equal(t, "cleanup_period", ServerStateInCleanupPeriod.String())
}

func TestHTTP_Health(t *testing.T) {
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tests := []struct {
		name        string
		db          *postgres.Connection
		state       ServerState
		wantCode    int
		wantMessage string
	}{
		{
			name:     "ready with a reachable database",
			db:       &postgres.Connection{Read: db, Write: db},
			state:    ServerStateReady,
			wantCode: http.StatusOK,
		},
		{
			name:        "database missing",
			state:       ServerStateReady,
			wantCode:    http.StatusServiceUnavailable,
			wantMessage: constant.ResponseErrorUnhealthy,
		},
		{
			name:        "draining",
			db:          &postgres.Connection{Read: db, Write: db},
			state:       ServerStateInGracePeriod,
			wantCode:    http.StatusServiceUnavailable,
			wantMessage: constant.ResponseErrorPrepareShutdown,
		},
		{
			name:        "not started",
			db:          &postgres.Connection{Read: db, Write: db},
			wantCode:    http.StatusServiceUnavailable,
			wantMessage: constant.ResponseErrorPrepareShutdown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &HTTP{DB: tt.db}
			h.setState(tt.state)

			rec := httptest.NewRecorder()
			h.health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantCode, rec.Code)

			var res struct {
				Message string `json:"message"`
				Data    Health `json:"data"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))

			if tt.wantCode == http.StatusOK {
				assert.Equal(t, Health{State: "ready", Database: "up"}, res.Data)

				return
			}

			assert.Equal(t, tt.wantMessage, res.Message)
		})
	}
}
