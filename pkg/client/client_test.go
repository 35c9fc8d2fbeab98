package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/ams-studio/ams/pkg/models"
	"github.com/ams-studio/ams/pkg/session"
)

func newTestClient(t *testing.T, r chi.Router, opts ...Option) (*Client, *session.Store) {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	store := session.New(session.NewMemory())
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	return New(srv.URL+"/api/v1/", 5*time.Second, store, opts...), store
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestListAuditsHeaders(t *testing.T) {
	var gotAuth, gotAccept, gotReqID string
	r := chi.NewRouter()
	r.Get("/api/v1/audit", func(w http.ResponseWriter, req *http.Request) {
		gotAuth = req.Header.Get("Authorization")
		gotAccept = req.Header.Get("Accept")
		gotReqID = req.Header.Get("X-Request-ID")
		_, _ = w.Write([]byte(`[
			{"id": 1, "auditDate": "2024-05-02", "idTipoAuditoria": {"id": 9}, "idAuditado": {"id": 1}},
			{"id": 2, "auditDate": "garbage", "idTipoAuditoria": {"id": 3}}
		]`))
	})
	c, store := newTestClient(t, r)
	ctx := context.Background()
	require.NoError(t, store.SetToken(ctx, "Bearer abc"))

	audits, err := c.ListAudits(ctx)
	require.NoError(t, err)
	require.Len(t, audits, 2)
	assert.True(t, audits[0].IsAFIP())
	assert.True(t, audits[0].IsCompleted())
	assert.False(t, audits[1].AuditDate.Valid)

	assert.Equal(t, "Bearer abc", gotAuth, "token must be sent verbatim")
	assert.Equal(t, "application/json", gotAccept)
	assert.Len(t, gotReqID, 36)
}

func TestNoTokenNoAuthorization(t *testing.T) {
	sawAuth := true
	r := chi.NewRouter()
	r.Get("/api/v1/audit", func(w http.ResponseWriter, req *http.Request) {
		_, sawAuth = req.Header["Authorization"]
		_, _ = w.Write([]byte(`[]`))
	})
	c, _ := newTestClient(t, r)

	audits, err := c.ListAudits(context.Background())
	require.NoError(t, err)
	assert.Empty(t, audits)
	assert.False(t, sawAuth)
}

func TestUnauthorizedClearsSession(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			r := chi.NewRouter()
			r.Get("/api/v1/audit", func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, status, map[string]string{"message": "JWT expired"})
			})
			var hooked atomic.Int32
			c, store := newTestClient(t, r, WithUnauthorizedHook(func() { hooked.Add(1) }))
			ctx := context.Background()
			require.NoError(t, store.SetToken(ctx, "Bearer old"))
			require.NoError(t, store.SetProfile(ctx, models.Profile{FirstName: "Ana"}))

			_, err := c.ListAudits(ctx)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnauthorized)
			var ae *AuthError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, status, ae.Status)
			assert.Equal(t, "JWT expired", ae.Message)

			tok, _ := store.Token(ctx)
			assert.Empty(t, tok)
			_, ok, _ := store.Profile(ctx)
			assert.False(t, ok)
			assert.Equal(t, int32(1), hooked.Load())
		})
	}
}

func TestAPIErrorMessage(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/commonInput/{id}", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "db down"})
	})
	r.Get("/api/v1/afipInput/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	c, store := newTestClient(t, r)
	ctx := context.Background()
	require.NoError(t, store.SetToken(ctx, "Bearer keep"))

	_, err := c.ListInputsForAudit(ctx, 4, models.KindInternal)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "db down", apiErr.Message)
	assert.NotErrorIs(t, err, ErrUnauthorized)

	_, err = c.ListInputsForAudit(ctx, 4, models.KindAFIP)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Contains(t, err.Error(), "Not Found")

	tok, _ := store.Token(ctx)
	assert.Equal(t, "Bearer keep", tok, "non-auth errors keep the session")
}

func TestListInputsForAuditRoutes(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/afipInput/{id}", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{{
			"id": 1, "name": "Juan", "lastName": "Pérez", "cuil": "20-1-3",
			"client": map[string]any{"id": 2, "client": "ACME"},
			"branch": map[string]any{"id": 3, "branch": chi.URLParam(req, "id")},
		}})
	})
	c, _ := newTestClient(t, r)

	inputs, err := c.ListInputsForAudit(context.Background(), 42, models.KindAFIP)
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Equal(t, "Pérez, Juan", inputs[0].DisplayName())
	assert.Equal(t, "ACME", inputs[0].ClientName())
	assert.Equal(t, "42", inputs[0].BranchName())
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, time.Second, session.New(session.NewMemory()))
	_, err := c.ListAudits(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, http.MethodGet, ne.Method)
}

func TestTimeoutIsNetworkError(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/audit", func(w http.ResponseWriter, req *http.Request) {
		select {
		case <-req.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	c := New(srv.URL+"/api/v1", 50*time.Millisecond, session.New(session.NewMemory()))

	_, err := c.ListAudits(context.Background())
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestAuthenticate(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/v1/user/authenticate", func(w http.ResponseWriter, req *http.Request) {
		var creds models.Credentials
		if err := json.NewDecoder(req.Body).Decode(&creds); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if creds.Mail != "ana@example.com" || creds.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Credenciales inválidas"})
			return
		}
		writeJSON(w, http.StatusOK, models.AuthResponse{Token: "jwt-token"})
	})
	c, _ := newTestClient(t, r)
	ctx := context.Background()

	tok, err := c.Authenticate(ctx, models.Credentials{Mail: "ana@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", tok)

	_, err = c.Authenticate(ctx, models.Credentials{Mail: "ana@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestListAuditsCoalesced(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	r := chi.NewRouter()
	r.Get("/api/v1/audit", func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		<-release
		_, _ = w.Write([]byte(`[{"id": 1, "idTipoAuditoria": {"id": 1}}]`))
	})
	c, _ := newTestClient(t, r)

	const callers = 5
	var wg sync.WaitGroup
	results := make([][]models.Audit, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.ListAudits(context.Background())
		}(i)
	}
	// Let every caller join the in-flight request before the server answers.
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.Len(t, results[i], 1)
	}
	results[0][0].ID = 99
	assert.Equal(t, int64(1), results[1][0].ID, "callers must not share a backing array")
}

func TestListAuditsCallerCancel(t *testing.T) {
	release := make(chan struct{})
	r := chi.NewRouter()
	r.Get("/api/v1/audit", func(w http.ResponseWriter, _ *http.Request) {
		<-release
		_, _ = w.Write([]byte(`[]`))
	})
	// The shared request outlives the test, so it must not log through t.
	c, _ := newTestClient(t, r, WithLogger(zap.NewNop()))
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListAudits(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}
