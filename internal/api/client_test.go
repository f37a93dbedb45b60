package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobgo-agent/internal/config"
)

// recorder is a tiny fake backend that remembers the last request.
type recorder struct {
	mu     sync.Mutex
	method string
	path   string
	query  url.Values
	ctype  string
	body   []byte
}

func (r *recorder) last() (method, path string, query url.Values, ctype string, body []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.method, r.path, r.query, r.ctype, r.body
}

func newBackend(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.method, rec.path, rec.query = r.Method, r.URL.Path, r.URL.Query()
		rec.ctype, rec.body = r.Header.Get("Content-Type"), b
		rec.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(baseURL string, minScore int) *Client {
	return New(config.NewRuntime(baseURL+"/api", minScore))
}

func TestListJobs_InjectsRuntimeMinScore(t *testing.T) {
	srv, rec := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []Job{{ID: "j1", Title: "Backend Engineer"}})
	})
	c := newTestClient(srv.URL, 40)

	jobs, err := c.ListJobs(context.Background(), JobFilter{})
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	method, path, q, _, _ := rec.last()
	assert.Equal(t, http.MethodGet, method)
	assert.Equal(t, "/api/jobs", path)
	assert.Equal(t, "40", q.Get("min_score"))
}

func TestListJobs_ExplicitMinScoreWins(t *testing.T) {
	srv, rec := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []Job{})
	})
	c := newTestClient(srv.URL, 40)

	_, err := c.ListJobs(context.Background(), JobFilter{MinScore: Score(10)})
	require.NoError(t, err)

	_, _, q, _, _ := rec.last()
	assert.Equal(t, "10", q.Get("min_score"))
}

func TestListJobs_ZeroThresholdSendsNothing(t *testing.T) {
	srv, rec := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []Job{})
	})
	c := newTestClient(srv.URL, 0)

	_, err := c.ListJobs(context.Background(), JobFilter{New: true, VisaFriendly: true})
	require.NoError(t, err)

	_, _, q, _, _ := rec.last()
	assert.False(t, q.Has("min_score"))
	assert.Equal(t, "true", q.Get("new"))
	assert.Equal(t, "true", q.Get("visa_friendly"))
	assert.False(t, q.Has("remote"), "false filters are omitted")
	assert.False(t, q.Has("new_grad"))
}

func TestListJobs_FollowsSnapshotSwap(t *testing.T) {
	srv, rec := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []Job{})
	})
	live := config.NewLive(config.NewRuntime(srv.URL+"/api", 0))
	c := New(live)

	_, err := c.ListJobs(context.Background(), JobFilter{})
	require.NoError(t, err)
	_, _, q, _, _ := rec.last()
	assert.False(t, q.Has("min_score"))

	live.Swap(config.NewRuntime(srv.URL+"/api/", 55))
	_, err = c.ListJobs(context.Background(), JobFilter{})
	require.NoError(t, err)
	_, path, q, _, _ := rec.last()
	assert.Equal(t, "/api/jobs", path, "trailing slash is normalized away")
	assert.Equal(t, "55", q.Get("min_score"))
}

// swappingSource hands out a new snapshot on every read, like a settings
// save landing between two reads of one call.
type swappingSource struct {
	mu    sync.Mutex
	snaps []config.Runtime
	reads int
}

func (s *swappingSource) Runtime() config.Runtime {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt := s.snaps[s.reads%len(s.snaps)]
	s.reads++
	return rt
}

func TestListJobs_ThresholdAndHostFromOneSnapshot(t *testing.T) {
	oldSrv, oldRec := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []Job{})
	})
	newSrv, newRec := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []Job{})
	})
	src := &swappingSource{snaps: []config.Runtime{
		config.NewRuntime(oldSrv.URL+"/api", 30),
		config.NewRuntime(newSrv.URL+"/api", 70),
	}}

	_, err := New(src).ListJobs(context.Background(), JobFilter{})
	require.NoError(t, err)

	assert.Equal(t, 1, src.reads)
	_, path, q, _, _ := oldRec.last()
	assert.Equal(t, "/api/jobs", path)
	assert.Equal(t, "30", q.Get("min_score"))
	method, _, _, _, _ := newRec.last()
	assert.Empty(t, method, "the swapped-in host is not called")
}

func TestCreateCompany_SendsJSONBody(t *testing.T) {
	srv, rec := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, Company{ID: "c1", Name: "Acme", Platform: "greenhouse", Slug: "acme"})
	})
	c := newTestClient(srv.URL, 0)

	got, err := c.CreateCompany(context.Background(), NewCompany{Name: "Acme", Platform: "greenhouse", Slug: "acme"})
	require.NoError(t, err)
	assert.Equal(t, "c1", got.ID)

	method, path, _, ctype, body := rec.last()
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/api/companies", path)
	assert.Equal(t, "application/json", ctype)
	assert.JSONEq(t, `{"name":"Acme","platform":"greenhouse","slug":"acme"}`, string(body))
}

func TestCartAndScanRoutes(t *testing.T) {
	srv, rec := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/jobcart/scan":
			writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "new_jobs": 4, "companies": 2})
		default:
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		}
	})
	c := newTestClient(srv.URL, 0)
	ctx := context.Background()

	require.NoError(t, c.AddToCart(ctx, "7"))
	method, path, _, ctype, _ := rec.last()
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/api/jobcart/7", path)
	assert.Equal(t, "application/json", ctype, "content type is set even without a body")

	require.NoError(t, c.RemoveFromCart(ctx, "7"))
	method, path, _, _, _ = rec.last()
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/api/jobcart/7", path)

	require.NoError(t, c.DeleteCompany(ctx, "7"))
	method, path, _, _, _ = rec.last()
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/api/companies/7", path)

	res, err := c.ScanCart(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, res.NewJobs)
	assert.Equal(t, 2, res.Companies)
}

func TestScanCart_EmptyCartStatusOnly(t *testing.T) {
	srv, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "no companies in cart"})
	})
	res, err := newTestClient(srv.URL, 0).ScanCart(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.NewJobs)
	assert.Equal(t, "no companies in cart", res.Status)
}

func TestErrorEnvelope(t *testing.T) {
	srv, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "job not found"})
	})

	_, err := newTestClient(srv.URL, 0).GetJob(context.Background(), "missing")
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "job not found", apiErr.Error())
	assert.Equal(t, KindBackend, apiErr.Kind())
	assert.Equal(t, http.StatusNotFound, StatusOf(err))
}

func TestErrorFallsBackToStatusText(t *testing.T) {
	srv, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>upstream down</html>"))
	})

	_, err := newTestClient(srv.URL, 0).ListCompanies(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Bad Gateway", err.Error())
	assert.False(t, IsTransport(err))
}

func TestErrorEmptyMessageFallsBack(t *testing.T) {
	srv, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": ""})
	})

	_, err := newTestClient(srv.URL, 0).GetProfile(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Internal Server Error", err.Error())
}

func TestTransportFailures(t *testing.T) {
	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		base := srv.URL
		srv.Close()

		_, err := newTestClient(base, 0).GetStats(context.Background())
		require.Error(t, err)
		assert.True(t, IsTransport(err))
		assert.Equal(t, 0, StatusOf(err))
	})

	t.Run("non-json success body", func(t *testing.T) {
		srv, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("ok"))
		})
		_, err := newTestClient(srv.URL, 0).ListCart(context.Background())
		require.Error(t, err)
		assert.True(t, IsTransport(err))
	})
}

func TestH1BEndpoints(t *testing.T) {
	srv, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/h1b/sponsors":
			writeJSON(w, http.StatusOK, []Sponsor{{CompanyName: "Acme", SponsorsH1B: true}})
		case "/api/h1b/status":
			writeJSON(w, http.StatusOK, map[string]int{"total_sponsors_in_db": 12})
		default:
			http.NotFound(w, r)
		}
	})
	c := newTestClient(srv.URL, 0)

	sponsors, err := c.ListSponsors(context.Background())
	require.NoError(t, err)
	require.Len(t, sponsors, 1)
	assert.True(t, sponsors[0].SponsorsH1B)

	st, err := c.H1BStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, st.TotalSponsors)
}

func TestHostLimiter(t *testing.T) {
	var nilLimiter *HostLimiter
	require.NoError(t, nilLimiter.Wait(context.Background(), "http://a/api"))

	hl := NewHostLimiter(1000, 1)
	ctx := context.Background()
	require.NoError(t, hl.Wait(ctx, "http://a:1/api/jobs"))
	require.NoError(t, hl.Wait(ctx, "http://b:1/api/jobs"))
	require.NoError(t, hl.Wait(ctx, "::not a url"))
	assert.Equal(t, 3, hl.Hosts())

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	slow := NewHostLimiter(0.001, 1)
	require.NoError(t, slow.Wait(ctx, "http://c/api"))
	assert.Error(t, slow.Wait(cancelled, "http://c/api"))
}
