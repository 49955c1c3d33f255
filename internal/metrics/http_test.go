package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/jobs/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	h := Middleware(mux)

	counter := HTTPRequestsTotal.WithLabelValues(http.MethodGet, "GET /api/jobs/{id}", "202")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/"+id, nil))
		assert.Equal(t, http.StatusAccepted, rec.Code)
	}

	assert.Equal(t, before+3, testutil.ToFloat64(counter))
}

func TestMiddleware_UnmatchedRoute(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", http.NotFound)
	h := Middleware(mux)

	counter := HTTPRequestsTotal.WithLabelValues(http.MethodGet, unmatchedRoute, "404")
	before := testutil.ToFloat64(counter)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/no/such/path", nil))

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestMiddleware_ImplicitOK(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	counter := HTTPRequestsTotal.WithLabelValues(http.MethodGet, unmatchedRoute, "200")
	before := testutil.ToFloat64(counter)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestMiddleware_SkipsMetricsEndpoint(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	counter := HTTPRequestsTotal.WithLabelValues(http.MethodGet, unmatchedRoute, "200")
	before := testutil.ToFloat64(counter)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, before, testutil.ToFloat64(counter))
}

func TestRecordHelpers(t *testing.T) {
	const jobType = "metrics_test_job"

	JobStarted(jobType)
	assert.Equal(t, 1.0, testutil.ToFloat64(JobsInFlight.WithLabelValues(jobType)))
	JobFailed(jobType)
	JobRetried(jobType)
	JobStarted(jobType)
	JobCompleted(jobType, 0)

	assert.Equal(t, 0.0, testutil.ToFloat64(JobsInFlight.WithLabelValues(jobType)))
	assert.Equal(t, 1.0, testutil.ToFloat64(JobsTotal.WithLabelValues(jobType, "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(JobsTotal.WithLabelValues(jobType, "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(JobRetriesTotal.WithLabelValues(jobType)))

	before := testutil.ToFloat64(ReportFailures.WithLabelValues(ModeSync, "internal"))
	ReportFailed(ModeSync, "internal")
	assert.Equal(t, before+1, testutil.ToFloat64(ReportFailures.WithLabelValues(ModeSync, "internal")))
}
