package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/gss/pkg/domain"
	"github.com/aretw0/gss/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Hooks(t *testing.T) {
	c := metrics.New()
	hooks := c.Hooks()

	req := domain.SearchRequest{A: 0, B: 1, Tolerance: 1e-4, Mode: domain.Minimize}
	hooks.OnFinish(&domain.SearchEvent{
		Request:  req,
		Result:   &domain.SearchResult{IterationCount: 20, Status: domain.StatusConverged},
		Duration: time.Millisecond,
	})
	hooks.OnFinish(&domain.SearchEvent{
		Request: req,
		Result:  &domain.SearchResult{IterationCount: 3, Status: domain.StatusNotConverged},
		Err:     &domain.EvaluationError{X: 0, Err: errors.New("boom")},
	})
	c.CompileError()

	expected := `
# HELP gss_searches_total Total number of searches by mode and outcome
# TYPE gss_searches_total counter
gss_searches_total{mode="minimize",status="EvaluationError"} 1
gss_searches_total{mode="minimize",status="converged"} 1
`
	require.NoError(t, testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected), "gss_searches_total"))

	count, err := testutil.GatherAndCount(c.Registry(), "gss_search_iterations")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCollector_Handler(t *testing.T) {
	c := metrics.New()
	c.CompileError()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gss_compile_errors_total 1")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
