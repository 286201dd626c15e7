package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/tokend/internal/token"
)

func TestObserveToken(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewWith(reg, reg)
	require.NoError(t, err)

	m.ObserveToken("password", ResultSuccess, 10*time.Millisecond)
	m.ObserveToken("password", "invalid_grant", time.Millisecond)
	m.ObserveToken("password", "invalid_grant", time.Millisecond)
	m.Transition(context.Background(), "password", token.StateEnriching, token.StateSerialized)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.tokenRequests.WithLabelValues("password", ResultSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.tokenRequests.WithLabelValues("password", "invalid_grant")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tokenTransitions.WithLabelValues("serialized")))

	// registrar dos veces sobre el mismo registry no falla
	_, err = NewWith(reg, reg)
	require.NoError(t, err)
}

func TestHandler(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	m.ObserveHTTP("POST", "/connect/token", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `http_requests_total{method="POST",path="/connect/token",status="200"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
