package observability

import (
	"testing"

	obs "github.com/Zhima-Mochi/minishop-payments/internal/observability"
	"github.com/Zhima-Mochi/minishop-payments/internal/infrastructure/observability/prometrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderRoutesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counters, histograms := prometrics.Standard(prometrics.New("", "", reg))
	tel := New(nil, nil, counters, histograms)

	tel.Metrics().Counter(obs.MWebhookEvents).Add(1, obs.L("type", "payment_intent.succeeded"), obs.L("outcome", "success"))
	n, err := testutil.GatherAndCount(reg, string(obs.MWebhookEvents))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// unknown keys fall back to no-ops rather than panicking
	tel.Metrics().Counter("not_registered").Add(1)
	tel.Metrics().Histogram("not_registered").Observe(1)
	assert.NotNil(t, tel.Logger())
	assert.NotNil(t, tel.Tracer())
}

func TestProviderWithoutMetrics(t *testing.T) {
	tel := New(nil, nil, nil, nil)
	tel.Metrics().Counter(obs.MHTTPRequests).Add(1)
	tel.Logger().Info("noop")
}
