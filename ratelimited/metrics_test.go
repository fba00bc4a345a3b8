package ratelimited_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/randalmurphal/llmrate/llm"
	"github.com/randalmurphal/llmrate/ratelimited"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordsSuccessfulCall(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := ratelimited.NewMetrics(reg)

	mock := llm.NewMockClient("ok").WithUsage(llm.Usage{TotalTokens: 20})
	client, _ := newTestClient(t, mock, ratelimited.WithMetrics(m))

	_, err := client.Complete(context.Background(), userRequest())
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("ok")))
	assert.Equal(t, float64(userRequestEstimate), testutil.ToFloat64(m.TokensReserved))

	// Refund covers everything above the true usage.
	assert.Equal(t, float64(userRequestEstimate-20), testutil.ToFloat64(m.TokensRefunded))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.TokensForfeited))
}

func TestMetrics_RecordsFailedCall(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := ratelimited.NewMetrics(reg)

	mock := llm.NewMockClient("").WithError(errors.New("boom"))
	client, _ := newTestClient(t, mock, ratelimited.WithMetrics(m))

	_, err := client.Complete(context.Background(), userRequest())
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("error")))
	assert.Equal(t, float64(userRequestEstimate), testutil.ToFloat64(m.TokensForfeited))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.TokensRefunded))
}

func TestMetrics_RecordsCancelledCall(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := ratelimited.NewMetrics(reg)

	client, _ := newTestClient(t, llm.NewMockClient("ok"), ratelimited.WithMetrics(m))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Complete(ctx, userRequest())
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("cancelled")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.TokensReserved))
}
