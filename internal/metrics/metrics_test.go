package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecordTransition(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		outcome   string
	}{
		{name: "check-in success", operation: "check_in", outcome: OutcomeSuccess},
		{name: "duplicate check-in", operation: "check_in", outcome: OutcomeAlreadyCheckedIn},
		{name: "uncheck-in of fresh ticket", operation: "uncheck_in", outcome: OutcomeNotCheckedIn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(CheckInTransitions.WithLabelValues(tt.operation, tt.outcome))
			RecordTransition(tt.operation, tt.outcome)
			after := testutil.ToFloat64(CheckInTransitions.WithLabelValues(tt.operation, tt.outcome))
			require.Equal(t, before+1, after)
		})
	}
}

func TestRecordVerification(t *testing.T) {
	before := testutil.ToFloat64(TicketVerifications.WithLabelValues(OutcomeTicketNotFound))
	RecordVerification(OutcomeTicketNotFound)
	require.Equal(t, before+1, testutil.ToFloat64(TicketVerifications.WithLabelValues(OutcomeTicketNotFound)))
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	require.Equal(t, before+1, testutil.ToFloat64(APIActiveRequests))
	TrackActiveRequest(false)
	require.Equal(t, before, testutil.ToFloat64(APIActiveRequests))
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/event/{eventId}/check-in", "200"))
	RecordAPIRequest("POST", "/event/{eventId}/check-in", "200", 15*time.Millisecond)
	require.Equal(t, before+1, testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/event/{eventId}/check-in", "200")))
}

func TestMetricGathering(t *testing.T) {
	RecordRateLimitHit("/ticket/verify/{ticketCode}")
	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	require.NoError(t, err)
	require.Empty(t, problems)
}
