package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordHTTPRequest(t *testing.T) {
	// Reset metrics
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("POST", "/api/images/generate-image", "200", 0.123)

	// Verify counter incremented
	counter := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/api/images/generate-image", "200"))
	if counter != 1.0 {
		t.Errorf("Expected counter to be 1.0, got %f", counter)
	}
}

func TestRecordGeneration(t *testing.T) {
	GenerationsTotal.Reset()

	RecordGeneration("provider")
	RecordGeneration("fallback")
	RecordGeneration("fallback")

	provider := testutil.ToFloat64(GenerationsTotal.WithLabelValues("provider"))
	if provider != 1.0 {
		t.Errorf("Expected provider counter to be 1.0, got %f", provider)
	}

	fallback := testutil.ToFloat64(GenerationsTotal.WithLabelValues("fallback"))
	if fallback != 2.0 {
		t.Errorf("Expected fallback counter to be 2.0, got %f", fallback)
	}
}

func TestRecordRejection(t *testing.T) {
	GenerationRejectionsTotal.Reset()

	RecordRejection("no_credits")
	RecordRejection("no_credits")
	RecordRejection("too_large")

	noCredits := testutil.ToFloat64(GenerationRejectionsTotal.WithLabelValues("no_credits"))
	if noCredits != 2.0 {
		t.Errorf("Expected no_credits counter to be 2.0, got %f", noCredits)
	}
}

func TestRecordProviderCall(t *testing.T) {
	ProviderCallsTotal.Reset()

	RecordProviderCall("ok", 1.5, 2048)
	RecordProviderCall("error", 0.1, 0)
	RecordProviderCall("skipped", 0, 0)

	ok := testutil.ToFloat64(ProviderCallsTotal.WithLabelValues("ok"))
	if ok != 1.0 {
		t.Errorf("Expected ok counter to be 1.0, got %f", ok)
	}

	skipped := testutil.ToFloat64(ProviderCallsTotal.WithLabelValues("skipped"))
	if skipped != 1.0 {
		t.Errorf("Expected skipped counter to be 1.0, got %f", skipped)
	}
}
