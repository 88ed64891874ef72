package domain

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to string }{
		{DisputeStatusPending, DisputeStatusUnderReview},
		{DisputeStatusPending, DisputeStatusRejected},
		{DisputeStatusUnderReview, DisputeStatusResolved},
		{DisputeStatusUnderReview, DisputeStatusRejected},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to string }{
		{DisputeStatusPending, DisputeStatusResolved},
		{DisputeStatusResolved, DisputeStatusPending},
		{DisputeStatusRejected, DisputeStatusUnderReview},
		{DisputeStatusResolved, DisputeStatusRejected},
		{DisputeStatusUnderReview, DisputeStatusPending},
	}
	for _, tc := range denied {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be denied", tc.from, tc.to)
		}
	}
}
