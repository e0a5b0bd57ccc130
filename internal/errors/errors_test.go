package appErrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsPrecondition(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"empty sequence", ErrEmptySequence, true},
		{"no sender", ErrNoSenderForOwner, true},
		{"campaign not found", NewCampaignNotFound(1), true},
		{"invalid status", NewInvalidCampaignStatus(1, "active"), true},
		{"wrapped sentinel", fmt.Errorf("activate: %w", ErrEmptySequence), true},
		{"plain error", errors.New("db down"), false},
		{"nil", nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsPrecondition(tc.err); got != tc.want {
				t.Errorf("IsPrecondition(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
