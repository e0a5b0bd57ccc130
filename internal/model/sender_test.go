package model

import "testing"

func TestEffectiveDailyLimit(t *testing.T) {
	cases := []struct {
		name     string
		rowLimit int
		fallback int
		want     int
	}{
		{"row cap wins", 25, 100, 25},
		{"configured fallback when row unset", 0, 100, 100},
		{"platform default when both unset", 0, 0, DefaultDailyLimit},
		{"negative row cap ignored", -1, 100, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &Sender{DailyLimit: tc.rowLimit}
			if got := s.EffectiveDailyLimit(tc.fallback); got != tc.want {
				t.Errorf("EffectiveDailyLimit(%d) with row limit %d = %d, want %d",
					tc.fallback, tc.rowLimit, got, tc.want)
			}
		})
	}
}
