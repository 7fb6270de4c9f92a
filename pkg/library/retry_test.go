package library

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name      string
		failures  int
		transient bool
		attempts  int
		wantCalls int
		wantErr   error
	}{
		{"first try", 0, true, 3, 1, nil},
		{"recovers", 2, true, 3, 3, nil},
		{"exhausted", 5, true, 3, 3, boom},
		{"permanent", 5, false, 3, 1, boom},
		{"zero attempts runs once", 5, true, 0, 1, boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := retry(context.Background(), tt.attempts, time.Millisecond, func() error {
				calls++
				if calls <= tt.failures {
					if tt.transient {
						return &transientError{boom}
					}
					return boom
				}
				return nil
			})
			if err != tt.wantErr {
				t.Errorf("retry() error = %v, want %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("retry() calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := retry(ctx, 3, time.Hour, func() error { return &transientError{errors.New("down")} })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("retry() error = %v, want context.Canceled", err)
	}
}
