package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type stubUsers struct {
	ids []string
	err error
}

func (s stubUsers) ActiveUsers(ctx context.Context) ([]string, error) {
	return s.ids, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestJobTick(t *testing.T) {
	tests := []struct {
		name    string
		users   stubUsers
		failFor string
		want    []string
	}{
		{"every active user", stubUsers{ids: []string{"u1", "u2"}}, "", []string{"u1", "u2"}},
		{"failure does not stop the rest", stubUsers{ids: []string{"u1", "u2", "u3"}}, "u2", []string{"u1", "u2", "u3"}},
		{"listing fails", stubUsers{err: errors.New("redis down")}, "", nil},
		{"no active users", stubUsers{}, "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			j := job{name: "test", interval: time.Minute, fn: func(ctx context.Context, userID string) error {
				got = append(got, userID)
				if userID == tt.failFor {
					return errors.New("boom")
				}
				return nil
			}}

			j.tick(context.Background(), discardLogger(), tt.users)

			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("call %d: got %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRunJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	calls := map[string]int{}
	record := func(name string) func(ctx context.Context, userID string) error {
		return func(ctx context.Context, userID string) error {
			mu.Lock()
			defer mu.Unlock()
			calls[name]++
			if calls["fast"] >= 2 {
				cancel()
			}
			return nil
		}
	}

	done := make(chan struct{})
	go func() {
		runJobs(ctx, discardLogger(), stubUsers{ids: []string{"u1"}},
			job{name: "fast", interval: 5 * time.Millisecond, fn: record("fast")},
			job{name: "disabled", interval: 0, fn: record("disabled")},
		)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("runJobs did not return after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	if calls["fast"] < 2 {
		t.Errorf("expected fast job to run at least twice, got %d", calls["fast"])
	}
	if calls["disabled"] != 0 {
		t.Errorf("expected disabled job not to run, got %d", calls["disabled"])
	}
}
