package cognito_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jaekwang-park/vici/internal/cognito"
)

func TestLookupError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantOK     bool
		wantStatus int
		wantCode   string
	}{
		{"not authorized", cognito.ErrNotAuthorized, true, 401, "NOT_AUTHORIZED"},
		{"not confirmed", cognito.ErrUserNotConfirmed, true, 403, "USER_NOT_CONFIRMED"},
		{"throttled", cognito.ErrTooManyRequests, true, 429, "TOO_MANY_REQUESTS"},
		{"wrapped", fmt.Errorf("login: %w", cognito.ErrUserNotFound), true, 404, "USER_NOT_FOUND"},
		{"unknown", errors.New("boom"), false, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, ok := cognito.LookupError(tt.err)
			if ok != tt.wantOK {
				t.Fatalf("ok: got %v, want %v", ok, tt.wantOK)
			}
			if info.Status != tt.wantStatus {
				t.Errorf("status: got %d, want %d", info.Status, tt.wantStatus)
			}
			if info.Code != tt.wantCode {
				t.Errorf("code: got %q, want %q", info.Code, tt.wantCode)
			}
		})
	}
}
