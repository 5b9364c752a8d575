package authz

import (
	"context"
	"errors"
	"testing"

	"studio_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	granted bool
	err     error
	calls   int
	roles   []string
}

func (f *fakeStore) Granted(_ context.Context, _, _ uuid.UUID, roles []string, _ string) (bool, error) {
	f.calls++
	f.roles = roles
	return f.granted, f.err
}

func TestHasCapabilityAdminShortCircuits(t *testing.T) {
	store := &fakeStore{}
	svc := New(store, logger.Nop())

	ok, err := svc.HasCapability(context.Background(), uuid.New(), uuid.New(), []string{"sales", RoleAdmin}, "close_won_deals")
	if err != nil || !ok {
		t.Fatalf("expected admin to be allowed, got %v %v", ok, err)
	}
	if store.calls != 0 {
		t.Fatal("admin check must not hit the store")
	}
}

func TestHasCapabilityDelegatesToStore(t *testing.T) {
	tests := []struct {
		name    string
		granted bool
	}{
		{name: "granted", granted: true},
		{name: "denied", granted: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{granted: tt.granted}
			svc := New(store, logger.Nop())

			ok, err := svc.HasCapability(context.Background(), uuid.New(), uuid.New(), nil, "close_won_deals")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.granted {
				t.Fatalf("expected %v, got %v", tt.granted, ok)
			}
			if store.roles == nil {
				t.Fatal("nil roles must be passed as an empty array")
			}
		})
	}
}

func TestHasCapabilityStoreError(t *testing.T) {
	svc := New(&fakeStore{err: errors.New("timeout")}, logger.Nop())

	if _, err := svc.HasCapability(context.Background(), uuid.New(), uuid.New(), []string{"sales"}, "close_won_deals"); err == nil {
		t.Fatal("expected error")
	}
}
