package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

type testRedisConfig struct {
	url string
}

func (c testRedisConfig) GetRedisURL() string       { return c.url }
func (c testRedisConfig) GetRedisTLSInsecure() bool { return false }

func TestNewClientPingsServer(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewClient(context.Background(), testRedisConfig{url: "redis://" + srv.Addr()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()

	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, _ := srv.Get("k"); got != "v" {
		t.Fatalf("expected v, got %q", got)
	}
}

func TestNewClientRequiresURL(t *testing.T) {
	if _, err := NewClient(context.Background(), testRedisConfig{}); err == nil {
		t.Fatal("expected error for empty redis url")
	}
}

func TestParseOptionsInsecureTLS(t *testing.T) {
	opt, err := ParseOptions("rediss://localhost:6380/0", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opt.TLSConfig == nil || !opt.TLSConfig.InsecureSkipVerify {
		t.Fatal("expected insecure TLS config")
	}
}
