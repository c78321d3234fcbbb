package cache

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantDB  int
		wantErr bool
	}{
		{"valid-redis", "redis://localhost:6379", 0, false},
		{"valid-with-db", "redis://localhost:6379/3", 3, false},
		{"empty", "", 0, true},
		{"wrong-scheme", "http://localhost:6379", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := ParseURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && opts.DB != tt.wantDB {
				t.Errorf("DB = %d, want %d", opts.DB, tt.wantDB)
			}
		})
	}
}

func TestNew_UnreachableHost(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping unreachable host test in short mode")
	}

	ctx := t.Context()
	_, err := New(ctx, "redis://localhost:59999")
	if err == nil {
		t.Fatal("New() should return error for unreachable host")
	}
}

func TestNewFromOptions_KeepsExplicitTimeouts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping unreachable host test in short mode")
	}

	opts := &redis.Options{Addr: "localhost:59999", DialTimeout: 200 * time.Millisecond}
	if _, err := NewFromOptions(t.Context(), opts); err == nil {
		t.Fatal("NewFromOptions() should return error for unreachable host")
	}
	if opts.DialTimeout != 200*time.Millisecond {
		t.Errorf("DialTimeout = %v, want explicit value kept", opts.DialTimeout)
	}
	if opts.ReadTimeout != 3*time.Second {
		t.Errorf("ReadTimeout = %v, want default 3s", opts.ReadTimeout)
	}
}
