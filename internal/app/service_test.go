package app

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/camr1993/fantasy-football-assistant-sub000/internal/config"
	"github.com/camr1993/fantasy-football-assistant-sub000/pkg/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Init()
	_ = logger.SetLevelString("error")
	os.Exit(m.Run())
}

func TestServiceRunDrainsOnCancel(t *testing.T) {
	cfg := config.New()
	cfg.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	svc, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("wire service: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("clean cancel should drain without error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("service did not stop after cancel")
	}
}
