package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jobdesk-next/internal/cache"
	"github.com/jobdesk-next/internal/config"
	"github.com/jobdesk-next/internal/models"
	"github.com/jobdesk-next/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type fakeService struct {
	name     string
	startErr error

	mu      sync.Mutex
	stopped bool
	order   *[]string
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}
	<-ctx.Done()
	return nil
}

func (s *fakeService) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.order != nil {
		*s.order = append(*s.order, s.name)
	}
	return nil
}

func TestRunnerStopsAllServicesInOrder(t *testing.T) {
	var order []string
	failing := &fakeService{name: "worker", startErr: errors.New("boom"), order: &order}
	idle := &fakeService{name: "http", order: &order}
	runner := NewRunner(idle, failing)

	err := runner.Run(context.Background(), time.Second, nil)
	if err == nil || err.Error() != "boom" {
		t.Fatalf("want start error, got %v", err)
	}
	if len(order) != 2 || order[0] != "http" || order[1] != "worker" {
		t.Fatalf("unexpected stop order: %v", order)
	}
}

func TestRunnerCanceledContextIsClean(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	svc := &fakeService{name: "http"}
	done := make(chan error, 1)
	go func() { done <- NewRunner(svc).Run(ctx, time.Second, nil) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("canceled run should return nil, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("runner did not exit")
	}
	if !svc.stopped {
		t.Fatalf("service should be stopped")
	}
}

func TestRunnerRequiresServices(t *testing.T) {
	if err := NewRunner().Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("empty runner should fail")
	}
	if err := RunWithOptions(nil, Options{}); err == nil {
		t.Fatalf("nil runner should fail")
	}
}

func newAppTestContainer(t *testing.T) (*config.Config, *provider.Container) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cache.UseClient(nil, "")
	dsn := fmt.Sprintf("file:app_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.MigrateSchema(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	cfg := &config.Config{
		Server:       config.ServerConfig{Mode: "debug", Host: "127.0.0.1", Port: "0"},
		UserJWT:      config.JWTConfig{SecretKey: "app-test-secret"},
		Security:     config.SecurityConfig{PasswordHash: config.PasswordHashConfig{BcryptCost: 4, Workers: 1}},
		Verification: config.VerificationConfig{TokenSecret: "app-test-verify", CodeHashCost: 4},
	}
	return cfg, provider.NewContainerWithDB(cfg, db)
}

func TestBuildServicesByMode(t *testing.T) {
	cfg, container := newAppTestContainer(t)

	services, err := buildServices(cfg, ModeAll, container)
	if err != nil {
		t.Fatalf("mode all should skip disabled worker, got %v", err)
	}
	if len(services) != 2 || services[0].Name() != "http" || services[1].Name() != "drain" {
		t.Fatalf("unexpected services: %d", len(services))
	}

	if _, err := buildServices(cfg, ModeWorker, container); err == nil {
		t.Fatalf("worker mode with disabled queue should fail")
	}
	if _, err := buildServices(cfg, "bogus", container); err == nil {
		t.Fatalf("unknown mode should fail")
	}
}

func TestDrainServiceStopWaitsForDispatch(t *testing.T) {
	_, container := newAppTestContainer(t)
	drain := newDrainService(container)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := drain.Start(ctx); err != nil {
		t.Fatalf("start should return on cancel: %v", err)
	}
	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := drain.Stop(stopCtx); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if err := (*drainService)(nil).Stop(stopCtx); err != nil {
		t.Fatalf("nil drain stop should be noop")
	}
}
