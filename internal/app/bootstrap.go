package app

import (
	"errors"

	"github.com/jobdesk-next/internal/config"
	"github.com/jobdesk-next/internal/constants"
	"github.com/jobdesk-next/internal/logger"
	"github.com/jobdesk-next/internal/provider"
	"github.com/jobdesk-next/internal/queue"
	"github.com/jobdesk-next/internal/router"
	"github.com/jobdesk-next/internal/worker"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	container := provider.NewContainer(cfg)
	services, err := buildServices(cfg, mode, container)
	if err != nil {
		container.Close()
		return nil, err
	}
	return NewRunner(services...), nil
}

func buildServices(cfg *config.Config, mode string, container *provider.Container) ([]Service, error) {
	var services []Service

	// 初始化 HTTP 服务
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		services = append(services, NewHTTPService(addr, engine))
	}

	// 初始化 Worker 服务
	if mode == ModeAll || mode == ModeWorker {
		workerService, err := buildWorkerService(cfg, container)
		switch {
		case err != nil && mode == ModeWorker:
			return nil, err
		case err != nil:
			logger.Warnw("app_worker_skipped", "error", err)
		default:
			services = append(services, workerService)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}

	// 放在最后，HTTP 与 Worker 停止后再等待发信并释放连接
	return append(services, newDrainService(container)), nil
}

func buildWorkerService(cfg *config.Config, container *provider.Container) (Service, error) {
	if !cfg.Queue.Enabled {
		return nil, errors.New("queue disabled")
	}
	consumer := worker.NewConsumer(container)
	if queue.ResolveDriver(&cfg.Queue) == constants.QueueDriverRabbitMQ {
		return worker.NewRabbitService(container.RabbitMQ, consumer)
	}
	return worker.NewService(&cfg.Queue, consumer)
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
