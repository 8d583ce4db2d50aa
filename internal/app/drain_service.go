package app

import (
	"context"

	"github.com/jobdesk-next/internal/provider"
)

// drainService 停机时等待验证邮件投递完成并关闭容器连接
type drainService struct {
	container *provider.Container
}

func newDrainService(container *provider.Container) *drainService {
	return &drainService{container: container}
}

func (s *drainService) Name() string {
	return "drain"
}

func (s *drainService) Start(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (s *drainService) Stop(ctx context.Context) error {
	if s == nil || s.container == nil {
		return nil
	}
	defer s.container.Close()
	if s.container.EmailVerificationService == nil {
		return nil
	}
	return s.container.EmailVerificationService.WaitDispatch(ctx)
}
