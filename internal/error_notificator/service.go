package error_notificator

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const notifyTimeout = 10 * time.Second

type Service struct {
	infra Notificator
	log   *zap.SugaredLogger
}

func NewService(infra Notificator, log *zap.SugaredLogger) *Service {
	return &Service{infra: infra, log: log}
}

func (s *Service) Notify(ctx context.Context, source string, err error, details string) error {
	return s.infra.Notify(ctx, source, err, details)
}

// NotifyAsync sends the alert in the background so request handling is not
// held up by Telegram. It does not inherit cancellation from ctx.
func (s *Service) NotifyAsync(ctx context.Context, source string, err error, details string) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
		defer cancel()

		if nErr := s.infra.Notify(ctx, source, err, details); nErr != nil {
			s.log.Warnw("failed to deliver alert", "source", source, "error", nErr)
		}
	}()
}
