package mailer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Notifier dispatches email on background goroutines so webhook responses are
// never held up by SMTP latency. Failures are logged and swallowed; a lost
// email never rolls back an enrollment.
type Notifier struct {
	mailer  Mailer
	logger  *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewNotifier(mailer Mailer, logger *zap.Logger) *Notifier {
	return &Notifier{mailer: mailer, logger: logger, timeout: 30 * time.Second}
}

// Enqueue schedules one message for delivery and returns immediately.
func (n *Notifier) Enqueue(to, subject, htmlBody string) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				n.logger.Error("Mail dispatch panicked", zap.Any("panic", r), zap.String("to", to))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if err := n.mailer.Send(ctx, to, subject, htmlBody); err != nil {
			n.logger.Error("Mail dispatch failed", zap.String("to", to), zap.String("subject", subject), zap.Error(err))
			return
		}
		n.logger.Info("Mail sent", zap.String("to", to), zap.String("subject", subject))
	}()
}

// Wait blocks until all queued messages have been attempted. Called on
// shutdown and in tests.
func (n *Notifier) Wait() {
	n.wg.Wait()
}
