// Package notify форматирует события по слотам и отправляет их во внешний канал.
// Доставка не гарантируется: ошибки только логируются.
package notify

import (
	"context"

	"go.uber.org/zap"
)

// Sink внешний канал доставки текстовых сообщений
type Sink interface {
	Send(ctx context.Context, text string) error
}

// LogSink пишет сообщения в лог; используется, когда канал не настроен
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Send(_ context.Context, text string) error {
	s.logger.Info("Notification (log sink)", zap.String("text", text))
	return nil
}
