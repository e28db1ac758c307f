package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Freeeeeet/tutor_clinic/internal/model"
	"go.uber.org/zap"
)

const defaultSendTimeout = 10 * time.Second

// Notifier отправляет уведомления в фоне и не возвращает ошибок вызывающему
type Notifier struct {
	sink    Sink
	logger  *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewNotifier(sink Sink, logger *zap.Logger) *Notifier {
	return &Notifier{
		sink:    sink,
		logger:  logger,
		timeout: defaultSendTimeout,
	}
}

// SlotConfirmed уведомление о переходе слота в confirmed
func (n *Notifier) SlotConfirmed(ctx context.Context, slot *model.SessionSlot) {
	n.dispatch(ctx, "slot_confirmed", slot, FormatConfirmation(slot))
}

// FeedbackSent уведомление с отзывом ассистента
func (n *Notifier) FeedbackSent(ctx context.Context, slot *model.SessionSlot) {
	n.dispatch(ctx, "feedback_sent", slot, FormatFeedback(slot))
}

// Wait дожидается завершения всех начатых отправок
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) dispatch(ctx context.Context, event string, slot *model.SessionSlot, text string) {
	// отправка переживает отмену запроса, который её вызвал
	ctx = context.WithoutCancel(ctx)

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		sendCtx, cancel := context.WithTimeout(ctx, n.timeout)
		defer cancel()

		if err := n.sink.Send(sendCtx, text); err != nil {
			n.logger.Warn("Notification not delivered",
				zap.String("event", event),
				zap.String("slot_id", slot.ID.String()),
				zap.Error(fmt.Errorf("%w: %v", model.ErrNotificationFailed, err)),
			)
			return
		}

		n.logger.Debug("Notification sent",
			zap.String("event", event),
			zap.String("slot_id", slot.ID.String()),
		)
	}()
}
