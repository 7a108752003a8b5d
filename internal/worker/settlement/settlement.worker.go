package settlement

import (
	"context"
	"encoding/json"
	"fmt"

	"paysofter-checkout/internal/common/models"
	"paysofter-checkout/internal/pkg/logger"
	"paysofter-checkout/internal/pkg/rabbitmq"
	s3aws "paysofter-checkout/internal/pkg/storage/s3"
	"paysofter-checkout/internal/repository"
	checkoutService "paysofter-checkout/internal/service/checkout"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Worker consumes settled-checkout events and records them: one settlement
// row per session, plus a JSON receipt in object storage when configured.
type Worker struct {
	ctx context.Context
	rb  *rabbitmq.ConnectionManager
	rp  repository.IRepository
	s3  s3aws.Is3
}

func NewWorker(ctx context.Context, rb *rabbitmq.ConnectionManager, rp repository.IRepository, s3 s3aws.Is3) *Worker {
	return &Worker{
		ctx: ctx,
		rb:  rb,
		rp:  rp,
		s3:  s3,
	}
}

func (w *Worker) Subscribe() error {
	sub, err := rabbitmq.NewSubscriber(
		w.ctx,
		w.rb,
		w.handleSettled,
		rabbitmq.DefaultSubscribeOptions(checkoutService.SettledQueue, false),
	)
	if err != nil {
		return fmt.Errorf("failed to create settlement subscriber: %w", err)
	}

	return sub.Start()
}

func (w *Worker) handleSettled(msg *amqp.Delivery) (interface{}, error) {
	var event checkoutService.SettledEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		// malformed payloads would never succeed on retry
		logger.Error.Printf("Dropping malformed settled event: %v", err)
		return nil, nil
	}

	if event.SessionId == "" {
		logger.Warning.Printf("Dropping settled event without session id")
		return nil, nil
	}

	// one row per session no matter how often the event is redelivered
	if existing, err := w.rp.Settlement.FindBySessionID(w.ctx, event.SessionId); err == nil && existing != nil {
		logger.Info.Printf("Settlement for session %s already recorded", event.SessionId)
		return nil, nil
	}

	payload, _ := json.Marshal(event)

	stl := &models.Settlement{
		SessionID:     event.SessionId,
		ReferenceID:   event.ReferenceId,
		BuyerEmail:    event.BuyerEmail,
		BuyerName:     event.BuyerName,
		BuyerPhone:    event.BuyerPhone,
		Amount:        event.Amount,
		Currency:      event.Currency,
		ProductName:   event.ProductName,
		Qty:           event.Qty,
		PaymentMethod: event.PaymentMethod,
		PaymentOption: event.PaymentOption,
		KeyMode:       event.KeyMode,
		Duration:      event.Duration,
		Payload:       models.JSONB(payload),
		SettledAt:     event.SettledAt,
	}

	if w.s3 != nil {
		receiptKey := fmt.Sprintf("receipts/%s.json", event.SessionId)
		if err := w.s3.UploadFile(receiptKey, payload, "application/json"); err != nil {
			logger.Error.Printf("Failed to upload receipt for session %s: %v", event.SessionId, err)
		} else {
			stl.ReceiptKey = receiptKey
		}
	}

	if err := w.rp.Settlement.Create(w.ctx, stl); err != nil {
		return nil, fmt.Errorf("failed to record settlement for session %s: %w", event.SessionId, err)
	}

	logger.Info.Printf("Recorded settlement for session %s (%s %s)", event.SessionId, event.Amount.String(), event.Currency)
	return nil, nil
}
