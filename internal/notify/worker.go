package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/crewboard/daily-schedule/backend/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Deliverer 实际发送一条消息，通常是 SMTPSender
type Deliverer interface {
	SendAssignmentMessage(ctx context.Context, rowID string, msg domain.AssignmentMessage) error
}

// Worker 消费队列中的排班通知。发送失败的消息不会重新入队，重试由操作员发起
type Worker struct {
	deliverer Deliverer
	logger    *slog.Logger
}

func NewWorker(deliverer Deliverer, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Worker{deliverer: deliverer, logger: logger}
}

// Run 处理消息直到 ctx 取消或通道关闭
func (w *Worker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				w.logger.Warn("消息通道已关闭")
				return
			}
			w.Handle(ctx, d)
		}
	}
}

// Handle 处理单条消息，成功时 Ack，其他情况 Nack 且不重新入队
func (w *Worker) Handle(ctx context.Context, d amqp.Delivery) {
	qm := domain.QueueMessage{}
	if err := json.Unmarshal(d.Body, &qm); err != nil {
		w.logger.Error("消息反序列化失败", "error", err)
		_ = d.Nack(false, false)
		return
	}

	if qm.Type != domain.QueueMessageTypeAssignment {
		w.logger.Error("不支持的消息类型", "type", qm.Type)
		_ = d.Nack(false, false)
		return
	}

	if err := w.deliverer.SendAssignmentMessage(ctx, qm.RowID, qm.Data); err != nil {
		w.logger.Error("排班通知发送失败", "row", qm.RowID, "recipient", qm.Data.RecipientID, "error", err)
		_ = d.Nack(false, false)
		return
	}

	w.logger.Info("排班通知已发送", "row", qm.RowID, "recipient", qm.Data.RecipientID, "date", qm.Data.Date)
	_ = d.Ack(false)
}
