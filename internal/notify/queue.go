package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/crewboard/daily-schedule/backend/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher 是 *amqp.Channel 中用到的部分
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// QueuePublisher 把排班通知放入 RabbitMQ 队列，由 notifier 进程实际发送
type QueuePublisher struct {
	ch    Publisher
	queue string
}

func NewQueuePublisher(ch Publisher, queue string) *QueuePublisher {
	return &QueuePublisher{ch: ch, queue: queue}
}

func (p *QueuePublisher) SendAssignmentMessage(ctx context.Context, rowID string, msg domain.AssignmentMessage) error {
	body, err := json.Marshal(domain.QueueMessage{
		Type:  domain.QueueMessageTypeAssignment,
		RowID: rowID,
		Data:  msg,
	})
	if err != nil {
		return err
	}

	if err := p.ch.PublishWithContext(ctx, "", p.queue, true, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    rowID,
		Body:         body,
	}); err != nil {
		return fmt.Errorf("publish to %s: %w", p.queue, err)
	}

	return nil
}

// DeclareQueue 声明持久化队列，api 和 notifier 两边都会调用
func DeclareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		name,  // 队列名称
		true,  // 是否持久化
		false, // 是否自动删除，没有消费者时保留队列
		false, // 是否独占
		false, // 是否不等待
		nil,   // 额外参数
	)
}
