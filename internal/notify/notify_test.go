package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/crewboard/daily-schedule/backend/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func sampleMessage() domain.AssignmentMessage {
	return domain.AssignmentMessage{
		RecipientID:    4,
		RecipientName:  "Ana Ruiz",
		ContactAddress: " 5550001@sms.example.com ",
		JobName:        "Harbor Lofts",
		JobAddress:     "12 Pier Rd",
		Tasks:          "Hang drywall",
		Date:           "2026-10-15",
		Notes:          "Use side gate\nMaterials: Screws",
		Language:       "es",
	}
}

type fakeMailClient struct {
	sent []*mail.Msg
	err  error
}

func (f *fakeMailClient) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, messages...)
	return nil
}

func TestSMTPSender(t *testing.T) {
	t.Run("builds one mail for the contact address", func(t *testing.T) {
		client := &fakeMailClient{}
		sender := NewSMTPSender(client, "dispatch@crewboard.example.com")

		msg := sampleMessage()
		msg.Language = "en"
		require.NoError(t, sender.SendAssignmentMessage(context.Background(), "r1", msg))
		require.Len(t, client.sent, 1)

		rcpts, err := client.sent[0].GetRecipients()
		require.NoError(t, err)
		require.Equal(t, []string{"5550001@sms.example.com"}, rcpts)
		require.Equal(t, []string{"Assignment for 2026-10-15"}, client.sent[0].GetGenHeader(mail.HeaderSubject))
	})

	t.Run("gateway errors are returned", func(t *testing.T) {
		client := &fakeMailClient{err: errors.New("550 mailbox unavailable")}
		sender := NewSMTPSender(client, "dispatch@crewboard.example.com")

		err := sender.SendAssignmentMessage(context.Background(), "r1", sampleMessage())
		require.ErrorContains(t, err, "550 mailbox unavailable")
	})

	t.Run("invalid address never reaches the client", func(t *testing.T) {
		client := &fakeMailClient{}
		sender := NewSMTPSender(client, "dispatch@crewboard.example.com")

		msg := sampleMessage()
		msg.ContactAddress = "not an address"
		require.Error(t, sender.SendAssignmentMessage(context.Background(), "r1", msg))
		require.Empty(t, client.sent)
	})
}

func TestRenderBody(t *testing.T) {
	body, err := RenderBody(sampleMessage())
	require.NoError(t, err)
	require.Equal(t, "Ana Ruiz, 2026-10-15\nHarbor Lofts\n12 Pier Rd\nHang drywall\nUse side gate\nMaterials: Screws\n", body)

	msg := sampleMessage()
	msg.Tasks = ""
	msg.Notes = ""
	body, err = RenderBody(msg)
	require.NoError(t, err)
	require.Equal(t, "Ana Ruiz, 2026-10-15\nHarbor Lofts\n12 Pier Rd\n", body)
}

func TestSubject(t *testing.T) {
	msg := sampleMessage()
	require.Equal(t, "Asignación para 2026-10-15", Subject(msg))

	msg.Language = "fr"
	require.Equal(t, "Assignment for 2026-10-15", Subject(msg))
}

type fakePublisher struct {
	exchange, key string
	published     []amqp.Publishing
	err           error
}

func (f *fakePublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.exchange, f.key = exchange, key
	f.published = append(f.published, msg)
	return nil
}

func TestQueuePublisher(t *testing.T) {
	pub := &fakePublisher{}
	p := NewQueuePublisher(pub, "assignment_message_queue")

	require.NoError(t, p.SendAssignmentMessage(context.Background(), "r1", sampleMessage()))
	require.Equal(t, "", pub.exchange)
	require.Equal(t, "assignment_message_queue", pub.key)
	require.Len(t, pub.published, 1)
	require.Equal(t, "application/json", pub.published[0].ContentType)

	qm := domain.QueueMessage{}
	require.NoError(t, json.Unmarshal(pub.published[0].Body, &qm))
	require.Equal(t, domain.QueueMessageTypeAssignment, qm.Type)
	require.Equal(t, "r1", qm.RowID)
	require.Equal(t, sampleMessage(), qm.Data)

	pub.err = errors.New("channel closed")
	require.ErrorContains(t, p.SendAssignmentMessage(context.Background(), "r2", sampleMessage()), "channel closed")
}

type ackRecord struct {
	tag     uint64
	ack     bool
	requeue bool
}

type fakeAcknowledger struct {
	mu      sync.Mutex
	records []ackRecord
}

func (f *fakeAcknowledger) Ack(tag uint64, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, ackRecord{tag: tag, ack: true})
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, _ bool, requeue bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, ackRecord{tag: tag, requeue: requeue})
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return f.Nack(tag, false, requeue)
}

func (f *fakeAcknowledger) snapshot() []ackRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ackRecord(nil), f.records...)
}

type fakeDeliverer struct {
	mu     sync.Mutex
	rowIDs []string
	fail   map[string]bool
}

func (f *fakeDeliverer) SendAssignmentMessage(_ context.Context, rowID string, _ domain.AssignmentMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rowIDs = append(f.rowIDs, rowID)
	if f.fail[rowID] {
		return errors.New("smtp down")
	}
	return nil
}

func delivery(t *testing.T, acker amqp.Acknowledger, tag uint64, v any) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: acker, DeliveryTag: tag, Body: body}
}

func TestWorker(t *testing.T) {
	acker := &fakeAcknowledger{}
	deliverer := &fakeDeliverer{fail: map[string]bool{"r2": true}}
	w := NewWorker(deliverer, nil)

	deliveries := make(chan amqp.Delivery, 4)
	deliveries <- delivery(t, acker, 1, domain.QueueMessage{Type: domain.QueueMessageTypeAssignment, RowID: "r1", Data: sampleMessage()})
	deliveries <- delivery(t, acker, 2, domain.QueueMessage{Type: domain.QueueMessageTypeAssignment, RowID: "r2", Data: sampleMessage()})
	deliveries <- delivery(t, acker, 3, domain.QueueMessage{Type: "unknown", RowID: "r3"})
	deliveries <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 4, Body: []byte("{")}
	close(deliveries)

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(context.Background(), deliveries)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop after the channel closed")
	}

	require.Equal(t, []string{"r1", "r2"}, deliverer.rowIDs)
	require.Equal(t, []ackRecord{
		{tag: 1, ack: true},
		{tag: 2},
		{tag: 3},
		{tag: 4},
	}, acker.snapshot())
}

func TestWorker_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	deliveries := make(chan amqp.Delivery)

	done := make(chan struct{})
	go func() {
		defer close(done)
		NewWorker(&fakeDeliverer{}, nil).Run(ctx, deliveries)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
