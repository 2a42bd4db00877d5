package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/askstream/pkg/eventstream"
	"github.com/papercomputeco/askstream/pkg/eventstream/kafka"
	"github.com/papercomputeco/askstream/pkg/stream"
)

type fakeWriter struct {
	messages []kafkago.Message
	deadline bool
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

var _ = Describe("Publisher", func() {
	var (
		writer *fakeWriter
		pub    *kafka.Publisher
		event  *eventstream.AnswerCompletedEvent
	)

	BeforeEach(func() {
		writer = &fakeWriter{}
		pub = kafka.NewPublisherWithWriter(writer, kafka.Config{})

		now := time.Now()
		event = eventstream.NewAnswerCompletedEvent("capital?", "http://localhost/ask",
			&stream.Response{Answer: "Paris", RequestID: "req-1", Generation: 1}, now, now)
	})

	It("requires brokers", func() {
		_, err := kafka.NewPublisher(kafka.Config{})
		Expect(err).To(HaveOccurred())
	})

	It("creates a publisher for configured brokers", func() {
		p, err := kafka.NewPublisher(kafka.Config{Brokers: []string{"localhost:9092"}})
		Expect(err).NotTo(HaveOccurred())
		Expect(p).NotTo(BeNil())
	})

	It("returns ErrNilAnswerEvent for nil events", func() {
		Expect(pub.PublishAnswer(context.Background(), nil)).To(MatchError(eventstream.ErrNilAnswerEvent))
		Expect(writer.messages).To(BeEmpty())
	})

	It("writes the event as JSON keyed by request id", func() {
		Expect(pub.PublishAnswer(context.Background(), event)).To(Succeed())
		Expect(writer.messages).To(HaveLen(1))

		msg := writer.messages[0]
		Expect(string(msg.Key)).To(Equal("req-1"))
		Expect(msg.Headers).To(ContainElement(kafkago.Header{Key: "event_type", Value: []byte(eventstream.EventTypeAnswerCompleted)}))

		var got eventstream.AnswerCompletedEvent
		Expect(json.Unmarshal(msg.Value, &got)).To(Succeed())
		Expect(got.EventID).To(Equal(event.EventID))
		Expect(got.Answer.Text).To(Equal("Paris"))
	})

	It("bounds each write with a deadline", func() {
		Expect(pub.PublishAnswer(context.Background(), event)).To(Succeed())
		Expect(writer.deadline).To(BeTrue())
	})

	It("wraps write failures", func() {
		writer.err = errors.New("leader not available")
		err := pub.PublishAnswer(context.Background(), event)
		Expect(err).To(MatchError(ContainSubstring("leader not available")))
		Expect(errors.Is(err, writer.err)).To(BeTrue())
	})

	It("closes the writer", func() {
		Expect(pub.Close()).To(Succeed())
		Expect(writer.closed).To(BeTrue())
	})
})
