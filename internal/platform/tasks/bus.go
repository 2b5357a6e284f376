package tasks

import (
	"runtime"
	"time"

	"github.com/segmentio/kafka-go"
)

// Bus constructs per-topic Kafka readers and writers, one topic per task
// Type, grounded on the example pack's Kafka broker wiring pattern
// (Reader/Writer construction from a shared broker list).
type Bus struct {
	brokers []string
}

func NewBus(brokers []string) *Bus {
	return &Bus{brokers: brokers}
}

func topicFor(t Type) string {
	return "kplc.tasks." + string(t)
}

// prefetch is the IO-bound default spec.md §4.7 names: 100 per CPU.
func prefetch() int {
	return 100 * runtime.NumCPU()
}

// Reader opens a consumer-group reader for t. HeartbeatInterval/
// SessionTimeout are set to match spec.md §5's "broker issues a heartbeat
// every 10s" language.
func (b *Bus) Reader(t Type, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:           b.brokers,
		GroupID:           groupID,
		Topic:             topicFor(t),
		MinBytes:          1,
		MaxBytes:          10e6,
		MaxWait:           500 * time.Millisecond,
		QueueCapacity:     prefetch(),
		HeartbeatInterval: 10 * time.Second,
		SessionTimeout:    30 * time.Second,
	})
}

// Writer opens a producer for t.
func (b *Bus) Writer(t Type) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(b.brokers...),
		Topic:        topicFor(t),
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
}
