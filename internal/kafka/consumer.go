package kafka

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Handler harus return nil hanya jika proses sukses & boleh commit offset.
type Handler func(ctx context.Context, m kafka.Message) error

type Consumer struct {
	r       *kafka.Reader
	workers int
}

func NewConsumer(brokers []string, group, topic string, workers int) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, workers: workers}
}

var retryBackoff = 200 * time.Millisecond

// Start blocks until ctx is cancelled or the reader fails. Each partition is
// pinned to one worker and a failing message is retried until it succeeds,
// so offsets of a partition are committed strictly in order.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make([]chan kafka.Message, c.workers)
	var wg sync.WaitGroup
	for i := range jobs {
		jobs[i] = make(chan kafka.Message, 128)
		wg.Add(1)
		go func(in <-chan kafka.Message) {
			defer wg.Done()
			for m := range in {
				if !process(ctx, h, m) {
					return
				}
				// commit on success
				if err := c.r.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
					slog.Error("consumer commit error", "topic", m.Topic, "partition", m.Partition, "offset", m.Offset, "error", err)
				}
			}
		}(jobs[i])
	}
	defer wg.Wait()

	closeAll := func() {
		for _, ch := range jobs {
			close(ch)
		}
	}

	// dispatcher loop
	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			closeAll()
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		select {
		case jobs[workerFor(m.Partition, c.workers)] <- m:
		case <-ctx.Done():
			closeAll()
			return nil
		}
	}
}

func workerFor(partition, workers int) int {
	if partition < 0 {
		partition = -partition
	}
	return partition % workers
}

// process runs h until it succeeds. It returns false when ctx ends first;
// the message is then left uncommitted.
func process(ctx context.Context, h Handler, m kafka.Message) bool {
	for {
		err := h(ctx, m)
		if err == nil {
			return true
		}
		slog.Error("consumer handler error", "topic", m.Topic, "partition", m.Partition, "offset", m.Offset, "error", err)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(retryBackoff): // backoff ringan
		}
	}
}
