// Package queue consumes render requests from Kafka so a fleet of workers
// can share one topic. Offsets are only committed after a successful render;
// a crashed worker's requests are redelivered to the group.
package queue

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/IBM/sarama"

	"briefcast/config"
	"briefcast/pipeline"
	"briefcast/types"
)

// Consumer is a sarama consumer group wired to a render pipeline.
type Consumer struct {
	group   sarama.ConsumerGroup
	topic   string
	groupID string
	pipe    *pipeline.Pipeline

	// ready is closed once, on the first established session. Rebalances
	// re-run Setup, so the close is guarded.
	ready     chan struct{}
	readyOnce sync.Once
}

// NewConsumer connects to the configured brokers.
func NewConsumer(cfg config.Config, pipe *pipeline.Pipeline) (*Consumer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Version = sarama.V3_6_0_0
	saramaCfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaCfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaCfg.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(cfg.KafkaBrokers, cfg.KafkaGroupID, saramaCfg)
	if err != nil {
		return nil, err
	}
	return &Consumer{
		group:   group,
		topic:   cfg.KafkaTopic,
		groupID: cfg.KafkaGroupID,
		pipe:    pipe,
		ready:   make(chan struct{}),
	}, nil
}

// Start begins consuming. It returns once the group session is established;
// consumption continues until ctx is canceled.
func (c *Consumer) Start(ctx context.Context) error {
	handler := &sessionHandler{consumer: c}

	go func() {
		for {
			if err := c.group.Consume(ctx, []string{c.topic}, handler); err != nil {
				if err == context.Canceled {
					return
				}
				log.Printf("kafka consume: %v", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	<-c.ready
	log.Printf("kafka consumer started (group: %s, topic: %s)", c.groupID, c.topic)

	go func() {
		for err := range c.group.Errors() {
			log.Printf("kafka consumer error: %v", err)
		}
	}()
	return nil
}

// Close shuts the group down.
func (c *Consumer) Close() error {
	return c.group.Close()
}

// Run consumes until SIGINT/SIGTERM, then drains briefly and closes.
func (c *Consumer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := c.Start(ctx); err != nil {
		return err
	}

	sigterm := make(chan os.Signal, 1)
	signal.Notify(sigterm, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigterm:
		log.Println("received termination signal")
	case <-ctx.Done():
	}
	cancel()

	time.Sleep(2 * time.Second)
	return c.Close()
}

// sessionHandler implements sarama.ConsumerGroupHandler for render requests.
type sessionHandler struct {
	consumer *Consumer
}

func (h *sessionHandler) Setup(sarama.ConsumerGroupSession) error {
	h.consumer.readyOnce.Do(func() { close(h.consumer.ready) })
	return nil
}

func (h *sessionHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *sessionHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}
			log.Printf("received render request: partition=%d offset=%d", message.Partition, message.Offset)

			mark, err := h.handle(message.Value)
			if err != nil {
				log.Printf("render request failed: %v", err)
			}
			if mark {
				session.MarkMessage(message, "")
			}
		case <-session.Context().Done():
			return nil
		}
	}
}

// handle decodes and renders one request. Malformed or invalid messages are
// marked so they are not redelivered forever; render failures are not
// marked, allowing a retry on the next session.
func (h *sessionHandler) handle(payload []byte) (mark bool, err error) {
	var req types.RenderRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		log.Printf("skipping malformed message: %v", err)
		return true, nil
	}
	if req.Status != "" && req.Status != "success" {
		log.Printf("skipping request %s with status %q", req.UUID, req.Status)
		return true, nil
	}
	if req.Script == "" {
		log.Printf("skipping request %s with empty script", req.UUID)
		return true, nil
	}

	result, err := h.consumer.pipe.Run(req)
	if err != nil {
		return false, err
	}
	log.Printf("rendered %s in %s (%d slides)", result.UUID, result.Elapsed.Round(time.Millisecond), result.Slides)
	return true, nil
}
