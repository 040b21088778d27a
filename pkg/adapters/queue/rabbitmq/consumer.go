package rabbitmq

import (
	"context"
	"errors"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/dgmtsproject/dgmts-sub001/pkg/core/domain"
	"github.com/dgmtsproject/dgmts-sub001/pkg/core/ports"
)

// FrameWarmer 预热采样结果的服务
type FrameWarmer interface {
	Frame(ctx context.Context, req ports.FrameRequest) (*domain.SampleResult, error)
}

// Outcome 消息处理结果
type Outcome int

const (
	OutcomeAck     Outcome = iota
	OutcomeDrop            // 消息本身有问题，重试无意义
	OutcomeRequeue         // 临时故障，重新入队
)

// FrameConsumer 消费 FrameRequested 消息并预热缓存
type FrameConsumer struct {
	channel     *amqp.Channel
	queue       string
	warmer      FrameWarmer
	logger      *zap.Logger
	prefetchCnt int
}

// NewFrameConsumer 声明队列并绑定到 exchange
func NewFrameConsumer(conn *amqp.Connection, exchange, routingKey, queue string, warmer FrameWarmer, logger *zap.Logger) (*FrameConsumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	consumer := &FrameConsumer{
		channel:     ch,
		queue:       queue,
		warmer:      warmer,
		logger:      logger,
		prefetchCnt: 4,
	}

	if err := declareQueue(ch, exchange, routingKey, queue, consumer.prefetchCnt); err != nil {
		return nil, err
	}
	return consumer, nil
}

// Start 阻塞消费，直到 ctx 取消或通道关闭
func (c *FrameConsumer) Start(ctx context.Context) error {
	msgs, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("frame consumer shutting down")
			return nil
		case msg, ok := <-msgs:
			if !ok {
				c.logger.Warn("rabbitmq channel closed")
				return nil
			}
			switch c.Handle(ctx, msg.Body) {
			case OutcomeAck:
				_ = msg.Ack(false)
			case OutcomeDrop:
				_ = msg.Nack(false, false)
			case OutcomeRequeue:
				_ = msg.Nack(false, true)
			}
		}
	}
}

// Handle 处理单条消息体并给出确认策略
func (c *FrameConsumer) Handle(ctx context.Context, body []byte) Outcome {
	m, err := DecodeFrameRequested(body)
	if err != nil {
		c.logger.Warn("dropping malformed frame request", zap.Error(err))
		return OutcomeDrop
	}

	traceID := m.TraceID
	if traceID == "" {
		traceID = uuid.NewString()
	}
	ctx = domain.NewContext(ctx, domain.RequestInfo{TraceID: traceID, Source: domain.RequestSourceQueue})

	if _, err := c.warmer.Frame(ctx, m.ToRequest()); err != nil {
		log := c.logger.With(zap.String("instrument_id", m.InstrumentID), zap.String("trace_id", traceID), zap.Error(err))
		if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrInstrumentNotFound) {
			log.Warn("dropping unprocessable frame request")
			return OutcomeDrop
		}
		log.Error("frame request failed, requeueing")
		return OutcomeRequeue
	}
	return OutcomeAck
}

// Close 关闭通道
func (c *FrameConsumer) Close() error {
	return c.channel.Close()
}
