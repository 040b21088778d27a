package rabbitmq

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
)

// FramePublisher 发布 FrameRequested 消息
type FramePublisher struct {
	channel    *amqp.Channel
	exchange   string
	routingKey string
}

func NewFramePublisher(conn *amqp.Connection, exchange, routingKey string) (*FramePublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := declareExchange(ch, exchange); err != nil {
		return nil, err
	}
	return &FramePublisher{channel: ch, exchange: exchange, routingKey: routingKey}, nil
}

// Publish 发布一条请求
func (p *FramePublisher) Publish(ctx context.Context, m FrameRequested) error {
	body, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return p.channel.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

// Close 关闭通道
func (p *FramePublisher) Close() error {
	return p.channel.Close()
}
