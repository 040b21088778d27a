package rabbitmq

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// topologyChannel 声明拓扑所需的 *amqp.Channel 子集
type topologyChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Qos(prefetchCount, prefetchSize int, global bool) error
	Close() error
}

// declareExchange 声明持久化 topic exchange，失败时关闭通道
func declareExchange(ch topologyChannel, exchange string) error {
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return err
	}
	return nil
}

// declareQueue 声明 exchange、队列、绑定与 prefetch，任一步失败都关闭通道
func declareQueue(ch topologyChannel, exchange, routingKey, queue string, prefetch int) error {
	if err := declareExchange(ch, exchange); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return err
	}
	if err := ch.QueueBind(queue, routingKey, exchange, false, nil); err != nil {
		_ = ch.Close()
		return err
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		_ = ch.Close()
		return err
	}
	return nil
}
