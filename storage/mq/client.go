package mq

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"PunchPass/config"
)

const (
	// EventsExchange 考勤事件的扇出交换机，下游 HR 系统自行绑定队列
	EventsExchange = "attendance.events"
)

var (
	conn   *amqp.Connection
	connMu sync.Mutex
)

func Init() error {
	connMu.Lock()
	defer connMu.Unlock()

	url := config.Cfg.GetRabbitMQURL()
	c, err := amqp.Dial(url)
	if err != nil {
		return err
	}

	ch, err := c.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(EventsExchange, "fanout", true, false, false, false, nil); err != nil {
		return err
	}

	conn = c
	return nil
}

// Ready 队列是可选依赖
func Ready() bool {
	connMu.Lock()
	defer connMu.Unlock()
	return conn != nil
}

func Close(ctx context.Context) error {
	connMu.Lock()
	defer connMu.Unlock()

	if conn == nil {
		return nil
	}

	err := conn.Close()
	conn = nil
	return err
}
