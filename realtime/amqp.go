package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/yeremiapane/table-ordering/domain"
)

// AMQPFanout mirrors realtime events to a RabbitMQ fanout exchange so other
// services (printers, dashboards) can follow the order stream.
type AMQPFanout struct {
	conn     *amqp.Connection
	exchange string
}

func DialAMQP(url, exchange string) (*AMQPFanout, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp.Dial -> %w", err)
	}

	f := &AMQPFanout{conn: conn, exchange: exchange}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("conn.Channel -> %w", err)
	}
	defer ch.Close()

	if err := f.declare(ch); err != nil {
		conn.Close()
		return nil, err
	}
	return f, nil
}

func (f *AMQPFanout) declare(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(
		f.exchange, // name
		"fanout",   // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return fmt.Errorf("ch.ExchangeDeclare -> %w", err)
	}
	return nil
}

func (f *AMQPFanout) Name() string {
	return "amqp"
}

// Send publishes msg with the target roles in the headers. Messages are
// transient.
func (f *AMQPFanout) Send(ctx context.Context, msg Message, roles []domain.Role) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ch, err := f.conn.Channel()
	if err != nil {
		return fmt.Errorf("conn.Channel -> %w", err)
	}
	defer ch.Close()

	headers := amqp.Table{"event": msg.Event}
	if len(roles) > 0 {
		names := make([]interface{}, 0, len(roles))
		for _, r := range roles {
			names = append(names, string(r))
		}
		headers["roles"] = names
	}

	err = ch.PublishWithContext(ctx,
		f.exchange, // exchange
		"",         // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Transient,
			Timestamp:    msg.Timestamp,
			Headers:      headers,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("ch.PublishWithContext -> %w", err)
	}
	return nil
}

func (f *AMQPFanout) Close() error {
	return f.conn.Close()
}
