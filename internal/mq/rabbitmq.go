package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ignatzorin/taskpay-backend/internal/models"
)

// Client владеет соединением с RabbitMQ и публикует события уведомлений
// в durable-очередь. Соединение устанавливается лениво и восстанавливается
// при следующей публикации после обрыва.
type Client struct {
	url   string
	queue string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewClient создаёт клиента очереди. Соединение откладывается до первой публикации.
func NewClient(url, queue string) *Client {
	return &Client{url: url, queue: queue}
}

// Publish сериализует событие и кладёт его в очередь как persistent-сообщение.
func (c *Client) Publish(ctx context.Context, event models.QueuedNotification) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("mq: не удалось сериализовать событие: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ch, err := c.channel()
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx, "", c.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		// Сбрасываем соединение: следующая публикация переподключится.
		c.reset()
		return fmt.Errorf("mq: не удалось опубликовать событие: %w", err)
	}
	return nil
}

// Connected сообщает, есть ли живое соединение с брокером.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil && !c.conn.IsClosed()
}

// Close закрывает соединение с брокером.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.ch = nil
	return err
}

// channel возвращает живой канал, устанавливая соединение при необходимости.
// Вызывается под c.mu.
func (c *Client) channel() (*amqp.Channel, error) {
	if c.ch != nil && !c.conn.IsClosed() {
		return c.ch, nil
	}

	conn, err := amqp.Dial(c.url)
	if err != nil {
		return nil, fmt.Errorf("mq: не удалось подключиться к брокеру: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("mq: не удалось открыть канал: %w", err)
	}

	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("mq: не удалось объявить очередь %q: %w", c.queue, err)
	}

	c.conn = conn
	c.ch = ch
	return ch, nil
}

// reset сбрасывает текущее соединение. Вызывается под c.mu.
func (c *Client) reset() {
	if c.conn != nil {
		c.conn.Close()
	}
	c.conn = nil
	c.ch = nil
}
