package mq

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ignatzorin/taskpay-backend/internal/logger"
)

// Handler обрабатывает тело одного сообщения очереди.
type Handler func(ctx context.Context, body []byte) error

// Consumer читает события из durable-очереди по одному и передаёт их
// обработчику. Сообщение подтверждается после завершения попытки
// обработки — и при успехе, и при терминальном сбое: очередь не
// зацикливается на «ядовитых» сообщениях, доставка best-effort.
//
// Обрыв соединения приводит к автоматическому переподключению;
// неподтверждённые сообщения брокер доставит повторно (at-least-once),
// поэтому обработчик обязан быть безопасным к дубликатам.
type Consumer struct {
	url     string
	queue   string
	handler Handler
}

// NewConsumer создаёт консьюмера очереди уведомлений.
func NewConsumer(url, queue string, handler Handler) *Consumer {
	return &Consumer{url: url, queue: queue, handler: handler}
}

// Run блокирует до отмены контекста, переподключаясь с экспоненциальной
// паузой после каждого обрыва.
func (c *Consumer) Run(ctx context.Context) {
	reconnect := backoff.NewExponentialBackOff()
	reconnect.MaxElapsedTime = 0 // переподключаемся бесконечно
	reconnect.MaxInterval = 30 * time.Second

	for {
		if ctx.Err() != nil {
			return
		}

		err := c.consume(ctx, reconnect)
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return
		}

		wait := reconnect.NextBackOff()
		if logger.Log != nil {
			logger.Log.WithError(err).Warnf("mq: соединение потеряно, переподключение через %s", wait)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// consume держит одну сессию потребления до обрыва или отмены контекста.
func (c *Consumer) consume(ctx context.Context, reconnect *backoff.ExponentialBackOff) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	queue, err := ch.QueueDeclare(c.queue, true, false, false, false, nil)
	if err != nil {
		return err
	}

	// Одно сообщение за раз: следующая доставка только после подтверждения.
	if err := ch.Qos(1, 0, false); err != nil {
		return err
	}

	deliveries, err := ch.Consume(queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))

	if logger.Log != nil {
		logger.Log.Infof("mq: слушаем очередь %q", queue.Name)
	}
	reconnect.Reset()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case amqpErr := <-closed:
			if amqpErr == nil {
				return errors.New("mq: соединение закрыто")
			}
			return amqpErr
		case msg, ok := <-deliveries:
			if !ok {
				return errors.New("mq: канал доставки закрыт")
			}
			c.handleDelivery(ctx, msg)
		}
	}
}

func (c *Consumer) handleDelivery(ctx context.Context, msg amqp.Delivery) {
	if err := c.handler(ctx, msg.Body); err != nil && logger.Log != nil {
		logger.Log.WithError(err).Error("mq: обработка сообщения завершилась ошибкой")
	}

	if err := msg.Ack(false); err != nil && logger.Log != nil {
		logger.Log.WithError(err).Error("mq: не удалось подтвердить сообщение")
	}
}
