// Package broker publishes sale events to RabbitMQ.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tjmpn2/merchbooth/internal/obs"
	"github.com/tjmpn2/merchbooth/internal/queue"
)

// RabbitPublisher keeps one connection open and redials after a failure.
type RabbitPublisher struct {
	url string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewRabbitPublisher dials url and declares the sale queues.
func NewRabbitPublisher(url string) (*RabbitPublisher, error) {
	p := &RabbitPublisher{url: url}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.connectLocked(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *RabbitPublisher) connectLocked() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq: channel: %w", err)
	}
	for _, name := range []string{queue.SaleCommitted, queue.SaleRefunded} {
		// durable, not autoDelete, not exclusive
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return fmt.Errorf("rabbitmq: declare %s: %w", name, err)
		}
	}
	p.conn, p.ch = conn, ch
	return nil
}

func (p *RabbitPublisher) PublishSaleCommitted(ctx context.Context, ev queue.SaleCommittedEvent) error {
	return p.publish(ctx, queue.SaleCommitted, ev)
}

func (p *RabbitPublisher) PublishSaleRefunded(ctx context.Context, ev queue.SaleRefundedEvent) error {
	return p.publish(ctx, queue.SaleRefunded, ev)
}

func (p *RabbitPublisher) publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal %s: %w", routingKey, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() {
		if err := p.connectLocked(); err != nil {
			obs.Logger.Warn("rabbitmq reconnect failed", "queue", routingKey, "err", err)
			return err
		}
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, "", routingKey, false, false, msg); err != nil {
		obs.Logger.Warn("rabbitmq publish failed", "queue", routingKey, "err", err)
		//次回つなぎ直す
		p.closeLocked()
		return err
	}
	return nil
}

func (p *RabbitPublisher) closeLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
	return nil
}
