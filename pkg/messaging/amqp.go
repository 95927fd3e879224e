// Package messaging delivers finished reports to downstream consumers
// over AMQP. Publishing is optional; the pipeline works unchanged when
// no broker is configured.
package messaging

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"leakwatch/pkg/errors"
	"leakwatch/pkg/report"
)

// PublisherConfig holds AMQP publisher configuration
type PublisherConfig struct {
	URL        string
	QueueName  string
	RoutingKey string
	Durable    bool
	AutoDelete bool
}

// Publisher handles the AMQP connection and report publishing
type Publisher struct {
	logger    *logrus.Entry
	config    PublisherConfig
	conn      *amqp.Connection
	channel   *amqp.Channel
	connected bool
	connMutex sync.RWMutex
}

// NewPublisher creates a new report publisher
func NewPublisher(logger *logrus.Logger, config PublisherConfig) *Publisher {
	if config.RoutingKey == "" {
		config.RoutingKey = config.QueueName
	}
	config.Durable = true
	config.AutoDelete = false

	return &Publisher{
		logger: logger.WithField("component", "messaging"),
		config: config,
	}
}

// Connect establishes the connection and declares the report queue
func (p *Publisher) Connect() error {
	p.connMutex.Lock()
	defer p.connMutex.Unlock()

	conn, err := amqp.Dial(p.config.URL)
	if err != nil {
		return errors.Wrap(err, "failed to connect to AMQP server",
			map[string]interface{}{"url": p.config.URL})
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return errors.Wrap(err, "failed to open AMQP channel")
	}

	_, err = channel.QueueDeclare(
		p.config.QueueName,
		p.config.Durable,
		p.config.AutoDelete,
		false, // Exclusive
		false, // No-wait
		nil,   // Arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return errors.Wrap(err, "failed to declare AMQP queue",
			map[string]interface{}{"queue": p.config.QueueName})
	}

	p.conn = conn
	p.channel = channel
	p.connected = true

	p.logger.WithField("queue", p.config.QueueName).Info("Connected to AMQP server")
	return nil
}

// IsConnected reports whether the publisher holds a live connection
func (p *Publisher) IsConnected() bool {
	p.connMutex.RLock()
	defer p.connMutex.RUnlock()
	return p.connected
}

// PublishReport serializes the report to JSON and publishes it
func (p *Publisher) PublishReport(r *report.Report) error {
	p.connMutex.RLock()
	defer p.connMutex.RUnlock()

	if !p.connected {
		return errors.New("AMQP publisher is not connected")
	}

	body, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "failed to marshal report",
			map[string]interface{}{"report_id": r.ReportID})
	}

	err = p.channel.Publish(
		"",                  // Exchange
		p.config.RoutingKey, // Routing key (queue name)
		false,               // Mandatory
		false,               // Immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		return errors.Wrap(err, "failed to publish report",
			map[string]interface{}{"report_id": r.ReportID})
	}

	p.logger.WithFields(logrus.Fields{
		"report_id": r.ReportID,
		"queue":     p.config.QueueName,
		"bytes":     len(body),
	}).Info("Report published to AMQP")
	return nil
}

// Close shuts down the channel and the connection
func (p *Publisher) Close() {
	p.connMutex.Lock()
	defer p.connMutex.Unlock()

	if p.channel != nil {
		p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
	p.connected = false
}
