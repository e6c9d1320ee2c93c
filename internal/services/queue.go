package services

import (
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const campaignQueue = "campaign_executor"

// QueueService distributes campaign executions through RabbitMQ so that
// multiple server instances can share the work. Each published message
// carries one campaign id; a worker claims it and runs the pipeline.
type QueueService struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	stopChan chan struct{}
}

type campaignMessage struct {
	CampaignID string `json:"campaign_id"`
}

func NewQueueService() (*QueueService, error) {
	host := getEnv("RABBITMQ_HOST", "localhost")
	port := getEnv("RABBITMQ_PORT", "5672")
	user := getEnv("RABBITMQ_USER", "guest")
	password := getEnv("RABBITMQ_PASSWORD", "guest")

	url := fmt.Sprintf("amqp://%s:%s@%s:%s/", user, password, host, port)
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = channel.QueueDeclare(
		campaignQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := channel.Qos(1, 0, false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	logrus.Infof("Connected to RabbitMQ at %s:%s", host, port)
	return &QueueService{
		conn:     conn,
		channel:  channel,
		stopChan: make(chan struct{}),
	}, nil
}

// PublishCampaign enqueues a campaign for execution by any worker.
func (s *QueueService) PublishCampaign(campaignID string) error {
	body, err := json.Marshal(campaignMessage{CampaignID: campaignID})
	if err != nil {
		return fmt.Errorf("failed to marshal campaign message: %w", err)
	}

	err = s.channel.Publish(
		"",
		campaignQueue,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish campaign: %w", err)
	}
	logrus.Infof("Published campaign %s to queue", campaignID)
	return nil
}

// StartWorker consumes campaign messages until StopWorker is called.
// Messages for campaigns that are already executing or no longer pending
// are acked and dropped.
func (s *QueueService) StartWorker(orc *Orchestrator) error {
	msgs, err := s.channel.Consume(
		campaignQueue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	go func() {
		logrus.Info("Campaign queue worker started")
		for {
			select {
			case <-s.stopChan:
				logrus.Info("Campaign queue worker stopped")
				return
			case msg, ok := <-msgs:
				if !ok {
					logrus.Warn("Campaign queue channel closed")
					return
				}
				s.handleMessage(orc, msg)
			}
		}
	}()
	return nil
}

func (s *QueueService) handleMessage(orc *Orchestrator, msg amqp.Delivery) {
	var payload campaignMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		logrus.Errorf("Invalid campaign message: %v", err)
		msg.Nack(false, false)
		return
	}

	if !orc.StartQueued(payload.CampaignID) {
		logrus.Warnf("Campaign %s is already executing, dropping duplicate delivery", payload.CampaignID)
	}
	msg.Ack(false)
}

// StopWorker signals the consumer goroutine to exit.
func (s *QueueService) StopWorker() {
	close(s.stopChan)
}

func (s *QueueService) Close() {
	if s.channel != nil {
		s.channel.Close()
	}
	if s.conn != nil {
		s.conn.Close()
	}
}
