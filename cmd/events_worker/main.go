package main

import (
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/oksasatya/patient-provisioning/config"
	"github.com/oksasatya/patient-provisioning/internal/domain/entity"
	"github.com/oksasatya/patient-provisioning/pkg/helpers"
)

// events_worker drains the patient events queue. It stands in for
// downstream consumers (analytics, notifications) during development and
// doubles as a smoke check that events actually flow.
func main() {
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-events-worker", cfg.Env)

	if cfg.RabbitMQURL == "" || cfg.PatientEventsQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	// Prefetch for fair dispatch
	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	if _, err := ch.QueueDeclare(cfg.PatientEventsQueue, true, false, false, false, nil); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(cfg.PatientEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			var evt entity.PatientCreatedEvent
			if err := json.Unmarshal(msg.Body, &evt); err != nil {
				logger.WithError(err).Warn("bad message")
				_ = msg.Nack(false, false)
				continue
			}
			logger.WithFields(map[string]interface{}{
				"event_type": evt.EventType,
				"patient_id": evt.PatientID,
				"email":      evt.Email,
			}).Info("patient event received")
			_ = msg.Ack(false)
		}
		close(done)
	}()

	logger.Infof("events worker listening on queue=%s", cfg.PatientEventsQueue)
	<-stop
	logger.Info("shutting down...")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
