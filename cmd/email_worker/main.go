package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"taskflow/config"
	"taskflow/pkg/helpers"
	"taskflow/pkg/mailer"
)

// email_worker consumes queued email jobs and delivers them via Mailgun.
// The API server only publishes; delivery happens here so a slow or failing
// mail provider never blocks a registration request.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED is false, nothing to do")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" {
		log.Fatal("email worker requires RABBITMQ_URL, MAILGUN_DOMAIN and MAILGUN_API_KEY")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("failed to open channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("failed to set qos: %v", err)
	}

	q, err := ch.QueueDeclare(cfg.RabbitMQEmailQueue, true, false, false, false, nil)
	if err != nil {
		log.Fatalf("failed to declare queue: %v", err)
	}

	deliveries, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("failed to start consumer: %v", err)
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	logger.Infof("email worker consuming from %q", q.Name)
	for {
		select {
		case <-quit:
			logger.Info("email worker shutting down")
			return
		case d, ok := <-deliveries:
			if !ok {
				logger.Warn("delivery channel closed")
				return
			}
			var job mailer.EmailJob
			if err := json.Unmarshal(d.Body, &job); err != nil {
				logger.WithError(err).Error("malformed email job, dropping")
				_ = d.Nack(false, false)
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			err := mg.Send(ctx, job.To, job.Subject, job.Text, job.HTML)
			cancel()
			if err != nil {
				logger.WithError(err).WithField("to", job.To).Error("mail delivery failed, requeueing")
				_ = d.Nack(false, true)
				continue
			}
			logger.WithField("to", job.To).Info("email sent")
			_ = d.Ack(false)
		}
	}
}
