package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/blinkforge/blinkforge-api/config"
	"github.com/blinkforge/blinkforge-api/internal/application"
	"github.com/blinkforge/blinkforge-api/internal/container"
	pginfra "github.com/blinkforge/blinkforge-api/internal/infrastructure/postgres"
	"github.com/blinkforge/blinkforge-api/pkg/helpers"
	"github.com/blinkforge/blinkforge-api/pkg/mailer"
)

// The build worker is the simulated build backend: it takes build jobs off
// the queue, waits the configured build delay, then persists the status
// transition, publishes the build manifest, and notifies the user.
func main() {
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-build-worker", cfg.Env)

	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetPGPool(pool)
	container.SetRedis(rdb)

	if cfg.MailSendEnabled && cfg.MailgunDomain != "" {
		container.SetMailgun(mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender))
	}
	if cfg.GCSBucket != "" {
		gcs, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.WithError(err).Warn("gcs client unavailable, manifests disabled")
		} else {
			container.SetGCS(gcs)
		}
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

	if _, err := ch.QueueDeclare(cfg.RabbitMQBuildQueue, true, false, false, false, nil); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQBuildQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	repo := pginfra.NewProjectRepository(pool)
	svc := application.NewProjectService(repo, rdb, logger, nil, nil, "", cfg.BuildPendingTTL)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			var job application.BuildJob
			if err := json.Unmarshal(msg.Body, &job); err != nil {
				log.Printf("bad message: %v", err)
				_ = msg.Nack(false, false)
				continue
			}
			handleJob(ctx, cfg, svc, &job)
			_ = msg.Ack(false)
		}
		close(done)
	}()

	logger.Infof("build worker listening on queue=%s", cfg.RabbitMQBuildQueue)
	<-stop
	logger.Info("shutting down...")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

func handleJob(ctx context.Context, cfg *config.Config, svc *application.ProjectService, job *application.BuildJob) {
	logger := container.GetLogger()

	// The simulated build: nothing happens for a fixed delay.
	time.Sleep(cfg.BuildSimDelay)

	appURL := cfg.AppURLBase + "/" + job.ProjectID

	if gcs := container.GetGCS(); gcs != nil {
		manifest, _ := json.Marshal(map[string]any{
			"project_id": job.ProjectID,
			"title":      job.Title,
			"prompt":     job.Prompt,
			"app_url":    appURL,
			"built_at":   time.Now().UTC().Format(time.RFC3339),
		})
		object := fmt.Sprintf("manifests/%s.json", job.ProjectID)
		c, cancel := context.WithTimeout(ctx, 10*time.Second)
		if _, err := helpers.UploadObject(c, gcs, cfg.GCSBucket, object, "application/json", bytes.NewReader(manifest)); err != nil {
			logger.WithError(err).WithField("project_id", job.ProjectID).Warn("manifest upload failed")
		}
		cancel()
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	err := svc.FinishBuild(c, job.ProjectID, job.UserID, appURL)
	cancel()
	if err != nil {
		// The transition already happened or the row is gone; the build
		// result has nowhere to land, so skip the notice.
		logger.WithError(err).WithField("project_id", job.ProjectID).Warn("finish build skipped")
		return
	}

	if mg := container.GetMailgun(); mg != nil && job.Email != "" {
		text := fmt.Sprintf("%q finished building. Open it at %s", job.Title, appURL)
		c, cancel := context.WithTimeout(ctx, 15*time.Second)
		if err := mg.Send(c, job.Email, "Your app is ready", text, ""); err != nil {
			logger.WithError(err).WithField("project_id", job.ProjectID).Warn("completion email failed")
		}
		cancel()
	}
}
