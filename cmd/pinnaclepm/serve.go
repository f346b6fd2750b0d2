package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pinnaclepm/internal/db"
	"pinnaclepm/internal/notify"
	"pinnaclepm/internal/server"
	"pinnaclepm/internal/storage"
	"pinnaclepm/internal/store"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}

	awsConfig, err := loadAWSConfig(ctx)
	if err != nil {
		return err
	}

	sesClient := ses.NewFromConfig(awsConfig)
	s3Client := s3.NewFromConfig(awsConfig)

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	settingsRepo := store.NewSettingsRepository(pool)
	draftRepo := store.NewDraftRepository(pool)
	adminRepo := store.NewAdminRepository(pool)
	applicationRepo := store.NewApplicationRepository(pool)

	receipts := storage.NewReceiptStorage(s3Client, config.ReceiptBucketName)

	composer := &notify.Composer{
		FromName:       config.MailFromName,
		FromEmail:      config.MailFromEmail,
		OperatorEmail:  config.OperatorEmail,
		DocumentsEmail: config.DocumentsEmail,
	}

	pipeline := notify.NewPipeline(logger, notify.NewSESMailer(sesClient), composer).
		WithRecorder(applicationRepo).
		WithReceiptStore(receipts)

	srv, err := server.New(
		config,
		logger,
		settingsRepo,
		draftRepo,
		adminRepo,
		applicationRepo,
		pipeline,
	)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
