package cmd

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/haekelise/hausmeister/internal/config"
	"github.com/haekelise/hausmeister/internal/helper"
	"github.com/haekelise/hausmeister/pkg/api"
	"github.com/haekelise/hausmeister/pkg/backup"
	"github.com/haekelise/hausmeister/pkg/mail"
	"github.com/haekelise/hausmeister/pkg/notes"
	"github.com/haekelise/hausmeister/pkg/pidfile"
	"github.com/haekelise/hausmeister/pkg/probe"
	"github.com/haekelise/hausmeister/pkg/vault"
)

var pidFile string

func init() {
	rootCmd.AddCommand(serve)
	serve.PersistentFlags().StringVar(&pidFile, "pidfile", "", "write the server process id to this file")
}

var serve = &cobra.Command{
	Use:   "serve",
	Short: "Start the api server",
	Long:  "This sub-command loads the configuration, initializes the backup repository and starts the api server with all configured probes",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := &config.Config{}
		if err := cfg.GenerateFromConfigDir(configDir); err != nil {
			log.Fatalf("failed to load configuration from %q: %s", configDir, err)
		}

		pidFileHandle := pidfile.New(pidFile)
		if err := pidFileHandle.Acquire(); err != nil {
			log.Fatalf("failed to write pid file to %q: %s", pidFile, err)
		}
		defer func() {
			if err := pidFileHandle.Release(); err != nil {
				log.Errorf("error while cleaning up the pid file: %s", err)
			}
		}()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
		go func() {
			s := <-signals
			log.Infof("received signal %s", s.String())
			cancel()
		}()

		aggregator, err := probe.NewAggregator(cfg)
		if err != nil {
			log.WithError(err).Fatal("failed to build probes from configuration")
		}

		manager := backup.NewManager(backupConfig(cfg.Backup))
		if err := manager.Initialize(ctx); err != nil {
			log.WithError(err).Fatal("failed to initialize backup repository")
		}

		worker := backup.NewWorker(manager)
		go worker.Run(ctx)

		if cfg.Backup.Enabled && cfg.Backup.Schedule != "" {
			scheduler := cron.New()
			if _, err := scheduler.AddFunc(cfg.Backup.Schedule, func() {
				worker.Schedule("scheduled")
			}); err != nil {
				log.WithError(err).Fatalf("invalid backup schedule %q", cfg.Backup.Schedule)
			}
			scheduler.Start()
			defer scheduler.Stop()
			log.Infof("scheduled backups enabled: %s", cfg.Backup.Schedule)
		}

		server := api.NewServer(
			aggregator,
			vault.NewStore(cfg.Vault.DataDir),
			notes.NewStore(cfg.Notes.DataDir),
			buildMailer(cfg.Mail),
			worker,
		)

		if err := server.Run(ctx, cfg.ListenAddr); err != nil {
			log.WithError(err).Fatal("api server stopped with error")
		} else {
			log.Info("api server stopped without error")
		}
	},
}

func backupConfig(cfg *config.Backup) backup.Config {
	return backup.Config{
		Enabled:     cfg.Enabled,
		SourceDir:   cfg.SourceDir,
		BackupDir:   cfg.BackupDir,
		RemoteURL:   cfg.RemoteURL,
		AuthorName:  cfg.AuthorName,
		AuthorEmail: cfg.AuthorEmail,
		SSHKey:      helper.ResolveEnv(cfg.SSHKey),
		SSHKeyFile:  cfg.SSHKeyFile,
		Token:       helper.ResolveEnv(cfg.Token),
	}
}

func buildMailer(cfg *config.Mail) *mail.Mailer {
	if cfg == nil || cfg.Hostname == "" {
		log.Info("no mail configuration found, contact form stays disabled")
		return nil
	}

	port, err := strconv.Atoi(helper.SetDefaultStringIfEmpty(cfg.Port, "587", "port", "mail"))
	if err != nil {
		log.Fatalf("invalid mail port %q", cfg.Port)
	}

	mailer, err := mail.NewMailer(mail.Config{
		Host:     cfg.Hostname,
		Port:     port,
		User:     helper.ResolveEnv(cfg.User),
		Password: helper.ResolveEnv(cfg.Password),
		From:     cfg.From,
		To:       cfg.To,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to set up mailer")
	}
	return mailer
}
