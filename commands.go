package main

// commands.go the command line: serve (default), seed and contact cleanup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aTrapDeer/portfolio-site/internal/asset"
	"github.com/aTrapDeer/portfolio-site/internal/config"
	"github.com/aTrapDeer/portfolio-site/internal/contact"
	"github.com/aTrapDeer/portfolio-site/internal/content"
	"github.com/aTrapDeer/portfolio-site/internal/mail"
	"github.com/aTrapDeer/portfolio-site/internal/store"
	"github.com/aTrapDeer/portfolio-site/internal/store/local"
	"github.com/aTrapDeer/portfolio-site/internal/store/sanity"
)

var (
	cfgFile   string
	appConfig *config.Config
	logger    *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Portfolio site backend",
	Long: `Serves page content from the content store, accepts contact form
submissions and protects the studio. Runs the server when no command is given.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		appConfig = cfg
		logger = newLogger(cfg)
		slog.SetDefault(logger)
		if cfg.File != "" {
			logger.Info("Using config file", "file", cfg.File)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var seedWatch bool

var seedCmd = &cobra.Command{
	Use:   "seed <file.yaml>",
	Short: "Load documents from a YAML file into the content store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stores, err := openStores(appConfig)
		if err != nil {
			return err
		}
		defer stores.Close()

		n, err := seedFile(cmd.Context(), stores.write, args[0])
		if err != nil {
			return err
		}
		logger.Info("Seeded documents", "file", args[0], "count", n)

		if seedWatch {
			return watchSeedFile(cmd.Context(), stores.write, args[0])
		}
		return nil
	},
}

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Inspect or clear stored contact messages",
}

var contactsCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print how many contact messages are stored",
	RunE: func(cmd *cobra.Command, args []string) error {
		stores, err := openStores(appConfig)
		if err != nil {
			return err
		}
		defer stores.Close()

		n, err := contact.Count(cmd.Context(), stores.write)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d contact messages\n", n)
		return nil
	},
}

var purgeConfirmed bool

var contactsPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every stored contact message",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !purgeConfirmed {
			return errors.New("refusing to delete contact messages without --yes")
		}
		stores, err := openStores(appConfig)
		if err != nil {
			return err
		}
		defer stores.Close()

		n, err := contact.Purge(cmd.Context(), stores.write)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d contact messages\n", n)
		return nil
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	seedCmd.Flags().BoolVar(&seedWatch, "watch", false, "reseed whenever the file changes")
	contactsPurgeCmd.Flags().BoolVar(&purgeConfirmed, "yes", false, "confirm deletion")

	contactsCmd.AddCommand(contactsCountCmd, contactsPurgeCmd)
	rootCmd.AddCommand(serveCmd, seedCmd, contactsCmd)
}

// stores holds the two client modes: read is cached and eventually
// consistent, write reads and writes through.
type stores struct {
	read  store.Client
	write store.Client
	cache *store.Cached
	close func() error
}

func (s *stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

func openStores(cfg *config.Config) (*stores, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		db, err := local.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		cached := store.NewCached(db, cfg.Revalidate)
		return &stores{read: cached, write: db, cache: cached, close: db.Close}, nil
	case "sanity", "":
		if cfg.Sanity.ProjectID == "" || cfg.Sanity.Dataset == "" {
			logger.Warn("Content store not configured, pages will render empty", "projectId", cfg.Sanity.ProjectID, "dataset", cfg.Sanity.Dataset)
		}
		delivery := sanity.New(sanity.Config{
			ProjectID:  cfg.Sanity.ProjectID,
			Dataset:    cfg.Sanity.Dataset,
			APIVersion: cfg.Sanity.APIVersion,
			UseCDN:     true,
		})
		write := sanity.New(sanity.Config{
			ProjectID:  cfg.Sanity.ProjectID,
			Dataset:    cfg.Sanity.Dataset,
			APIVersion: cfg.Sanity.APIVersion,
			Token:      cfg.Sanity.Token,
		})
		cached := store.NewCached(delivery, cfg.Revalidate)
		return &stores{read: cached, write: write, cache: cached}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func newMailer(cfg *config.Config) mail.Sender {
	if cfg.Mail.ResendAPIKey == "" {
		if cfg.IsDevelopment() {
			return mail.LogSender{Logger: logger}
		}
		logger.Warn("RESEND_API_KEY is not set, contact notifications will fail")
	}
	return mail.NewResendSender(cfg.Mail.ResendAPIKey)
}

func newServer(cfg *config.Config, st *stores, mailer mail.Sender, log *slog.Logger) *server {
	images := asset.NewBuilder(cfg.Sanity.ProjectID, cfg.Sanity.Dataset)
	return &server{
		cfg:     cfg,
		log:     log,
		content: content.New(st.read, images, log),
		contact: &contact.Pipeline{
			Store:             st.write,
			Mailer:            mailer,
			From:              cfg.Mail.From,
			FallbackRecipient: cfg.Mail.FallbackRecipient,
			Logger:            log,
		},
		admin: st.write,
		cache: st.cache,
		http:  &http.Client{Timeout: 10 * time.Second},
		now:   time.Now,
	}
}

func runServe(ctx context.Context) error {
	stores, err := openStores(appConfig)
	if err != nil {
		return err
	}
	defer stores.Close()

	srv := newServer(appConfig, stores, newMailer(appConfig), logger)
	httpServer := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Portfolio backend running", "port", appConfig.Port, "env", appConfig.Env, "store", appConfig.Store.Driver)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
