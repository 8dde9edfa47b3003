package main

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

	"github.com/sagarc03/bluelist"
	"github.com/sagarc03/bluelist/config"
	"github.com/sagarc03/bluelist/database"
	bluelisthttp "github.com/sagarc03/bluelist/http"
	"github.com/sagarc03/bluelist/keybackend"
	"github.com/sagarc03/bluelist/uploads"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP gateway",
	Long: `Start the bluelist HTTP gateway.

The signing route is enabled when signing.bucket is set; the secret for
signing.access_key is resolved from the configured keys.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 5000, "HTTP server port")
	serveCmd.Flags().String("context-root", "", "route prefix (default: /v1/apps/bluelist)")
	serveCmd.Flags().String("static-dir", "", "directory served under {context-root}/public")
	serveCmd.Flags().Duration("backend-timeout", 0, "max wait on the backend per request, 0 disables (default: 30s)")
	serveCmd.Flags().String("bucket", "", "S3 bucket for upload policies")
	serveCmd.Flags().String("access-key", "", "access key used to sign upload policies")
	serveCmd.Flags().String("keys-file", "", "JSON or YAML file holding access/secret key pairs")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	store, closeStore, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer closeStore()
	slog.Info("connected to document store", "type", cfg.Database.Type)

	var signer bluelisthttp.Signer
	if cfg.Signing.Bucket != "" {
		policySigner, signerErr := newSigner(ctx, cfg)
		if signerErr != nil {
			return signerErr
		}
		signer = policySigner
	} else {
		slog.Warn("signing.bucket not set, signing route disabled")
	}

	handler := bluelisthttp.NewHandler(&bluelisthttp.HandlerConfig{
		ContextRoot:    cfg.Server.ContextRoot,
		StaticDir:      cfg.Server.StaticDir,
		BackendTimeout: cfg.Server.BackendTimeout,
		MaxBodySize:    cfg.Server.MaxBodySize,
		CORS:           cfg.CORS,
		Logger:         slog.Default(),
	}, store, signer)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	server := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server", "addr", addr, "context_root", handler.ContextRoot())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// newSigner resolves the signing secret and, when asked, checks the bucket
// with the same key pair before serving.
func newSigner(ctx context.Context, cfg *config.Config) (*bluelist.PolicySigner, error) {
	secrets, err := keybackend.NewSecretStore(cfg.Keys)
	if err != nil {
		return nil, fmt.Errorf("load signing keys: %w", err)
	}

	secret, err := secrets.Lookup(cfg.Signing.AccessKey)
	if err != nil {
		return nil, fmt.Errorf("resolve signing secret: %w", err)
	}

	signer, err := bluelist.NewPolicySigner(cfg.Signing.Bucket, cfg.Signing.AccessKey, secrets)
	if err != nil {
		return nil, err
	}

	if cfg.Signing.VerifyBucket {
		client, clientErr := uploads.NewClient(ctx, uploads.Config{
			Bucket:    cfg.Signing.Bucket,
			Region:    cfg.Signing.Region,
			Endpoint:  cfg.Signing.Endpoint,
			AccessKey: cfg.Signing.AccessKey,
			SecretKey: secret,
		})
		if clientErr != nil {
			return nil, fmt.Errorf("create s3 client: %w", clientErr)
		}

		if err = uploads.NewBucketProbe(client, cfg.Signing.Bucket).Verify(ctx); err != nil {
			return nil, err
		}
		slog.Info("upload bucket verified", "bucket", cfg.Signing.Bucket)
	}

	slog.Info("signing route enabled", "bucket", cfg.Signing.Bucket, "access_key", cfg.Signing.AccessKey)
	return signer, nil
}
