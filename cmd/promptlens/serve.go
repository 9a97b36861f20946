package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/HerbHall/promptlens/internal/analysis"
	"github.com/HerbHall/promptlens/internal/auth"
	"github.com/HerbHall/promptlens/internal/config"
	"github.com/HerbHall/promptlens/internal/llm"
	"github.com/HerbHall/promptlens/internal/ratelimit"
	"github.com/HerbHall/promptlens/internal/server"
	"github.com/HerbHall/promptlens/internal/tokenizer"
	"github.com/HerbHall/promptlens/internal/version"
	"github.com/HerbHall/promptlens/internal/ws"
	pkgllm "github.com/HerbHall/promptlens/pkg/llm"
)

const (
	shutdownTimeout  = 10 * time.Second
	readinessTimeout = 5 * time.Second
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket analysis API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return runServe(cmd.Context(), cmd.ErrOrStderr(), cfg, logger)
		},
	}
}

// engine is the analysis stack shared by the server and the one-shot commands.
type engine struct {
	provider pkgllm.Provider
	pool     *tokenizer.Pool
	analyzer *analysis.Analyzer
}

func newEngine(cfg *config.Config, logger *zap.Logger) (*engine, error) {
	provider, err := llm.NewProvider(cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}

	pool := tokenizer.NewPool(cfg.Analysis.Encoding, logger.Named("tokenizer"))
	client := analysis.NewProviderClient(provider, cfg.Analysis, logger.Named("client"))
	analyzer, err := analysis.New(cfg.Analysis, pool, client, logger.Named("analysis"))
	if err != nil {
		pool.Close()
		return nil, err
	}
	return &engine{provider: provider, pool: pool, analyzer: analyzer}, nil
}

func runServe(parent context.Context, banner io.Writer, cfg *config.Config, logger *zap.Logger) error {
	eng, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer eng.pool.Close()

	logger.Info("analysis engine ready",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", cfg.LLM.Model()),
		zap.String("encoding", eng.pool.Encoding()),
		zap.Int("optimal_token_len", cfg.Analysis.OptimalTokenLen),
		zap.Int("max_total_tokens", cfg.Analysis.MaxTotalTokens),
	)

	limiter := ratelimit.New(cfg.RateLimit)
	verifier := auth.NewVerifier(cfg.Auth)
	callers, err := server.NewCallerKeys(cfg.Server.TrustedProxies)
	if err != nil {
		return err
	}
	wsHandler := ws.NewHandler(eng.analyzer, limiter, verifier, cfg.CORS, callers, logger.Named("ws"))

	srv := server.New(cfg.Server, cfg.CORS, eng.analyzer, limiter, verifier, logger,
		readiness(eng.provider), wsHandler)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return limiter.Run(gctx) })
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown requested")

		// Hijacked WebSocket connections are not closed by http.Server.Shutdown.
		wsHandler.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	fmt.Fprintf(banner, "\n  %s PromptLens %s listening on http://%s\n\n",
		successIcon, version.Short(), cfg.Server.Addr())

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// readiness reports the provider's heartbeat when it has one.
func readiness(p pkgllm.Provider) server.ReadinessChecker {
	hr, ok := p.(pkgllm.HealthReporter)
	if !ok {
		return nil
	}
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
		defer cancel()
		if err := hr.Heartbeat(ctx); err != nil {
			return fmt.Errorf("llm provider: %w", err)
		}
		return nil
	}
}
