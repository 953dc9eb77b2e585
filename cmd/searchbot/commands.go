package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/tjfontaine/searchbot/internal/auth"
	"github.com/tjfontaine/searchbot/internal/chatbot"
	"github.com/tjfontaine/searchbot/internal/config"
	replcli "github.com/tjfontaine/searchbot/internal/cli"
	"github.com/tjfontaine/searchbot/internal/server"
	"github.com/tjfontaine/searchbot/internal/telemetry"
)

const shutdownTimeout = 30 * time.Second

// setup loads configuration and builds the bot with tracing installed.
// The returned cleanup flushes traces and closes the store.
func setup(cmd *cli.Command, logger *slog.Logger) (*config.Config, *chatbot.Bot, func(), error) {
	cfg, err := config.LoadFile(cmd.String("config"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	shutdownTracer, err := telemetry.InitTracer(cfg.Telemetry, os.Stderr, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("initialize tracer: %w", err)
	}

	bot, err := chatbot.Build(cfg, logger)
	if err != nil {
		_ = shutdownTracer(context.Background())
		return nil, nil, nil, err
	}

	cleanup := func() {
		if err := bot.Close(); err != nil {
			logger.Error("failed to close store", slog.String("error", err.Error()))
		}
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}
	return cfg, bot, cleanup, nil
}

func chatCommand() *cli.Command {
	return &cli.Command{
		Name:  "chat",
		Usage: "ask questions interactively (type exit or quit to leave)",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger := newLogger(slog.LevelWarn)

			_, bot, cleanup, err := setup(cmd, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			// Unblock the pending read on interrupt.
			go func() {
				<-ctx.Done()
				_ = os.Stdin.Close()
			}()

			err = replcli.New(bot, os.Stdin, os.Stdout).Run(ctx)
			if ctx.Err() != nil {
				// Interrupted at the prompt
				return nil
			}
			return err
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve the chat page and JSON API",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "port",
				Usage: "listen port (overrides server.port)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger := newLogger(slog.LevelInfo)

			cfg, bot, cleanup, err := setup(cmd, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			if port := cmd.Int("port"); port > 0 {
				cfg.Server.Port = int(port)
			}

			srv := server.New(cfg.Server, logger)
			server.NewHandlers(bot, bot.Store(), logger).
				Register(srv.Router, auth.NewAuthenticator(cfg.Server.APIKeys))

			g, gctx := errgroup.WithContext(ctx)
			g.Go(srv.Start)
			g.Go(func() error {
				<-gctx.Done()
				logger.Info("shutdown signal received")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})

			if err := g.Wait(); err != nil {
				return err
			}
			logger.Info("server shutdown complete")
			return nil
		},
	}
}

func keygenCommand() *cli.Command {
	return &cli.Command{
		Name:      "keygen",
		Usage:     "print the SHA-256 hash of an API key for config.yaml",
		ArgsUsage: "<api-key>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			apiKey := cmd.Args().First()
			if apiKey == "" {
				return cli.Exit("usage: searchbot keygen <api-key>", 1)
			}

			keyHash := auth.HashAPIKey(apiKey)
			w := cmd.Root().Writer
			if w == nil {
				w = os.Stdout
			}

			fmt.Fprintf(w, "SHA-256 Hash: %s\n", keyHash)
			fmt.Fprintln(w, "\nAdd this to your config.yaml:")
			fmt.Fprintf(w, "server:\n")
			fmt.Fprintf(w, "  api_keys:\n")
			fmt.Fprintf(w, "    - key_hash: \"%s\"\n", keyHash)
			fmt.Fprintf(w, "      description: \"Generated key\"\n")
			return nil
		},
	}
}
