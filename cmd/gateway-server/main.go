package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/gateway/internal/config"
	"github.com/ehr/gateway/internal/domain/scheduling"
	"github.com/ehr/gateway/internal/platform/codec"
	"github.com/ehr/gateway/internal/platform/hl7v2"
	"github.com/ehr/gateway/internal/platform/middleware"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "gateway-server",
		Short:        "HL7v2 scheduling to FHIR gateway",
		SilenceUsage: true,
	}

	root.AddCommand(serveCmd())
	root.AddCommand(transformCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and, when MLLP_ADDR is set, the MLLP listener",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func transformCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Translate one message read from --file or stdin and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			source, _ := cmd.Flags().GetString("source")
			target, _ := cmd.Flags().GetString("target")
			compact, _ := cmd.Flags().GetBool("compact")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("open message file: %w", err)
				}
				defer f.Close()
				in = f
			}

			// Stdout carries the JSON result, so logs go to stderr.
			logger := newLogger(cfg, cmd.ErrOrStderr())
			return runTransform(newEngine(cfg, logger), in, cmd.OutOrStdout(), source, target, compact)
		},
	}
	cmd.Flags().String("file", "", "path to the message (default: stdin)")
	cmd.Flags().String("source", scheduling.FormatHL7, "source format")
	cmd.Flags().String("target", scheduling.FormatFHIR, "target format")
	cmd.Flags().Bool("compact", false, "write the result on a single line")
	return cmd
}

func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Logger()
	}
	return zerolog.New(out).With().Timestamp().Logger()
}

func newEngine(cfg *config.Config, logger zerolog.Logger) *scheduling.Engine {
	return scheduling.NewEngine(scheduling.Settings{
		Version:          cfg.Version,
		SupportedFormats: cfg.SupportedFormats(),
		StrictValidation: cfg.StrictValidation,
	}, logger)
}

func runTransform(engine *scheduling.Engine, in io.Reader, out io.Writer, source, target string, compact bool) error {
	raw, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read message: %w", err)
	}

	res, err := engine.Transform(string(raw), source, target)
	if err != nil {
		return err
	}

	resp := scheduling.NewTransformResponse(res, time.Now())
	var data []byte
	if compact {
		data, err = codec.Marshal(resp)
		data = append(data, '\n')
	} else {
		data, err = codec.MarshalIndent(resp)
	}
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = out.Write(data)
	return err
}

// newServer wires the echo instance: global middleware, the gateway API at
// the root and the tokenizer under /api/v1.
func newServer(cfg *config.Config, engine *scheduling.Engine, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = codec.JSONSerializer{}

	// Global middleware. The timeout runs the rest of the chain in its own
	// goroutine, so it sits outside Recovery.
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Content-Type", middleware.RequestIDHeader},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))

	scheduling.NewHandler(engine).RegisterRoutes(e.Group(""))

	apiV1 := e.Group("/api/v1")
	hl7v2.NewHandler().RegisterRoutes(apiV1)

	return e
}

func runServer() error {
	// Config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Logger
	logger := newLogger(cfg, os.Stdout)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	engine := newEngine(cfg, logger)
	e := newServer(cfg, engine, logger)

	// HL7v2 MLLP TCP listener (optional, started when MLLP_ADDR is set)
	if cfg.MLLPAddr != "" {
		mllpServer := hl7v2.NewMLLPServer(cfg.MLLPAddr, scheduling.MLLPHandler(engine, logger), logger)
		if err := mllpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("MLLP server failed")
		}
		defer mllpServer.Stop()
		logger.Info().Str("addr", mllpServer.Addr()).Msg("MLLP server started")
	}

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().
			Str("addr", addr).
			Str("app", cfg.AppName).
			Str("version", cfg.Version).
			Bool("strict_validation", cfg.StrictValidation).
			Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
