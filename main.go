package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/patrickkostjens/firefly-iii/internal/cache"
	"github.com/patrickkostjens/firefly-iii/internal/models"
	"github.com/patrickkostjens/firefly-iii/internal/queue"
	"github.com/patrickkostjens/firefly-iii/internal/rules"
	"github.com/patrickkostjens/firefly-iii/internal/types"
)

func main() {
	// A missing .env file is fine, the environment itself may be configured.
	_ = godotenv.Load()

	// Log format can be explicitly set.
	// If it is not set, it defaults to JSON.
	logFormat, ok := os.LookupEnv("LOG_FORMAT")
	output := io.Writer(os.Stdout)
	if ok && logFormat == "human" {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("LOG_LEVEL") == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()

	// Create data directory
	dataDir := filepath.Join(".", "data")
	err := os.MkdirAll(dataDir, os.ModePerm)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	// Connect to the database
	err = models.Connect(filepath.Join(dataDir, "gorm.db"))
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	if err := cache.RegisterMetrics(); err != nil {
		log.Fatal().Msg(err.Error())
	}

	if err := rules.RegisterMetrics(); err != nil {
		log.Fatal().Msg(err.Error())
	}

	// The process has no other HTTP surface, so the metrics get their own
	// listener. Without METRICS_ADDR they stay unexposed.
	if addr, ok := os.LookupEnv("METRICS_ADDR"); ok {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())

		go func() {
			log.Info().Str("addr", addr).Msg("serving metrics")
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Error().Msg(err.Error())
			}
		}()
	}

	// Without a broker configured there is nothing to consume, so the
	// process only sets up the database and exits.
	amqpURL, ok := os.LookupEnv("AMQP_URL")
	if !ok {
		log.Info().Msg("AMQP_URL not set, not consuming rule run messages")
		return
	}

	client, err := queue.NewClient(amqpURL, "firefly", "rule-runs")
	if err != nil {
		log.Fatal().Msg(err.Error())
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// With RULE_RUN set, the process publishes a single rule run request
	// for that group instead of consuming. The window covers everything
	// from RULE_RUN_START (or the Unix epoch) up to today.
	if groupID, ok := os.LookupEnv("RULE_RUN"); ok {
		id, err := uuid.Parse(groupID)
		if err != nil {
			log.Fatal().Str("RULE_RUN", groupID).Msg(err.Error())
		}

		start := types.NewDate(1970, 1, 1)
		if s, ok := os.LookupEnv("RULE_RUN_START"); ok {
			start, err = types.ParseDate(s)
			if err != nil {
				log.Fatal().Str("RULE_RUN_START", s).Msg(err.Error())
			}
		}

		window, err := types.NewRange(start, types.DateOf(time.Now()))
		if err != nil {
			log.Fatal().Msg(err.Error())
		}

		err = client.PublishRuleRun(ctx, queue.NewRuleRunMessage(id, nil, window))
		if err != nil {
			log.Fatal().Msg(err.Error())
		}
		return
	}

	worker := queue.NewWorker(models.DB)

	log.Info().Msg("consuming rule run messages")
	err = client.Consume(ctx, worker.HandleRuleRun)
	if err != nil && ctx.Err() == nil {
		log.Fatal().Msg(err.Error())
	}
}
