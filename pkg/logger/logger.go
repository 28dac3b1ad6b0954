package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Level  string
	Format string
	Output string
}

func Setup(cfg Config) error {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var output io.Writer = os.Stdout
	if cfg.Output != "" && cfg.Output != "stdout" {
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		output = file
	}

	if strings.ToLower(cfg.Format) == "console" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
			NoColor:    false,
		}
	}

	log.Logger = zerolog.New(output).With().
		Timestamp().
		Caller().
		Logger()

	log.Info().
		Str("level", level.String()).
		Str("format", cfg.Format).
		Str("output", cfg.Output).
		Msg("logger initialized")

	return nil
}

// DatabaseLogger creates a logger for database operations.
func DatabaseLogger(operation string) zerolog.Logger {
	return log.With().
		Str("component", "database").
		Str("operation", operation).
		Logger()
}

// FetcherLogger creates a logger for HTTP fetch operations against one retailer.
func FetcherLogger(retailer, operation string) zerolog.Logger {
	return log.With().
		Str("component", "fetcher").
		Str("retailer", retailer).
		Str("operation", operation).
		Logger()
}

// DiscoveryLogger creates a logger for URL discovery (sitemap/robots/HTML crawl).
func DiscoveryLogger(retailer string) zerolog.Logger {
	return log.With().
		Str("component", "discovery").
		Str("retailer", retailer).
		Logger()
}

// ExtractionLogger creates a logger for per-page product extraction.
func ExtractionLogger(retailer, sourceProductID string) zerolog.Logger {
	return log.With().
		Str("component", "extraction").
		Str("retailer", retailer).
		Str("source_product_id", sourceProductID).
		Logger()
}

// MatchingLogger creates a logger for cross-retailer matching decisions.
func MatchingLogger(vertical string) zerolog.Logger {
	return log.With().
		Str("component", "matching").
		Str("vertical", vertical).
		Logger()
}

// PipelineLogger creates a logger for one ingestion run.
func PipelineLogger(runID, retailer string) zerolog.Logger {
	return log.With().
		Str("component", "pipeline").
		Str("run_id", runID).
		Str("retailer", retailer).
		Logger()
}

// AdapterLogger creates a logger for per-retailer adapter operations.
func AdapterLogger(retailer, operation string) zerolog.Logger {
	return log.With().
		Str("component", "adapter").
		Str("retailer", retailer).
		Str("operation", operation).
		Logger()
}
