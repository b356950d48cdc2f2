// Command dnogen produces the Do-Not-Originate artifact set from the
// LERG block feed: it walks every requested NPA, aggregates the
// assigned blocks, and writes the assigned, unassigned, A-block and
// summary CSVs. Completed and failed runs are reported by email when
// SendGrid is configured.
//
// Configuration comes from the environment (see internal/config); the
// flags below override individual settings for one invocation:
//
//	dnogen                     # full run, bulk strategy, artifacts in .
//	dnogen --legacy            # two-step exchange walk instead of bulk
//	dnogen --areas 201,212     # restrict the run to a few NPAs
//	dnogen --out /var/dno      # artifact directory
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"dnogen/internal/config"
	"dnogen/pkg/cache"
	"dnogen/pkg/client"
	"dnogen/pkg/fetch"
	"dnogen/pkg/lerg"
	"dnogen/pkg/logging"
	"dnogen/pkg/ratelimit"
	"dnogen/pkg/report"
	"dnogen/pkg/runner"
)

var (
	legacyFlag = flag.Bool("legacy", false, "use the two-step exchange walk instead of the bulk fetch")
	areasFlag  = flag.String("areas", "", "comma-separated NPA list (default: the full plan)")
	outFlag    = flag.String("out", "", "artifact output directory (overrides DNO_OUTPUT_DIR)")
	debugFlag  = flag.Bool("debug", false, "enable debug logging")
)

func main() {
	flag.Parse()

	// A missing .env file is fine; real environment variables win
	// over anything the file sets.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *legacyFlag {
		cfg.BulkFetch = false
	}
	if *outFlag != "" {
		cfg.OutputDir = *outFlag
	}

	level := logging.LevelInfo
	if cfg.Debug || *debugFlag {
		level = logging.LevelDebug
	}
	logger := logging.Setup(logging.Config{
		Level:  level,
		Pretty: true,
		Output: os.Stderr,
	})

	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	areas, err := parseAreas(*areasFlag)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clientCfg := client.DefaultConfig(cfg.APIToken)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.RateLimit {
		clientCfg.Pacer = ratelimit.New(ratelimit.DefaultConfig(), logging.NewLogger("pacer"))
		logger.Info().Msg("request pacing enabled")
	}

	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		pingErr := redisClient.Ping(pingCtx).Err()
		cancel()
		if pingErr != nil {
			// The cache only saves requests on reruns; a dead
			// Redis must not take the whole run with it.
			logger.Warn().Err(pingErr).Str("addr", cfg.RedisAddr).
				Msg("page cache unavailable, running without it")
			redisClient.Close()
		} else {
			defer redisClient.Close()
			clientCfg.Pages = cache.NewManager(redisClient, cfg.CacheTTL)
			logger.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.CacheTTL).
				Msg("page cache enabled")
		}
	}

	lergClient, err := client.New(clientCfg)
	if err != nil {
		return fmt.Errorf("client setup: %w", err)
	}

	var fetcher fetch.Fetcher = fetch.NewBulk(lergClient)
	if !cfg.BulkFetch {
		fetcher = fetch.NewLegacy(lergClient)
	}

	r, err := runner.New(runner.Config{Fetcher: fetcher, Counter: lergClient})
	if err != nil {
		return fmt.Errorf("runner setup: %w", err)
	}

	if cfg.MetricsAddr != "" {
		startMetricsServer(cfg.MetricsAddr, r, logger)
	}

	notifier := report.NewNotifier(report.EmailConfig{
		APIKey:  cfg.SendGridAPIKey,
		From:    cfg.SendGridFromEmail,
		To:      cfg.SendGridToEmail,
		Enabled: cfg.EmailNotifications,
	})

	logger.Info().
		Str("strategy", fetcher.Name()).
		Int("areas", len(areas)).
		Str("out", cfg.OutputDir).
		Msg("starting DNO generation")

	result, err := r.Run(ctx, areas)
	if err != nil {
		var abort *runner.AbortError
		if errors.As(err, &abort) {
			notifier.NotifyFailure(abort)
		}
		return err
	}

	art, err := report.NewWriter(cfg.OutputDir).WriteAll(result, fetchTraceback(ctx, cfg, logger))
	if err != nil {
		return fmt.Errorf("write artifacts: %w", err)
	}

	notifier.NotifySuccess(result.Stats, art)

	logger.Info().
		Int("assigned", art.AssignedRows).
		Int("unassigned", art.OutputRows).
		Str("dir", art.Dir).
		Msg("DNO generation completed")
	return nil
}

// parseAreas expands the --areas flag. An empty flag means the full
// numbering plan.
func parseAreas(s string) ([]string, error) {
	if s == "" {
		return lerg.AllAreas(), nil
	}
	var areas []string
	for _, part := range strings.Split(s, ",") {
		area := strings.TrimSpace(part)
		if area == "" {
			continue
		}
		if !lerg.ValidArea(area) {
			return nil, fmt.Errorf("invalid area code %q", area)
		}
		areas = append(areas, area)
	}
	if len(areas) == 0 {
		return nil, fmt.Errorf("no area codes in %q", s)
	}
	return areas, nil
}

// fetchTraceback pulls the fraud-reported numbers that ride along in
// the unassigned artifact. The feed is optional and never fails a
// finished run; on any problem the artifact is written without it.
func fetchTraceback(ctx context.Context, cfg *config.Config, logger zerolog.Logger) []report.TracebackRecord {
	tbCfg := report.TracebackConfig{
		Project:         cfg.BigQueryProject,
		Table:           cfg.BigQueryTable,
		CredentialsFile: cfg.GoogleCredentials,
	}
	if !tbCfg.Enabled() {
		logger.Debug().Msg("traceback feed not configured")
		return nil
	}

	source, err := report.NewBigQueryTraceback(ctx, tbCfg)
	if err != nil {
		logger.Warn().Err(err).Msg("traceback feed unavailable")
		return nil
	}
	records, err := source.Fetch(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("traceback fetch failed")
		return nil
	}
	return records
}

// startMetricsServer exposes /metrics and /health for the duration of
// the run. Legacy runs take hours; this is how operators watch them.
// The listener dies with the process, nothing to drain.
func startMetricsServer(addr string, r *runner.Runner, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthHandler(r))

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics listener started")
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Warn().Err(err).Msg("metrics listener stopped")
		}
	}()
}

// healthHandler reports the run state, with the area the state applies
// to when there is one ("fetching 201").
func healthHandler(r *runner.Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		state, area := r.State()
		w.WriteHeader(http.StatusOK)
		if area != "" {
			fmt.Fprintf(w, "%s %s", state, area)
			return
		}
		fmt.Fprint(w, string(state))
	}
}
