// Copyright 2025 Gophora
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	scout "github.com/gophora/scout"
	"github.com/gophora/scout/ai"
	"github.com/gophora/scout/ingestion"
	"github.com/gophora/scout/reconcile"
	"github.com/gophora/scout/scrape"
)

func main() {
	// Best effort; missing .env files are fine
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "scout",
		Usage: "Job posting pipeline: scrape, validate, and recommend opportunities",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory",
				Value:   "scout-data",
				EnvVars: []string{"SCOUT_DB"},
			},
			&cli.StringFlag{
				Name:    "ai-host",
				Usage:   "OpenAI-compatible service host URL for validation and embedding",
				Value:   "http://localhost:11434/v1",
				EnvVars: []string{"SCOUT_AI_HOST"},
			},
			&cli.StringFlag{
				Name:    "validator-model",
				Usage:   "Model used to score and categorize postings",
				Value:   "qwen2.5:3b",
				EnvVars: []string{"SCOUT_VALIDATOR_MODEL"},
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Model used for text embeddings",
				Value:   "embeddinggemma",
				EnvVars: []string{"SCOUT_EMBEDDING_MODEL"},
			},
			&cli.StringFlag{
				Name:    "cross-validator-host",
				Usage:   "Secondary validator host URL (empty disables cross-validation)",
				EnvVars: []string{"SCOUT_CROSS_VALIDATOR_HOST"},
			},
			&cli.StringFlag{
				Name:    "cross-validator-model",
				Usage:   "Secondary validator model",
				EnvVars: []string{"SCOUT_CROSS_VALIDATOR_MODEL"},
			},
			&cli.StringFlag{
				Name:    "critical-flags",
				Usage:   "Comma-separated red flags that veto approval regardless of trust score",
				EnvVars: []string{"SCOUT_CRITICAL_FLAGS"},
			},
			&cli.IntFlag{
				Name:    "trust-threshold",
				Usage:   "Minimum trust score for approval",
				Value:   ingestion.DefaultTrustThreshold,
				EnvVars: []string{"SCOUT_TRUST_THRESHOLD"},
			},
			&cli.StringFlag{
				Name:    "adzuna-app-id",
				Usage:   "Adzuna API application id (empty disables the source)",
				EnvVars: []string{"ADZUNA_APP_ID"},
			},
			&cli.StringFlag{
				Name:    "adzuna-app-key",
				Usage:   "Adzuna API application key",
				EnvVars: []string{"ADZUNA_APP_KEY"},
			},
			&cli.StringFlag{
				Name:    "adzuna-country",
				Usage:   "Adzuna country code",
				Value:   "gb",
				EnvVars: []string{"ADZUNA_COUNTRY"},
			},
			&cli.StringFlag{
				Name:    "adzuna-what",
				Usage:   "Adzuna search terms",
				EnvVars: []string{"ADZUNA_WHAT"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run the pipeline on a schedule until interrupted",
				Action: runCommand,
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:    "interval",
						Usage:   "Time between scheduled pipeline runs",
						Value:   30 * time.Minute,
						EnvVars: []string{"SCOUT_RUN_INTERVAL"},
					},
				},
			},
			{
				Name:   "scrape",
				Usage:  "Run the full pipeline once and exit",
				Action: scrapeCommand,
			},
			{
				Name:   "status",
				Usage:  "Show the last pipeline run",
				Action: statusCommand,
			},
			{
				Name:      "search",
				Usage:     "Semantic search over all verified jobs",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 10,
					},
					&cli.Float64Flag{
						Name:  "min-similarity",
						Usage: "Similarity floor for search results",
						Value: 0.5,
					},
				},
			},
			{
				Name:   "recommend",
				Usage:  "Show immediate jobs plus personalized skill-based matches",
				Action: recommendCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "user",
						Usage: "User id for personalized ranking (omit for immediate jobs only)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results per list",
						Value: 10,
					},
				},
			},
			{
				Name:   "trending",
				Usage:  "Show jobs ranked by recent views and applications",
				Action: trendingCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 10,
					},
				},
			},
			{
				Name:   "reconcile",
				Usage:  "Repair immediate and skill-based placements from the verified collection",
				Action: reconcileCommand,
				Flags:  maintenanceFlags(),
			},
			{
				Name:   "reembed",
				Usage:  "Recompute embeddings for all verified jobs",
				Action: reembedCommand,
				Flags:  maintenanceFlags(),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func maintenanceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "batch-size",
			Usage: "Number of jobs to process in each batch",
			Value: 100,
		},
		&cli.IntFlag{
			Name:  "report-interval",
			Usage: "Report progress every N jobs",
			Value: 100,
		},
		&cli.IntFlag{
			Name:  "max-retries",
			Usage: "Maximum retry attempts for failed operations",
			Value: 3,
		},
		&cli.DurationFlag{
			Name:  "retry-delay",
			Usage: "Base delay for exponential backoff",
			Value: 1 * time.Second,
		},
	}
}

// buildSystem assembles a System from the global flags.
func buildSystem(c *cli.Context, adapters ...scrape.SourceAdapter) (*scout.System, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("ai-host")),
		ai.WithValidatorModel(c.String("validator-model")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if host := c.String("cross-validator-host"); host != "" {
		aiConfig = ai.NewConfig(
			ai.WithHost(c.String("ai-host")),
			ai.WithValidatorModel(c.String("validator-model")),
			ai.WithEmbeddingModel(c.String("embedding-model")),
			ai.WithCrossValidator(host, c.String("cross-validator-model")),
		)
	}
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	policy := ingestion.DefaultApprovalPolicy()
	policy.TrustThreshold = c.Int("trust-threshold")
	if raw := c.String("critical-flags"); raw != "" {
		flags := []string{}
		for _, f := range strings.Split(raw, ",") {
			if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
				flags = append(flags, f)
			}
		}
		policy.CriticalFlags = flags
	}

	opts := []scout.SystemOption{
		scout.WithAIConfig(aiConfig),
		scout.WithApprovalPolicy(policy),
	}
	if c.IsSet("min-similarity") {
		opts = append(opts, scout.WithMinSimilarity(float32(c.Float64("min-similarity"))))
	}
	if c.IsSet("interval") {
		opts = append(opts, scout.WithRunInterval(c.Duration("interval")))
	}
	opts = append(opts, scout.WithAdapters(adapters...))

	return scout.NewSystem(c.String("db"), opts...)
}

// sourceAdapters builds the scrape sources enabled by the flags.
func sourceAdapters(c *cli.Context) []scrape.SourceAdapter {
	adapters := []scrape.SourceAdapter{scrape.NewRemotiveAdapter()}
	if c.String("adzuna-app-id") != "" {
		adapters = append(adapters, scrape.NewAdzunaAdapter(
			c.String("adzuna-app-id"),
			c.String("adzuna-app-key"),
			c.String("adzuna-country"),
			c.String("adzuna-what"),
		))
	}
	return adapters
}

func runCommand(c *cli.Context) error {
	system, err := buildSystem(c, sourceAdapters(c)...)
	if err != nil {
		return err
	}
	defer system.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := system.Scheduler().Start(ctx); err != nil {
		return err
	}

	// First run immediately rather than waiting out the first interval
	go func() {
		if err := system.RunPipeline(ctx); err != nil {
			slog.Error("initial pipeline run failed", "err", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("shutting down", "signal", sig.String())

	cancel()
	system.Scheduler().Stop()
	return nil
}

func scrapeCommand(c *cli.Context) error {
	system, err := buildSystem(c, sourceAdapters(c)...)
	if err != nil {
		return err
	}
	defer system.Close()

	if err := system.RunPipeline(context.Background()); err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}
	return statusOf(system)
}

func statusCommand(c *cli.Context) error {
	system, err := buildSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()
	return statusOf(system)
}

func statusOf(system *scout.System) error {
	status, err := system.Scheduler().Status(context.Background())
	if err != nil {
		return err
	}

	if status.LastStart.IsZero() {
		fmt.Println("No pipeline runs recorded")
		return nil
	}

	fmt.Printf("In progress:  %v\n", status.InProgress)
	fmt.Printf("Last start:   %s\n", status.LastStart.Format(time.RFC3339))
	if !status.LastEnd.IsZero() {
		fmt.Printf("Last end:     %s\n", status.LastEnd.Format(time.RFC3339))
	}
	fmt.Printf("Scraped:      %d (%d new)\n", status.LastScraped, status.LastNew)
	fmt.Printf("Approved:     %d (%d immediate, %d skill-based)\n",
		status.LastApproved, status.LastImmediate, status.LastSkillBased)
	if status.LastPartial {
		fmt.Println("Partial:      run paused early (quota exhausted)")
	}
	if status.LastError != "" {
		fmt.Printf("Last error:   %s\n", status.LastError)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("search query is required")
	}

	system, err := buildSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	results, err := system.Engine().Search(context.Background(), query, c.Int("limit"))
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No matching jobs")
		return nil
	}
	for _, result := range results {
		job := result.Job
		fmt.Printf("%.2f  [%3d] %s — %s (%s)\n",
			result.Score, job.Validation.TrustScore, job.Title, job.Company, job.Source)
		if job.URL != "" {
			fmt.Printf("      %s\n", job.URL)
		}
	}
	return nil
}

func recommendCommand(c *cli.Context) error {
	system, err := buildSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	ctx := context.Background()
	limit := c.Int("limit")
	engine := system.Engine()

	immediate, err := engine.ImmediateJobs(ctx, limit)
	if err != nil {
		return err
	}
	fmt.Printf("Immediate jobs (%d):\n", len(immediate))
	for _, job := range immediate {
		fmt.Printf("  [%3d] %s — %s (%s)\n",
			job.Validation.TrustScore, job.Title, job.Company, job.Source)
	}

	userID := c.String("user")
	if userID == "" {
		return nil
	}

	matches, err := engine.ForUser(ctx, userID, limit)
	if err != nil {
		return err
	}
	fmt.Printf("\nSkill-based matches for %s (%d):\n", userID, len(matches))
	for _, match := range matches {
		job := match.Job
		fmt.Printf("  %.2f  [%3d] %s — %s (%s)\n",
			match.Score, job.Validation.TrustScore, job.Title, job.Company, job.Source)
	}
	return nil
}

func trendingCommand(c *cli.Context) error {
	system, err := buildSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	results, err := system.Engine().Trending(context.Background(), c.Int("limit"))
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No engagement recorded in the trending window")
		return nil
	}
	for _, result := range results {
		fmt.Printf("%4d  %s — %s (%d views, %d applications)\n",
			result.Engagement(), result.Job.Title, result.Job.Company,
			result.Views, result.Applications)
	}
	return nil
}

func reconcileCommand(c *cli.Context) error {
	system, err := buildSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	r, err := system.NewReconciler(maintenanceConfig(c), os.Stderr)
	if err != nil {
		return err
	}
	if _, err := r.Run(context.Background()); err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	system, err := buildSystem(c)
	if err != nil {
		return err
	}
	defer system.Close()

	r, err := system.NewReembedder(maintenanceConfig(c), os.Stderr)
	if err != nil {
		return err
	}
	if err := r.Run(context.Background()); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func maintenanceConfig(c *cli.Context) *reconcile.Config {
	return &reconcile.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
