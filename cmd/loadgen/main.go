package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/AlekseyZapadovnikov/issue-tracker/internal/client"
	"github.com/AlekseyZapadovnikov/issue-tracker/internal/models"
)

type runConfig struct {
	BaseURL          string
	Users            int
	Labels           int
	Milestones       int
	Issues           int
	CommentsPerIssue int
	Concurrency      int
	Duration         time.Duration
	RequestTimeout   time.Duration
	HealthTimeout    time.Duration
	ReportPath       string
	DatasetPrefix    string
	CleanupDSN       string
}

type datasetInfo struct {
	Prefix           string  `json:"prefix"`
	Users            int     `json:"users"`
	Labels           int     `json:"labels"`
	Milestones       int     `json:"milestones"`
	Issues           int     `json:"issues"`
	CommentsPerIssue int     `json:"comments_per_issue"`
	IssueIDs         []int64 `json:"-"`
}

type latencySummary struct {
	Samples   int     `json:"samples"`
	AverageMs float64 `json:"average_ms"`
	P50Ms     float64 `json:"p50_ms"`
	P95Ms     float64 `json:"p95_ms"`
	P99Ms     float64 `json:"p99_ms"`
	MaxMs     float64 `json:"max_ms"`
}

type totalsSummary struct {
	Requested int `json:"requested"`
	Succeeded int `json:"succeeded"`
	Partial   int `json:"partial"`
	Failed    int `json:"failed"`
}

type loadSummary struct {
	GeneratedAt time.Time      `json:"generated_at"`
	BaseURL     string         `json:"base_url"`
	DurationSec float64        `json:"duration_sec"`
	Concurrency int            `json:"concurrency"`
	ActualRPS   float64        `json:"actual_rps"`
	Dataset     datasetInfo    `json:"dataset"`
	Totals      totalsSummary  `json:"totals"`
	Detail      latencySummary `json:"detail_latency_ms"`
	Errors      []string       `json:"errors,omitempty"`
}

type metricRecorder struct {
	mu        sync.Mutex
	total     int
	success   int
	partial   int
	failures  int
	durations []time.Duration
	errors    []string
}

func (m *metricRecorder) record(duration time.Duration, partial bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total++
	if err != nil {
		m.failures++
		if len(m.errors) < 10 {
			m.errors = append(m.errors, err.Error())
		}
		return
	}
	m.success++
	if partial {
		m.partial++
	}
	m.durations = append(m.durations, duration)
}

func (m *metricRecorder) toSummary(elapsed time.Duration, cfg runConfig, data datasetInfo) loadSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	summary := loadSummary{
		GeneratedAt: time.Now(),
		BaseURL:     cfg.BaseURL,
		DurationSec: elapsed.Seconds(),
		Concurrency: cfg.Concurrency,
		Dataset:     data,
		Totals: totalsSummary{
			Requested: m.total,
			Succeeded: m.success,
			Partial:   m.partial,
			Failed:    m.failures,
		},
		Errors: append([]string(nil), m.errors...),
	}
	if elapsed > 0 {
		summary.ActualRPS = float64(m.success) / elapsed.Seconds()
	}
	summary.Detail = calcLatency(m.durations)
	return summary
}

func calcLatency(data []time.Duration) latencySummary {
	if len(data) == 0 {
		return latencySummary{}
	}
	samples := append([]time.Duration(nil), data...)
	sort.Slice(samples, func(i, j int) bool {
		return samples[i] < samples[j]
	})

	var total time.Duration
	for _, d := range samples {
		total += d
	}
	percentile := func(p float64) float64 {
		idx := int(math.Ceil(p*float64(len(samples)))) - 1
		if idx < 0 {
			idx = 0
		}
		return float64(samples[idx].Microseconds()) / 1000.0
	}
	return latencySummary{
		Samples:   len(samples),
		AverageMs: float64(total.Microseconds()) / float64(len(samples)) / 1000.0,
		P50Ms:     percentile(0.50),
		P95Ms:     percentile(0.95),
		P99Ms:     percentile(0.99),
		MaxMs:     float64(samples[len(samples)-1].Microseconds()) / 1000.0,
	}
}

func main() {
	cfg := parseFlags()
	if err := run(cfg); err != nil {
		log.Fatalf("load test failed: %v", err)
	}
}

func parseFlags() runConfig {
	var cfg runConfig
	pflag.StringVar(&cfg.BaseURL, "base-url", "http://localhost:8080", "base URL of the running service")
	pflag.IntVar(&cfg.Users, "users", 20, "users to seed")
	pflag.IntVar(&cfg.Labels, "labels", 10, "labels to seed")
	pflag.IntVar(&cfg.Milestones, "milestones", 3, "milestones to seed")
	pflag.IntVar(&cfg.Issues, "issues", 50, "issues to seed")
	pflag.IntVar(&cfg.CommentsPerIssue, "comments-per-issue", 5, "comments per seeded issue")
	pflag.IntVarP(&cfg.Concurrency, "concurrency", "c", 8, "parallel detail requests")
	pflag.DurationVarP(&cfg.Duration, "duration", "d", 30*time.Second, "load duration (e.g. 45s, 1m)")
	pflag.DurationVar(&cfg.RequestTimeout, "request-timeout", 5*time.Second, "HTTP request timeout")
	pflag.DurationVar(&cfg.HealthTimeout, "health-timeout", 30*time.Second, "maximum wait for /health readiness")
	pflag.StringVar(&cfg.ReportPath, "report", "", "path to store structured results")
	pflag.StringVar(&cfg.DatasetPrefix, "dataset-prefix", "load", "prefix for generated entity titles")
	pflag.StringVar(&cfg.CleanupDSN, "cleanup-dsn", "", "PostgreSQL DSN; when set, the seeded dataset is removed afterwards")
	pflag.Parse()

	switch {
	case cfg.Users <= 0:
		log.Fatalf("users must be positive")
	case cfg.Issues <= 0:
		log.Fatalf("issues must be positive")
	case cfg.Concurrency <= 0:
		log.Fatalf("concurrency must be positive")
	case cfg.Labels < 0 || cfg.Milestones < 0 || cfg.CommentsPerIssue < 0:
		log.Fatalf("labels, milestones and comments-per-issue must not be negative")
	}
	return cfg
}

func run(cfg runConfig) error {
	ctx := context.Background()
	c := client.New(cfg.BaseURL, client.WithTimeout(cfg.RequestTimeout))

	if err := waitForHealthy(ctx, c, cfg.HealthTimeout); err != nil {
		return fmt.Errorf("service unhealthy: %w", err)
	}
	log.Printf("Service is healthy at %s", cfg.BaseURL)

	data, err := seedDataset(ctx, c, cfg)
	if err != nil {
		return fmt.Errorf("seed dataset: %w", err)
	}
	log.Printf("Seeded %d issues (%s)", len(data.IssueIDs), data.Prefix)

	recorder := &metricRecorder{}
	start := time.Now()
	if err := executeLoad(ctx, c, cfg, data.IssueIDs, recorder); err != nil {
		return err
	}
	summary := recorder.toSummary(time.Since(start), cfg, data)

	if cfg.CleanupDSN != "" {
		if err := cleanup(ctx, cfg.CleanupDSN, data.Prefix); err != nil {
			log.Printf("cleanup failed: %v", err)
		}
	}

	if err := json.NewEncoder(os.Stdout).Encode(summary); err != nil {
		return err
	}
	if err := writeReport(summary, cfg.ReportPath); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func waitForHealthy(ctx context.Context, c *client.Client, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out waiting for health")
		}
		if err := c.Health(ctx); err == nil {
			return nil
		}
		time.Sleep(1 * time.Second)
	}
}

func seedDataset(ctx context.Context, c *client.Client, cfg runConfig) (datasetInfo, error) {
	info := datasetInfo{
		Prefix:           fmt.Sprintf("%s-%d", cfg.DatasetPrefix, time.Now().Unix()),
		Users:            cfg.Users,
		Labels:           cfg.Labels,
		Milestones:       cfg.Milestones,
		Issues:           cfg.Issues,
		CommentsPerIssue: cfg.CommentsPerIssue,
	}

	userIDs := make([]int64, 0, cfg.Users)
	for i := 0; i < cfg.Users; i++ {
		u, err := c.CreateUser(ctx, models.PostUserJSONBody{Name: fmt.Sprintf("%s-user-%03d", info.Prefix, i+1)})
		if err != nil {
			return info, fmt.Errorf("create user: %w", err)
		}
		userIDs = append(userIDs, u.ID)
	}

	labelIDs := make([]int64, 0, cfg.Labels)
	for i := 0; i < cfg.Labels; i++ {
		l, err := c.CreateLabel(ctx, models.PostLabelJSONBody{
			Title: fmt.Sprintf("%s-label-%02d", info.Prefix, i+1),
			Color: fmt.Sprintf("#%06x", rand.Intn(0xffffff)),
		})
		if err != nil {
			return info, fmt.Errorf("create label: %w", err)
		}
		labelIDs = append(labelIDs, l.ID)
	}

	milestoneIDs := make([]int64, 0, cfg.Milestones)
	for i := 0; i < cfg.Milestones; i++ {
		m, err := c.CreateMilestone(ctx, models.PostMilestoneJSONBody{Title: fmt.Sprintf("%s-v%d", info.Prefix, i+1)})
		if err != nil {
			return info, fmt.Errorf("create milestone: %w", err)
		}
		milestoneIDs = append(milestoneIDs, m.ID)
	}

	for i := 0; i < cfg.Issues; i++ {
		payload := models.PostIssueJSONBody{
			Title:     fmt.Sprintf("%s issue %03d", info.Prefix, i+1),
			Content:   "generated by loadgen",
			UserID:    userIDs[i%len(userIDs)],
			Assignees: []int64{userIDs[(i+1)%len(userIDs)]},
		}
		if len(labelIDs) > 0 {
			payload.Labels = []int64{labelIDs[i%len(labelIDs)]}
		}
		if len(milestoneIDs) > 0 {
			payload.MilestoneID = &milestoneIDs[i%len(milestoneIDs)]
		}
		issue, err := c.CreateIssue(ctx, payload)
		if err != nil {
			return info, fmt.Errorf("create issue: %w", err)
		}
		for j := 0; j < cfg.CommentsPerIssue; j++ {
			if _, err := c.AddComment(ctx, issue.ID, models.PostCommentJSONBody{
				UserID:  userIDs[(i+j)%len(userIDs)],
				Content: fmt.Sprintf("comment %d", j+1),
			}); err != nil {
				return info, fmt.Errorf("add comment: %w", err)
			}
		}
		info.IssueIDs = append(info.IssueIDs, issue.ID)
	}
	return info, nil
}

// executeLoad держит cfg.Concurrency воркеров, каждый без пауз запрашивает карточки случайных задач.
func executeLoad(ctx context.Context, c *client.Client, cfg runConfig, issueIDs []int64, recorder *metricRecorder) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Concurrency; w++ {
		g.Go(func() error {
			for ctx.Err() == nil {
				issueID := issueIDs[rand.Intn(len(issueIDs))]
				start := time.Now()
				resp, err := c.GetDetail(ctx, issueID)
				if ctx.Err() != nil {
					return nil
				}
				partial := err == nil && resp.Partial
				recorder.record(time.Since(start), partial, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// cleanup удаляет сгенерированные сущности напрямую из базы.
func cleanup(ctx context.Context, dsn, prefix string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer pool.Close()

	pattern := prefix + "%"
	statements := []string{
		`DELETE FROM issues WHERE title LIKE $1`,
		`DELETE FROM labels WHERE title LIKE $1`,
		`DELETE FROM milestones WHERE title LIKE $1`,
		`DELETE FROM users WHERE name LIKE $1`,
	}
	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt, pattern); err != nil {
			return fmt.Errorf("cleanup %q: %w", stmt, err)
		}
	}
	return nil
}

func writeReport(summary loadSummary, path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
