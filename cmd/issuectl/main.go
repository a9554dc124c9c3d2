// issuectl загружает карточку задачи с сервера: четыре раздела параллельно,
// итог печатается один раз, когда все загрузки завершились.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/AlekseyZapadovnikov/issue-tracker/internal/client"
	"github.com/AlekseyZapadovnikov/issue-tracker/internal/detail"
	"github.com/AlekseyZapadovnikov/issue-tracker/internal/join"
	"github.com/AlekseyZapadovnikov/issue-tracker/internal/models"
)

type options struct {
	addr    string
	issueID int64
	timeout time.Duration
	verbose bool
}

func main() {
	var opts options
	pflag.StringVar(&opts.addr, "addr", "http://localhost:8080", "base URL of the issue tracker")
	pflag.Int64Var(&opts.issueID, "issue", 0, "issue id to show")
	pflag.DurationVar(&opts.timeout, "timeout", 5*time.Second, "give up waiting for sections after this long (0 waits forever)")
	pflag.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	pflag.Parse()

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if opts.issueID <= 0 {
		fmt.Fprintln(os.Stderr, "--issue is required")
		pflag.Usage()
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "issuectl:", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := client.New(opts.addr)
	issue, err := c.GetIssue(ctx, opts.issueID)
	if err != nil {
		if client.IsNotFound(err) {
			return fmt.Errorf("issue %d not found", opts.issueID)
		}
		return err
	}

	// Отрисовка идёт на отдельной очереди, как на главном потоке интерфейса.
	queue := join.NewQueue(1)
	rendered := make(chan detail.Snapshot, 1)
	view, err := detail.NewView(*issue, c,
		detail.RendererFunc(func(s detail.Snapshot) {
			rendered <- s
			queue.Close()
		}),
		detail.WithDispatcher(queue),
		detail.WithTimeout(opts.timeout),
		detail.WithAlerter(detail.AlerterFunc(func(description string) {
			fmt.Fprintln(os.Stderr, "warning:", description)
		})),
	)
	if err != nil {
		return err
	}
	if err := view.Refresh(ctx); err != nil {
		return err
	}

	if err := queue.Run(ctx); err != nil && !errors.Is(err, join.ErrQueueClosed) {
		return err
	}
	return printSnapshot(<-rendered)
}

func printSnapshot(s detail.Snapshot) error {
	out := models.IssueDetailResponse{
		Detail:   s.Detail,
		Warnings: make([]string, 0, len(s.Missing)),
		Partial:  s.Partial(),
	}
	if s.Expired {
		out.Warnings = append(out.Warnings, "timed out waiting for sections")
	}
	for _, section := range s.Missing {
		out.Warnings = append(out.Warnings, section+" unavailable")
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
