// cmd/benchdash/run.go
package benchdash

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mwiater/benchdash/internal/config"
	"github.com/mwiater/benchdash/internal/metrics"
	"github.com/mwiater/benchdash/internal/poller"
	"github.com/mwiater/benchdash/internal/report"
	"github.com/mwiater/benchdash/internal/view"
)

// errVerdictFailed makes the process exit non-zero when a model did not pass.
var errVerdictFailed = errors.New("one or more models failed the pass criteria")

// runCmd runs one job without the TUI.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a benchmark job headlessly and print the report",
	Long: `The 'run' command starts a job for --models, prints a progress line per poll and
the runner's log as it grows, then prints the report in --format. It exits with
status 1 when the job fails or any model misses its overall verdict. Interrupting
the command cancels the job on the runner.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runHeadless(ctx, cfg, cfg.Client(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	f := runCmd.Flags()
	f.Int("runs", 0, "runs per test")
	f.Int("warmup", 0, "warmup requests per model")
	f.Float64("timeout", 0, "per-inference timeout in seconds")
	f.Bool("use-llm-judge", false, "let a judge model grade answers")
	f.String("judge-model", "", "judge model id")
	f.String("metrics-addr", "", "serve Prometheus metrics on this address while the job runs")
	bindFlags(runCmd, map[string]string{
		"runs":          "runs",
		"warmup":        "warmup",
		"timeout":       "timeout",
		"use_llm_judge": "use-llm-judge",
		"judge_model":   "judge-model",
		"metrics_addr":  "metrics-addr",
	}, false)
	rootCmd.AddCommand(runCmd)
}

// runHeadless starts a job, polls it to the end and writes the report to out.
// Progress goes to progress.
func runHeadless(ctx context.Context, cfg config.Config, client poller.JobRunner, out, progress io.Writer) error {
	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	if len(cfg.Models) == 0 {
		return errors.New("no models given; pass --models or set models in the config file")
	}

	m := metrics.New(prometheus.NewRegistry())
	if cfg.MetricsAddr != "" {
		shutdown := serveMetrics(cfg.MetricsAddr, m, progress)
		defer shutdown()
	}

	opts := []poller.Option{
		poller.WithInterval(cfg.PollInterval),
		poller.WithMetrics(m),
		poller.WithTickHook(progressPrinter(progress)),
	}
	if cfg.Debug {
		opts = append(opts, poller.WithDebugLog(log.New(progress, "debug: ", log.LstdFlags)))
	}
	p := poller.New(client, opts...)

	if err := p.Start(ctx, cfg.StartRequest(cfg.Models)); err != nil {
		return err
	}
	runErr := p.Run(ctx)

	s := p.Session()
	prog := s.Progress()
	summary := s.Summary()
	if err := report.Write(out, format, report.Job{
		JobID:    s.JobID,
		State:    s.State.String(),
		Elapsed:  s.Elapsed(),
		Done:     prog.Done,
		Expected: prog.Expected,
		Summary:  summary,
	}); err != nil {
		return err
	}

	switch {
	case runErr != nil:
		return fmt.Errorf("job %s: %w", s.JobID, runErr)
	case s.State != poller.Done:
		return fmt.Errorf("job %s ended %s", s.JobID, s.State)
	case !summary.AllPassed():
		return errVerdictFailed
	}
	return nil
}

// progressPrinter returns a tick hook printing new log lines and a progress
// line.
func progressPrinter(w io.Writer) func(*poller.Session) {
	seen := 0
	return func(s *poller.Session) {
		for _, l := range s.Logs[min(seen, len(s.Logs)):] {
			fmt.Fprintf(w, "%s [%s] %s\n", l.Time.Format("15:04:05"), l.Type, l.Message)
		}
		seen = len(s.Logs)
		p := s.Progress()
		expected := "?"
		if p.Expected > 0 {
			expected = fmt.Sprint(p.Expected)
		}
		fmt.Fprintf(w, "%s %s %d/%s (%d%%)\n", view.FormatElapsed(s.Elapsed()), s.State, p.Done, expected, p.Pct)
	}
}

// serveMetrics exposes m on addr and returns a func stopping the server.
func serveMetrics(addr string, m *metrics.Metrics, errLog io.Writer) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(errLog, "metrics server: %v\n", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
