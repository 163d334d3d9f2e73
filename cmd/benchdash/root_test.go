package benchdash

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/mwiater/benchdash/internal/config"
	"github.com/mwiater/benchdash/internal/fakerunner"
	"github.com/mwiater/benchdash/internal/runner"
)

func TestRoot_SubcommandsPresent(t *testing.T) {
	have := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
		if c.Name() == "list" {
			sub := map[string]bool{}
			for _, sc := range c.Commands() {
				sub[sc.Name()] = true
			}
			if !sub["models"] || !sub["commands"] {
				t.Fatalf("list subcommands missing: %v", sub)
			}
		}
	}
	for _, want := range []string{"dashboard", "run", "suite", "list", "config", "serve-fake"} {
		if !have[want] {
			t.Fatalf("missing subcommand %s", want)
		}
	}
}

func TestCommands_HaveDescriptions(t *testing.T) {
	var check func(*cobra.Command)
	check = func(cmd *cobra.Command) {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return
		}
		if cmd.Short == "" || cmd.Long == "" {
			t.Fatalf("command %s missing Short/Long", cmd.Name())
		}
		for _, sc := range cmd.Commands() {
			check(sc)
		}
	}
	check(rootCmd)
}

func TestListCommands_PrintsTree(t *testing.T) {
	var buf bytes.Buffer
	if err := listAllCommands(&buf, rootCmd, false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "Commands and Subcommands:\n") {
		t.Fatalf("unexpected header: %q", out)
	}
	for _, want := range []string{"benchdash list models", "benchdash serve-fake", "--runner-url", "--scenario", "--metrics-addr"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "benchdash help") || strings.Contains(out, "benchdash completion") {
		t.Fatalf("help and completion should be left out:\n%s", out)
	}
}

func TestListCommands_FlagsShownOnDefiningCommand(t *testing.T) {
	var rows []string
	walkCommands(rootCmd, 0, func(c *cobra.Command, depth int) {
		rows = append(rows, strings.Repeat("  ", depth)+c.CommandPath()+" "+strings.Join(ownFlags(c), " "))
	})

	var root, models string
	for _, r := range rows {
		if strings.HasPrefix(r, "benchdash --") {
			root = r
		}
		if strings.HasPrefix(r, "    benchdash list models") {
			models = r
		}
	}
	if !strings.Contains(root, "--runner-url") || !strings.Contains(root, "--format") {
		t.Fatalf("root row lacks its persistent flags: %q", root)
	}
	if models == "" || strings.Contains(models, "--runner-url") {
		t.Fatalf("list models row should be indented two levels without inherited flags: %q", models)
	}
}

func TestListCommands_Markdown(t *testing.T) {
	var buf bytes.Buffer
	if err := listAllCommands(&buf, rootCmd, true); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) < 3 {
		t.Fatalf("expected a markdown table:\n%s", buf.String())
	}
	for _, l := range lines[1:] {
		if !strings.HasPrefix(l, "|") {
			t.Fatalf("expected markdown rows only, got %q", l)
		}
	}
	if !strings.Contains(buf.String(), "benchdash list models") {
		t.Fatalf("missing list models row:\n%s", buf.String())
	}
}

func TestDashboard_PassesLoadedConfig(t *testing.T) {
	oldStart, oldLoad := startDashboard, loadConfig
	defer func() { startDashboard, loadConfig = oldStart, oldLoad }()

	want := config.Config{RunnerURL: "http://runner:9000", Locale: "en"}
	loadConfig = func() (config.Config, error) { return want, nil }
	var got config.Config
	startDashboard = func(cfg config.Config) error {
		got = cfg
		return nil
	}

	if err := dashboardCmd.RunE(dashboardCmd, nil); err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if got.RunnerURL != want.RunnerURL {
		t.Fatalf("dashboard got config %+v", got)
	}
}

func TestDashboard_ConfigError(t *testing.T) {
	oldStart, oldLoad := startDashboard, loadConfig
	defer func() { startDashboard, loadConfig = oldStart, oldLoad }()

	loadConfig = func() (config.Config, error) { return config.Config{}, errors.New("invalid config") }
	startDashboard = func(config.Config) error {
		t.Fatal("dashboard must not start")
		return nil
	}
	if err := dashboardCmd.RunE(dashboardCmd, nil); err == nil {
		t.Fatal("expected config error")
	}
}

func headlessConfig(format string, models ...string) config.Config {
	return config.Config{
		Models:       models,
		SuitePath:    "bench/suite.yaml",
		Runs:         1,
		Timeout:      60,
		PollInterval: time.Millisecond,
		Locale:       "en",
		Format:       format,
	}
}

func fakeClient(t *testing.T, scn fakerunner.Scenario) *runner.Client {
	t.Helper()
	srv := httptest.NewServer(fakerunner.New(scn).Handler())
	t.Cleanup(srv.Close)
	return runner.NewClient(srv.URL)
}

func TestRunHeadless_Passes(t *testing.T) {
	var out, progress bytes.Buffer
	client := fakeClient(t, fakerunner.DefaultScenario())

	err := runHeadless(context.Background(), headlessConfig("json", "qwen2.5-7b-instruct"), client, &out, &progress)
	if err != nil {
		t.Fatalf("run: %v\nprogress:\n%s", err, progress.String())
	}
	if !strings.Contains(out.String(), `"qwen2.5-7b-instruct"`) {
		t.Fatalf("report misses the model:\n%s", out.String())
	}
	if !strings.Contains(progress.String(), "benchmark complete") {
		t.Fatalf("progress misses the completion line:\n%s", progress.String())
	}
}

func TestRunHeadless_VerdictFailed(t *testing.T) {
	scn := fakerunner.DefaultScenario()
	scn.Fail = map[string][]string{"qwen2.5-7b-instruct": {"r1", "r2", "r3"}}
	var out, progress bytes.Buffer

	err := runHeadless(context.Background(), headlessConfig("text", "qwen2.5-7b-instruct"), fakeClient(t, scn), &out, &progress)
	if !errors.Is(err, errVerdictFailed) {
		t.Fatalf("expected verdict failure, got %v", err)
	}
	if !strings.Contains(out.String(), "qwen2.5-7b-instruct") {
		t.Fatalf("report must still be printed:\n%s", out.String())
	}
}

func TestRunHeadless_Validation(t *testing.T) {
	client := runner.NewClient("http://127.0.0.1:1")
	var out, progress bytes.Buffer

	if err := runHeadless(context.Background(), headlessConfig("text"), client, &out, &progress); err == nil {
		t.Fatal("expected an error without models")
	}
	if err := runHeadless(context.Background(), headlessConfig("xml", "m"), client, &out, &progress); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestRunHeadless_StartFailure(t *testing.T) {
	var out, progress bytes.Buffer
	err := runHeadless(context.Background(), headlessConfig("text", "m"), runner.NewClient("http://127.0.0.1:1"), &out, &progress)
	if !runner.IsTransport(err) {
		t.Fatalf("expected a transport error, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("no report expected when the job never started:\n%s", out.String())
	}
}
