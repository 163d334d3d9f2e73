// cmd/benchdash/serve_fake.go
package benchdash

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mwiater/benchdash/internal/fakerunner"
)

var (
	fakeAddr     string
	fakeScenario string
	fakeVerbose  bool
)

// serveFakeCmd runs the scripted Job Runner.
var serveFakeCmd = &cobra.Command{
	Use:   "serve-fake",
	Short: "Serve a scripted Job Runner for demos and tests",
	Long: `The 'serve-fake' command serves the Job Runner API from a scenario file (or a
built-in scenario) so the dashboard can be tried without models. Each status poll
reveals the next results of the scenario.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		scn := fakerunner.DefaultScenario()
		if fakeScenario != "" {
			var err error
			if scn, err = fakerunner.LoadScenario(fakeScenario); err != nil {
				return err
			}
		}
		var opts []fakerunner.Option
		if fakeVerbose {
			opts = append(opts, fakerunner.WithRequestLog(cmd.ErrOrStderr()))
		}
		srv := &http.Server{
			Addr:              fakeAddr,
			Handler:           fakerunner.New(scn, opts...).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		errc := make(chan error, 1)
		go func() { errc <- srv.ListenAndServe() }()
		fmt.Fprintf(cmd.OutOrStdout(), "fake runner listening on %s (%d cases)\n", fakeAddr, len(scn.Suite.Cases))

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveFakeCmd.Flags().StringVar(&fakeAddr, "addr", ":8000", "listen address")
	serveFakeCmd.Flags().StringVar(&fakeScenario, "scenario", "", "scenario YAML file")
	serveFakeCmd.Flags().BoolVarP(&fakeVerbose, "verbose", "v", false, "log every request")
	rootCmd.AddCommand(serveFakeCmd)
}
