package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pagewave/pagewave/pkg/batch"
)

var callMethod string

// callCmd represents the call command.
var callCmd = &cobra.Command{
	Use:   "call <url> [param...]",
	Short: "Perform a single request and exit with the mapped status code",
	Long: `Perform one request and print the raw response body. The process
exit code maps the outcome: 0 for 2xx, status minus 400 for 4xx and
5xx, 1 for anything else, and the transport failure code when no
response arrived at all.`,
	Args: cobra.MinimumNArgs(1),
	Run:  runCall,
}

func init() {
	callCmd.Flags().StringVarP(&callMethod, "method", "X", "GET", "HTTP method")
}

func runCall(cmd *cobra.Command, args []string) {
	d := batch.Descriptor{
		Method: callMethod,
		URL:    args[0],
		Params: args[1:],
	}

	rec, code := executor.Invoke(cmd.Context(), d)
	if len(rec.Body) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), string(rec.Body))
	}
	if code != 0 {
		logger.Error().
			Str("url", d.URL).
			Int("status", rec.Status).
			Int("exit_code", code).
			Msg("Call failed")
	}
	os.Exit(code)
}
