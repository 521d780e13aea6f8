// Command mono-trigger-cli inspects routing configs offline and sends test
// push deliveries to a running mono-trigger server.
package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nathantilsley/mono-trigger/internal/platform/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mono-trigger-cli",
		Short:         "Inspect monorepo pipeline routing",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRouteCmd(), newDiffCmd(), newSendCmd())
	return root
}

// cliLogger keeps config warnings on stderr so stdout stays machine-readable.
func cliLogger(cmd *cobra.Command) *slog.Logger {
	return logger.NewWithWriter(cmd.ErrOrStderr(), "warn", "text", false)
}

// changedPaths returns the positional paths, or one path per line from
// stdin when none are given (git diff --name-only | mono-trigger-cli ...).
func changedPaths(cmd *cobra.Command, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	return readLines(cmd.InOrStdin())
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading paths: %w", err)
	}
	return lines, nil
}
