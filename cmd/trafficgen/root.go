package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. Given a configuration file it runs
// the traffic generator until interrupted.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trafficgen <config_file>",
		Short: "Generate random web browsing traffic",
		Long: `trafficgen generates random HTTP/HTTPS browsing traffic.

Each session starts at a random root URL from the configuration file and
follows one random link per page for a random number of hops, pausing for a
random time between requests. Pages that fail to load or have no links are
blacklisted. On a 429 response the pauses get longer.

Pass "-" instead of a path to look for ./trafficgen.yaml and then the
trafficgen config.yaml in the XDG config directory.

Examples:
  # Write a template configuration file
  trafficgen init

  # Generate traffic until Ctrl+C
  trafficgen trafficgen.yaml

  # Show every fetch and log at debug level
  trafficgen -v trafficgen.yaml

  # Keep a Markdown copy of the run summary
  trafficgen --summary-file run.md --summary-format markdown trafficgen.yaml`,
		Version:       getVersion(),
		Args:          configFileArg,
		RunE:          runRootCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging and per-request trace output")
	cmd.Flags().Bool("json-log", false, "Write log records as JSON")
	cmd.Flags().StringP("summary-file", "o", "",
		"Also write the run summary to this file when the run ends")
	cmd.Flags().String("summary-format", summaryFormatJSON,
		"Format of --summary-file: json or markdown")

	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// configFileArg accepts exactly one argument and adds the usage line to
// the error, since usage output is otherwise silenced.
func configFileArg(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return fmt.Errorf("%w\nUsage: %s", err, cmd.UseLine())
	}
	return nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}
