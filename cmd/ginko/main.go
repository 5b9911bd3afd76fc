// Command ginko is the CLI front end described in spec.md §6: it adds a
// file to a fresh dts/project.Project, analyzes it, and prints
// diagnostics through a pretty-printer, exiting 1 if any Error-severity
// diagnostic was found. Grounded on cmd/sai/main.go's cobra root command
// plus one file per subcommand (cmd/sai/cmd_parse.go, cmd/sai/cmd_lsp.go).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/ginko/dts/diagnostics"
	"github.com/dhamidi/ginko/dts/project"
)

func main() {
	rootCmd := newRootCmd()
	rootCmd.AddCommand(newLSPCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var includePaths []string

	cmd := &cobra.Command{
		Use:   "ginko <file>",
		Short: "Parse and analyze a Devicetree Source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(args[0], includePaths)
		},
	}
	cmd.Flags().StringArrayVarP(&includePaths, "include", "I", nil, "add a path to search for include files")

	return cmd
}

func runAnalyze(file string, includePaths []string) error {
	cfg, err := loadConfig(file)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sm := diagnostics.DefaultSeverityMap()
	for code, sev := range cfg.severityOverrides() {
		sm[code] = sev
	}

	proj := project.New(nil, sm)
	proj.SetIncludePaths(append(cfg.IncludeDirs, includePaths...))

	if err := proj.AddFileFromFS(file); err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}

	f := proj.GetFile(file)
	diags := f.Diagnostics()
	if len(diags) == 0 {
		fmt.Println("no issues found")
		return nil
	}

	printDiagnostics(os.Stdout, f.Source(), diags, sm)

	for _, d := range diags {
		if sm.Severity(d.Code) == diagnostics.Error {
			return errExitWithErrors
		}
	}
	return nil
}

// errExitWithErrors signals runAnalyze found at least one Error-severity
// diagnostic. runAnalyze has already printed the diagnostics; cobra then
// prints this message and the usage text before main exits.
var errExitWithErrors = fmt.Errorf("diagnostics contain at least one error")
