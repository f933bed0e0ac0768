package main

import (
	"fmt"
	"os"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/npillmayer/wemoji/core"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// tracer traces with key 'wemoji.cli'.
func tracer() tracing.Trace {
	return tracing.Select("wemoji.cli")
}

// traceKeys lists the tracers of the packages a command may run through.
var traceKeys = []string{
	"wemoji.cli",
	"wemoji.probe",
	"wemoji.emojimg",
	"wemoji.rewrite",
	"wemoji.dom",
	"wemoji.watch",
	"wemoji.style",
	"wemoji.html",
	"wemoji.fonts",
	"wemoji.resources",
	"wemoji.settings",
}

// NewRootCmd creates the root command for wemoji.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wemoji",
		Short: "Replace emoji by images where a host cannot render them",
		Long: `wemoji checks if the fonts of a machine are able to render emoji and
flag emoji. If they are not, emoji characters in HTML files are replaced
by images, fetched from a configurable base URL.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, _ := cmd.Flags().GetString("trace")
			return setupTracing(level)
		},
	}
	cmd.PersistentFlags().String("trace", "Error", "Trace level [Debug|Info|Error]")

	cmd.AddCommand(NewProbeCmd())
	cmd.AddCommand(NewRewriteCmd())
	cmd.AddCommand(NewVersionCmd())
	return cmd
}

// Execute runs the root command. Failures exit with the error code of
// the error.
func Execute() {
	initDisplay()
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(int(core.ReportError(os.Stderr, err)))
	}
}

// setupTracing routes all tracers to the Go logger, at the given level.
func setupTracing(level string) error {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter": "go",
		"trace.root":      level,
	}
	for _, key := range traceKeys {
		conf["trace."+key] = level
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		return fmt.Errorf("error configuring tracing: %w", err)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	l := tracing.TraceLevelFromString(level)
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(l)
	}
	tracer().Debugf("trace level is %s", l)
	return nil
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
	pterm.Success.Prefix = pterm.Prefix{
		Text:  " Done",
		Style: pterm.NewStyle(pterm.BgGreen, pterm.FgBlack),
	}
}
