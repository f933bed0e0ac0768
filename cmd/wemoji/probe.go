package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/npillmayer/wemoji/engine/emojimg"
	"github.com/npillmayer/wemoji/engine/probe"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/runenames"
)

// NewProbeCmd creates the probe command.
func NewProbeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check if this machine renders emoji and flag emoji",
		Long: `probe draws sample emoji onto an offscreen canvas, using the fonts
installed on this machine, and reports which kinds of emoji render.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			noSystem, _ := cmd.Flags().GetBool("no-system-fonts")
			caps := probe.NewProber(newCanvas(noSystem)).Probe()
			return printCapabilities(cmd.OutOrStdout(), caps)
		},
	}
	cmd.Flags().Bool("no-system-fonts", false, "Probe with the built-in fallback fonts only")
	return cmd
}

func newCanvas(noSystemFonts bool) probe.CanvasFactory {
	if noSystemFonts {
		return probe.NewCanvas(probe.WithoutSystemFonts())
	}
	return probe.NewCanvas()
}

// capabilityTable lists every probe with its sample, followed by the
// resulting replacement decision.
func capabilityTable(caps probe.Capabilities) pterm.TableData {
	data := pterm.TableData{{"Probe", "Sample", "Icon", "Characters", "Renders"}}
	for _, kind := range []probe.Kind{probe.Simple, probe.Flag} {
		sample := kind.Sample()
		supported := caps.SupportsEmoji
		if kind == probe.Flag {
			supported = caps.SupportsFlagEmoji
		}
		data = append(data, []string{
			kind.String(),
			sample,
			emojimg.Icon(sample),
			runeNames(sample),
			yesNo(supported),
		})
	}
	return append(data, []string{"replace", "", "", "emoji replaced by images", yesNo(caps.ReplaceEmoji())})
}

func runeNames(s string) string {
	names := make([]string, 0, len(s))
	for _, r := range s {
		names = append(names, runenames.Name(r))
	}
	return strings.Join(names, " + ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func printCapabilities(w io.Writer, caps probe.Capabilities) error {
	out, err := pterm.DefaultTable.WithHasHeader().WithData(capabilityTable(caps)).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}
