package main

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/wemoji/core"
	"github.com/npillmayer/wemoji/core/settings"
	"github.com/npillmayer/wemoji/engine/dom"
	"github.com/npillmayer/wemoji/engine/probe"
	"github.com/npillmayer/wemoji/engine/rewrite"
	"github.com/npillmayer/wemoji/engine/style"
	"github.com/npillmayer/wemoji/engine/watch"
	"github.com/npillmayer/wemoji/input/html"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// stdio stands for standard input or output.
const stdio = "-"

type rewriteOptions struct {
	base     string
	ext      string
	config   string
	class    string
	out      string
	force    bool
	noStyles bool
	noSystem bool
	jobs     int
}

// NewRewriteCmd creates the rewrite command.
func NewRewriteCmd() *cobra.Command {
	ro := &rewriteOptions{}
	cmd := &cobra.Command{
		Use:   "rewrite [files...]",
		Short: "Replace emoji in HTML files by images",
		Long: `rewrite loads HTML files the way a browser would and replaces emoji
by images, if this machine cannot render them (or if --force-replace is set).
Without files, a document is read from stdin.

Image settings are taken from --base/--ext, from a settings file (--config,
$XDG_CONFIG_HOME/wemoji/config.yaml or ./.wemoji.yaml), or from the
_wpemojiSettings script of each page, in this order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{stdio}
			}
			return runRewrite(cmd.Context(), cmd.OutOrStdout(), cmd.InOrStdin(), ro, args)
		},
	}
	f := cmd.Flags()
	f.StringVar(&ro.base, "base", "", "Base URL of emoji images")
	f.StringVar(&ro.ext, "ext", ".png", "File extension of emoji images")
	f.StringVar(&ro.config, "config", "", "Settings file")
	f.StringVar(&ro.class, "class", rewrite.DefaultClassName, "Class attribute of emoji images")
	f.StringVarP(&ro.out, "out", "o", "", "Output directory (default stdout)")
	f.BoolVar(&ro.force, "force-replace", false, "Replace emoji without probing this machine")
	f.BoolVar(&ro.noStyles, "no-styles", false, "Do not add a style sheet for emoji images")
	f.BoolVar(&ro.noSystem, "no-system-fonts", false, "Probe with the built-in fallback fonts only")
	f.IntVarP(&ro.jobs, "jobs", "j", 4, "Number of files processed concurrently")
	return cmd
}

func runRewrite(ctx context.Context, stdout io.Writer, stdin io.Reader, ro *rewriteOptions, files []string) error {
	if ro.out == "" && len(files) > 1 {
		return core.Error(core.EINVALID, "rewriting %d files needs an output directory (--out)", len(files))
	}
	if ro.out != "" {
		if err := os.MkdirAll(ro.out, 0o755); err != nil {
			return core.WrapError(err, core.EINTERNAL, "cannot create output directory %s", ro.out)
		}
	}
	caps := probe.Capabilities{}
	if !ro.force {
		caps = probe.NewProber(newCanvas(ro.noSystem)).Probe()
		if !caps.ReplaceEmoji() {
			tracer().Infof("this machine renders all emoji, documents stay unchanged")
		}
	}
	g, ctx := errgroup.WithContext(ctx)
	if ro.jobs > 0 {
		g.SetLimit(ro.jobs)
	}
	for _, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return rewriteFile(file, stdout, stdin, caps, ro)
		})
	}
	return g.Wait()
}

func rewriteFile(file string, stdout io.Writer, stdin io.Reader, caps probe.Capabilities, ro *rewriteOptions) error {
	var doc *dom.Document
	var err error
	if file == stdio {
		doc, err = html.Read(stdin)
	} else {
		doc, err = html.ReadFile(file)
	}
	if err != nil {
		return err
	}
	s, err := ro.settingsFor(doc)
	if err != nil {
		return core.WrapError(err, core.Code(err), "%s: %s", file, core.UserMessage(err))
	}
	if err = rewriteDocument(doc, s, caps, ro); err != nil {
		return err
	}
	if ro.out == "" {
		return html.Write(stdout, doc)
	}
	name := filepath.Base(file)
	if file == stdio {
		name = "stdin.html"
	}
	target := filepath.Join(ro.out, name)
	if err = html.WriteFile(target, doc); err != nil {
		return err
	}
	pterm.Success.Printfln("%s -> %s", file, target)
	return nil
}

// rewriteDocument loads doc on a page of its own and lets a watcher
// replace the emoji.
func rewriteDocument(doc *dom.Document, s *settings.Settings, caps probe.Capabilities, ro *rewriteOptions) error {
	pg := dom.NewPage(doc)
	w := watch.Init(pg, s, watch.WithCapabilities(caps), watch.WithClassName(ro.class))
	if w.State() != watch.Active {
		return core.Error(core.EINTERNAL, "emoji watcher is %s", w.State())
	}
	pg.Load()
	n := pg.RunUntilIdle()
	tracer().Debugf("page ran %d tasks", n)
	if !w.Rewriter().Active() || ro.noStyles {
		return nil
	}
	_, err := style.EnsureStyles(doc, ro.class)
	return err
}

// settingsFor resolves the image settings for doc. Flags win over a
// settings file, which wins over settings found in the page.
func (ro *rewriteOptions) settingsFor(doc *dom.Document) (*settings.Settings, error) {
	if ro.base != "" {
		conf := testconfig.Conf{
			settings.KeyBaseURL: ro.base,
			settings.KeyExt:     ro.ext,
		}
		return settings.FromConfig(conf)
	}
	if path := settings.FindFile(ro.config); path != "" {
		return settings.LoadFile(path)
	}
	if ro.config != "" {
		return nil, core.Error(core.EMISSING, "settings file not found: %s", ro.config)
	}
	return settings.FromPage(doc.Root())
}
