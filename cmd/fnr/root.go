package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	internal "github.com/ZanzyTHEbar/filename-repairer/fnr"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/codepage"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/config"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/options"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/ports"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/repair"
)

// errIncomplete makes the process exit non-zero after a run whose problems
// were already reported.
var errIncomplete = errors.New("not every entry could be repaired")

// app carries what every subcommand needs once flags and config are read
type app struct {
	cfgFile  string
	logLevel string
	locale   string

	cfg        *config.Config
	logger     zerolog.Logger
	interactor *terminalInteractor
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   internal.DefaultAppName,
		Short: "Repair file names mangled by a legacy code page",
		Long: `fnr finds file names whose bytes were written in a legacy code page
and read back as UTF-8, and renames them to their proper Unicode form.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ./config.yaml or "+internal.DefaultGlobalConfigFile+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.locale, "locale", "", "locale used to rank code pages (default: from the environment)")

	root.AddCommand(
		newSuggestCmd(a),
		newScanCmd(a),
		newApplyCmd(a),
		newUndoCmd(a),
		newEncodingsCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(a.cfgFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.locale != "" {
		cfg.Repair.Locale = a.locale
	}
	a.cfg = cfg
	a.logger = internal.NewLogger(cfg.Log.Level, true)
	a.interactor = newTerminalInteractor(cmd.OutOrStdout(), cmd.ErrOrStderr())
	return nil
}

func (a *app) localeSource() ports.LocaleSource {
	if a.cfg.Repair.Locale != "" {
		return codepage.FixedLocale(a.cfg.Repair.Locale)
	}
	return codepage.EnvLocale{}
}

func (a *app) service(extra ...repair.Option) *repair.Service {
	opts := []repair.Option{
		repair.WithLocale(a.localeSource()),
		repair.WithLogger(a.logger),
		repair.WithInteractor(a.interactor),
		repair.WithStepsPerAdvance(a.cfg.Walk.StepsPerAdvance),
		repair.WithWalkOptions(a.walkOptions(nil, a.cfg.Repair.IncludeSubdirectories)),
	}
	return repair.NewService(append(opts, extra...)...)
}

func (a *app) walkOptions(exclude []string, recursive bool) options.WalkOptions {
	walk := options.DefaultWalkOptions()
	walk.SortEntries = a.cfg.Walk.SortEntries
	walk.IncludeSubdirectories = recursive
	walk.Exclude = append(append([]string(nil), a.cfg.Walk.Exclude...), exclude...)
	return walk
}

// resolveEncoding picks the encoding for a bulk run: the flag, then the
// config, then the best guess for the first root.
func (a *app) resolveEncoding(svc *repair.Service, flag string, roots []filesystem.FileRef) (codepage.EncodingID, error) {
	name := flag
	if name == "" {
		name = a.cfg.Repair.Encoding
	}
	if name != "" {
		return codepage.Lookup(name)
	}
	if len(roots) > 0 {
		return svc.SuggestEncoding(roots[0]), nil
	}
	return svc.DefaultEncoding(), nil
}

func parseRefs(args []string) ([]filesystem.FileRef, error) {
	refs := make([]filesystem.FileRef, 0, len(args))
	for _, arg := range args {
		ref, err := filesystem.ParseFileRef(arg)
		if err != nil {
			return nil, err
		}
		if !ref.IsLocal() {
			return nil, fmt.Errorf("%s: only local files can be repaired", ref)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func conflictFlag(cmd *cobra.Command, value, fallback string) (options.ConflictStrategy, error) {
	if !cmd.Flags().Changed("conflict") {
		value = fallback
	}
	return options.ParseConflictStrategy(strings.TrimSpace(value))
}
