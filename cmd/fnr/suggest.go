package main

import (
	"errors"
	"fmt"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/filename-repairer/fnr/candidates"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/codepage"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/common"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/types"
)

func newSuggestCmd(a *app) *cobra.Command {
	var (
		pick     int
		conflict string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "suggest FILE...",
		Short: "List repaired names for each file, best guess first",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refs, err := parseRefs(args)
			if err != nil {
				return err
			}
			strategy, err := conflictFlag(cmd, conflict, a.cfg.Repair.Conflict)
			if err != nil {
				return err
			}

			svc := a.service()
			results, err := svc.GenerateAll(cmd.Context(), refs, a.cfg.Suggest.Workers)
			if err != nil {
				return err
			}

			incomplete := false
			for _, r := range results {
				a.interactor.Output(color.Bold.Sprint(codepage.ReplacementDisplay(r.Ref.Path())))
				switch {
				case errors.Is(r.Err, common.ErrNotLocal):
					a.interactor.Warning("  not a local file")
					continue
				case r.Err != nil:
					a.interactor.Error("  cannot inspect", r.Err)
					incomplete = true
					continue
				case len(r.Candidates) == 0:
					a.interactor.Output("  nothing to repair")
					continue
				}

				printCandidates(a, r.Candidates)
				if pick == 0 {
					continue
				}
				if pick > len(r.Candidates) {
					a.interactor.Error(fmt.Sprintf("  no candidate %d", pick), nil)
					incomplete = true
					continue
				}
				res, err := svc.RenameTo(cmd.Context(), r.Ref, r.Candidates[pick-1], strategy, dryRun)
				if err != nil {
					return err
				}
				printResult(a, res)
				if res.Status != types.StatusRenamed {
					incomplete = true
				}
			}
			if incomplete {
				return errIncomplete
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&pick, "rename", 0, "rename each file to its Nth candidate (1 is the best guess)")
	cmd.Flags().StringVar(&conflict, "conflict", "ask", "when the new name exists: ask, overwrite or skip")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be renamed without renaming")
	return cmd
}

func printCandidates(a *app, list candidates.List) {
	for i, c := range list {
		source := string(c.Encoding)
		if e, ok := codepage.Get(c.Encoding); ok {
			source = e.Label
		}
		switch {
		case c.Kind == candidates.KindURIEscape:
			source = "percent-encoded UTF-8"
		case c.Unescaped:
			source += ", percent-encoded"
		}
		a.interactor.Output(fmt.Sprintf("  %2d. %s  %s", i+1, c.Text, color.Cyan.Sprint("("+source+")")))
	}
}

func printResult(a *app, res types.RenameResult) {
	line := fmt.Sprintf("%s -> %s", codepage.EscapedDisplay(res.Src), codepage.EscapedDisplay(res.Dst))
	if res.Reason != "" {
		line += " (" + res.Reason + ")"
	}
	switch res.Status {
	case types.StatusRenamed:
		a.interactor.Output(color.Green.Sprint("renamed   ") + line)
	case types.StatusSkipped:
		a.interactor.Output(color.FgDarkGray.Sprint("skipped   ") + line)
	case types.StatusConflict:
		a.interactor.Warning("conflict  " + line)
	default:
		a.interactor.Error("failed    "+line, res.Err)
	}
}
