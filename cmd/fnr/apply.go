package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/options"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/types"
)

func newApplyCmd(a *app) *cobra.Command {
	var (
		encoding    string
		recursive   bool
		exclude     []string
		conflict    string
		dryRun      bool
		journalPath string
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "apply PATH...",
		Short: "Rename every entry to its repaired name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roots, err := parseRefs(args)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("recursive") {
				recursive = a.cfg.Repair.IncludeSubdirectories
			}
			strategy, err := conflictFlag(cmd, conflict, a.cfg.Repair.Conflict)
			if err != nil {
				return err
			}
			if journalPath == "" {
				journalPath = a.cfg.Journal.Path
			}

			svc := a.service()
			enc, err := a.resolveEncoding(svc, encoding, roots)
			if err != nil {
				return err
			}

			a.interactor.StartSpinner("repairing with " + string(enc))
			_, summary, err := svc.ApplyRepairWithOptions(cmd.Context(), roots, options.ApplyOptions{
				Encoding:    enc,
				Walk:        a.walkOptions(exclude, recursive),
				Conflict:    strategy,
				DryRun:      dryRun,
				JournalPath: journalPath,
				Progress: func(res types.RenameResult) {
					a.interactor.Tick(1)
					switch {
					case verbose,
						res.Status == types.StatusConflict,
						res.Status == types.StatusFailed,
						dryRun && res.Status == types.StatusRenamed:
						printResult(a, res)
					}
				},
			})
			if err != nil {
				a.interactor.StopSpinner(false, "")
				return err
			}

			msg := fmt.Sprintf("%d renamed, %d skipped, %d conflicts, %d failed (batch %s)",
				summary.Renamed, summary.Skipped, summary.Conflicts, summary.Failed, summary.BatchID)
			if dryRun {
				msg = "dry run: " + msg
			}
			a.interactor.StopSpinner(summary.OK(), msg)
			if !summary.OK() {
				return errIncomplete
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&encoding, "encoding", "e", "", "code page of the mangled names (default: best guess)")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "include the contents of directories")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "gitignore style pattern to skip (repeatable)")
	cmd.Flags().StringVar(&conflict, "conflict", "ask", "when the new name exists: ask, overwrite or skip")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "show what would be renamed without renaming")
	cmd.Flags().StringVar(&journalPath, "journal", "", "append results to this CSV file for undo")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every entry")
	return cmd
}
