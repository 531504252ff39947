package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newUndoCmd(a *app) *cobra.Command {
	var (
		journalPath string
		batchID     string
	)

	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Restore the names of a journalled batch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if journalPath == "" {
				journalPath = a.cfg.Journal.Path
			}
			if journalPath == "" {
				return errors.New("no journal given; use --journal or journal.path")
			}

			results, summary, err := a.service().Undo(journalPath, batchID)
			if err != nil {
				return err
			}
			for _, res := range results {
				printResult(a, res)
			}
			a.interactor.StopSpinner(summary.OK(), fmt.Sprintf("batch %s: %d restored, %d conflicts, %d failed",
				summary.BatchID, summary.Renamed, summary.Conflicts, summary.Failed))
			if !summary.OK() {
				return errIncomplete
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&journalPath, "journal", "", "journal written by apply")
	cmd.Flags().StringVar(&batchID, "batch", "", "batch to undo (default: the last one in the journal)")
	return cmd
}
