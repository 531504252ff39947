package main

import (
	"fmt"
	"strings"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/filename-repairer/fnr/repair"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/trees"
)

func newScanCmd(a *app) *cobra.Command {
	var (
		encoding  string
		recursive bool
		exclude   []string
		all       bool
	)

	cmd := &cobra.Command{
		Use:   "scan PATH...",
		Short: "Show the names a repair would produce, without renaming",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roots, err := parseRefs(args)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("recursive") {
				recursive = a.cfg.Repair.IncludeSubdirectories
			}

			svc := a.service(repair.WithWalkOptions(a.walkOptions(exclude, recursive)))
			enc, err := a.resolveEncoding(svc, encoding, roots)
			if err != nil {
				return err
			}

			session, err := svc.StartTraversal(roots, recursive, enc)
			if err != nil {
				return err
			}
			defer session.Close()

			a.interactor.StartSpinner("scanning with " + string(enc))
			cursor := 0
			var fresh []trees.TreeNode
			for {
				if err := cmd.Context().Err(); err != nil {
					a.interactor.StopSpinner(false, "interrupted")
					return err
				}
				st := svc.Advance(session, a.cfg.Walk.StepsPerAdvance)
				fresh, cursor = session.Since(cursor)
				a.interactor.Tick(len(fresh))
				for _, n := range fresh {
					if all || !n.Proposed || n.NeedsRename() {
						printNode(a, n)
					}
				}
				if st.Done {
					break
				}
			}

			tree := session.Tree()
			ok := session.AllSucceeded()
			a.interactor.StopSpinner(ok, fmt.Sprintf("%d entries scanned, %d cannot be converted with %s",
				tree.Len(), tree.FailedCount(), enc))
			if !ok {
				return errIncomplete
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&encoding, "encoding", "e", "", "code page of the mangled names (default: best guess)")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "include the contents of directories")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "gitignore style pattern to skip (repeatable)")
	cmd.Flags().BoolVar(&all, "all", false, "also list names that need no change")
	return cmd
}

func printNode(a *app, n trees.TreeNode) {
	indent := strings.Repeat("  ", n.Depth)
	switch {
	case !n.Proposed:
		a.interactor.Output(fmt.Sprintf("%s%s  %s", indent, n.DisplayText, color.Red.Sprint("(cannot convert)")))
	case n.NeedsRename():
		a.interactor.Output(fmt.Sprintf("%s%s -> %s", indent, n.DisplayText, color.Green.Sprint(n.ProposedName)))
	default:
		a.interactor.Output(indent + n.DisplayText)
	}
}
