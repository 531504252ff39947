package main

import (
	"fmt"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/filename-repairer/fnr/codepage"
)

func newEncodingsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "encodings",
		Short: "List the code pages available for bulk repair",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			locale := a.localeSource().Locale()
			def := codepage.DefaultEncodingForLocale(locale)
			for _, e := range codepage.Selectable() {
				if e.ID != def {
					a.interactor.Output(fmt.Sprintf("  %-8s %s", e.ID, e.Label))
					continue
				}
				a.interactor.Output(color.Bold.Sprintf("* %-8s %s", e.ID, e.Label) +
					color.Cyan.Sprintf("  (default for %s)", locale))
			}
		},
	}
}
