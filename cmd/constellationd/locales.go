package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emotion-constellation/constellation-core/internal/dataset"
)

func localesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locales",
		Short: "List supported dataset locales",
		Run: func(cmd *cobra.Command, args []string) {
			for _, l := range dataset.SupportedLocales {
				code := l.Code
				if code == dataset.DefaultLocale {
					code += "*"
				}
				fmt.Printf("  %s %-16s %s\n", brand.Sprintf("%-6s", code), l.Label, subtle.Sprint(l.NativeLabel))
			}
		},
	}
}
