package main

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/emotion-constellation/constellation-core/internal/dataset"
	"github.com/emotion-constellation/constellation-core/pkg/models"
)

var (
	brand  = color.New(color.FgCyan, color.Bold)
	good   = color.New(color.FgGreen)
	warn   = color.New(color.FgYellow)
	subtle = color.New(color.FgHiBlack)
)

func validateCmd(opts *rootOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a dataset and print a summary of its graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			loader := dataset.NewLoader(cfg.Dataset.Dir)

			locales := []string{cfg.Dataset.Locale}
			if all {
				locales = locales[:0]
				for _, l := range dataset.SupportedLocales {
					locales = append(locales, l.Code)
				}
			}

			var failed int
			for _, locale := range locales {
				ds, err := loader.Load(locale)
				if err != nil {
					fmt.Printf("  %s %-6s %v\n", warn.Sprint("✗"), locale, err)
					failed++
					continue
				}
				if ds.Locale != locale {
					fmt.Printf("  %s %-6s %s\n", subtle.Sprint("-"), locale, subtle.Sprintf("missing, falls back to %s", ds.Locale))
					continue
				}
				report(ds)
			}
			if failed > 0 {
				return fmt.Errorf("%d dataset(s) failed validation", failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "validate every supported locale")
	return cmd
}

func report(ds *dataset.Dataset) {
	g := ds.Graph
	fmt.Printf("  %s %-6s %s\n", good.Sprint("✓"), ds.Locale, subtle.Sprint(ds.Path))
	fmt.Printf("    %s %d\n", brand.Sprintf("%-10s", "needs"), len(g.Needs))
	fmt.Printf("    %s %d (%d bridges)\n", brand.Sprintf("%-10s", "emotions"), len(g.Emotions), countBridges(g))

	for _, n := range g.Needs {
		fmt.Printf("      %-14s %d emotions\n", n.ID, len(g.EmotionsLinkedTo(n.ID)))
	}

	unresolved := g.UnresolvedLinks()
	sort.Strings(unresolved)
	for _, u := range unresolved {
		fmt.Printf("    %s %s\n", warn.Sprint("!"), u)
	}
}

func countBridges(g *models.Constellation) int {
	var n int
	for _, e := range g.Emotions {
		if e.IsBridge() {
			n++
		}
	}
	return n
}
