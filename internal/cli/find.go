package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/law-makers/contractors/internal/ui"
	"github.com/law-makers/contractors/pkg/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var findCmd = &cobra.Command{
	Use:   "find [terms...]",
	Short: "Search for contractors, crawl their sites and store the results",
	Long: `Runs each search term through the web search API, keeps the results a language
model classifies as contractor websites, then crawls every new site for its
address, phone number and email address.

Terms default to the "search.terms" list of the config file. Contractors already
stored are skipped. Results are saved after every page of search results, so an
interrupted run keeps what it found.`,
	Example: `  # Search a single term
  contractors find "roofing contractor denver"

  # Use the terms from the config file with at most 4 concurrent crawls
  contractors find --concurrency 4`,
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	a, err := requireApp(cmd)
	if err != nil {
		return err
	}

	terms := args
	if len(terms) == 0 {
		terms = a.Config.Terms
	}
	if len(terms) == 0 {
		return fmt.Errorf("no search terms: pass them as arguments or set search.terms in the config file")
	}

	bar := newProgress(a, -1, "Crawling contractor sites")
	agg, err := a.NewAggregator(func(c *models.Contractor) {
		_ = bar.Add(1)
	})
	if err != nil {
		return err
	}
	before := len(agg.Contractors())

	handler, err := a.NewSearchHandler(func(ctx context.Context, contractors []*models.Contractor) error {
		return agg.Handle(ctx, contractors)
	})
	if err != nil {
		return err
	}

	runErr := handler.Run(cmd.Context(), terms)
	_ = bar.Finish()
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	if errors.Is(runErr, context.Canceled) {
		log.Warn().Msg("Interrupted, keeping results found so far")
		if err := agg.Save(); err != nil {
			return err
		}
	}

	total := len(agg.Contractors())
	fmt.Println(ui.Success(fmt.Sprintf("✓ %d new contractors (%d stored)", total-before, total)))
	if n := agg.Incomplete(); n > 0 {
		fmt.Println(ui.Info(fmt.Sprintf("  %d are missing fields; run `contractors crawl` to retry them", n)))
	}
	fmt.Printf("  %s %s\n", ui.Bold("Results:"), a.Store.Path())
	return nil
}
