package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/law-makers/contractors/internal/ui"
	urlutil "github.com/law-makers/contractors/internal/utils/url"
	"github.com/law-makers/contractors/pkg/models"
	"github.com/spf13/cobra"
)

var crawlTitle string

var crawlCmd = &cobra.Command{
	Use:   "crawl [url]",
	Short: "Crawl one site, or retry stored contractors with missing fields",
	Long: `With a URL, crawls that site's homepage and its about and contact pages and
prints the fields found. Nothing is stored.

Without arguments, re-crawls every stored contractor that is missing a phone
number, email address or address, looking only for the missing fields.`,
	Example: `  # Inspect what the crawler finds on one site
  contractors crawl https://example-roofing.com

  # Retry incomplete stored contractors
  contractors crawl`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)
	crawlCmd.Flags().StringVar(&crawlTitle, "title", "", "Company name to log the crawl under")
}

func runCrawl(cmd *cobra.Command, args []string) error {
	a, err := requireApp(cmd)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		bar := newProgress(a, -1, "Re-crawling incomplete contractors")
		agg, err := a.NewAggregator(func(*models.Contractor) { _ = bar.Add(1) })
		if err != nil {
			return err
		}
		if err := agg.Recrawl(cmd.Context()); err != nil {
			return err
		}
		_ = bar.Finish()
		fmt.Println(ui.Success(fmt.Sprintf("✓ %d contractors still incomplete", agg.Incomplete())))
		return nil
	}

	if err := urlutil.ValidateURL(args[0]); err != nil {
		return err
	}
	homepage, err := urlutil.StripURL(args[0])
	if err != nil {
		return err
	}
	title := crawlTitle
	if title == "" {
		title = urlutil.Host(homepage)
	}

	c := models.NewContractor(title, "", homepage)
	a.Crawler.Crawl(cmd.Context(), c)

	if a.Config.JSONLog {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	}
	printContractor(c)
	return nil
}

func printContractor(c *models.Contractor) {
	fmt.Printf("\n%s\n", ui.Bold(c.Title))
	fmt.Printf("  %-9s %s\n", "URL:", c.URL)
	for _, kind := range models.AllFields() {
		value := c.Field(kind)
		if value == "" {
			value = ui.ColorDim + "not found" + ui.ColorReset
		}
		fmt.Printf("  %-9s %s\n", kind.String()+":", value)
	}
	fmt.Println()
}
