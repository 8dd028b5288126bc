package cli

import (
	"fmt"
	"strings"

	"github.com/law-makers/contractors/internal/fetch"
	"github.com/law-makers/contractors/internal/ui"
	"github.com/law-makers/contractors/internal/utils/output"
	urlutil "github.com/law-makers/contractors/internal/utils/url"
	"github.com/spf13/cobra"
)

var (
	inspectFormat  string
	inspectSiteMap bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <url>",
	Short: "Print a page the way the crawler sees it",
	Long: `Fetches a page with the crawler's fetcher and prints its sanitized body as
HTML, Markdown or plain text. Useful when tuning prompts or checking why a field
was not found. With --sitemap, also asks the model for the site's about and
contact pages.`,
	Example: `  contractors inspect https://example-roofing.com --format markdown
  contractors inspect https://example-roofing.com --sitemap`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVarP(&inspectFormat, "format", "f", "text", "Output format: html, markdown or text")
	inspectCmd.Flags().BoolVar(&inspectSiteMap, "sitemap", false, "Also identify the about and contact pages")
}

func runInspect(cmd *cobra.Command, args []string) error {
	a, err := requireApp(cmd)
	if err != nil {
		return err
	}
	url := args[0]
	if err := urlutil.ValidateURL(url); err != nil {
		return err
	}

	page, err := a.Fetcher.Fetch(cmd.Context(), url)
	if err != nil {
		return err
	}

	var body string
	switch strings.ToLower(inspectFormat) {
	case "html":
		body = page.HTML
	case "markdown", "md":
		body, err = output.PageMarkdown(page)
	case "text", "txt":
		body, err = fetch.Text(page)
	default:
		return fmt.Errorf("invalid format: %s (must be html, markdown or text)", inspectFormat)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%s %d, %dms, rendered=%t\n", ui.Bold(page.URL), page.StatusCode, page.ResponseTime, page.Rendered)
	fmt.Println(body)

	if inspectSiteMap {
		sm, err := a.SiteMap.Discover(cmd.Context(), url)
		if err != nil {
			return err
		}
		fmt.Printf("\n%s\n  about:   %s\n  contact: %s\n", ui.Bold("Site map"), orNone(sm.About), orNone(sm.Contact))
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return ui.ColorDim + "none" + ui.ColorReset
	}
	return s
}
