package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/law-makers/contractors/internal/store"
	"github.com/law-makers/contractors/internal/ui"
	"github.com/law-makers/contractors/internal/utils/output"
	"github.com/law-makers/contractors/pkg/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	exportFormat   string
	exportOutput   string
	exportComplete bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the stored contractors as Markdown, JSON or CSV",
	Example: `  # Markdown report on stdout
  contractors export

  # JSON file with only fully populated contractors
  contractors export --format json --complete -o contractors.json`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: markdown, json or csv (default from --output extension, else markdown)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "File path to write (default stdout)")
	exportCmd.Flags().BoolVar(&exportComplete, "complete", false, "Only export contractors with every field found")
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := requireApp(cmd)
	if err != nil {
		return err
	}

	contractors, err := a.Store.Load()
	if err != nil {
		return err
	}
	if exportComplete {
		var complete []*models.Contractor
		for _, c := range contractors {
			if len(c.Missing()) == 0 {
				complete = append(complete, c)
			}
		}
		contractors = complete
	}

	format := exportFormat
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(exportOutput), ".")
	}

	var w io.Writer = os.Stdout
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch strings.ToLower(format) {
	case "", "md", "markdown":
		err = output.WriteReport(w, contractors, time.Now())
	case "json":
		err = output.WriteJSON(w, contractors)
	case "csv":
		err = store.WriteCSV(w, contractors)
	default:
		return fmt.Errorf("invalid format: %s (must be markdown, json or csv)", format)
	}
	if err != nil {
		return err
	}

	if exportOutput != "" {
		log.Info().Str("file", exportOutput).Int("contractors", len(contractors)).Msg("Export saved")
		fmt.Fprintln(cmd.ErrOrStderr(), ui.Success(fmt.Sprintf("✓ Saved %d contractors to %s", len(contractors), exportOutput)))
	}
	return nil
}
