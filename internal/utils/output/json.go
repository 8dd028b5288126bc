package output

import (
	"encoding/json"
	"io"

	"github.com/law-makers/contractors/pkg/models"
)

// WriteJSON writes contractors as an indented JSON array.
func WriteJSON(w io.Writer, contractors []*models.Contractor) error {
	if contractors == nil {
		contractors = []*models.Contractor{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(contractors)
}
