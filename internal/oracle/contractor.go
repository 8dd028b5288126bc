package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/law-makers/contractors/pkg/models"
)

// Contractor decides whether search results are contractor websites and
// names the company behind them.
type Contractor struct {
	completer Completer
}

// NewContractor creates a Contractor oracle.
func NewContractor(c Completer) *Contractor {
	return &Contractor{completer: c}
}

// IsContractor first has the model explain the result, then decide from the explanation.
func (o *Contractor) IsContractor(ctx context.Context, result models.SearchResult) (bool, error) {
	prompt, err := render(explainPrompt, result)
	if err != nil {
		return false, err
	}
	explanation, err := o.completer.Complete(ctx, prompt)
	if err != nil {
		return false, err
	}

	prompt, err = render(decidePrompt, stageInput{Input: explanation})
	if err != nil {
		return false, err
	}
	decision, err := o.completer.Complete(ctx, prompt)
	if err != nil {
		return false, err
	}
	return ParseDecision(decision)
}

// ParseDecision maps a decision answer to a boolean. "not contractor" is
// checked first because it contains "contractor".
func ParseDecision(answer string) (bool, error) {
	lower := strings.ToLower(answer)
	switch {
	case strings.Contains(lower, "not contractor"):
		return false, nil
	case strings.Contains(lower, "contractor"):
		return true, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrAmbiguous, answer)
	}
}

// ExtractName infers the company name from a search result.
func (o *Contractor) ExtractName(ctx context.Context, result models.SearchResult) (string, error) {
	prompt, err := render(namePrompt, result)
	if err != nil {
		return "", err
	}
	name, err := o.completer.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	name = strings.Trim(strings.TrimSpace(name), `"'`)
	if name == "" {
		return "", fmt.Errorf("%w: empty company name", ErrAmbiguous)
	}
	return name, nil
}
