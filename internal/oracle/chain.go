// Package oracle turns LLM completions into the narrow answers the crawler needs.
package oracle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
)

// Sentinel answers returned when a field is absent from the input.
const (
	NoAddress = "no address"
	NoPhone   = "no phone number"
	NoEmail   = "no email address"
)

// ErrAmbiguous is returned when a decision answer matches neither option.
var ErrAmbiguous = errors.New("ambiguous classifier output")

// Completer answers a prompt. llm.Client implements it.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type stageInput struct {
	Input string
}

// Chain runs prompt stages in order, feeding each answer into the next stage.
// A stage answering with the sentinel ends the chain early.
type Chain struct {
	name      string
	sentinel  string
	stages    []*template.Template
	completer Completer
	finish    func(string) string
}

// Name returns the field the chain extracts.
func (c *Chain) Name() string {
	return c.name
}

// Sentinel returns the answer that means "not present".
func (c *Chain) Sentinel() string {
	return c.sentinel
}

// Classify runs the chain over content.
func (c *Chain) Classify(ctx context.Context, content string) (string, error) {
	input := content
	for _, stage := range c.stages {
		prompt, err := render(stage, stageInput{Input: input})
		if err != nil {
			return "", err
		}
		answer, err := c.completer.Complete(ctx, prompt)
		if err != nil {
			return "", err
		}
		answer = strings.TrimSpace(answer)
		if answer == "" || IsSentinel(answer, c.sentinel) {
			return c.sentinel, nil
		}
		input = answer
	}
	if c.finish != nil {
		return c.finish(input), nil
	}
	return input, nil
}

// IsSentinel reports whether answer contains the sentinel, ignoring case.
func IsSentinel(answer, sentinel string) bool {
	return strings.Contains(strings.ToLower(answer), strings.ToLower(sentinel))
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// stripFences removes a surrounding markdown code fence from a model answer.
func stripFences(answer string) string {
	answer = strings.TrimSpace(answer)
	if !strings.HasPrefix(answer, "```") {
		return answer
	}
	answer = strings.TrimPrefix(answer, "```")
	if i := strings.IndexByte(answer, '\n'); i >= 0 {
		answer = answer[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(answer), "```"))
}
