package oracle

import (
	"encoding/json"
	"strings"
	"text/template"
)

// NewAddress extracts a mailing address and reformats it onto one line.
func NewAddress(c Completer) *Chain {
	return &Chain{
		name:      "address",
		sentinel:  NoAddress,
		stages:    []*template.Template{addressExtractPrompt, addressFormatPrompt},
		completer: c,
		finish:    formatAddress,
	}
}

// NewPhone extracts a phone number formatted as (###) ###-####.
func NewPhone(c Completer) *Chain {
	return &Chain{
		name:      "phone",
		sentinel:  NoPhone,
		stages:    []*template.Template{phoneExtractPrompt, phoneFormatPrompt},
		completer: c,
	}
}

// NewEmail extracts a contact email address.
func NewEmail(c Completer) *Chain {
	return &Chain{
		name:      "email",
		sentinel:  NoEmail,
		stages:    []*template.Template{emailExtractPrompt, emailFormatPrompt},
		completer: c,
	}
}

// Address is the structured answer of the address format stage.
type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

// Line renders the address as "street, city, state zip".
func (a Address) Line() string {
	var parts []string
	for _, p := range []string{a.Street, a.City} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if tail := strings.TrimSpace(strings.TrimSpace(a.State) + " " + strings.TrimSpace(a.Zip)); tail != "" {
		parts = append(parts, tail)
	}
	return strings.Join(parts, ", ")
}

func (a Address) complete() bool {
	for _, p := range []string{a.Street, a.City, a.State, a.Zip} {
		if strings.TrimSpace(p) == "" || IsSentinel(p, NoAddress) {
			return false
		}
	}
	return true
}

// formatAddress turns the format stage answer into a single line. Structured
// answers missing a component are rejected, plain text is passed through.
func formatAddress(answer string) string {
	raw := stripFences(answer)
	if !strings.HasPrefix(raw, "{") {
		return raw
	}
	var addr Address
	if err := json.Unmarshal([]byte(raw), &addr); err != nil {
		return raw
	}
	if !addr.complete() {
		return NoAddress
	}
	return addr.Line()
}
