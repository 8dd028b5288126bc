package output

import (
	"io"
	"strconv"
	"time"

	"github.com/law-makers/contractors/pkg/models"
	"github.com/nao1215/markdown"
)

// WriteReport renders contractors as a Markdown document: a coverage summary
// followed by one section per contractor listing the fields that were found.
func WriteReport(w io.Writer, contractors []*models.Contractor, generated time.Time) error {
	doc := markdown.NewMarkdown(w)

	doc.H1("Contractors")
	doc.PlainText("")
	writeSummary(doc, contractors, generated)

	for _, c := range contractors {
		doc.H2(c.Title)
		doc.PlainText("")
		doc.BulletList(details(c)...)
		doc.PlainText("")
	}

	return doc.Build()
}

func writeSummary(doc *markdown.Markdown, contractors []*models.Contractor, generated time.Time) {
	var phones, emails, addresses, complete int
	for _, c := range contractors {
		if c.Phone != "" {
			phones++
		}
		if c.Email != "" {
			emails++
		}
		if c.Address != "" {
			addresses++
		}
		if len(c.Missing()) == 0 {
			complete++
		}
	}

	doc.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated", generated.Format("2006-01-02 15:04:05 MST")},
			{"Contractors", strconv.Itoa(len(contractors))},
			{"With phone", strconv.Itoa(phones)},
			{"With email", strconv.Itoa(emails)},
			{"With address", strconv.Itoa(addresses)},
			{"Complete", strconv.Itoa(complete)},
		},
	})
	doc.PlainText("")
}

func details(c *models.Contractor) []string {
	items := []string{"URL: " + c.URL}
	if c.Description != "" {
		items = append(items, "Description: "+c.Description)
	}
	if c.Phone != "" {
		items = append(items, "Phone: "+c.Phone)
	}
	if c.Email != "" {
		items = append(items, "Email: "+c.Email)
	}
	if c.Address != "" {
		items = append(items, "Address: "+c.Address)
	}
	return items
}
