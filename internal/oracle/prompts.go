package oracle

import "text/template"

var (
	addressExtractPrompt = template.Must(template.New("address-extract").Parse(
		`You will be given part of the HTML of a construction company website.

Content: ` + "```{{.Input}}```" + `

What is the mailing address of the company? Reply with the address only.
If several addresses appear, reply with the first one only.
If the content holds no mailing address, reply with 'no address' and nothing else.`))

	addressFormatPrompt = template.Must(template.New("address-format").Parse(
		`You will be given text that should be a mailing address.

Text: {{.Input}}

If this is not one specific mailing address, reply with 'no address' and nothing else.
Otherwise reply with a single JSON object with the string keys "street", "city", "state" and "zip", and nothing else.`))

	phoneExtractPrompt = template.Must(template.New("phone-extract").Parse(
		`You will be given part of the HTML of a construction company website.

Content: ` + "```{{.Input}}```" + `

What is the phone number of the company? Reply with the phone number only.
If several phone numbers appear, reply with the first one only.
If the content holds no phone number, reply with 'no phone number' and nothing else.`))

	phoneFormatPrompt = template.Must(template.New("phone-format").Parse(
		`You will be given text that should be a phone number.

Text: {{.Input}}

If this is not one specific phone number, reply with 'no phone number' and nothing else.
Otherwise reply with the number formatted as (###) ###-#### and nothing else.`))

	emailExtractPrompt = template.Must(template.New("email-extract").Parse(
		`You will be given part of the HTML of a construction company website.

Content: ` + "```{{.Input}}```" + `

What is the contact email address of the company? Reply with the email address only.
If several email addresses appear, reply with the first one only.
If the content holds no email address, reply with 'no email address' and nothing else.`))

	emailFormatPrompt = template.Must(template.New("email-format").Parse(
		`You will be given text that should be an email address.

Text: {{.Input}}

If this is not one specific email address, reply with 'no email address' and nothing else.
Otherwise reply with the properly formatted email address and nothing else.`))

	siteMapPrompt = template.Must(template.New("sitemap").Parse(
		`You will be given the links found on the homepage of a construction company website.

Homepage: {{.Homepage}}
Links:
{{range .Links}}- {{.}}
{{end}}
Which link is the company's "About" page and which is its "Contact" page?
Reply with a single JSON object with the keys "about" and "contact" holding a full URL from the list.
Use an empty string for a page you cannot identify with confidence. Reply with the JSON object only.`))

	explainPrompt = template.Must(template.New("explain").Parse(
		`You will be given the title, URL and description of a search result.

Title: {{.Title}}
URL: {{.URL}}
Description: {{.Description}}

Explain in one sentence what this page is about.
Does it directly represent the website of a construction contractor company?`))

	decidePrompt = template.Must(template.New("decide").Parse(
		`Given an explanation of a search result, decide whether it directly represents
the website of a construction contractor company.
Reply with 'contractor' if it does, and 'not contractor' if it does not.

{{.Input}}`))

	namePrompt = template.Must(template.New("name").Parse(
		`You will be given the title, description and URL of a company website.

Title: {{.Title}}
Description: {{.Description}}
URL: {{.URL}}

Infer the name of the company. Reply with the company name only.`))
)
