package fetch

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// strippedTags are removed from every document before analysis. None of them
// carry contact text, and most are noise for the classifier.
var strippedTags = []string{
	"script", "img", "style", "svg", "video", "audio", "picture", "iframe",
	"i", "source", "noscript", "link", "meta", "head", "canvas", "button",
	"form", "input", "textarea", "select", "option", "label", "fieldset",
	"legend", "datalist", "optgroup", "keygen", "output", "progress", "meter",
}

var strippedSelector = strings.Join(strippedTags, ", ")

// Sanitize reduces raw markup to its <body> element with non-content tags removed.
// Attributes are kept so that anchors remain usable.
func Sanitize(raw string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", err
	}

	body := doc.Find("body").First()
	if body.Length() == 0 {
		return "", ErrEmptyBody
	}

	body.Find(strippedSelector).Remove()

	if body.Children().Length() == 0 && strings.TrimSpace(body.Text()) == "" {
		return "", ErrEmptyBody
	}

	out, err := goquery.OuterHtml(body)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// StripAttributes removes every attribute from the selection and its descendants.
func StripAttributes(sel *goquery.Selection) {
	for _, root := range sel.Nodes {
		stripNode(root)
	}
}

func stripNode(n *html.Node) {
	if n.Type == html.ElementNode {
		n.Attr = nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		stripNode(c)
	}
}
