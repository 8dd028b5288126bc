package fetch

import (
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestSanitize_RemovesNonContentTags(t *testing.T) {
	raw := `<html><head><meta charset="utf-8"></head><body>
		<nav><a href="/about">About</a></nav>
		<svg><path d="M0"/></svg>
		<label>Name</label><select><option>1</option></select>
		<footer><p>Call <b>(555) 123-4567</b></p></footer>
	</body></html>`

	out, err := Sanitize(raw)
	if err != nil {
		t.Fatalf("Sanitize() error = %v", err)
	}
	for _, gone := range []string{"<svg", "<label", "<select", "<option", "<meta"} {
		if strings.Contains(out, gone) {
			t.Errorf("%s not removed: %s", gone, out)
		}
	}
	for _, kept := range []string{"<nav>", `href="/about"`, "<footer>", "(555) 123-4567"} {
		if !strings.Contains(out, kept) {
			t.Errorf("%s missing: %s", kept, out)
		}
	}
}

func TestSanitize_EmptyBody(t *testing.T) {
	if _, err := Sanitize(`<html><body><noscript>enable js</noscript></body></html>`); !errors.Is(err, ErrEmptyBody) {
		t.Errorf("Sanitize() error = %v, want ErrEmptyBody", err)
	}
}

func TestStripAttributes(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<body class="x"><p style="color:red" id="a">hi <a href="/c" title="t">c</a></p></body>`))
	if err != nil {
		t.Fatal(err)
	}
	StripAttributes(doc.Selection)

	html, _ := doc.Find("body").Html()
	if html != `<p>hi <a>c</a></p>` {
		t.Errorf("StripAttributes() left %q", html)
	}
	if _, ok := doc.Find("body").Attr("class"); ok {
		t.Error("body attributes not stripped")
	}
}

func TestNeedsJavaScript(t *testing.T) {
	shell := `<html><body><div id="app"></div><script src="/main.js"></script></body></html>`
	if !NeedsJavaScript(shell, "") {
		t.Error("Expected app shell to need JavaScript")
	}

	static := `<html><body><p>hello</p></body></html>`
	if NeedsJavaScript(static, "hello") {
		t.Error("Page without scripts should not need JavaScript")
	}

	if got := DetectFramework(`<div data-reactroot="">`); got != "react" {
		t.Errorf("DetectFramework() = %q, want react", got)
	}
}
