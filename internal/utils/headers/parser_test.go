package headers

import (
	"reflect"
	"testing"
)

func TestParseHeaders(t *testing.T) {
	in := []string{"user-agent: Bot", "Accept: text/html", "X-Token:a:b"}
	out, err := ParseHeaders(in)
	if err != nil {
		t.Fatalf("ParseHeaders() error = %v", err)
	}
	expected := map[string]string{"User-Agent": "Bot", "Accept": "text/html", "X-Token": "a:b"}
	if !reflect.DeepEqual(out, expected) {
		t.Fatalf("unexpected parse result: %#v", out)
	}
}

func TestParseHeadersRejectsMalformed(t *testing.T) {
	for _, bad := range []string{"BadHeader", ": value"} {
		if _, err := ParseHeaders([]string{bad}); err == nil {
			t.Errorf("ParseHeaders(%q) expected error", bad)
		}
	}
}
