package models

import "testing"

func TestSettersNeverClear(t *testing.T) {
	c := NewContractor("acme", "", "https://acme.com")
	c.SetPhone("(555) 123-4567")
	c.SetPhone("   ")
	if c.Phone != "(555) 123-4567" {
		t.Errorf("Phone = %q, blank value should not clear it", c.Phone)
	}

	c.Setter(FieldEmail)("info@acme.com")
	if c.Email != "info@acme.com" {
		t.Errorf("Email = %q", c.Email)
	}

	missing := c.Missing()
	if len(missing) != 1 || missing[0] != FieldAddress {
		t.Errorf("Missing() = %v, want [address]", missing)
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"acme   roofing  co", "Acme Roofing Co"},
		{"  BOB'S builders ", "Bob's Builders"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeTitle(tt.in); got != tt.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAddServiceDeduplicates(t *testing.T) {
	c := &Contractor{}
	c.AddService("Roofing")
	c.AddService("roofing")
	c.AddService("Framing")
	if len(c.Services) != 2 {
		t.Errorf("Services = %v, want 2 entries", c.Services)
	}
}

func TestSiteMapPages(t *testing.T) {
	sm := SiteMap{Contact: "https://a.com/contact"}
	pages := sm.Pages()
	if len(pages) != 1 || pages[0] != "https://a.com/contact" {
		t.Errorf("Pages() = %v", pages)
	}
}

func TestNormalizeNewlines(t *testing.T) {
	c := NewContractor("acme", "one\r\ntwo\rthree", "https://acme.com")
	if c.Description != "one\ntwo\nthree" {
		t.Errorf("Description = %q", c.Description)
	}
	c.SetEmail("info@acme.com\r\n")
	if c.Email != "info@acme.com" {
		t.Errorf("Email = %q", c.Email)
	}
}
