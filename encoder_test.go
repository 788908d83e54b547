package twine

import "testing"

func TestEncoders(t *testing.T) {
	cases := []struct {
		name string
		enc  Encoder
		in   string
		want string
	}{
		{"Identity", Identity, "  Jon  Smith ", "  Jon  Smith "},
		{"Strip", Strip, "  Jon \t Smith ", "Jon Smith"},
		{"LowStrip", LowStrip, "  JON  Smith ", "jon smith"},
		{"NoSpace", NoSpace, " Jon  Smith ", "JonSmith"},
		{"Digits", Digits, "+27 (0)21-555 1234", "270215551234"},
		{"SortedWords", SortedWords, "Smith John", "John Smith"},
		{"TokenSort", TokenSort, "Smith, John", "John Smith"},
		{"Reverse", Reverse, "abc", "cba"},
		{"URLDomain", URLDomain, "https://www.example.com/about", "example.com"},
		{"URLDomainBare", URLDomain, "example.com/x", "example.com"},
		{"EmailDomain", EmailDomain, "jon@example.com", "example.com"},
		{"EmailDomainNone", EmailDomain, "not-an-email", "not-an-email"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.enc(tc.in); got != tc.want {
				t.Errorf("%s(%q) = %q, want %q", tc.name, tc.in, got, tc.want)
			}
		})
	}
}

func TestNFKCFoldsCompatibilityForms(t *testing.T) {
	// Full-width latin letters fold to their ASCII forms
	if got := NFKC("Ｊｏｎ"); got != "Jon" {
		t.Errorf("NFKC full-width = %q, want Jon", got)
	}
}

func TestTokenSortMatchesReorderedNames(t *testing.T) {
	a := TokenSort("Smith, John A.")
	b := TokenSort("John A. Smith")
	if a != b {
		t.Errorf("TokenSort not order-insensitive: %q vs %q", a, b)
	}
}

func TestChainComposesLeftToRight(t *testing.T) {
	enc := Chain(LowStrip, Reverse)
	if got := enc("  ABC "); got != "cba" {
		t.Errorf("Chain(LowStrip, Reverse) = %q, want cba", got)
	}
}
