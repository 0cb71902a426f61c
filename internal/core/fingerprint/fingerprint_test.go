package fingerprint

import "testing"

func TestFingerprintKnownValues(t *testing.T) {
	cases := []struct {
		name        string
		description string
		want        string
	}{
		{"A", "B", "66375"},
		{"A", "C", "66376"},
		{"", "", "124"},
		{"Color", "mentions of color", "1527767512"},
		{"CBRN risks", "References CBRN (Chemical, Biological, Radiological, Nuclear) risks.", "1097676684"},
		{"Café", "naïve — résumé", "484520721"},
		{"😀", "x", "1703759903"},
		{"\uFEFFA", "B", "66375"},
		{"\u0085A", "B", "4028578"},
		{"A\u3000", "B\u2028", "66375"},
	}
	for _, tc := range cases {
		if got := Fingerprint(tc.name, tc.description); got != tc.want {
			t.Fatalf("Fingerprint(%q, %q) = %s, want %s", tc.name, tc.description, got, tc.want)
		}
	}
}

func TestFingerprintIsDeterministic(t *testing.T) {
	first := Fingerprint("Risk", "mentions of risk")
	for i := 0; i < 10; i++ {
		if got := Fingerprint("Risk", "mentions of risk"); got != first {
			t.Fatalf("expected stable fingerprint %s, got %s", first, got)
		}
	}
}

func TestFingerprintTrimsSurroundingWhitespace(t *testing.T) {
	if Fingerprint("  Color ", "mentions of color  ") != Fingerprint("Color", "mentions of color") {
		t.Fatalf("expected surrounding whitespace to be ignored")
	}
}

func TestFingerprintChangesWithContent(t *testing.T) {
	base := Fingerprint("Color", "mentions of color")
	if Fingerprint("Colour", "mentions of color") == base {
		t.Fatalf("expected name change to change fingerprint")
	}
	if Fingerprint("Color", "mentions of colour") == base {
		t.Fatalf("expected description change to change fingerprint")
	}
}

func TestTrimMatchesECMAScriptWhitespace(t *testing.T) {
	cases := map[string]string{
		"\uFEFF tag \u00A0": "tag",
		"\u0085tag\u0085":   "\u0085tag\u0085",
		"\u2029tag\u205F":   "tag",
		"\t\r\ntag\v\f":     "tag",
	}
	for in, want := range cases {
		if got := Trim(in); got != want {
			t.Fatalf("Trim(%q) = %q, want %q", in, got, want)
		}
	}
}
