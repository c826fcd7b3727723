package phone

import "testing"

func TestDigits(t *testing.T) {
	cases := map[string]string{
		"+55 (11) 91234-5678": "5511912345678",
		"11 91234-5678":       "11912345678",
		"":                    "",
		"abc":                 "",
	}

	for input, want := range cases {
		if got := Digits(input); got != want {
			t.Errorf("Digits(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSuffix(t *testing.T) {
	// Same subscriber with and without country code must share a suffix.
	withCountry := Suffix("+55 11 91234-5678")
	without := Suffix("11 91234-5678")
	if withCountry == "" || withCountry != without {
		t.Fatalf("suffixes differ: %q vs %q", withCountry, without)
	}
	if withCountry != "12345678" {
		t.Errorf("Suffix = %q, want 12345678", withCountry)
	}

	if got := Suffix("1234567"); got != "" {
		t.Errorf("short numbers must not produce a suffix, got %q", got)
	}
}

func TestNormalizeE164KeepsUnparseableInput(t *testing.T) {
	if got := NormalizeE164("  not-a-number "); got != "not-a-number" {
		t.Errorf("NormalizeE164 = %q", got)
	}
	if got := NormalizeE164(""); got != "" {
		t.Errorf("NormalizeE164 empty = %q", got)
	}
}
