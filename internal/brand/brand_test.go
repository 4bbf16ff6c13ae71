package brand_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"kontenai/internal/brand"
)

func validDNA() brand.DNA {
	return brand.DNA{
		Niche:          "Specialty coffee",
		TargetAudience: "Young professionals who work remotely",
		PainPoints:     "Cannot find good coffee near home offices",
		Solutions:      "Subscription beans delivered every two weeks",
		Values:         "Quality, honesty, craft",
		ContentStyle:   []brand.ContentStyle{brand.StyleEducational},
		ContentTone:    []brand.ContentTone{brand.ToneFriendly},
		Platforms:      []brand.Platform{brand.PlatformInstagram, brand.PlatformThreads},
	}
}

func TestValidateAcceptsCompleteRecord(t *testing.T) {
	if err := brand.Validate(validDNA()); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
}

func TestValidateReportsEveryFailingField(t *testing.T) {
	dna := validDNA()
	dna.TargetAudience = "short"
	dna.ContentStyle = []brand.ContentStyle{"vlog"}
	dna.Platforms = nil

	err := brand.Validate(dna)
	var verr *brand.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T (%v)", err, err)
	}
	if !errors.Is(err, brand.ErrInvalid) {
		t.Fatal("expected error to wrap ErrInvalid")
	}
	for _, field := range []string{"targetAudience", "contentStyle", "platforms"} {
		if !verr.Has(field) {
			t.Fatalf("expected field %q in %v", field, verr)
		}
	}
	if verr.Has("values") {
		t.Fatalf("did not expect values failure: %v", verr)
	}
}

func TestValidateCountsRunesNotBytes(t *testing.T) {
	dna := validDNA()
	dna.Values = strings.Repeat("é", 9)
	if err := brand.Validate(dna); err == nil {
		t.Fatal("expected nine-rune value to fail")
	}
}

func TestSanitizeStripsUnknownTagsOnly(t *testing.T) {
	dna := validDNA()
	dna.ContentStyle = []brand.ContentStyle{"Educational", "vlog", brand.StyleStorytelling}
	dna.Platforms = []brand.Platform{"instagram", "MySpace"}

	cleaned, dropped := brand.Sanitize(dna)

	want := validDNA()
	want.ContentStyle = []brand.ContentStyle{brand.StyleEducational, brand.StyleStorytelling}
	want.Platforms = []brand.Platform{brand.PlatformInstagram}
	if diff := cmp.Diff(want, cleaned); diff != "" {
		t.Fatalf("sanitized record mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"contentStyle:vlog", "platforms:MySpace"}, dropped); diff != "" {
		t.Fatalf("dropped tags mismatch (-want +got):\n%s", diff)
	}
	if err := brand.Validate(cleaned); err != nil {
		t.Fatalf("sanitized record should validate: %v", err)
	}
}

func TestSanitizeDoesNotAliasInput(t *testing.T) {
	dna := validDNA()
	cleaned, _ := brand.Sanitize(dna)
	cleaned.Platforms[0] = brand.PlatformX
	if dna.Platforms[0] != brand.PlatformInstagram {
		t.Fatal("Sanitize must not share slices with its input")
	}
}

func TestParseTagsCaseInsensitive(t *testing.T) {
	if p, err := brand.ParsePlatform("tiktok"); err != nil || p != brand.PlatformTikTok {
		t.Fatalf("ParsePlatform: got %q, %v", p, err)
	}
	if s, err := brand.ParseContentStyle(" INSPIRATIONAL "); err != nil || s != brand.StyleInspirational {
		t.Fatalf("ParseContentStyle: got %q, %v", s, err)
	}
	if _, err := brand.ParseContentTone("sarcastic"); err == nil {
		t.Fatal("expected unknown tone to fail")
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "  Acme  ", want: "Acme"},
		{in: "ab", wantErr: true},
		{in: strings.Repeat("x", 51), wantErr: true},
		{in: strings.Repeat("x", 50), want: strings.Repeat("x", 50)},
	}
	for _, tt := range tests {
		got, err := brand.NormalizeName(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("NormalizeName(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("NormalizeName(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestNameKeyFoldsCase(t *testing.T) {
	if brand.NameKey("Acme Coffee") != brand.NameKey("  aCME coffee ") {
		t.Fatal("expected names to share a key")
	}
	if brand.NameKey("Acme") == brand.NameKey("Acme (Copy)") {
		t.Fatal("expected distinct keys")
	}
}

func TestMergeSuggestions(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"values empty", brand.MergeValues("", "Kejujuran"), "Kejujuran"},
		{"values append", brand.MergeValues("Quality", "Craft"), "Quality, Craft"},
		{"values trailing comma", brand.MergeValues("Quality,", "Craft"), "Quality, Craft"},
		{"solutions empty", brand.MergeSolutions("  ", "Deliver weekly"), "Deliver weekly"},
		{"solutions append", brand.MergeSolutions("Deliver weekly", "Offer refills"), "Deliver weekly\n\nOffer refills"},
		{"empty suggestion", brand.MergeValues("Quality", " "), "Quality"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Fatalf("%s: got %q want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestSuggestionGates(t *testing.T) {
	dna := validDNA()
	if !brand.CanSuggestSolution(dna) || !brand.CanSuggestValues(dna) {
		t.Fatal("expected complete record to allow suggestions")
	}
	dna.Solutions = "too short"
	if brand.CanSuggestValues(dna) {
		t.Fatal("expected short solution to block values suggestion")
	}
	dna.PainPoints = "short pain"
	if brand.CanSuggestSolution(dna) {
		t.Fatal("expected short pain point to block solution suggestion")
	}
}
