package match

import (
	"testing"

	"github.com/hollydays/wishlist-backend/pkg/db/models"
)

func strPtr(s string) *string {
	return &s
}

func TestSimilarURLMatch(t *testing.T) {
	t.Parallel()

	a := models.GiftItem{Name: "Fancy Espresso Machine", URL: strPtr("http://Example.com/espresso/")}
	b := models.GiftItem{Name: "completely different name", URL: strPtr("http://example.com/espresso")}

	if !Similar(a, b, AddFlowProfile()) {
		t.Fatal("expected url match to win regardless of names")
	}
	if !Similar(b, a, AddFlowProfile()) {
		t.Fatal("expected url match to be symmetric")
	}
	if !Similar(a, b, ConversionProfile()) {
		t.Fatal("expected url match to apply in the conversion profile too")
	}
}

func TestSimilarURLRequiresBothPresent(t *testing.T) {
	t.Parallel()

	a := models.GiftItem{Name: "red mittens", URL: strPtr("http://example.com/mittens")}
	b := models.GiftItem{Name: "blue hat"}

	if Similar(a, b, AddFlowProfile()) {
		t.Fatal("expected no match when only one item has a url")
	}
}

func TestSimilarNameRatio(t *testing.T) {
	t.Parallel()

	a := models.GiftItem{Name: "Nintendo Switch Console"}
	b := models.GiftItem{Name: "nintendo switch console "}

	if !Similar(a, b, AddFlowProfile()) {
		t.Fatal("expected case/whitespace insensitive name match")
	}
	if !Similar(a, b, ConversionProfile()) {
		t.Fatal("expected identical names to clear the strict threshold")
	}
}

func TestSimilarNameRatioNearDuplicates(t *testing.T) {
	t.Parallel()

	// A plural variant shares all but one bigram and clears both profiles.
	a := models.GiftItem{Name: "Nintendo Switch Console"}
	b := models.GiftItem{Name: "Nintendo Switch Consoles"}
	if !Similar(a, b, AddFlowProfile()) {
		t.Fatal("expected plural variant to match in the add flow")
	}
	if !Similar(a, b, ConversionProfile()) {
		t.Fatal("expected plural variant to clear the strict threshold")
	}

	// Unrelated names stay far below either threshold.
	c := models.GiftItem{Name: "garden hose"}
	d := models.GiftItem{Name: "chess clock"}
	if Similar(c, d, AddFlowProfile()) {
		t.Fatal("expected unrelated names not to match")
	}
}

func TestSimilarEmptyNamesNeverMatch(t *testing.T) {
	t.Parallel()

	a := models.GiftItem{Name: "   "}
	b := models.GiftItem{Name: "anything"}

	if Similar(a, b, AddFlowProfile()) {
		t.Fatal("expected blank name to never match")
	}
}

func TestSimilarWordOverlapBothConditionsRequired(t *testing.T) {
	t.Parallel()

	// Three shared long words, Jaccard 0.5: similar in the add flow.
	a := models.GiftItem{Name: "deluxe wooden chess tournament"}
	b := models.GiftItem{Name: "wooden chess tournament board pieces"}
	if !Similar(a, b, AddFlowProfile()) {
		t.Fatal("expected word overlap with 3 shared words and jaccard >= 0.4 to match")
	}

	// Jaccard 0.5 but only two shared long words: not similar.
	c := models.GiftItem{Name: "wool scarf"}
	d := models.GiftItem{Name: "wool scarf winter gloves"}
	if Similar(c, d, AddFlowProfile()) {
		t.Fatal("expected two shared words to be insufficient despite high jaccard")
	}
}

func TestSimilarConversionProfileSkipsWordOverlap(t *testing.T) {
	t.Parallel()

	a := models.GiftItem{Name: "deluxe wooden chess tournament"}
	b := models.GiftItem{Name: "wooden chess tournament board pieces"}

	if Similar(a, b, ConversionProfile()) {
		t.Fatal("expected conversion profile to ignore the word overlap fallback")
	}
}

func TestSimilarSplitsOnPunctuation(t *testing.T) {
	t.Parallel()

	a := models.GiftItem{Name: "headphones,wireless-noise–cancelling"}
	b := models.GiftItem{Name: "headphones wireless noise cancelling, over ear"}

	if !Similar(a, b, AddFlowProfile()) {
		t.Fatal("expected commas, hyphens and en-dashes to split into words")
	}
}

func TestSignificantWordsDropsShortWords(t *testing.T) {
	t.Parallel()

	words := significantWords("a red toy car for the big race")
	for _, short := range []string{"a", "red", "toy", "car", "for", "the", "big"} {
		if _, ok := words[short]; ok {
			t.Fatalf("expected %q to be filtered out", short)
		}
	}
	if _, ok := words["race"]; !ok {
		t.Fatal("expected four-letter word to be kept")
	}
}
