package ngram

import (
	"strings"
	"testing"
)

func TestNGrams_FiltersStopWordsBeforeWindowing(t *testing.T) {
	// "the" and "of" are removed first, so the 2-gram windows join the
	// surviving tokens directly.
	grams := NGrams("The board of commissioners approved.", 2)

	want := [][]string{
		{"board", "commissioners"},
		{"commissioners", "approved"},
	}
	if len(grams) != len(want) {
		t.Fatalf("expected %d grams, got %d: %v", len(want), len(grams), grams)
	}
	for i := range want {
		if strings.Join(grams[i], " ") != strings.Join(want[i], " ") {
			t.Errorf("gram[%d]: expected %v, got %v", i, want[i], grams[i])
		}
	}
}

func TestNGrams_NeverSpansSentenceBoundary(t *testing.T) {
	text := "Wind turbines shall comply. Solar panels shall register."
	grams := NGrams(text, 3)

	for _, gram := range grams {
		joined := strings.Join(gram, " ")
		if strings.Contains(joined, "comply solar") {
			t.Errorf("gram %v spans a sentence boundary", gram)
		}
	}
	// Each sentence keeps 4 tokens ("shall" is not a stop word) and
	// contributes its own 2 windows; none crosses into the next sentence.
	if len(grams) != 4 {
		t.Errorf("expected 4 grams (two per sentence), got %d: %v", len(grams), grams)
	}
}

func TestNGrams_CaseFolded(t *testing.T) {
	grams := NGrams("Box Elder COUNTY Utah regulations", 5)
	if len(grams) != 1 {
		t.Fatalf("expected 1 gram, got %d", len(grams))
	}
	if got := strings.Join(grams[0], " "); got != "box elder county utah regulations" {
		t.Errorf("expected case-folded tokens, got %q", got)
	}
}

func TestNGrams_PunctuationDropped(t *testing.T) {
	grams := NGrams(`setback (minimum): "five hundred" feet, per turbine.`, 2)
	for _, gram := range grams {
		for _, tok := range gram {
			if punctuations[tok] {
				t.Errorf("punctuation token %q survived filtering in %v", tok, gram)
			}
		}
	}
}

func TestNGrams_ShortSentenceYieldsNothing(t *testing.T) {
	if grams := NGrams("Approved.", 2); len(grams) != 0 {
		t.Errorf("expected no grams from a one-token sentence, got %v", grams)
	}
}

func TestNGrams_NonPositiveN(t *testing.T) {
	if grams := NGrams("some text here", 0); grams != nil {
		t.Errorf("expected nil for n=0, got %v", grams)
	}
}

func TestContainment_SelfContainment(t *testing.T) {
	text := "Wind energy systems shall maintain setbacks from property lines. " +
		"Commercial turbines require special use permits."
	if got := Containment(text, text, 3); got != 1.0 {
		t.Errorf("expected self-containment 1.0, got %f", got)
	}
}

func TestContainment_EmptyTestIsFullyContained(t *testing.T) {
	cases := []string{"", "the of and", "a."}
	for _, test := range cases {
		if got := Containment("any original text at all here", test, 4); got != 1.0 {
			t.Errorf("Containment(_, %q, 4): expected sentinel 1.0, got %f", test, got)
		}
	}
}

func TestContainment_PartialOverlap(t *testing.T) {
	original := "Commercial wind turbines require special permits from county planners."
	test := "Commercial wind turbines require special permits from state regulators."

	got := Containment(original, test, 2)
	if got <= 0 || got >= 1 {
		t.Errorf("expected partial containment in (0,1), got %f", got)
	}
}

func TestContainment_CountsDuplicates(t *testing.T) {
	// The duplicated window in test counts twice against the original set.
	original := "alpha bravo charlie."
	test := "alpha bravo charlie. alpha bravo delta."

	got := Containment(original, test, 2)
	// test grams: (alpha bravo), (bravo charlie), (alpha bravo), (bravo delta)
	want := 3.0 / 4.0
	if got != want {
		t.Errorf("expected %f, got %f", want, got)
	}
}

func TestContainment_Disjoint(t *testing.T) {
	if got := Containment("alpha bravo charlie delta.", "echo foxtrot golf hotel.", 2); got != 0 {
		t.Errorf("expected 0 containment for disjoint texts, got %f", got)
	}
}

func TestSentences_SplitOnTerminators(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"periods", "One sentence. Two sentence. Three.", 3},
		{"mixed terminators", "Really? Yes! Fine.", 3},
		{"no terminator", "trailing text without punctuation", 1},
		{"decimal not split", "Setback is 1.5 times height. Second rule.", 2},
		{"empty", "", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Sentences(tc.text)
			if len(got) != tc.want {
				t.Errorf("expected %d sentences, got %d: %v", tc.want, len(got), got)
			}
		})
	}
}
