// Package arabic canonicalises orthographic variants of Arabic text so that
// semantically identical strings compare equal regardless of transcription
// noise.
//
// ASR output is inconsistent about tashkeel (the combining marks carrying
// short vowels, gemination, and recitation signs) and about which letter form
// it emits for hamza-carrying alifs. Canonical Uthmani corpus text, on the
// other hand, is fully vocalised. [Normalize] folds both sides onto a common
// representation so the matcher compares lexical identity, not pronunciation
// detail.
//
// Whitespace and punctuation are deliberately left untouched: the fuzzy
// scorer downstream tolerates minor punctuation and spacing differences, so
// the normaliser does not need to be exhaustive.
package arabic

import "strings"

// Combining-mark range stripped by Normalize: fathatan through wavy hamza
// below, plus the superscript alef (dagger alif).
const (
	tashkeelLo     = 'ً'
	tashkeelHi     = 'ٟ'
	superscriptAlef = 'ٰ'
)

// Normalize returns text with diacritics removed and letter variants folded:
//
//  1. All combining marks in U+064B–U+065F and U+0670 are stripped.
//  2. The alif variants ٱ أ إ آ are folded to plain ا.
//  3. Taa marbuta ة is folded to ه.
//  4. Alif maksura ى is folded to ي.
//
// Normalize is pure, total, idempotent, and runs in a single linear pass.
// All other characters pass through unchanged.
func Normalize(text string) string {
	return strings.Map(normalizeRune, text)
}

func normalizeRune(r rune) rune {
	if (r >= tashkeelLo && r <= tashkeelHi) || r == superscriptAlef {
		return -1
	}
	switch r {
	case 'ٱ', 'أ', 'إ', 'آ':
		return 'ا'
	case 'ة':
		return 'ه'
	case 'ى':
		return 'ي'
	}
	return r
}
