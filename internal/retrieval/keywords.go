package retrieval

import "strings"

// minKeywordRunes is the exclusive lower bound on keyword length; shorter
// tokens are mostly particles and pronouns.
const minKeywordRunes = 3

func isArabicLetter(r rune) bool {
	return r >= 0x0600 && r <= 0x06FF && !isArabicMark(r)
}

// Diacritics and tatweel carry no lexical identity.
func isArabicMark(r rune) bool {
	return (r >= 0x064B && r <= 0x0652) || r == 0x0640
}

// foldVariants collapses Arabic letter variants so that hamza and yaa
// spelling differences compare equal.
func foldVariants(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case 'أ', 'إ', 'آ':
			return 'ا'
		case 'ى':
			return 'ي'
		}
		return r
	}, s)
}

// ExtractKeywords returns the Arabic-script words of text longer than
// minKeywordRunes runes, diacritic-stripped and variant-folded, in order of
// appearance.
func ExtractKeywords(text string) []string {
	text = foldVariants(text)

	var out []string
	var word []rune
	flush := func() {
		if len(word) > minKeywordRunes {
			out = append(out, string(word))
		}
		word = word[:0]
	}
	for _, r := range text {
		switch {
		case isArabicMark(r):
			// skip
		case isArabicLetter(r):
			word = append(word, r)
		default:
			flush()
		}
	}
	flush()
	return out
}
