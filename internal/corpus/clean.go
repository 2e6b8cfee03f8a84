package corpus

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Arabic diacritics (fathatan..sukun) plus the tatweel stretch character.
var arabicMarks = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x0640, Hi: 0x0640, Stride: 1},
		{Lo: 0x064B, Hi: 0x0652, Stride: 1},
	},
}

// cleaner applies NFKC normalization and strips diacritics in one pass.
var cleaner = transform.Chain(norm.NFKC, runes.Remove(runes.In(arabicMarks)))

var (
	spaceRuns  = regexp.MustCompile(` +`)
	blankLines = regexp.MustCompile(`\n\s*\n`)
)

// foldLetters maps Arabic letter variants onto canonical forms so that
// hamza and yaa spelling differences do not split otherwise equal words.
func foldLetters(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case 'أ', 'إ', 'آ':
			return 'ا'
		case 'ى':
			return 'ي'
		case 'ة':
			return 'ه'
		}
		return r
	}, s)
}

// allowedRune reports whether r may appear in cleaned corpus text.
// Kept: Arabic blocks, ASCII letters and digits, whitespace, and basic
// punctuation. Everything else becomes a space.
func allowedRune(r rune) bool {
	switch {
	case r >= 0x0600 && r <= 0x06FF:
		return true
	case r >= 0x0750 && r <= 0x077F:
		return true
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == ' ' || r == '\n':
		return true
	case r == '.' || r == ',' || r == ':' || r == '?' || r == '!' || r == '-' || r == '(' || r == ')':
		return true
	}
	return false
}

// CleanText normalizes raw textbook text: NFKC, diacritic removal, letter
// folding, junk-character removal, and whitespace tidying.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	cleaned, _, err := transform.String(cleaner, text)
	if err != nil {
		cleaned = text
	}
	cleaned = foldLetters(cleaned)

	var b strings.Builder
	b.Grow(len(cleaned))
	for _, r := range cleaned {
		if allowedRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	out := spaceRuns.ReplaceAllString(b.String(), " ")
	out = blankLines.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// Preprocess cleans text and drops lines that carry no prose: very short
// fragments and lines that are mostly digits (page furniture, tables).
func Preprocess(text string) string {
	text = CleanText(text)

	var keep []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) < 15 {
			continue
		}
		if digitRatio(line) > 0.5 {
			continue
		}
		keep = append(keep, line)
	}
	return strings.Join(keep, "\n")
}

func digitRatio(line string) float64 {
	total := 0
	digits := 0
	for _, r := range line {
		total++
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(digits) / float64(total)
}
