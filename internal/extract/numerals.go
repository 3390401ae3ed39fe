package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var units = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,

	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
	"eleventh": 11, "twelfth": 12, "thirteenth": 13, "fourteenth": 14, "fifteenth": 15,
	"sixteenth": 16, "seventeenth": 17, "eighteenth": 18, "nineteenth": 19,
}

var tens = map[string]int{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,

	"twentieth": 20, "thirtieth": 30, "fortieth": 40, "fiftieth": 50,
	"sixtieth": 60, "seventieth": 70, "eightieth": 80, "ninetieth": 90,
}

// tensOpen are the tens words that may take a trailing unit ("twenty five").
var tensOpen = map[string]bool{
	"twenty": true, "thirty": true, "forty": true, "fifty": true,
	"sixty": true, "seventy": true, "eighty": true, "ninety": true,
}

var wordPattern = regexp.MustCompile(`[a-z]+`)

type numberWord struct {
	start, end int
	word       string
}

// Normalize lowercases text and replaces spelled-out numbers with digits,
// so "Six people" becomes "6 people" and "twenty-five" becomes "25".
func Normalize(text string) string {
	lower := strings.ToLower(text)
	locs := wordPattern.FindAllStringIndex(lower, -1)
	words := make([]numberWord, len(locs))
	for i, loc := range locs {
		words[i] = numberWord{start: loc[0], end: loc[1], word: lower[loc[0]:loc[1]]}
	}

	var b strings.Builder
	b.Grow(len(lower))
	last := 0
	for i := 0; i < len(words); {
		value, consumed := parseNumber(lower, words[i:])
		if consumed == 0 {
			i++
			continue
		}
		span := words[i : i+consumed]
		b.WriteString(lower[last:span[0].start])
		b.WriteString(strconv.Itoa(value))
		last = span[len(span)-1].end
		i += consumed
	}
	b.WriteString(lower[last:])
	return b.String()
}

// parseNumber reads one number phrase from the head of words and returns its
// value and how many words it used; zero words means no number starts here.
func parseNumber(text string, words []numberWord) (int, int) {
	head := words[0].word
	switch {
	case head == "hundred" || head == "hundredth":
		return 100, 1
	case tens[head] > 0:
		if tensOpen[head] && len(words) > 1 && joined(text, words[0], words[1], " -") {
			if u, ok := units[words[1].word]; ok && u > 0 && u < 10 {
				return tens[head] + u, 2
			}
		}
		return tens[head], 1
	}

	u, ok := units[head]
	if !ok {
		return 0, 0
	}
	if len(words) > 1 && joined(text, words[0], words[1], " ") &&
		(words[1].word == "hundred" || words[1].word == "hundredth") && u > 0 && u < 10 {
		return u * 100, 2
	}
	return u, 1
}

// joined reports whether only separator characters lie between a and b.
func joined(text string, a, b numberWord, separators string) bool {
	gap := text[a.end:b.start]
	return gap != "" && strings.Trim(gap, separators) == ""
}
