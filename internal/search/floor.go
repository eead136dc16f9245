package search

import "strconv"

var floorWords = []string{
	"", "first", "second", "third", "fourth", "fifth", "sixth", "seventh",
	"eighth", "ninth", "tenth", "eleventh", "twelfth", "thirteenth",
	"fourteenth", "fifteenth",
}

// OrdinalSuffix returns the English ordinal suffix for n ("st", "nd", "rd", "th").
func OrdinalSuffix(n int) string {
	if n < 0 {
		n = -n
	}
	switch n % 100 {
	case 11, 12, 13:
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}

// FloorWord returns the ordinal word for floors 1 through 15.
func FloorWord(n int) (string, bool) {
	if n < 1 || n >= len(floorWords) {
		return "", false
	}
	return floorWords[n], true
}

// floorWordNumber is the inverse of FloorWord.
func floorWordNumber(word string) (string, bool) {
	for i, w := range floorWords {
		if i > 0 && w == word {
			return strconv.Itoa(i), true
		}
	}
	return "", false
}
