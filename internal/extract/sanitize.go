package extract

import (
	"encoding/json"
	"unicode/utf8"
)

// emptyListLiteral is the exact field value exports use for "no pixels".
const emptyListLiteral = "[]"

// Sanitize parses a URL-list field into its URLs.
// It returns false when the field holds no usable URLs: empty values, the
// "[]" literal, NULL-like values, non-array JSON, and strings that fail both
// the direct and the repaired parse.
func Sanitize(field string) ([]string, bool) {
	urls, _ := parseField(field)
	if len(urls) == 0 {
		return nil, false
	}
	return urls, true
}

// parseField implements Sanitize and also reports whether the missing-quote
// repair was needed.
func parseField(field string) ([]string, bool) {
	if field != emptyListLiteral && json.Valid([]byte(field)) {
		return decodeURLs(field), false
	}

	if repaired, ok := repairMissingQuote(field); ok && json.Valid([]byte(repaired)) {
		urls := decodeURLs(repaired)
		return urls, len(urls) > 0
	}

	return nil, false
}

// repairMissingQuote inserts a '"' after the first character when the second
// character is 'h', which is how the broken producer writes `[http://...`.
func repairMissingQuote(field string) (string, bool) {
	_, size := utf8.DecodeRuneInString(field)
	if size == 0 || len(field) <= size || field[size] != 'h' {
		return "", false
	}
	return field[:size] + `"` + field[size:], true
}

// decodeURLs decodes a JSON document that is expected to be an array of URL
// strings. Non-array documents yield nothing; non-string and empty elements
// are skipped.
func decodeURLs(doc string) []string {
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(doc), &elems); err != nil {
		return nil
	}

	urls := make([]string, 0, len(elems))
	for _, raw := range elems {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		if s == "" {
			continue
		}
		urls = append(urls, s)
	}
	return urls
}
