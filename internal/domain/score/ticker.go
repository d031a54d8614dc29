package score

import (
	"regexp"
	"strings"

	"stockscore/pkg/errors"
)

var tickerPattern = regexp.MustCompile(`^[A-Z0-9&.\-]{1,20}$`)

// SanitizeTicker trims and upper-cases raw and rejects anything outside
// [A-Z0-9&.-]{1,20}.
func SanitizeTicker(raw string) (string, error) {
	ticker := strings.ToUpper(strings.TrimSpace(raw))
	if !tickerPattern.MatchString(ticker) {
		return "", errors.NewValidationError("ticker", "must be 1-20 characters of A-Z, 0-9, &, . or -", raw)
	}
	return ticker, nil
}
