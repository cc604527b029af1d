package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/eventoscl/crawler/internal/events"
)

const currencyCLP = "CLP"

var (
	freeMarker   = regexp.MustCompile(`(?i)gratis|free`)
	priceNumbers = regexp.MustCompile(`[\d.,]+`)
)

// Price extracts a CLP price span from free-form price text. Thousands
// separators (dots) are removed and a decimal comma truncates to the integer
// part; non-positive amounts are discarded.
func Price(text string) events.ParsedPrice {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return events.ParsedPrice{Currency: currencyCLP}
	}

	if freeMarker.MatchString(trimmed) {
		zero := 0
		return events.ParsedPrice{Text: "Gratis", Min: &zero, Max: &zero, Currency: currencyCLP}
	}

	var amounts []int
	for _, raw := range priceNumbers.FindAllString(trimmed, -1) {
		cleaned := strings.ReplaceAll(raw, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
		if idx := strings.IndexByte(cleaned, '.'); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		n, err := strconv.Atoi(cleaned)
		if err != nil || n <= 0 {
			continue
		}
		amounts = append(amounts, n)
	}

	if len(amounts) == 0 {
		return events.ParsedPrice{Text: trimmed, Currency: currencyCLP}
	}

	minAmount, maxAmount := amounts[0], amounts[0]
	for _, n := range amounts[1:] {
		if n < minAmount {
			minAmount = n
		}
		if n > maxAmount {
			maxAmount = n
		}
	}

	return events.ParsedPrice{Text: trimmed, Min: &minAmount, Max: &maxAmount, Currency: currencyCLP}
}
