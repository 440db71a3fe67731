// Package extract recovers billing figures from the flattened text of invoice documents.
//
// Extraction is a heuristic. Hours come from the first rule that matches;
// amounts are the largest figure any rule finds, on the assumption that the
// grand total is the biggest dollar value on an invoice. Nothing here fails:
// a field no rule can fill is reported as 0 and left out of Matched.
package extract

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Veraticus/billable/internal/common"
	"github.com/Veraticus/billable/internal/model"
)

// ErrInvalidRule indicates a pattern that does not compile or lacks a single capture group.
var ErrInvalidRule = errors.New("invalid extraction rule")

const excerptLength = 500

// Extractor applies compiled rules to document text.
type Extractor struct {
	hours    []*regexp.Regexp
	earned   []*regexp.Regexp
	received []*regexp.Regexp
}

// NewExtractor compiles rules. Patterns are made case-insensitive.
func NewExtractor(rules Rules) (*Extractor, error) {
	hours, err := compileAll(model.FieldHours, rules.Hours)
	if err != nil {
		return nil, err
	}
	earned, err := compileAll(model.FieldEarned, rules.Earned)
	if err != nil {
		return nil, err
	}
	received, err := compileAll(model.FieldReceived, rules.Received)
	if err != nil {
		return nil, err
	}

	return &Extractor{
		hours:    hours,
		earned:   earned,
		received: received,
	}, nil
}

func compileAll(field model.Field, patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for i, p := range patterns {
		re, err := common.CompileFold(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %s pattern %d: %v", ErrInvalidRule, field, i, err)
		}
		if re.NumSubexp() != 1 {
			return nil, fmt.Errorf("%w: %s pattern %d has %d capture groups, want 1",
				ErrInvalidRule, field, i, re.NumSubexp())
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// Extract scans text and returns the recovered figures.
func (e *Extractor) Extract(text string) model.ExtractionResult {
	result := model.ExtractionResult{
		Matched: make(map[model.Field]bool, 3),
		Excerpt: excerpt(text),
	}

	if v, ok := firstMatch(e.hours, text); ok {
		result.HoursWorked = v
		result.Matched[model.FieldHours] = true
	}
	if v, ok := largestMatch(e.earned, text); ok {
		result.AmountEarned = v
		result.Matched[model.FieldEarned] = true
	}
	if v, ok := largestMatch(e.received, text); ok {
		result.AmountReceived = v
		result.Matched[model.FieldReceived] = true
	}

	slog.Debug("Extracted invoice figures",
		"hours", result.HoursWorked,
		"earned", result.AmountEarned,
		"received", result.AmountReceived,
		"matched", len(result.Matched))

	return result
}

// firstMatch returns the capture of the first pattern that matches and parses.
func firstMatch(patterns []*regexp.Regexp, text string) (float64, bool) {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := parseNumber(m[1])
		if err != nil {
			slog.Debug("Skipping unparsable hours candidate", "pattern", re.String(), "value", m[1])
			continue
		}
		slog.Debug("Matched hours", "pattern", re.String(), "text", m[0])
		return v, true
	}
	return 0, false
}

// largestMatch returns the maximum amount over every match of every pattern.
func largestMatch(patterns []*regexp.Regexp, text string) (float64, bool) {
	var best float64
	found := false

	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			v, err := parseAmount(m[1])
			if err != nil {
				continue
			}
			if !found || v > best {
				best = v
				found = true
			}
		}
	}
	return best, found
}

// parseAmount parses a figure such as "3,556.25".
func parseAmount(s string) (float64, error) {
	return parseNumber(strings.ReplaceAll(s, ",", ""))
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", s)
	}
	return v, nil
}

func excerpt(text string) string {
	r := []rune(text)
	if len(r) <= excerptLength {
		return text
	}
	return string(r[:excerptLength])
}
