package importer

import (
	"fmt"
	"strings"

	"github.com/forest6511/pw/pkg/entry"
)

// OnePasswordParser parses 1Password CSV export files:
// Title,Website,Username,Password,OTPAuth,Favorite,Archived,Tags,Notes
//
// The first tag is used as the group.
type OnePasswordParser struct{}

// 1Password CSV column names (header-based parsing).
const (
	op1ColTitle    = "Title"
	op1ColWebsite  = "Website"
	op1ColUsername = "Username"
	op1ColPassword = "Password"
	op1ColOTPAuth  = "OTPAuth"
	op1ColArchived = "Archived"
	op1ColTags     = "Tags"
	op1ColNotes    = "Notes"
)

// Source returns the source type for this parser.
func (p *OnePasswordParser) Source() Source {
	return Source1Password
}

// Parse parses 1Password CSV data.
func (p *OnePasswordParser) Parse(data []byte) (*ImportResult, error) {
	result := &ImportResult{}
	itemCounter := 1

	keep := func(col string) string { return col }
	err := readCSV(data, op1ColTitle, keep, result, func(rowNum int, row csvRow) {
		e, warning, ok := p.parseRow(row, &itemCounter)
		if !ok {
			result.Skipped = append(result.Skipped, SkippedItem{OriginalName: row.get(op1ColTitle), Reason: warning})
			return
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: %s", rowNum, warning))
		}
		result.Entries = append(result.Entries, e)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// parseRow converts a single CSV row.
func (p *OnePasswordParser) parseRow(row csvRow, itemCounter *int) (entry.Entry, string, bool) {
	get := func(col string) string {
		return strings.TrimSpace(row.get(col))
	}

	title := get(op1ColTitle)
	website := get(op1ColWebsite)
	username := get(op1ColUsername)
	password := get(op1ColPassword)
	otpAuth := get(op1ColOTPAuth)
	notes := get(op1ColNotes)

	if strings.EqualFold(get(op1ColArchived), "true") {
		return entry.Entry{}, "archived", false
	}
	if username == "" && password == "" && notes == "" {
		return entry.Entry{}, "no useful data", false
	}

	if SanitizeKeyPart(title) == "" {
		title = GenerateFallbackKey(website, *itemCounter)
		*itemCounter++
	}

	var group string
	if tags := strings.Split(get(op1ColTags), ","); len(tags) > 0 {
		group = strings.TrimSpace(tags[0])
	}

	var warning string
	if otpAuth != "" {
		warning = "TOTP seed not imported"
	}

	return entry.New(BuildKey(group, title), username, password, website, notes), warning, true
}
