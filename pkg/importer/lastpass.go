package importer

import (
	"fmt"
	"strings"

	"github.com/forest6511/pw/pkg/entry"
)

// LastPassParser parses LastPass CSV export files:
// url,username,password,totp,extra,name,grouping,fav
type LastPassParser struct{}

// LastPass CSV column names (header-based parsing).
const (
	lpColURL      = "url"
	lpColUsername = "username"
	lpColPassword = "password"
	lpColTOTP     = "totp"
	lpColExtra    = "extra"
	lpColName     = "name"
	lpColGrouping = "grouping"
)

// lpSecureNoteURL marks secure notes in LastPass exports.
const lpSecureNoteURL = "http://sn"

// Source returns the source type for this parser.
func (p *LastPassParser) Source() Source {
	return SourceLastPass
}

// Parse parses LastPass CSV data.
func (p *LastPassParser) Parse(data []byte) (*ImportResult, error) {
	result := &ImportResult{}
	itemCounter := 1

	err := readCSV(data, lpColName, strings.ToLower, result, func(rowNum int, row csvRow) {
		e, warning, ok := p.parseRow(row, &itemCounter)
		if !ok {
			result.Skipped = append(result.Skipped, SkippedItem{OriginalName: row.get(lpColName), Reason: warning})
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
func (p *LastPassParser) parseRow(row csvRow, itemCounter *int) (entry.Entry, string, bool) {
	get := func(col string) string {
		return DecodeHTMLEntities(strings.TrimSpace(row.get(col)))
	}

	name := get(lpColName)
	url := get(lpColURL)
	username := get(lpColUsername)
	password := get(lpColPassword)
	totp := get(lpColTOTP)
	extra := get(lpColExtra)
	grouping := get(lpColGrouping)

	if url == lpSecureNoteURL {
		url = ""
	}

	if username == "" && password == "" && extra == "" {
		return entry.Entry{}, "no useful data", false
	}

	if SanitizeKeyPart(name) == "" {
		name = GenerateFallbackKey(url, *itemCounter)
		*itemCounter++
	}

	var warning string
	if totp != "" {
		warning = "TOTP seed not imported"
	}

	return entry.New(BuildKey(grouping, name), username, password, url, extra), warning, true
}
