package importer

import (
	"encoding/json"
	"fmt"

	"github.com/forest6511/pw/pkg/entry"
)

// BitwardenParser parses Bitwarden JSON export files. Logins and secure
// notes are imported; cards and identities are skipped since an entry has
// no place for their fields.
type BitwardenParser struct{}

// Bitwarden item types.
const (
	bitwardenTypeLogin      = 1
	bitwardenTypeSecureNote = 2
	bitwardenTypeCard       = 3
	bitwardenTypeIdentity   = 4
)

// Bitwarden custom field types.
const (
	bitwardenFieldText    = 0
	bitwardenFieldHidden  = 1
	bitwardenFieldBoolean = 2
)

// bitwardenExport represents the top-level Bitwarden export structure.
type bitwardenExport struct {
	Items   []bitwardenItem   `json:"items"`
	Folders []bitwardenFolder `json:"folders"`
}

// bitwardenFolder represents a Bitwarden folder.
type bitwardenFolder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// bitwardenItem represents a Bitwarden vault item.
type bitwardenItem struct {
	Type     int                    `json:"type"`
	Name     string                 `json:"name"`
	Notes    string                 `json:"notes"`
	FolderID *string                `json:"folderId"`
	Login    *bitwardenLogin        `json:"login"`
	Fields   []bitwardenCustomField `json:"fields"`
}

// bitwardenLogin represents Bitwarden login data.
type bitwardenLogin struct {
	URIs     []bitwardenURI `json:"uris"`
	Username string         `json:"username"`
	Password string         `json:"password"`
	TOTP     string         `json:"totp"`
}

// bitwardenURI represents a Bitwarden URI entry.
type bitwardenURI struct {
	URI string `json:"uri"`
}

// bitwardenCustomField represents a Bitwarden custom field.
type bitwardenCustomField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Type  int    `json:"type"`
}

// Source returns the source type for this parser.
func (p *BitwardenParser) Source() Source {
	return SourceBitwarden
}

// Parse parses Bitwarden JSON data.
func (p *BitwardenParser) Parse(data []byte) (*ImportResult, error) {
	result := &ImportResult{}

	var export bitwardenExport
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("failed to parse Bitwarden JSON: %w", err)
	}

	folderMap := make(map[string]string, len(export.Folders))
	for _, f := range export.Folders {
		folderMap[f.ID] = f.Name
	}

	itemCounter := 1
	for i := range export.Items {
		item := &export.Items[i]
		e, warning, ok := p.parseItem(item, folderMap, &itemCounter)
		if warning != "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("item %d (%s): %s", i+1, item.Name, warning))
		}
		if ok {
			result.Entries = append(result.Entries, e)
			continue
		}
		reason := warning
		if reason == "" {
			reason = "no useful data"
		}
		result.Skipped = append(result.Skipped, SkippedItem{OriginalName: item.Name, Reason: reason})
	}

	return result, nil
}

// parseItem converts a single Bitwarden item.
func (p *BitwardenParser) parseItem(item *bitwardenItem, folderMap map[string]string, itemCounter *int) (entry.Entry, string, bool) {
	var user, password, link, warning string

	switch item.Type {
	case bitwardenTypeLogin:
		if item.Login != nil {
			user, password = item.Login.Username, item.Login.Password
			if len(item.Login.URIs) > 0 {
				link = item.Login.URIs[0].URI
			}
			if item.Login.TOTP != "" {
				warning = "TOTP seed not imported"
			}
		}
	case bitwardenTypeSecureNote:
	case bitwardenTypeCard, bitwardenTypeIdentity:
		return entry.Entry{}, "cards and identities are not imported", false
	default:
		return entry.Entry{}, fmt.Sprintf("unsupported item type: %d", item.Type), false
	}

	notes := joinNotes(item.Notes, p.visibleFields(item), p.extraURIs(item))
	if user == "" && password == "" && notes == "" {
		return entry.Entry{}, warning, false
	}

	name := item.Name
	if SanitizeKeyPart(name) == "" {
		name = GenerateFallbackKey(link, *itemCounter)
		*itemCounter++
	}

	var folder string
	if item.FolderID != nil {
		folder = folderMap[*item.FolderID]
	}

	return entry.New(BuildKey(folder, name), user, password, link, notes), warning, true
}

// visibleFields lists text and boolean custom fields as "name: value"
// lines. Hidden fields are secrets and are not written into notes.
func (p *BitwardenParser) visibleFields(item *bitwardenItem) string {
	var lines []string
	for _, cf := range item.Fields {
		switch cf.Type {
		case bitwardenFieldText, bitwardenFieldBoolean:
			lines = append(lines, cf.Name+": "+cf.Value)
		case bitwardenFieldHidden:
		}
	}
	return joinNotes(lines...)
}

// extraURIs lists every URI after the first one.
func (p *BitwardenParser) extraURIs(item *bitwardenItem) string {
	if item.Login == nil || len(item.Login.URIs) < 2 {
		return ""
	}
	var uris []string
	for _, u := range item.Login.URIs[1:] {
		uris = append(uris, u.URI)
	}
	return joinNotes(uris...)
}
