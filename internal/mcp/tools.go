package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/forest6511/pw/pkg/entry"
	"github.com/forest6511/pw/pkg/search"
	"github.com/forest6511/pw/pkg/security"
)

// maxSearchResults bounds the entries returned by entry_search.
const maxSearchResults = 200

// EntrySearchInput represents input for entry_search tool.
type EntrySearchInput struct {
	Query string `json:"query,omitempty"`
	User  string `json:"user,omitempty"`
}

// EntrySearchOutput represents output for entry_search tool.
type EntrySearchOutput struct {
	Entries   []EntryInfo `json:"entries"`
	Total     int         `json:"total"`
	Truncated bool        `json:"truncated"`
}

// EntryInfo represents an entry without its password.
type EntryInfo struct {
	Key      string `json:"key"`
	User     string `json:"user,omitempty"`
	HasNotes bool   `json:"has_notes"`
	HasLink  bool   `json:"has_link"`
}

// EntryGetMaskedInput represents input for entry_get_masked tool.
type EntryGetMaskedInput struct {
	Query string `json:"query"`
	User  string `json:"user,omitempty"`
}

// EntryGetMaskedOutput represents output for entry_get_masked tool.
type EntryGetMaskedOutput struct {
	Key         string `json:"key"`
	User        string `json:"user,omitempty"`
	MaskedValue string `json:"masked_value"`
	ValueLength int    `json:"value_length"`
}

// DatabaseCheckInput represents input for database_check tool.
type DatabaseCheckInput struct {
	Limit int `json:"limit,omitempty"`
}

// query builds a search query from tool arguments.
func query(q, user string) search.Query {
	if user != "" {
		return search.ParseQuery([]string{q, user})
	}
	return search.ParseQuery([]string{q})
}

func entryInfo(e entry.Entry) EntryInfo {
	return EntryInfo{
		Key:      e.Key,
		User:     e.User,
		HasNotes: e.Notes != "",
		HasLink:  e.Link != "",
	}
}

// handleEntrySearch handles the entry_search tool call.
func (s *Server) handleEntrySearch(ctx context.Context, _ *mcp.CallToolRequest, input EntrySearchInput) (*mcp.CallToolResult, EntrySearchOutput, error) {
	results := s.store.Query(query(input.Query, input.User))
	s.log.Debug(ctx, "entry_search", "results", len(results))

	output := EntrySearchOutput{
		Entries: make([]EntryInfo, 0, len(results)),
		Total:   len(results),
	}
	for i, e := range results {
		if i == maxSearchResults {
			output.Truncated = true
			break
		}
		output.Entries = append(output.Entries, entryInfo(e))
	}

	return nil, output, nil
}

// handleEntryGetMasked handles the entry_get_masked tool call.
func (s *Server) handleEntryGetMasked(ctx context.Context, _ *mcp.CallToolRequest, input EntryGetMaskedInput) (*mcp.CallToolResult, EntryGetMaskedOutput, error) {
	if input.Query == "" && input.User == "" {
		return nil, EntryGetMaskedOutput{}, errors.New("query is required")
	}

	results := s.store.Query(query(input.Query, input.User))
	if err := search.Strict(results); err != nil {
		return nil, EntryGetMaskedOutput{}, fmt.Errorf("%w: %d entries match", err, len(results))
	}

	e := results[0]
	s.log.Debug(ctx, "entry_get_masked", "key", e.Key)

	// Mask the value
	return nil, EntryGetMaskedOutput{
		Key:         e.Key,
		User:        e.User,
		MaskedValue: maskValue(e.Password),
		ValueLength: len([]rune(e.Password)),
	}, nil
}

// handleDatabaseCheck handles the database_check tool call.
func (s *Server) handleDatabaseCheck(_ context.Context, _ *mcp.CallToolRequest, input DatabaseCheckInput) (*mcp.CallToolResult, security.SecurityScore, error) {
	if input.Limit < 0 {
		return nil, security.SecurityScore{}, errors.New("limit must not be negative")
	}

	score, err := security.NewCalculator().WithLimit(input.Limit).CalculateScore(s.store.Entries())
	if err != nil {
		return nil, security.SecurityScore{}, fmt.Errorf("failed to check database: %w", err)
	}
	return nil, *score, nil
}

// maskValue masks a password showing only the last few characters:
//   - 1-4 characters: all masked
//   - 5-8 characters: last 2 shown
//   - 9+ characters: last 4 shown
func maskValue(value string) string {
	runes := []rune(value)
	length := len(runes)
	if length == 0 {
		return ""
	}

	switch {
	case length <= 4:
		return strings.Repeat("*", length)
	case length <= 8:
		return strings.Repeat("*", length-2) + string(runes[length-2:])
	default:
		return strings.Repeat("*", length-4) + string(runes[length-4:])
	}
}
