package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forest6511/pw/pkg/entry"
	"github.com/forest6511/pw/pkg/search"
	"github.com/forest6511/pw/pkg/store"
)

// testServer creates a server over a small in-memory database.
func testServer(t *testing.T) *Server {
	t.Helper()
	st := store.New("db.pw", []entry.Entry{
		entry.New("laptop", "alice", "4l1c3", "", "default user"),
		entry.New("laptop", "bob", "b0b", "", ""),
		entry.New("goggles", "alice@gogglemail.com", "12345", "https://mail.goggles.com/", ""),
		entry.New("goggles", "bob+spam@gogglemail.com", "abcde", "", ""),
		entry.New("router", "ädmin", "gamma zeta", "", "multiple\nlines"),
		entry.New("phones.myphone", "", "0000", "", ""),
	})

	s, err := NewServer(&ServerOptions{Store: st, Version: "test"})
	require.NoError(t, err)
	return s
}

func TestNewServer_NoStore(t *testing.T) {
	_, err := NewServer(nil)
	assert.True(t, errors.Is(err, ErrNoStore))

	_, err = NewServer(&ServerOptions{})
	assert.True(t, errors.Is(err, ErrNoStore))
}

func TestNewServer_Success(t *testing.T) {
	s := testServer(t)
	assert.NotNil(t, s.server)
	assert.NotNil(t, s.log)
}

func TestHandleEntrySearch(t *testing.T) {
	s := testServer(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		input    EntrySearchInput
		expected []EntryInfo
	}{
		{
			name:  "key",
			input: EntrySearchInput{Query: "oggle"},
			expected: []EntryInfo{
				{Key: "goggles", User: "alice@gogglemail.com", HasLink: true},
				{Key: "goggles", User: "bob+spam@gogglemail.com"},
			},
		},
		{
			name:  "user at key",
			input: EntrySearchInput{Query: "bob@laptop"},
			expected: []EntryInfo{
				{Key: "laptop", User: "bob"},
			},
		},
		{
			name:  "explicit user",
			input: EntrySearchInput{Query: "laptop", User: "alice"},
			expected: []EntryInfo{
				{Key: "laptop", User: "alice", HasNotes: true},
			},
		},
		{
			name:     "no match",
			input:    EntrySearchInput{Query: "nothing"},
			expected: []EntryInfo{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, output, err := s.handleEntrySearch(ctx, nil, tc.input)
			require.NoError(t, err)
			assert.Nil(t, result)
			assert.Equal(t, tc.expected, output.Entries)
			assert.Equal(t, len(tc.expected), output.Total)
			assert.False(t, output.Truncated)
		})
	}
}

func TestHandleEntrySearch_All(t *testing.T) {
	s := testServer(t)

	_, output, err := s.handleEntrySearch(context.Background(), nil, EntrySearchInput{})
	require.NoError(t, err)
	assert.Equal(t, 6, output.Total)
	assert.Equal(t, "goggles", output.Entries[0].Key)
}

func TestHandleEntryGetMasked_Success(t *testing.T) {
	s := testServer(t)

	_, output, err := s.handleEntryGetMasked(context.Background(), nil, EntryGetMaskedInput{Query: "ädmin@router"})
	require.NoError(t, err)

	assert.Equal(t, "router", output.Key)
	assert.Equal(t, "ädmin", output.User)
	assert.Equal(t, "******zeta", output.MaskedValue)
	assert.Equal(t, 10, output.ValueLength)
}

func TestHandleEntryGetMasked_NotUnique(t *testing.T) {
	s := testServer(t)
	ctx := context.Background()

	_, _, err := s.handleEntryGetMasked(ctx, nil, EntryGetMaskedInput{Query: "laptop"})
	assert.True(t, errors.Is(err, search.ErrNotUnique))

	_, _, err = s.handleEntryGetMasked(ctx, nil, EntryGetMaskedInput{Query: "nothing"})
	assert.True(t, errors.Is(err, search.ErrNotUnique))
}

func TestHandleEntryGetMasked_EmptyQuery(t *testing.T) {
	s := testServer(t)

	_, _, err := s.handleEntryGetMasked(context.Background(), nil, EntryGetMaskedInput{})
	assert.Error(t, err)
}

func TestHandleDatabaseCheck(t *testing.T) {
	s := testServer(t)
	ctx := context.Background()

	_, score, err := s.handleDatabaseCheck(ctx, nil, DatabaseCheckInput{})
	require.NoError(t, err)
	assert.Equal(t, 6, score.Entries)
	assert.NotEmpty(t, score.Issues)
	for _, issue := range score.Issues {
		assert.NotContains(t, issue.Description, "4l1c3")
	}

	_, limited, err := s.handleDatabaseCheck(ctx, nil, DatabaseCheckInput{Limit: 1})
	require.NoError(t, err)
	assert.True(t, limited.Limited)

	_, _, err = s.handleDatabaseCheck(ctx, nil, DatabaseCheckInput{Limit: -1})
	assert.Error(t, err)
}
