package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forest6511/pw/pkg/entry"
)

func TestFindDuplicates(t *testing.T) {
	entries := []entry.Entry{
		entry.New("a", "u1", "shared", "", ""),
		entry.New("b", "u2", "unique", "", ""),
		entry.New("c", "u3", " shared ", "", ""),
		entry.New("d", "u4", "triple", "", ""),
		entry.New("e", "u5", "triple", "", ""),
		entry.New("f", "u6", "triple", "", ""),
		entry.New("g", "u7", "", "", ""),
		entry.New("h", "u8", "", "", ""),
	}

	groups, err := NewCalculator().FindDuplicates(entries, 0)
	require.NoError(t, err)

	require.Len(t, groups, 2)
	assert.Equal(t, 3, groups[0].Count)
	assert.Equal(t, []EntryRef{{"d", "u4"}, {"e", "u5"}, {"f", "u6"}}, groups[0].Entries)
	assert.Equal(t, 2, groups[1].Count)
	assert.Equal(t, []EntryRef{{"a", "u1"}, {"c", "u3"}}, groups[1].Entries)
}

func TestFindDuplicatesUnicodeNormalization(t *testing.T) {
	entries := []entry.Entry{
		entry.New("composed", "", "caf\u00e9", "", ""),
		entry.New("decomposed", "", "cafe\u0301", "", ""),
	}

	groups, err := NewCalculator().FindDuplicates(entries, 0)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, 2, groups[0].Count)
}

func TestFindDuplicatesLimit(t *testing.T) {
	entries := []entry.Entry{
		entry.New("a", "", "x", "", ""),
		entry.New("b", "", "x", "", ""),
		entry.New("c", "", "y", "", ""),
		entry.New("d", "", "y", "", ""),
	}

	groups, err := NewCalculator().FindDuplicates(entries, 1)
	require.NoError(t, err)
	assert.Len(t, groups, 1)
}

func TestFindWeakPasswords(t *testing.T) {
	entries := []entry.Entry{
		entry.New("a", "", "short", "", ""),
		entry.New("b", "", "long enough passphrase", "", ""),
		entry.New("c", "", "", "", ""),
		entry.New("d.token", "", "0123456789abc", "", ""),
	}

	issues := NewCalculator().FindWeakPasswords(entries, 0)

	require.Len(t, issues, 2)
	assert.Equal(t, []EntryRef{{Key: "a"}}, issues[0].Entries)
	assert.Equal(t, "Password has insufficient strength (5 characters)", issues[0].Description)
	assert.Equal(t, "Use a longer token (32+ characters)", issues[1].Suggestion)

	assert.Len(t, NewCalculator().FindWeakPasswords(entries, 1), 1)
}
