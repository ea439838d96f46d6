package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"github.com/forest6511/pw/internal/config"
)

func completionCmdFor(t *testing.T, path string) *cobra.Command {
	t.Helper()
	isolate(t)
	t.Setenv("PW_PATH", path)
	cfg = config.NewConfig()

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	return cmd
}

func TestCompleteKeys(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		toComplete string
		expected   []string
	}{
		{name: "all keys", toComplete: "", expected: []string{"goggles", "laptop", "phones.myphone", "phones.samson", "router"}},
		{name: "prefix", toComplete: "ph", expected: []string{"phones.myphone", "phones.samson"}},
		{name: "keeps user", toComplete: "bob@la", expected: []string{"bob@laptop"}},
		{name: "no match", toComplete: "zzz", expected: nil},
		{name: "users of key", args: []string{"laptop"}, toComplete: "", expected: []string{"alice", "bob"}},
		{name: "users with prefix", args: []string{"goggle"}, toComplete: "bob", expected: []string{"bob+spam@gogglemail.com"}},
		{name: "nothing after user", args: []string{"laptop", "bob"}, toComplete: "", expected: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd := completionCmdFor(t, lineFixture)

			got, directive := completeKeys(cmd, tc.args, tc.toComplete)
			assert.Equal(t, tc.expected, got)
			assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
		})
	}
}

func TestCompleteEncryptedRequiresOptIn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.pw.gpg")

	cmd := completionCmdFor(t, path)
	got, directive := completeKeys(cmd, nil, "")
	assert.Nil(t, got)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)

	t.Setenv("PW_COMPLETION_ENABLED", "1")
	cfg = config.NewConfig()
	assert.True(t, isDynamicCompletionEnabled())
}

func TestCompleteMissingStore(t *testing.T) {
	cmd := completionCmdFor(t, "MISSING")

	got, directive := completeKeys(cmd, nil, "")
	assert.Nil(t, got)
	assert.Equal(t, cobra.ShellCompDirectiveError, directive)
}

func TestCompleteCheckPatterns(t *testing.T) {
	cmd := completionCmdFor(t, treeFixture)

	got, _ := completeCheckPatterns(cmd, nil, "Phones.S")
	assert.Equal(t, []string{"phones.samson"}, got)
}
