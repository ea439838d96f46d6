package main

import (
	"context"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forest6511/pw/pkg/codec"
	"github.com/forest6511/pw/pkg/store"
)

// isDynamicCompletionEnabled reports whether the database may be read
// during completion. Unencrypted databases are always readable; encrypted
// ones only when PW_COMPLETION_ENABLED is set, so that tab completion
// never triggers a pinentry or passphrase prompt by surprise.
func isDynamicCompletionEnabled() bool {
	if cfg == nil {
		initConfig()
	}
	return !codec.IsEncrypted(cfg.Store.Path) || cfg.Completion.Enabled
}

// storeForCompletion loads the database without ever prompting.
func storeForCompletion(ctx context.Context) (*store.Store, error) {
	opts := codecOptions(cfg)
	opts.Prompt = func() ([]byte, error) { return nil, nil }
	return store.Load(ctx, cfg.Store.Path, opts)
}

// completeKeys completes the KEY argument, keeping a typed "USER@" prefix.
// The second positional argument is a user pattern.
func completeKeys(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if !isDynamicCompletionEnabled() {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if len(args) == 1 {
		return completeUsers(cmd, args, toComplete)
	}
	if len(args) > 1 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	st, err := storeForCompletion(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	userPart, keyPart := "", toComplete
	if i := strings.LastIndex(toComplete, "@"); i >= 0 {
		userPart, keyPart = toComplete[:i+1], toComplete[i+1:]
	}

	keys := st.KeysWithPrefix(keyPart)
	for i, k := range keys {
		keys[i] = userPart + k
	}
	return keys, cobra.ShellCompDirectiveNoFileComp
}

// completeUsers completes the USER argument from the entries matching the
// KEY already given.
func completeUsers(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	st, err := storeForCompletion(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	seen := make(map[string]bool)
	var users []string
	for _, e := range st.Search(args[0], "") {
		if e.User == "" || seen[e.User] || !strings.HasPrefix(e.User, toComplete) {
			continue
		}
		seen[e.User] = true
		users = append(users, e.User)
	}
	sort.Strings(users)
	return users, cobra.ShellCompDirectiveNoFileComp
}

// completeCheckPatterns completes KEY_PATTERN arguments of check.
func completeCheckPatterns(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if !isDynamicCompletionEnabled() {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	st, err := storeForCompletion(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return st.KeysWithPrefix(toComplete), cobra.ShellCompDirectiveNoFileComp
}

// registerCompletionFunctions registers ValidArgsFunction for commands that support
// dynamic completion.
func registerCompletionFunctions() {
	checkCmd.ValidArgsFunction = completeCheckPatterns
}
