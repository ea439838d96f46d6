package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forest6511/pw/internal/cli"
	"github.com/forest6511/pw/pkg/security"
)

// Check command flags
var (
	checkVerbose bool
	checkJSON    bool
	checkLimit   int
)

// checkCmd reports weak and reused passwords.
var checkCmd = &cobra.Command{
	Use:   "check [KEY_PATTERN...]",
	Short: "Analyze password database health",
	Long: `Analyze the passwords in the database and get recommendations.

The score is calculated from:
  - Password Strength (0-50): Average strength of the passwords
  - Uniqueness (0-50): Percentage of unique passwords

Passwords are never printed. KEY_PATTERN limits the check to matching
keys and accepts glob characters (*, ?, [...]).

Example:
  pw check                  # Show score and issues
  pw check 'phones.*'       # Only entries below "phones"
  pw check --verbose        # Also show suggestions
  pw check --json           # Output in JSON format`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := loadStore(ctx, codecOptions(cfg))
		if err != nil {
			return err
		}

		entries := st.Entries()
		if len(args) > 0 {
			keys, err := cli.ExpandPatterns(args, st.Keys())
			if err != nil {
				return err
			}
			entries = cli.SelectEntries(entries, keys)
		}

		score, err := security.NewCalculator().WithLimit(checkLimit).CalculateScore(entries)
		if err != nil {
			return fmt.Errorf("failed to calculate security score: %w", err)
		}
		logger.Debug(ctx, "check finished", "entries", score.Entries, "issues", len(score.Issues))

		out := cmd.OutOrStdout()
		if checkJSON {
			return outputCheckJSON(out, score)
		}
		outputCheckText(out, score, checkVerbose)
		return nil
	},
}

// outputCheckJSON outputs the security score as JSON.
func outputCheckJSON(w io.Writer, score *security.SecurityScore) error {
	data, err := json.MarshalIndent(score, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// outputCheckText outputs the security score as formatted text.
func outputCheckText(w io.Writer, score *security.SecurityScore, verbose bool) {
	var rating string
	switch {
	case score.Overall >= 90:
		rating = "Excellent"
	case score.Overall >= 70:
		rating = "Good"
	case score.Overall >= 50:
		rating = "Fair"
	default:
		rating = "Needs Attention"
	}

	fmt.Fprintf(w, "Security Score: %d/100 (%s), %d entries\n\n", score.Overall, rating, score.Entries)

	fmt.Fprintln(w, "Components:")
	fmt.Fprintf(w, "  Password Strength: %2d/50 %s\n", score.Components.StrengthScore, progressBar(score.Components.StrengthScore, 50))
	fmt.Fprintf(w, "  Uniqueness:        %2d/50 %s\n", score.Components.UniquenessScore, progressBar(score.Components.UniquenessScore, 50))
	fmt.Fprintln(w)

	if len(score.Issues) > 0 {
		fmt.Fprintf(w, "Issues (%d):\n", len(score.Issues))
		for i, issue := range score.Issues {
			fmt.Fprintf(w, "  %d. [%s] %s: %s\n", i+1, strings.ToUpper(string(issue.Type)), entryRefs(issue.Entries), issue.Description)
		}
		fmt.Fprintln(w)
	}

	if len(score.Suggestions) > 0 && verbose {
		fmt.Fprintln(w, "Suggestions:")
		for _, suggestion := range score.Suggestions {
			fmt.Fprintf(w, "  - %s\n", suggestion)
		}
		fmt.Fprintln(w)
	}

	if score.Limited {
		fmt.Fprintf(w, "Only the first %d issues of each type are shown; use --limit 0 for all.\n", checkLimit)
	}
}

// entryRefs formats entries as "user@key" the way they are queried.
func entryRefs(refs []security.EntryRef) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		if r.User != "" {
			parts[i] = r.User + "@" + r.Key
		} else {
			parts[i] = r.Key
		}
	}
	return strings.Join(parts, ", ")
}

// progressBar creates a simple ASCII progress bar.
func progressBar(value, maxVal int) string {
	width := 20
	filled := value * width / maxVal
	if filled > width {
		filled = width
	}
	empty := width - filled
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", empty) + "]"
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVarP(&checkVerbose, "verbose", "v", false, "Show all details including suggestions")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Output in JSON format")
	checkCmd.Flags().IntVar(&checkLimit, "limit", 10, "Maximum issues shown per type (0 for all)")
}
