package security

import (
	"github.com/forest6511/pw/pkg/entry"
)

// SecurityScore represents the overall security assessment of a database.
type SecurityScore struct {
	// Overall is the total score (0-100).
	Overall int `json:"overall"`
	// Components breaks down the score into categories.
	Components ScoreComponents `json:"components"`
	// Entries is the number of entries examined.
	Entries int `json:"entries"`
	// Issues contains the detected security issues.
	Issues []SecurityIssue `json:"issues"`
	// Suggestions provides actionable recommendations.
	Suggestions []string `json:"suggestions"`
	// Limited indicates if issues were cut by the limit.
	Limited bool `json:"limited"`
}

// ScoreComponents breaks down the security score into categories.
// Each component contributes up to 50 points (total: 100).
type ScoreComponents struct {
	// StrengthScore is based on average password strength (0-50).
	StrengthScore int `json:"strength"`
	// UniquenessScore is based on percentage of unique passwords (0-50).
	UniquenessScore int `json:"uniqueness"`
}

// IssueType identifies the type of security issue.
type IssueType string

const (
	// IssueWeakPassword indicates a password with insufficient strength.
	IssueWeakPassword IssueType = "weak"
	// IssueDuplicatePassword indicates passwords reused across entries.
	IssueDuplicatePassword IssueType = "duplicate"
	// IssueEmptyPassword indicates an entry without a password.
	IssueEmptyPassword IssueType = "empty"
)

// Severity indicates the urgency of a security issue.
type Severity string

const (
	// SeverityCritical requires immediate attention.
	SeverityCritical Severity = "critical"
	// SeverityWarning should be addressed soon.
	SeverityWarning Severity = "warning"
	// SeverityInfo is informational only.
	SeverityInfo Severity = "info"
)

// SecurityIssue represents a detected security problem. It never carries
// a password.
type SecurityIssue struct {
	Type     IssueType `json:"type"`
	Severity Severity  `json:"severity"`
	// Entries are the affected entries; several for duplicates.
	Entries     []EntryRef `json:"entries,omitempty"`
	Description string     `json:"description"`
	Suggestion  string     `json:"suggestion,omitempty"`
}

// maxComponentScore is the upper bound of each score component.
const maxComponentScore = 50

// Calculator computes security scores for a set of entries.
type Calculator struct {
	hmacKey []byte // Session-local key for duplicate detection
	limit   int    // Max issues per type (0 = unlimited)
}

// NewCalculator creates a new security calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// WithLimit caps the number of reported issues per type.
func (c *Calculator) WithLimit(limit int) *Calculator {
	c.limit = limit
	return c
}

// CalculateScore computes the full security score for the entries.
func (c *Calculator) CalculateScore(entries []entry.Entry) (*SecurityScore, error) {
	// Empty database: perfect score
	if len(entries) == 0 {
		return &SecurityScore{
			Overall: 100,
			Components: ScoreComponents{
				StrengthScore:   maxComponentScore,
				UniquenessScore: maxComponentScore,
			},
			Issues:      []SecurityIssue{},
			Suggestions: []string{},
		}, nil
	}

	strengthScore, weakIssues := c.calculateStrengthScore(entries)
	uniquenessScore, dupIssues, err := c.calculateUniquenessScore(entries)
	if err != nil {
		return nil, err
	}

	allIssues := make([]SecurityIssue, 0, len(weakIssues)+len(dupIssues))
	allIssues = append(allIssues, weakIssues...)
	allIssues = append(allIssues, dupIssues...)
	allIssues = append(allIssues, emptyIssues(entries)...)

	limited := false
	if c.limit > 0 {
		allIssues, limited = c.applyLimit(allIssues)
	}

	return &SecurityScore{
		Overall: strengthScore + uniquenessScore,
		Components: ScoreComponents{
			StrengthScore:   strengthScore,
			UniquenessScore: uniquenessScore,
		},
		Entries:     len(entries),
		Issues:      allIssues,
		Suggestions: generateSuggestions(allIssues),
		Limited:     limited,
	}, nil
}

// calculateStrengthScore evaluates password strength across all entries.
// Returns score (0-50) and weak password issues.
func (c *Calculator) calculateStrengthScore(entries []entry.Entry) (int, []SecurityIssue) {
	var issues []SecurityIssue
	totalPoints := 0
	passwordCount := 0

	for _, e := range entries {
		if e.Password == "" {
			continue
		}

		passwordCount++
		strength := EntryStrength(e)
		totalPoints += strength.Points()

		if strength == PasswordWeak {
			issues = append(issues, weakIssue(e))
		}
	}

	// No passwords: full score (N/A)
	if passwordCount == 0 {
		return maxComponentScore, issues
	}

	// Average points are 0-25; scale to the component range
	score := totalPoints * 2 / passwordCount
	if score > maxComponentScore {
		score = maxComponentScore
	}

	return score, issues
}

// calculateUniquenessScore evaluates password reuse across entries.
// Returns score (0-50) and duplicate issues.
func (c *Calculator) calculateUniquenessScore(entries []entry.Entry) (int, []SecurityIssue, error) {
	duplicates, err := c.FindDuplicates(entries, 0)
	if err != nil {
		return 0, nil, err
	}

	passwordHashes := make(map[string]bool)
	totalPasswords := 0
	for _, e := range entries {
		value := normalizeValue(e.Password)
		if value == "" {
			continue
		}
		totalPasswords++
		passwordHashes[computeValueHash(value, c.hmacKey)] = true
	}

	// No passwords: full score (N/A)
	if totalPasswords == 0 {
		return maxComponentScore, nil, nil
	}

	var issues []SecurityIssue
	for _, dup := range duplicates {
		issues = append(issues, SecurityIssue{
			Type:        IssueDuplicatePassword,
			Severity:    SeverityWarning,
			Entries:     dup.Entries,
			Description: "Multiple entries share the same password",
			Suggestion:  "Use unique passwords for each account",
		})
	}

	score := len(passwordHashes) * maxComponentScore / totalPasswords
	return score, issues, nil
}

// emptyIssues reports entries without a password.
func emptyIssues(entries []entry.Entry) []SecurityIssue {
	var issues []SecurityIssue
	for _, e := range entries {
		if e.Password != "" {
			continue
		}
		issues = append(issues, SecurityIssue{
			Type:        IssueEmptyPassword,
			Severity:    SeverityInfo,
			Entries:     []EntryRef{{Key: e.Key, User: e.User}},
			Description: "Entry has no password",
		})
	}
	return issues
}

// applyLimit caps the issues of each type.
func (c *Calculator) applyLimit(issues []SecurityIssue) ([]SecurityIssue, bool) {
	limited := false
	counts := make(map[IssueType]int)
	var result []SecurityIssue

	for _, issue := range issues {
		if counts[issue.Type] >= c.limit {
			limited = true
			continue
		}
		counts[issue.Type]++
		result = append(result, issue)
	}

	return result, limited
}

// generateSuggestions creates actionable recommendations based on issues.
func generateSuggestions(issues []SecurityIssue) []string {
	suggestions := []string{}
	hasWeak := false
	hasDuplicate := false

	for _, issue := range issues {
		switch issue.Type {
		case IssueWeakPassword:
			hasWeak = true
		case IssueDuplicatePassword:
			hasDuplicate = true
		}
	}

	if hasWeak {
		suggestions = append(suggestions, "Update weak passwords with stronger alternatives (14+ characters)")
	}
	if hasDuplicate {
		suggestions = append(suggestions, "Replace duplicate passwords with unique values")
	}

	return suggestions
}
