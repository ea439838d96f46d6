package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forest6511/pw/internal/cli"
	"github.com/forest6511/pw/pkg/codec"
	"github.com/forest6511/pw/pkg/entry"
	"github.com/forest6511/pw/pkg/importer"
	"github.com/forest6511/pw/pkg/parser"
	"github.com/forest6511/pw/pkg/store"
)

var (
	importFrom  string
	importKeys  []string
	importWrite bool
)

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importFrom, "from", "", "Export format: "+strings.Join(importer.ValidSources(), ", "))
	importCmd.Flags().StringSliceVarP(&importKeys, "key", "k", nil, "Keys to import (glob pattern supported)")
	importCmd.Flags().BoolVar(&importWrite, "write", false, "Append the entries to the password database")
	_ = importCmd.MarkFlagRequired("from")
	_ = importCmd.RegisterFlagCompletionFunc("from", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return importer.ValidSources(), cobra.ShellCompDirectiveNoFileComp
	})
}

var importCmd = &cobra.Command{
	Use:   "import --from SOURCE FILE",
	Short: "Convert another password manager's export",
	Long: `Convert an export of another password manager into pw entries.

Folders become the leading parts of the key: a login "GitHub" in the
folder "Work" is imported as "work.github". TOTP seeds, hidden custom
fields, cards and identities are not imported, and neither are items
without a password, which the line format cannot hold.

By default the entries are printed in the line format. With --write they
are appended to the password database, which must use the line format;
a backup of the previous file is kept next to it.

Examples:
  # Preview a LastPass export
  pw import --from lastpass lastpass_export.csv

  # Append the "Work" folder of a Bitwarden export
  pw import --from bitwarden -k 'work.*' --write bitwarden.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeImport(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0])
	},
}

func executeImport(ctx context.Context, out, errOut io.Writer, file string) error {
	p, err := importer.GetParser(importer.Source(strings.ToLower(importFrom)))
	if err != nil {
		return err
	}

	data, err := readExportFile(file)
	if err != nil {
		return err
	}

	result, err := p.Parse(data)
	if err != nil {
		return err
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(errOut, "warning: %s\n", w)
	}

	entries := result.Entries
	if len(importKeys) > 0 {
		entries, err = filterImportKeys(entries, importKeys)
		if err != nil {
			return err
		}
	}
	logger.Debug(ctx, "export parsed", "source", p.Source(), "entries", len(entries), "skipped", len(result.Skipped))

	data, omitted := parser.MarshalLines(entries)
	for _, e := range omitted {
		fmt.Fprintf(errOut, "warning: %s: no password, not imported\n", e.Key)
	}
	skipped := len(result.Skipped) + len(omitted)

	if !importWrite {
		_, err := out.Write(data)
		return err
	}

	if err := appendLines(ctx, data); err != nil {
		return err
	}
	fmt.Fprintf(out, "imported %d entries into %s (%d skipped)\n", len(entries)-len(omitted), cfg.Store.Path, skipped)
	return nil
}

// readExportFile reads and validates an export file.
func readExportFile(file string) ([]byte, error) {
	absPath, err := filepath.Abs(file)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	info, err := os.Lstat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", file)
		}
		return nil, fmt.Errorf("failed to access file: %w", err)
	}

	// Security check: reject symlinks
	if info.Mode()&os.ModeSymlink != 0 {
		return nil, fmt.Errorf("security: refusing to read symlink: %s", absPath)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// filterImportKeys keeps the entries whose key matches one of patterns.
func filterImportKeys(entries []entry.Entry, patterns []string) ([]entry.Entry, error) {
	keys := store.New("", entries).Keys()
	matched, err := cli.ExpandPatterns(patterns, keys)
	if err != nil {
		return nil, err
	}
	return cli.SelectEntries(entries, matched), nil
}

// appendLines adds line-format entries to the end of the configured
// database, creating it when it does not exist yet.
func appendLines(ctx context.Context, lines []byte) error {
	path := cfg.Store.Path
	if parser.FormatForPath("db"+codec.UnencryptedExt(path)) != parser.FormatLine {
		return fmt.Errorf("cannot append to %s: --write needs a database in the line format", path)
	}

	opts := codecOptions(cfg)
	c, err := codec.ForPath(path, opts)
	if err != nil {
		return err
	}
	if _, isGPG := c.(*codec.GPG); isGPG && opts.Recipient == "" {
		return errNoRecipient
	}

	var existing []byte
	if _, err := os.Stat(path); err == nil {
		if existing, err = c.Decrypt(ctx, path); err != nil {
			return fmt.Errorf("failed to read password store: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	content := existing
	if len(content) > 0 && content[len(content)-1] != '\n' {
		content = append(content, '\n')
	}
	content = append(content, lines...)

	return replaceDatabase(ctx, c, path, content)
}
