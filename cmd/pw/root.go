package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/forest6511/pw/internal/cli"
	"github.com/forest6511/pw/internal/config"
	"github.com/forest6511/pw/internal/logging"
	"github.com/forest6511/pw/pkg/clipboard"
	"github.com/forest6511/pw/pkg/codec"
	"github.com/forest6511/pw/pkg/search"
	"github.com/forest6511/pw/pkg/store"
)

var (
	cfg    *config.Config
	logger logging.Logger = logging.Discard()

	// clip receives secrets in copy mode; tests replace it.
	clip clipboard.Clipboard = clipboard.System{}
)

// Search flags
var (
	copyFlag    bool
	echoFlag    bool
	rawFlag     bool
	strictFlag  bool
	userFlag    bool
	noPasswords bool
	filePath    string
	editFlag    bool
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "pw [flags] [USER@][KEY] [USER]",
	Short: "Search for USER and KEY in a password file",
	Long: `Search for USER and KEY in a (possibly encrypted) password file.

KEY matches anywhere in the entry key, case-insensitively; USER matches
anywhere in the username. When only one argument is given, the text
before the last "@" is taken as USER:

  pw goggle             # all entries with "goggle" in the key
  pw bob@goggle         # ... whose user contains "bob"
  pw goggle bob         # same as above
  pw -E router          # print passwords instead of copying

The database location is taken from --file, PW_PATH, or the user config
directory. Files ending in .gpg or .asc are decrypted with gpg2, files
ending in .pwx with a passphrase (PW_PASSPHRASE or prompt).`,
	Version:       version,
	Args:          cobra.MaximumNArgs(2),
	SilenceErrors: true,
	SilenceUsage:  true,
	// PersistentPreRunE runs before the root command and all subcommands.
	// It loads the configuration from the environment.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		initConfig()
		return nil
	},
	ValidArgsFunction: completeKeys,
	RunE: func(cmd *cobra.Command, args []string) error {
		if editFlag {
			return runEdit(cmd.Context(), cmd.OutOrStdout())
		}
		return runSearch(cmd.Context(), cmd.OutOrStdout(), args)
	},
}

func init() {
	rootCmd.SetVersionTemplate("pw version {{.Version}}\n")

	rootCmd.Flags().BoolVarP(&copyFlag, "copy", "C", false, "Copy password to clipboard (default)")
	rootCmd.Flags().BoolVarP(&echoFlag, "echo", "E", false, "Print password to console")
	rootCmd.Flags().BoolVarP(&rawFlag, "raw", "R", false, "Output password only")
	rootCmd.MarkFlagsMutuallyExclusive("copy", "echo", "raw")

	rootCmd.Flags().BoolVarP(&strictFlag, "strict", "S", false, "Fail unless precisely a single result has been found")
	rootCmd.Flags().BoolVarP(&userFlag, "user", "U", false, "Copy or display username instead of password")
	rootCmd.Flags().BoolVar(&noPasswords, "no-passwords", false, "Do not show or copy passwords")
	rootCmd.Flags().BoolVar(&editFlag, "edit", false, "Launch PW_EDITOR to edit the password database")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log diagnostics to stderr")

	rootCmd.PersistentFlags().StringVarP(&filePath, "file", "f", "", "Password file (default $PW_PATH or the user config directory)")
}

// initConfig reads the environment and applies the global flags.
func initConfig() {
	cfg = config.NewConfig()
	if filePath != "" {
		cfg.Store.Path = filePath
	}
	logger = logging.New(os.Stderr, cfg.Output.Debug || verbose)
}

// codecOptions builds the codec settings from the configuration.
func codecOptions(c *config.Config) codec.Options {
	opts := codec.Options{
		GPGBinary:  c.GPG.Binary,
		GPGHomedir: c.GPG.Homedir,
		Recipient:  c.GPG.Recipient,
	}
	if c.Store.Passphrase != "" {
		opts.Passphrase = []byte(c.Store.Passphrase)
	}
	return opts
}

// loadStore loads the configured database. A missing file is reported
// with its path.
func loadStore(ctx context.Context, opts codec.Options) (*store.Store, error) {
	path := cfg.Store.Path
	logger.Debug(ctx, "loading password store", "path", path, "encrypted", codec.IsEncrypted(path))

	st, err := store.Load(ctx, path, opts)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &exitError{code: ExitError, err: fmt.Errorf("password store not found at '%s'", path)}
		}
		return nil, err
	}

	logger.Debug(ctx, "password store loaded", "entries", st.Len(), "format", st.Format())
	return st, nil
}

// searchMode returns the render mode selected by the flags.
func searchMode() cli.Mode {
	switch {
	case echoFlag:
		return cli.ModeEcho
	case rawFlag:
		return cli.ModeRaw
	default:
		return cli.ModeCopy
	}
}

func runSearch(ctx context.Context, out io.Writer, args []string) error {
	st, err := loadStore(ctx, codecOptions(cfg))
	if err != nil {
		return err
	}

	q := search.ParseQuery(args)
	results := st.Query(q)
	logger.Debug(ctx, "search finished", "key", q.Key, "user", q.User, "results", len(results))

	if strictFlag {
		if err := search.Strict(results); err != nil {
			return &exitError{code: ExitStrict, err: fmt.Errorf("%w (but using --strict flag)", err)}
		}
	}

	return cli.Render(ctx, out, results, q, cli.RenderOptions{
		Mode:        searchMode(),
		User:        userFlag,
		NoPasswords: noPasswords,
		Color:       !cfg.Output.NoColor && isTerminal(out),
		Clipboard:   clip,
		Logger:      logger,
	})
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
