package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/forest6511/pw/internal/mcp"
)

func init() {
	rootCmd.AddCommand(mcpServerCmd)
}

// mcpServerCmd starts the MCP server for AI coding assistant integration
var mcpServerCmd = &cobra.Command{
	Use:   "mcp-server",
	Short: "Start the MCP server for AI coding assistant integration",
	Long: `Start an MCP server that lets AI coding assistants look up entries
without ever receiving a plaintext password.

The server implements the Model Context Protocol (MCP) over stdio transport.
The database is loaded once at start and served read-only.

Available tools:
  - entry_search:     Find entries by key and user (no passwords)
  - entry_get_masked: Get the masked password of one entry (e.g. "****WXYZ")
  - database_check:   Security score with weak and reused passwords

Encrypted databases:
  GPG files are decrypted through gpg-agent. Sealed (.pwx) files need
  PW_PASSPHRASE since there is no terminal to prompt on.

Example MCP configuration:
  {
    "mcpServers": {
      "pw": {
        "type": "stdio",
        "command": "/path/to/pw",
        "args": ["mcp-server"],
        "env": {
          "PW_PATH": "/home/me/passwords.pw.gpg"
        }
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCPServer(cmd.Context())
	},
}

func runMCPServer(ctx context.Context) error {
	opts := codecOptions(cfg)
	// stdin carries the protocol, so never prompt.
	opts.Prompt = func() ([]byte, error) { return nil, nil }

	st, err := loadStore(ctx, opts)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.ServerOptions{
		Store:   st,
		Version: version,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	// Set up signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		// Don't report context canceled as an error
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("MCP server error: %w", err)
	}

	return nil
}
