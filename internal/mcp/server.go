// Package mcp implements the MCP (Model Context Protocol) server for pw.
// AI agents can search the database and see masked passwords; they never
// receive a plaintext password.
package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/forest6511/pw/internal/logging"
	"github.com/forest6511/pw/pkg/store"
)

// ServerName is reported to MCP clients.
const ServerName = "pw"

// ErrNoStore indicates NewServer was called without a loaded store.
var ErrNoStore = errors.New("mcp: no password store loaded")

// Server represents the MCP server for pw.
type Server struct {
	server *mcp.Server
	store  *store.Store
	log    logging.Logger
}

// ServerOptions contains configuration options for the MCP server.
type ServerOptions struct {
	// Store is the loaded database. It is read-only for the server's lifetime.
	Store *store.Store

	// Version is reported to clients.
	Version string

	Logger logging.Logger
}

// NewServer creates a new MCP server instance.
func NewServer(opts *ServerOptions) (*Server, error) {
	if opts == nil || opts.Store == nil {
		return nil, ErrNoStore
	}

	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}

	version := opts.Version
	if version == "" {
		version = "dev"
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    ServerName,
			Version: version,
		},
		nil,
	)

	s := &Server{
		server: mcpServer,
		store:  opts.Store,
		log:    log.With("component", "mcp", "path", opts.Store.Path()),
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all MCP tools with the server.
func (s *Server) registerTools() {
	// entry_search - Search entries (no passwords)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "entry_search",
		Description: "Search the password database. The query uses the pw syntax '[USER@][KEY]': KEY matches a substring of the entry key (case-insensitive), USER a substring of the username (case-sensitive). Returns keys, usernames, notes and link presence. Does NOT return passwords.",
	}, s.handleEntrySearch)

	// entry_get_masked - Get masked password of exactly one entry
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "entry_get_masked",
		Description: "Get a masked version of the password of the single entry matching the query (e.g., '****WXYZ'). Fails unless exactly one entry matches. Useful for verifying which credential is stored without exposing it.",
	}, s.handleEntryGetMasked)

	// database_check - Security report
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "database_check",
		Description: "Report weak, reused and empty passwords in the database with an overall score (0-100). Does NOT return passwords.",
	}, s.handleDatabaseCheck)
}

// Run starts the MCP server using stdio transport.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info(ctx, "serving", "entries", s.store.Len())
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
