// Package mcp implements the Model Context Protocol server for the ticket
// assignment engine, exposing AssignTicket as a single MCP tool so
// MCP-compatible agents (ticket system bots, on-call assistants) can get an
// assignment recommendation without talking to the Assignment Pipeline
// directly.
package mcp

import (
	"log/slog"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/aa5177-adm/ticket-ai/internal/assignment"
	"github.com/aa5177-adm/ticket-ai/internal/service/similarity"
	"github.com/aa5177-adm/ticket-ai/internal/storage/postgres"
)

// serverInstructions is sent to every MCP client during the initialize
// handshake so connected agents know the one workflow this server supports.
const serverInstructions = `You have access to the ticket assignment engine.

Call assign_ticket with a ticket's id, title, description, priority, and
category to get back the recommended assignee, a confidence score, the
rules that were applied, and the reasoning behind the pick. When confidence
is too low or no candidate is available, the response asks for human
review instead of naming an assignee — surface that to the user rather
than guessing an assignee yourself.`

// Server wraps the MCP server with the assignment engine's collaborators.
type Server struct {
	mcpServer *mcpserver.MCPServer
	engine    *assignment.Engine
	resolver  *similarity.Resolver
	db        *storage.DB
	logger    *slog.Logger
}

// New creates and configures a new MCP server exposing assign_ticket.
func New(engine *assignment.Engine, resolver *similarity.Resolver, db *storage.DB, logger *slog.Logger, version string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine:   engine,
		resolver: resolver,
		db:       db,
		logger:   logger,
	}

	s.mcpServer = mcpserver.NewMCPServer(
		"ticketassign",
		version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithInstructions(serverInstructions),
	)

	s.registerTools()

	return s
}

// MCPServer returns the underlying mcp-go server for transport setup.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
