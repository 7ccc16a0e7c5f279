// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Dagaz board tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/dagaz/internal/boardservice"
	"github.com/starford/dagaz/internal/models"
)

// Server wraps the MCP server with Dagaz tools.
type Server struct {
	mcp *server.MCPServer
	svc *boardservice.Service
}

// New creates a new MCP server with all Dagaz tools registered.
func New(svc *boardservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Dagaz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_cards",
		mcp.WithDescription("List the board columns and all cards, ordered by position within each column."),
	), s.listCards)

	s.mcp.AddTool(mcp.NewTool("read_card",
		mcp.WithDescription("Read the full content of a card by its title."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Exact card title")),
	), s.readCard)

	s.mcp.AddTool(mcp.NewTool("create_card",
		mcp.WithDescription("Create a new card in a column. Titles are unique across the whole board. "+
			"Content MUST follow the canonical card format (Markdown body, no frontmatter in the content "+
			"argument). Read the contract first via the get_card_contract tool or the "+
			"dagaz://card-format resource."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Card title, unique across the board")),
		mcp.WithString("column", mcp.Required(), mcp.Description("Column id the card starts in")),
		mcp.WithString("content", mcp.Description("Markdown body of the card")),
	), s.createCard)

	s.mcp.AddTool(mcp.NewTool("move_card",
		mcp.WithDescription("Move a card to another column."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Exact card title")),
		mcp.WithString("column", mcp.Required(), mcp.Description("Destination column id")),
	), s.moveCard)

	s.mcp.AddTool(mcp.NewTool("archive_card",
		mcp.WithDescription("Move a card out of the board into the archive."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Exact card title")),
	), s.archiveCard)

	s.mcp.AddTool(mcp.NewTool("sync_status",
		mcp.WithDescription("Report the board's synchronization state and whether push or pull is available."),
	), s.syncStatus)

	s.mcp.AddTool(mcp.NewTool("get_card_contract",
		mcp.WithDescription("Returns the canonical Dagaz card format contract. "+
			"Call this before creating or updating cards to ensure correct structure."),
	), s.getCardContract)

	// Resource: card format contract.
	s.mcp.AddResource(
		mcp.NewResource("dagaz://card-format", "Card Format Contract",
			mcp.WithResourceDescription("Canonical Markdown card format that all cards must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readCardFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// findCard locates a card by exact title in the current snapshot.
func (s *Server) findCard(ctx context.Context, title string) (*models.Card, error) {
	loaded, err := s.svc.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range loaded.Cards {
		if loaded.Cards[i].Title == title {
			return &loaded.Cards[i], nil
		}
	}
	return nil, fmt.Errorf("no card titled %q", title)
}

func (s *Server) listCards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	loaded, err := s.svc.Load(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	for _, col := range loaded.Board.Columns {
		fmt.Fprintf(&b, "## %s (%s)\n", col.Name, col.ID)
		for _, card := range loaded.Cards {
			if card.Column == col.ID {
				fmt.Fprintf(&b, "- %s\n", card.Title)
			}
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) readCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	card, err := s.findCard(ctx, title)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(card, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	column, err := req.RequireString("column")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content := ""
	if c, cErr := req.RequireString("content"); cErr == nil {
		content = c
	}

	card := &models.Card{Title: title, Column: column, Content: content}
	if err := s.svc.CreateCard(ctx, card); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s in %s", title, column)), nil
}

func (s *Server) moveCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	column, err := req.RequireString("column")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	card, err := s.findCard(ctx, title)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	prevColumn := card.Column
	card.Column = column
	if err := s.svc.UpdateCard(ctx, card, nil, &prevColumn); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("moved: %s to %s", title, column)), nil
}

func (s *Server) archiveCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	card, err := s.findCard(ctx, title)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	archivePath, err := s.svc.ArchiveCard(ctx, card)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("archived: %s", archivePath)), nil
}

func (s *Server) syncStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := s.svc.SyncStatus()
	out, _ := json.MarshalIndent(map[string]any{
		"state":   st.State,
		"message": st.Message,
		"canPush": st.CanPush(),
		"canPull": st.CanPull(),
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getCardContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(CardFormatContract), nil
}

func (s *Server) readCardFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "dagaz://card-format",
			MIMEType: "text/markdown",
			Text:     CardFormatContract,
		},
	}, nil
}
