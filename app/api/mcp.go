package api

import (
	"context"
	"fmt"

	"concierge/app/service/dialogue"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/samber/do"
)

// MCPServer exposes the assistant as MCP tools over stdio so other agents
// can drive the same dialogue sessions programmatically.
type MCPServer struct {
	dialogueSvc *dialogue.Service
	srv         *server.MCPServer
}

func NewMCPServer(di *do.Injector) (*MCPServer, error) {
	s := &MCPServer{
		dialogueSvc: do.MustInvoke[*dialogue.Service](di),
	}

	srv := server.NewMCPServer("concierge", "1.0.0")

	srv.AddTool(mcp.NewTool("chat",
		mcp.WithDescription("Send one message to the meeting/email assistant. Omit session_id to start a new session; the id is returned with every reply."),
		mcp.WithString("session_id", mcp.Description("Existing session identifier")),
		mcp.WithString("message", mcp.Required(), mcp.Description("User message text")),
	), s.handleChat)

	srv.AddTool(mcp.NewTool("reset_session",
		mcp.WithDescription("Discard a session's state and start over. Returns the replacement session id."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier to reset")),
	), s.handleReset)

	s.srv = srv

	return s, nil
}

func (s *MCPServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		errCh <- server.ServeStdio(s.srv)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *MCPServer) handleChat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sessionID := request.GetString("session_id", "")
	if sessionID == "" {
		sessionID = s.dialogueSvc.StartSession()
	}

	response, snapshot, err := s.dialogueSvc.ProcessTurn(ctx, sessionID, message)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("[session %s] %s", snapshot.SessionID, response)), nil
}

func (s *MCPServer) handleReset(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	newID, err := s.dialogueSvc.ResetSession(sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("new session: " + newID), nil
}
