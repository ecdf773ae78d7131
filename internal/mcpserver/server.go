// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes day-trip tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/fiorelli/daytrip/internal/countdown"
	"github.com/fiorelli/daytrip/internal/itinerary"
	"github.com/fiorelli/daytrip/internal/state"
	"github.com/fiorelli/daytrip/internal/timeline"
)

// Server wraps the MCP server with day-trip tools.
type Server struct {
	mcp   *server.MCPServer
	store *itinerary.Store
	db    *state.DB
	coord *timeline.Coordinator
	cd    *countdown.Service
}

// New creates a new MCP server with all day-trip tools registered.
// db may be nil; toggles then stay in memory only.
func New(store *itinerary.Store, db *state.DB, coord *timeline.Coordinator, cd *countdown.Service) *Server {
	s := &Server{store: store, db: db, coord: coord, cd: cd}

	s.mcp = server.NewMCPServer(
		"Daytrip",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_activities",
		mcp.WithDescription("List the day's activities with live progress, status, and the gaps between them."),
	), s.listActivities)

	s.mcp.AddTool(mcp.NewTool("get_activity",
		mcp.WithDescription("Read the full details of one activity."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Activity id")),
	), s.getActivity)

	s.mcp.AddTool(mcp.NewTool("toggle_activity",
		mcp.WithDescription("Mark an activity done, or reopen it if it is already done."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Activity id")),
	), s.toggleActivity)

	s.mcp.AddTool(mcp.NewTool("get_countdown",
		mcp.WithDescription("Time remaining until the day's hard deadline (the last safe departure)."),
	), s.getCountdown)

	s.mcp.AddTool(mcp.NewTool("trip_summary",
		mcp.WithDescription("Aggregate view of the day: total window, active and idle time, walking distance, stop counts."),
	), s.tripSummary)

	s.mcp.AddTool(mcp.NewTool("list_phrases",
		mcp.WithDescription("List the local-language phrasebook with pronunciations and meanings."),
	), s.listPhrases)

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

func (s *Server) listActivities(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(s.coord.View(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getActivity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	act, ok := s.store.Get(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(act, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) toggleActivity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	act, ok := s.store.Toggle(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}

	if s.db != nil {
		if saveErr := s.db.SaveCompletion(s.store.Snapshot()); saveErr != nil {
			slog.Error("failed to persist completion state",
				slog.String("activity", id),
				slog.String("error", saveErr.Error()))
		}
	}

	if act.Completed {
		return mcp.NewToolResultText(fmt.Sprintf("completed: %s", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("reopened: %s", id)), nil
}

func (s *Server) getCountdown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(s.cd.Snapshot(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) tripSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(s.coord.Summary(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listPhrases(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(s.store.Phrases(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
