package main

import (
	"context"
	"flag"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	mcpadapter "mediasort/internal/adapters/mcp"
	"mediasort/internal/workspace"
)

func main() {
	configFlag := flag.String("config", "", "configuration file path")
	rootFlag := flag.String("root", "", "media root to serve")
	flag.Parse()

	ws, err := workspace.Open(workspace.Options{ConfigPath: *configFlag, Root: *rootFlag})
	if err != nil {
		log.Fatalf("mediasort-mcp: %v", err)
	}
	defer ws.Close()

	mcpServer := server.NewMCPServer(
		"mediasort-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	svc := mcpadapter.Services{
		Organizer: ws.Engine,
		State:     ws.Store,
		Library:   ws.Library,
		Manifest:  ws.ManifestSettings(),
		Stages:    ws.Config.StageVocabulary(),
	}
	mcpadapter.RegisterReadTools(mcpServer, svc)
	mcpadapter.RegisterWriteTools(mcpServer, svc)

	ws.ComponentLogger("mcp").Info("serving tools on stdio")
	if err := server.ServeStdio(mcpServer); err != nil {
		ws.Close()
		log.Fatalf("mediasort-mcp: %v", err)
	}
}
