package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"mediasort/internal/application/commands"
	"mediasort/internal/domain"
	"mediasort/internal/ports"
)

// RegisterWriteTools adds the tools that record review decisions.
// Neither tool moves files; decisions take effect on the next commit run.
func RegisterWriteTools(s *server.MCPServer, svc Services) {
	s.AddTool(submitCorrectionTool(), submitCorrectionHandler(svc.State, svc.Stages))
	s.AddTool(flagFileTool(), flagFileHandler(svc.State))
}

// --- submit_correction ---

func submitCorrectionTool() mcp.Tool {
	return mcp.NewTool("submit_correction",
		mcp.WithDescription("Record the correct category, subcategory and stage for a file. The decision overrides automatic classification from the next run on."),
		mcp.WithString("file_id",
			mcp.Description("File path relative to the media root (e.g. nature/birds/IMG_2056.jpg)"),
			mcp.Required(),
		),
		mcp.WithString("category",
			mcp.Description("Category name from the taxonomy"),
			mcp.Required(),
		),
		mcp.WithString("subcategory",
			mcp.Description("Subcategory name. Omit for general."),
		),
		mcp.WithString("stage",
			mcp.Description("Stage name (e.g. raw, rough, detailed, finishing, final). Omit to let the stage be detected."),
		),
		mcp.WithString("notes",
			mcp.Description("Free-form reviewer notes"),
		),
	)
}

func submitCorrectionHandler(state ports.StateStore, vocab domain.StageVocabulary) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		correction := domain.Correction{
			FileID:      req.GetString("file_id", ""),
			Category:    req.GetString("category", ""),
			Subcategory: req.GetString("subcategory", ""),
			Stage:       domain.Stage(strings.ToLower(strings.TrimSpace(req.GetString("stage", "")))),
			Notes:       req.GetString("notes", ""),
		}

		cmd := commands.NewImportCorrectionsCommand(state, vocab, []domain.Correction{correction})
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		if len(result.Rejected) > 0 {
			return toolError(fmt.Errorf("correction rejected: %s", result.Rejected[0]))
		}

		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- flag_file ---

func flagFileTool() mcp.Tool {
	return mcp.NewTool("flag_file",
		mcp.WithDescription("Flag a file for human review, or clear an existing flag."),
		mcp.WithString("file_id",
			mcp.Description("File path relative to the media root"),
			mcp.Required(),
		),
		mcp.WithString("reason",
			mcp.Description("Why the file needs review"),
		),
		mcp.WithBoolean("clear",
			mcp.Description("Clear the flag instead of setting it"),
		),
	)
}

func flagFileHandler(state ports.StateStore) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fileID := req.GetString("file_id", "")
		reason := req.GetString("reason", "")
		clear := req.GetBool("clear", false)

		result, err := commands.NewFlagFileCommand(state, fileID, reason, clear).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		return mcp.NewToolResultText(result.Message), nil
	}
}
