package mcp

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"mediasort/internal/adapters/jsonfile"
	"mediasort/internal/application/commands"
	"mediasort/internal/domain"
	"mediasort/internal/ports"
)

// Services are the pipeline pieces the tools run against
type Services struct {
	Organizer commands.Organizer
	State     ports.StateStore
	Library   ports.Library
	Manifest  commands.ManifestSettings
	Stages    domain.StageVocabulary
}

// RegisterReadTools adds all read-only pipeline tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, svc Services) {
	s.AddTool(planTool(), planHandler(svc.Organizer))
	s.AddTool(reviewQueueTool(), reviewQueueHandler(svc.State))
	s.AddTool(manifestTool(), manifestHandler(svc.Library, svc.Manifest))
}

// --- plan ---

func planTool() mcp.Tool {
	return mcp.NewTool("plan",
		mcp.WithDescription("Scan the media root and show where each file would be organized. Nothing is moved."),
		mcp.WithBoolean("all",
			mcp.Description("Include files that are already in place"),
		),
	)
}

func planHandler(organizer commands.Organizer) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		all := req.GetBool("all", false)

		result, err := commands.NewScanCommand(organizer).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		sb.WriteString(result.Message)
		sb.WriteByte('\n')
		for _, op := range result.Moves {
			if op.Status == domain.MoveStatusSkipped && !all {
				continue
			}
			sb.WriteString(formatMove(op))
			sb.WriteByte('\n')
		}
		for _, w := range result.Warnings {
			fmt.Fprintf(&sb, "warning: %s: %s\n", w.Path, w.Reason)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- review_queue ---

func reviewQueueTool() mcp.Tool {
	return mcp.NewTool("review_queue",
		mcp.WithDescription("List files waiting for a review decision, with the proposed category, stage and confidence."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of files to return. Omit for all."),
		),
	)
}

func reviewQueueHandler(store ports.ReviewStore) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", 0)

		items, err := commands.NewListReviewCommand(store, domain.ReviewPending).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		if limit > 0 && len(items) > limit {
			items = items[:limit]
		}
		return formatEntities(items, formatReviewItem)
	}
}

// --- manifest ---

func manifestTool() mcp.Tool {
	return mcp.NewTool("manifest",
		mcp.WithDescription("Build the presentation manifest (projects, stages, covers, categories) from the organized library as JSON."),
	)
}

func manifestHandler(library ports.Library, settings commands.ManifestSettings) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewWriteManifestCommand(library, nil, settings).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		var buf bytes.Buffer
		if err := jsonfile.EncodeManifest(&buf, result.Manifest); err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(buf.String()), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatEntities[T any](entities []T, format func(T) string) (*mcp.CallToolResult, error) {
	if len(entities) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, e := range entities {
		sb.WriteString(format(e))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func formatMove(op *domain.MoveOperation) string {
	target := op.TargetPath
	if target == "" {
		target = "-"
	}
	line := fmt.Sprintf("%s  %s -> %s  (%s, %.2f)",
		op.Status, op.File.RelativePath, target, op.TargetCategory, op.Classification.Confidence)
	if op.Reason != "" {
		line += "  " + op.Reason
	}
	return line
}

func formatReviewItem(item domain.ReviewItem) string {
	line := fmt.Sprintf("%s  %s/%s  %s  %.2f",
		item.FileID, item.ProposedCategory, item.ProposedSubcategory, item.ProposedStage, item.Confidence)
	if item.Flagged {
		line += "  flagged"
		if item.FlagReason != "" {
			line += ": " + item.FlagReason
		}
	}
	return line
}
