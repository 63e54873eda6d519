package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterPrompts adds the canned farm-review prompt templates.
func RegisterPrompts(server *mcp.Server) {
	server.AddPrompt(&mcp.Prompt{
		Name:        "recent_activity",
		Description: "What has happened on the farm recently?",
	}, staticPrompt(
		"Use get_logs to fetch the 20 most recent logs across all types. "+
			"Summarise what has been happening on the farm: group activities by type, "+
			"mention which assets were involved, and highlight anything that is still pending.",
	))

	server.AddPrompt(&mcp.Prompt{
		Name:        "pending_tasks",
		Description: "What tasks and observations are still pending?",
	}, staticPrompt(
		"Use get_logs with status='pending' to fetch all pending logs. "+
			"List them grouped by log type, include the name, date, and any associated assets. "+
			"Highlight anything that is overdue (timestamp in the past).",
	))

	server.AddPrompt(&mcp.Prompt{
		Name:        "farm_overview",
		Description: "Give me a full overview of my farm: assets and recent activity.",
	}, staticPrompt(
		"First call get_assets to list all active assets grouped by type (land, plants, animals, equipment). "+
			"Then call get_logs with limit=10 to get the latest activity. "+
			"Present a concise overview: what assets exist, what has been done recently, "+
			"and what is still pending.",
	))

	server.AddPrompt(&mcp.Prompt{
		Name:        "season_log",
		Description: "Review everything that happened during a growing season.",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "season",
				Description: "Season to review, format 'YYYY' or 'YYYY spring/summer/autumn/winter'",
				Required:    true,
			},
		},
	}, func(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		season := req.Params.Arguments["season"]

		return promptResult(fmt.Sprintf(
			"I want to review the '%s' growing season. "+
				"Use get_logs to fetch seeding, transplanting, input, harvest, and observation logs. "+
				"For seedings and transplantings filter by the relevant date range for this season. "+
				"Summarise: what was planted, what inputs were applied, what was harvested, "+
				"and any notable observations. Highlight successes and issues.",
			season,
		)), nil
	})

	server.AddPrompt(&mcp.Prompt{
		Name:        "asset_history",
		Description: "Get the full log history for a specific asset (field, plant, animal, etc.)",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "asset_name",
				Description: "Name of the asset to review",
				Required:    true,
			},
		},
	}, func(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		name := req.Params.Arguments["asset_name"]

		return promptResult(fmt.Sprintf(
			"I want to see everything recorded for the asset named '%s'. "+
				"First use get_assets with name='%s' to find its UUID. "+
				"Then use get_logs with that asset_id to fetch all related logs. "+
				"Present a chronological history of everything that has happened with this asset.",
			name, name,
		)), nil
	})
}

func staticPrompt(text string) mcp.PromptHandler {
	return func(_ context.Context, _ *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return promptResult(text), nil
	}
}

func promptResult(text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}
