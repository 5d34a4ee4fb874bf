package mcpserver

import (
	"context"

	"github.com/ankitson/clankerhub/internal/render"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type listSkillsInput struct {
	Match string `json:"match,omitempty" jsonschema:"only skills whose name or description shares a word with this text"`
}

type suggestInput struct {
	Work string `json:"work" jsonschema:"description of the work to automate"`
}

func (s *Server) registerSkillTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_skills",
		Description: "List the skills the agent can run for automatable subtasks.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, in listSkillsInput) (*mcp.CallToolResult, any, error) {
		if in.Match == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: render.SkillsMarkdown(s.svc.Skills())}},
			}, nil, nil
		}
		return jsonResult(s.svc.MatchSkills(in.Match))
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "suggest_skills",
		Description: "Ask the agent which skills fit a piece of work, with proposed inputs.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in suggestInput) (*mcp.CallToolResult, any, error) {
		selections, err := s.svc.Suggest(ctx, in.Work)
		if err != nil {
			return nil, nil, err
		}
		return jsonResult(selections)
	})
}
