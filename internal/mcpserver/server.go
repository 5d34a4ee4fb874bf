// Package mcpserver exposes the task service as Model Context Protocol
// tools so assistants can add, plan and work through tasks.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ankitson/clankerhub/internal/agent"
	"github.com/ankitson/clankerhub/internal/render"
	"github.com/ankitson/clankerhub/internal/service"
	"github.com/ankitson/clankerhub/internal/task"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// Name is the implementation name announced to clients.
const Name = "todone"

// Server wraps an MCP server whose tools call the task service.
type Server struct {
	mcp *mcp.Server
	svc *service.Service
}

// New creates a server and registers its tools.
func New(svc *service.Service, version string) *Server {
	s := &Server{
		mcp: mcp.NewServer(&mcp.Implementation{Name: Name, Version: version}, nil),
		svc: svc,
	}
	s.registerTaskTools()
	s.registerWorkTools()
	s.registerSkillTools()
	return s
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Run serves on stdio until the client disconnects or ctx is done.
func (s *Server) Run(ctx context.Context) error {
	log.Info().Msg("starting MCP server on stdio transport")
	if err := s.mcp.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

type taskRef struct {
	TaskID string `json:"task_id" jsonschema:"task id or unique id prefix"`
}

type addTaskInput struct {
	Title       string   `json:"title" jsonschema:"what you want to accomplish"`
	Description string   `json:"description,omitempty" jsonschema:"extra detail about the task"`
	Priority    string   `json:"priority,omitempty" jsonschema:"low, medium, high or urgent"`
	Tags        []string `json:"tags,omitempty"`
}

type listTasksInput struct {
	Status string `json:"status,omitempty" jsonschema:"only tasks with this status"`
	Tag    string `json:"tag,omitempty" jsonschema:"only tasks with this tag"`
	Query  string `json:"query,omitempty" jsonschema:"case-insensitive text search over title and description"`
	Active bool   `json:"active,omitempty" jsonschema:"exclude completed tasks"`
}

type taskSummary struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Status   task.Status   `json:"status"`
	Priority task.Priority `json:"priority"`
	Done     int           `json:"subtasks_done"`
	Total    int           `json:"subtasks_total"`
}

type modifyPlanInput struct {
	TaskID   string   `json:"task_id" jsonschema:"task id or unique id prefix"`
	Remove   []int    `json:"remove,omitempty" jsonschema:"1-based positions of proposed subtasks to drop"`
	Add      []string `json:"add,omitempty" jsonschema:"titles of subtasks to append"`
	Approach string   `json:"approach,omitempty" jsonschema:"replacement approach text"`
}

func (s *Server) registerTaskTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "add_task",
		Description: "Add a task. The agent researches it and proposes a plan with clarification questions.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in addTaskInput) (*mcp.CallToolResult, any, error) {
		t, err := s.svc.Add(ctx, service.NewTask{
			Title:       in.Title,
			Description: in.Description,
			Priority:    task.Priority(in.Priority),
			Tags:        in.Tags,
		})
		if err != nil {
			return nil, nil, err
		}
		return markdown(t)
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_tasks",
		Description: "List tasks in creation order, optionally filtered.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in listTasksInput) (*mcp.CallToolResult, any, error) {
		tasks, err := s.svc.List(ctx, service.Filter{
			Status: task.Status(in.Status),
			Tag:    in.Tag,
			Search: in.Query,
			Active: in.Active,
		})
		if err != nil {
			return nil, nil, err
		}
		out := make([]taskSummary, 0, len(tasks))
		for _, t := range tasks {
			out = append(out, taskSummary{
				ID:       t.ID,
				Title:    t.Title,
				Status:   t.Status,
				Priority: t.Priority,
				Done:     t.CompletedSubtasks(),
				Total:    len(t.Subtasks),
			})
		}
		return jsonResult(out)
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "show_task",
		Description: "Show a task with its plan, subtasks, metrics and questions.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in taskRef) (*mcp.CallToolResult, any, error) {
		t, err := s.svc.Get(ctx, in.TaskID)
		if err != nil {
			return nil, nil, err
		}
		return markdown(t)
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "approve_plan",
		Description: "Approve the proposed plan, turning it into subtasks and metrics.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in taskRef) (*mcp.CallToolResult, any, error) {
		t, err := s.svc.Approve(ctx, in.TaskID)
		if err != nil {
			return nil, nil, err
		}
		return markdown(t)
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "modify_plan",
		Description: "Edit a plan before approval: drop proposed subtasks, append new ones, replace the approach.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in modifyPlanInput) (*mcp.CallToolResult, any, error) {
		edits := agent.PlanEdits{Approach: in.Approach}
		for _, n := range in.Remove {
			edits.RemoveIndices = append(edits.RemoveIndices, n-1)
		}
		for _, title := range in.Add {
			edits.Add = append(edits.Add, agent.SubtaskDraft{Title: title})
		}
		t, err := s.svc.Modify(ctx, in.TaskID, edits)
		if err != nil {
			return nil, nil, err
		}
		return markdown(t)
	})
}

func markdown(t task.Task) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: render.TaskMarkdown(t)}},
	}, nil, nil
}

func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("marshal result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}
