package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type answerInput struct {
	TaskID   string `json:"task_id" jsonschema:"task id or unique id prefix"`
	Question string `json:"question" jsonschema:"1-based question number or question id"`
	Answer   string `json:"answer"`
}

type subtaskInput struct {
	TaskID  string `json:"task_id" jsonschema:"task id or unique id prefix"`
	Subtask string `json:"subtask" jsonschema:"1-based subtask number or subtask id"`
}

type metricInput struct {
	TaskID string  `json:"task_id" jsonschema:"task id or unique id prefix"`
	Metric string  `json:"metric" jsonschema:"1-based metric number or metric id"`
	Value  float64 `json:"value"`
	Note   string  `json:"note,omitempty"`
}

func (s *Server) registerWorkTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "answer_question",
		Description: "Answer one of the task's clarification questions.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in answerInput) (*mcp.CallToolResult, any, error) {
		t, err := s.svc.Answer(ctx, in.TaskID, in.Question, in.Answer)
		if err != nil {
			return nil, nil, err
		}
		return markdown(t)
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "complete_subtask",
		Description: "Mark a subtask done. The task completes when all of its subtasks are done.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in subtaskInput) (*mcp.CallToolResult, any, error) {
		t, err := s.svc.Complete(ctx, in.TaskID, in.Subtask)
		if err != nil {
			return nil, nil, err
		}
		return markdown(t)
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "execute_subtask",
		Description: "Run the skill bound to an automatable subtask.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in subtaskInput) (*mcp.CallToolResult, any, error) {
		t, err := s.svc.Execute(ctx, in.TaskID, in.Subtask)
		if err != nil {
			return nil, nil, err
		}
		return markdown(t)
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "update_metric",
		Description: "Record a new value for a progress metric.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in metricInput) (*mcp.CallToolResult, any, error) {
		t, err := s.svc.UpdateMetric(ctx, in.TaskID, in.Metric, in.Value, in.Note)
		if err != nil {
			return nil, nil, err
		}
		return markdown(t)
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "analyze_progress",
		Description: "Report completion percentage, next steps and blockers for a task.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in taskRef) (*mcp.CallToolResult, any, error) {
		_, report, err := s.svc.Progress(ctx, in.TaskID)
		if err != nil {
			return nil, nil, err
		}
		return jsonResult(report)
	})
}
