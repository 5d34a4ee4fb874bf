package intel

import (
	"strings"

	"github.com/ankitson/clankerhub/internal/task"
)

// Template is a canned plan selected by keywords in a task title.
type Template struct {
	Name      string
	Keywords  []string
	Subtasks  []task.ProposedSubtask
	Metrics   []task.ProposedMetric
	Questions []string
	Approach  string
}

// Templates are matched in order; the first whose keyword occurs in the
// lowercased title wins.
var Templates = []Template{
	{
		Name:     "taxes",
		Keywords: []string{"tax", "taxes", "irs", "tax return"},
		Subtasks: []task.ProposedSubtask{
			{Title: "Gather W-2 and employment documents", Description: "Collect all W-2 forms from employers", EstimatedMinutes: 30, Automatable: true, RequiredSkill: "file_search"},
			{Title: "Gather 1099 forms", Description: "Collect 1099-INT, 1099-DIV, 1099-B from brokerages", EstimatedMinutes: 30, Automatable: true, RequiredSkill: "file_search"},
			{Title: "Compile deduction receipts", Description: "Gather receipts for deductible expenses", EstimatedMinutes: 60},
			{Title: "Review last year's return", Description: "Check for any carryover items or recurring deductions", EstimatedMinutes: 20, Automatable: true, RequiredSkill: "file_search"},
			{Title: "Choose filing method", Description: "Decide between TurboTax, H&R Block, CPA, or self-file", EstimatedMinutes: 30},
			{Title: "Complete tax return", Description: "Fill out all required forms", EstimatedMinutes: 120},
			{Title: "Review and file", Description: "Double-check all entries and submit", EstimatedMinutes: 30},
		},
		Metrics: []task.ProposedMetric{
			{Name: "Documents gathered", Unit: "documents", TargetValue: 10},
			{Name: "Forms completed", Unit: "forms", TargetValue: 5},
		},
		Questions: []string{
			"Do you have any self-employment income this year?",
			"Did you have any major life changes (marriage, home purchase, children)?",
			"Do you have investments in taxable brokerage accounts?",
			"What filing method did you use last year?",
		},
		Approach: "I'll help you organize your tax preparation by first gathering all necessary documents, then guiding you through the filing process step by step.",
	},
	{
		Name:     "running",
		Keywords: []string{"run", "5k", "marathon", "running", "jog", "race"},
		Subtasks: []task.ProposedSubtask{
			{Title: "Assess current fitness level", Description: "Do a baseline run to understand starting point", EstimatedMinutes: 30},
			{Title: "Get proper running shoes", Description: "Visit a running store for fitting", EstimatedMinutes: 60},
			{Title: "Create training schedule", Description: "Build a week-by-week training plan", EstimatedMinutes: 30, Automatable: true, RequiredSkill: "calendar"},
			{Title: "Week 1-2: Base building", Description: "Easy runs of 1-2 miles, 3x per week", EstimatedMinutes: 180},
			{Title: "Week 3-4: Increase distance", Description: "Runs of 2-2.5 miles, 3-4x per week", EstimatedMinutes: 240},
			{Title: "Week 5-6: Build endurance", Description: "Runs of 2.5-3 miles with one longer run", EstimatedMinutes: 300},
			{Title: "Week 7-8: Race preparation", Description: "Include 3+ mile runs, then taper before race", EstimatedMinutes: 240},
			{Title: "Race day", Description: "Run the 5K!", EstimatedMinutes: 45},
		},
		Metrics: []task.ProposedMetric{
			{Name: "Longest run", Unit: "miles", TargetValue: 3.5},
			{Name: "Training runs completed", Unit: "runs", TargetValue: 24},
			{Name: "Weekly mileage", Unit: "miles", TargetValue: 15},
		},
		Questions: []string{
			"Have you run before? What's your current fitness level?",
			"Do you have a target race date or timeline in mind?",
			"Do you have any injuries or physical limitations?",
			"What time of day works best for your training runs?",
		},
		Approach: "I'll create a gradual 8-week training plan that builds your endurance safely. We'll start with short, easy runs and progressively increase distance.",
	},
	{
		Name:     "learning",
		Keywords: []string{"learn", "study", "course", "skill", "language", "programming"},
		Subtasks: []task.ProposedSubtask{
			{Title: "Define learning objectives", Description: "What specifically do you want to be able to do?", EstimatedMinutes: 30},
			{Title: "Research learning resources", Description: "Find courses, books, tutorials", EstimatedMinutes: 60, Automatable: true, RequiredSkill: "research"},
			{Title: "Create learning schedule", Description: "Block time for daily/weekly practice", EstimatedMinutes: 30, Automatable: true, RequiredSkill: "calendar"},
			{Title: "Set up practice environment", Description: "Get necessary tools, accounts, materials", EstimatedMinutes: 60},
			{Title: "Begin structured learning", Description: "Start with fundamentals", EstimatedMinutes: 300},
			{Title: "Build practice projects", Description: "Apply what you've learned", EstimatedMinutes: 600},
			{Title: "Review and assess progress", Description: "Test your knowledge, identify gaps", EstimatedMinutes: 60},
		},
		Metrics: []task.ProposedMetric{
			{Name: "Hours studied", Unit: "hours", TargetValue: 50},
			{Name: "Lessons completed", Unit: "lessons", TargetValue: 20},
			{Name: "Projects built", Unit: "projects", TargetValue: 3},
		},
		Questions: []string{
			"What is your current level with this topic?",
			"What's your goal - hobby, career change, or specific project?",
			"How much time can you dedicate per day/week?",
			"Do you prefer video courses, reading, or hands-on projects?",
		},
		Approach: "I'll help you create a structured learning path with clear milestones. We'll combine theory with practical projects to ensure the knowledge sticks.",
	},
}

// DefaultTemplate applies when no keyword matches.
var DefaultTemplate = Template{
	Name: "default",
	Subtasks: []task.ProposedSubtask{
		{Title: "Clarify the goal", Description: "Define what success looks like", EstimatedMinutes: 15},
		{Title: "Research the topic", Description: "Gather relevant information", EstimatedMinutes: 30, Automatable: true, RequiredSkill: "research"},
		{Title: "Break down into actionable steps", Description: "Create a detailed task list", EstimatedMinutes: 20},
		{Title: "Execute steps", Description: "Work through the task list", EstimatedMinutes: 120},
		{Title: "Review and complete", Description: "Verify all requirements are met", EstimatedMinutes: 15},
	},
	Metrics: []task.ProposedMetric{
		{Name: "Subtasks completed", Unit: "tasks", TargetValue: 5},
	},
	Questions: []string{
		"Can you describe the desired outcome in more detail?",
		"Is there a deadline for this task?",
		"Are there any constraints or requirements I should know about?",
	},
	Approach: "I'll help you break this down into manageable steps. Let me first understand the requirements better.",
}

// FindTemplate selects the template for a task title.
func FindTemplate(title string) Template {
	lower := strings.ToLower(title)
	for _, tpl := range Templates {
		for _, kw := range tpl.Keywords {
			if strings.Contains(lower, kw) {
				return tpl
			}
		}
	}
	return DefaultTemplate
}
