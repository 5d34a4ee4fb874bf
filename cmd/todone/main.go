// Command todone is a task assistant: it researches a goal, proposes a plan
// and tracks the work through subtasks, metrics and automated skills.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
