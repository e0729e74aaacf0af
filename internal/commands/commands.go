// Package commands implements cmd/nimbus's project-scaffolding
// subcommand. Adapted from the teacher's InitCommand; BuildCommand,
// WatchCommand, and CleanCommand are dropped (see DESIGN.md) because
// this interpreter has no separate build artifact or watch/rebuild step
// for a single-file script to produce.
package commands

import (
	"fmt"
	"os"
	"path/filepath"
)

// InitCommand scaffolds a new project directory containing a single
// entry script, the way `nimbus init myapp` would for someone starting
// a fresh project.
func InitCommand(args []string) error {
	projectName := "nimbus-project"
	if len(args) > 0 {
		projectName = args[0]
	}

	if err := os.MkdirAll(projectName, 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	mainFile := filepath.Join(projectName, "main.nim")
	content := `// main.nim
function main() {
    println("Hello from nimbus!");
}

main();
`
	if err := os.WriteFile(mainFile, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to create main.nim: %w", err)
	}

	fmt.Printf("Initialized new nimbus project: %s\n", projectName)
	return nil
}
