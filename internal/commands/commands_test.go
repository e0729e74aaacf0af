package commands

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitCommandScaffoldsProject(t *testing.T) {
	dir := t.TempDir()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	defer os.Chdir(prev)

	if err := InitCommand([]string{"myapp"}); err != nil {
		t.Fatalf("InitCommand returned error: %v", err)
	}

	main := filepath.Join(dir, "myapp", "main.nim")
	data, err := os.ReadFile(main)
	if err != nil {
		t.Fatalf("expected main.nim to exist: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected main.nim to have content")
	}
}

func TestInitCommandDefaultsProjectName(t *testing.T) {
	dir := t.TempDir()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	defer os.Chdir(prev)

	if err := InitCommand(nil); err != nil {
		t.Fatalf("InitCommand returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "nimbus-project", "main.nim")); err != nil {
		t.Fatalf("expected default project directory to exist: %v", err)
	}
}
