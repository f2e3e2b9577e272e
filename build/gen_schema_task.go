package main

import (
	"os"
	"os/exec"

	"github.com/goyek/goyek/v2"
)

// GenSchema regenerates schema/toolbridge-config-schema.json
var GenSchema = goyek.Define(goyek.Task{
	Name:  "gen-schema",
	Usage: "Generate JSON schema for toolbridge configuration files",
	Action: func(a *goyek.A) {
		cmd := exec.CommandContext(a.Context(), "go", "run", "./cmd/gen-schema")
		cmd.Stdout = a.Output()
		cmd.Stderr = a.Output()
		cmd.Env = os.Environ()
		if err := cmd.Run(); err != nil {
			a.Fatalf("gen-schema failed: %v", err)
		}
	},
})

// Test runs the unit tests, including the race detector when -race is set
var Test = goyek.Define(goyek.Task{
	Name:  "test",
	Usage: "Run go test ./... [-race]",
	Action: func(a *goyek.A) {
		args := []string{"test"}
		if *race {
			args = append(args, "-race")
		}
		args = append(args, "./...")
		cmd := exec.CommandContext(a.Context(), "go", args...)
		cmd.Stdout = a.Output()
		cmd.Stderr = a.Output()
		if err := cmd.Run(); err != nil {
			a.Fatalf("tests failed: %v", err)
		}
	},
})
