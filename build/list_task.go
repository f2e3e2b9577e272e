package main

import (
	"fmt"

	"github.com/goyek/goyek/v2"
)

// List prints all registered tasks with their usage descriptions
var List = goyek.Define(goyek.Task{
	Name:  "list",
	Usage: "List all available tasks",
	Action: func(a *goyek.A) {
		fmt.Fprintln(a.Output(), "toolbridge build tasks (go run ./build [flags] <task>):")
		fmt.Fprintln(a.Output())
		for _, task := range goyek.Tasks() {
			fmt.Fprintf(a.Output(), "  %-18s %s\n", task.Name(), task.Usage())
		}
	},
})
