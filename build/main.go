package main

import (
	"flag"

	"github.com/goyek/goyek/v2"
)

// Flags for debug-proxy task
var (
	targetURL = flag.String("target", "", "Base URL of a toolbridge SSE provider (for debug-proxy)")
	port      = flag.String("port", "8080", "Port to listen on (for debug-proxy)")
)

// Flags for mcp-debug-proxy task
var (
	logFile = flag.String("log", "", "Log file path (for mcp-debug-proxy)")
	mcpCmd  = flag.String("cmd", "", "Stdio MCP server command (for mcp-debug-proxy, default: go run . serve --transport stdio)")
)

// Flags for test task
var race = flag.Bool("race", false, "Enable the race detector (for test)")

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		args = []string{"list"}
	}
	goyek.Main(args)
}
