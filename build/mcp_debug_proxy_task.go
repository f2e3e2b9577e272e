package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/goyek/goyek/v2"
)

const defaultStdioServer = "go run . serve --transport stdio"

// MCPDebugProxy sits between an MCP client and a stdio server and logs every
// JSON-RPC message that crosses it.
var MCPDebugProxy = goyek.Define(goyek.Task{
	Name:  "mcp-debug-proxy",
	Usage: "MCP stdio debug proxy. Use -log=FILE [-cmd='" + defaultStdioServer + "']",
	Action: func(a *goyek.A) {
		if *logFile == "" {
			a.Fatal("Usage: go run ./build -log=<file> [-cmd='<command>'] mcp-debug-proxy")
		}
		command := *mcpCmd
		if command == "" {
			command = defaultStdioServer
		}
		cmdArgs := strings.Fields(command)

		lf, err := os.OpenFile(*logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			a.Fatalf("Failed to open log file: %v", err)
		}
		defer lf.Close()
		log := &rpcLog{w: lf}
		log.printf("=== MCP debug proxy started, command: %s", command)

		cmd := exec.Command(cmdArgs[0], cmdArgs[1:]...)
		stdinPipe, err := cmd.StdinPipe()
		if err != nil {
			a.Fatalf("Failed to get stdin pipe: %v", err)
		}
		stdoutPipe, err := cmd.StdoutPipe()
		if err != nil {
			a.Fatalf("Failed to get stdout pipe: %v", err)
		}
		cmd.Stderr = os.Stderr
		if err := cmd.Start(); err != nil {
			a.Fatalf("Failed to start command: %v", err)
		}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-sigChan
			log.printf("received signal %v, propagating to child", sig)
			if cmd.Process != nil {
				_ = cmd.Process.Signal(sig)
			}
		}()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			defer stdinPipe.Close()
			log.pump("-->", os.Stdin, stdinPipe)
		}()
		go func() {
			defer wg.Done()
			log.pump("<--", stdoutPipe, os.Stdout)
		}()

		err = cmd.Wait()
		log.printf("child process exited: %v", err)
		wg.Wait()
		log.printf("=== MCP debug proxy shut down")
	},
})

// rpcLog writes timestamped lines, each prefixed with a one-line summary of
// the JSON-RPC message it carries.
type rpcLog struct {
	mu sync.Mutex
	w  *os.File
}

func (l *rpcLog) printf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "[%s] %s\n", time.Now().Format("15:04:05.000"), fmt.Sprintf(format, args...))
	_ = l.w.Sync()
}

// pump copies newline-delimited messages from r to w, logging each one.
func (l *rpcLog) pump(dir string, r io.Reader, w io.Writer) {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			l.printf("%s %s %s", dir, summarize(line), strings.TrimRight(string(line), "\n"))
			if _, werr := w.Write(line); werr != nil {
				l.printf("%s write error: %v", dir, werr)
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				l.printf("%s read error: %v", dir, err)
			}
			return
		}
	}
}

func summarize(line []byte) string {
	var msg struct {
		ID     json.RawMessage `json:"id"`
		Method string          `json:"method"`
		Error  *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(line, &msg); err != nil {
		return "(not json)"
	}
	switch {
	case msg.Method != "" && msg.ID != nil:
		return fmt.Sprintf("request %s id=%s", msg.Method, msg.ID)
	case msg.Method != "":
		return "notification " + msg.Method
	case msg.Error != nil:
		return fmt.Sprintf("error id=%s: %s", msg.ID, msg.Error.Message)
	default:
		return fmt.Sprintf("response id=%s", msg.ID)
	}
}
