package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/goyek/goyek/v2"
)

const (
	colorReset   = "\033[0m"
	colorRequest = "\033[36m"
	colorHeader  = "\033[33m"
	colorStatus  = "\033[32m"
	colorEvent   = "\033[35m"

	maxBodyPrint = 2000
)

// DebugProxy sits in front of an SSE provider and prints API traffic. Event
// streams are passed through unbuffered and only their frames are echoed.
var DebugProxy = goyek.Define(goyek.Task{
	Name:  "debug-proxy",
	Usage: "Debug proxy for the SSE provider. Use -target=URL [-port=8080]",
	Action: func(a *goyek.A) {
		if *targetURL == "" {
			a.Fatal("Usage: go run ./build -target=http://127.0.0.1:<provider port> [-port=8080] debug-proxy")
		}
		target, err := url.Parse(*targetURL)
		if err != nil {
			a.Fatalf("Invalid target URL: %v", err)
		}

		proxy := httputil.NewSingleHostReverseProxy(target)
		proxy.FlushInterval = -1
		proxy.ModifyResponse = printResponse

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			printRequest(r)
			proxy.ServeHTTP(w, r)
		})

		fmt.Printf("\nDebug proxy listening on http://localhost:%s\n", *port)
		fmt.Printf("   Proxying to: %s\n", target)
		fmt.Printf("   Point MCP clients at: http://localhost:%s/mcp/api\n", *port)
		fmt.Printf("   Event stream: http://localhost:%s/mcp/events\n\n", *port)

		if err := http.ListenAndServe(":"+*port, handler); err != nil {
			a.Fatalf("Server error: %v", err)
		}
	},
})

func printRequest(r *http.Request) {
	fmt.Printf("\n%s[%s] %s %s%s\n", colorRequest, time.Now().Format("15:04:05"), r.Method, r.URL.Path, colorReset)
	printHeaders(r.Header)
	if r.Body == nil {
		return
	}
	body, err := io.ReadAll(r.Body)
	r.Body.Close()
	if err != nil {
		fmt.Printf("  (reading body: %v)\n", err)
		r.Body = http.NoBody
		return
	}
	if len(body) > 0 {
		fmt.Printf("%sRequest body:%s\n", colorHeader, colorReset)
		printBody(body)
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	r.ContentLength = int64(len(body))
}

func printResponse(resp *http.Response) error {
	fmt.Printf("%s<-- %s%s\n", colorStatus, resp.Status, colorReset)
	printHeaders(resp.Header)

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream") {
		resp.Body = &eventEcho{ReadCloser: resp.Body}
		return nil
	}
	if resp.Body == nil {
		return nil
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return err
	}
	if len(body) > 0 {
		fmt.Printf("%sResponse body:%s\n", colorHeader, colorReset)
		printBody(body)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	return nil
}

func printHeaders(h http.Header) {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		v := strings.Join(h[k], ", ")
		if strings.EqualFold(k, "Authorization") && len(v) > 20 {
			v = v[:10] + "..." + v[len(v)-5:]
		}
		fmt.Printf("  %s: %s\n", k, v)
	}
}

func printBody(data []byte) {
	s := string(data)
	var obj any
	if err := json.Unmarshal(data, &obj); err == nil {
		pretty, _ := json.MarshalIndent(obj, "  ", "  ")
		s = string(pretty)
	}
	if len(s) > maxBodyPrint {
		s = s[:maxBodyPrint] + "\n  ... (truncated)"
	}
	fmt.Printf("  %s\n", s)
}

// eventEcho prints SSE frames as they are read by the proxy.
type eventEcho struct {
	io.ReadCloser
}

func (e *eventEcho) Read(p []byte) (int, error) {
	n, err := e.ReadCloser.Read(p)
	if n > 0 {
		fmt.Printf("%s[%s] <-- %s%s", colorEvent, time.Now().Format("15:04:05.000"), p[:n], colorReset)
	}
	return n, err
}
