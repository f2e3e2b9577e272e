// Package types provides the shared data model used across the codebase:
// tool definitions, handler results and the neutral tool-use wire shapes.
package types

import (
	"context"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/spachava753/toolbridge/internal/value"
)

// ToolUseFormat tags a request or response as it crosses the router.
type ToolUseFormat string

const (
	FormatXML     ToolUseFormat = "xml"
	FormatJSON    ToolUseFormat = "json"
	FormatOpenAI  ToolUseFormat = "openai"
	FormatNeutral ToolUseFormat = "neutral"
)

// Formats lists every supported format in a stable order.
var Formats = []ToolUseFormat{FormatXML, FormatJSON, FormatOpenAI, FormatNeutral}

// ParseFormat maps a user supplied name onto a ToolUseFormat.
func ParseFormat(s string) (ToolUseFormat, bool) {
	f := ToolUseFormat(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatXML, FormatJSON, FormatOpenAI, FormatNeutral:
		return f, true
	}
	return "", false
}

const (
	TypeToolUse    = "tool_use"
	TypeToolResult = "tool_result"
)

// ToolStatus is the outcome recorded on a NeutralToolResult.
type ToolStatus string

const (
	StatusSuccess ToolStatus = "success"
	StatusError   ToolStatus = "error"
)

// ContentType discriminates Content items.
type ContentType string

const (
	ContentText  ContentType = "text"
	ContentImage ContentType = "image"
)

// ImageSource holds base64 encoded image data.
type ImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// Content is one item of a tool result.
type Content struct {
	Type   ContentType  `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *ImageSource `json:"source,omitempty"`
}

// TextContent builds a text content item.
func TextContent(text string) Content {
	return Content{Type: ContentText, Text: text}
}

// ImageContent builds an image content item from base64 data.
func ImageContent(mediaType, data string) Content {
	return Content{Type: ContentImage, Source: &ImageSource{Type: "base64", MediaType: mediaType, Data: data}}
}

// ToolCallResult is what a handler produces for a single invocation.
type ToolCallResult struct {
	Content  []Content    `json:"content"`
	IsError  bool         `json:"isError,omitempty"`
	Metadata value.Object `json:"metadata,omitempty"`
}

// Text concatenates every text item with newlines.
func (r *ToolCallResult) Text() string {
	if r == nil {
		return ""
	}
	var texts []string
	for _, c := range r.Content {
		if c.Type == ContentText {
			texts = append(texts, c.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// ErrorResult builds an error-flagged result carrying a single text item.
func ErrorResult(text string) *ToolCallResult {
	return &ToolCallResult{Content: []Content{TextContent(text)}, IsError: true}
}

// TextResult builds a successful result carrying a single text item.
func TextResult(text string) *ToolCallResult {
	return &ToolCallResult{Content: []Content{TextContent(text)}}
}

// Handler executes a tool. Handlers may be invoked concurrently.
type Handler func(ctx context.Context, args value.Object) (*ToolCallResult, error)

// ToolDefinition describes a callable tool. The Registry and each Provider
// keep their own copy.
type ToolDefinition struct {
	Name        string
	Description string
	ParamSchema *jsonschema.Schema
	Handler     Handler
}

// NeutralToolUseRequest is the format-agnostic tool call.
type NeutralToolUseRequest struct {
	Type  string       `json:"type"`
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Input value.Object `json:"input"`
}

// NewToolUse builds a request with Type set.
func NewToolUse(id, name string, input value.Object) NeutralToolUseRequest {
	if input == nil {
		input = value.Object{}
	}
	return NeutralToolUseRequest{Type: TypeToolUse, ID: id, Name: name, Input: input}
}

// ToolError carries the message and optional details of a failed call.
type ToolError struct {
	Message string       `json:"message"`
	Details *value.Value `json:"details,omitempty"`
}

// NeutralToolResult is the format-agnostic tool result. ToolUseID matches
// the originating request's ID.
type NeutralToolResult struct {
	Type      string     `json:"type"`
	ToolUseID string     `json:"tool_use_id"`
	Content   []Content  `json:"content"`
	Status    ToolStatus `json:"status"`
	Error     *ToolError `json:"error,omitempty"`
}

// Text concatenates every text item with newlines.
func (r NeutralToolResult) Text() string {
	var texts []string
	for _, c := range r.Content {
		if c.Type == ContentText {
			texts = append(texts, c.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// ErrorToolResult builds an error result for toolUseID. An empty id becomes
// "error" so the result is still well formed.
func ErrorToolResult(toolUseID, message string) NeutralToolResult {
	if toolUseID == "" {
		toolUseID = "error"
	}
	return NeutralToolResult{
		Type:      TypeToolResult,
		ToolUseID: toolUseID,
		Content:   []Content{TextContent(message)},
		Status:    StatusError,
		Error:     &ToolError{Message: message},
	}
}
