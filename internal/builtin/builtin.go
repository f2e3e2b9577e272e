// Package builtin provides the tools toolbridge registers out of the box:
// file reading, listing and searching confined to a root directory, and
// shell command execution.
package builtin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	ijsonschema "github.com/invopop/jsonschema"
	"github.com/stoewer/go-strcase"

	"github.com/spachava753/toolbridge/internal/types"
	"github.com/spachava753/toolbridge/internal/value"
)

// Names lists every built-in tool.
var Names = []string{"read_file", "list_files", "search_files", "execute_command"}

// New returns the definitions of the enabled built-in tools, all confined to
// root. No names enables every tool.
func New(root string, enabled ...string) ([]types.ToolDefinition, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root %s: %w", root, err)
	}
	t := tools{root: abs}

	all := make(map[string]types.ToolDefinition, len(Names))
	for _, build := range []func() (types.ToolDefinition, error){
		func() (types.ToolDefinition, error) {
			return define("Read a file. Text files can be limited to a line range; images are returned as image content.", t.readFile)
		},
		func() (types.ToolDefinition, error) {
			return define("List files under a directory, optionally filtered by a glob on the file name.", t.listFiles)
		},
		func() (types.ToolDefinition, error) {
			return define("Search text files for lines matching a regular expression.", t.searchFiles)
		},
		func() (types.ToolDefinition, error) {
			return define("Execute a shell command in the root directory and return its combined output.", t.executeCommand)
		},
	} {
		def, err := build()
		if err != nil {
			return nil, err
		}
		all[def.Name] = def
	}

	if len(enabled) == 0 {
		enabled = Names
	}
	defs := make([]types.ToolDefinition, 0, len(enabled))
	for _, name := range enabled {
		def, ok := all[name]
		if !ok {
			return nil, fmt.Errorf("unknown built-in tool %q", name)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// define builds a tool definition from a typed handler. The tool name is the
// snake-cased input type name without its Input suffix and the parameter
// schema is reflected from the input type.
func define[T any](description string, fn func(context.Context, T) (*types.ToolCallResult, error)) (types.ToolDefinition, error) {
	typ := reflect.TypeFor[T]()
	name := strcase.SnakeCase(strings.TrimSuffix(typ.Name(), "Input"))

	schema, err := reflectSchema[T]()
	if err != nil {
		return types.ToolDefinition{}, fmt.Errorf("reflecting %s parameters: %w", name, err)
	}

	return types.ToolDefinition{
		Name:        name,
		Description: description,
		ParamSchema: schema,
		Handler: func(ctx context.Context, args value.Object) (*types.ToolCallResult, error) {
			var in T
			if err := decodeArgs(args, &in); err != nil {
				return types.ErrorResult(fmt.Sprintf("invalid arguments for %s: %s", name, err)), nil
			}
			return fn(ctx, in)
		},
	}, nil
}

func reflectSchema[T any]() (*jsonschema.Schema, error) {
	reflector := &ijsonschema.Reflector{
		AllowAdditionalProperties:  false,
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
		ExpandedStruct:             true,
	}
	var zero T
	reflected := reflector.Reflect(&zero)
	reflected.Version = ""
	reflected.ID = ""

	data, err := json.Marshal(reflected)
	if err != nil {
		return nil, err
	}
	var schema jsonschema.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, err
	}
	return &schema, nil
}

func decodeArgs(args value.Object, into any) error {
	if args == nil {
		args = value.Object{}
	}
	data, err := json.Marshal(args)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(into)
}

// flexInt is an integer argument that also accepts its decimal string form,
// which is how XML tool calls carry every value.
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
		if s == "" {
			*n = 0
			return nil
		}
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return fmt.Errorf("expected an integer, got %s", string(data))
		}
		i = int(f)
	}
	*n = flexInt(i)
	return nil
}

func (flexInt) JSONSchema() *ijsonschema.Schema {
	return &ijsonschema.Schema{Type: "integer"}
}

// flexBool is a boolean argument that also accepts "true" and "false".
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
		if s == "" {
			*b = false
			return nil
		}
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("expected a boolean, got %s", string(data))
	}
	*b = flexBool(v)
	return nil
}

func (flexBool) JSONSchema() *ijsonschema.Schema {
	return &ijsonschema.Schema{Type: "boolean"}
}
