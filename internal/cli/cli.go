// Package cli provides a direct command-line interface to the server's
// tools, bypassing MCP entirely. Tools are invoked in-process via the
// registry, so no server or network round-trip is needed.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/repolens/mcp-repolens/internal/registry"
	"github.com/repolens/mcp-repolens/internal/tools"
	"github.com/sirupsen/logrus"
)

// OutputFormat controls how tool results are rendered
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

// Runner executes CLI commands against the tool registry
type Runner struct {
	logger *logrus.Logger
	cache  *sync.Map
	output OutputFormat
}

// NewRunner creates a Runner that uses the given logger, cache, and output format
func NewRunner(logger *logrus.Logger, cache *sync.Map, output OutputFormat) *Runner {
	return &Runner{logger: logger, cache: cache, output: output}
}

// ListTools prints all enabled tools with their descriptions
func (r *Runner) ListTools() error {
	tools := registry.GetEnabledTools()

	type entry struct {
		name string
		desc string
	}
	entries := make([]entry, 0, len(tools))
	for _, t := range tools {
		def := t.Definition()
		entries = append(entries, entry{name: def.Name, desc: firstLine(def.Description)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	if r.output == OutputJSON {
		type jsonEntry struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		out := make([]jsonEntry, len(entries))
		for i, e := range entries {
			out[i] = jsonEntry{Name: e.name, Description: e.desc}
		}
		return writeJSON(os.Stdout, out)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\n", e.name, e.desc)
	}
	return w.Flush()
}

// HelpTool prints the description of a single tool
func (r *Runner) HelpTool(name string) error {
	tool, ok := registry.GetTool(name)
	if !ok {
		return fmt.Errorf("unknown tool: %s", name)
	}

	def := tool.Definition()

	if r.output == OutputJSON {
		out := map[string]any{"definition": def}
		if provider, ok := tool.(tools.ExtendedHelpProvider); ok {
			out["extended_help"] = provider.ProvideExtendedInfo()
		}
		return writeJSON(os.Stdout, out)
	}

	fmt.Fprintf(os.Stdout, "Tool: %s\n\n%s\n", def.Name, def.Description)
	if provider, ok := tool.(tools.ExtendedHelpProvider); ok {
		printExtendedHelp(os.Stdout, provider.ProvideExtendedInfo())
	}
	return nil
}

// printExtendedHelp renders a tool's extended help below its description
func printExtendedHelp(w *os.File, help *tools.ExtendedHelp) {
	if help == nil {
		return
	}

	if help.WhenToUse != "" {
		fmt.Fprintf(w, "\nWhen to use: %s\n", help.WhenToUse)
	}
	if help.WhenNotToUse != "" {
		fmt.Fprintf(w, "When not to use: %s\n", help.WhenNotToUse)
	}

	if len(help.Examples) > 0 {
		fmt.Fprintf(w, "\nExamples:\n")
		for _, ex := range help.Examples {
			args, err := json.Marshal(ex.Arguments)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "  # %s\n  %s\n", ex.Description, string(args))
			if ex.ExpectedResult != "" {
				fmt.Fprintf(w, "  -> %s\n", ex.ExpectedResult)
			}
		}
	}

	if len(help.CommonPatterns) > 0 {
		fmt.Fprintf(w, "\nCommon patterns:\n")
		for _, p := range help.CommonPatterns {
			fmt.Fprintf(w, "  - %s\n", p)
		}
	}

	if len(help.Troubleshooting) > 0 {
		fmt.Fprintf(w, "\nTroubleshooting:\n")
		for _, tip := range help.Troubleshooting {
			fmt.Fprintf(w, "  Problem: %s\n  Solution: %s\n", tip.Problem, tip.Solution)
		}
	}

	if len(help.ParameterDetails) > 0 {
		keys := make([]string, 0, len(help.ParameterDetails))
		for k := range help.ParameterDetails {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintf(w, "\nParameter details:\n")
		for _, k := range keys {
			fmt.Fprintf(w, "  %s: %s\n", k, help.ParameterDetails[k])
		}
	}
}

// RunTool executes a tool by name. args can be a single JSON object
// ('{"function": "diagnose_search"}') or key=value pairs, where values
// that parse as JSON are taken as such (function=search_files
// 'options={"query":"notes"}').
func (r *Runner) RunTool(ctx context.Context, name string, args []string) error {
	tool, ok := registry.GetTool(name)
	if !ok {
		return fmt.Errorf("unknown tool: %s (run 'mcp-repolens tools list' to see available tools)", name)
	}

	params, err := parseArgs(args)
	if err != nil {
		return fmt.Errorf("argument error: %w", err)
	}

	result, err := tool.Execute(ctx, r.logger, r.cache, params)
	if err != nil {
		return fmt.Errorf("tool error: %w", err)
	}

	return r.renderResult(result)
}

// parseArgs converts CLI arguments into a map[string]any for tool.Execute
func parseArgs(args []string) (map[string]any, error) {
	params := make(map[string]any)

	for _, arg := range args {
		if strings.HasPrefix(arg, "{") {
			var obj map[string]any
			if err := json.Unmarshal([]byte(arg), &obj); err != nil {
				return nil, fmt.Errorf("invalid JSON argument: %w", err)
			}
			for k, v := range obj {
				params[k] = v
			}
			continue
		}

		key, rawVal, found := strings.Cut(arg, "=")
		if !found {
			return nil, fmt.Errorf("unexpected argument: %s (use key=value pairs or a JSON object)", arg)
		}
		params[key] = coerceValue(rawVal)
	}

	return params, nil
}

// coerceValue interprets a raw string value as JSON where possible so
// numbers, booleans, and nested objects survive the round trip.
func coerceValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	return raw
}

// renderResult prints a tool result's text content
func (r *Runner) renderResult(result *mcp.CallToolResult) error {
	if result == nil {
		return nil
	}

	if r.output == OutputJSON {
		return writeJSON(os.Stdout, result)
	}

	for _, content := range result.Content {
		switch c := content.(type) {
		case mcp.TextContent:
			fmt.Fprintln(os.Stdout, c.Text)
		default:
			data, err := json.MarshalIndent(c, "", "  ")
			if err != nil {
				fmt.Fprintf(os.Stdout, "%+v\n", c)
			} else {
				fmt.Fprintln(os.Stdout, string(data))
			}
		}
	}

	if result.IsError {
		return fmt.Errorf("tool returned an error")
	}
	return nil
}

func writeJSON(w *os.File, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
