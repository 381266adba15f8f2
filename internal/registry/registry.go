package registry

import (
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/repolens/mcp-repolens/internal/tools"
	"github.com/sirupsen/logrus"
)

var (
	// toolRegistry maps tool names to tool implementations
	toolRegistry = make(map[string]tools.Tool)

	// disabledTools is the set of tool names disabled via DISABLED_TOOLS
	disabledTools = make(map[string]bool)

	// logger is the shared logger instance
	logger *logrus.Logger

	// cache is the shared cache instance
	cache *sync.Map
)

// Init initialises the registry and shared resources
func Init(l *logrus.Logger) {
	logger = l
	cache = &sync.Map{}

	parseDisabledTools()
}

// parseDisabledTools parses the DISABLED_TOOLS environment variable,
// a comma-separated list of tool names to exclude from registration.
func parseDisabledTools() {
	disabledTools = make(map[string]bool)

	disabledEnv := os.Getenv("DISABLED_TOOLS")
	if disabledEnv == "" {
		return
	}

	for tool := range strings.SplitSeq(disabledEnv, ",") {
		tool = strings.TrimSpace(tool)
		if tool != "" {
			disabledTools[tool] = true
			if logger != nil {
				logger.WithField("tool", tool).Debug("Tool disabled via DISABLED_TOOLS")
			}
		}
	}
}

// Register adds a tool implementation to the registry unless it is disabled
func Register(tool tools.Tool) {
	if toolRegistry == nil {
		toolRegistry = make(map[string]tools.Tool)
	}

	toolName := tool.Definition().Name

	if disabledTools[toolName] {
		if logger != nil {
			logger.WithField("tool", toolName).Debug("Tool not registered (disabled)")
		}
		return
	}

	toolRegistry[toolName] = tool
	if logger != nil {
		logger.WithField("tool", toolName).Debug("Tool registered")
	}
}

// GetTool retrieves a tool by name, returns false if unknown or disabled
func GetTool(name string) (tools.Tool, bool) {
	if disabledTools[name] {
		return nil, false
	}
	tool, ok := toolRegistry[name]
	return tool, ok
}

// GetEnabledTools returns all registered tools, excluding disabled ones
func GetEnabledTools() map[string]tools.Tool {
	filtered := make(map[string]tools.Tool)
	for name, tool := range toolRegistry {
		if disabledTools[name] {
			continue
		}
		filtered[name] = tool
	}
	return filtered
}

// GetEnabledToolNames returns a sorted list of enabled tool names
func GetEnabledToolNames() []string {
	var names []string
	for name := range toolRegistry {
		if disabledTools[name] {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetLogger returns the shared logger instance
func GetLogger() *logrus.Logger {
	return logger
}

// GetCache returns the shared cache instance
func GetCache() *sync.Map {
	return cache
}
