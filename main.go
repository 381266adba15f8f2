package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/repolens/mcp-repolens/internal/cli"
	"github.com/repolens/mcp-repolens/internal/config"
	"github.com/repolens/mcp-repolens/internal/registry"
	urfavecli "github.com/urfave/cli/v3"

	"github.com/sirupsen/logrus"

	// Import tool packages to register them
	_ "github.com/repolens/mcp-repolens/internal/tools/repoquery"
)

// Version information (set during build)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// parseLogLevel parses the LOG_LEVEL environment variable.
// Defaults to WarnLevel if not set or invalid.
func parseLogLevel() logrus.Level {
	logLevelStr := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))

	switch logLevelStr {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.WarnLevel
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Log to stderr only: in stdio mode stdout must stay a clean
	// JSON-RPC stream.
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(parseLogLevel())
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	registry.Init(logger)

	// Configuration is only fatal per-call, not at startup, but a
	// missing triple is worth a warning before the first tool failure.
	if missing := config.Load().MissingFields(); len(missing) > 0 {
		logger.WithField("missing", strings.Join(missing, ", ")).Warn("Repository configuration incomplete; every tool call will fail until set")
	}

	app := &urfavecli.Command{
		Name:    "mcp-repolens",
		Usage:   "MCP server exposing read-only search, files and commit history for one GitHub repository",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
		Flags: []urfavecli.Flag{
			&urfavecli.StringFlag{
				Name:    "transport",
				Aliases: []string{"t"},
				Value:   "stdio",
				Usage:   "Transport type (stdio, sse, or http)",
			},
			&urfavecli.StringFlag{
				Name:  "port",
				Value: "18080",
				Usage: "Port for HTTP transports",
			},
			&urfavecli.StringFlag{
				Name:  "base-url",
				Value: "http://localhost",
				Usage: "Base URL for HTTP transports",
			},
			&urfavecli.StringFlag{
				Name:  "endpoint-path",
				Value: "/http",
				Usage: "Endpoint path for the Streamable HTTP transport",
			},
		},
		Commands: []*urfavecli.Command{
			{
				Name:  "version",
				Usage: "Print version information",
				Action: func(ctx context.Context, cmd *urfavecli.Command) error {
					fmt.Printf("mcp-repolens version %s\n", Version)
					fmt.Printf("Commit: %s\n", Commit)
					fmt.Printf("Built: %s\n", BuildDate)
					return nil
				},
			},
			{
				Name:  "tools",
				Usage: "Run tools directly, without an MCP client",
				Flags: []urfavecli.Flag{
					&urfavecli.StringFlag{
						Name:  "output",
						Value: "text",
						Usage: "Output format (text or json)",
					},
				},
				Commands: []*urfavecli.Command{
					{
						Name:  "list",
						Usage: "List available tools",
						Action: func(ctx context.Context, cmd *urfavecli.Command) error {
							return newRunner(cmd, logger).ListTools()
						},
					},
					{
						Name:      "help",
						Usage:     "Show a tool's description",
						ArgsUsage: "<tool>",
						Action: func(ctx context.Context, cmd *urfavecli.Command) error {
							if cmd.Args().Len() < 1 {
								return fmt.Errorf("usage: mcp-repolens tools help <tool>")
							}
							return newRunner(cmd, logger).HelpTool(cmd.Args().First())
						},
					},
					{
						Name:      "call",
						Usage:     "Invoke a tool in-process",
						ArgsUsage: "<tool> [key=value ... | JSON object]",
						Action: func(ctx context.Context, cmd *urfavecli.Command) error {
							if cmd.Args().Len() < 1 {
								return fmt.Errorf("usage: mcp-repolens tools call <tool> [args]")
							}
							args := cmd.Args().Slice()
							return newRunner(cmd, logger).RunTool(ctx, args[0], args[1:])
						},
					},
				},
			},
		},
		Action: func(cliCtx context.Context, cmd *urfavecli.Command) error {
			return runServer(cliCtx, cmd, logger)
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		logger.WithError(err).Error("Exiting")
		os.Exit(1)
	}
}

// newRunner builds a CLI runner with the requested output format
func newRunner(cmd *urfavecli.Command, logger *logrus.Logger) *cli.Runner {
	output := cli.OutputText
	if cmd.String("output") == "json" {
		output = cli.OutputJSON
	}
	return cli.NewRunner(logger, registry.GetCache(), output)
}

// runServer registers the enabled tools on an MCP server and serves it
// over the selected transport.
func runServer(ctx context.Context, cmd *urfavecli.Command, logger *logrus.Logger) error {
	transport := cmd.String("transport")

	mcpSrv := mcpserver.NewMCPServer("mcp-repolens", Version)

	enabledTools := registry.GetEnabledTools()
	logger.WithField("tool_count", len(enabledTools)).Debug("Registering tools")

	for toolName, toolImpl := range enabledTools {
		name := toolName
		tool := toolImpl

		mcpSrv.AddTool(tool.Definition(), func(toolCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, ok := request.Params.Arguments.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("invalid arguments type: expected object, got %T", request.Params.Arguments)
			}

			result, err := tool.Execute(toolCtx, registry.GetLogger(), registry.GetCache(), args)
			if err != nil {
				if transport != "stdio" {
					logger.WithError(err).Errorf("Tool execution failed: %s", name)
				}
				return nil, fmt.Errorf("tool execution failed: %w", err)
			}
			return result, nil
		})
	}

	port := cmd.String("port")
	switch transport {
	case "stdio":
		logger.Debug("Starting stdio server")
		return mcpserver.ServeStdio(mcpSrv)
	case "sse":
		logger.WithField("port", port).Debug("Starting SSE server")
		sseServer := mcpserver.NewSSEServer(mcpSrv, mcpserver.WithBaseURL(cmd.String("base-url")+"/sse"))
		return sseServer.Start(":" + port)
	case "http":
		logger.WithField("port", port).Debug("Starting Streamable HTTP server")
		httpServer := mcpserver.NewStreamableHTTPServer(mcpSrv,
			mcpserver.WithEndpointPath(cmd.String("endpoint-path")),
		)
		return httpServer.Start(":" + port)
	default:
		return fmt.Errorf("unsupported transport: %s", transport)
	}
}
