package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/sloplab/slop/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes slop's
detectors as tools that LLMs can invoke. This enables AI assistants to
find dead code, circular imports and duplicated blocks in a codebase.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "slop": {
        "command": "slop",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - analyze_project    Full pipeline: all detectors, aggregated issues
  - find_dead_code     Stranded files and unused entities
  - find_duplicates    Duplicated code blocks
  - dependency_graph   File import graph with cycles and statistics`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "manifest",
				Usage: "Print the server manifest JSON and exit",
			},
		},
		Action: runMCPCmd,
	}
}

func runMCPCmd(c *cli.Context) error {
	if c.Bool("manifest") {
		data, err := mcpserver.GenerateManifest(version)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	server := mcpserver.NewServer(version)
	return server.Run(c.Context)
}
