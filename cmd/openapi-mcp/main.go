// Command openapi-mcp serves an OpenAPI document to MCP clients over the
// streamable HTTP transport.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
