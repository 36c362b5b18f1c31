package server

// SummaryToolServer defines the interface for the MCP server that handles
// summarization tool calls from MCP clients.
type SummaryToolServer interface {
	// Initialize registers the tools.
	Initialize() error

	// Start serves tool calls on the MCP transport until it closes.
	Start() error

	// Stop gracefully shuts down the MCP server.
	Stop() error
}

var _ SummaryToolServer = (*MCPSummaryToolServer)(nil)
