// Package ytserver exposes the comment downloader as MCP tools.
package ytserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytcomments/internal/archive"
	"github.com/anatolykoptev/go_ytcomments/internal/engine/youtube"
)

// RegisterTools registers youtube_comments on the given MCP server. sink
// may be nil.
func RegisterTools(server *mcp.Server, dl *youtube.Downloader, sink archive.Sink) {
	registerComments(server, dl, sink)
}
