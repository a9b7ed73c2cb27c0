package operation

import (
	"github.com/go-training/deezer-connect/pkg/operation/session"

	"github.com/mark3labs/mcp-go/server"
)

/*
RegisterSessionTools registers the Deezer session tools to the specified MCPServer instance.

Parameters:
  - s: Pointer to the MCPServer instance where the tools will be registered.

The tools read the Deezer client and credentials from the request context,
see core.WithClient and core.WithCredentials.
*/
func RegisterSessionTools(s *server.MCPServer) {
	tool := &Tool{}

	tool.RegisterRead(server.ServerTool{
		Tool:    session.LoginURLTool,
		Handler: session.HandleLoginURLTool,
	})
	tool.RegisterRead(server.ServerTool{
		Tool:    session.CheckSessionTool,
		Handler: session.HandleCheckSessionTool,
	})
	tool.RegisterWrite(server.ServerTool{
		Tool:    session.CreateSessionTool,
		Handler: session.HandleCreateSessionTool,
	})
	tool.RegisterWrite(server.ServerTool{
		Tool:    session.DestroySessionTool,
		Handler: session.HandleDestroySessionTool,
	})

	s.AddTools(tool.Tools()...)
}

/*
Tool manages collections of tools to be registered with an MCPServer.

Fields:
  - write: Stores all ServerTools registered as write operations.
  - read: Stores all ServerTools registered as read operations.
*/
type Tool struct {
	write []server.ServerTool
	read  []server.ServerTool
}

// RegisterWrite registers a ServerTool as a write operation.
func (t *Tool) RegisterWrite(s server.ServerTool) {
	t.write = append(t.write, s)
}

// RegisterRead registers a ServerTool as a read operation.
func (t *Tool) RegisterRead(s server.ServerTool) {
	t.read = append(t.read, s)
}

// Tools returns all registered ServerTools, write tools first.
func (t *Tool) Tools() []server.ServerTool {
	tools := make([]server.ServerTool, 0, len(t.write)+len(t.read))
	tools = append(tools, t.write...)
	tools = append(tools, t.read...)
	return tools
}
