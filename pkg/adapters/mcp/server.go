package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/aastree"
	"github.com/aretw0/aastree/internal/logging"
	"github.com/aretw0/aastree/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// PackagesURI is the resource listing the opened packages.
const PackagesURI = "aastree://packages"

// TargetArgs addresses a row, see session.Target.
type TargetArgs struct {
	Item string `json:"item"`
	Path string `json:"path,omitempty"`
}

func (a TargetArgs) target() session.Target {
	return session.Target{Item: a.Item, Path: a.Path}
}

// NodeArgs are the arguments of get_node.
type NodeArgs struct {
	TargetArgs
	Depth int `json:"depth,omitempty"`
}

// EditArgs are the arguments of set_value and add_value.
type EditArgs struct {
	TargetArgs
	Value string `json:"value"`
}

// FindArgs are the arguments of find_nodes.
type FindArgs struct {
	TargetArgs
	Query string `json:"query"`
	Depth int    `json:"depth,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// PackageArgs are the arguments of package tools.
type PackageArgs struct {
	Name   string `json:"name,omitempty"`
	Path   string `json:"path,omitempty"`
	As     string `json:"as,omitempty"`
	Create bool   `json:"create,omitempty"`
}

// PackagesResponse lists the opened packages.
type PackagesResponse struct {
	Packages []session.PackageInfo `json:"packages" jsonschema_description:"Opened packages in view order"`
}

// NodeResponse wraps one row.
type NodeResponse struct {
	Node session.NodeView `json:"node" jsonschema_description:"The addressed row and its children"`
}

// FindResponse lists matching rows.
type FindResponse struct {
	Nodes []session.NodeView `json:"nodes" jsonschema_description:"Rows whose name contains the query"`
}

// StepResponse reports an undo or redo.
type StepResponse struct {
	Applied bool            `json:"applied" jsonschema_description:"Whether an edit was reverted or reapplied"`
	History session.History `json:"history" jsonschema_description:"Remaining stack sizes"`
}

// Server exposes a Session as an MCP Server.
type Server struct {
	session   *session.Session
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sess *session.Session, opts ...Option) *Server {
	s := &Server{
		session:   sess,
		mcpServer: server.NewMCPServer("aastree-mcp", strings.TrimSpace(aastree.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("Shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func itemArg() mcp.ToolOption {
	return mcp.WithString("item", mcp.Required(),
		mcp.Description("Path of a row in the package view, e.g. motor/submodels/TechnicalData"))
}

func pathArg() mcp.ToolOption {
	return mcp.WithString("path",
		mcp.Description("Path inside the detail view of item; \"/\" is the item itself. Omit to address the package view"))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_packages",
		mcp.WithDescription("List the opened packages."),
		mcp.WithOutputSchema[PackagesResponse](),
	), mcp.NewStructuredToolHandler(s.handleListPackages))

	s.mcpServer.AddTool(mcp.NewTool("open_package",
		mcp.WithDescription("Open a package file (.json, .yaml, .xml, .aasx)."),
		mcp.WithString("path", mcp.Required(), mcp.Description("File to open")),
		mcp.WithBoolean("create", mcp.Description("Write an empty package to path first")),
		mcp.WithOutputSchema[PackagesResponse](),
	), mcp.NewStructuredToolHandler(s.handleOpenPackage))

	s.mcpServer.AddTool(mcp.NewTool("save_package",
		mcp.WithDescription("Save a package to its file, or to path when given. Without name every package is saved."),
		mcp.WithString("name", mcp.Description("Package name as listed by list_packages")),
		mcp.WithString("path", mcp.Description("Save to this file instead")),
		mcp.WithOutputSchema[PackagesResponse](),
	), mcp.NewStructuredToolHandler(s.handleSavePackage))

	s.mcpServer.AddTool(mcp.NewTool("close_package",
		mcp.WithDescription("Close a package without saving."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Package name")),
		mcp.WithOutputSchema[PackagesResponse](),
	), mcp.NewStructuredToolHandler(s.handleClosePackage))

	s.mcpServer.AddTool(mcp.NewTool("push_package",
		mcp.WithDescription("Store a package in the configured package store."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Package name")),
		mcp.WithString("as", mcp.Description("Store name, defaults to the package name")),
		mcp.WithOutputSchema[PackagesResponse](),
	), mcp.NewStructuredToolHandler(s.handlePushPackage))

	s.mcpServer.AddTool(mcp.NewTool("pull_package",
		mcp.WithDescription("Load a package from the configured package store."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Store name")),
		mcp.WithOutputSchema[PackagesResponse](),
	), mcp.NewStructuredToolHandler(s.handlePullPackage))

	s.mcpServer.AddTool(mcp.NewTool("get_node",
		mcp.WithDescription("Show a row with its value, type and children."),
		itemArg(), pathArg(),
		mcp.WithNumber("depth", mcp.Description("Levels of children to include (default 1)")),
		mcp.WithOutputSchema[NodeResponse](),
	), mcp.NewStructuredToolHandler(s.handleGetNode))

	s.mcpServer.AddTool(mcp.NewTool("set_value",
		mcp.WithDescription("Replace the value of a row. Values are YAML literals; text rows take the text as is."),
		itemArg(), pathArg(),
		mcp.WithString("value", mcp.Required(), mcp.Description("New value, e.g. 4500 or {modelType: Property, idShort: X}")),
		mcp.WithOutputSchema[NodeResponse](),
	), mcp.NewStructuredToolHandler(s.handleSetValue))

	s.mcpServer.AddTool(mcp.NewTool("add_value",
		mcp.WithDescription("Add a value under a container row."),
		itemArg(), pathArg(),
		mcp.WithString("value", mcp.Required(), mcp.Description("YAML literal of the new member")),
		mcp.WithOutputSchema[NodeResponse](),
	), mcp.NewStructuredToolHandler(s.handleAddValue))

	s.mcpServer.AddTool(mcp.NewTool("clear_node",
		mcp.WithDescription("Remove a row from its container, or reset an attribute."),
		itemArg(), pathArg(),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleClearNode))

	s.mcpServer.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the latest edit of the package view, or of the detail view of item when path is set."),
		mcp.WithString("item", mcp.Description("Row whose detail view to undo in")), pathArg(),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleUndo))

	s.mcpServer.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the latest undone edit."),
		mcp.WithString("item", mcp.Description("Row whose detail view to redo in")), pathArg(),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleRedo))

	s.mcpServer.AddTool(mcp.NewTool("find_nodes",
		mcp.WithDescription("Find rows whose name contains query."),
		itemArg(), pathArg(),
		mcp.WithString("query", mcp.Required(), mcp.Description("Case-insensitive name fragment")),
		mcp.WithNumber("depth", mcp.Description("Levels to search (default 8)")),
		mcp.WithNumber("limit", mcp.Description("Maximum hits, 0 for all")),
		mcp.WithOutputSchema[FindResponse](),
	), mcp.NewStructuredToolHandler(s.handleFindNodes))
}

func (s *Server) packagesResponse() PackagesResponse {
	return PackagesResponse{Packages: s.session.Packages()}
}

func (s *Server) handleListPackages(ctx context.Context, request mcp.CallToolRequest, args PackageArgs) (PackagesResponse, error) {
	return s.packagesResponse(), nil
}

func (s *Server) handleOpenPackage(ctx context.Context, request mcp.CallToolRequest, args PackageArgs) (PackagesResponse, error) {
	open := s.session.Open
	if args.Create {
		open = s.session.Create
	}
	if _, err := open(args.Path); err != nil {
		return PackagesResponse{}, fmt.Errorf("open failed: %w", err)
	}
	return s.packagesResponse(), nil
}

func (s *Server) handleSavePackage(ctx context.Context, request mcp.CallToolRequest, args PackageArgs) (PackagesResponse, error) {
	var err error
	if args.Path != "" {
		err = s.session.SaveAs(args.Name, args.Path)
	} else {
		err = s.session.Save(args.Name)
	}
	if err != nil {
		return PackagesResponse{}, fmt.Errorf("save failed: %w", err)
	}
	return s.packagesResponse(), nil
}

func (s *Server) handleClosePackage(ctx context.Context, request mcp.CallToolRequest, args PackageArgs) (PackagesResponse, error) {
	if err := s.session.Close(args.Name); err != nil {
		return PackagesResponse{}, fmt.Errorf("close failed: %w", err)
	}
	return s.packagesResponse(), nil
}

func (s *Server) handlePushPackage(ctx context.Context, request mcp.CallToolRequest, args PackageArgs) (PackagesResponse, error) {
	if err := s.session.Push(ctx, args.Name, args.As); err != nil {
		return PackagesResponse{}, fmt.Errorf("push failed: %w", err)
	}
	return s.packagesResponse(), nil
}

func (s *Server) handlePullPackage(ctx context.Context, request mcp.CallToolRequest, args PackageArgs) (PackagesResponse, error) {
	if _, err := s.session.Pull(ctx, args.Name); err != nil {
		return PackagesResponse{}, fmt.Errorf("pull failed: %w", err)
	}
	return s.packagesResponse(), nil
}

func (s *Server) handleGetNode(ctx context.Context, request mcp.CallToolRequest, args NodeArgs) (NodeResponse, error) {
	depth := args.Depth
	if _, ok := request.GetArguments()["depth"]; !ok {
		depth = 1
	}
	node, err := s.session.Get(args.target(), depth)
	if err != nil {
		return NodeResponse{}, err
	}
	return NodeResponse{Node: node}, nil
}

func (s *Server) handleSetValue(ctx context.Context, request mcp.CallToolRequest, args EditArgs) (NodeResponse, error) {
	node, err := s.session.Set(args.target(), args.Value)
	if err != nil {
		s.logger.Debug("MCP set_value rejected", "target", args.target().String(), "err", err)
		return NodeResponse{}, err
	}
	return NodeResponse{Node: node}, nil
}

func (s *Server) handleAddValue(ctx context.Context, request mcp.CallToolRequest, args EditArgs) (NodeResponse, error) {
	node, err := s.session.Add(args.target(), args.Value)
	if err != nil {
		s.logger.Debug("MCP add_value rejected", "target", args.target().String(), "err", err)
		return NodeResponse{}, err
	}
	return NodeResponse{Node: node}, nil
}

func (s *Server) handleClearNode(ctx context.Context, request mcp.CallToolRequest, args TargetArgs) (StepResponse, error) {
	if err := s.session.Clear(args.target()); err != nil {
		return StepResponse{}, err
	}
	return s.stepResponse(true, args.target())
}

func (s *Server) handleUndo(ctx context.Context, request mcp.CallToolRequest, args TargetArgs) (StepResponse, error) {
	applied, err := s.session.Undo(args.target())
	if err != nil {
		return StepResponse{}, err
	}
	return s.stepResponse(applied, args.target())
}

func (s *Server) handleRedo(ctx context.Context, request mcp.CallToolRequest, args TargetArgs) (StepResponse, error) {
	applied, err := s.session.Redo(args.target())
	if err != nil {
		return StepResponse{}, err
	}
	return s.stepResponse(applied, args.target())
}

func (s *Server) stepResponse(applied bool, t session.Target) (StepResponse, error) {
	h, err := s.session.History(t)
	if err != nil {
		return StepResponse{}, err
	}
	return StepResponse{Applied: applied, History: h}, nil
}

func (s *Server) handleFindNodes(ctx context.Context, request mcp.CallToolRequest, args FindArgs) (FindResponse, error) {
	depth := args.Depth
	if depth <= 0 {
		depth = 8
	}
	nodes, err := s.session.Find(args.target(), args.Query, depth, args.Limit)
	if err != nil {
		return FindResponse{}, err
	}
	return FindResponse{Nodes: nodes}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(PackagesURI, "Opened packages",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.session.Packages())
		if err != nil {
			return nil, fmt.Errorf("failed to encode packages: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      PackagesURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
