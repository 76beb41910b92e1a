package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/leapstack-labs/drl/internal/config"
	"github.com/leapstack-labs/drl/internal/index"
	"github.com/leapstack-labs/drl/internal/loader"
)

// errExit stops the main loop after an "exit" notification.
var errExit = errors.New("exit requested")

// workspaceSymbolLimit caps the results of a workspace/symbol request.
const workspaceSymbolLimit = 200

// Server implements the Language Server Protocol for DRL.
type Server struct {
	// Document management
	documents *DocumentStore

	// Project context
	projectRoot string
	project     *config.ProjectConfig
	loader      *loader.Loader
	initialized bool

	// Symbol index (nil until "drl index build" has been run)
	index *index.Store

	// I/O
	reader  *bufio.Reader
	writer  io.Writer
	writeMu sync.Mutex

	// Logging
	logger *slog.Logger

	// Shutdown state
	shutdown   bool
	shutdownMu sync.RWMutex
}

// NewServer creates a new LSP server instance.
func NewServer(reader io.Reader, writer io.Writer) *Server {
	return NewServerWithLogger(reader, writer, nil)
}

// NewServerWithLogger creates a new LSP server instance with a custom logger.
func NewServerWithLogger(reader io.Reader, writer io.Writer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return &Server{
		documents: NewDocumentStore(),
		reader:    bufio.NewReader(reader),
		writer:    writer,
		logger:    logger,
	}
}

// Run starts the server's main loop, processing JSON-RPC messages. It
// returns when the client disconnects or after shutdown and exit.
func (s *Server) Run() error {
	s.logger.Info("DRL LSP server starting...")
	defer s.closeIndex()

	for {
		s.shutdownMu.RLock()
		if s.shutdown {
			s.shutdownMu.RUnlock()
			return nil
		}
		s.shutdownMu.RUnlock()

		msg, err := s.readMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Info("Client disconnected")
				return nil
			}
			s.logger.Error("Error reading message", "error", err)
			continue
		}

		if err := s.handleMessage(msg); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			s.logger.Error("Error handling message", "error", err)
		}
	}
}

// JSONRPCMessage represents a JSON-RPC 2.0 message.
type JSONRPCMessage struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method,omitempty"`
	Params  json.RawMessage  `json:"params,omitempty"`
	Result  json.RawMessage  `json:"result,omitempty"`
	Error   *JSONRPCError    `json:"error,omitempty"`
}

// JSONRPCError represents a JSON-RPC error.
type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSON-RPC error codes.
const (
	codeInvalidParams  = -32602
	codeMethodNotFound = -32601
)

// readMessage reads a JSON-RPC message from the input stream.
func (s *Server) readMessage() (*JSONRPCMessage, error) {
	var contentLength int
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			break // End of headers
		}

		if strings.HasPrefix(line, "Content-Length: ") {
			lengthStr := strings.TrimPrefix(line, "Content-Length: ")
			contentLength, err = strconv.Atoi(lengthStr)
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length: %w", err)
			}
		}
	}

	if contentLength == 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(s.reader, body); err != nil {
		return nil, fmt.Errorf("error reading body: %w", err)
	}

	var msg JSONRPCMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("error parsing message: %w", err)
	}

	return &msg, nil
}

// sendResponse sends a JSON-RPC response.
func (s *Server) sendResponse(id *json.RawMessage, result any, err *JSONRPCError) {
	msg := JSONRPCMessage{
		JSONRPC: "2.0",
		ID:      id,
	}

	if err != nil {
		msg.Error = err
	} else {
		resultBytes, _ := json.Marshal(result)
		msg.Result = resultBytes
	}

	s.writeMessage(&msg)
}

// sendNotification sends a JSON-RPC notification (no ID).
func (s *Server) sendNotification(method string, params any) {
	msg := JSONRPCMessage{
		JSONRPC: "2.0",
		Method:  method,
	}

	if params != nil {
		paramsBytes, _ := json.Marshal(params)
		msg.Params = paramsBytes
	}

	s.writeMessage(&msg)
}

// writeMessage writes a JSON-RPC message to the output stream.
func (s *Server) writeMessage(msg *JSONRPCMessage) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	body, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("Error marshaling message", "error", err)
		return
	}

	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(body))
	_, _ = s.writer.Write([]byte(header))
	_, _ = s.writer.Write(body)
}

// invalidParams answers a request whose params could not be decoded.
func (s *Server) invalidParams(msg *JSONRPCMessage, err error) error {
	s.sendResponse(msg.ID, nil, &JSONRPCError{Code: codeInvalidParams, Message: err.Error()})
	return err
}

// handleMessage dispatches a message to the appropriate handler.
func (s *Server) handleMessage(msg *JSONRPCMessage) error {
	s.logger.Debug("Received", "method", msg.Method)

	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return s.handleInitialized(msg)
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		return s.handleExit(msg)
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/documentSymbol":
		return s.handleDocumentSymbol(msg)
	case "textDocument/hover":
		return s.handleHover(msg)
	case "workspace/symbol":
		return s.handleWorkspaceSymbol(msg)
	default:
		if msg.ID != nil {
			s.sendResponse(msg.ID, nil, &JSONRPCError{
				Code:    codeMethodNotFound,
				Message: "Method not found: " + msg.Method,
			})
		}
		return nil
	}
}

// --- Lifecycle handlers ---

func (s *Server) handleInitialize(msg *JSONRPCMessage) error {
	var params InitializeParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.invalidParams(msg, err)
	}

	s.projectRoot = URIToPath(params.RootURI)
	s.logger.Info("Project root", "path", s.projectRoot)

	s.loadProject()
	s.openIndex()

	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: &TextDocumentSyncOptions{
				OpenClose: true,
				Change:    TextDocumentSyncKindFull,
				Save: &SaveOptions{
					IncludeText: true,
				},
			},
			HoverProvider:           true,
			DocumentSymbolProvider:  true,
			WorkspaceSymbolProvider: true,
		},
		ServerInfo: &ServerInfo{Name: "drl"},
	}

	s.sendResponse(msg.ID, result, nil)
	return nil
}

func (s *Server) handleInitialized(_ *JSONRPCMessage) error {
	s.initialized = true
	s.logger.Info("Server initialized")

	if s.index == nil {
		s.sendNotification("window/showMessage", &ShowMessageParams{
			Type:    MessageTypeInfo,
			Message: "Symbol index not found. Run 'drl index build' to enable workspace symbols.",
		})
	}
	return nil
}

func (s *Server) handleShutdown(msg *JSONRPCMessage) error {
	s.shutdownMu.Lock()
	s.shutdown = true
	s.shutdownMu.Unlock()

	s.closeIndex()

	s.sendResponse(msg.ID, nil, nil)
	s.logger.Info("Server shutdown")
	return nil
}

func (s *Server) handleExit(_ *JSONRPCMessage) error {
	s.logger.Info("Server exit")
	return errExit
}

// --- Document handlers ---

func (s *Server) handleDidOpen(msg *JSONRPCMessage) error {
	var params DidOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}

	doc := s.documents.Open(params.TextDocument.URI, params.TextDocument.Text, params.TextDocument.Version)
	s.logger.Info("Opened", "uri", params.TextDocument.URI)

	s.publishDiagnostics(doc)
	return nil
}

func (s *Server) handleDidClose(msg *JSONRPCMessage) error {
	var params DidCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}

	s.documents.Close(params.TextDocument.URI)
	s.logger.Info("Closed", "uri", params.TextDocument.URI)

	s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []Diagnostic{},
	})
	return nil
}

func (s *Server) handleDidChange(msg *JSONRPCMessage) error {
	var params DidChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}

	// Full sync: the last change holds the whole document.
	if len(params.ContentChanges) == 0 {
		return nil
	}
	lastChange := params.ContentChanges[len(params.ContentChanges)-1]
	doc := s.documents.Update(params.TextDocument.URI, lastChange.Text, params.TextDocument.Version)
	if doc == nil {
		return fmt.Errorf("change for unopened document %s", params.TextDocument.URI)
	}

	s.publishDiagnostics(doc)
	return nil
}

func (s *Server) handleDidSave(msg *JSONRPCMessage) error {
	var params DidSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}

	uri := params.TextDocument.URI
	doc := s.documents.Get(uri)
	if params.Text != "" && (doc == nil || doc.Content != params.Text) {
		version := 0
		if doc != nil {
			version = doc.Version
		}
		doc = s.documents.Open(uri, params.Text, version)
		s.publishDiagnostics(doc)
	}
	s.logger.Info("Saved", "path", URIToPath(uri))

	if doc != nil {
		s.reindex(doc)
	}
	return nil
}

// --- Feature handlers ---

func (s *Server) handleDocumentSymbol(msg *JSONRPCMessage) error {
	var params DocumentSymbolParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.invalidParams(msg, err)
	}

	symbols := []DocumentSymbol{}
	if doc := s.documents.Get(params.TextDocument.URI); doc != nil && doc.Result != nil {
		symbols = documentSymbols(doc.Result.Package)
	}
	s.sendResponse(msg.ID, symbols, nil)
	return nil
}

func (s *Server) handleHover(msg *JSONRPCMessage) error {
	var params HoverParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.invalidParams(msg, err)
	}

	s.sendResponse(msg.ID, s.getHover(params), nil)
	return nil
}

func (s *Server) handleWorkspaceSymbol(msg *JSONRPCMessage) error {
	var params WorkspaceSymbolParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.invalidParams(msg, err)
	}

	result := []SymbolInformation{}
	if s.index != nil {
		q := index.Query{Limit: workspaceSymbolLimit}
		if params.Query != "" {
			q.Name = "*" + params.Query + "*"
		}
		symbols, err := s.index.Query(context.Background(), q)
		if err != nil {
			s.logger.Warn("Workspace symbol query failed", "error", err)
		} else {
			result = workspaceSymbols(symbols)
		}
	}
	s.sendResponse(msg.ID, result, nil)
	return nil
}

// --- Helper methods ---

// loadProject reads drl.yaml from the project root, falling back to the
// defaults when there is none.
func (s *Server) loadProject() {
	cfg, err := config.LoadFromDir(s.projectRoot)
	if err != nil {
		s.logger.Warn("Invalid project config, using defaults", "error", err)
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if !filepath.IsAbs(cfg.SourceDir) {
		cfg.SourceDir = filepath.Join(s.projectRoot, cfg.SourceDir)
	}
	if !filepath.IsAbs(cfg.IndexPath) {
		cfg.IndexPath = filepath.Join(s.projectRoot, cfg.IndexPath)
	}
	s.project = cfg
	s.loader = loader.New(cfg, s.logger)
}

// openIndex opens the project's symbol index if it has been built.
func (s *Server) openIndex() {
	path := s.project.IndexPath
	if _, err := os.Stat(path); err != nil {
		s.logger.Info("Symbol index not found", "path", path)
		return
	}
	store := index.NewStore(s.logger)
	if err := store.Open(path); err != nil {
		s.logger.Warn("Failed to open symbol index", "path", path, "error", err)
		return
	}
	if err := store.Migrate(); err != nil {
		s.logger.Warn("Failed to migrate symbol index", "path", path, "error", err)
		_ = store.Close()
		return
	}
	s.index = store
}

func (s *Server) closeIndex() {
	if s.index != nil {
		_ = s.index.Close()
		s.index = nil
	}
}

// reindex refreshes a saved document's symbols in the index when the file
// belongs to the project's rule sources.
func (s *Server) reindex(doc *Document) {
	if s.index == nil || s.loader == nil || doc.Result == nil || doc.Result.Package == nil {
		return
	}
	path := URIToPath(doc.URI)
	rel, err := filepath.Rel(s.loader.Root(), path)
	if err != nil || strings.HasPrefix(rel, "..") || !s.loader.Matches(rel) {
		return
	}

	n, err := s.index.ReplaceFile(context.Background(), index.Document{
		Path:       path,
		Package:    doc.Result.Package,
		ErrorCount: len(doc.Result.Errors),
	})
	if err != nil {
		s.logger.Warn("Failed to re-index file", "path", path, "error", err)
		return
	}
	s.logger.Debug("Re-indexed file", "path", path, "symbols", n)
}
