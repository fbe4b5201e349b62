// Package lsp implements a small language server for the assembly form:
// document sync plus parse and verification diagnostics.
package lsp

import (
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"spirv/internal/asm"
)

var log = commonlog.GetLogger("spirv.lsp")

// Handler implements the LSP handlers for assembly files.
type Handler struct {
	mu      sync.RWMutex
	content map[protocol.DocumentUri]string
}

// NewHandler creates a handler with an empty document store.
func NewHandler() *Handler {
	return &Handler{
		content: map[protocol.DocumentUri]string{},
	}
}

// Initialize advertises the server's capabilities: full-document sync.
func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Infof("initialize")
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
		},
	}, nil
}

// Initialized completes the handshake.
func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

// Shutdown handles the shutdown request.
func (h *Handler) Shutdown(ctx *glsp.Context) error {
	return nil
}

// SetTrace accepts trace configuration without acting on it.
func (h *Handler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// TextDocumentDidOpen stores the document and publishes diagnostics.
func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	h.mu.Lock()
	h.content[params.TextDocument.URI] = params.TextDocument.Text
	h.mu.Unlock()
	h.publishDiagnostics(ctx, params.TextDocument.URI)
	return nil
}

// TextDocumentDidChange applies a full-document change and republishes
// diagnostics.
func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	for _, change := range params.ContentChanges {
		if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			h.mu.Lock()
			h.content[params.TextDocument.URI] = whole.Text
			h.mu.Unlock()
		}
	}
	h.publishDiagnostics(ctx, params.TextDocument.URI)
	return nil
}

// TextDocumentDidClose drops the document.
func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	h.mu.Lock()
	delete(h.content, params.TextDocument.URI)
	h.mu.Unlock()
	return nil
}

// publishDiagnostics parses the stored document and reports its errors.
func (h *Handler) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri) {
	h.mu.RLock()
	source, ok := h.content[uri]
	h.mu.RUnlock()
	if !ok {
		return
	}
	diagnostics := []protocol.Diagnostic{}
	if _, err := asm.ReadModule(strings.NewReader(source)); err != nil {
		diagnostics = append(diagnostics, convertError(err, source))
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics,
		protocol.PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: diagnostics,
		})
}

// convertError turns a reader error into an LSP diagnostic spanning the
// offending line.
func convertError(err error, source string) protocol.Diagnostic {
	line := 1
	message := err.Error()
	switch e := err.(type) {
	case *asm.ParseError:
		line = e.Line
		message = e.Msg
	case *asm.VerificationError:
		line = e.Line
		message = e.Msg
	}
	lines := strings.Split(source, "\n")
	length := 1
	if line >= 1 && line <= len(lines) {
		length = len(lines[line-1])
		if length == 0 {
			length = 1
		}
	}
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: uint32(line - 1), Character: 0},
			End:   protocol.Position{Line: uint32(line - 1), Character: uint32(length)},
		},
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString("spirv-as"),
		Message:  message,
	}
}

func ptrBool(v bool) *bool {
	return &v
}

func ptrSyncKind(kind protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &kind
}

func ptrSeverity(severity protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &severity
}

func ptrString(s string) *string {
	return &s
}
