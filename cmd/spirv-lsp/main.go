// SPDX-License-Identifier: Apache-2.0
package main

import (
	"log"
	"os"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"spirv/internal/lsp"
)

const lsName = "spirv" // Name identifier for the language server

var (
	version = "0.0.1"        // Server version
	handler protocol.Handler // Protocol handler instance (wired up below)
)

func main() {
	// Configure debug logging (1 = debug level, nil = default logger)
	commonlog.Configure(1, nil)

	asmHandler := lsp.NewHandler()

	handler = protocol.Handler{
		Initialize:            asmHandler.Initialize,
		Initialized:           asmHandler.Initialized,
		Shutdown:              asmHandler.Shutdown,
		SetTrace:              asmHandler.SetTrace,
		TextDocumentDidOpen:   asmHandler.TextDocumentDidOpen,
		TextDocumentDidClose:  asmHandler.TextDocumentDidClose,
		TextDocumentDidChange: asmHandler.TextDocumentDidChange,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Printf("Starting %s LSP server %s...", lsName, version)

	// Serve over standard input/output, the transport editors use.
	if err := s.RunStdio(); err != nil {
		log.Println("Error starting LSP server:", err)
		os.Exit(1)
	}
}
