// Package server wires the blueprint engine to the language server protocol.
package server

import (
	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/cloudify-cosmo/cloudify-language-server/internal/cache"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/config"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/importables"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/lint"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/manager"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/marketplace"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/parser"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/scheduler"
)

const Name = "cloudify-ls"

var log = commonlog.GetLogger("cloudify-ls.server")

// Options are fixed when the server is created. The configuration can still
// be overridden by the client's initialization options.
type Options struct {
	Version string
	Config  config.Config

	// Fetcher replaces the marketplace client.
	Fetcher marketplace.Fetcher
	// LintExec replaces running the linter as a process.
	LintExec lint.ExecFunc
}

type Server struct {
	handler protocol.Handler
	opts    Options
	config  config.Config

	manager   *manager.DocumentManager
	parsers   *parser.ParserPool
	store     *cache.Store
	types     *cache.Cache
	importer  *marketplace.Importer
	linter    *lint.Runner
	lister    *importables.Lister
	scheduler *scheduler.Scheduler
}

func NewServer(opts Options) *Server {
	s := &Server{opts: opts, config: opts.Config}
	s.handler = protocol.Handler{
		Initialize:                     s.initialize,
		Initialized:                    s.initialized,
		Shutdown:                       s.shutdown,
		SetTrace:                       s.setTrace,
		TextDocumentDidOpen:            s.textDocumentDidOpen,
		TextDocumentDidChange:          s.textDocumentDidChange,
		TextDocumentDidSave:            s.textDocumentDidSave,
		TextDocumentDidClose:           s.textDocumentDidClose,
		TextDocumentCompletion:         s.textDocumentCompletion,
		CompletionItemResolve:          s.completionItemResolve,
		TextDocumentHover:              s.textDocumentHover,
		TextDocumentSemanticTokensFull: s.textDocumentSemanticTokensFull,
		TextDocumentCodeAction:         s.textDocumentCodeAction,
		WorkspaceExecuteCommand:        s.workspaceExecuteCommand,
	}
	return s
}

// Handler exposes the protocol handler, mostly for tests.
func (s *Server) Handler() *protocol.Handler {
	return &s.handler
}

// RunStdio serves one client over standard input and output until it
// disconnects.
func (s *Server) RunStdio() error {
	return server.NewServer(&s.handler, Name, false).RunStdio()
}
