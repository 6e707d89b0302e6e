package server

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/cloudify-cosmo/cloudify-language-server/internal/blueprint"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/cache"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/config"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/importables"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/lint"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/manager"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/marketplace"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/parser"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/scheduler"
)

// FixCommand is the command behind the lint quick fix.
const FixCommand = "cfy-lint.fix"

var triggerCharacters = []string{"-", " ", ":"}

func (s *Server) initialize(
	context *glsp.Context,
	params *protocol.InitializeParams,
) (any, error) {
	cfg, err := s.opts.Config.Overlay(params.InitializationOptions)
	if err != nil {
		return nil, err
	}
	s.setup(cfg)
	log.Infof("config: %+v", cfg)

	syncKind := protocol.TextDocumentSyncKindIncremental

	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &syncKind,
		Save:      &protocol.SaveOptions{IncludeText: &protocol.False},
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: triggerCharacters,
		ResolveProvider:   &protocol.True,
	}
	capabilities.SemanticTokensProvider = &protocol.SemanticTokensOptions{
		Legend: protocol.SemanticTokensLegend{
			TokenTypes:     blueprint.TokenTypes,
			TokenModifiers: blueprint.TokenModifiers,
		},
		Full: true,
	}
	capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
		Commands: []string{FixCommand},
	}

	version := s.opts.Version
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    Name,
			Version: &version,
		},
	}, nil
}

// setup builds the collaborators for cfg. A node type store that cannot be
// opened only costs persistence.
func (s *Server) setup(cfg config.Config) {
	s.config = cfg

	s.parsers = parser.NewParserPool(cfg.ParserPoolSize)
	s.manager = manager.NewDocumentManager(s.parsers, cfg.RefreshInterval())

	store, err := openStore(cfg.CachePath())
	if err != nil {
		log.Warningf("node types will not be persisted: %s", err)
	}
	s.store = store
	s.types = cache.New(store, cfg.CacheTTL())

	fetcher := s.opts.Fetcher
	if fetcher == nil {
		fetcher = marketplace.NewClient(cfg.MarketplaceURL, nil)
	}
	s.importer = marketplace.NewImporter(fetcher, s.types)

	s.linter = lint.NewRunner(lint.Options{
		Command:       cfg.LintCommand,
		MaxConcurrent: cfg.LintMaxConcurrent,
		Timeout:       cfg.LintTimeout(),
		MaxProblems:   cfg.MaxNumberOfProblems,
		Exec:          s.opts.LintExec,
	})
	s.lister = importables.New()

	s.scheduler = scheduler.NewScheduler(64, cfg.LintMaxConcurrent+1)
	s.scheduler.RunScheduler()
}

func openStore(path string) (*cache.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	return cache.OpenStore(path)
}

func (s *Server) initialized(
	context *glsp.Context,
	params *protocol.InitializedParams,
) error {
	log.Info("client initialized")
	if s.config.LintEnabled && s.opts.LintExec == nil && !s.linter.Available() {
		log.Warningf("%s not found on the PATH", s.config.LintCommand)
	}
	return nil
}

func (s *Server) shutdown(context *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	if s.scheduler == nil {
		return nil
	}
	s.scheduler.StopScheduler()

	var errs []error
	errs = append(errs, s.lister.Close(), s.parsers.Close())
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	return errors.Join(errs...)
}

func (s *Server) setTrace(
	context *glsp.Context,
	params *protocol.SetTraceParams,
) error {
	protocol.SetTraceValue(params.Value)
	return nil
}
