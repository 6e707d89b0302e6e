package server

import (
	"context"
	"errors"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/cloudify-cosmo/cloudify-language-server/internal/document"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/lint"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/scheduler"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/sitteradapter"
)

func (s *Server) textDocumentDidOpen(
	context *glsp.Context,
	params *protocol.DidOpenTextDocumentParams,
) error {
	uri := params.TextDocument.URI
	s.manager.Open(uri, params.TextDocument.Text, params.TextDocument.Version)
	s.scheduleLint(context.Notify, uri)
	return nil
}

func (s *Server) textDocumentDidChange(
	context *glsp.Context,
	params *protocol.DidChangeTextDocumentParams,
) error {
	return s.manager.ApplyChanges(
		params.TextDocument.URI,
		params.TextDocument.Version,
		params.ContentChanges,
	)
}

func (s *Server) textDocumentDidSave(
	context *glsp.Context,
	params *protocol.DidSaveTextDocumentParams,
) error {
	s.scheduleLint(context.Notify, params.TextDocument.URI)
	return nil
}

func (s *Server) textDocumentDidClose(
	context *glsp.Context,
	params *protocol.DidCloseTextDocumentParams,
) error {
	uri := params.TextDocument.URI
	s.manager.Release(uri)
	// clear what the editor still shows for the closed document
	publishDiagnostics(context.Notify, uri, []protocol.Diagnostic{})
	return nil
}

// scheduleLint lints uri in the background and publishes the result. Only
// documents on disk can be linted.
func (s *Server) scheduleLint(notify glsp.NotifyFunc, uri string) {
	if !s.config.LintEnabled {
		return
	}
	path, err := uriToPath(uri)
	if err != nil {
		log.Debugf("not linting %s: %s", uri, err)
		return
	}
	task := scheduler.Task{
		Name:    "lint " + path,
		Execute: func(ctx context.Context) error { return s.lint(ctx, notify, uri, path) },
	}
	if !s.scheduler.Schedule(task) {
		log.Warningf("lint of %s dropped, queue is full", path)
	}
}

func (s *Server) lint(ctx context.Context, notify glsp.NotifyFunc, uri, path string) error {
	text, err := s.manager.Text(uri)
	if err != nil {
		// closed in the meantime
		return nil
	}
	doc := document.New(text)
	findings, err := s.linter.Lint(ctx, doc, path)
	switch {
	case errors.Is(err, lint.ErrLintBusy):
		log.Debugf("skipping lint of %s: %s", path, err)
		return nil
	case errors.Is(err, lint.ErrLintUnavailable):
		log.Warningf("%s", err)
	case err != nil:
		return err
	}
	publishDiagnostics(notify, uri, diagnostics(doc, findings))
	return nil
}

func publishDiagnostics(
	notify glsp.NotifyFunc,
	uri string,
	diagnostics []protocol.Diagnostic,
) {
	notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// diagnostics converts findings, whose columns count bytes, to the
// editor's positions.
func diagnostics(doc *document.Document, findings []lint.Finding) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(findings))
	source := lint.Source
	for _, f := range findings {
		severity := protocol.DiagnosticSeverity(f.Severity)
		out = append(out, protocol.Diagnostic{
			Range:    sitteradapter.Range(doc, f.Start, f.End),
			Severity: &severity,
			Code:     &protocol.IntegerOrString{Value: f.Rule},
			Source:   &source,
			Message:  f.Message,
			Data:     f.Rule,
		})
	}
	return out
}
