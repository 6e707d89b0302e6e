package server

import (
	"context"
	"slices"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/cloudify-cosmo/cloudify-language-server/internal/blueprint"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/completion"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/marketplace"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/registry"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/scheduler"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/sitteradapter"
)

var itemKinds = map[completion.Kind]protocol.CompletionItemKind{
	completion.KindKeyword:  protocol.CompletionItemKindKeyword,
	completion.KindValue:    protocol.CompletionItemKindValue,
	completion.KindModule:   protocol.CompletionItemKindModule,
	completion.KindClass:    protocol.CompletionItemKindClass,
	completion.KindProperty: protocol.CompletionItemKindProperty,
	completion.KindFunction: protocol.CompletionItemKindFunction,
	completion.KindVariable: protocol.CompletionItemKindVariable,
	completion.KindFile:     protocol.CompletionItemKindFile,
	completion.KindSnippet:  protocol.CompletionItemKindSnippet,
}

func (s *Server) textDocumentCompletion(
	context *glsp.Context,
	params *protocol.CompletionParams,
) (any, error) {
	uri := params.TextDocument.URI
	res, err := s.manager.Resolve(bg(), uri, params.Position, s.types)
	if err != nil {
		return nil, err
	}
	if slices.Contains(res.Changed, registry.Imports) {
		s.scheduleImports(res.Plugins)
	}

	src := completion.Sources{
		Types:          s.types,
		ExtraPlugins:   s.config.ExtraPlugins,
		FallbackInputs: res.Projection.Inputs,
	}
	if res.Section == registry.Imports {
		if path, err := uriToPath(uri); err == nil {
			src.Importables = s.lister.List(path)
		}
	}
	return completionItems(completion.Build(res.Result, src)), nil
}

func completionItems(candidates []completion.Candidate) []protocol.CompletionItem {
	items := make([]protocol.CompletionItem, 0, len(candidates))
	for _, c := range candidates {
		kind := itemKinds[c.Kind]
		item := protocol.CompletionItem{
			Label: c.Label,
			Kind:  &kind,
		}
		if c.Detail != "" {
			item.Detail = &c.Detail
		}
		if c.InsertText != "" {
			item.InsertText = &c.InsertText
		}
		if c.Documentation != "" {
			item.Documentation = c.Documentation
		}
		items = append(items, item)
	}
	return items
}

// scheduleImports fetches the node types of the imported plugins in the
// background.
func (s *Server) scheduleImports(imports []blueprint.Import) {
	var plugins []marketplace.Plugin
	for _, imp := range imports {
		if !registry.IsPluginName(imp.Name) || s.types.Imported(imp.Name) {
			continue
		}
		plugins = append(plugins, marketplace.Plugin{Name: imp.Name, Version: imp.Version})
	}
	if len(plugins) == 0 {
		return
	}
	task := scheduler.Task{
		Name: "import plugins",
		Execute: func(ctx context.Context) error {
			return s.importer.ImportAll(ctx, plugins)
		},
	}
	if !s.scheduler.Schedule(task) {
		log.Warningf("plugin import dropped, queue is full")
	}
}

func (s *Server) completionItemResolve(
	context *glsp.Context,
	params *protocol.CompletionItem,
) (*protocol.CompletionItem, error) {
	if params.Documentation != nil {
		return params, nil
	}
	if doc, ok := s.documentation(params.Label); ok {
		params.Documentation = protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: doc}
	}
	return params, nil
}

// documentation knows the vocabulary and every fetched node type.
func (s *Server) documentation(word string) (string, bool) {
	if doc, ok := registry.Documentation(word); ok {
		return doc, true
	}
	if s.types == nil {
		return "", false
	}
	if t, ok := s.types.Lookup(word); ok && t.Description != "" {
		return t.Description + "\n\nFrom " + t.Plugin + " " + t.Version + ".", true
	}
	return "", false
}

func (s *Server) textDocumentHover(
	context *glsp.Context,
	params *protocol.HoverParams,
) (*protocol.Hover, error) {
	snap, err := s.manager.Snapshot(bg(), params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	pos := sitteradapter.ToDocument(snap.Doc, params.Position)
	word := wordAround(snap.Doc.Line(pos.Line), pos.Character)
	doc, ok := s.documentation(word)
	if !ok {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: "**" + word + "**\n\n" + doc,
		},
	}, nil
}

func (s *Server) textDocumentSemanticTokensFull(
	context *glsp.Context,
	params *protocol.SemanticTokensParams,
) (*protocol.SemanticTokens, error) {
	snap, err := s.manager.Snapshot(bg(), params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	tokens := blueprint.Tokens(snap.Doc, snap.Tree)
	return &protocol.SemanticTokens{Data: blueprint.Encode(tokens, sitteradapter.Columns(snap.Doc))}, nil
}

// bg is the context of request work. glsp does not cancel requests.
func bg() context.Context {
	return context.Background()
}
