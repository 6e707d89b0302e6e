package server

import (
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/cloudify-cosmo/cloudify-language-server/internal/lint"
)

const fixTitle = "Fix with Cfy-Lint"

func (s *Server) textDocumentCodeAction(
	context *glsp.Context,
	params *protocol.CodeActionParams,
) (any, error) {
	return fixActions(params.TextDocument.URI, params.Range, params.Context.Diagnostics), nil
}

// fixActions offers a quick fix for each linter diagnostic starting on a
// line of r.
func fixActions(uri string, r protocol.Range, diagnostics []protocol.Diagnostic) []protocol.CodeAction {
	actions := []protocol.CodeAction{}
	kind := protocol.CodeActionKindQuickFix
	for _, d := range diagnostics {
		if d.Source == nil || *d.Source != lint.Source {
			continue
		}
		if d.Range.Start.Line < r.Start.Line || d.Range.Start.Line > r.End.Line {
			continue
		}
		rule := diagnosticRule(d)
		if rule == "" {
			continue
		}
		actions = append(actions, protocol.CodeAction{
			Title:       fixTitle,
			Kind:        &kind,
			Diagnostics: []protocol.Diagnostic{d},
			Command: &protocol.Command{
				Title:     fixTitle,
				Command:   FixCommand,
				Arguments: []any{uri, lint.FixArgument(rule, int(d.Range.Start.Line))},
			},
		})
	}
	return actions
}

// diagnosticRule reads the rule back from a diagnostic sent by the client.
// The code does not survive decoding with glsp, so the rule travels in data
// as well.
func diagnosticRule(d protocol.Diagnostic) string {
	if d.Code != nil {
		if rule, ok := d.Code.Value.(string); ok && rule != "" {
			return rule
		}
	}
	rule, _ := d.Data.(string)
	return rule
}

func (s *Server) workspaceExecuteCommand(
	context *glsp.Context,
	params *protocol.ExecuteCommandParams,
) (any, error) {
	if params.Command != FixCommand {
		return nil, fmt.Errorf("unknown command %q", params.Command)
	}
	uri, fix, err := fixArguments(params.Arguments)
	if err != nil {
		return nil, err
	}
	path, err := uriToPath(uri)
	if err != nil {
		return nil, err
	}
	log.Infof("fixing %s in %s", fix, path)
	if err := s.linter.Fix(bg(), path, fix); err != nil {
		return nil, fmt.Errorf("failed to fix %s: %w", fix, err)
	}
	s.scheduleLint(context.Notify, uri)
	return nil, nil
}

func fixArguments(args []any) (uri, fix string, err error) {
	if len(args) != 2 {
		return "", "", fmt.Errorf("%s takes 2 arguments, got %d", FixCommand, len(args))
	}
	uri, ok1 := args[0].(string)
	fix, ok2 := args[1].(string)
	if !ok1 || !ok2 {
		return "", "", fmt.Errorf("%s takes a uri and a fix, got %v", FixCommand, args)
	}
	return uri, fix, nil
}
