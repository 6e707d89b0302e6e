package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/cloudify-cosmo/cloudify-language-server/internal/blueprint"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/cache"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/completion"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/document"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/importables"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/parser"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/sitteradapter"
)

var contextCmd = &cobra.Command{
	Use:   "context FILE LINE CHARACTER",
	Short: "Print what the server knows about a cursor position, as JSON",
	Long: `Resolves a cursor position in a blueprint the way a completion request
does and prints the result together with the completion candidates.
LINE and CHARACTER are zero-based and count UTF-16 units, like the editor.
Node types come from the persistent cache only; nothing is fetched.`,
	Args: cobra.ExactArgs(3),
	RunE: runContext,
}

var tokensCmd = &cobra.Command{
	Use:   "tokens FILE",
	Short: "Print the semantic tokens of a blueprint, one JSON object per line",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokens,
}

// inspection is what the context command prints.
type inspection struct {
	Result     blueprint.Result       `json:"result"`
	YAMLPath   string                 `json:"yaml_path"`
	Candidates []completion.Candidate `json:"candidates"`
}

func parseFile(path string) (*document.Document, *parser.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	doc := document.New(string(data))
	p := parser.NewParser()
	defer p.Close()
	tree, err := p.Parse(context.Background(), []byte(doc.Text()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not parse %s: %s\n", path, err)
	}
	return doc, tree, nil
}

func runContext(cmd *cobra.Command, args []string) error {
	line, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid line %q: %w", args[1], err)
	}
	char, err := strconv.ParseUint(args[2], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid character %q: %w", args[2], err)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	doc, tree, err := parseFile(path)
	if err != nil {
		return err
	}

	var store *cache.Store
	if _, err := os.Stat(cfg.CachePath()); err == nil {
		if store, err = cache.OpenStore(cfg.CachePath()); err != nil {
			return err
		}
		defer store.Close()
	}
	types := cache.New(store, 0)

	pos := sitteradapter.ToDocument(doc, protocol.Position{Line: uint32(line), Character: uint32(char)})
	res := blueprint.Resolve(doc, tree, pos, types)
	for _, p := range res.Plugins {
		if _, err := types.Restore(p.Name); err != nil {
			return err
		}
	}
	// resolve again now that the node types of the imported plugins are known
	res = blueprint.Resolve(doc, tree, pos, types)

	lister := importables.New()
	defer lister.Close()

	out := inspection{
		Result:   res,
		YAMLPath: res.YAMLPath(),
		Candidates: completion.Build(res, completion.Sources{
			Types:        types,
			Importables:  lister.List(path),
			ExtraPlugins: cfg.ExtraPlugins,
		}),
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func runTokens(cmd *cobra.Command, args []string) error {
	doc, tree, err := parseFile(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, t := range blueprint.Tokens(doc, tree) {
		if err := enc.Encode(struct {
			blueprint.Token
			Name string `json:"name"`
			Text string `json:"text"`
		}{t, blueprint.TokenTypes[t.Type], tokenText(doc, t)}); err != nil {
			return err
		}
	}
	return nil
}

func tokenText(doc *document.Document, t blueprint.Token) string {
	line := doc.Line(t.Line)
	end := min(t.Character+t.Length, len(line))
	if t.Character > end {
		return ""
	}
	return line[t.Character:end]
}
