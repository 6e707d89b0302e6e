package lint_test

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudify-cosmo/cloudify-language-server/internal/document"
	"github.com/cloudify-cosmo/cloudify-language-server/internal/lint"
)

const blueprint = "tosca_definitions_version: cloudify_dsl_1_4\nimports:\n  - cloudify/types/types.yaml\n\n\ninputs: {}\n"

const report = `Linting blueprint.yaml
{"level": "warning", "line": 3, "rule": "imports", "message": "types.yaml should be imported by version"}
not json
{"level": "error", "line": 5, "rule": "empty-lines", "message": "too many blank lines"}
{"level": "error", "line": 99, "rule": "inputs", "message": "past the end"}
{broken}
`

func TestParseOutput(t *testing.T) {
	msgs := lint.ParseOutput([]byte(report))
	require.Len(t, msgs, 3)
	assert.Equal(t, lint.Message{Level: "warning", Line: 3, Rule: "imports", Message: "types.yaml should be imported by version"}, msgs[0])
	assert.Equal(t, "empty-lines", msgs[1].Rule)
}

func TestFindings(t *testing.T) {
	doc := document.New(blueprint)
	findings := lint.Findings(doc, lint.ParseOutput([]byte(report)), 0)
	require.Len(t, findings, 2)

	assert.Equal(t, lint.Finding{
		Start:    document.Position{Line: 2, Character: 2},
		End:      document.Position{Line: 2, Character: 29},
		Severity: lint.SeverityWarning,
		Rule:     "imports",
		Message:  "types.yaml should be imported by version",
	}, findings[0])

	assert.Equal(t, document.Position{Line: 4}, findings[1].Start)
	assert.Equal(t, findings[1].Start, findings[1].End)
	assert.Equal(t, lint.SeverityError, findings[1].Severity)
	assert.Equal(t, "empty-lines=5", findings[1].FixArgument())
}

func TestFindingsCapped(t *testing.T) {
	doc := document.New(blueprint)
	assert.Len(t, lint.Findings(doc, lint.ParseOutput([]byte(report)), 1), 1)
}

func fakeExec(stderr string, err error, calls *[][]string) lint.ExecFunc {
	return func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
		if calls != nil {
			*calls = append(*calls, append([]string{name}, args...))
		}
		return nil, []byte(stderr), err
	}
}

func TestRunnerLint(t *testing.T) {
	var calls [][]string
	r := lint.NewRunner(lint.Options{Exec: fakeExec(report, nil, &calls)})

	findings, err := r.Lint(context.Background(), document.New(blueprint), "/tmp/blueprint.yaml")
	require.NoError(t, err)
	assert.Len(t, findings, 2)
	assert.Equal(t, [][]string{{"cfy-lint", "-f", "json", "-b", "/tmp/blueprint.yaml"}}, calls)
}

func TestRunnerUnavailable(t *testing.T) {
	r := lint.NewRunner(lint.Options{Exec: fakeExec("", exec.ErrNotFound, nil)})

	findings, err := r.Lint(context.Background(), document.New(blueprint), "/tmp/blueprint.yaml")
	assert.ErrorIs(t, err, lint.ErrLintUnavailable)
	require.Len(t, findings, 1)
	assert.Equal(t, lint.SeverityInformation, findings[0].Severity)
	assert.Contains(t, findings[0].Message, "Linting unavailable")
}

func TestRunnerBusy(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	r := lint.NewRunner(lint.Options{
		MaxConcurrent: 1,
		Exec: func(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
			close(started)
			<-release
			return nil, nil, nil
		},
	})

	done := make(chan error)
	go func() {
		_, err := r.Lint(context.Background(), document.New(blueprint), "a.yaml")
		done <- err
	}()
	<-started

	_, err := r.Lint(context.Background(), document.New(blueprint), "b.yaml")
	assert.ErrorIs(t, err, lint.ErrLintBusy)

	close(release)
	assert.NoError(t, <-done)
}

func TestRunnerFix(t *testing.T) {
	var calls [][]string
	r := lint.NewRunner(lint.Options{Command: "lint", Exec: fakeExec("", nil, &calls)})

	require.NoError(t, r.Fix(context.Background(), "bp.yaml", "imports=3"))
	assert.Equal(t, [][]string{{"lint", "-b", "bp.yaml", "--fix", "imports=3"}}, calls)

	r = lint.NewRunner(lint.Options{Exec: fakeExec("", errors.New("permission denied"), nil)})
	assert.ErrorIs(t, r.Fix(context.Background(), "bp.yaml", "imports=3"), lint.ErrLintUnavailable)
}
