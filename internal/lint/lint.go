// Package lint runs cfy-lint over a blueprint and turns its report into
// editor diagnostics.
package lint

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudify-cosmo/cloudify-language-server/internal/document"
)

// Source names the diagnostics produced here.
const Source = "cfy-lint"

// Severity uses the LSP numbering.
type Severity int

const (
	SeverityError       Severity = 1
	SeverityWarning     Severity = 2
	SeverityInformation Severity = 3
)

// Message is one line of cfy-lint's JSON report.
type Message struct {
	Level   string `json:"level"`
	Line    int    `json:"line"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Finding is a Message placed in the document.
type Finding struct {
	Start    document.Position `json:"start"`
	End      document.Position `json:"end"`
	Severity Severity          `json:"severity"`
	Rule     string            `json:"rule"`
	Message  string            `json:"message"`
}

// FixArgument is the argument cfy-lint's --fix flag takes for a finding.
func (f Finding) FixArgument() string {
	return FixArgument(f.Rule, f.Start.Line)
}

// FixArgument formats rule and a zero-based line as "rule=line", with the
// line one-based as cfy-lint counts.
func FixArgument(rule string, line int) string {
	return fmt.Sprintf("%s=%d", rule, line+1)
}

const unavailableMessage = "Linting unavailable. Please ensure that cfy-lint is installed and on the PATH of the language server."

// Unavailable is the finding published when cfy-lint cannot be started.
func Unavailable() Finding {
	return Finding{Severity: SeverityInformation, Rule: "imports", Message: unavailableMessage}
}

// ParseOutput picks the JSON object lines out of cfy-lint's output. Other
// lines and objects that do not decode are skipped.
func ParseOutput(out []byte) []Message {
	var msgs []Message
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "{") || !strings.HasSuffix(line, "}") {
			continue
		}
		var m Message
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			log.Debugf("skipping lint line %q: %s", line, err)
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs
}

// Findings places messages in doc. A message is ranged over its line with
// surrounding blanks trimmed; empty-lines findings are zero width at the
// line start. Messages pointing past the document are dropped. At most max
// findings are returned; max <= 0 means no limit.
func Findings(doc *document.Document, msgs []Message, max int) []Finding {
	var out []Finding
	for _, m := range msgs {
		if max > 0 && len(out) >= max {
			break
		}
		line := m.Line - 1
		if line < 0 {
			line = 0
		}
		if line >= doc.LineCount() {
			continue
		}
		f := Finding{Severity: severity(m.Level), Rule: m.Rule, Message: m.Message}
		f.Start = document.Position{Line: line}
		f.End = f.Start
		if m.Rule != "empty-lines" {
			text := doc.Line(line)
			trimmed := strings.TrimSpace(text)
			if trimmed != "" {
				f.Start.Character = strings.Index(text, trimmed)
				f.End.Character = f.Start.Character + len(trimmed)
			}
		}
		out = append(out, f)
	}
	return out
}

func severity(level string) Severity {
	if level == "warning" {
		return SeverityWarning
	}
	return SeverityError
}
