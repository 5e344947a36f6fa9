package docs

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Fenced block kinds executed by TestCodeBlocks. A setup starts a scenario
// in a fresh folder, a run records its output for the next console check,
// and a check must succeed.
const (
	bashSetup    = "bash setup"
	bashRun      = "bash run"
	bashCheck    = "bash check"
	consoleCheck = "console check"
)

var topicLine = regexp.MustCompile(`^\*\s+([^:]+):`)

// TestTopics checks that the index lists exactly the topic files.
func TestTopics(t *testing.T) {
	index, err := os.ReadFile(Index + ".md")
	if err != nil {
		t.Fatal(err)
	}
	var listed []string
	for _, line := range strings.Split(string(index), "\n") {
		if m := topicLine.FindStringSubmatch(line); m != nil {
			listed = append(listed, strings.TrimSpace(m[1]))
		}
	}

	for _, topic := range listed {
		if _, err := GetTopic(topic); err != nil {
			t.Errorf("topic %q is listed but cannot be loaded: %v", topic, err)
		}
	}
	all, err := GetAllTopics()
	if err != nil {
		t.Fatal(err)
	}
	for _, topic := range all {
		if !slices.Contains(listed, topic) {
			t.Errorf("topic %q is not listed in %s.md", topic, Index)
		}
	}
}

func TestGetTopic_All(t *testing.T) {
	topics, err := GetAllTopics()
	if err != nil {
		t.Fatal(err)
	}
	if slices.Contains(topics, Index) {
		t.Errorf("GetAllTopics() = %v, should not list %q", topics, Index)
	}
	all, err := GetTopic("*")
	if err != nil {
		t.Fatal(err)
	}
	for _, topic := range append(topics, Index) {
		content, _ := GetTopic(topic)
		if !strings.Contains(all, content) {
			t.Errorf("GetTopic(*) is missing topic %q", topic)
		}
	}
	if _, err := GetTopic("nope"); err == nil {
		t.Errorf("GetTopic(nope) succeeded")
	}
}

// TestCodeBlocks runs the scenarios of every topic against a fresh sb.
func TestCodeBlocks(t *testing.T) {
	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat("../README.md"); err == nil {
		files = append(files, "../README.md")
	}

	bin := t.TempDir()
	build := exec.Command("go", "build", "-o", filepath.Join(bin, "sb"), "../sb/")
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("failed to build sb: %v\n%s", err, out)
	}
	env := append(os.Environ(),
		fmt.Sprintf("PATH=%s%c%s", bin, os.PathListSeparator, os.Getenv("PATH")),
		// data lives in the scenario folder.
		"SITEBOOK_STORAGE=file", "SITEBOOK_PATH=.", "SITEBOOK_CURRENCY=INR",
	)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			s := scenario{env: env, dir: t.TempDir()}
			for _, b := range codeBlocks(t, file) {
				s.run(t, b)
			}
		})
	}
}

// block is a fenced code block of a topic.
type block struct {
	kind    string
	content string
	pos     string // file:line, for error messages
}

// codeBlocks returns the executable blocks of a markdown file.
func codeBlocks(t *testing.T, file string) []block {
	t.Helper()
	source, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	var blocks []block
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !entering || !ok || fcb.Info == nil {
			return ast.WalkContinue, nil
		}
		kind := string(fcb.Info.Segment.Value(source))
		switch kind {
		case bashSetup, bashRun, bashCheck, consoleCheck:
		default:
			return ast.WalkContinue, nil
		}
		var content strings.Builder
		for i := range fcb.Lines().Len() {
			line := fcb.Lines().At(i)
			content.Write(line.Value(source))
		}
		line := bytes.Count(source[:fcb.Info.Segment.Start], []byte("\n")) + 1
		blocks = append(blocks, block{kind: kind, content: content.String(), pos: fmt.Sprintf("%s:%d", file, line)})
		return ast.WalkContinue, nil
	})
	return blocks
}

// scenario is the state shared by the blocks of a topic.
type scenario struct {
	env    []string
	dir    string
	output string // of the last bash run
}

func (s *scenario) run(t *testing.T, b block) {
	t.Helper()
	if b.kind == consoleCheck {
		got := strings.TrimSpace(strings.ReplaceAll(s.output, "\t", "        "))
		if want := strings.TrimSpace(b.content); got != want {
			t.Errorf("%s: output mismatch:\ngot:\n\n%s\n\nwant:\n\n%s\n\ngot :%q\nwant:%q", b.pos, got, want, got, want)
		}
		return
	}
	if b.kind == bashSetup {
		s.dir = t.TempDir()
	}

	cmd := exec.Command("bash", "-c", "set -e; "+b.content)
	cmd.Dir = s.dir
	cmd.Env = s.env
	out, err := cmd.CombinedOutput()
	if b.kind == bashRun {
		s.output = string(out)
	}
	if err == nil {
		return
	}
	if b.kind == bashCheck {
		t.Errorf("%s: check failed: %v with output:\n%s", b.pos, err, out)
		return
	}
	t.Fatalf("%s: %s failed: %v with output:\n%s", b.pos, b.kind, err, out)
}
