package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/frontmatter"
)

var ErrNoTitle = errors.New("document has no title")

type Parser struct {
	md goldmark.Markdown
}

func NewParser() *Parser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
			&frontmatter.Extender{},
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithHardWraps(),
			goldmarkhtml.WithXHTML(),
		),
	)

	return &Parser{md: md}
}

// RenderHTML converts markdown to HTML. Raw HTML in the source is escaped.
func (p *Parser) RenderHTML(source []byte) (string, error) {
	var buf bytes.Buffer
	err := p.md.Convert(source, &buf)
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Task is a GFM task list item.
type Task struct {
	Title string
	Done  bool
}

// GoalDocument is a goal written as markdown:
//
//	---
//	title: Get AWS certified
//	category: CERTIFICATION
//	priority: HIGH
//	due: 2025-09-30
//	---
//	Free text description.
//
//	- [x] Pick the exam
//	- [ ] Book a date
//
// Without a frontmatter title, a leading level 1 heading is used.
type GoalDocument struct {
	Title       string
	Description string
	Category    string
	Priority    string
	Due         *time.Time
	Tasks       []Task
}

type goalMeta struct {
	Title    string `yaml:"title"`
	Category string `yaml:"category"`
	Priority string `yaml:"priority"`
	Due      string `yaml:"due"`
}

func (p *Parser) ParseGoal(source []byte) (*GoalDocument, error) {
	pctx := parser.NewContext()
	root := p.md.Parser().Parse(text.NewReader(source), parser.WithContext(pctx))

	var meta goalMeta
	if data := frontmatter.Get(pctx); data != nil {
		err := data.Decode(&meta)
		if err != nil {
			return nil, fmt.Errorf("invalid frontmatter: %w", err)
		}
	}

	doc := &GoalDocument{
		Title:    strings.TrimSpace(meta.Title),
		Category: strings.ToUpper(strings.TrimSpace(meta.Category)),
		Priority: strings.ToUpper(strings.TrimSpace(meta.Priority)),
	}

	if meta.Due != "" {
		due, err := parseDue(meta.Due)
		if err != nil {
			return nil, err
		}
		doc.Due = &due
	}

	bodyStart, bodyEnd := -1, len(source)
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 && doc.Title == "" && bodyStart < 0 {
			doc.Title = plainText(h, source)
			continue
		}

		if list, ok := n.(*ast.List); ok && hasTasks(list) {
			if start := blockStart(n, source); start >= 0 && start < bodyEnd {
				bodyEnd = start
			}
			break
		}

		if bodyStart < 0 {
			bodyStart = blockStart(n, source)
		}
	}

	if bodyStart >= 0 && bodyStart < bodyEnd {
		doc.Description = strings.TrimSpace(string(source[bodyStart:bodyEnd]))
	}

	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		item, ok := n.(*ast.ListItem)
		if !ok {
			return ast.WalkContinue, nil
		}
		if box := taskCheckBox(item); box != nil {
			doc.Tasks = append(doc.Tasks, Task{
				Title: strings.TrimSpace(plainText(item.FirstChild(), source)),
				Done:  box.IsChecked,
			})
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	if doc.Title == "" {
		return nil, ErrNoTitle
	}

	return doc, nil
}

func parseDue(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid due date %q", s)
}

func hasTasks(list *ast.List) bool {
	for c := list.FirstChild(); c != nil; c = c.NextSibling() {
		if item, ok := c.(*ast.ListItem); ok && taskCheckBox(item) != nil {
			return true
		}
	}
	return false
}

func taskCheckBox(item *ast.ListItem) *extast.TaskCheckBox {
	block := item.FirstChild()
	if block == nil {
		return nil
	}
	box, _ := block.FirstChild().(*extast.TaskCheckBox)
	return box
}

// plainText concatenates the text segments under n.
func plainText(n ast.Node, source []byte) string {
	if n == nil {
		return ""
	}

	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}

// blockStart returns the offset of the beginning of the line holding the
// first content of n, or -1.
func blockStart(n ast.Node, source []byte) int {
	start := -1
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || c.Type() != ast.TypeBlock {
			return ast.WalkContinue, nil
		}
		if lines := c.Lines(); lines != nil && lines.Len() > 0 {
			start = lines.At(0).Start
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	if start < 0 {
		return -1
	}
	for start > 0 && source[start-1] != '\n' {
		start--
	}
	return start
}
