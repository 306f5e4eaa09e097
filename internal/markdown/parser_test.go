package markdown

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const certificationGoal = `---
title: Get AWS certified
category: certification
priority: HIGH
due: 2025-09-30
---
Study for the **Solutions Architect** exam.

Weekends only.

- [x] Pick the exam
- [ ] Book a date
- [ ] Pass it
`

func TestParseGoal(t *testing.T) {
	doc, err := NewParser().ParseGoal([]byte(certificationGoal))
	if err != nil {
		t.Fatalf("ParseGoal() error = %v", err)
	}

	if doc.Title != "Get AWS certified" {
		t.Errorf("Title = %q", doc.Title)
	}
	if doc.Category != "CERTIFICATION" || doc.Priority != "HIGH" {
		t.Errorf("Category = %q, Priority = %q", doc.Category, doc.Priority)
	}
	wantDue := time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)
	if doc.Due == nil || !doc.Due.Equal(wantDue) {
		t.Errorf("Due = %v, want %v", doc.Due, wantDue)
	}
	if doc.Description != "Study for the **Solutions Architect** exam.\n\nWeekends only." {
		t.Errorf("Description = %q", doc.Description)
	}

	want := []Task{
		{"Pick the exam", true},
		{"Book a date", false},
		{"Pass it", false},
	}
	if len(doc.Tasks) != len(want) {
		t.Fatalf("len(Tasks) = %d, want %d", len(doc.Tasks), len(want))
	}
	for i, task := range want {
		if doc.Tasks[i] != task {
			t.Errorf("Tasks[%d] = %+v, want %+v", i, doc.Tasks[i], task)
		}
	}
}

func TestParseGoalHeadingTitle(t *testing.T) {
	src := "# Grow my network\n\nMeet one new person a week.\n"

	doc, err := NewParser().ParseGoal([]byte(src))
	if err != nil {
		t.Fatalf("ParseGoal() error = %v", err)
	}
	if doc.Title != "Grow my network" {
		t.Errorf("Title = %q", doc.Title)
	}
	if doc.Description != "Meet one new person a week." {
		t.Errorf("Description = %q", doc.Description)
	}
	if len(doc.Tasks) != 0 {
		t.Errorf("Tasks = %+v, want none", doc.Tasks)
	}
}

func TestParseGoalErrors(t *testing.T) {
	p := NewParser()

	_, err := p.ParseGoal([]byte("just text\n"))
	if !errors.Is(err, ErrNoTitle) {
		t.Errorf("ParseGoal() error = %v, want ErrNoTitle", err)
	}

	_, err = p.ParseGoal([]byte("---\ntitle: x\ndue: someday\n---\n"))
	if err == nil || !strings.Contains(err.Error(), "due date") {
		t.Errorf("ParseGoal() error = %v, want due date error", err)
	}
}

func TestRenderHTMLEscapesRawHTML(t *testing.T) {
	out, err := NewParser().RenderHTML([]byte("Hello <script>alert(1)</script> **world**"))
	if err != nil {
		t.Fatalf("RenderHTML() error = %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Errorf("raw HTML leaked: %s", out)
	}
	if !strings.Contains(out, "<strong>world</strong>") {
		t.Errorf("emphasis not rendered: %s", out)
	}
}
