package export

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idea-forge-api/internal/domain/entity"
)

func sampleIdea() entity.Idea {
	return entity.Idea{
		Title:        "Grade Buddy",
		Tagline:      "Feedback in minutes, not weekends",
		Problem:      "Teachers spend their weekends grading essays.",
		Solution:     "A rubric-driven assistant that drafts feedback.",
		Features:     []string{"A", "B"},
		TechStack:    []string{"Go", "PostgreSQL", "React"},
		Architecture: "browser -> api\n  api -> postgres",
		Roadmap: []entity.RoadmapPhase{
			{Phase: "Day 1", Tasks: []string{"Schema", "Upload"}},
			{Phase: "Day 2", Tasks: []string{"Feedback view"}},
		},
		Feasibility:  entity.Feasibility{Technical: 4, TimeDays: 5, MarketFit: 8},
		Persona:      "High-school English teacher with 120 students",
		Monetization: "School licences",
		TaskBreakdown: []entity.TaskArea{
			{Area: "backend", Tasks: []string{"API", "Rubric engine"}, EstimatedHours: 12},
			{Area: "Frontend", Tasks: []string{"Upload page"}, EstimatedHours: 2.5},
		},
	}
}

const sampleText = `# Grade Buddy
Feedback in minutes, not weekends

## Problem
Teachers spend their weekends grading essays.

## Solution
A rubric-driven assistant that drafts feedback.

## Features
- A
- B

## Tech Stack
Go, PostgreSQL, React

## Architecture
browser -> api
  api -> postgres

## Roadmap
### Day 1
- Schema
- Upload

### Day 2
- Feedback view

## Feasibility
- Technical Difficulty: 4/10
- Estimated Time: 5 days
- Market Fit Score: 8/10

## Target Persona
High-school English teacher with 120 students

## Monetization
School licences

## Task Breakdown
### BACKEND (12h)
- API
- Rubric engine

### FRONTEND (2.5h)
- Upload page`

func TestReadableTextLayout(t *testing.T) {
	text, err := ReadableText(sampleIdea())
	require.NoError(t, err)
	assert.Equal(t, sampleText, text)
}

func TestReadableTextDeterministic(t *testing.T) {
	idea := sampleIdea()
	first, err := ReadableText(idea)
	require.NoError(t, err)
	second, err := ReadableText(idea)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, SuggestedFilename(idea), SuggestedFilename(idea))
}

func TestReadableTextFeatureBullets(t *testing.T) {
	text, err := ReadableText(sampleIdea())
	require.NoError(t, err)

	start := strings.Index(text, "## Features")
	end := strings.Index(text, "## Tech Stack")
	require.True(t, start >= 0 && end > start)

	var got []string
	for _, line := range strings.Split(text[:end], "\n") {
		if strings.HasPrefix(line, "- ") {
			got = append(got, line)
		}
	}
	assert.Equal(t, []string{"- A", "- B"}, got)
}

func TestReadableTextEmptyLists(t *testing.T) {
	idea := sampleIdea()
	idea.Features = nil
	idea.Roadmap = []entity.RoadmapPhase{{Phase: "MVP", Tasks: []string{}}}
	idea.TaskBreakdown = []entity.TaskArea{{Area: "ops", EstimatedHours: 0}}

	text, err := ReadableText(idea)
	require.NoError(t, err)

	assert.Contains(t, text, "## Features\n\n\n## Tech Stack")
	assert.Contains(t, text, "### MVP\n\n\n## Feasibility")
	assert.True(t, strings.HasSuffix(text, "## Task Breakdown\n### OPS (0h)"))
}

func TestReadableTextDoesNotMutateArea(t *testing.T) {
	idea := sampleIdea()
	_, err := ReadableText(idea)
	require.NoError(t, err)
	assert.Equal(t, "backend", idea.TaskBreakdown[0].Area)
}

func TestReadableTextRejectsIncompleteIdea(t *testing.T) {
	idea := sampleIdea()
	idea.Persona = ""

	_, err := ReadableText(idea)
	var serr *entity.SerializationError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "persona", serr.Field)

	_, err = CanonicalJSON(idea)
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "persona", serr.Field)
}

func TestCanonicalJSONRoundTrip(t *testing.T) {
	withEmpty := sampleIdea()
	withEmpty.Features = []string{}
	withEmpty.TechStack = nil
	withEmpty.Architecture = ""
	withEmpty.Roadmap = []entity.RoadmapPhase{{Phase: "", Tasks: []string{}}}
	withEmpty.TaskBreakdown = []entity.TaskArea{{Area: "qa", Tasks: nil, EstimatedHours: 0.1 + 0.2}}

	unicode := sampleIdea()
	unicode.Title = "Café <Tracker> & \"Co\""
	unicode.Architecture = "a\tb\n\tc d"

	for name, idea := range map[string]entity.Idea{
		"sample":  sampleIdea(),
		"unicode": unicode,
	} {
		t.Run(name, func(t *testing.T) {
			data, err := CanonicalJSON(idea)
			require.NoError(t, err)

			decoded, err := DecodeCanonicalJSON(data)
			require.NoError(t, err)
			assert.Equal(t, idea, decoded)
		})
	}

	t.Run("empty", func(t *testing.T) {
		data, err := CanonicalJSON(withEmpty)
		require.NoError(t, err)
		assert.NotContains(t, data, "null")
		assert.Contains(t, data, `"tech_stack": []`)
		assert.Nil(t, withEmpty.TechStack, "input must not be modified")

		decoded, err := DecodeCanonicalJSON(data)
		require.NoError(t, err)
		assert.Equal(t, []string{}, decoded.TechStack)
		assert.Equal(t, []string{}, decoded.TaskBreakdown[0].Tasks)
		assert.Equal(t, withEmpty.Roadmap, decoded.Roadmap)

		again, err := CanonicalJSON(decoded)
		require.NoError(t, err)
		assert.Equal(t, data, again)
	})
}

func TestDecodeCanonicalJSONNullLists(t *testing.T) {
	data, err := CanonicalJSON(sampleIdea())
	require.NoError(t, err)

	data = strings.Replace(data, `"features": [
    "A",
    "B"
  ]`, `"features": null`, 1)
	require.Contains(t, data, `"features": null`)

	decoded, err := DecodeCanonicalJSON(data)
	require.NoError(t, err)
	assert.NotNil(t, decoded.Features)
	assert.Empty(t, decoded.Features)
}

func TestCanonicalJSONRejectsInvalidUTF8(t *testing.T) {
	idea := sampleIdea()
	idea.Problem = "bad \xff byte"

	data, err := CanonicalJSON(idea)
	assert.Empty(t, data)
	var serr *entity.SerializationError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "problem", serr.Field)

	idea = sampleIdea()
	idea.TaskBreakdown[1].Tasks = []string{"ok", "\xc3("}
	_, err = ReadableText(idea)
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "task_breakdown[1].tasks[1]", serr.Field)
}

func TestCanonicalJSONShape(t *testing.T) {
	idea := sampleIdea()
	idea.Title = "A <b> & C"

	data, err := CanonicalJSON(idea)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(data, "{\n  \"title\": \"A <b> & C\",\n  \"tagline\""))
	assert.False(t, strings.HasSuffix(data, "\n"))

	keys := []string{`"title"`, `"tagline"`, `"problem"`, `"solution"`, `"features"`, `"tech_stack"`,
		`"architecture"`, `"roadmap"`, `"feasibility"`, `"persona"`, `"monetization"`, `"task_breakdown"`}
	last := -1
	for _, k := range keys {
		idx := strings.Index(data, "\n  "+k)
		require.Greater(t, idx, last, "key %s out of order", k)
		last = idx
	}
}

func TestDecodeCanonicalJSONStrict(t *testing.T) {
	data, err := CanonicalJSON(sampleIdea())
	require.NoError(t, err)

	_, err = DecodeCanonicalJSON(strings.Replace(data, `"title"`, `"name"`, 1))
	assert.Error(t, err)

	_, err = DecodeCanonicalJSON(data + "\n{}")
	assert.Error(t, err)

	_, err = DecodeCanonicalJSON(`{"title": "only"}`)
	var serr *entity.SerializationError
	assert.ErrorAs(t, err, &serr)
}

var safeFilename = regexp.MustCompile(`^[a-z0-9_]+\.json$`)

func TestSuggestedFilename(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"My App!", "my_app_.json"},
		{"my app!", "my_app_.json"},
		{"Grade Buddy 2.0", "grade_buddy_2_0.json"},
		{"Café", "caf_.json"},
		{"!!!", "project_idea.json"},
		{"日本語", "project_idea.json"},
		{"", "project_idea.json"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			idea := sampleIdea()
			idea.Title = tt.title
			got := SuggestedFilename(idea)
			assert.Equal(t, tt.want, got)
			assert.Regexp(t, safeFilename, got)
		})
	}
}

func TestHTMLPreview(t *testing.T) {
	idea := sampleIdea()
	idea.Problem = "Uses <script>alert(1)</script> tags"

	out, err := HTML(idea)
	require.NoError(t, err)

	assert.Contains(t, out, "Grade Buddy</h1>")
	assert.Contains(t, out, "<h2")
	assert.Contains(t, out, "<pre><code>browser -&gt; api\n  api -&gt; postgres")
	assert.Contains(t, out, "<li>Rubric engine</li>")
	assert.NotContains(t, out, "<script>")
}

func TestRenderFormats(t *testing.T) {
	idea := sampleIdea()

	doc, err := Render(idea, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "application/json", doc.ContentType)
	assert.Equal(t, "grade_buddy.json", doc.Filename)

	doc, err = Render(idea, FormatText)
	require.NoError(t, err)
	assert.Equal(t, sampleText, doc.Body)
	assert.Empty(t, doc.Filename)

	doc, err = Render(idea, FormatFilename)
	require.NoError(t, err)
	assert.Equal(t, "grade_buddy.json", doc.Body)

	_, err = Render(idea, Format("pdf"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	f, err = ParseFormat(" JSON ")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
