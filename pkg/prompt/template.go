package prompt

import (
	"fmt"
	"strings"
	"text/template"
)

// Mode names a kind of request. The value is used in routes, logs and
// usage records.
type Mode string

const (
	// ModeCoach critiques a user draft and proposes rewrites.
	ModeCoach Mode = "coach"

	// ModeInference infers the sender's intent and proposes a reply template.
	ModeInference Mode = "madlibs"
)

// Template is an instruction template together with the section the model
// is told to emit.
type Template struct {
	Mode    Mode
	Version int
	Section Section

	tmpl *template.Template
}

// Input holds the values interpolated into a template.
type Input struct {
	Thread string
	Draft  string
	Goal   string
}

const coachingText = `You are a communication coach.
A) THREAD: <<<{{.Thread}}>>>
B) MY DRAFT: <<<{{.Draft}}>>>
C) GOAL: {{.Goal}}
Tasks: diagnose the tone of my draft; critique it against the goal; then write two rewrites that keep every fact intact.
Format your answer with these labels, each at the start of its own line, in this order:
Diagnosis:
Critique:
Alpha: a minimal edit of my draft
Beta: an assertive edit of my draft
The Beta rewrite must be the last section. Write nothing after it.`

const inferenceText = `You are a communication analyst. Read the email thread below and infer what the other party wants.
THREAD: <<<{{.Thread}}>>>
Answer with these headers, each at the start of its own line, in this order:
Tone: one line labeling the sender's tone
Personality: one line naming the sender's likely personality type
Needs: bullet points listing explicit and implicit needs, one per line starting with "- "
Template: a short fill-in-the-blank reply, with blanks written as [BLANK: description]
The Template section must be the last section. Write nothing after it.`

var (
	// Coaching is the draft coaching template. Its Beta rewrite is filed.
	Coaching = mustTemplate(ModeCoach, 1, "Beta", coachingText)

	// Inference is the intent inference template. Its reply template is filed.
	Inference = mustTemplate(ModeInference, 1, "Template", inferenceText)
)

func mustTemplate(mode Mode, version int, label, text string) *Template {
	return &Template{
		Mode:    mode,
		Version: version,
		Section: NewSection(label),
		tmpl:    template.Must(template.New(string(mode)).Option("missingkey=error").Parse(text)),
	}
}

// ForMode returns the template for mode.
func ForMode(mode Mode) (*Template, error) {
	switch mode {
	case ModeCoach:
		return Coaching, nil
	case ModeInference:
		return Inference, nil
	default:
		return nil, fmt.Errorf("unknown prompt mode %q", mode)
	}
}

type namedValue struct {
	name  string
	value string
}

// Build validates the inputs the mode requires and renders the instruction.
func (t *Template) Build(in Input) (string, error) {
	required := []namedValue{{"thread", in.Thread}}
	if t.Mode == ModeCoach {
		required = append(required, namedValue{"draft", in.Draft}, namedValue{"goal", in.Goal})
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return "", &MissingInputError{Field: r.name}
		}
	}

	var sb strings.Builder
	if err := t.tmpl.Execute(&sb, in); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", t.Mode, err)
	}
	return sb.String(), nil
}

// BuildCoaching renders the coaching instruction. Thread, draft and goal
// are all required.
func BuildCoaching(thread, draft, goal string) (string, error) {
	return Coaching.Build(Input{Thread: thread, Draft: draft, Goal: goal})
}

// BuildInference renders the intent inference instruction.
func BuildInference(thread string) (string, error) {
	return Inference.Build(Input{Thread: thread})
}
