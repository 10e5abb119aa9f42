package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed templates/*.yaml
var templateFS embed.FS

type TemplateName string

const (
	TemplateSummary    TemplateName = "summary.yaml"
	TemplateAdvice     TemplateName = "advice.yaml"
	TemplateExpression TemplateName = "expression.yaml"
)

// Prompt is the system instruction plus the user turn sent to the model.
type Prompt struct {
	System string
	User   string
}

// Text joins both parts for backends that accept a single prompt string.
func (p Prompt) Text() string {
	if p.System == "" {
		return p.User
	}
	return p.System + "\n\n" + p.User
}

type templateDoc struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

type compiledTemplate struct {
	system *template.Template
	user   *template.Template
}

type PromptBuilder struct {
	mu        sync.RWMutex
	fs        fsReader
	templates map[TemplateName]*compiledTemplate
}

type fsReader interface {
	ReadFile(name string) ([]byte, error)
}

var (
	defaultBuilderOnce sync.Once
	defaultBuilder     *PromptBuilder
)

func NewPromptBuilder() *PromptBuilder {
	return newPromptBuilder(templateFS)
}

func newPromptBuilder(fs fsReader) *PromptBuilder {
	return &PromptBuilder{
		fs:        fs,
		templates: make(map[TemplateName]*compiledTemplate),
	}
}

func DefaultPromptBuilder() *PromptBuilder {
	defaultBuilderOnce.Do(func() {
		defaultBuilder = NewPromptBuilder()
	})
	return defaultBuilder
}

func (pb *PromptBuilder) Render(name TemplateName, data any) (Prompt, error) {
	tmpl, err := pb.getTemplate(name)
	if err != nil {
		return Prompt{}, err
	}

	system, err := execute(tmpl.system, data)
	if err != nil {
		return Prompt{}, fmt.Errorf("render prompt %s (system): %w", name, err)
	}
	user, err := execute(tmpl.user, data)
	if err != nil {
		return Prompt{}, fmt.Errorf("render prompt %s (user): %w", name, err)
	}

	return Prompt{System: system, User: user}, nil
}

func execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(collapseBlankLines(buf.String())), nil
}

func (pb *PromptBuilder) getTemplate(name TemplateName) (*compiledTemplate, error) {
	pb.mu.RLock()
	if tmpl, ok := pb.templates[name]; ok {
		pb.mu.RUnlock()
		return tmpl, nil
	}
	pb.mu.RUnlock()

	filename := filepath.ToSlash(filepath.Join("templates", string(name)))
	content, err := pb.fs.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("load prompt template %s: %w", name, err)
	}

	var doc templateDoc
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("decode prompt template %s: %w", name, err)
	}
	if strings.TrimSpace(doc.User) == "" {
		return nil, fmt.Errorf("prompt template %s has no user section", name)
	}

	system, err := template.New(string(name) + ":system").Option("missingkey=error").Parse(doc.System)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template %s: %w", name, err)
	}
	user, err := template.New(string(name) + ":user").Option("missingkey=error").Parse(doc.User)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template %s: %w", name, err)
	}

	compiled := &compiledTemplate{system: system, user: user}

	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.templates[name] = compiled

	return compiled, nil
}

// collapseBlankLines drops the empty lines left behind by optional sections.
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if blank {
				continue
			}
			blank = true
			out = append(out, "")
			continue
		}
		blank = false
		out = append(out, trimmed)
	}
	return strings.Join(out, "\n")
}
