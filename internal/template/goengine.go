package template

import (
	"bytes"
	htmltemplate "html/template"
	"regexp"
	texttemplate "text/template"
)

// В хранимых шаблонах переменные пишутся как {{ name }};
// для Go-шаблонов это {{ .name }}. Нормализуем только одиночные
// идентификаторы, пайплайны и вызовы функций не трогаем.
var bareVarRe = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`)

func normalizePlaceholders(text string) string {
	return bareVarRe.ReplaceAllString(text, "{{.$1}}")
}

// goEngine — движок на стандартных text/template и html/template.
type goEngine struct {
	name  string
	funcs texttemplate.FuncMap
}

func newGoEngine(name string) *goEngine {
	return &goEngine{name: name}
}

func (e *goEngine) Name() string { return e.name }

func (e *goEngine) Render(text string, ctx map[string]any) (string, error) {
	tmpl := texttemplate.New(e.name).Option("missingkey=error")
	if e.funcs != nil {
		tmpl = tmpl.Funcs(e.funcs)
	}
	tmpl, err := tmpl.Parse(normalizePlaceholders(text))
	if err != nil {
		return "", &RenderError{Engine: e.name, Err: err}
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", &RenderError{Engine: e.name, Err: err}
	}
	return buf.String(), nil
}

func (e *goEngine) RenderHTML(text string, ctx map[string]any) (string, error) {
	tmpl := htmltemplate.New(e.name).Option("missingkey=error")
	if e.funcs != nil {
		tmpl = tmpl.Funcs(htmltemplate.FuncMap(e.funcs))
	}
	tmpl, err := tmpl.Parse(normalizePlaceholders(text))
	if err != nil {
		return "", &RenderError{Engine: e.name, Err: err}
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", &RenderError{Engine: e.name, Err: err}
	}
	return buf.String(), nil
}
