package template

import (
	"errors"
	"fmt"

	"mail-service/config"
)

// Engine — движок подстановки значений контекста в текст шаблона.
type Engine interface {
	Name() string
	// Render рендерит текстовую часть (тема, тело).
	Render(text string, ctx map[string]any) (string, error)
	// RenderHTML рендерит HTML-часть с экранированием.
	RenderHTML(text string, ctx map[string]any) (string, error)
}

var (
	// ErrEngineNotFound — настроенное имя движка не найдено среди доступных.
	ErrEngineNotFound = errors.New("template engine not found")
	ErrNoEngines      = errors.New("no template engines configured")
)

// RenderError — ошибка рендеринга (синтаксис шаблона, неизвестная переменная).
// Отличается от ошибок выбора движка, чтобы вызывающий мог разделить
// ошибку конфигурации и ошибку содержимого.
type RenderError struct {
	Engine string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("template render failed (engine %s): %v", e.Engine, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Build создаёт движки из конфигурации, сохраняя порядок объявления.
func Build(cfgs []config.TemplateEngine) ([]Engine, error) {
	engines := make([]Engine, 0, len(cfgs))
	for _, c := range cfgs {
		name := c.Name
		if name == "" {
			name = c.Backend
		}
		switch c.Backend {
		case "go":
			engines = append(engines, newGoEngine(name))
		case "sprig":
			engines = append(engines, newSprigEngine(name))
		default:
			return nil, fmt.Errorf("unknown template backend %q", c.Backend)
		}
	}
	return engines, nil
}

// Select возвращает движок по имени из конфигурации.
// Пустое имя — первый движок в порядке объявления.
func Select(engines []Engine, preferred string) (Engine, error) {
	if len(engines) == 0 {
		return nil, ErrNoEngines
	}
	if preferred == "" {
		return engines[0], nil
	}
	for _, e := range engines {
		if e.Name() == preferred {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrEngineNotFound, preferred)
}
