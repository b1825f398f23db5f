package template

import (
	"github.com/Masterminds/sprig/v3"
)

// newSprigEngine — тот же Go-движок, но с набором функций sprig
// (default, join, upper и т.д.) для более выразительных шаблонов.
func newSprigEngine(name string) *goEngine {
	return &goEngine{
		name:  name,
		funcs: sprig.FuncMap(),
	}
}
