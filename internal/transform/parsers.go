package transform

import "github.com/vk/kubelower/internal/units"

// Parser converts the text of a unit-aware scalar into a native value.
type Parser func(text string) (any, error)

// Parsers is an immutable mapping from primitive type name to Parser.
type Parsers struct {
	byType map[string]Parser
}

// NewParsers copies m into a new immutable mapping.
func NewParsers(m map[string]Parser) Parsers {
	byType := make(map[string]Parser, len(m))
	for k, v := range m {
		byType[k] = v
	}
	return Parsers{byType: byType}
}

// Lookup returns the parser registered for typeName.
func (p Parsers) Lookup(typeName string) (Parser, bool) {
	parser, ok := p.byType[typeName]
	return parser, ok
}

// DefaultParsers registers the built-in unit parsers.
func DefaultParsers() Parsers {
	return NewParsers(map[string]Parser{
		"scalar-unit.size": func(text string) (any, error) {
			return units.ParseSize(text)
		},
	})
}
