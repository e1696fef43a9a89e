package transform

import (
	"context"
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/kubelower/internal/ctxlog"
	"github.com/vk/kubelower/internal/proppath"
	"github.com/vk/kubelower/internal/registry"
	"github.com/vk/kubelower/internal/value"
)

// SchemaResolver turns property definitions into schemas.
type SchemaResolver interface {
	Resolve(def *registry.PropertyDefinition) (registry.Schema, error)
}

// Transformer converts property trees into native values.
type Transformer struct {
	schemas    SchemaResolver
	parsers    Parsers
	onFallback func(typeName string)
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithFallbackHook registers a callback run every time a unit parser
// rejects its input and the raw text is kept.
func WithFallbackHook(fn func(typeName string)) Option {
	return func(t *Transformer) { t.onFallback = fn }
}

// New creates a transformer using the given schema resolver and parsers.
func New(schemas SchemaResolver, parsers Parsers, opts ...Option) *Transformer {
	t := &Transformer{schemas: schemas, parsers: parsers}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transform converts v according to def. path is the dotted location of v,
// used in logs and errors. The input tree is never modified.
func (t *Transformer) Transform(ctx context.Context, v value.Value, def *registry.PropertyDefinition, path string) (any, error) {
	if v == nil {
		return nil, nil
	}
	schema, err := t.schemas.Resolve(def)
	if err != nil {
		return nil, fmt.Errorf("property %s: %w", path, err)
	}

	switch s := schema.(type) {
	case registry.Structured:
		if c, ok := v.(*value.Complex); ok {
			return t.structured(ctx, c, s, path)
		}
	case registry.MapOf:
		if c, ok := v.(*value.Complex); ok {
			return t.mapOf(ctx, c, s, path)
		}
	case registry.ListOf:
		if l, ok := v.(value.List); ok {
			return t.listOf(ctx, l, s, path)
		}
	case registry.Primitive:
		if sc, ok := v.(value.Scalar); ok {
			return t.primitive(ctx, sc.Text, s, path)
		}
	}
	return value.Native(v), nil
}

func (t *Transformer) structured(ctx context.Context, c *value.Complex, s registry.Structured, path string) (map[string]any, error) {
	out := make(map[string]any, s.Fields.Len())
	for _, name := range s.Fields.Names() {
		field, ok := c.Get(name)
		if !ok {
			continue
		}
		def, _ := s.Fields.Get(name)
		res, err := t.Transform(ctx, field, def, proppath.Join(path, name))
		if err != nil {
			return nil, err
		}
		out[name] = res
	}
	if dropped := c.Len() - len(out); dropped > 0 {
		ctxlog.FromContext(ctx).Debug("Dropped properties not declared by data type.", "path", path, "type", s.Type, "count", dropped)
	}
	return out, nil
}

func (t *Transformer) mapOf(ctx context.Context, c *value.Complex, s registry.MapOf, path string) (map[string]any, error) {
	out := make(map[string]any, c.Len())
	for _, key := range c.Keys() {
		entry, _ := c.Get(key)
		res, err := t.Transform(ctx, entry, s.Entry, proppath.Join(path, key))
		if err != nil {
			return nil, err
		}
		out[key] = res
	}
	return out, nil
}

func (t *Transformer) listOf(ctx context.Context, l value.List, s registry.ListOf, path string) ([]any, error) {
	out := make([]any, len(l.Items))
	for i, item := range l.Items {
		res, err := t.Transform(ctx, item, s.Entry, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out[i] = res
	}
	return out, nil
}

func (t *Transformer) primitive(ctx context.Context, text string, s registry.Primitive, path string) (any, error) {
	if parser, ok := t.parsers.Lookup(s.Type); ok {
		res, err := parser(text)
		if err != nil {
			ctxlog.FromContext(ctx).Warn("Unit parser rejected value, keeping raw text.", "path", path, "type", s.Type, "raw_value", text, "error", err)
			if t.onFallback != nil {
				t.onFallback(s.Type)
			}
			return text, nil
		}
		return res, nil
	}

	switch s.Kind {
	case registry.KindInteger:
		var i int64
		if err := coerce(text, cty.Number, &i, s, path); err != nil {
			return nil, err
		}
		return i, nil
	case registry.KindFloat:
		var f float64
		if err := coerce(text, cty.Number, &f, s, path); err != nil {
			return nil, err
		}
		return f, nil
	case registry.KindBoolean:
		var b bool
		if err := coerce(text, cty.Bool, &b, s, path); err != nil {
			return nil, err
		}
		return b, nil
	default:
		return text, nil
	}
}

// coerce converts text to want with cty's conversion rules and decodes the
// result into target.
func coerce(text string, want cty.Type, target any, s registry.Primitive, path string) error {
	converted, err := convert.Convert(cty.StringVal(strings.TrimSpace(text)), want)
	if err == nil {
		err = gocty.FromCtyValue(converted, target)
	}
	if err != nil {
		return &CoercionError{Path: path, Type: s.Kind.String(), Value: text, Err: err}
	}
	return nil
}
