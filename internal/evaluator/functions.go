package evaluator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/vk/kubelower/internal/value"
)

// call looks the function up, converts arguments to cty and runs it.
func (e *Evaluator) call(ctx context.Context, s *scope, name string, args []value.Value) (value.Value, error) {
	fn, ok := e.functions(ctx, s)[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown function %q", ErrInvalidArgument, name)
	}

	ctyArgs := make([]cty.Value, len(args))
	for i, arg := range args {
		ctyArgs[i] = toCty(arg)
	}

	res, err := fn.Call(ctyArgs)
	if err != nil {
		if errors.Is(err, ErrInvalidArgument) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArgument, name, err)
	}
	return fromCty(res), nil
}

// functions builds the function table for one evaluation scope.
func (e *Evaluator) functions(ctx context.Context, s *scope) map[string]function.Function {
	return map[string]function.Function{
		"get_input":            e.getInputFunc(ctx, s),
		"get_property":         e.getPropertyFunc(ctx, s, false),
		"get_attribute":        e.getPropertyFunc(ctx, s, true),
		"get_operation_output": getOperationOutputFunc(s),
		"concat":               concatFunc,
		"token":                tokenFunc,
	}
}

func (e *Evaluator) getInputFunc(ctx context.Context, s *scope) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{{Name: "name", Type: cty.String}},
		Type:   function.StaticReturnType(cty.DynamicPseudoType),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			name := args[0].AsString()
			in, ok := e.inputs[name]
			if !ok {
				return cty.NilVal, fmt.Errorf("%w: input %q is not defined", ErrInvalidArgument, name)
			}
			res, err := e.resolve(ctx, s.node, s.props, in, s.depth+1)
			if err != nil {
				return cty.NilVal, err
			}
			return toCty(res), nil
		},
	})
}

// getPropertyFunc implements get_property and get_attribute. Attributes
// only exist once deployed, so an attribute resolves at transform time only
// when a property of the same name holds its value.
func (e *Evaluator) getPropertyFunc(ctx context.Context, s *scope, attribute bool) function.Function {
	return function.New(&function.Spec{
		Params:   []function.Parameter{{Name: "entity", Type: cty.String}},
		VarParam: &function.Parameter{Name: "path", Type: cty.String},
		Type:     function.StaticReturnType(cty.DynamicPseudoType),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			if len(args) < 2 {
				return cty.NilVal, fmt.Errorf("%w: expected an entity and at least one property name", ErrInvalidArgument)
			}
			path := make([]string, len(args)-1)
			for i, arg := range args[1:] {
				path[i] = arg.AsString()
			}

			target, props, err := e.entity(ctx, s, args[0].AsString())
			if err != nil {
				return cty.NilVal, err
			}
			found, ok := lookup(target, props, path)
			if !ok {
				if attribute {
					return cty.NilVal, fmt.Errorf("%w: attribute %s of node %q is only known at deploy time", ErrInvalidArgument, strings.Join(path, "."), target.Name)
				}
				return cty.NilVal, fmt.Errorf("%w: property %s not found on node %q", ErrInvalidArgument, strings.Join(path, "."), target.Name)
			}

			res, err := e.resolve(ctx, target, target.Properties, found, s.depth+1)
			if err != nil {
				return cty.NilVal, err
			}
			return toCty(res), nil
		},
	})
}

func getOperationOutputFunc(s *scope) function.Function {
	return function.New(&function.Spec{
		VarParam: &function.Parameter{Name: "args", Type: cty.String},
		Type:     function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			return cty.NilVal, fmt.Errorf("%w: operation outputs of node %q are only known at deploy time", ErrInvalidArgument, s.node.Name)
		},
	})
}

var concatFunc = function.New(&function.Spec{
	VarParam: &function.Parameter{Name: "parts", Type: cty.String},
	Type:     function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		var sb strings.Builder
		for _, arg := range args {
			sb.WriteString(arg.AsString())
		}
		return cty.StringVal(sb.String()), nil
	},
})

var tokenFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "string", Type: cty.String},
		{Name: "separators", Type: cty.String},
		{Name: "index", Type: cty.String},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		text, seps := args[0].AsString(), args[1].AsString()
		index, err := strconv.Atoi(args[2].AsString())
		if err != nil {
			return cty.NilVal, fmt.Errorf("%w: token index %q is not an integer", ErrInvalidArgument, args[2].AsString())
		}
		parts := strings.FieldsFunc(text, func(r rune) bool { return strings.ContainsRune(seps, r) })
		if index < 0 || index >= len(parts) {
			return cty.NilVal, fmt.Errorf("%w: token index %d out of range for %q", ErrInvalidArgument, index, text)
		}
		return cty.StringVal(parts[index]), nil
	},
})
