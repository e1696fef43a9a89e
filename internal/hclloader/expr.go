package hclloader

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/kubelower/internal/ctxlog"
	"github.com/vk/kubelower/internal/value"
)

// isExprDefined checks if an HCL expression was actually present in the source
// code. The HCL decoder often populates optional fields with non-nil, zero-width
// expression objects, so a simple nil check is insufficient.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte

	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)
	return isDefined
}

// exprToValue converts an HCL expression into a property value without
// evaluating it. Function calls are kept as deferred references and bare
// identifiers (SELF, HOST, requirement names) become scalars.
func exprToValue(expr hcl.Expression) (value.Value, hcl.Diagnostics) {
	switch e := expr.(type) {
	case *hclsyntax.ObjectConsExpr:
		var diags hcl.Diagnostics
		c := value.NewComplex()
		for _, item := range e.Items {
			key, keyDiags := objectKey(item.KeyExpr)
			diags = append(diags, keyDiags...)
			if keyDiags.HasErrors() {
				continue
			}
			v, vDiags := exprToValue(item.ValueExpr)
			diags = append(diags, vDiags...)
			c.Set(key, v)
		}
		return c, diags

	case *hclsyntax.TupleConsExpr:
		var diags hcl.Diagnostics
		items := make([]value.Value, 0, len(e.Exprs))
		for _, item := range e.Exprs {
			v, vDiags := exprToValue(item)
			diags = append(diags, vDiags...)
			items = append(items, v)
		}
		return value.List{Items: items}, diags

	case *hclsyntax.FunctionCallExpr:
		var diags hcl.Diagnostics
		args := make([]value.Value, 0, len(e.Args))
		for _, arg := range e.Args {
			v, vDiags := exprToValue(arg)
			diags = append(diags, vDiags...)
			args = append(args, v)
		}
		return value.Function{Name: e.Name, Args: args}, diags

	case *hclsyntax.ScopeTraversalExpr:
		if len(e.Traversal) != 1 {
			return nil, hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Unsupported reference",
				Detail:   "Only bare identifiers such as SELF, HOST or a requirement name may appear unquoted.",
				Subject:  e.Range().Ptr(),
			}}
		}
		return value.Str(e.Traversal.RootName()), nil

	case *hclsyntax.TemplateWrapExpr:
		return exprToValue(e.Wrapped)

	case *hclsyntax.ParenthesesExpr:
		return exprToValue(e.Expression)
	}

	v, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	out, err := ctyToValue(v)
	if err != nil {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unsupported value",
			Detail:   err.Error(),
			Subject:  expr.Range().Ptr(),
		})
	}
	return out, diags
}

// objectKey reads an object key that is an identifier or a quoted string.
func objectKey(expr hcl.Expression) (string, hcl.Diagnostics) {
	if keyExpr, ok := expr.(*hclsyntax.ObjectConsKeyExpr); ok {
		switch kexpr := keyExpr.Wrapped.(type) {
		case *hclsyntax.ScopeTraversalExpr:
			if len(kexpr.Traversal) == 1 {
				return kexpr.Traversal.RootName(), nil
			}
		case *hclsyntax.TemplateExpr:
			if len(kexpr.Parts) == 1 {
				if lit, isLit := kexpr.Parts[0].(*hclsyntax.LiteralValueExpr); isLit && lit.Val.Type().Equals(cty.String) {
					return lit.Val.AsString(), nil
				}
			}
		}
	}
	return "", hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  "Invalid object key",
		Detail:   "Keys must be simple identifiers or quoted strings, not complex expressions.",
		Subject:  expr.Range().Ptr(),
	}}
}

// ctyToValue converts a known cty value into a property value. Numbers and
// booleans become their text form.
func ctyToValue(v cty.Value) (value.Value, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsWhollyKnown() {
		return nil, fmt.Errorf("value is not known until deployment")
	}

	t := v.Type()
	switch {
	case t == cty.String:
		return value.Str(v.AsString()), nil
	case t == cty.Number:
		return value.Str(v.AsBigFloat().Text('f', -1)), nil
	case t == cty.Bool:
		if v.True() {
			return value.Str("true"), nil
		}
		return value.Str("false"), nil
	case t.IsListType() || t.IsTupleType() || t.IsSetType():
		var items []value.Value
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			item, err := ctyToValue(elem)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return value.List{Items: items}, nil
	case t.IsMapType() || t.IsObjectType():
		c := value.NewComplex()
		for it := v.ElementIterator(); it.Next(); {
			k, elem := it.Element()
			item, err := ctyToValue(elem)
			if err != nil {
				return nil, err
			}
			c.Set(k.AsString(), item)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %s", t.FriendlyName())
	}
}
