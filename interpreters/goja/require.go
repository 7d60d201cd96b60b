package goja

import (
	"context"
	"fmt"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
)

// InlineRequires replaces top-level require("NAME") statements with
// the source that the provider returns for NAME.
//
// Goja can't combine parsed programs, so this function rewrites the
// source text based on the positions that the parser reports.
// Everything else in the source is left as it is.
func InlineRequires(ctx context.Context, src string, provider func(context.Context, string) (string, error)) (string, error) {

	p, err := parser.ParseFile(nil, "", wrapSrc(src), 0)
	if err != nil {
		return "", err
	}

	type required struct {
		from int
		to   int
		name string
	}

	requires := make([]required, 0, 8)

	// The parse was of the wrapped source, so the statements we
	// want are in the body of the function.
	body := functionBody(p)

	// Positions are 1-based and relative to the wrapped source.
	offset := len(wrapperPrefix) + 1

	for _, s := range body {
		exps, is := s.(*ast.ExpressionStatement)
		if !is {
			continue
		}

		call, is := exps.Expression.(*ast.CallExpression)
		if !is {
			continue
		}

		id, is := call.Callee.(*ast.Identifier)
		if !is || id.Name != "require" {
			continue
		}
		if len(call.ArgumentList) != 1 {
			return "", fmt.Errorf("bad require args: %#v", call.ArgumentList)
		}

		lit, is := call.ArgumentList[0].(*ast.StringLiteral)
		if !is {
			return "", fmt.Errorf("bad require arg: %#v", call.ArgumentList[0])
		}

		requires = append(requires, required{
			from: int(exps.Idx0()) - offset,
			to:   int(exps.Idx1()) - offset,
			name: lit.Value.String(),
		})
	}

	if len(requires) == 0 {
		return src, nil
	}

	inlined := src[0:requires[0].from]
	for i, r := range requires {
		lib, err := provider(ctx, r.name)
		if err != nil {
			return "", err
		}

		inlined += lib

		to := len(src)
		if i < len(requires)-1 {
			to = requires[i+1].from
		}
		inlined += src[r.to:to]
	}

	return inlined, nil
}

const wrapperPrefix = "(function() {\n"

// functionBody digs the statements out of "(function() {...}());".
func functionBody(p *ast.Program) []ast.Statement {
	if len(p.Body) != 1 {
		return nil
	}
	exps, is := p.Body[0].(*ast.ExpressionStatement)
	if !is {
		return nil
	}
	call, is := exps.Expression.(*ast.CallExpression)
	if !is {
		return nil
	}
	f, is := call.Callee.(*ast.FunctionLiteral)
	if !is || f.Body == nil {
		return nil
	}
	return f.Body.List
}
