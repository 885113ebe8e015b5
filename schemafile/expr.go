package schemafile

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"

	"github.com/mkch/bitrec/schema"
)

// compileExpr turns src into a schema.Expr.
func compileExpr(src string) (schema.Expr, error) {
	node, err := parser.ParseExpr(src)
	if err != nil {
		return nil, fmt.Errorf("expression %q: %v", src, err)
	}
	e, err := compileNode(node)
	if err != nil {
		return nil, fmt.Errorf("expression %q: %v", src, err)
	}
	return e, nil
}

// compilePredicate turns src into a predicate holding when src is not 0.
func compilePredicate(src string) (schema.Predicate, error) {
	e, err := compileExpr(src)
	if err != nil {
		return nil, err
	}
	return func(s schema.State) bool { return e(s) != 0 }, nil
}

func compileNode(n ast.Expr) (schema.Expr, error) {
	switch n := n.(type) {
	case *ast.BasicLit:
		if n.Kind != token.INT {
			return nil, fmt.Errorf("unsupported literal %s", n.Value)
		}
		v, err := parseInt(n.Value)
		if err != nil {
			return nil, err
		}
		return schema.Const(v), nil
	case *ast.Ident:
		switch n.Name {
		case "true":
			return schema.Const(1), nil
		case "false":
			return schema.Const(0), nil
		}
		return schema.Ref(n.Name), nil
	case *ast.ParenExpr:
		return compileNode(n.X)
	case *ast.CallExpr:
		fn, ok := n.Fun.(*ast.Ident)
		if !ok || fn.Name != "len" || len(n.Args) != 1 {
			return nil, fmt.Errorf("only len(name) calls are supported")
		}
		arg, ok := n.Args[0].(*ast.Ident)
		if !ok {
			return nil, fmt.Errorf("len wants a field name")
		}
		return schema.LenOf(arg.Name), nil
	case *ast.UnaryExpr:
		x, err := compileNode(n.X)
		if err != nil {
			return nil, err
		}
		return unary(n.Op, x)
	case *ast.BinaryExpr:
		x, err := compileNode(n.X)
		if err != nil {
			return nil, err
		}
		y, err := compileNode(n.Y)
		if err != nil {
			return nil, err
		}
		return binary(n.Op, x, y)
	}
	return nil, fmt.Errorf("unsupported expression %T", n)
}

// parseInt accepts any Go integer literal that fits 64 bits, reading
// values above math.MaxInt64 as their two's-complement pattern.
func parseInt(lit string) (int64, error) {
	if v, err := strconv.ParseInt(lit, 0, 64); err == nil {
		return v, nil
	}
	u, err := strconv.ParseUint(lit, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("integer %s out of range", lit)
	}
	return int64(u), nil
}

func unary(op token.Token, x schema.Expr) (schema.Expr, error) {
	switch op {
	case token.ADD:
		return x, nil
	case token.SUB:
		return func(s schema.State) int64 { return -x(s) }, nil
	case token.NOT:
		return func(s schema.State) int64 { return schema.Bool(x(s) == 0) }, nil
	case token.XOR:
		return func(s schema.State) int64 { return ^x(s) }, nil
	}
	return nil, fmt.Errorf("unsupported operator %s", op)
}

func binary(op token.Token, x, y schema.Expr) (schema.Expr, error) {
	var f func(a, b int64) int64
	switch op {
	case token.ADD:
		f = func(a, b int64) int64 { return a + b }
	case token.SUB:
		f = func(a, b int64) int64 { return a - b }
	case token.MUL:
		f = func(a, b int64) int64 { return a * b }
	case token.QUO:
		f = func(a, b int64) int64 {
			if b == 0 {
				return 0
			}
			return a / b
		}
	case token.REM:
		f = func(a, b int64) int64 {
			if b == 0 {
				return 0
			}
			return a % b
		}
	case token.SHL:
		f = func(a, b int64) int64 {
			if b < 0 {
				return 0
			}
			return a << uint64(b)
		}
	case token.SHR:
		f = func(a, b int64) int64 {
			if b < 0 {
				return 0
			}
			return a >> uint64(b)
		}
	case token.AND:
		f = func(a, b int64) int64 { return a & b }
	case token.OR:
		f = func(a, b int64) int64 { return a | b }
	case token.XOR:
		f = func(a, b int64) int64 { return a ^ b }
	case token.AND_NOT:
		f = func(a, b int64) int64 { return a &^ b }
	case token.EQL:
		f = func(a, b int64) int64 { return schema.Bool(a == b) }
	case token.NEQ:
		f = func(a, b int64) int64 { return schema.Bool(a != b) }
	case token.LSS:
		f = func(a, b int64) int64 { return schema.Bool(a < b) }
	case token.LEQ:
		f = func(a, b int64) int64 { return schema.Bool(a <= b) }
	case token.GTR:
		f = func(a, b int64) int64 { return schema.Bool(a > b) }
	case token.GEQ:
		f = func(a, b int64) int64 { return schema.Bool(a >= b) }
	case token.LAND:
		return func(s schema.State) int64 {
			return schema.Bool(x(s) != 0 && y(s) != 0)
		}, nil
	case token.LOR:
		return func(s schema.State) int64 {
			return schema.Bool(x(s) != 0 || y(s) != 0)
		}, nil
	default:
		return nil, fmt.Errorf("unsupported operator %s", op)
	}
	return func(s schema.State) int64 { return f(x(s), y(s)) }, nil
}
