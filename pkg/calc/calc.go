package calc

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"math"
	"strconv"
	"strings"
)

var (
	ErrInvalidSyntax        = errors.New("invalid syntax")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrDivisionByZero       = errors.New("division by zero")
	ErrOverflow             = errors.New("numeric result out of range")
)

// Evaluate computes an arithmetic expression made of numeric literals,
// parentheses, unary +/- and the binary operators + - * / % **.
//
// The expression is parsed by go/parser and the resulting tree is walked
// node by node. Any node kind outside that set (identifiers, calls,
// selectors, comparisons, bit operators ...) is rejected with
// ErrUnsupportedOperation, so nothing in the input is ever executed.
//
// Semantics follow common calculator conventions rather than Go's:
// division is always floating point, % is a floored modulo whose sign
// follows the divisor, and ** is right associative and binds tighter than
// unary minus (-2 ** 2 == -4). A result that does not fit a float64 is
// ErrOverflow rather than an infinity.
func Evaluate(expression string) (float64, error) {
	expr := strings.TrimSpace(expression)
	if expr == "" {
		return 0, fmt.Errorf("%w: empty expression", ErrInvalidSyntax)
	}

	// the go scanner would swallow everything after these as a comment
	if strings.Contains(expr, "//") || strings.Contains(expr, "/*") {
		return 0, fmt.Errorf("%w: floor division and comments are not allowed", ErrUnsupportedOperation)
	}

	node, err := parser.ParseExpr(expr)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSyntax, err)
	}

	return eval(node)
}

// Format renders a result the way a calculator would: integral values
// without a fractional part, everything else in the shortest form.
func Format(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	return strconv.FormatFloat(v, 'g', -1, 64)
}

func eval(node ast.Expr) (float64, error) {
	switch n := node.(type) {
	case *ast.BasicLit:
		return evalLiteral(n)

	case *ast.ParenExpr:
		return eval(n.X)

	case *ast.UnaryExpr:
		v, err := eval(n.X)
		if err != nil {
			return 0, err
		}
		return applyUnary(n.Op, v)

	case *ast.BinaryExpr:
		if isMulLevel(n.Op) {
			return evalMulChain(n)
		}
		return evalBinary(n)

	case *ast.StarExpr:
		// only legal as the right hand side of a ** in a mul chain
		return 0, fmt.Errorf("%w: misplaced '*'", ErrUnsupportedOperation)

	default:
		return 0, fmt.Errorf("%w: %T", ErrUnsupportedOperation, node)
	}
}

func evalLiteral(lit *ast.BasicLit) (float64, error) {
	switch lit.Kind {
	case token.INT:
		if v, err := strconv.ParseInt(lit.Value, 0, 64); err == nil {
			return float64(v), nil
		}
		// too large for int64, degrade to float
		v, err := strconv.ParseFloat(lit.Value, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: bad number %s", ErrInvalidSyntax, lit.Value)
		}
		return v, nil

	case token.FLOAT:
		v, err := strconv.ParseFloat(lit.Value, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: bad number %s", ErrInvalidSyntax, lit.Value)
		}
		return v, nil

	default:
		return 0, fmt.Errorf("%w: literal %s", ErrUnsupportedOperation, lit.Value)
	}
}

func applyUnary(op token.Token, v float64) (float64, error) {
	switch op {
	case token.ADD:
		return v, nil
	case token.SUB:
		return -v, nil
	default:
		return 0, fmt.Errorf("%w: unary %s", ErrUnsupportedOperation, op)
	}
}

func evalBinary(n *ast.BinaryExpr) (float64, error) {
	if n.Op != token.ADD && n.Op != token.SUB {
		return 0, fmt.Errorf("%w: operator %s", ErrUnsupportedOperation, n.Op)
	}

	left, err := eval(n.X)
	if err != nil {
		return 0, err
	}
	right, err := eval(n.Y)
	if err != nil {
		return 0, err
	}

	if n.Op == token.ADD {
		return finite(left+right, "+")
	}
	return finite(left-right, "-")
}

// operands are always finite, so an infinity here is an overflow
func finite(v float64, op string) (float64, error) {
	if math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s", ErrOverflow, op)
	}
	return v, nil
}

func isMulLevel(op token.Token) bool {
	return op == token.MUL || op == token.QUO || op == token.REM
}

// Go has no ** operator: "a ** b" parses as "a * (*b)". A left associative
// chain of * / % is flattened and every "* <StarExpr>" link whose two stars
// touch is folded into the power tower of the operand on its left.
func evalMulChain(n *ast.BinaryExpr) (float64, error) {
	operands, ops := flattenMulChain(n)

	towers := [][]ast.Expr{{operands[0]}}
	towerOps := make([]token.Token, 0, len(ops))
	for i, op := range ops {
		rhs := operands[i+1]
		if star, ok := rhs.(*ast.StarExpr); ok && op.tok == token.MUL {
			if star.Star != op.pos+1 {
				return 0, fmt.Errorf("%w: '* *' is not a power operator", ErrInvalidSyntax)
			}
			last := len(towers) - 1
			towers[last] = append(towers[last], star.X)
			continue
		}

		towers = append(towers, []ast.Expr{rhs})
		towerOps = append(towerOps, op.tok)
	}

	acc, err := evalTower(towers[0])
	if err != nil {
		return 0, err
	}

	for i, op := range towerOps {
		v, err := evalTower(towers[i+1])
		if err != nil {
			return 0, err
		}

		acc, err = applyMul(op, acc, v)
		if err != nil {
			return 0, err
		}
	}

	return acc, nil
}

type mulOp struct {
	tok token.Token
	pos token.Pos
}

func flattenMulChain(n *ast.BinaryExpr) ([]ast.Expr, []mulOp) {
	var (
		operands []ast.Expr
		ops      []mulOp
	)

	if left, ok := n.X.(*ast.BinaryExpr); ok && isMulLevel(left.Op) {
		operands, ops = flattenMulChain(left)
	} else {
		operands = []ast.Expr{n.X}
	}

	return append(operands, n.Y), append(ops, mulOp{tok: n.Op, pos: n.OpPos})
}

// evalTower evaluates b0 ** b1 ** ... ** bn right to left. A leading unary
// sign on any element applies to the whole remaining tower.
func evalTower(elems []ast.Expr) (float64, error) {
	if len(elems) == 1 {
		return eval(elems[0])
	}

	if u, ok := elems[0].(*ast.UnaryExpr); ok {
		rest := make([]ast.Expr, 0, len(elems))
		rest = append(rest, u.X)
		rest = append(rest, elems[1:]...)
		v, err := evalTower(rest)
		if err != nil {
			return 0, err
		}
		return applyUnary(u.Op, v)
	}

	base, err := eval(elems[0])
	if err != nil {
		return 0, err
	}
	exp, err := evalTower(elems[1:])
	if err != nil {
		return 0, err
	}

	return power(base, exp)
}

func power(base, exp float64) (float64, error) {
	if base == 0 && exp < 0 {
		return 0, fmt.Errorf("%w: 0 cannot be raised to a negative power", ErrDivisionByZero)
	}

	v := math.Pow(base, exp)
	if math.IsNaN(v) && !math.IsNaN(base) && !math.IsNaN(exp) {
		return 0, fmt.Errorf("%w: complex result for %s ** %s", ErrUnsupportedOperation, Format(base), Format(exp))
	}

	return finite(v, "**")
}

func applyMul(op token.Token, a, b float64) (float64, error) {
	switch op {
	case token.MUL:
		return finite(a*b, "*")

	case token.QUO:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return finite(a/b, "/")

	case token.REM:
		if b == 0 {
			return 0, fmt.Errorf("%w: modulo by zero", ErrDivisionByZero)
		}
		r := math.Mod(a, b)
		if r != 0 && (r < 0) != (b < 0) {
			r += b
		}
		return r, nil
	}

	return 0, fmt.Errorf("%w: operator %s", ErrUnsupportedOperation, op)
}
