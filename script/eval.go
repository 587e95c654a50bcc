package script

import (
	stderrors "errors"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/wippyai/crossval/errors"
	"github.com/wippyai/crossval/script/internal/ast"
	"github.com/wippyai/crossval/script/internal/parser"
	"github.com/wippyai/crossval/value"
)

func (r *Runtime) eval(e ast.Expr) (any, error) {
	switch x := e.(type) {
	case *ast.NumberLit:
		return x.Value, nil
	case *ast.BigIntLit:
		return new(big.Int).Set(x.Value), nil
	case *ast.StringLit:
		return x.Value, nil
	case *ast.BoolLit:
		return x.Value, nil
	case *ast.NullLit:
		return nil, nil
	case *ast.RegexLit:
		re, err := value.NewRegExp(x.Pattern, x.Flags)
		if err != nil {
			return nil, errors.Syntax(x.Line, x.Col, "%v", err)
		}
		return re, nil
	case *ast.Ident:
		return r.lookup(x)
	case *ast.ArrayLit:
		return r.evalArray(x)
	case *ast.ObjectLit:
		return r.evalObject(x)
	case *ast.FuncLit:
		return &value.Function{Name: x.Name}, nil
	case *ast.Member:
		obj, key, err := r.evalMember(x)
		if err != nil {
			return nil, err
		}
		return r.getProperty(obj, key, x.Pos)
	case *ast.Call:
		return r.evalCall(x)
	case *ast.New:
		return r.evalNew(x)
	case *ast.Assign:
		return r.evalAssign(x)
	case *ast.Sequence:
		var last any = value.Undefined
		for _, sub := range x.Exprs {
			v, err := r.eval(sub)
			if err != nil {
				return nil, err
			}
			last = v
		}
		return last, nil
	case *ast.Unary:
		return r.evalUnary(x)
	case *ast.Logical:
		return r.evalLogical(x)
	case *ast.Conditional:
		test, err := r.eval(x.Test)
		if err != nil {
			return nil, err
		}
		if value.Truthy(test) {
			return r.eval(x.Then)
		}
		return r.eval(x.Else)
	}
	pos := e.Position()
	return nil, errors.Syntax(pos.Line, pos.Col, "unsupported expression %T", e)
}

func (r *Runtime) lookup(id *ast.Ident) (any, error) {
	if v, ok := r.Get(id.Name); ok {
		return v, nil
	}
	return nil, errors.Reference(id.Line, id.Col, id.Name)
}

func (r *Runtime) evalArray(x *ast.ArrayLit) (any, error) {
	elems := make([]any, len(x.Elems))
	for i, el := range x.Elems {
		if el == nil {
			elems[i] = value.Hole
			continue
		}
		v, err := r.eval(el)
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}
	return value.NewArray(elems...), nil
}

func (r *Runtime) evalObject(x *ast.ObjectLit) (any, error) {
	obj := value.NewObject()
	for _, prop := range x.Props {
		key := prop.Key
		if prop.KeyExpr != nil {
			k, err := r.eval(prop.KeyExpr)
			if err != nil {
				return nil, err
			}
			key = propertyKey(k)
		}
		v, err := r.eval(prop.Value)
		if err != nil {
			return nil, err
		}
		// A literal __proto__: v sets the prototype, not an own property.
		if prop.KeyExpr == nil && !prop.Shorthand && key == "__proto__" {
			if _, method := prop.Value.(*ast.FuncLit); !method {
				continue
			}
		}
		if fn, ok := v.(*value.Function); ok && fn.Name == "" && fn.Call == nil && fn.Construct == nil {
			fn.Name = key
		}
		obj.Set(key, v)
	}
	return obj, nil
}

func (r *Runtime) evalMember(x *ast.Member) (any, string, error) {
	obj, err := r.eval(x.Object)
	if err != nil {
		return nil, "", err
	}
	if !x.Computed {
		return obj, x.Name, nil
	}
	k, err := r.eval(x.Property)
	if err != nil {
		return nil, "", err
	}
	return obj, propertyKey(k), nil
}

func (r *Runtime) evalArgs(args []ast.Expr) ([]any, error) {
	out := make([]any, 0, len(args))
	for _, a := range args {
		v, err := r.eval(a)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *Runtime) evalCall(x *ast.Call) (any, error) {
	var callee any
	var name string
	switch c := x.Callee.(type) {
	case *ast.Member:
		obj, key, err := r.evalMember(c)
		if err != nil {
			return nil, err
		}
		if callee, err = r.getProperty(obj, key, c.Pos); err != nil {
			return nil, err
		}
		name = calleeName(c)
	default:
		var err error
		if callee, err = r.eval(x.Callee); err != nil {
			return nil, err
		}
		name = calleeName(x.Callee)
	}
	args, err := r.evalArgs(x.Args)
	if err != nil {
		return nil, err
	}
	fn, ok := callee.(*value.Function)
	if !ok || fn.Call == nil {
		return nil, errors.TypeError(x.Line, x.Col, "%s is not a function", name)
	}
	v, err := fn.Call(args)
	if err != nil {
		return nil, nativeError(x.Pos, err)
	}
	return v, nil
}

func (r *Runtime) evalNew(x *ast.New) (any, error) {
	callee, err := r.eval(x.Callee)
	if err != nil {
		return nil, err
	}
	args, err := r.evalArgs(x.Args)
	if err != nil {
		return nil, err
	}
	fn, ok := callee.(*value.Function)
	if !ok || fn.Construct == nil {
		return nil, errors.TypeError(x.Line, x.Col, "%s is not a constructor", calleeName(x.Callee))
	}
	v, err := fn.Construct(args)
	if err != nil {
		return nil, nativeError(x.Pos, err)
	}
	return v, nil
}

// nativeError positions an error returned by a native function.
func nativeError(pos ast.Pos, err error) error {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return err
	}
	return errors.TypeError(pos.Line, pos.Col, "%v", err)
}

func calleeName(e ast.Expr) string {
	switch x := e.(type) {
	case *ast.Ident:
		return x.Name
	case *ast.Member:
		if x.Computed {
			return calleeName(x.Object) + "[...]"
		}
		return calleeName(x.Object) + "." + x.Name
	}
	return "expression"
}

func (r *Runtime) evalAssign(x *ast.Assign) (any, error) {
	switch t := x.Target.(type) {
	case *ast.Ident:
		v, err := r.eval(x.Value)
		if err != nil {
			return nil, err
		}
		if b, ok := r.scope[t.Name]; ok {
			if b.kind == "const" {
				return nil, errors.TypeError(t.Line, t.Col, "Assignment to constant variable.")
			}
			b.value = v
			return v, nil
		}
		if _, ok := r.globals[t.Name]; ok {
			r.globals[t.Name] = v
			return v, nil
		}
		return nil, errors.Reference(t.Line, t.Col, t.Name)
	case *ast.Member:
		obj, key, err := r.evalMember(t)
		if err != nil {
			return nil, err
		}
		v, err := r.eval(x.Value)
		if err != nil {
			return nil, err
		}
		if err := r.setProperty(obj, key, v, t.Pos); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, errors.Syntax(x.Line, x.Col, "invalid assignment target")
}

func (r *Runtime) evalUnary(x *ast.Unary) (any, error) {
	if x.Op == "typeof" {
		if id, ok := x.X.(*ast.Ident); ok {
			if _, defined := r.Get(id.Name); !defined {
				return "undefined", nil
			}
		}
	}
	v, err := r.eval(x.X)
	if err != nil {
		return nil, err
	}
	switch x.Op {
	case "!":
		return !value.Truthy(v), nil
	case "void":
		return value.Undefined, nil
	case "typeof":
		return value.TypeOf(v), nil
	case "-":
		if n, ok := v.(*big.Int); ok {
			return new(big.Int).Neg(n), nil
		}
		return -toNumber(v), nil
	case "+":
		if _, ok := v.(*big.Int); ok {
			return nil, errors.TypeError(x.Line, x.Col, "Cannot convert a BigInt value to a number")
		}
		return toNumber(v), nil
	}
	return nil, errors.Syntax(x.Line, x.Col, "unknown operator %s", x.Op)
}

func (r *Runtime) evalLogical(x *ast.Logical) (any, error) {
	left, err := r.eval(x.Left)
	if err != nil {
		return nil, err
	}
	switch x.Op {
	case "||":
		if value.Truthy(left) {
			return left, nil
		}
	case "&&":
		if !value.Truthy(left) {
			return left, nil
		}
	case "??":
		if !value.IsNullish(left) {
			return left, nil
		}
	}
	return r.eval(x.Right)
}

// toNumber is the ToNumber conversion for non-bigint values.
func toNumber(v any) float64 {
	if n, ok := value.ToNumber(v); ok {
		return n
	}
	switch x := v.(type) {
	case nil:
		return 0
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		switch s {
		case "Infinity", "+Infinity":
			return math.Inf(1)
		case "-Infinity":
			return math.Inf(-1)
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !strings.ContainsAny(s, "iInN_xX") {
			return f
		}
		if len(s) > 2 && s[0] == '0' && strings.ContainsRune("xXoObB", rune(s[1])) {
			if n, ok := new(big.Int).SetString(s, 0); ok && !strings.Contains(s, "_") {
				f, _ := new(big.Float).SetInt(n).Float64()
				return f
			}
		}
		return math.NaN()
	case time.Time:
		return float64(x.UnixMilli())
	}
	return math.NaN()
}

// toString is the ToString conversion for primitives.
func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return "null"
	case value.UndefinedType:
		return "undefined"
	case bool:
		return strconv.FormatBool(x)
	case *big.Int:
		return x.String()
	case *value.Error:
		return x.Error()
	}
	if n, ok := value.ToNumber(v); ok {
		return numberString(n)
	}
	return value.Describe(v)
}

func numberString(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case n == 0:
		return "0"
	}
	return parser.NumberKey(n)
}

// propertyKey is the ToPropertyKey conversion.
func propertyKey(v any) string {
	return toString(v)
}
