package script

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/crossval/errors"
	"github.com/wippyai/crossval/internal/jsfmt"
	"github.com/wippyai/crossval/script/internal/ast"
	"github.com/wippyai/crossval/script/internal/parser"
	"github.com/wippyai/crossval/script/internal/token"
	"github.com/wippyai/crossval/value"
)

// Option configures a Runtime.
type Option func(*Runtime)

// WithGlobals adds global bindings. Later options override earlier ones and
// the built-in globals.
func WithGlobals(globals map[string]any) Option {
	return func(r *Runtime) {
		for k, v := range globals {
			r.globals[k] = v
		}
	}
}

// WithTimeScale multiplies the delays of sleep, fail and iterate. Zero
// makes them settle immediately.
func WithTimeScale(scale float64) Option {
	return func(r *Runtime) {
		if scale >= 0 {
			r.scale = scale
		}
	}
}

type binding struct {
	value any
	kind  string
}

// Runtime holds the global state of a sequence of executions. It is not
// safe for concurrent use.
type Runtime struct {
	ctx      context.Context
	globals  map[string]any
	scope    map[string]*binding
	deferred map[*value.Promise]struct{}
	streams  map[*value.Stream]struct{}
	scale    float64
}

// NewRuntime creates a runtime with the built-in globals.
func NewRuntime(opts ...Option) *Runtime {
	r := &Runtime{
		ctx:      context.Background(),
		globals:  make(map[string]any),
		scope:    make(map[string]*binding),
		deferred: make(map[*value.Promise]struct{}),
		streams:  make(map[*value.Stream]struct{}),
		scale:    1,
	}
	r.installBuiltins()
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Eval evaluates src in a fresh runtime and returns the program value.
func Eval(ctx context.Context, src string, opts ...Option) (any, error) {
	return NewRuntime(opts...).Exec(ctx, src)
}

// Exec runs code and returns the value of its last expression statement.
// Declarations persist across calls. Code starting with the cross-reference
// header gets native $R, $P and $I.
func (r *Runtime) Exec(ctx context.Context, code string) (any, error) {
	trimmed := strings.TrimSpace(code)
	if strings.HasPrefix(trimmed, jsfmt.Header) {
		r.installReconstruction()
		// Blank out the header so positions still match the input.
		idx := strings.Index(code, jsfmt.Header)
		code = code[:idx] + strings.Repeat(" ", len(jsfmt.Header)) + code[idx+len(jsfmt.Header):]
	}

	prog, err := compile(code)
	if err != nil {
		return nil, err
	}

	prevCtx := r.ctx
	r.ctx = ctx
	defer func() { r.ctx = prevCtx }()

	start := time.Now()
	result, err := r.run(prog)
	if err != nil {
		Logger().Debug("evaluation failed", zap.Error(err))
		return nil, err
	}
	Logger().Debug("program evaluated",
		zap.Int("statements", len(prog.Stmts)),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

// Get returns a declared variable or global.
func (r *Runtime) Get(name string) (any, bool) {
	if b, ok := r.scope[name]; ok {
		return b.value, true
	}
	v, ok := r.globals[name]
	return v, ok
}

// Refs returns the $R array, or nil before any header was executed.
func (r *Runtime) Refs() *value.Array {
	if refs, ok := r.globals[jsfmt.RefArray].(*value.Array); ok {
		return refs
	}
	return nil
}

func compile(code string) (*ast.Program, error) {
	tokens, err := token.Tokenize(code)
	if err != nil {
		return nil, syntaxError(err)
	}
	prog, err := parser.New(tokens).Parse()
	if err != nil {
		return nil, syntaxError(err)
	}
	return prog, nil
}

func syntaxError(err error) error {
	var te *token.Error
	if stderrors.As(err, &te) {
		return errors.Syntax(te.Line, te.Col, "%s", te.Msg)
	}
	return errors.Wrap(errors.PhaseEvaluate, errors.KindSyntax, err, "parse failed")
}

func (r *Runtime) run(prog *ast.Program) (any, error) {
	var result any = value.Undefined
	for _, stmt := range prog.Stmts {
		if err := r.ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.PhaseEvaluate, errors.KindCancelled, err, "evaluation cancelled")
		}
		switch s := stmt.(type) {
		case *ast.VarDecl:
			if err := r.declare(s); err != nil {
				return nil, err
			}
		case *ast.ExprStmt:
			v, err := r.eval(s.X)
			if err != nil {
				return nil, err
			}
			result = v
		}
	}
	return result, nil
}

func (r *Runtime) declare(d *ast.VarDecl) error {
	for i, name := range d.Names {
		if prev, exists := r.scope[name]; exists && (d.Kind != "var" || prev.kind != "var") {
			return errors.Syntax(d.Line, d.Col, "Identifier '%s' has already been declared", name)
		}
		var v any = value.Undefined
		if init := d.Inits[i]; init != nil {
			var err error
			if v, err = r.eval(init); err != nil {
				return err
			}
			if fn, ok := v.(*value.Function); ok && fn.Name == "" && fn.Call == nil && fn.Construct == nil {
				fn.Name = name
			}
		}
		r.scope[name] = &binding{value: v, kind: d.Kind}
	}
	return nil
}
