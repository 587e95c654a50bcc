package serializer

import (
	"github.com/wippyai/crossval/errors"
	"github.com/wippyai/crossval/internal/jsfmt"
	"github.com/wippyai/crossval/plugin"
	"github.com/wippyai/crossval/value"
)

type config struct {
	registry  *plugin.Registry
	plugins   []plugin.Plugin
	observers []Observer
}

// Option configures a serialization call.
type Option func(*config)

// WithPlugins sets the plugins tried for host values, in order.
func WithPlugins(plugins ...plugin.Plugin) Option {
	return func(c *config) {
		c.plugins = append(c.plugins, plugins...)
	}
}

// WithRegistry uses a prebuilt plugin registry. Plugins passed with
// WithPlugins are ignored when a registry is set.
func WithRegistry(r *plugin.Registry) Option {
	return func(c *config) {
		c.registry = r
	}
}

// WithObserver subscribes o to reference table events.
func WithObserver(o Observer) Option {
	return func(c *config) {
		c.observers = append(c.observers, o)
	}
}

func newConfig(opts []Option) (*config, error) {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil && len(c.plugins) > 0 {
		r, err := plugin.NewRegistry(c.plugins...)
		if err != nil {
			return nil, err
		}
		c.registry = r
	}
	return c, nil
}

func (c *config) refs() *Refs {
	t := NewRefs()
	for _, o := range c.observers {
		t.Subscribe(o)
	}
	return t
}

// CrossReferenceHeader returns the prelude that defines $R, $P and $I.
// It must run once before any cross-mode or stream output.
func CrossReferenceHeader() string {
	return jsfmt.Header
}

// Serialize renders v as one self-contained JS expression. Settled promises
// are written with Promise.resolve and Promise.reject; pending promises and
// async iterables are unsupported.
func Serialize(v any, opts ...Option) (string, error) {
	c, err := newConfig(opts)
	if err != nil {
		return "", err
	}
	p := &parser{refs: c.refs(), reg: c.registry, mode: modeSync}
	n, err := p.parse(v)
	if err != nil {
		return "", err
	}
	g := &generator{}
	code, err := g.generate(n)
	if err != nil {
		return "", err
	}
	if g.bound > 0 {
		return jsfmt.Header + ";" + code, nil
	}
	return code, nil
}

// CrossSerialize renders v with every object-like value bound to a $R
// slot. The caller emits CrossReferenceHeader once before the output.
func CrossSerialize(v any, opts ...Option) (string, error) {
	c, err := newConfig(opts)
	if err != nil {
		return "", err
	}
	p := &parser{refs: c.refs(), reg: c.registry, mode: modeCross}
	n, err := p.parse(v)
	if err != nil {
		return "", err
	}
	g := &generator{bindAll: true}
	return g.generate(n)
}

// Op is a patch operation on a placeholder.
type Op uint8

const (
	OpResolve Op = iota // promise fulfilled
	OpReject            // promise rejected
	OpNext              // iterable item
	OpReturn            // iterable completed
	OpThrow             // iterable failed
)

var opMethods = [...]string{
	OpResolve: "s",
	OpReject:  "f",
	OpNext:    "n",
	OpReturn:  "d",
	OpThrow:   "e",
}

// Method returns the placeholder method the operation calls.
func (o Op) Method() string {
	if int(o) < len(opMethods) {
		return opMethods[o]
	}
	return ""
}

var opNames = [...]string{
	OpResolve: "resolve",
	OpReject:  "reject",
	OpNext:    "next",
	OpReturn:  "return",
	OpThrow:   "throw",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "unknown"
}

// Cross serializes the snippets of one streaming session against a shared
// reference table. Promises and async iterables become placeholders and are
// returned as Async parts for the caller to watch.
type Cross struct {
	refs *Refs
	reg  *plugin.Registry
}

// NewCross creates an incremental serializer.
func NewCross(opts ...Option) (*Cross, error) {
	c, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return &Cross{refs: c.refs(), reg: c.registry}, nil
}

// Refs returns the shared reference table.
func (c *Cross) Refs() *Refs {
	return c.refs
}

// Initial renders the first snippet.
func (c *Cross) Initial(v any) (string, []Async, error) {
	return c.pass(nil, v)
}

// Patch renders the code applying op to placeholder id. OpReturn with an
// undefined value renders a call without arguments.
func (c *Cross) Patch(id uint32, op Op, v any) (string, []Async, error) {
	method := op.Method()
	if method == "" {
		return "", nil, errors.InvalidInput(errors.PhaseSerialize, "unknown patch operation")
	}
	target := jsfmt.Ref(id)
	if op == OpReturn {
		if _, undef := v.(value.UndefinedType); undef {
			return target + "." + method + "()", nil, nil
		}
	}
	arg, async, err := c.pass([]string{target, "[[" + op.String() + "]]"}, v)
	if err != nil {
		return "", nil, err
	}
	return target + "." + method + "(" + arg + ")", async, nil
}

func (c *Cross) pass(path []string, v any) (string, []Async, error) {
	p := &parser{refs: c.refs, reg: c.reg, mode: modeStream, path: path}
	n, err := p.parse(v)
	if err != nil {
		return "", nil, err
	}
	g := &generator{bindAll: true}
	code, err := g.generate(n)
	if err != nil {
		return "", nil, err
	}
	return code, p.async, nil
}
