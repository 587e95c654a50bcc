package serializer

import (
	stderrors "errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/wippyai/crossval/errors"
	"github.com/wippyai/crossval/internal/jsfmt"
	"github.com/wippyai/crossval/plugin"
	"github.com/wippyai/crossval/value"
)

type mode uint8

const (
	modeSync   mode = iota // bind shared values only
	modeCross              // bind every object-like value
	modeStream             // cross, with async placeholders
)

type parser struct {
	refs  *Refs
	reg   *plugin.Registry
	path  []string
	async []Async
	mode  mode
}

func (p *parser) push(seg string) {
	p.path = append(p.path, seg)
}

func (p *parser) pop() {
	p.path = p.path[:len(p.path)-1]
}

func (p *parser) currentPath() []string {
	out := make([]string, len(p.path))
	copy(out, p.path)
	return out
}

func (p *parser) child(seg string, v any) (*Node, error) {
	p.push(seg)
	n, err := p.parse(v)
	p.pop()
	return n, err
}

func (p *parser) parse(v any) (*Node, error) {
	kind, plug := classify(v, p.reg)
	switch kind {
	case KindPrimitive:
		return &Node{Kind: KindPrimitive, Code: primitive(v), Split: -1}, nil
	case KindUnsupported:
		return nil, errors.UnsupportedValue(p.currentPath(), v, value.TypeOf(v), value.Describe(v))
	case KindError:
		if _, ok := v.(*value.Error); !ok {
			return p.hostError(v.(error))
		}
	}

	var entry *Entry
	if _, ok := value.Identity(v); ok {
		e, isNew := p.refs.GetOrCreate(v)
		if !isNew {
			if e.State == StateVisiting {
				if err := p.markCycle(e); err != nil {
					return nil, err
				}
			}
			return &Node{Kind: kind, Entry: e, Ref: true, Split: -1}, nil
		}
		entry = e
	}

	n := &Node{Kind: kind, Entry: entry, Split: -1}
	if entry != nil {
		entry.node = n
		defer func() {
			entry.State = StateDone
			entry.node = nil
		}()
	}

	var err error
	switch kind {
	case KindArray:
		err = p.array(n, v.(*value.Array))
	case KindObject:
		err = p.object(n, v.(*value.Object))
	case KindMap:
		err = p.mapEntries(n, v.(*value.Map))
	case KindSet:
		err = p.setItems(n, v.(*value.Set))
	case KindRegExp:
		n.Code = regexpLiteral(v.(*value.RegExp))
	case KindBytes:
		n.Code = jsfmt.Bytes(v.(*value.Bytes).Data)
	case KindError:
		err = p.jsError(n, v.(*value.Error))
	case KindPromise:
		err = p.promise(n, v.(*value.Promise))
	case KindAsyncIterable:
		err = p.iterable(n, v.(value.AsyncIterable))
	case KindPlugin:
		err = p.plugin(n, plug, v)
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

// markCycle records that the child currently being parsed under e's node
// refers back to it.
func (p *parser) markCycle(e *Entry) error {
	n := e.node
	if n == nil {
		return nil
	}
	if n.Kind == KindPlugin {
		return errors.PluginFailed(n.Plugin.Tag(), p.currentPath(),
			fmt.Errorf("cyclic reference to a %s value", n.Plugin.Tag()))
	}
	if n.Split < 0 {
		n.Split = n.slot
	}
	return nil
}

func (p *parser) array(n *Node, a *value.Array) error {
	n.Items = make([]*Node, a.Len())
	for i := 0; i < a.Len(); i++ {
		if a.IsHole(i) {
			continue
		}
		n.slot = i
		c, err := p.child("["+strconv.Itoa(i)+"]", a.At(i))
		if err != nil {
			return err
		}
		n.Items[i] = c
	}
	return nil
}

func (p *parser) object(n *Node, o *value.Object) error {
	n.Keys = o.Keys()
	n.Items = make([]*Node, 0, len(n.Keys))
	for i, k := range n.Keys {
		v, _ := o.Get(k)
		n.slot = i
		c, err := p.child(k, v)
		if err != nil {
			return err
		}
		n.Items = append(n.Items, c)
	}
	return nil
}

func (p *parser) mapEntries(n *Node, m *value.Map) error {
	var err error
	i := 0
	m.Each(func(k, v any) bool {
		n.slot = i
		seg := "[" + strconv.Itoa(i) + "]"
		var kn, vn *Node
		if kn, err = p.child(seg+".key", k); err != nil {
			return false
		}
		if vn, err = p.child(seg+".value", v); err != nil {
			return false
		}
		n.Items = append(n.Items, kn, vn)
		i++
		return true
	})
	return err
}

func (p *parser) setItems(n *Node, s *value.Set) error {
	var err error
	i := 0
	s.Each(func(v any) bool {
		n.slot = i
		var c *Node
		if c, err = p.child("["+strconv.Itoa(i)+"]", v); err != nil {
			return false
		}
		n.Items = append(n.Items, c)
		i++
		return true
	})
	return err
}

func (p *parser) jsError(n *Node, e *value.Error) error {
	n.Name, n.Message = e.Name, e.Message
	if n.Name == "" {
		n.Name = "Error"
	}
	if !e.HasCause() {
		return nil
	}
	c, err := p.child("cause", e.Cause)
	if err != nil {
		return err
	}
	n.Items = []*Node{c}
	return nil
}

// hostError serializes a Go error as a fresh Error, following its Unwrap
// chain as the cause.
func (p *parser) hostError(err error) (*Node, error) {
	n := &Node{Kind: KindError, Name: "Error", Message: err.Error(), Split: -1}
	if cause := stderrors.Unwrap(err); cause != nil {
		c, cerr := p.child("cause", cause)
		if cerr != nil {
			return nil, cerr
		}
		n.Items = []*Node{c}
	}
	return n, nil
}

func (p *parser) promise(n *Node, pr *value.Promise) error {
	if p.mode == modeStream {
		n.Async = true
		p.async = append(p.async, Async{ID: n.Entry.ID, Promise: pr})
		return nil
	}
	state, result := pr.State()
	if state == value.PromisePending {
		return errors.New(errors.PhaseSerialize, errors.KindUnsupported).
			Path(p.currentPath()...).
			GoType(fmt.Sprintf("%T", pr)).
			JSType("object").
			Value(pr).
			Detail("pending promise requires a stream session").
			Build()
	}
	n.Rejected = state == value.PromiseRejected
	c, err := p.child("[[value]]", result)
	if err != nil {
		return err
	}
	n.Items = []*Node{c}
	return nil
}

func (p *parser) iterable(n *Node, it value.AsyncIterable) error {
	if p.mode != modeStream {
		return errors.New(errors.PhaseSerialize, errors.KindUnsupported).
			Path(p.currentPath()...).
			GoType(fmt.Sprintf("%T", it)).
			JSType("object").
			Value(it).
			Detail("async iterable requires a stream session").
			Build()
	}
	n.Async = true
	p.async = append(p.async, Async{ID: n.Entry.ID, Iterable: it})
	return nil
}

type encoder struct {
	p *parser
}

func (e encoder) Encode(key string, v any) (plugin.Node, error) {
	n, err := e.p.child(key, v)
	if err != nil {
		return plugin.Node{}, err
	}
	return plugin.WrapNode(n), nil
}

func (p *parser) plugin(n *Node, plug plugin.Plugin, v any) error {
	n.Plugin = plug
	n.path = p.currentPath()
	desc, err := plug.Encode(v, encoder{p: p})
	if err != nil {
		return pluginError(plug, p.currentPath(), err)
	}
	n.Desc = desc
	return nil
}

// pluginError keeps structured errors raised by child values and wraps
// everything else as a failure of the plugin.
func pluginError(plug plugin.Plugin, path []string, err error) error {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return err
	}
	return errors.PluginFailed(plug.Tag(), path, err)
}

func primitive(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case value.UndefinedType:
		return "void 0"
	case bool:
		if x {
			return "!0"
		}
		return "!1"
	case string:
		return jsfmt.Quote(x)
	case *big.Int:
		return jsfmt.BigInt(x)
	case time.Time:
		return dateLiteral(x)
	}
	f, _ := value.ToNumber(v)
	return jsfmt.Number(f)
}

func dateLiteral(t time.Time) string {
	t = t.UTC()
	if y := t.Year(); y < 0 || y > 9999 {
		return "new Date(" + strconv.FormatInt(t.UnixMilli(), 10) + ")"
	}
	return "new Date(" + jsfmt.Quote(t.Format("2006-01-02T15:04:05.000Z")) + ")"
}

func regexpLiteral(re *value.RegExp) string {
	if re.Source == "" || strings.ContainsAny(re.Source, "/\n\r<\u2028\u2029") {
		return "new RegExp(" + jsfmt.Quote(re.Source) + "," + jsfmt.Quote(re.Flags) + ")"
	}
	return "/" + re.Source + "/" + re.Flags
}
