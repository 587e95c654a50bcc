package serializer

import (
	stderrors "errors"
	"strconv"

	"github.com/wippyai/crossval/errors"
	"github.com/wippyai/crossval/internal/jsfmt"
	"github.com/wippyai/crossval/plugin"
	"github.com/wippyai/crossval/value"
)

type generator struct {
	bindAll bool
	bound   int
}

func (g *generator) generate(n *Node) (string, error) {
	if n == nil {
		return "", nil
	}
	if n.Ref {
		return jsfmt.Ref(n.Entry.ID), nil
	}
	if n.Kind == KindPrimitive {
		return n.Code, nil
	}

	bind := n.Entry != nil && (g.bindAll || n.Entry.Seen > 1 || n.Split >= 0)
	var ref string
	if bind {
		ref = jsfmt.Ref(n.Entry.ID)
	}

	shell, fills, err := g.build(n, ref)
	if err != nil {
		return "", err
	}
	if !bind {
		return shell, nil
	}
	n.Entry.Bound = true
	g.bound++
	if len(fills) == 0 {
		return ref + "=" + shell, nil
	}

	b := getBuf()
	defer putBuf(b)
	b.WriteString("(")
	b.WriteString(ref)
	b.WriteString("=")
	b.WriteString(shell)
	for _, f := range fills {
		b.WriteString(",")
		b.WriteString(f)
	}
	b.WriteString(",")
	b.WriteString(ref)
	b.WriteString(")")
	return b.String(), nil
}

// build renders the shell expression of n and, for shell-first nodes, the
// assignments that add the children from Split on.
func (g *generator) build(n *Node, ref string) (string, []string, error) {
	switch n.Kind {
	case KindArray:
		return g.array(n, ref)
	case KindObject:
		return g.object(n, ref)
	case KindMap:
		return g.collection(n, ref, "Map", 2)
	case KindSet:
		return g.collection(n, ref, "Set", 1)
	case KindError:
		return g.jsError(n, ref)
	case KindPromise:
		return g.promise(n, ref)
	case KindAsyncIterable:
		return jsfmt.IterableFactory + "()", nil, nil
	case KindPlugin:
		code, err := g.plugin(n)
		return code, nil, err
	}
	return n.Code, nil, nil
}

func (g *generator) split(n *Node, count int) int {
	if n.Split < 0 || n.Split > count {
		return count
	}
	return n.Split
}

func (g *generator) array(n *Node, ref string) (string, []string, error) {
	cut := g.split(n, len(n.Items))

	b := getBuf()
	defer putBuf(b)
	b.WriteString("[")
	for i := 0; i < cut; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		code, err := g.generate(n.Items[i])
		if err != nil {
			return "", nil, err
		}
		b.WriteString(code)
	}
	if cut > 0 && n.Items[cut-1] == nil {
		b.WriteString(",")
	}
	b.WriteString("]")

	var fills []string
	last := cut - 1
	for i := cut; i < len(n.Items); i++ {
		if n.Items[i] == nil {
			continue
		}
		code, err := g.generate(n.Items[i])
		if err != nil {
			return "", nil, err
		}
		fills = append(fills, ref+"["+strconv.Itoa(i)+"]="+code)
		last = i
	}
	if cut < len(n.Items) && last < len(n.Items)-1 {
		fills = append(fills, ref+".length="+strconv.Itoa(len(n.Items)))
	}
	return b.String(), fills, nil
}

func (g *generator) object(n *Node, ref string) (string, []string, error) {
	cut := g.split(n, len(n.Items))

	b := getBuf()
	defer putBuf(b)
	b.WriteString("{")
	for i := 0; i < cut; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		code, err := g.generate(n.Items[i])
		if err != nil {
			return "", nil, err
		}
		b.WriteString(jsfmt.Key(n.Keys[i]))
		b.WriteString(":")
		b.WriteString(code)
	}
	b.WriteString("}")

	var fills []string
	for i := cut; i < len(n.Items); i++ {
		code, err := g.generate(n.Items[i])
		if err != nil {
			return "", nil, err
		}
		fills = append(fills, assignProperty(ref, n.Keys[i], code))
	}
	return b.String(), fills, nil
}

// assignProperty renders obj.key=v. Assigning __proto__ would replace the
// prototype, so that key is defined as an own property instead.
func assignProperty(ref, key, code string) string {
	if key == "__proto__" {
		return "Object.defineProperty(" + ref + "," + jsfmt.Quote(key) +
			",{value:" + code + ",writable:!0,enumerable:!0,configurable:!0})"
	}
	return ref + jsfmt.Member(key) + "=" + code
}

// collection renders Map (arity 2) and Set (arity 1) constructors.
func (g *generator) collection(n *Node, ref, ctor string, arity int) (string, []string, error) {
	count := len(n.Items) / arity
	cut := g.split(n, count)

	b := getBuf()
	defer putBuf(b)
	b.WriteString("new ")
	b.WriteString(ctor)
	if cut > 0 {
		b.WriteString("([")
		for i := 0; i < cut; i++ {
			if i > 0 {
				b.WriteString(",")
			}
			entry, err := g.tuple(n.Items[i*arity : (i+1)*arity])
			if err != nil {
				return "", nil, err
			}
			if arity > 1 {
				entry = "[" + entry + "]"
			}
			b.WriteString(entry)
		}
		b.WriteString("])")
	}

	method := ".add("
	if arity > 1 {
		method = ".set("
	}
	var fills []string
	for i := cut; i < count; i++ {
		args, err := g.tuple(n.Items[i*arity : (i+1)*arity])
		if err != nil {
			return "", nil, err
		}
		fills = append(fills, ref+method+args+")")
	}
	return b.String(), fills, nil
}

func (g *generator) tuple(items []*Node) (string, error) {
	out := ""
	for i, it := range items {
		code, err := g.generate(it)
		if err != nil {
			return "", err
		}
		if i > 0 {
			out += ","
		}
		out += code
	}
	return out, nil
}

func (g *generator) jsError(n *Node, ref string) (string, []string, error) {
	ctor := n.Name
	if !value.IsErrorName(ctor) {
		ctor = "Error"
	}
	args := jsfmt.Quote(n.Message)

	var fills []string
	if len(n.Items) > 0 {
		cause, err := g.generate(n.Items[0])
		if err != nil {
			return "", nil, err
		}
		if n.Split == 0 {
			fills = append(fills, ref+".cause="+cause)
		} else {
			args += ",{cause:" + cause + "}"
		}
	}

	shell := "new " + ctor + "(" + args + ")"
	if ctor != n.Name {
		shell = "Object.assign(" + shell + ",{name:" + jsfmt.Quote(n.Name) + "})"
	}
	return shell, fills, nil
}

func (g *generator) promise(n *Node, ref string) (string, []string, error) {
	if n.Async {
		return jsfmt.PromiseFactory + "()", nil, nil
	}
	result, err := g.generate(n.Items[0])
	if err != nil {
		return "", nil, err
	}
	if n.Split == 0 {
		method := ".s("
		if n.Rejected {
			method = ".f("
		}
		return jsfmt.PromiseFactory + "()", []string{ref + method + result + ")"}, nil
	}
	if n.Rejected {
		return "Promise.reject(" + result + ")", nil, nil
	}
	return "Promise.resolve(" + result + ")", nil, nil
}

type childGenerator struct {
	g *generator
}

func (c childGenerator) Generate(pn plugin.Node) (string, error) {
	n, ok := pn.Impl().(*Node)
	if !ok {
		return "", stderrors.New("node was not produced by this serializer")
	}
	return c.g.generate(n)
}

func (g *generator) plugin(n *Node) (string, error) {
	code, err := n.Plugin.Generate(n.Desc, childGenerator{g: g})
	if err != nil {
		var e *errors.Error
		if stderrors.As(err, &e) {
			return "", err
		}
		return "", errors.PluginFailed(n.Plugin.Tag(), n.path, err)
	}
	if code == "" {
		return "", errors.PluginFailed(n.Plugin.Tag(), n.path, stderrors.New("plugin produced no code"))
	}
	return code, nil
}
