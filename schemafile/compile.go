package schemafile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mkch/bitrec/bitio"
	"github.com/mkch/bitrec/schema"
)

// Set is the compiled form of a document: one schema per type.
type Set struct {
	types map[string]*schema.Schema
}

// Lookup returns the named type.
func (s *Set) Lookup(name string) (*schema.Schema, bool) {
	t, ok := s.types[name]
	return t, ok
}

// Names returns the type names in sorted order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.types))
	for n := range s.types {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Compile builds the schemas of doc. Type references are resolved
// across the document; circular references are errors.
func Compile(doc *Document) (*Set, error) {
	c := &compiler{doc: doc, done: make(map[string]*schema.Schema)}
	var err error
	if c.byteOrder, err = bitio.ParseByteOrder(doc.ByteOrder); err != nil {
		return nil, errorf("-", "", "%v", err)
	}
	if c.bitOrder, err = bitio.ParseBitOrder(doc.BitOrder); err != nil {
		return nil, errorf("-", "", "%v", err)
	}
	for _, name := range sortedTypes(doc) {
		if _, err := c.compile(name, nil); err != nil {
			return nil, err
		}
	}
	return &Set{types: c.done}, nil
}

func sortedTypes(doc *Document) []string {
	names := make([]string, 0, len(doc.Types))
	for n := range doc.Types {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

type compiler struct {
	doc       *Document
	byteOrder bitio.ByteOrder
	bitOrder  bitio.BitOrder
	done      map[string]*schema.Schema
}

type routeNode struct {
	typ   string
	field string
}

func (n *routeNode) String() string {
	return n.typ + "." + n.field
}

func (c *compiler) compile(name string, seen []*routeNode) (*schema.Schema, error) {
	if s, ok := c.done[name]; ok {
		return s, nil
	}
	// Circular type.
	for i, node := range seen {
		if node.typ == name {
			var ts []string
			for _, n := range seen[i:] {
				ts = append(ts, n.String())
			}
			ts = append(ts, name)
			return nil, errorf(name, "", "circular type: %v", strings.Join(ts, " -> "))
		}
	}
	def, ok := c.doc.Types[name]
	if !ok || def == nil {
		if len(seen) > 0 {
			last := seen[len(seen)-1]
			return nil, errorf(last.typ, last.field, "unknown type %q", name)
		}
		return nil, errorf(name, "", "unknown type")
	}

	entries := make([]schema.Entry, 0, len(def.Fields))
	for i, fd := range def.Fields {
		if fd == nil {
			return nil, errorf(name, fmt.Sprintf("#%d", i), "empty field")
		}
		e, err := c.entry(name, fd, append(seen, &routeNode{name, fd.Name}))
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	s, err := schema.New(name, entries...)
	if err != nil {
		return nil, err
	}

	bo, bit := c.byteOrder, c.bitOrder
	if def.ByteOrder != "" {
		if bo, err = bitio.ParseByteOrder(def.ByteOrder); err != nil {
			return nil, errorf(name, "", "%v", err)
		}
	}
	if def.BitOrder != "" {
		if bit, err = bitio.ParseBitOrder(def.BitOrder); err != nil {
			return nil, errorf(name, "", "%v", err)
		}
	}
	if bo != bitio.DefaultByteOrder || bit != bitio.DefaultBitOrder {
		s = s.WithOrder(bo, bit)
	}
	c.done[name] = s
	return s, nil
}

func (c *compiler) entry(typ string, fd *FieldDef, seen []*routeNode) (schema.Entry, error) {
	switch {
	case fd.Repeat != nil:
		if fd.Spec != "" || fd.Type != "" || fd.Default != nil || fd.Value != "" || fd.Update != "" {
			return nil, errorf(typ, fd.Name, "repeat takes only name, when and repeat")
		}
		return c.repeat(typ, fd, seen)
	case fd.Type != "":
		if fd.Spec != "" || fd.Default != nil || fd.Value != "" || fd.Update != "" {
			return nil, errorf(typ, fd.Name, "group takes only name, when and type")
		}
		sub, err := c.compile(fd.Type, seen)
		if err != nil {
			return nil, err
		}
		g := schema.GroupOf(fd.Name, sub)
		if fd.When != "" {
			p, err := compilePredicate(fd.When)
			if err != nil {
				return nil, errorf(typ, fd.Name, "when: %v", err)
			}
			g.If(p)
		}
		return g, nil
	}
	return c.field(typ, fd)
}

func (c *compiler) field(typ string, fd *FieldDef) (schema.Entry, error) {
	fs, err := parseSpec(typ, fd.Name, fd.Spec)
	if err != nil {
		return nil, err
	}
	f := &schema.Field{
		Name:      fd.Name,
		Width:     fs.bits,
		Signed:    fs.signed,
		ByteOrder: fs.byteOrder,
		BitOrder:  fs.bitOrder,
	}
	switch {
	case fs.temp:
		f.Role = schema.Temp
	case fs.magic != nil:
		f.Role, f.Const = schema.Magic, *fs.magic
	case fs.pad:
		f.Role = schema.Pad
	}
	if fd.When != "" {
		p, err := compilePredicate(fd.When)
		if err != nil {
			return nil, errorf(typ, fd.Name, "when: %v", err)
		}
		f.When = p
	}
	if fd.Default != nil {
		f.Default, f.HasDefault = *fd.Default, true
	} else if f.When != nil && (f.Role == schema.Magic || f.Role == schema.Pad) {
		f.HasDefault = true
	}
	if fd.Value != "" {
		if f.Value, err = compileExpr(fd.Value); err != nil {
			return nil, errorf(typ, fd.Name, "value: %v", err)
		}
	}
	if fd.Update != "" {
		if f.Update, err = compileExpr(fd.Update); err != nil {
			return nil, errorf(typ, fd.Name, "update: %v", err)
		}
	}
	return f, nil
}

func (c *compiler) repeat(typ string, fd *FieldDef, seen []*routeNode) (schema.Entry, error) {
	rd := fd.Repeat
	if rd.Type == "" {
		return nil, errorf(typ, fd.Name, "repeat without type")
	}
	elem, err := c.compile(rd.Type, seen)
	if err != nil {
		return nil, err
	}
	r := schema.RepeatOf(fd.Name, elem).Limit(rd.Max)
	if rd.Until != "" {
		p, err := compilePredicate(rd.Until)
		if err != nil {
			return nil, errorf(typ, fd.Name, "until: %v", err)
		}
		r.StopWhen(p)
	}
	if rd.Count != "" {
		e, err := compileExpr(rd.Count)
		if err != nil {
			return nil, errorf(typ, fd.Name, "count: %v", err)
		}
		r.Times(e)
	}
	if ct := rd.Continuation; ct != nil {
		r.Marker(ct.Field, ct.More, ct.Last)
	}
	if fd.When != "" {
		p, err := compilePredicate(fd.When)
		if err != nil {
			return nil, errorf(typ, fd.Name, "when: %v", err)
		}
		r.If(p)
	}
	return r, nil
}
