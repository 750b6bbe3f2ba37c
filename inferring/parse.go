package inferring

import (
	"strconv"
	"strings"
	"text/scanner"

	"github.com/benbjohnson/immutable"
	"github.com/pkg/errors"
)

// ParseType reads a type written the way TypeData.String prints it:
//
//	type     := primary suffix*
//	primary  := (name | '\' className) children?
//	children := '<' type '>' | '{' entry (',' entry)* '}' | '(' type (',' type)* ')'
//	entry    := ('*' | ['-'] int | string) ':' type
//	suffix   := '|' 'false' | '!'
//
// Classes must already be declared in u.Classes.
// The returned type is a fresh tree owned by the caller, stamped with generation 0.
func (u *Universe) ParseType(src string) (TypeData, error) {
	p := &typeParser{u: u, a: newArena(u)}
	p.s.Init(strings.NewReader(src))
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanStrings
	p.s.Error = func(s *scanner.Scanner, msg string) {
		p.fail("%s", msg)
	}
	p.next()

	root := p.parseType(noNode)
	if p.err == nil && p.tok != scanner.EOF {
		p.fail("unexpected %s after type", p.describe())
	}
	if p.err != nil {
		return TypeData{}, errors.Wrapf(p.err, "parsing type %q", src)
	}
	p.proxyErrors()
	return TypeData{a: p.a, id: root}, nil
}

// MustParseType is ParseType for types known to be well-formed, such as in tests
func (u *Universe) MustParseType(src string) TypeData {
	t, err := u.ParseType(src)
	if err != nil {
		panic(err)
	}
	return t
}

type typeParser struct {
	u   *Universe
	a   *arena
	s   scanner.Scanner
	tok rune
	err error
}

// proxyErrors lets error flags written in the source reach the parents the proxy
// predicate allows, as if the type had been built by merging.
// Children always come after their parent in the arena, so one backwards pass suffices.
func (p *typeParser) proxyErrors() {
	for id := nodeID(len(p.a.nodes) - 1); id >= 0; id-- {
		n := &p.a.nodes[id]
		if n.flags&FlagError == 0 || n.parent == noNode {
			continue
		}
		if p.u.proxyError(TypeData{a: p.a, id: id}, TypeData{a: p.a, id: n.parent}) {
			p.a.nodes[n.parent].flags |= FlagError
		}
	}
}

func (p *typeParser) next() {
	p.tok = p.s.Scan()
}

func (p *typeParser) fail(format string, args ...any) {
	if p.err == nil {
		p.err = errors.Errorf("%s: "+format, append([]any{p.s.Position.Column}, args...)...)
	}
}

func (p *typeParser) describe() string {
	if p.tok == scanner.EOF {
		return "end of input"
	}
	return strconv.Quote(p.s.TokenText())
}

func (p *typeParser) expect(tok rune) bool {
	if p.tok != tok {
		p.fail("expected %q, found %s", tok, p.describe())
		return false
	}
	p.next()
	return true
}

func (p *typeParser) parseType(parent nodeID) nodeID {
	id := p.parsePrimary(parent)
	if p.err != nil {
		return id
	}
	for {
		switch p.tok {
		case '|':
			p.next()
			if p.tok != scanner.Ident || p.s.TokenText() != "false" {
				p.fail("expected false after '|', found %s", p.describe())
				return id
			}
			p.next()
			p.a.nodes[id].flags |= FlagOrFalse
		case '!':
			p.next()
			p.a.nodes[id].flags |= FlagError
		default:
			return id
		}
	}
}

func (p *typeParser) parsePrimary(parent nodeID) nodeID {
	ptype, class := PUnknown, NoClass
	switch p.tok {
	case '\\':
		p.next()
		if p.tok != scanner.Ident {
			p.fail("expected class name, found %s", p.describe())
			return noNode
		}
		c, ok := p.u.Classes.Lookup(p.s.TokenText())
		if !ok {
			p.fail("undeclared class %s", p.s.TokenText())
			return noNode
		}
		ptype, class = PClass, c
	case scanner.Ident:
		pt, ok := ParsePrimitiveType(p.s.TokenText())
		if !ok {
			p.fail("unknown type %s", p.describe())
			return noNode
		}
		ptype = pt
	default:
		p.fail("expected a type, found %s", p.describe())
		return noNode
	}
	p.next()

	var flags Flags
	if ptype == PError {
		flags = FlagError
	}
	id := p.a.newNode(ptype, class, flags, parent, 0)

	switch p.tok {
	case '<':
		p.next()
		child := p.parseType(id)
		p.a.nodes[id].anyKey = child
		p.expect('>')
	case '(':
		p.next()
		for i := int64(0); p.err == nil; i++ {
			child := p.parseType(id)
			p.setSubkey(id, p.u.Keys.IntKey(i), child)
			if p.tok != ',' {
				break
			}
			p.next()
		}
		p.expect(')')
	case '{':
		p.next()
		for p.err == nil {
			p.parseEntry(id)
			if p.tok != ',' {
				break
			}
			p.next()
		}
		p.expect('}')
	}
	return id
}

func (p *typeParser) parseEntry(id nodeID) {
	var k Key
	switch p.tok {
	case '*':
		k = AnyKey()
	case '-', scanner.Int:
		sign := ""
		if p.tok == '-' {
			sign = "-"
			p.next()
		}
		i, err := strconv.ParseInt(sign+p.s.TokenText(), 10, 64)
		if p.tok != scanner.Int || err != nil || i < minIntKey || i > maxIntKey {
			p.fail("expected an integer key, found %s", p.describe())
			return
		}
		k = p.u.Keys.IntKey(i)
	case scanner.String:
		s, err := strconv.Unquote(p.s.TokenText())
		if err != nil {
			p.fail("malformed string key %s", p.describe())
			return
		}
		k = p.u.Keys.StringKey(s)
	default:
		p.fail("expected a key, found %s", p.describe())
		return
	}
	p.next()
	if !p.expect(':') {
		return
	}
	if p.a.child(id, k) != noNode {
		p.fail("duplicate key %s", p.u.keyLiteral(k))
		return
	}
	child := p.parseType(id)
	if p.err != nil {
		return
	}
	if k.IsAny() {
		p.a.nodes[id].anyKey = child
		return
	}
	p.setSubkey(id, k, child)
}

func (p *typeParser) setSubkey(id nodeID, k Key, child nodeID) {
	if child == noNode {
		return
	}
	n := &p.a.nodes[id]
	if n.subkeys == nil {
		n.subkeys = immutable.NewSortedMap[Key, nodeID](keyComparer{})
	}
	n.subkeys = n.subkeys.Set(k, child)
}
