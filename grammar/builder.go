package grammar

import (
	"fmt"

	"github.com/dekarrin/esox/regex"
)

// Builder accumulates the declarations of a grammar. It is mutable until a
// lowering succeeds, hands out symbol handles whose cycles live in arena
// ids rather than pointer ownership, and is not safe for concurrent use.
type Builder struct {
	name          string
	source        string
	caseSensitive bool
	logger        func(msg string)

	nextID int

	terminals    []*Terminal
	nonterminals []*Nonterminal
	groups       []*Group

	// literal terminals dedup'd by exact text
	literals map[string]*Terminal

	opScope *OperatorScope

	frozen bool
}

// NewBuilder creates a Builder for a grammar with the given display name.
// Grammars are case-sensitive by default.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:          name,
		caseSensitive: true,
		literals:      map[string]*Terminal{},
	}
}

// SetCaseSensitive sets the grammar-level case-sensitivity flag consulted
// during regex lowering. Individual regex subtrees can override it with
// regex.CaseSensitive.
func (b *Builder) SetCaseSensitive(sensitive bool) *Builder {
	b.caseSensitive = sensitive
	return b
}

// SetSource sets the source marker recorded in the grammar's properties,
// typically the path or tool that the grammar definition came from.
func (b *Builder) SetSource(marker string) *Builder {
	b.source = marker
	return b
}

// SetLogger sets the sink that warnings and build notices are written to.
// With no logger set they are dropped.
func (b *Builder) SetLogger(fn func(msg string)) *Builder {
	b.logger = fn
	return b
}

func (b *Builder) logf(format string, args ...interface{}) {
	if b.logger != nil {
		b.logger(fmt.Sprintf(format, args...))
	}
}

func (b *Builder) takeID() int {
	id := b.nextID
	b.nextID++
	return id
}

// Terminal declares a terminal with the given name, pattern, and
// transformer. A nil transformer produces the lexeme text as the token's
// value.
func (b *Builder) Terminal(name string, pattern regex.Regex, transform Transformer) *Terminal {
	t := &Terminal{
		id:        b.takeID(),
		name:      name,
		pattern:   pattern,
		transform: transform,
		kind:      KindTerminal,
	}
	b.terminals = append(b.terminals, t)
	return t
}

// Noise declares a symbol the tokenizer matches and discards without ever
// delivering it to the parser. Whitespace is the usual one.
func (b *Builder) Noise(name string, pattern regex.Regex) *Terminal {
	t := &Terminal{
		id:      b.takeID(),
		name:    name,
		pattern: pattern,
		kind:    KindNoise,
	}
	b.terminals = append(b.terminals, t)
	return t
}

// VirtualTerminal declares a terminal with no regex. The built-in tokenizer
// never produces it; only user-supplied tokenizers in the chain can emit
// it.
func (b *Builder) VirtualTerminal(name string) *Terminal {
	t := &Terminal{
		id:   b.takeID(),
		name: name,
		kind: KindVirtual,
	}
	b.terminals = append(b.terminals, t)
	return t
}

// Literal declares a terminal matching the given text exactly. Two Literal
// calls with equal text return the same terminal. The terminal's value is
// nil; literals are punctuation and keywords, whose meaning is their
// presence.
func (b *Builder) Literal(text string) *Terminal {
	if t, ok := b.literals[text]; ok {
		return t
	}

	t := &Terminal{
		id:          b.takeID(),
		name:        fmt.Sprintf("%q", text),
		pattern:     regex.Literal(text),
		transform:   DiscardText,
		kind:        KindTerminal,
		literalText: text,
		fromLiteral: true,
	}
	b.terminals = append(b.terminals, t)
	b.literals[text] = t
	return t
}

// Nonterminal declares a nonterminal with the given name. Attach its
// productions afterwards with SetProductions.
func (b *Builder) Nonterminal(name string) *Nonterminal {
	nt := &Nonterminal{
		id:    b.takeID(),
		name:  name,
		owner: b,
	}
	b.nonterminals = append(b.nonterminals, nt)
	return nt
}

// BlockGroup declares a group opened by the start literal and closed by the
// end literal, producing one container token with the region's text. The
// container is a terminal usable in productions via the returned Group.
func (b *Builder) BlockGroup(name, start, end string) *Group {
	g := &Group{
		id:      b.takeID(),
		name:    name,
		start:   start,
		end:     end,
		keepEnd: true,
	}
	g.container = &Terminal{
		id:   b.takeID(),
		name: name,
		kind: KindTerminal,
	}
	b.terminals = append(b.terminals, g.container)
	b.groups = append(b.groups, g)
	return g
}

// LineGroup declares a group opened by the start literal and closed by the
// next line break or the end of input, producing one container token.
func (b *Builder) LineGroup(name, start string) *Group {
	g := &Group{
		id:        b.takeID(),
		name:      name,
		start:     start,
		line:      true,
		endsOnEOF: true,
	}
	g.container = &Terminal{
		id:   b.takeID(),
		name: name,
		kind: KindTerminal,
	}
	b.terminals = append(b.terminals, g.container)
	b.groups = append(b.groups, g)
	return g
}

// AddLineComment declares a noise line group: everything from the start
// literal to the next line break is matched and discarded. The line break
// itself is left in the input.
func (b *Builder) AddLineComment(start string) *Group {
	g := &Group{
		id:        b.takeID(),
		name:      "Comment Line",
		start:     start,
		line:      true,
		noise:     true,
		endsOnEOF: true,
	}
	b.groups = append(b.groups, g)
	return g
}

// AddBlockComment declares a noise block group delimited by the start and
// end literals.
func (b *Builder) AddBlockComment(start, end string) *Group {
	g := &Group{
		id:      b.takeID(),
		name:    "Comment Block",
		start:   start,
		end:     end,
		noise:   true,
		keepEnd: true,
	}
	b.groups = append(b.groups, g)
	return g
}

// SetOperatorScope sets the operator precedence table used to resolve
// shift-reduce conflicts during LALR construction. Levels are given lowest
// precedence first.
func (b *Builder) SetOperatorScope(levels ...PrecLevel) *Builder {
	b.opScope = &OperatorScope{Levels: levels}
	return b
}
