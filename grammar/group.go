package grammar

// Group is a builder-side lexical group: a region of input opened by a
// start literal and closed by an end literal (or the end of a line), that
// produces at most one container token for the whole region. Comments are
// the classic case, but groups also cover things like raw string blocks.
//
// A Group with a terminal container is itself usable as a Symbol in
// production handles; it stands for its container terminal.
type Group struct {
	id   int
	name string

	start string
	end   string

	// line groups end at the next line break instead of an end literal.
	line bool

	container *Terminal

	noise         bool
	keepEnd       bool
	advanceByChar bool
	endsOnEOF     bool

	nesting []*Group
}

// SymName returns the display name of the group (and of its container
// token).
func (g *Group) SymName() string {
	return g.name
}

func (g *Group) builderID() int {
	if g.container == nil {
		return g.id
	}
	return g.container.builderID()
}

// AllowNesting permits the given groups to open inside this one. A group
// is never nestable inside itself unless explicitly listed.
func (g *Group) AllowNesting(inner ...*Group) *Group {
	g.nesting = append(g.nesting, inner...)
	return g
}

// KeepEndToken makes the group's end lexeme part of the container token.
// Without it, the end lexeme is left in the input for normal tokenization
// to pick up, which is what line comments want for their newline.
func (g *Group) KeepEndToken() *Group {
	g.keepEnd = true
	return g
}

// AdvanceByCharacter makes group mode advance a single character at a time
// when nothing interesting matches, instead of skipping the whole matched
// lexeme. Groups whose content can contain text that looks like other
// tokens need this.
func (g *Group) AdvanceByCharacter() *Group {
	g.advanceByChar = true
	return g
}

// EndsOnEndOfInput makes running out of input close the group instead of
// being an error.
func (g *Group) EndsOnEndOfInput() *Group {
	g.endsOnEOF = true
	return g
}

// Transform sets the transformer invoked on the container token's text.
// Only meaningful for groups with a terminal container.
func (g *Group) Transform(f Transformer) *Group {
	if g.container != nil {
		g.container.transform = f
	}
	return g
}
