package parse

import (
	"sort"

	"github.com/dekarrin/esox/diag"
	"github.com/dekarrin/esox/grammar"
	"github.com/dekarrin/esox/internal/util"
	"github.com/dekarrin/esox/lex"
	"github.com/dekarrin/esox/pack"
)

// Status is the result of driving a parse as far as the available input
// allows.
type Status int

const (
	// StatusDone means the parse accepted; the result is available.
	StatusDone Status = iota

	// StatusNeedMoreInput means the session suspended waiting for the
	// caller to feed another chunk.
	StatusNeedMoreInput

	// StatusFailed means the session ended with a diagnostic.
	StatusFailed
)

// Driver is one LR parse session: the state and semantic-value stacks plus
// the tokenizer chain feeding it. A Driver is single-owner and mutated in
// place; create one per parse.
//
// The shift-reduce loop is the one of Algorithm 4.44, "LR-parsing
// algorithm", from the purple dragon book.
type Driver struct {
	g      *pack.Grammar
	fusers []grammar.Fuser
	chain  *lex.Chain
	rd     lex.Reader
	ctx    *grammar.RunContext

	states util.Stack[int]
	values util.Stack[any]

	pending *lex.Token

	syntaxOnly bool

	result any
	err    *diag.Diagnostic
}

// NewDriver creates a parse session over rd. fusers is indexed by
// production and may be nil (first-member semantics everywhere), which is
// also what syntax-only sessions pass together with syntaxOnly.
func NewDriver(g *pack.Grammar, fusers []grammar.Fuser, chain *lex.Chain, rd lex.Reader, userState any, syntaxOnly bool) *Driver {
	d := &Driver{
		g:          g,
		fusers:     fusers,
		chain:      chain,
		rd:         rd,
		ctx:        &grammar.RunContext{State: userState},
		syntaxOnly: syntaxOnly,
	}
	d.states.Push(0)
	return d
}

// Result returns the final semantic value after a StatusDone run.
func (d *Driver) Result() any {
	return d.result
}

// Err returns the diagnostic that ended a StatusFailed run.
func (d *Driver) Err() *diag.Diagnostic {
	return d.err
}

// Run drives the session until it accepts, fails, or exhausts the buffered
// input of a non-final block. Call it again after feeding more input when
// it returns StatusNeedMoreInput.
func (d *Driver) Run() Status {
	for {
		if d.pending == nil {
			out := d.chain.Next(d.rd, d.ctx)
			switch out.Kind {
			case lex.OutSuspend:
				return StatusNeedMoreInput
			case lex.OutError:
				d.err = d.enrich(out.Err)
				return StatusFailed
			case lex.OutEOF:
				return d.finishEOF()
			case lex.OutToken:
				tok := out.Token
				d.pending = &tok
			}
		}

		tok := *d.pending
		act := d.actionFor(d.states.Peek(), d.g.TokenID(tok.Symbol))

		switch act.Kind {
		case pack.LRShift:
			d.values.Push(tok.Value)
			d.states.Push(act.Payload)
			d.pending = nil
		case pack.LRReduce:
			if !d.reduce(act.Payload, tok.Pos) {
				return StatusFailed
			}
			// the token is not advanced past; it gets another look from
			// the new state
		default:
			state := d.states.Peek()
			dg := diag.NewAt(diag.SeverityError, diag.CodeSyntaxError, diag.SyntaxError{
				Actual:      d.g.TokenName(d.g.TokenID(tok.Symbol)),
				Expected:    d.expectedTokens(state),
				ParserState: state,
			}, tok.Pos)
			d.err = &dg
			return StatusFailed
		}
	}
}

// finishEOF plays out the EOF column: reductions until accept or error.
func (d *Driver) finishEOF() Status {
	for {
		act := d.g.LALR[d.states.Peek()].EOF

		switch act.Kind {
		case pack.LRReduce:
			if !d.reduce(act.Payload, d.rd.Position()) {
				return StatusFailed
			}
		case pack.LRAccept:
			if !d.values.Empty() {
				d.result = d.values.Peek()
			}
			return StatusDone
		default:
			state := d.states.Peek()
			dg := diag.NewAt(diag.SeverityError, diag.CodeSyntaxError, diag.SyntaxError{
				Actual:      "(EOF)",
				Expected:    d.expectedTokens(state),
				ParserState: state,
			}, d.rd.Position())
			d.err = &dg
			return StatusFailed
		}
	}
}

// reduce pops one handle's worth of entries off both stacks, fuses the
// member values, and pushes the head. Returns false when the fuser
// reported an error.
func (d *Driver) reduce(prodIdx int, pos diag.Position) bool {
	prod := &d.g.Productions[prodIdx]
	n := len(prod.Handle)

	members := make([]any, n)
	for i := n - 1; i >= 0; i-- {
		members[i] = d.values.Pop()
		d.states.Pop()
	}

	var value any
	if d.syntaxOnly || d.fusers == nil || d.fusers[prodIdx] == nil {
		if n > 0 {
			value = members[0]
		}
	} else {
		d.ctx.Pos = pos
		v, err := d.fusers[prodIdx](d.ctx, members)
		if err != nil {
			dg := diag.NewAt(diag.SeverityError, diag.CodeUserDiagnostic,
				diag.UserDiagnostic{Value: err}, pos)
			d.err = &dg
			return false
		}
		value = v
	}

	top := d.states.Peek()
	gotoState, ok := d.gotoFor(top, prod.Head)
	if !ok {
		// only a malformed packed grammar can get here
		panic("malformed grammar: GOTO has no entry for a reduced nonterminal")
	}

	d.values.Push(value)
	d.states.Push(gotoState)
	return true
}

func (d *Driver) actionFor(state, token int) pack.LRAction {
	acts := d.g.LALR[state].Actions
	idx := sort.Search(len(acts), func(i int) bool {
		return acts[i].Token >= token
	})
	if idx < len(acts) && acts[idx].Token == token {
		return acts[idx].Action
	}
	return pack.LRAction{Kind: pack.LRError}
}

func (d *Driver) gotoFor(state, nt int) (int, bool) {
	gotos := d.g.LALR[state].Gotos
	idx := sort.Search(len(gotos), func(i int) bool {
		return gotos[i].Nonterminal >= nt
	})
	if idx < len(gotos) && gotos[idx].Nonterminal == nt {
		return gotos[idx].State, true
	}
	return 0, false
}

// expectedTokens lists the display names of the tokens permitted in the
// given state, excluding hidden ones.
func (d *Driver) expectedTokens(state int) []string {
	var names []string
	for _, a := range d.g.LALR[state].Actions {
		if a.Action.Kind == pack.LRError {
			continue
		}
		if d.g.TokenHidden(a.Token) {
			continue
		}
		names = append(names, d.g.TokenName(a.Token))
	}
	return names
}

// enrich adds the expected-token list and parser state to a tokenizer
// error before it surfaces.
func (d *Driver) enrich(err *diag.Diagnostic) *diag.Diagnostic {
	if lexErr, ok := err.Message.(diag.LexicalError); ok {
		state := d.states.Peek()
		lexErr.Expected = d.expectedTokens(state)
		lexErr.ParserState = state
		enriched := *err
		enriched.Message = lexErr
		return &enriched
	}
	return err
}
