package lex

import (
	"github.com/dekarrin/esox/automaton"
	"github.com/dekarrin/esox/diag"
	"github.com/dekarrin/esox/grammar"
	"github.com/dekarrin/esox/pack"
)

// DefaultTokenizer drives the packed DFA over a Reader. It is the
// tokenizer every parser ends its chain with.
type DefaultTokenizer struct {
	g *pack.Grammar

	// transforms is indexed by terminal; nil entries (or a nil slice,
	// used by syntax-only sessions) mean the token's value is its lexeme.
	transforms []grammar.Transformer

	// key is this instance's identity in reader state stores.
	key string

	// groupByStart maps a group start symbol index to its group. Start
	// symbols belong to exactly one group.
	groupByStart map[int]int
}

// NewDefaultTokenizer creates the DFA tokenizer for g. transforms is
// indexed by terminal index and may be nil to skip transformer invocation
// entirely.
func NewDefaultTokenizer(g *pack.Grammar, transforms []grammar.Transformer) *DefaultTokenizer {
	t := &DefaultTokenizer{
		g:            g,
		transforms:   transforms,
		key:          NewStateKey(),
		groupByStart: map[int]int{},
	}
	for i := range g.Groups {
		t.groupByStart[g.Groups[i].Start] = i
	}
	return t
}

// matchResult is one longest-match DFA run over a buffer.
type matchResult struct {
	// length is the length of the longest accepted prefix; -1 when no
	// accepting state was ever entered.
	length int
	accept pack.DFAAccept

	// ranOff is whether the run consumed the entire buffer without the
	// DFA failing; with more input the match could grow.
	ranOff bool

	// stuck is the DFA state the run was in when it stopped.
	stuck int
}

func (t *DefaultTokenizer) match(chars []rune) matchResult {
	res := matchResult{length: -1}

	cur := 0
	for i := 0; ; i++ {
		if len(t.g.DFA[cur].Accepts) > 0 && i > 0 {
			res.length = i
			res.accept = t.g.DFA[cur].Accepts[0]
		}
		if i == len(chars) {
			res.ranOff = true
			res.stuck = cur
			return res
		}
		next := automaton.Step(t.g.DFA, cur, chars[i])
		if next == pack.FailureTarget {
			res.stuck = cur
			return res
		}
		cur = next
	}
}

// abbreviate cuts an error lexeme down to at most 20 characters, stopping
// at the first line break, whichever comes first.
func abbreviate(chars []rune) string {
	n := len(chars)
	if n > 20 {
		n = 20
	}
	for i := 0; i < n; i++ {
		if chars[i] == '\n' || chars[i] == '\r' {
			n = i
			break
		}
	}
	return string(chars[:n])
}

func (t *DefaultTokenizer) suspend(rd Reader) Outcome {
	rd.SuspendTokenizer(t)
	return Outcome{Kind: OutSuspend}
}

// NextToken implements Tokenizer.
func (t *DefaultTokenizer) NextToken(rd Reader, ctx *grammar.RunContext) Outcome {
	// a suspended group session resumes before anyfin else
	if v, ok := rd.State().Get(t.key); ok {
		rd.State().Delete(t.key)
		run := v.(*groupRun)
		out, noiseDone := t.groupLoop(rd, ctx, run)
		if !noiseDone {
			return out
		}
		// the group region was noise; fall through to normal matching
	}

	for {
		chars := rd.RemainingCharacters()
		if len(chars) == 0 {
			if rd.IsFinalBlock() {
				return Outcome{Kind: OutEOF}
			}
			return t.suspend(rd)
		}

		m := t.match(chars)
		if m.ranOff && !rd.IsFinalBlock() {
			// the match could still grow; a token at the very end of a
			// non-final block must not be emitted yet
			return t.suspend(rd)
		}

		if m.length < 0 {
			pos := rd.Position()
			d := diag.NewAt(diag.SeverityError, diag.CodeLexicalError, diag.LexicalError{
				TokenText:      abbreviate(chars),
				TokenizerState: m.stuck,
			}, pos)
			return Outcome{Kind: OutError, Err: &d}
		}

		lexeme := string(chars[:m.length])
		pos := rd.Position()

		switch m.accept.Symbol.Kind {
		case grammar.KindNoise:
			rd.Consume(m.length)
			continue

		case grammar.KindTerminal:
			value, errOut := t.transformValue(ctx, m.accept.Symbol.Index, lexeme, pos)
			if errOut != nil {
				return *errOut
			}
			rd.Consume(m.length)
			return Outcome{Kind: OutToken, Token: Token{
				Symbol: m.accept.Symbol,
				Lexeme: lexeme,
				Value:  value,
				Pos:    pos,
			}}

		case grammar.KindGroupStart:
			gi := t.groupByStart[m.accept.Symbol.Index]
			run := &groupRun{Root: gi, Stack: []int{gi}, StartPos: pos}
			run.Buf = append(run.Buf, chars[:m.length]...)
			rd.Consume(m.length)
			out, noiseDone := t.groupLoop(rd, ctx, run)
			if !noiseDone {
				return out
			}
			continue

		case grammar.KindGroupEnd:
			// a group end with no group open. Line ends are shared noise
			// at the top level; any other stray end is a lexical error.
			if lexeme == "\n" || lexeme == "\r\n" {
				rd.Consume(m.length)
				continue
			}
			d := diag.NewAt(diag.SeverityError, diag.CodeLexicalError, diag.LexicalError{
				TokenText:      abbreviate(chars),
				TokenizerState: m.stuck,
			}, pos)
			return Outcome{Kind: OutError, Err: &d}

		default:
			panic("malformed grammar: DFA accepts a non-tokenizer symbol")
		}
	}
}

func (t *DefaultTokenizer) transformValue(ctx *grammar.RunContext, termIdx int, lexeme string, pos diag.Position) (any, *Outcome) {
	if t.transforms == nil || t.transforms[termIdx] == nil {
		return lexeme, nil
	}

	ctx.Pos = pos
	v, err := t.transforms[termIdx](ctx, lexeme)
	if err != nil {
		d := diag.NewAt(diag.SeverityError, diag.CodeUserDiagnostic, diag.UserDiagnostic{Value: err}, pos)
		out := Outcome{Kind: OutError, Err: &d}
		return nil, &out
	}
	return v, nil
}

// groupLoop runs group mode until the group stack empties, input runs
// out, or the session suspends. The second return is true when the
// finished region was noise and normal tokenization should continue.
func (t *DefaultTokenizer) groupLoop(rd Reader, ctx *grammar.RunContext, run *groupRun) (Outcome, bool) {
	g := t.g

	for {
		grp := &g.Groups[run.Stack[len(run.Stack)-1]]

		chars := rd.RemainingCharacters()
		if len(chars) == 0 {
			if !rd.IsFinalBlock() {
				rd.State().Set(t.key, run)
				return t.suspend(rd), false
			}

			// pop every group that is allowed to end at end of input
			for len(run.Stack) > 0 && g.Groups[run.Stack[len(run.Stack)-1]].EndsOnEndOfInput {
				run.Stack = run.Stack[:len(run.Stack)-1]
			}
			if len(run.Stack) > 0 {
				innermost := g.Groups[run.Stack[len(run.Stack)-1]].Name
				d := diag.NewAt(diag.SeverityError, diag.CodeUnexpectedEndOfInputInGroup,
					diag.UnexpectedEndOfInputInGroup{GroupName: innermost}, rd.Position())
				return Outcome{Kind: OutError, Err: &d}, false
			}
			return t.emitGroup(rd, ctx, run)
		}

		m := t.match(chars)
		if m.ranOff && !rd.IsFinalBlock() {
			rd.State().Set(t.key, run)
			return t.suspend(rd), false
		}

		if m.length >= 0 && m.accept.Symbol.Kind == grammar.KindGroupEnd && m.accept.Symbol.Index == grp.End {
			if grp.KeepEndToken {
				run.Buf = append(run.Buf, chars[:m.length]...)
				rd.Consume(m.length)
			}
			run.Stack = run.Stack[:len(run.Stack)-1]
			if len(run.Stack) == 0 {
				return t.emitGroup(rd, ctx, run)
			}
			continue
		}

		if m.length >= 0 && m.accept.Symbol.Kind == grammar.KindGroupStart {
			inner, isStart := t.groupByStart[m.accept.Symbol.Index]
			if isStart && containsInt(grp.Nesting, inner) {
				run.Stack = append(run.Stack, inner)
				run.Buf = append(run.Buf, chars[:m.length]...)
				rd.Consume(m.length)
				continue
			}
		}

		// nofin structural matched; advance through group content
		advance := 1
		if !grp.AdvanceByCharacter && m.length > 0 {
			advance = m.length
		}
		run.Buf = append(run.Buf, chars[:advance]...)
		rd.Consume(advance)
	}
}

func (t *DefaultTokenizer) emitGroup(rd Reader, ctx *grammar.RunContext, run *groupRun) (Outcome, bool) {
	grp := &t.g.Groups[run.Root]

	if grp.IsNoise {
		return Outcome{}, true
	}

	lexeme := string(run.Buf)
	value, errOut := t.transformValue(ctx, grp.Container.Index, lexeme, run.StartPos)
	if errOut != nil {
		return *errOut, false
	}

	return Outcome{Kind: OutToken, Token: Token{
		Symbol: grp.Container,
		Lexeme: lexeme,
		Value:  value,
		Pos:    run.StartPos,
	}}, false
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
