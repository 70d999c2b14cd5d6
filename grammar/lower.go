package grammar

import (
	"fmt"
	"strings"

	"github.com/dekarrin/esox/diag"
	"github.com/dekarrin/esox/regex"
)

// Lower resolves and numbers the grammar as declared so far, walking from
// the given start nonterminal. It returns the lowered Definition and every
// diagnostic found on the way; the Definition is nil if any diagnostic is
// at error severity. Warnings are also forwarded to the builder's logger.
//
// Lowering freezes the builder; further declarations on a successfully
// lowered builder are a caller bug and will not be picked up.
func (b *Builder) Lower(start *Nonterminal) (*Definition, []diag.Diagnostic) {
	var diags []diag.Diagnostic

	// 1. collect reachable symbols via BFS from the start symbol.
	reachNTs, usedTerms := b.walk(start)

	// 2. number terminals, noise, group starts/ends, nonterminals. Noise
	// symbols and groups are lexical-layer constructs and are always
	// active; everything else must be reachable.
	def := &Definition{
		Name:          b.name,
		Source:        b.source,
		CaseSensitive: b.caseSensitive,
	}
	lw := regex.NewLowerer()

	termIndex := map[int]int{}
	virtIndex := map[int]int{}
	ntIndex := map[int]int{}

	isContainer := map[int]bool{}
	for _, g := range b.groups {
		if g.container != nil {
			isContainer[g.container.id] = true
		}
	}

	for _, t := range b.terminals {
		switch t.kind {
		case KindTerminal:
			if !usedTerms[t.id] && !isContainer[t.id] {
				continue
			}
			termIndex[t.id] = len(def.Terminals)
			td := TerminalDef{
				Name:      t.name,
				Transform: t.transform,
				Hidden:    t.hidden,
			}
			if t.pattern != nil {
				low := lw.Lower(t.pattern, b.caseSensitive)
				td.Pattern = &low
				diags = append(diags, b.regexDiags(t.name, t.pattern)...)
			}
			def.Terminals = append(def.Terminals, td)
		case KindNoise:
			low := lw.Lower(t.pattern, b.caseSensitive)
			def.Noise = append(def.Noise, NoiseDef{Name: t.name, Pattern: &low})
			diags = append(diags, b.regexDiags(t.name, t.pattern)...)
		case KindVirtual:
			if !usedTerms[t.id] {
				continue
			}
			virtIndex[t.id] = len(def.Virtuals)
			def.Virtuals = append(def.Virtuals, VirtualDef{Name: t.name})
		}
	}

	for _, nt := range reachNTs {
		ntIndex[nt.id] = len(def.Nonterminals)
		def.Nonterminals = append(def.Nonterminals, NonterminalDef{Name: nt.name})
	}
	def.Start = ntIndex[start.id]

	// 3. groups: start symbols must be unique per group; end symbols are
	// shared where their text (or line-ness) is equal.
	diags = append(diags, b.lowerGroups(def, lw, termIndex)...)

	// 4. validate names, productions, and tokenizer regexes.
	diags = append(diags, b.checkNames(def)...)
	diags = append(diags, b.checkNullable(def)...)

	prodDiags := b.lowerProductions(def, reachNTs, termIndex, virtIndex, ntIndex)
	diags = append(diags, prodDiags...)

	// 5. lower the operator scope, if any.
	if b.opScope != nil {
		diags = append(diags, b.lowerPrecedence(def, termIndex)...)
	}

	for _, d := range diags {
		if d.Severity == diag.SeverityWarning {
			b.logf("warning: %s", d.Message)
		}
	}

	if diag.HasErrors(diags) {
		return nil, diags
	}

	b.frozen = true
	return def, diags
}

// walk BFSes the production graph from start, returning reachable
// nonterminals in discovery order and the set of terminal/virtual builder
// ids used in any reachable handle.
func (b *Builder) walk(start *Nonterminal) ([]*Nonterminal, map[int]bool) {
	seen := map[int]bool{start.id: true}
	used := map[int]bool{}
	order := []*Nonterminal{start}

	queue := []*Nonterminal{start}
	for len(queue) > 0 {
		nt := queue[0]
		queue = queue[1:]

		for _, p := range nt.prods {
			for _, item := range p.items {
				switch sym := item.(type) {
				case *Terminal:
					if sym.kind == KindNoise {
						panic(fmt.Sprintf("noise symbol %q used in a production of %q", sym.name, nt.name))
					}
					used[sym.id] = true
				case *Group:
					if sym.noise {
						panic(fmt.Sprintf("noise group %q used in a production of %q", sym.name, nt.name))
					}
					used[sym.container.id] = true
				case *Nonterminal:
					if !seen[sym.id] {
						seen[sym.id] = true
						order = append(order, sym)
						queue = append(queue, sym)
					}
				default:
					panic(fmt.Sprintf("unknown symbol type in a production of %q", nt.name))
				}
			}
		}
	}

	return order, used
}

var lineEndPattern = regex.AnyOf(regex.Literal("\r\n"), regex.Literal("\n"))

func (b *Builder) lowerGroups(def *Definition, lw *regex.Lowerer, termIndex map[int]int) []diag.Diagnostic {
	var diags []diag.Diagnostic

	startByText := map[string]int{}
	endByText := map[string]int{}
	lineEnd := -1

	for _, g := range b.groups {
		gd := GroupDef{
			Name:               g.name,
			EndsOnEndOfInput:   g.endsOnEOF,
			KeepEndToken:       g.keepEnd,
			AdvanceByCharacter: g.advanceByChar,
			IsNoise:            g.noise,
		}

		if g.noise {
			gd.Container = SymbolRef{Kind: KindNoise, Index: -1}
		} else {
			gd.Container = SymbolRef{Kind: KindTerminal, Index: termIndex[g.container.id]}
		}

		if prev, ok := startByText[g.start]; ok {
			diags = append(diags, diag.New(diag.SeverityError, diag.CodeDuplicateSpecialName,
				diag.DuplicateSpecialName{Name: def.GroupStarts[prev].Name}))
			gd.Start = prev
		} else {
			low := lw.Lower(regex.Literal(g.start), b.caseSensitive)
			gd.Start = len(def.GroupStarts)
			startByText[g.start] = gd.Start
			def.GroupStarts = append(def.GroupStarts, GroupSymbolDef{
				Name:    fmt.Sprintf("%q start", g.start),
				Pattern: &low,
			})
		}

		if g.line {
			if lineEnd < 0 {
				low := lw.Lower(lineEndPattern, true)
				lineEnd = len(def.GroupEnds)
				def.GroupEnds = append(def.GroupEnds, GroupSymbolDef{
					Name:    "NewLine",
					Pattern: &low,
				})
			}
			gd.End = lineEnd
		} else if prev, ok := endByText[g.end]; ok {
			gd.End = prev
		} else {
			low := lw.Lower(regex.Literal(g.end), b.caseSensitive)
			gd.End = len(def.GroupEnds)
			endByText[g.end] = gd.End
			def.GroupEnds = append(def.GroupEnds, GroupSymbolDef{
				Name:    fmt.Sprintf("%q end", g.end),
				Pattern: &low,
			})
		}

		def.Groups = append(def.Groups, gd)
	}

	// nesting resolves by group declaration order, which matches the
	// numbering above.
	groupNum := map[int]int{}
	for i, g := range b.groups {
		groupNum[g.id] = i
	}
	for i, g := range b.groups {
		for _, inner := range g.nesting {
			def.Groups[i].Nesting = append(def.Groups[i].Nesting, groupNum[inner.id])
		}
	}

	return diags
}

func (b *Builder) checkNames(def *Definition) []diag.Diagnostic {
	var diags []diag.Diagnostic

	check := func(names []string) {
		seen := map[string]bool{}
		reported := map[string]bool{}
		for _, n := range names {
			if seen[n] && !reported[n] {
				reported[n] = true
				diags = append(diags, diag.New(diag.SeverityError, diag.CodeDuplicateSpecialName,
					diag.DuplicateSpecialName{Name: n}))
			}
			seen[n] = true
		}
	}

	var termNames, noiseNames, ntNames, virtNames []string
	for i := range def.Terminals {
		termNames = append(termNames, def.Terminals[i].Name)
	}
	for i := range def.Noise {
		noiseNames = append(noiseNames, def.Noise[i].Name)
	}
	for i := range def.Nonterminals {
		ntNames = append(ntNames, def.Nonterminals[i].Name)
	}
	for i := range def.Virtuals {
		virtNames = append(virtNames, def.Virtuals[i].Name)
	}
	check(termNames)
	check(noiseNames)
	check(ntNames)
	check(virtNames)

	return diags
}

func (b *Builder) checkNullable(def *Definition) []diag.Diagnostic {
	var diags []diag.Diagnostic

	for _, ts := range def.TokenizerSymbols() {
		if regex.Nullable(ts.Pattern.Term) {
			diags = append(diags, diag.New(diag.SeverityError, diag.CodeNullableSymbol,
				diag.NullableSymbol{Name: ts.Name}))
		}
	}

	return diags
}

func (b *Builder) regexDiags(symName string, r regex.Regex) []diag.Diagnostic {
	var diags []diag.Diagnostic

	if !regex.Matchable(r) {
		diags = append(diags, diag.New(diag.SeverityWarning, diag.CodeRegexUnmatchable,
			diag.RegexUnmatchable{Symbol: symName}))
	} else if regex.ContainsVoid(r) {
		diags = append(diags, diag.New(diag.SeverityWarning, diag.CodeRegexContainsVoid,
			diag.RegexContainsVoid{Symbol: symName}))
	}

	return diags
}

func (b *Builder) lowerProductions(def *Definition, reachNTs []*Nonterminal, termIndex, virtIndex, ntIndex map[int]int) []diag.Diagnostic {
	var diags []diag.Diagnostic

	def.ProdsByHead = make([][]int, len(def.Nonterminals))
	seenProds := map[string]bool{}

	for _, nt := range reachNTs {
		head := ntIndex[nt.id]

		if !nt.prodsSet || len(nt.prods) == 0 {
			diags = append(diags, diag.New(diag.SeverityError, diag.CodeEmptyNonterminal,
				diag.EmptyNonterminal{Name: nt.name}))
			continue
		}

		for _, p := range nt.prods {
			pd := ProductionDef{
				Head:    head,
				Fuse:    p.fuse,
				PrecTag: p.precTag,
			}

			var handleNames []string
			var keyParts []string
			for _, item := range p.items {
				var ref SymbolRef
				switch sym := item.(type) {
				case *Terminal:
					if sym.kind == KindVirtual {
						ref = SymbolRef{Kind: KindVirtual, Index: virtIndex[sym.id]}
					} else {
						ref = SymbolRef{Kind: KindTerminal, Index: termIndex[sym.id]}
					}
				case *Group:
					ref = SymbolRef{Kind: KindTerminal, Index: termIndex[sym.container.id]}
				case *Nonterminal:
					ref = SymbolRef{Kind: KindNonterminal, Index: ntIndex[sym.id]}
				}
				pd.Handle = append(pd.Handle, ref)
				handleNames = append(handleNames, item.SymName())
				keyParts = append(keyParts, ref.String())
			}

			key := fmt.Sprintf("%d:%s", head, strings.Join(keyParts, " "))
			if seenProds[key] {
				diags = append(diags, diag.New(diag.SeverityError, diag.CodeDuplicateProduction,
					diag.DuplicateProduction{Head: nt.name, Handle: handleNames}))
				continue
			}
			seenProds[key] = true

			def.ProdsByHead[head] = append(def.ProdsByHead[head], len(def.Productions))
			def.Productions = append(def.Productions, pd)
		}
	}

	return diags
}

func (b *Builder) lowerPrecedence(def *Definition, termIndex map[int]int) []diag.Diagnostic {
	var diags []diag.Diagnostic

	for _, level := range b.opScope.Levels {
		ld := PrecLevelDef{Assoc: level.Assoc}
		for _, op := range level.Operators {
			switch o := op.(type) {
			case *Terminal:
				if idx, ok := termIndex[o.id]; ok {
					ld.Operators = append(ld.Operators, PrecOperator{Terminal: idx})
				} else {
					b.logf("operator terminal %q is unreachable and takes part in no conflict resolution", o.name)
				}
			case *Group:
				if idx, ok := termIndex[o.container.id]; ok {
					ld.Operators = append(ld.Operators, PrecOperator{Terminal: idx})
				}
			case string:
				t, isLit := b.literals[o]
				if isLit {
					if idx, numbered := termIndex[t.id]; numbered {
						ld.Operators = append(ld.Operators, PrecOperator{Terminal: idx})
						continue
					}
				}
				// not a known literal; treat it as an opaque tag.
				ld.Operators = append(ld.Operators, PrecOperator{Terminal: -1, Tag: o})
			default:
				ld.Operators = append(ld.Operators, PrecOperator{Terminal: -1, Tag: op})
			}
		}
		def.Precedence = append(def.Precedence, ld)
	}

	return diags
}
