package pack

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/dekarrin/esox/diag"
	"github.com/dekarrin/esox/grammar"
)

func formatErr(code diag.Code, msg diag.Message) error {
	return diag.New(diag.SeverityError, code, msg)
}

// entryReader walks the entries of one record body.
type entryReader struct {
	body    []byte
	pos     int
	section string
}

func (er *entryReader) truncated() error {
	return formatErr(diag.CodeTruncatedRecord, diag.TruncatedRecord{Section: er.section})
}

func (er *entryReader) tag(want byte) error {
	if er.pos >= len(er.body) {
		return er.truncated()
	}
	got := er.body[er.pos]
	if got > tagString {
		return formatErr(diag.CodeUnknownEntryTag, diag.UnknownEntryTag{Tag: got})
	}
	if got != want {
		return er.truncated()
	}
	er.pos++
	return nil
}

func (er *entryReader) take(n int) ([]byte, error) {
	if er.pos+n > len(er.body) {
		return nil, er.truncated()
	}
	b := er.body[er.pos : er.pos+n]
	er.pos += n
	return b, nil
}

func (er *entryReader) byteVal() (byte, error) {
	if err := er.tag(tagByte); err != nil {
		return 0, err
	}
	b, err := er.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (er *entryReader) boolVal() (bool, error) {
	if err := er.tag(tagBool); err != nil {
		return false, err
	}
	b, err := er.take(1)
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

func (er *entryReader) uint32Val() (uint32, error) {
	if err := er.tag(tagUint32); err != nil {
		return 0, err
	}
	b, err := er.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// intVal reads a u32 entry with the all-ones sentinel mapped back to -1.
func (er *entryReader) intVal() (int, error) {
	v, err := er.uint32Val()
	if err != nil {
		return 0, err
	}
	if v == 0xFFFFFFFF {
		return -1, nil
	}
	return int(v), nil
}

func (er *entryReader) stringVal() (string, error) {
	if err := er.tag(tagString); err != nil {
		return "", err
	}
	lenB, err := er.take(4)
	if err != nil {
		return "", err
	}
	n := binary.LittleEndian.Uint32(lenB)
	b, err := er.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// stringRef reads a u32 string-table reference and resolves it.
func (er *entryReader) stringRef(table []string) (string, error) {
	idx, err := er.uint32Val()
	if err != nil {
		return "", err
	}
	if int(idx) >= len(table) {
		return "", er.truncated()
	}
	return table[idx], nil
}

func readRecord(r io.Reader, section string) (*entryReader, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, formatErr(diag.CodeTruncatedRecord, diag.TruncatedRecord{Section: section})
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, formatErr(diag.CodeTruncatedRecord, diag.TruncatedRecord{Section: section})
	}
	return &entryReader{body: body, section: section}, nil
}

// Read deserializes a grammar from the binary grammar format. Format
// problems are reported as diag.Diagnostic error values carrying one of
// the format codes.
func Read(r io.Reader) (*Grammar, error) {
	var magicBuf [8]byte
	if _, err := io.ReadFull(r, magicBuf[:]); err != nil {
		return nil, formatErr(diag.CodeInvalidMagic, diag.InvalidMagic{})
	}
	if !bytes.Equal(magicBuf[:], Magic[:]) {
		return nil, formatErr(diag.CodeInvalidMagic, diag.InvalidMagic{})
	}

	var verBuf [2]byte
	if _, err := io.ReadFull(r, verBuf[:]); err != nil {
		return nil, formatErr(diag.CodeTruncatedRecord, diag.TruncatedRecord{Section: "header"})
	}
	version := binary.LittleEndian.Uint16(verBuf[:])
	if version != CurrentVersion {
		return nil, formatErr(diag.CodeUnsupportedVersion, diag.UnsupportedVersion{Version: version})
	}

	g := &Grammar{}

	// properties
	er, err := readRecord(r, "properties")
	if err != nil {
		return nil, err
	}
	if g.Name, err = er.stringVal(); err != nil {
		return nil, err
	}
	if g.CaseSensitive, err = er.boolVal(); err != nil {
		return nil, err
	}
	if g.Source, err = er.stringVal(); err != nil {
		return nil, err
	}

	// string table
	er, err = readRecord(r, "string table")
	if err != nil {
		return nil, err
	}
	strCount, err := er.uint32Val()
	if err != nil {
		return nil, err
	}
	table := make([]string, strCount)
	for i := range table {
		if table[i], err = er.stringVal(); err != nil {
			return nil, err
		}
	}

	// terminals
	er, err = readRecord(r, "terminals")
	if err != nil {
		return nil, err
	}
	termCount, err := er.uint32Val()
	if err != nil {
		return nil, err
	}
	if termCount > 0 {
		g.Terminals = make([]Terminal, termCount)
	}
	for i := range g.Terminals {
		if g.Terminals[i].Name, err = er.stringRef(table); err != nil {
			return nil, err
		}
		if g.Terminals[i].Hidden, err = er.boolVal(); err != nil {
			return nil, err
		}
	}

	// the remaining name-only symbol tables, in kind order
	for _, dest := range []*[]string{&g.Noise, &g.GroupStarts, &g.GroupEnds, &g.Nonterminals, &g.Virtuals} {
		er, err = readRecord(r, "symbols")
		if err != nil {
			return nil, err
		}
		count, err := er.uint32Val()
		if err != nil {
			return nil, err
		}
		var names []string
		if count > 0 {
			names = make([]string, count)
		}
		for i := range names {
			if names[i], err = er.stringRef(table); err != nil {
				return nil, err
			}
		}
		*dest = names
	}

	// groups
	er, err = readRecord(r, "groups")
	if err != nil {
		return nil, err
	}
	groupCount, err := er.uint32Val()
	if err != nil {
		return nil, err
	}
	if groupCount > 0 {
		g.Groups = make([]Group, groupCount)
	}
	for i := range g.Groups {
		gr := &g.Groups[i]
		if gr.Name, err = er.stringRef(table); err != nil {
			return nil, err
		}
		kindB, err := er.byteVal()
		if err != nil {
			return nil, err
		}
		gr.Container.Kind = grammar.SymbolKind(kindB)
		if gr.Container.Index, err = er.intVal(); err != nil {
			return nil, err
		}
		startU, err := er.uint32Val()
		if err != nil {
			return nil, err
		}
		gr.Start = int(startU)
		endU, err := er.uint32Val()
		if err != nil {
			return nil, err
		}
		gr.End = int(endU)
		if gr.EndsOnEndOfInput, err = er.boolVal(); err != nil {
			return nil, err
		}
		if gr.KeepEndToken, err = er.boolVal(); err != nil {
			return nil, err
		}
		if gr.AdvanceByCharacter, err = er.boolVal(); err != nil {
			return nil, err
		}
		if gr.IsNoise, err = er.boolVal(); err != nil {
			return nil, err
		}
		nestCount, err := er.uint32Val()
		if err != nil {
			return nil, err
		}
		if nestCount > 0 {
			gr.Nesting = make([]int, nestCount)
		}
		for j := range gr.Nesting {
			v, err := er.uint32Val()
			if err != nil {
				return nil, err
			}
			gr.Nesting[j] = int(v)
		}
	}

	// productions
	er, err = readRecord(r, "productions")
	if err != nil {
		return nil, err
	}
	prodCount, err := er.uint32Val()
	if err != nil {
		return nil, err
	}
	startU, err := er.uint32Val()
	if err != nil {
		return nil, err
	}
	g.Start = int(startU)
	if prodCount > 0 {
		g.Productions = make([]Production, prodCount)
	}
	for i := range g.Productions {
		p := &g.Productions[i]
		headU, err := er.uint32Val()
		if err != nil {
			return nil, err
		}
		p.Head = int(headU)
		handleLen, err := er.uint32Val()
		if err != nil {
			return nil, err
		}
		if handleLen > 0 {
			p.Handle = make([]grammar.SymbolRef, handleLen)
		}
		for j := range p.Handle {
			kindB, err := er.byteVal()
			if err != nil {
				return nil, err
			}
			idxU, err := er.uint32Val()
			if err != nil {
				return nil, err
			}
			p.Handle[j] = grammar.SymbolRef{Kind: grammar.SymbolKind(kindB), Index: int(idxU)}
		}
	}

	// DFA states
	er, err = readRecord(r, "dfa")
	if err != nil {
		return nil, err
	}
	dfaCount, err := er.uint32Val()
	if err != nil {
		return nil, err
	}
	if dfaCount > 0 {
		g.DFA = make([]DFAState, dfaCount)
	}
	for i := range g.DFA {
		s := &g.DFA[i]
		transCount, err := er.uint32Val()
		if err != nil {
			return nil, err
		}
		if transCount > 0 {
			s.Transitions = make([]DFATransition, transCount)
		}
		for j := range s.Transitions {
			loU, err := er.uint32Val()
			if err != nil {
				return nil, err
			}
			hiU, err := er.uint32Val()
			if err != nil {
				return nil, err
			}
			target, err := er.intVal()
			if err != nil {
				return nil, err
			}
			s.Transitions[j] = DFATransition{Lo: rune(loU), Hi: rune(hiU), Target: target}
		}
		if s.Default, err = er.intVal(); err != nil {
			return nil, err
		}
		acceptCount, err := er.uint32Val()
		if err != nil {
			return nil, err
		}
		if acceptCount > 0 {
			s.Accepts = make([]DFAAccept, acceptCount)
		}
		for j := range s.Accepts {
			prio, err := er.byteVal()
			if err != nil {
				return nil, err
			}
			kindB, err := er.byteVal()
			if err != nil {
				return nil, err
			}
			idxU, err := er.uint32Val()
			if err != nil {
				return nil, err
			}
			s.Accepts[j] = DFAAccept{
				Priority: int(prio),
				Symbol:   grammar.SymbolRef{Kind: grammar.SymbolKind(kindB), Index: int(idxU)},
			}
		}
	}

	// LALR states
	er, err = readRecord(r, "lalr")
	if err != nil {
		return nil, err
	}
	lalrCount, err := er.uint32Val()
	if err != nil {
		return nil, err
	}
	if lalrCount > 0 {
		g.LALR = make([]LRState, lalrCount)
	}
	for i := range g.LALR {
		s := &g.LALR[i]
		actCount, err := er.uint32Val()
		if err != nil {
			return nil, err
		}
		if actCount > 0 {
			s.Actions = make([]TermAction, actCount)
		}
		for j := range s.Actions {
			tokU, err := er.uint32Val()
			if err != nil {
				return nil, err
			}
			kindB, err := er.byteVal()
			if err != nil {
				return nil, err
			}
			payload, err := er.intVal()
			if err != nil {
				return nil, err
			}
			s.Actions[j] = TermAction{Token: int(tokU), Action: LRAction{Kind: LRActionKind(kindB), Payload: payload}}
		}
		eofKind, err := er.byteVal()
		if err != nil {
			return nil, err
		}
		eofPayload, err := er.intVal()
		if err != nil {
			return nil, err
		}
		s.EOF = LRAction{Kind: LRActionKind(eofKind), Payload: eofPayload}
		gotoCount, err := er.uint32Val()
		if err != nil {
			return nil, err
		}
		if gotoCount > 0 {
			s.Gotos = make([]NTGoto, gotoCount)
		}
		for j := range s.Gotos {
			ntU, err := er.uint32Val()
			if err != nil {
				return nil, err
			}
			stU, err := er.uint32Val()
			if err != nil {
				return nil, err
			}
			s.Gotos[j] = NTGoto{Nonterminal: int(ntU), State: int(stU)}
		}
	}

	return g, nil
}

// Decode deserializes a grammar from a byte slice.
func Decode(data []byte) (*Grammar, error) {
	return Read(bytes.NewReader(data))
}
