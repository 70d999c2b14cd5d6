package pack

import (
	"bytes"
	"encoding/binary"
	"io"
)

// Magic is the 8-byte signature at the start of every grammar file.
var Magic = [8]byte{'E', 'S', 'O', 'X', 'G', 'R', 'A', 'M'}

// CurrentVersion is the grammar file format version this package writes.
// It is also the only version it reads.
const CurrentVersion uint16 = 1

// entry tags of the binary format's tagged union.
const (
	tagEmpty  byte = 0
	tagByte   byte = 1
	tagBool   byte = 2
	tagUint16 byte = 3
	tagUint32 byte = 4
	tagString byte = 5
)

// entryWriter accumulates the entries of one record.
type entryWriter struct {
	buf bytes.Buffer
}

func (ew *entryWriter) empty() {
	ew.buf.WriteByte(tagEmpty)
}

func (ew *entryWriter) byteVal(v byte) {
	ew.buf.WriteByte(tagByte)
	ew.buf.WriteByte(v)
}

func (ew *entryWriter) boolVal(v bool) {
	ew.buf.WriteByte(tagBool)
	if v {
		ew.buf.WriteByte(1)
	} else {
		ew.buf.WriteByte(0)
	}
}

func (ew *entryWriter) uint16Val(v uint16) {
	ew.buf.WriteByte(tagUint16)
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	ew.buf.Write(b[:])
}

func (ew *entryWriter) uint32Val(v uint32) {
	ew.buf.WriteByte(tagUint32)
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	ew.buf.Write(b[:])
}

func (ew *entryWriter) stringVal(s string) {
	ew.buf.WriteByte(tagString)
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(len(s)))
	ew.buf.Write(b[:])
	ew.buf.WriteString(s)
}

// intVal writes a possibly-negative index as a u32, using the all-ones
// sentinel for -1.
func (ew *entryWriter) intVal(v int) {
	if v < 0 {
		ew.uint32Val(0xFFFFFFFF)
		return
	}
	ew.uint32Val(uint32(v))
}

func writeRecord(w io.Writer, ew *entryWriter) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(ew.buf.Len()))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(ew.buf.Bytes())
	return err
}

// stringTable interns the strings of a grammar for writing.
type stringTable struct {
	strings []string
	index   map[string]uint32
}

func newStringTable() *stringTable {
	return &stringTable{index: map[string]uint32{}}
}

func (st *stringTable) ref(s string) uint32 {
	if idx, ok := st.index[s]; ok {
		return idx
	}
	idx := uint32(len(st.strings))
	st.strings = append(st.strings, s)
	st.index[s] = idx
	return idx
}

// Write serializes g to w in the binary grammar format. The output is
// deterministic: logically equal grammars produce identical bytes.
func Write(w io.Writer, g *Grammar) error {
	if _, err := w.Write(Magic[:]); err != nil {
		return err
	}
	var verBuf [2]byte
	binary.LittleEndian.PutUint16(verBuf[:], CurrentVersion)
	if _, err := w.Write(verBuf[:]); err != nil {
		return err
	}

	// the string table is referenced by every record after it, so intern
	// everything up front. Interning happens in section order, which is
	// what makes the writer deterministic.
	st := newStringTable()
	for i := range g.Terminals {
		st.ref(g.Terminals[i].Name)
	}
	for _, s := range g.Noise {
		st.ref(s)
	}
	for _, s := range g.GroupStarts {
		st.ref(s)
	}
	for _, s := range g.GroupEnds {
		st.ref(s)
	}
	for _, s := range g.Nonterminals {
		st.ref(s)
	}
	for _, s := range g.Virtuals {
		st.ref(s)
	}
	for i := range g.Groups {
		st.ref(g.Groups[i].Name)
	}

	// properties
	ew := &entryWriter{}
	ew.stringVal(g.Name)
	ew.boolVal(g.CaseSensitive)
	ew.stringVal(g.Source)
	if err := writeRecord(w, ew); err != nil {
		return err
	}

	// string table
	ew = &entryWriter{}
	ew.uint32Val(uint32(len(st.strings)))
	for _, s := range st.strings {
		ew.stringVal(s)
	}
	if err := writeRecord(w, ew); err != nil {
		return err
	}

	// symbol tables, one record per kind
	ew = &entryWriter{}
	ew.uint32Val(uint32(len(g.Terminals)))
	for i := range g.Terminals {
		ew.uint32Val(st.ref(g.Terminals[i].Name))
		ew.boolVal(g.Terminals[i].Hidden)
	}
	if err := writeRecord(w, ew); err != nil {
		return err
	}

	for _, names := range [][]string{g.Noise, g.GroupStarts, g.GroupEnds, g.Nonterminals, g.Virtuals} {
		ew = &entryWriter{}
		ew.uint32Val(uint32(len(names)))
		for _, s := range names {
			ew.uint32Val(st.ref(s))
		}
		if err := writeRecord(w, ew); err != nil {
			return err
		}
	}

	// groups
	ew = &entryWriter{}
	ew.uint32Val(uint32(len(g.Groups)))
	for i := range g.Groups {
		gr := &g.Groups[i]
		ew.uint32Val(st.ref(gr.Name))
		ew.byteVal(byte(gr.Container.Kind))
		ew.intVal(gr.Container.Index)
		ew.uint32Val(uint32(gr.Start))
		ew.uint32Val(uint32(gr.End))
		ew.boolVal(gr.EndsOnEndOfInput)
		ew.boolVal(gr.KeepEndToken)
		ew.boolVal(gr.AdvanceByCharacter)
		ew.boolVal(gr.IsNoise)
		ew.uint32Val(uint32(len(gr.Nesting)))
		for _, n := range gr.Nesting {
			ew.uint32Val(uint32(n))
		}
	}
	if err := writeRecord(w, ew); err != nil {
		return err
	}

	// productions
	ew = &entryWriter{}
	ew.uint32Val(uint32(len(g.Productions)))
	ew.uint32Val(uint32(g.Start))
	for i := range g.Productions {
		p := &g.Productions[i]
		ew.uint32Val(uint32(p.Head))
		ew.uint32Val(uint32(len(p.Handle)))
		for _, ref := range p.Handle {
			ew.byteVal(byte(ref.Kind))
			ew.uint32Val(uint32(ref.Index))
		}
	}
	if err := writeRecord(w, ew); err != nil {
		return err
	}

	// DFA states
	ew = &entryWriter{}
	ew.uint32Val(uint32(len(g.DFA)))
	for i := range g.DFA {
		s := &g.DFA[i]
		ew.uint32Val(uint32(len(s.Transitions)))
		for _, t := range s.Transitions {
			ew.uint32Val(uint32(t.Lo))
			ew.uint32Val(uint32(t.Hi))
			ew.intVal(t.Target)
		}
		ew.intVal(s.Default)
		ew.uint32Val(uint32(len(s.Accepts)))
		for _, a := range s.Accepts {
			ew.byteVal(byte(a.Priority))
			ew.byteVal(byte(a.Symbol.Kind))
			ew.uint32Val(uint32(a.Symbol.Index))
		}
	}
	if err := writeRecord(w, ew); err != nil {
		return err
	}

	// LALR states
	ew = &entryWriter{}
	ew.uint32Val(uint32(len(g.LALR)))
	for i := range g.LALR {
		s := &g.LALR[i]
		ew.uint32Val(uint32(len(s.Actions)))
		for _, a := range s.Actions {
			ew.uint32Val(uint32(a.Token))
			ew.byteVal(byte(a.Action.Kind))
			ew.intVal(a.Action.Payload)
		}
		ew.byteVal(byte(s.EOF.Kind))
		ew.intVal(s.EOF.Payload)
		ew.uint32Val(uint32(len(s.Gotos)))
		for _, gt := range s.Gotos {
			ew.uint32Val(uint32(gt.Nonterminal))
			ew.uint32Val(uint32(gt.State))
		}
	}
	return writeRecord(w, ew)
}

// Encode serializes g to a byte slice.
func Encode(g *Grammar) []byte {
	var buf bytes.Buffer
	// writing to a bytes.Buffer cannot fail
	_ = Write(&buf, g)
	return buf.Bytes()
}
