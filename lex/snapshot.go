package lex

import (
	"fmt"

	"github.com/dekarrin/rezi"

	"github.com/dekarrin/esox/diag"
)

// groupRun is the resumption state of a group-mode session: the stack of
// open groups, the buffered region text, and where the region started. It
// is what the default tokenizer parks in the reader's state store when a
// group is interrupted by the end of a non-final block.
//
// groupRun is binary-serializable so that a suspended streaming session
// can be checkpointed outside the process and resumed later.
type groupRun struct {
	Root     int
	Stack    []int
	Buf      []rune
	StartPos diag.Position
}

// MarshalBinary converts the run into bytes.
func (gr *groupRun) MarshalBinary() ([]byte, error) {
	var enc []byte

	enc = append(enc, rezi.EncInt(gr.Root)...)

	enc = append(enc, rezi.EncInt(len(gr.Stack))...)
	for _, s := range gr.Stack {
		enc = append(enc, rezi.EncInt(s)...)
	}

	enc = append(enc, rezi.EncString(string(gr.Buf))...)

	enc = append(enc, rezi.EncInt(gr.StartPos.Line)...)
	enc = append(enc, rezi.EncInt(gr.StartPos.Col)...)
	enc = append(enc, rezi.EncInt(gr.StartPos.Index)...)

	return enc, nil
}

// UnmarshalBinary fills the run from bytes produced by MarshalBinary.
func (gr *groupRun) UnmarshalBinary(data []byte) error {
	var n int
	var err error
	var offset int

	if gr.Root, n, err = rezi.DecInt(data[offset:]); err != nil {
		return fmt.Errorf("root: %w", err)
	}
	offset += n

	var stackLen int
	if stackLen, n, err = rezi.DecInt(data[offset:]); err != nil {
		return fmt.Errorf("stack length: %w", err)
	}
	offset += n
	gr.Stack = make([]int, stackLen)
	for i := range gr.Stack {
		if gr.Stack[i], n, err = rezi.DecInt(data[offset:]); err != nil {
			return fmt.Errorf("stack[%d]: %w", i, err)
		}
		offset += n
	}

	var buf string
	if buf, n, err = rezi.DecString(data[offset:]); err != nil {
		return fmt.Errorf("buffer: %w", err)
	}
	offset += n
	gr.Buf = []rune(buf)

	if gr.StartPos.Line, n, err = rezi.DecInt(data[offset:]); err != nil {
		return fmt.Errorf("start line: %w", err)
	}
	offset += n
	if gr.StartPos.Col, n, err = rezi.DecInt(data[offset:]); err != nil {
		return fmt.Errorf("start column: %w", err)
	}
	offset += n
	if gr.StartPos.Index, _, err = rezi.DecInt(data[offset:]); err != nil {
		return fmt.Errorf("start index: %w", err)
	}

	return nil
}

// CheckpointSuspension serializes the suspension state the given reader
// holds for tk, if any. It lets a caller persist a suspended streaming
// session and rebuild it later with RestoreSuspension.
func CheckpointSuspension(rd Reader, tk *DefaultTokenizer) ([]byte, bool) {
	v, ok := rd.State().Get(tk.key)
	if !ok {
		return nil, false
	}
	run := v.(*groupRun)
	return rezi.EncBinary(run), true
}

// RestoreSuspension reinstates a suspension snapshot produced by
// CheckpointSuspension into the given reader's state store.
func RestoreSuspension(rd Reader, tk *DefaultTokenizer, data []byte) error {
	run := &groupRun{}
	if _, err := rezi.DecBinary(data, run); err != nil {
		return fmt.Errorf("decoding suspension snapshot: %w", err)
	}
	rd.State().Set(tk.key, run)
	rd.SuspendTokenizer(tk)
	return nil
}
