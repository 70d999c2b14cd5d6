package grammar

import "github.com/dekarrin/esox/diag"

// RunContext is handed to every semantic callback invocation. It carries the
// position the engine was at and whatever per-session state the caller
// supplied when starting the parse; the engine itself never looks inside
// State.
type RunContext struct {
	// Pos is the position of the lexeme (for transformers) or of the token
	// that triggered the reduction (for fusers).
	Pos diag.Position

	// State is the caller-supplied session state.
	State any
}

// Transformer converts a matched lexeme into the semantic value of a
// terminal. Returning a non-nil error aborts the parse session with a
// UserDiagnostic at the current position.
type Transformer func(ctx *RunContext, lexeme string) (any, error)

// Fuser combines the semantic values of a production's members into the
// value of its head. members has exactly one entry per symbol of the
// handle, in handle order. Returning a non-nil error aborts the parse
// session with a UserDiagnostic at the current position.
type Fuser func(ctx *RunContext, members []any) (any, error)

// TextOf is a Transformer that yields the lexeme itself.
func TextOf(_ *RunContext, lexeme string) (any, error) {
	return lexeme, nil
}

// DiscardText is a Transformer that yields nil; use it for terminals whose
// text carries no meaning, like keywords and punctuation.
func DiscardText(_ *RunContext, _ string) (any, error) {
	return nil, nil
}

// FirstMember is a Fuser that yields the value of the first member of the
// handle, or nil for an empty handle.
func FirstMember(_ *RunContext, members []any) (any, error) {
	if len(members) == 0 {
		return nil, nil
	}
	return members[0], nil
}
