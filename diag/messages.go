package diag

import (
	"fmt"
	"strings"

	"github.com/dekarrin/esox/internal/util"
)

// EmptyNonterminal reports a nonterminal that was reachable from the start
// symbol but never had productions set on it.
type EmptyNonterminal struct {
	Name string
}

func (m EmptyNonterminal) String() string {
	return fmt.Sprintf("nonterminal %q has no productions", m.Name)
}

// DuplicateProduction reports two productions with the same head and the
// same handle.
type DuplicateProduction struct {
	Head   string
	Handle []string
}

func (m DuplicateProduction) String() string {
	return fmt.Sprintf("production %s -> %s is defined more than once", m.Head, strings.Join(m.Handle, " "))
}

// DuplicateSpecialName reports two symbols within the same kind sharing a
// name.
type DuplicateSpecialName struct {
	Name string
}

func (m DuplicateSpecialName) String() string {
	return fmt.Sprintf("the name %q is used by more than one symbol", m.Name)
}

// NullableSymbol reports a tokenizer symbol whose regex can match the empty
// string. The tokenizer would never make progress on such a symbol.
type NullableSymbol struct {
	Name string
}

func (m NullableSymbol) String() string {
	return fmt.Sprintf("symbol %q can match the empty string", m.Name)
}

// IndistinguishableSymbols reports tokenizer symbols the DFA cannot tell
// apart; some input would be accepted by all of them at the same priority.
type IndistinguishableSymbols struct {
	// Names has one entry per colliding symbol, already disambiguated by
	// kind where two kinds share a name (e.g. "Comment (Noise)").
	Names []string
}

func (m IndistinguishableSymbols) String() string {
	return fmt.Sprintf("cannot distinguish between symbols %s", util.MakeTextList(append([]string(nil), m.Names...), "and"))
}

// LrConflictKind is which flavor of LALR table conflict occured.
type LrConflictKind int

const (
	ConflictShiftReduce LrConflictKind = iota
	ConflictReduceReduce
	ConflictAcceptReduce
)

func (k LrConflictKind) String() string {
	switch k {
	case ConflictShiftReduce:
		return "shift-reduce"
	case ConflictReduceReduce:
		return "reduce-reduce"
	case ConflictAcceptReduce:
		return "accept-reduce"
	default:
		return fmt.Sprintf("LrConflictKind(%d)", int(k))
	}
}

// LrConflict reports a conflict left in the LALR table after precedence
// resolution had its chance.
type LrConflict struct {
	Kind LrConflictKind

	// State is the index of the conflicting parser state.
	State int

	// Terminal is the display name of the lookahead terminal, or "(EOF)"
	// when the conflict is on the end-of-input column.
	Terminal string

	// Items describes the conflicting actions in human terms.
	Items []string
}

func (m LrConflict) String() string {
	s := fmt.Sprintf("%s conflict in state %d on %s", m.Kind, m.State, m.Terminal)
	if len(m.Items) > 0 {
		s += ": " + strings.Join(m.Items, "; ")
	}
	return s
}

// DfaStateLimitExceeded reports that DFA construction was abandoned after
// producing more states than the configured cap.
type DfaStateLimitExceeded struct {
	Max int
}

func (m DfaStateLimitExceeded) String() string {
	return fmt.Sprintf("tokenizer needs more than the maximum allowed %d DFA states", m.Max)
}

// RegexContainsVoid warns that a regex which can still match something
// contains a Void term, so the part of the regex that passes through that
// term can never participate in a match. A regex that cannot match anything
// is reported as RegexUnmatchable instead.
type RegexContainsVoid struct {
	Symbol string
}

func (m RegexContainsVoid) String() string {
	return fmt.Sprintf("regex for %q contains a void term that can never match", m.Symbol)
}

// RegexUnmatchable warns that every alternative of a symbol's regex reduces
// to Void; the symbol can never be produced by the tokenizer.
type RegexUnmatchable struct {
	Symbol string
}

func (m RegexUnmatchable) String() string {
	return fmt.Sprintf("regex for %q cannot match any input", m.Symbol)
}

// InvalidMagic reports that a stream handed to the grammar reader does not
// start with the grammar file magic number.
type InvalidMagic struct{}

func (m InvalidMagic) String() string {
	return "not a grammar file (bad magic number)"
}

// UnsupportedVersion reports a grammar file written by an unknown version of
// the format.
type UnsupportedVersion struct {
	Version uint16
}

func (m UnsupportedVersion) String() string {
	return fmt.Sprintf("grammar file format version %d is not supported", m.Version)
}

// TruncatedRecord reports a grammar file that ended in the middle of a
// record.
type TruncatedRecord struct {
	Section string
}

func (m TruncatedRecord) String() string {
	if m.Section == "" {
		return "grammar file ends in the middle of a record"
	}
	return fmt.Sprintf("grammar file ends in the middle of the %s section", m.Section)
}

// UnknownEntryTag reports an entry inside a record whose tag byte is not one
// the format defines.
type UnknownEntryTag struct {
	Tag byte
}

func (m UnknownEntryTag) String() string {
	return fmt.Sprintf("grammar file record contains entry with unknown tag 0x%02x", m.Tag)
}

// LexicalError reports input that the tokenizer could not match against any
// symbol.
type LexicalError struct {
	// TokenText is the abbreviated lexeme that failed to tokenize, cut at 20
	// characters or the first line break, whichever comes first.
	TokenText string

	// TokenizerState is the DFA state the tokenizer was in when it gave up.
	TokenizerState int

	// Expected and ParserState are filled in by the parser before the
	// error surfaces: the tokens the parser would have accepted and the
	// LALR state it was in. A bare tokenizer leaves them zero.
	Expected    []string
	ParserState int
}

func (m LexicalError) String() string {
	return fmt.Sprintf("cannot tokenize input starting at %q", m.TokenText)
}

// UnexpectedEndOfInputInGroup reports input that ended while a group that
// does not end on end of input was still open.
type UnexpectedEndOfInputInGroup struct {
	GroupName string
}

func (m UnexpectedEndOfInputInGroup) String() string {
	return fmt.Sprintf("input ended before %s was closed", m.GroupName)
}

// SyntaxError reports a token the parser was not prepared to see in its
// current state.
type SyntaxError struct {
	// Actual is the display name of the offending token, or "(EOF)" when
	// input ended where more was needed.
	Actual string

	// Expected lists the display names of the tokens the parser would have
	// accepted, excluding ones flagged hidden.
	Expected []string

	// ParserState is the LALR state the parser was in.
	ParserState int
}

func (m SyntaxError) String() string {
	if len(m.Expected) == 0 {
		return fmt.Sprintf("unexpected %s", m.Actual)
	}
	return fmt.Sprintf("unexpected %s; expected %s", m.Actual, util.MakeTextList(append([]string(nil), m.Expected...), "or"))
}

// UserDiagnostic carries a value produced by a user-supplied semantic
// callback that reported an error.
type UserDiagnostic struct {
	Value any
}

func (m UserDiagnostic) String() string {
	return fmt.Sprintf("%v", m.Value)
}
