package grammar

import "fmt"

// Associativity is how an operator precedence level breaks shift-reduce
// ties between operators of the same level.
type Associativity int

const (
	// AssocLeft resolves an equal-precedence tie towards reduce, making
	// operators group left: a-b-c is (a-b)-c.
	AssocLeft Associativity = iota

	// AssocRight resolves an equal-precedence tie towards shift, making
	// operators group right.
	AssocRight

	// AssocNone makes an equal-precedence tie a parse-time error; the
	// table entry becomes an error entry.
	AssocNone

	// AssocPrecedenceOnly participates in precedence comparison but
	// carries no associativity; an equal-precedence tie is left as a
	// conflict.
	AssocPrecedenceOnly
)

func (a Associativity) String() string {
	switch a {
	case AssocLeft:
		return "left"
	case AssocRight:
		return "right"
	case AssocNone:
		return "non-associative"
	case AssocPrecedenceOnly:
		return "precedence-only"
	default:
		return fmt.Sprintf("Associativity(%d)", int(a))
	}
}

// PrecLevel is one precedence level of an operator scope: an associativity
// plus the set of operators at that level. An operator is a *Terminal, a
// string (matched against literal terminal text), or any other value,
// which is treated as an opaque tag matched against production tags.
type PrecLevel struct {
	Assoc     Associativity
	Operators []any
}

// LeftAssoc builds a left-associative precedence level.
func LeftAssoc(ops ...any) PrecLevel {
	return PrecLevel{Assoc: AssocLeft, Operators: ops}
}

// RightAssoc builds a right-associative precedence level.
func RightAssoc(ops ...any) PrecLevel {
	return PrecLevel{Assoc: AssocRight, Operators: ops}
}

// NonAssoc builds a non-associative precedence level.
func NonAssoc(ops ...any) PrecLevel {
	return PrecLevel{Assoc: AssocNone, Operators: ops}
}

// PrecedenceOnly builds a level that takes part in precedence comparison
// but has no associativity of its own. Unary operators sharing a literal
// with a binary one use this together with production tags.
func PrecedenceOnly(ops ...any) PrecLevel {
	return PrecLevel{Assoc: AssocPrecedenceOnly, Operators: ops}
}

// OperatorScope is an ordered list of precedence levels, lowest precedence
// first. Level index is precedence: a level later in the list binds
// tighter.
type OperatorScope struct {
	Levels []PrecLevel
}
