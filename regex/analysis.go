package regex

// Nullable returns whether r can match the empty string. Tokenizer symbols
// with nullable regexes are rejected at build time since the tokenizer could
// never make progress on them.
func Nullable(r Regex) bool {
	switch n := r.(type) {
	case CharSet:
		return false
	case Literal:
		return len(n) == 0
	case Concat:
		for i := range n {
			if !Nullable(n[i]) {
				return false
			}
		}
		return true
	case Alt:
		for i := range n {
			if Nullable(n[i]) {
				return true
			}
		}
		return false
	case Loop:
		return n.Min == 0 || Nullable(n.Term)
	case CaseOverride:
		return Nullable(n.Term)
	case Void:
		return false
	default:
		panic("unknown regex node type")
	}
}

// Matchable returns whether r can match at least one string, including
// possibly the empty string. A regex whose every alternative reduces to
// Void is not matchable.
func Matchable(r Regex) bool {
	switch n := r.(type) {
	case CharSet:
		// an inverted set always leaves somefin matchable; a plain set
		// needs at least one range.
		return n.Inverted || len(n.Ranges) > 0
	case Literal:
		return true
	case Concat:
		for i := range n {
			if !Matchable(n[i]) {
				return false
			}
		}
		return true
	case Alt:
		if len(n) == 0 {
			return false
		}
		for i := range n {
			if Matchable(n[i]) {
				return true
			}
		}
		return false
	case Loop:
		return n.Min == 0 || Matchable(n.Term)
	case CaseOverride:
		return Matchable(n.Term)
	case Void:
		return false
	default:
		panic("unknown regex node type")
	}
}

// ContainsVoid returns whether any Void term appears anywhere in r.
func ContainsVoid(r Regex) bool {
	switch n := r.(type) {
	case CharSet, Literal:
		return false
	case Concat:
		for i := range n {
			if ContainsVoid(n[i]) {
				return true
			}
		}
		return false
	case Alt:
		for i := range n {
			if ContainsVoid(n[i]) {
				return true
			}
		}
		return false
	case Loop:
		return ContainsVoid(n.Term)
	case CaseOverride:
		return ContainsVoid(n.Term)
	case Void:
		return true
	default:
		panic("unknown regex node type")
	}
}
