// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package requirement

// GroupKind says how the tokens of a Group combine.
type GroupKind int

const (
	// All means every token is required.
	All GroupKind = iota

	// Any means one token satisfies the group.
	Any
)

func (k GroupKind) String() string {
	if k == Any {
		return "any"
	}
	return "all"
}

// Group is a run of tokens sharing one combination rule.
type Group struct {
	Kind   GroupKind
	Tokens []Token
}

// Groups partitions the sequence. Each maximal run of OR-joined tokens
// becomes one Any group; consecutive tokens outside such runs are collected
// into All groups. "A and B or C" yields All{A}, Any{B, C}.
func (s Sequence) Groups() []Group {
	var groups []Group

	for i := 0; i < len(s); {
		j := i + 1
		for j < len(s) && s[j].Join == Or {
			j++
		}

		if j-i > 1 {
			groups = append(groups, Group{
				Kind:   Any,
				Tokens: append([]Token(nil), s[i:j]...),
			})
		} else if n := len(groups); n > 0 && groups[n-1].Kind == All {
			groups[n-1].Tokens = append(groups[n-1].Tokens, s[i])
		} else {
			groups = append(groups, Group{Kind: All, Tokens: []Token{s[i]}})
		}

		i = j
	}

	return groups
}
