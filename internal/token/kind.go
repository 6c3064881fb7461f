package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// LParen represents a plain opening parenthesis.
	LParen // (
	// ArrayParen represents the array subexpression opener.
	ArrayParen // @(
	// SubexprParen represents the subexpression opener.
	SubexprParen // $(
	// LBrace represents a plain opening brace.
	LBrace // {
	// HashBrace represents the hashtable literal opener.
	HashBrace // @{
	// VarBrace represents the braced variable opener.
	VarBrace // ${
	// LBracket represents an opening square bracket.
	LBracket // [

	// RParen represents a closing parenthesis.
	RParen // )
	// RBrace represents a closing brace.
	RBrace // }
	// RBracket represents a closing square bracket.
	RBracket // ]

	// Comment represents a single-line comment.
	Comment // # ...
	// BlockCommentOpen represents the block comment opener.
	BlockCommentOpen // <#
	// BlockCommentClose represents the block comment closer.
	BlockCommentClose // #>
	// RegionOpen represents a region marker comment.
	RegionOpen // #region ...
	// RegionClose represents an end-of-region marker comment.
	RegionClose // #endregion ...

	// HereStringOpenDouble represents the double-quoted here-string opener.
	HereStringOpenDouble // @"
	// HereStringOpenSingle represents the single-quoted here-string opener.
	HereStringOpenSingle // @'
	// HereStringCloseDouble represents the double-quoted here-string closer.
	HereStringCloseDouble // "@
	// HereStringCloseSingle represents the single-quoted here-string closer.
	HereStringCloseSingle // '@

	// Text represents any other run of source text.
	Text
)

var kindNames = [...]string{
	Invalid:               "Invalid",
	EOF:                   "EOF",
	LParen:                "LParen",
	ArrayParen:            "ArrayParen",
	SubexprParen:          "SubexprParen",
	LBrace:                "LBrace",
	HashBrace:             "HashBrace",
	VarBrace:              "VarBrace",
	LBracket:              "LBracket",
	RParen:                "RParen",
	RBrace:                "RBrace",
	RBracket:              "RBracket",
	Comment:               "Comment",
	BlockCommentOpen:      "BlockCommentOpen",
	BlockCommentClose:     "BlockCommentClose",
	RegionOpen:            "RegionOpen",
	RegionClose:           "RegionClose",
	HereStringOpenDouble:  "HereStringOpenDouble",
	HereStringOpenSingle:  "HereStringOpenSingle",
	HereStringCloseDouble: "HereStringCloseDouble",
	HereStringCloseSingle: "HereStringCloseSingle",
	Text:                  "Text",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsOpenBracket reports whether the kind opens a syntactic block. All open
// variants participate in one match stack regardless of spelling.
func (k Kind) IsOpenBracket() bool {
	switch k {
	case LParen, ArrayParen, SubexprParen, LBrace, HashBrace, VarBrace, LBracket:
		return true
	default:
		return false
	}
}

// IsCloseBracket reports whether the kind closes a syntactic block.
func (k Kind) IsCloseBracket() bool {
	switch k {
	case RParen, RBrace, RBracket:
		return true
	default:
		return false
	}
}

// IsHereStringOpen reports whether the kind opens a here-string.
func (k Kind) IsHereStringOpen() bool {
	return k == HereStringOpenDouble || k == HereStringOpenSingle
}

// IsHereStringClose reports whether the kind closes a here-string.
func (k Kind) IsHereStringClose() bool {
	return k == HereStringCloseDouble || k == HereStringCloseSingle
}

// ClosesHereString reports whether the kind terminates a here-string opened
// by open. Quote kinds must agree: @" pairs with "@ and @' with '@.
func (k Kind) ClosesHereString(open Kind) bool {
	switch open {
	case HereStringOpenDouble:
		return k == HereStringCloseDouble
	case HereStringOpenSingle:
		return k == HereStringCloseSingle
	default:
		return false
	}
}
