package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	InlineHTML  // text outside <?php ... ?>
	OpenTag     // <?php
	OpenTagEcho // <?=
	CloseTag    // ?> (with one trailing newline)

	Variable           // $name
	Ident              // foo
	NameQualified      // Foo\Bar
	NameFullyQualified // \Foo\Bar
	NameRelative       // namespace\Foo

	IntLit    // 42, 0x2A, 0b101, 1_000
	FloatLit  // 1.5, 1e3
	StringLit // 'single' or "double"
	Backtick  // `shell`
	Heredoc   // <<<EOT ... EOT and <<<'EOT' ... EOT
	Cast      // (int), (string), ...

	keywordBeg
	KwAbstract
	KwAnd
	KwArray
	KwAs
	KwBreak
	KwCallable
	KwCase
	KwCatch
	KwClass
	KwClone
	KwConst
	KwContinue
	KwDeclare
	KwDefault
	KwDo
	KwEcho
	KwElse
	KwElseif
	KwEmpty
	KwEnddeclare
	KwEndfor
	KwEndforeach
	KwEndif
	KwEndswitch
	KwEndwhile
	KwExit
	KwExtends
	KwFinal
	KwFinally
	KwFn
	KwFor
	KwForeach
	KwFunction
	KwGlobal
	KwGoto
	KwIf
	KwImplements
	KwInclude
	KwIncludeOnce
	KwInstanceof
	KwInsteadof
	KwInterface
	KwIsset
	KwList
	KwMatch
	KwNamespace
	KwNew
	KwOr
	KwPrint
	KwPrivate
	KwProtected
	KwPublic
	KwReadonly
	KwRequire
	KwRequireOnce
	KwReturn
	KwStatic
	KwSwitch
	KwThrow
	KwTrait
	KwTry
	KwUnset
	KwUse
	KwVar
	KwWhile
	KwXor
	KwYield
	keywordEnd

	Plus             // +
	Minus            // -
	Star             // *
	Slash            // /
	Percent          // %
	Pow              // **
	Dot              // .
	Assign           // =
	PlusAssign       // +=
	MinusAssign      // -=
	StarAssign       // *=
	SlashAssign      // /=
	PercentAssign    // %=
	PowAssign        // **=
	DotAssign        // .=
	AmpAssign        // &=
	PipeAssign       // |=
	CaretAssign      // ^=
	ShlAssign        // <<=
	ShrAssign        // >>=
	CoalesceAssign   // ??=
	EqEq             // ==
	BangEq           // != or <>
	Identical        // ===
	NotIdentical     // !==
	Lt               // <
	LtEq             // <=
	Gt               // >
	GtEq             // >=
	Spaceship        // <=>
	Shl              // <<
	Shr              // >>
	Amp              // &
	Pipe             // |
	Caret            // ^
	Tilde            // ~
	Bang             // !
	AndAnd           // &&
	OrOr             // ||
	Question         // ?
	Coalesce         // ??
	Colon            // :
	ColonColon       // ::
	Semicolon        // ;
	Comma            // ,
	Arrow            // ->
	NullsafeArrow    // ?->
	FatArrow         // =>
	LParen           // (
	RParen           // )
	LBrace           // {
	RBrace           // }
	LBracket         // [
	RBracket         // ]
	At               // @
	Dollar           // $ (variable variables)
	Inc              // ++
	Dec              // --
	Ellipsis         // ...
	Backslash        // \
	AttrOpen         // #[
	kindCount
)

var kindNames = [...]string{
	Invalid:            "Invalid",
	EOF:                "EOF",
	InlineHTML:         "InlineHTML",
	OpenTag:            "OpenTag",
	OpenTagEcho:        "OpenTagEcho",
	CloseTag:           "CloseTag",
	Variable:           "Variable",
	Ident:              "Ident",
	NameQualified:      "NameQualified",
	NameFullyQualified: "NameFullyQualified",
	NameRelative:       "NameRelative",
	IntLit:             "IntLit",
	FloatLit:           "FloatLit",
	StringLit:          "StringLit",
	Backtick:           "Backtick",
	Heredoc:            "Heredoc",
	Cast:               "Cast",
	Plus:               "+",
	Minus:              "-",
	Star:               "*",
	Slash:              "/",
	Percent:            "%",
	Pow:                "**",
	Dot:                ".",
	Assign:             "=",
	PlusAssign:         "+=",
	MinusAssign:        "-=",
	StarAssign:         "*=",
	SlashAssign:        "/=",
	PercentAssign:      "%=",
	PowAssign:          "**=",
	DotAssign:          ".=",
	AmpAssign:          "&=",
	PipeAssign:         "|=",
	CaretAssign:        "^=",
	ShlAssign:          "<<=",
	ShrAssign:          ">>=",
	CoalesceAssign:     "??=",
	EqEq:               "==",
	BangEq:             "!=",
	Identical:          "===",
	NotIdentical:       "!==",
	Lt:                 "<",
	LtEq:               "<=",
	Gt:                 ">",
	GtEq:               ">=",
	Spaceship:          "<=>",
	Shl:                "<<",
	Shr:                ">>",
	Amp:                "&",
	Pipe:               "|",
	Caret:              "^",
	Tilde:              "~",
	Bang:               "!",
	AndAnd:             "&&",
	OrOr:               "||",
	Question:           "?",
	Coalesce:           "??",
	Colon:              ":",
	ColonColon:         "::",
	Semicolon:          ";",
	Comma:              ",",
	Arrow:              "->",
	NullsafeArrow:      "?->",
	FatArrow:           "=>",
	LParen:             "(",
	RParen:             ")",
	LBrace:             "{",
	RBrace:             "}",
	LBracket:           "[",
	RBracket:           "]",
	At:                 "@",
	Dollar:             "$",
	Inc:                "++",
	Dec:                "--",
	Ellipsis:           "...",
	Backslash:          "\\",
	AttrOpen:           "#[",
}

func (k Kind) String() string {
	if k.IsKeyword() {
		return keywordSpelling[k]
	}
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool { return k > keywordBeg && k < keywordEnd }

// IsName reports whether k can spell a (possibly qualified) name.
func (k Kind) IsName() bool {
	switch k {
	case Ident, NameQualified, NameFullyQualified, NameRelative:
		return true
	default:
		return false
	}
}

// IsAssignOp reports whether k is '=' or a compound assignment.
func (k Kind) IsAssignOp() bool {
	switch k {
	case Assign, PlusAssign, MinusAssign, StarAssign, SlashAssign, PercentAssign, PowAssign,
		DotAssign, AmpAssign, PipeAssign, CaretAssign, ShlAssign, ShrAssign, CoalesceAssign:
		return true
	default:
		return false
	}
}

// IsComparison reports whether k compares two operands.
func (k Kind) IsComparison() bool {
	switch k {
	case EqEq, BangEq, Identical, NotIdentical, Lt, LtEq, Gt, GtEq, Spaceship:
		return true
	default:
		return false
	}
}

// IsModifier reports whether k is a class member or class modifier.
func (k Kind) IsModifier() bool {
	switch k {
	case KwAbstract, KwFinal, KwPrivate, KwProtected, KwPublic, KwReadonly, KwStatic, KwVar:
		return true
	default:
		return false
	}
}
