package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// lexical
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004
	LexTokenTooLong             Code = 1005
	LexUnterminatedHeredoc      Code = 1006

	// syntax
	SynInfo              Code = 2000
	SynUnexpectedToken   Code = 2001
	SynUnclosedDelimiter Code = 2002
	SynExpectSemicolon   Code = 2003
	SynExpectExpression  Code = 2004
	SynExpectIdentifier  Code = 2005
	SynExpectVariable    Code = 2006
	SynExpectType        Code = 2007
	SynExpectBlock       Code = 2008
	SynBadAssignTarget   Code = 2009
	SynModifierNotValid  Code = 2010

	// semantic errors, always on
	ErrInfo                      Code = 3000
	ErrAbstractInstantiation     Code = 3001
	ErrConstantRedeclaration     Code = 3002
	ErrFieldRedeclaration        Code = 3003
	ErrMethodRedeclaration       Code = 3004
	ErrTypeRedeclaration         Code = 3005
	ErrLoopOnlyKeyword           Code = 3006
	ErrThisInStaticContext       Code = 3007
	ErrInterfaceConstantOverride Code = 3008

	// language level, one code per version boundary
	ErrPHP53Syntax Code = 3053
	ErrPHP54Syntax Code = 3054
	ErrPHP55Syntax Code = 3055
	ErrPHP56Syntax Code = 3056
	ErrPHP70Syntax Code = 3070
	ErrPHP71Syntax Code = 3071
	ErrPHP72Syntax Code = 3072
	ErrPHP73Syntax Code = 3073
	ErrPHP74Syntax Code = 3074
	ErrPHP80Syntax Code = 3080
	ErrPHP81Syntax Code = 3081

	// hints
	HintInfo                  Code = 4000
	HintEmptyStatement        Code = 4001
	HintWrongOrderOfArgs      Code = 4002
	HintUnusedUse             Code = 4003
	HintAssignmentInCondition Code = 4004
	HintMissingBraces         Code = 4005
	HintErrorControlOperator  Code = 4006

	// caret-scoped suggestions
	SugInfo              Code = 5000
	SugArraySyntax       Code = 5001
	SugArrowFunction     Code = 5002
	SugIntroduceVariable Code = 5003
	SugVarTypeComment    Code = 5004

	// io and project
	IOInfo          Code = 6000
	IOLoadFileError Code = 6001
	IOConfigError   Code = 6002
	IOCacheError    Code = 6003
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                 "Unknown error",
		LexInfo:                     "Lexical information",
		LexUnknownChar:              "Unknown character",
		LexUnterminatedString:       "Unterminated string literal",
		LexUnterminatedBlockComment: "Unterminated block comment",
		LexBadNumber:                "Bad number literal",
		LexTokenTooLong:             "Token too long",
		LexUnterminatedHeredoc:      "Unterminated heredoc",

		SynInfo:              "Syntax information",
		SynUnexpectedToken:   "Unexpected token",
		SynUnclosedDelimiter: "Unclosed delimiter",
		SynExpectSemicolon:   "Missing semicolon",
		SynExpectExpression:  "Expected expression",
		SynExpectIdentifier:  "Expected identifier",
		SynExpectVariable:    "Expected variable",
		SynExpectType:        "Expected type",
		SynExpectBlock:       "Expected block",
		SynBadAssignTarget:   "Cannot assign to this expression",
		SynModifierNotValid:  "Modifier not allowed here",

		ErrInfo:                      "Semantic information",
		ErrAbstractInstantiation:     "Cannot instantiate abstract type",
		ErrConstantRedeclaration:     "Constant redeclared",
		ErrFieldRedeclaration:        "Field redeclared",
		ErrMethodRedeclaration:       "Function or method redeclared",
		ErrTypeRedeclaration:         "Type redeclared",
		ErrLoopOnlyKeyword:           "Loop keyword outside of a loop",
		ErrThisInStaticContext:       "$this used in static context",
		ErrInterfaceConstantOverride: "Interface constant overridden",

		ErrPHP53Syntax: "Syntax not available before PHP 5.3",
		ErrPHP54Syntax: "Syntax not available before PHP 5.4",
		ErrPHP55Syntax: "Syntax not available before PHP 5.5",
		ErrPHP56Syntax: "Syntax not available before PHP 5.6",
		ErrPHP70Syntax: "Syntax not available before PHP 7.0",
		ErrPHP71Syntax: "Syntax not available before PHP 7.1",
		ErrPHP72Syntax: "Syntax not available before PHP 7.2",
		ErrPHP73Syntax: "Syntax not available before PHP 7.3",
		ErrPHP74Syntax: "Syntax not available before PHP 7.4",
		ErrPHP80Syntax: "Syntax not available before PHP 8.0",
		ErrPHP81Syntax: "Syntax not available before PHP 8.1",

		HintInfo:                  "Hint",
		HintEmptyStatement:        "Unnecessary empty statement",
		HintWrongOrderOfArgs:      "Optional parameter before required parameter",
		HintUnusedUse:             "Unused use statement",
		HintAssignmentInCondition: "Assignment in condition",
		HintMissingBraces:         "Control structure without braces",
		HintErrorControlOperator:  "Error control operator misuse",

		SugInfo:              "Suggestion",
		SugArraySyntax:       "Use short array syntax",
		SugArrowFunction:     "Convert closure to arrow function",
		SugIntroduceVariable: "Introduce variable",
		SugVarTypeComment:    "Add @var type comment",

		IOInfo:          "IO information",
		IOLoadFileError: "Could not load file",
		IOConfigError:   "Invalid configuration",
		IOCacheError:    "Cache failure",
	}

	// codeKey holds the stable names used by configuration and
	// "phphint-ignore" comments.
	codeKey = map[Code]string{
		ErrAbstractInstantiation:     "abstract-class-instantiation",
		ErrConstantRedeclaration:     "constant-redeclaration",
		ErrFieldRedeclaration:        "field-redeclaration",
		ErrMethodRedeclaration:       "method-redeclaration",
		ErrTypeRedeclaration:         "type-redeclaration",
		ErrLoopOnlyKeyword:           "loop-only-keyword",
		ErrThisInStaticContext:       "this-in-static-context",
		ErrInterfaceConstantOverride: "interface-constant-override",
		ErrPHP53Syntax:               "php53-syntax",
		ErrPHP54Syntax:               "php54-syntax",
		ErrPHP55Syntax:               "php55-syntax",
		ErrPHP56Syntax:               "php56-syntax",
		ErrPHP70Syntax:               "php70-syntax",
		ErrPHP71Syntax:               "php71-syntax",
		ErrPHP72Syntax:               "php72-syntax",
		ErrPHP73Syntax:               "php73-syntax",
		ErrPHP74Syntax:               "php74-syntax",
		ErrPHP80Syntax:               "php80-syntax",
		ErrPHP81Syntax:               "php81-syntax",
		HintEmptyStatement:           "empty-statement",
		HintWrongOrderOfArgs:         "wrong-order-of-args",
		HintUnusedUse:                "unused-use",
		HintAssignmentInCondition:    "assignment-in-condition",
		HintMissingBraces:            "missing-braces",
		HintErrorControlOperator:     "error-control-operator-misuse",
		SugArraySyntax:               "array-syntax",
		SugArrowFunction:             "arrow-function",
		SugIntroduceVariable:         "introduce-variable",
		SugVarTypeComment:            "var-type-comment",
	}

	keyCode = func() map[string]Code {
		out := make(map[string]Code, len(codeKey))
		for c, k := range codeKey {
			out[k] = c
		}
		return out
	}()
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("ERR%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("HNT%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("SUG%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

// Key returns the kebab-case rule key, or the ID for codes without one.
func (c Code) Key() string {
	if k, ok := codeKey[c]; ok {
		return k
	}
	return c.ID()
}

// LookupKey resolves a rule key or an ID like "HNT4001" back to its code.
func LookupKey(key string) (Code, bool) {
	if c, ok := keyCode[key]; ok {
		return c, true
	}
	for c := range codeDescription {
		if c.ID() == key {
			return c, true
		}
	}
	return UnknownCode, false
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
