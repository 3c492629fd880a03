package token

import "strings"

var keywords = map[string]Kind{
	"abstract":     KwAbstract,
	"and":          KwAnd,
	"array":        KwArray,
	"as":           KwAs,
	"break":        KwBreak,
	"callable":     KwCallable,
	"case":         KwCase,
	"catch":        KwCatch,
	"class":        KwClass,
	"clone":        KwClone,
	"const":        KwConst,
	"continue":     KwContinue,
	"declare":      KwDeclare,
	"default":      KwDefault,
	"die":          KwExit,
	"do":           KwDo,
	"echo":         KwEcho,
	"else":         KwElse,
	"elseif":       KwElseif,
	"empty":        KwEmpty,
	"enddeclare":   KwEnddeclare,
	"endfor":       KwEndfor,
	"endforeach":   KwEndforeach,
	"endif":        KwEndif,
	"endswitch":    KwEndswitch,
	"endwhile":     KwEndwhile,
	"exit":         KwExit,
	"extends":      KwExtends,
	"final":        KwFinal,
	"finally":      KwFinally,
	"fn":           KwFn,
	"for":          KwFor,
	"foreach":      KwForeach,
	"function":     KwFunction,
	"global":       KwGlobal,
	"goto":         KwGoto,
	"if":           KwIf,
	"implements":   KwImplements,
	"include":      KwInclude,
	"include_once": KwIncludeOnce,
	"instanceof":   KwInstanceof,
	"insteadof":    KwInsteadof,
	"interface":    KwInterface,
	"isset":        KwIsset,
	"list":         KwList,
	"match":        KwMatch,
	"namespace":    KwNamespace,
	"new":          KwNew,
	"or":           KwOr,
	"print":        KwPrint,
	"private":      KwPrivate,
	"protected":    KwProtected,
	"public":       KwPublic,
	"readonly":     KwReadonly,
	"require":      KwRequire,
	"require_once": KwRequireOnce,
	"return":       KwReturn,
	"static":       KwStatic,
	"switch":       KwSwitch,
	"throw":        KwThrow,
	"trait":        KwTrait,
	"try":          KwTry,
	"unset":        KwUnset,
	"use":          KwUse,
	"var":          KwVar,
	"while":        KwWhile,
	"xor":          KwXor,
	"yield":        KwYield,
}

var keywordSpelling = func() map[Kind]string {
	out := make(map[Kind]string, len(keywords))
	for s, k := range keywords {
		out[k] = s
	}
	out[KwExit] = "exit" // "die" is an alias
	return out
}()

// LookupKeyword returns the keyword kind for ident. PHP keywords are
// case-insensitive, so "FUNCTION" and "Function" both match.
func LookupKeyword(ident string) (Kind, bool) {
	if k, ok := keywords[ident]; ok {
		return k, true
	}
	k, ok := keywords[strings.ToLower(ident)]
	return k, ok
}
