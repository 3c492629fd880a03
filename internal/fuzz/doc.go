// Package fuzztests houses Go fuzz harnesses for the PHP front end and the
// rule battery. They feed arbitrary bytes through the lexer, the parser and
// a full dispatcher pass and fail on panics, hangs and findings anchored
// outside the input.
package fuzztests
