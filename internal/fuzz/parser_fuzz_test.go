package fuzztests

import (
	"context"
	"testing"
	"time"

	"phphint/internal/diag"
	"phphint/internal/lexer"
	"phphint/internal/parser"
	"phphint/internal/source"
)

// parseTimeout bounds one parse; going over it means the parser loops.
const parseTimeout = 5 * time.Second

func FuzzParserBuildsAST(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		fs := source.NewFileSet()
		fileID := fs.AddVirtual("fuzz.php", input)
		file := fs.Get(fileID)

		bag := diag.NewBag(128)
		reporter := diag.BagReporter{Bag: bag}
		lx := lexer.New(file, lexer.Options{Reporter: reporter})
		res := parser.ParseFile(fs, lx, parser.Options{Reporter: reporter, MaxErrors: 128})
		if res.File != nil && res.File.Span().End > file.Len() {
			t.Fatalf("file span %v beyond input of length %d", res.File.Span(), file.Len())
		}
	})
}

// FuzzParserNoHang fails when one input keeps the parser busy for longer
// than parseTimeout, which only error recovery loops can do.
func FuzzParserNoHang(f *testing.F) {
	addCorpusSeeds(f)
	f.Add([]byte("<?php if ($a { foo( }"))
	f.Add([]byte("<?php class { function ( { } }"))
	f.Add([]byte("<?php switch ($x) { case: default }"))
	f.Add([]byte("<?php use A\\{;"))
	f.Add([]byte("<?php fn => ;"))

	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		ctx, cancel := context.WithTimeout(context.Background(), parseTimeout)
		defer cancel()

		done := make(chan struct{})
		go func() {
			defer close(done)
			fs := source.NewFileSet()
			_, _ = parser.ParseSource(fs, "fuzz.php", string(input))
		}()

		select {
		case <-done:
		case <-ctx.Done():
			t.Fatalf("parser hang detected: parsing took longer than %v\ninput (%d bytes): %q",
				parseTimeout, len(input), truncateForLog(input, 200))
		}
	})
}

func truncateForLog(input []byte, maxLen int) []byte {
	if len(input) <= maxLen {
		return input
	}
	return append(append([]byte(nil), input[:maxLen]...), []byte("...")...)
}
