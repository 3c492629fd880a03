package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"phphint/internal/diag"
	"phphint/internal/source"
)

// Short writes one line per diagnostic in the compiler layout understood
// by editors and CI annotators:
//
//	<path>:<line>:<col>: <severity> [<rule>] <message>
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, mode PathMode) error {
	for _, d := range bag.Items() {
		f := fs.Get(d.Primary.File)
		pos := f.Position(d.Primary.Start)
		msg := strings.ReplaceAll(d.Message, "\n", " ")
		if _, err := fmt.Fprintf(w, "%s:%d:%d: %s [%s] %s\n",
			formatPath(fs, f, mode), pos.Line, pos.Col,
			strings.ToLower(d.Severity.String()), d.Code.Key(), msg,
		); err != nil {
			return err
		}
	}
	return nil
}
