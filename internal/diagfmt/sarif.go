package diagfmt

import (
	"encoding/json"
	"io"
	"path/filepath"
	"sort"

	"phphint/internal/diag"
	"phphint/internal/source"
)

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	Name             string       `json:"name,omitempty"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID           string            `json:"ruleId"`
	RuleIndex        int               `json:"ruleIndex"`
	Level            string            `json:"level"`
	Message          sarifMessage      `json:"message"`
	Locations        []sarifLocation   `json:"locations"`
	RelatedLocations []sarifRelated    `json:"relatedLocations,omitempty"`
	Fixes            []sarifFix        `json:"fixes,omitempty"`
	Properties       map[string]string `json:"properties,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
}

type sarifRelated struct {
	ID               int           `json:"id"`
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
	Message          sarifMessage  `json:"message"`
}

type sarifPhysical struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           sarifRegion   `json:"region"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn"`
	EndLine     uint32 `json:"endLine"`
	EndColumn   uint32 `json:"endColumn"`
	ByteOffset  uint32 `json:"byteOffset"`
	ByteLength  uint32 `json:"byteLength"`
}

type sarifFix struct {
	Description     sarifMessage          `json:"description"`
	ArtifactChanges []sarifArtifactChange `json:"artifactChanges"`
}

type sarifArtifactChange struct {
	ArtifactLocation sarifArtifact      `json:"artifactLocation"`
	Replacements     []sarifReplacement `json:"replacements"`
}

type sarifReplacement struct {
	DeletedRegion   sarifRegion   `json:"deletedRegion"`
	InsertedContent *sarifMessage `json:"insertedContent,omitempty"`
}

func sarifLevel(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "note"
	}
}

func sarifURI(fs *source.FileSet, f *source.File) string {
	return filepath.ToSlash(formatPath(fs, f, PathModeRelative))
}

func sarifRegionFor(fs *source.FileSet, span source.Span) sarifRegion {
	start, end := fs.Resolve(span)
	return sarifRegion{
		StartLine:   start.Line,
		StartColumn: start.Col,
		EndLine:     end.Line,
		EndColumn:   end.Col,
		ByteOffset:  span.Start,
		ByteLength:  span.Len(),
	}
}

// Sarif writes the diagnostics as a SARIF 2.1.0 log with one run. Rules
// are listed once per code that occurs, in code order.
func Sarif(w io.Writer, bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) error {
	items := bag.Items()

	codes := make([]diag.Code, 0)
	seen := make(map[diag.Code]bool)
	for _, d := range items {
		if !seen[d.Code] {
			seen[d.Code] = true
			codes = append(codes, d.Code)
		}
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	ruleIndex := make(map[diag.Code]int, len(codes))
	rules := make([]sarifRule, 0, len(codes))
	for i, c := range codes {
		ruleIndex[c] = i
		rules = append(rules, sarifRule{ID: c.Key(), Name: c.ID(), ShortDescription: sarifMessage{Text: c.Title()}})
	}

	results := make([]sarifResult, 0, len(items))
	for _, d := range items {
		f := fs.Get(d.Primary.File)
		res := sarifResult{
			RuleID:    d.Code.Key(),
			RuleIndex: ruleIndex[d.Code],
			Level:     sarifLevel(d.Severity),
			Message:   sarifMessage{Text: d.Message},
			Locations: []sarifLocation{{PhysicalLocation: sarifPhysical{
				ArtifactLocation: sarifArtifact{URI: sarifURI(fs, f)},
				Region:           sarifRegionFor(fs, d.Primary),
			}}},
		}
		if d.Severity == diag.SevCurrentLineWarning {
			res.Properties = map[string]string{"phphint/severity": "suggestion"}
		}
		for i, n := range d.Notes {
			nf := fs.Get(n.Span.File)
			res.RelatedLocations = append(res.RelatedLocations, sarifRelated{
				ID: i + 1,
				PhysicalLocation: sarifPhysical{
					ArtifactLocation: sarifArtifact{URI: sarifURI(fs, nf)},
					Region:           sarifRegionFor(fs, n.Span),
				},
				Message: sarifMessage{Text: n.Msg},
			})
		}
		for _, fx := range d.Fixes {
			if sf, ok := sarifFixFor(fs, fx); ok {
				res.Fixes = append(res.Fixes, sf)
			}
		}
		results = append(results, res)
	}

	name := meta.ToolName
	if name == "" {
		name = "phphint"
	}
	run := sarifRun{
		Tool:    sarifTool{Driver: sarifDriver{Name: name, Version: meta.ToolVersion, Rules: rules}},
		Results: results,
	}
	if len(meta.InvocationArgs) > 0 {
		run.Invocations = []sarifInvocation{{Arguments: meta.InvocationArgs, ExecutionSuccessful: true}}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sarifLog{Version: sarifVersion, Schema: sarifSchema, Runs: []sarifRun{run}})
}

// sarifFixFor groups the edits of fx by file. Fixes without edits are
// interactive and have no SARIF form.
func sarifFixFor(fs *source.FileSet, fx *diag.Fix) (sarifFix, bool) {
	if fx == nil || len(fx.Edits) == 0 {
		return sarifFix{}, false
	}
	var changes []sarifArtifactChange
	index := make(map[source.FileID]int)
	for _, e := range fx.Edits {
		i, ok := index[e.Span.File]
		if !ok {
			i = len(changes)
			index[e.Span.File] = i
			changes = append(changes, sarifArtifactChange{
				ArtifactLocation: sarifArtifact{URI: sarifURI(fs, fs.Get(e.Span.File))},
			})
		}
		rep := sarifReplacement{DeletedRegion: sarifRegionFor(fs, e.Span)}
		if e.NewText != "" {
			rep.InsertedContent = &sarifMessage{Text: e.NewText}
		}
		changes[i].Replacements = append(changes[i].Replacements, rep)
	}
	return sarifFix{Description: sarifMessage{Text: fx.Title}, ArtifactChanges: changes}, true
}
