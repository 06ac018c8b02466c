// Package compare implements the Round-Trip Comparator (spec §4.8, C8):
// a regression diagnostic that reports where two buffers (or two
// decoded ScriptStates) first diverge. It is not part of the happy
// path — nothing else in this module calls it during normal
// decompile/compile operation.
//
// The divergence walk is grounded on the teacher's astPrinter
// (parser/printer.go), which flattens a structure into a
// comparison-friendly form field by field; here the fields are the
// ScriptState's parallel tables instead of an AST, and the report's
// Summary is plain text built with fmt rather than a JSON dump; go-cmp
// is used only by the separate Diff helper.
package compare

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/nikitalita/gdsdecomp-sub001/bufcodec"
	"github.com/nikitalita/gdsdecomp-sub001/revision"
	"github.com/nikitalita/gdsdecomp-sub001/token"
	"github.com/nikitalita/gdsdecomp-sub001/variant"
)

// TokenDivergence describes the first token index at which two
// ScriptStates disagree, naming the global-token spelling and payload
// on each side.
type TokenDivergence struct {
	Index       int
	GlobalA     token.GlobalToken
	GlobalB     token.GlobalToken
	PayloadA    uint32
	PayloadB    uint32
}

// Report is the ordered diagnostic spec §4.8 requires: raw-byte
// equality, decompressed-body equality (v2 only), and the first
// divergence index in each of the ScriptState's parallel tables.
type Report struct {
	RawBytesEqual   bool
	BodyBytesEqual  bool
	BodyCompared    bool // false when the revision has no separately compressed body (legacy)
	IdentifierDiff  int  // -1 if no divergence
	ConstantDiff    int
	TokenDiff       int
	LineMapDiff     int
	ColumnMapDiff   int
	EndLineMapDiff  int
	FirstTokenDiff  *TokenDivergence
	Summary         string
}

// Equal reports whether the report found no divergence at all.
func (r *Report) Equal() bool {
	return r.RawBytesEqual &&
		r.IdentifierDiff < 0 && r.ConstantDiff < 0 && r.TokenDiff < 0 &&
		r.LineMapDiff < 0 && r.ColumnMapDiff < 0 && r.EndLineMapDiff < 0
}

// Compare decodes bytesA and bytesB under rev and diffs them field by
// field, per spec §4.8.
func Compare(bytesA, bytesB []byte, rev *revision.Descriptor, codec *bufcodec.Codec) (*Report, error) {
	report := &Report{
		RawBytesEqual:  bytes.Equal(bytesA, bytesB),
		IdentifierDiff: -1,
		ConstantDiff:   -1,
		TokenDiff:      -1,
		LineMapDiff:    -1,
		ColumnMapDiff:  -1,
		EndLineMapDiff: -1,
	}

	stateA, err := codec.Decode(bytesA, rev)
	if err != nil {
		return nil, fmt.Errorf("decoding bytes_a: %w", err)
	}
	stateB, err := codec.Decode(bytesB, rev)
	if err != nil {
		return nil, fmt.Errorf("decoding bytes_b: %w", err)
	}

	if rev.IsV2() {
		report.BodyCompared = true
		report.BodyBytesEqual = scriptStatesBodyEqual(stateA, stateB)
	}

	CompareStates(stateA, stateB, rev, report)
	report.Summary = summarize(report)
	return report, nil
}

// CompareStates fills in the table-divergence fields of report by
// comparing two already-decoded ScriptStates. Exported so the Resolver
// and ad-hoc tooling can compare states without re-decoding.
func CompareStates(a, b *bufcodec.ScriptState, rev *revision.Descriptor, report *Report) {
	report.IdentifierDiff = firstSliceDivergence(a.Identifiers, b.Identifiers, func(x, y string) bool { return x == y })
	report.ConstantDiff = firstSliceDivergence(a.Constants, b.Constants, variant.Equal)
	report.TokenDiff = firstSliceDivergence(a.Tokens, b.Tokens, func(x, y bufcodec.EncodedToken) bool { return x == y })
	report.LineMapDiff = firstIndexValueMapDivergence(a.Lines, b.Lines)
	report.ColumnMapDiff = firstIndexValueMapDivergence(a.Columns, b.Columns)
	report.EndLineMapDiff = firstIndexValueMapDivergence(a.EndLines, b.EndLines)

	if report.TokenDiff >= 0 {
		i := report.TokenDiff
		report.FirstTokenDiff = tokenDivergenceAt(a, b, rev, i)
	}
}

func tokenDivergenceAt(a, b *bufcodec.ScriptState, rev *revision.Descriptor, i int) *TokenDivergence {
	d := &TokenDivergence{Index: i}
	if i < len(a.Tokens) {
		d.GlobalA, _ = rev.GlobalTokenFor(a.Tokens[i].LocalID())
		d.PayloadA = a.Tokens[i].Payload()
	}
	if i < len(b.Tokens) {
		d.GlobalB, _ = rev.GlobalTokenFor(b.Tokens[i].LocalID())
		d.PayloadB = b.Tokens[i].Payload()
	}
	return d
}

func firstSliceDivergence[T any](a, b []T, eq func(T, T) bool) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if !eq(a[i], b[i]) {
			return i
		}
	}
	if len(a) != len(b) {
		return n
	}
	return -1
}

func firstIndexValueMapDivergence(a, b map[int]int) int {
	keys := make(map[int]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}
	best := -1
	for k := range keys {
		if a[k] != b[k] {
			if best == -1 || k < best {
				best = k
			}
		}
	}
	return best
}

func scriptStatesBodyEqual(a, b *bufcodec.ScriptState) bool {
	report := &Report{IdentifierDiff: -1, ConstantDiff: -1, TokenDiff: -1, LineMapDiff: -1, ColumnMapDiff: -1, EndLineMapDiff: -1}
	CompareStates(a, b, &revision.Descriptor{}, report)
	return report.IdentifierDiff < 0 && report.ConstantDiff < 0 && report.TokenDiff < 0 &&
		report.LineMapDiff < 0 && report.ColumnMapDiff < 0 && report.EndLineMapDiff < 0
}

func summarize(r *Report) string {
	if r.Equal() {
		return "identical"
	}
	var b strings.Builder
	if !r.RawBytesEqual {
		b.WriteString("raw bytes differ; ")
	}
	if r.IdentifierDiff >= 0 {
		fmt.Fprintf(&b, "identifier table diverges at index %d; ", r.IdentifierDiff)
	}
	if r.ConstantDiff >= 0 {
		fmt.Fprintf(&b, "constant table diverges at index %d; ", r.ConstantDiff)
	}
	if r.TokenDiff >= 0 {
		fmt.Fprintf(&b, "token stream diverges at index %d (%v vs %v); ", r.TokenDiff, r.FirstTokenDiff.GlobalA, r.FirstTokenDiff.GlobalB)
	}
	if r.LineMapDiff >= 0 {
		fmt.Fprintf(&b, "line map diverges at token %d; ", r.LineMapDiff)
	}
	if r.ColumnMapDiff >= 0 {
		fmt.Fprintf(&b, "column map diverges at token %d; ", r.ColumnMapDiff)
	}
	if r.EndLineMapDiff >= 0 {
		fmt.Fprintf(&b, "end-line map diverges at token %d; ", r.EndLineMapDiff)
	}
	return strings.TrimSuffix(b.String(), "; ")
}

// Diff renders a cmp.Diff between two ScriptStates for ad-hoc
// debugging, with no cmp options. It is independent of Report; nothing
// in this module calls it.
func Diff(a, b *bufcodec.ScriptState) string {
	return cmp.Diff(a, b)
}
