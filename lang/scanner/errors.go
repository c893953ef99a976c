package scanner

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cbcomp/cb/lang/token"
)

// Kind classifies a diagnostic per the error taxonomy of spec ch. 7.
type Kind int

const (
	// Syntax is produced by the lexer or the parser.
	Syntax Kind = iota
	// Semantic is produced by a resolver or the type checker.
	Semantic
	// Warning is a non-fatal diagnostic.
	Warning
	// Internal indicates an invariant violation inside a phase (spec 4.8.4).
	Internal
)

func (k Kind) String() string {
	switch k {
	case Syntax:
		return "error"
	case Semantic:
		return "error"
	case Warning:
		return "warning"
	case Internal:
		return "internal compiler error"
	default:
		return "error"
	}
}

// Error is a single positioned diagnostic.
type Error struct {
	Pos  token.Position
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Msg)
}

// ErrorList collects diagnostics produced over the course of a phase. A
// phase reports every error it finds (spec 7: "within a phase, multiple
// errors are collected") rather than aborting at the first one.
type ErrorList []*Error

// Add appends a new Syntax-kind error to the list (the common case for the
// scanner and parser).
func (el *ErrorList) Add(pos token.Position, msg string) {
	el.AddKind(pos, Syntax, msg)
}

// AddKind appends a new error of the given kind.
func (el *ErrorList) AddKind(pos token.Position, kind Kind, msg string) {
	*el = append(*el, &Error{Pos: pos, Kind: kind, Msg: msg})
}

// Merge appends every diagnostic in err (an ErrorList or a single error)
// onto el, letting a caller collect failures from several independent
// files or phases into one aggregate (spec ch. 7 "other files continue").
func (el *ErrorList) Merge(err error) {
	if err == nil {
		return
	}
	if other, ok := err.(ErrorList); ok {
		*el = append(*el, other...)
		return
	}
	if e, ok := err.(*Error); ok {
		*el = append(*el, e)
		return
	}
	*el = append(*el, &Error{Kind: Internal, Msg: err.Error()})
}

// Sort orders the errors by position, keeping errors for the same position
// in the order they were added.
func (el ErrorList) Sort() {
	sort.SliceStable(el, func(i, j int) bool {
		a, b := el[i].Pos, el[j].Pos
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Col < b.Col
	})
}

// HasErrors returns true if the list contains at least one non-Warning
// diagnostic.
func (el ErrorList) HasErrors() bool {
	for _, e := range el {
		if e.Kind != Warning {
			return true
		}
	}
	return false
}

func (el ErrorList) Error() string {
	switch len(el) {
	case 0:
		return "no errors"
	case 1:
		return el[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", el[0], len(el)-1)
}

// Unwrap exposes the individual errors so that errors.Is/As and the %w verb
// work across the whole list, matching go/scanner.ErrorList's contract.
func (el ErrorList) Unwrap() []error {
	errs := make([]error, len(el))
	for i, e := range el {
		errs[i] = e
	}
	return errs
}

// Err returns el as an error if it contains at least one non-Warning
// diagnostic, else nil.
func (el ErrorList) Err() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}

// PrintError prints err to w. If err is an ErrorList, every entry is
// printed on its own line, followed by a summary count when there is more
// than one entry, matching the
// diagnostics format of spec ch. 6.
func PrintError(w io.Writer, err error) {
	if err == nil {
		return
	}
	if el, ok := err.(ErrorList); ok {
		for _, e := range el {
			fmt.Fprintf(w, "%s\n", e)
		}
		if n := len(el); n > 1 {
			fmt.Fprintf(w, "%d errors\n", n)
		}
		return
	}
	fmt.Fprintf(w, "%s\n", err)
}

// JoinMessages is a small helper used by callers that want to render an
// ErrorList (or any error) as a single multi-line string, e.g. for golden
// test output.
func JoinMessages(err error) string {
	if err == nil {
		return ""
	}
	if el, ok := err.(ErrorList); ok {
		var sb strings.Builder
		for _, e := range el {
			sb.WriteString(e.Error())
			sb.WriteByte('\n')
		}
		return sb.String()
	}
	return err.Error() + "\n"
}
