// Package diagnostics defines the closed set of DTS diagnostic codes, the
// caller-replaceable severity map, and the Diagnostic value itself.
package diagnostics

import "fmt"

// Range is a half-open byte range [Start, End) within a single source file.
type Range struct {
	Start int
	End   int
}

func (r Range) String() string {
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

// Code enumerates every diagnostic a parse or analysis pass can emit.
type Code int

const (
	UnexpectedEOF Code = iota
	Expected
	ExpectedName
	OddNumberOfBytestringElements
	NonDtsV1
	NameTooLong
	IllegalChar
	IllegalStart
	UnresolvedReference
	PropertyReferencedByNode
	NonStringInCompatible
	PathCannotBeEmpty
	PropertyAfterNode
	UnbalancedParentheses
	MisplacedDtsHeader
	DuplicateDirective
	DuplicateLabel
	ParserError
	IOError
	ErrorsInInclude
	CyclicDependencyError
	IntError
	TruncatingBits
)

var codeNames = map[Code]string{
	UnexpectedEOF:                 "UnexpectedEOF",
	Expected:                      "Expected",
	ExpectedName:                  "ExpectedName",
	OddNumberOfBytestringElements: "OddNumberOfBytestringElements",
	NonDtsV1:                      "NonDtsV1",
	NameTooLong:                   "NameTooLong",
	IllegalChar:                   "IllegalChar",
	IllegalStart:                  "IllegalStart",
	UnresolvedReference:           "UnresolvedReference",
	PropertyReferencedByNode:      "PropertyReferencedByNode",
	NonStringInCompatible:         "NonStringInCompatible",
	PathCannotBeEmpty:             "PathCannotBeEmpty",
	PropertyAfterNode:             "PropertyAfterNode",
	UnbalancedParentheses:         "UnbalancedParentheses",
	MisplacedDtsHeader:            "MisplacedDtsHeader",
	DuplicateDirective:            "DuplicateDirective",
	DuplicateLabel:                "DuplicateLabel",
	ParserError:                   "ParserError",
	IOError:                       "IOError",
	ErrorsInInclude:               "ErrorsInInclude",
	CyclicDependencyError:         "CyclicDependencyError",
	IntError:                      "IntError",
	TruncatingBits:                "TruncatingBits",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Severity classifies how a diagnostic should be surfaced.
type Severity int

const (
	Error Severity = iota
	Warning
	Hint
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Hint:
		return "hint"
	default:
		return "unknown"
	}
}

// SeverityMap is a process-wide, caller-replaceable table from Code to
// Severity. Codes absent from the map fall back to Error, matching
// spec.md §7 ("Defaults: most are Errors").
type SeverityMap map[Code]Severity

// DefaultSeverityMap mirrors original_source/ginko/src/dts/error_codes.rs's
// default table, with DuplicateLabel added as Error (see DESIGN.md, Open
// Questions §4).
func DefaultSeverityMap() SeverityMap {
	return SeverityMap{
		NameTooLong:           Warning,
		NonStringInCompatible: Warning,
		DuplicateDirective:    Warning,
		TruncatingBits:        Warning,
	}
}

// Severity looks up the severity for code, defaulting to Error.
func (m SeverityMap) Severity(code Code) Severity {
	if sev, ok := m[code]; ok {
		return sev
	}
	return Error
}

// RelatedInfo cross-references another location relevant to a diagnostic,
// e.g. the prior definition site of a duplicate label.
type RelatedInfo struct {
	File    string
	Range   Range
	Message string
}

// Diagnostic is a single parse- or analysis-time finding.
type Diagnostic struct {
	Code    Code
	Range   Range
	File    string
	Message string
	Related []RelatedInfo
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%s: %s: %s", d.File, d.Range, d.Code, d.Message)
}

// WithRelated returns a copy of d with related appended, used when an
// analyzer wants to point back at a prior definition site (e.g.
// DuplicateLabel, SPEC_FULL.md §D.1).
func (d Diagnostic) WithRelated(file string, r Range, message string) Diagnostic {
	d.Related = append(append([]RelatedInfo{}, d.Related...), RelatedInfo{File: file, Range: r, Message: message})
	return d
}

// Bag collects diagnostics without ever raising; both the parser and the
// analyzer append to a Bag instead of returning an error, matching
// spec.md §7 ("Parse errors ... the parser continues").
type Bag struct {
	items []Diagnostic
}

func (b *Bag) Add(d Diagnostic) {
	b.items = append(b.items, d)
}

func (b *Bag) Items() []Diagnostic {
	return b.items
}

func (b *Bag) Len() int {
	return len(b.items)
}

// HasErrors reports whether any collected diagnostic is Error severity
// under sm.
func (b *Bag) HasErrors(sm SeverityMap) bool {
	for _, d := range b.items {
		if sm.Severity(d.Code) == Error {
			return true
		}
	}
	return false
}
