package parser

import "fmt"

type File struct {
	Path      string
	Variables map[string]any
	DB        string
	Cases     []*Case
}

type Case struct {
	Name        string
	Description string
	Tags        []string
	Assert      string
	Negate      bool
	Subject     *Subject
	Args        []any
	Skip        string
	Only        bool
	Line        int
}

// DisplayName returns the case name, falling back to its assertion and line.
func (c *Case) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	if c.Negate {
		return fmt.Sprintf("not %s (line %d)", c.Assert, c.Line)
	}
	return fmt.Sprintf("%s (line %d)", c.Assert, c.Line)
}

type SubjectKind int

const (
	SubjectLiteral SubjectKind = iota
	SubjectFile
	SubjectQuery
)

func (k SubjectKind) String() string {
	switch k {
	case SubjectFile:
		return "file"
	case SubjectQuery:
		return "query"
	default:
		return "literal"
	}
}

type Subject struct {
	Kind SubjectKind

	// SubjectLiteral
	Value any

	// SubjectFile: File is read as text; Path, when set, selects a value
	// inside the JSON document.
	File string
	Path string

	// SubjectQuery: the first row's Column (or first column) of Query.
	Query  string
	Column string
	DB     string

	Line int
}

type ParseError struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}
