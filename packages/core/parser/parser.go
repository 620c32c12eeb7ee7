package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Extensions lists the file suffixes recognised as suite files.
var Extensions = []string{".hitmatch.yaml", ".hitmatch.yml"}

// IsSuiteFile reports whether path has a suite file suffix.
func IsSuiteFile(path string) bool {
	base := filepath.Base(path)
	for _, ext := range Extensions {
		if strings.HasSuffix(base, ext) {
			return true
		}
	}
	return false
}

type rawFile struct {
	Variables map[string]any `yaml:"variables"`
	DB        string         `yaml:"db"`
	Cases     []yaml.Node    `yaml:"cases"`
}

type rawCase struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Tags        []string  `yaml:"tags"`
	Assert      string    `yaml:"assert"`
	Not         bool      `yaml:"not"`
	Subject     yaml.Node `yaml:"subject"`
	Args        []any     `yaml:"args"`
	Skip        string    `yaml:"skip"`
	Only        bool      `yaml:"only"`
}

type rawSubject struct {
	Value  yaml.Node `yaml:"value"`
	File   string    `yaml:"file"`
	Path   string    `yaml:"path"`
	Query  string    `yaml:"query"`
	Column string    `yaml:"column"`
	DB     string    `yaml:"db"`
}

var subjectKeys = map[string]bool{
	"value": true, "file": true, "path": true, "query": true, "column": true, "db": true,
}

func ParseFile(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(content, path)
}

func Parse(input []byte, filename string) (*File, error) {
	var raw rawFile
	if err := yaml.Unmarshal(input, &raw); err != nil {
		return nil, yamlError(filename, err)
	}

	file := &File{
		Path:      filename,
		Variables: raw.Variables,
		DB:        raw.DB,
	}
	if file.Variables == nil {
		file.Variables = make(map[string]any)
	}

	for i := range raw.Cases {
		c, err := parseCase(&raw.Cases[i], filename)
		if err != nil {
			return nil, err
		}
		file.Cases = append(file.Cases, c)
	}

	return file, nil
}

func parseCase(node *yaml.Node, filename string) (*Case, error) {
	if node.Kind != yaml.MappingNode {
		return nil, &ParseError{File: filename, Line: node.Line, Column: node.Column, Message: "case must be a mapping"}
	}

	var rc rawCase
	if err := node.Decode(&rc); err != nil {
		return nil, yamlError(filename, err)
	}

	if strings.TrimSpace(rc.Assert) == "" {
		return nil, &ParseError{File: filename, Line: node.Line, Column: node.Column, Message: "case is missing \"assert\""}
	}

	subject, err := parseSubject(&rc.Subject, filename)
	if err != nil {
		return nil, err
	}
	if subject.Line == 0 {
		subject.Line = node.Line
	}

	return &Case{
		Name:        rc.Name,
		Description: rc.Description,
		Tags:        rc.Tags,
		Assert:      strings.TrimSpace(rc.Assert),
		Negate:      rc.Not,
		Subject:     subject,
		Args:        rc.Args,
		Skip:        rc.Skip,
		Only:        rc.Only,
		Line:        node.Line,
	}, nil
}

func parseSubject(node *yaml.Node, filename string) (*Subject, error) {
	subject := &Subject{Kind: SubjectLiteral, Line: node.Line}

	switch node.Kind {
	case 0:
		return subject, nil
	case yaml.ScalarNode, yaml.SequenceNode, yaml.AliasNode:
		if err := node.Decode(&subject.Value); err != nil {
			return nil, yamlError(filename, err)
		}
		return subject, nil
	}

	for i := 0; i < len(node.Content); i += 2 {
		key := node.Content[i]
		if !subjectKeys[key.Value] {
			return nil, &ParseError{
				File:    filename,
				Line:    key.Line,
				Column:  key.Column,
				Message: fmt.Sprintf("unknown subject field %q (use value, file, path, query, column or db)", key.Value),
			}
		}
	}

	var rs rawSubject
	if err := node.Decode(&rs); err != nil {
		return nil, yamlError(filename, err)
	}

	sources := 0
	if rs.Value.Kind != 0 {
		sources++
		if err := rs.Value.Decode(&subject.Value); err != nil {
			return nil, yamlError(filename, err)
		}
	}
	if rs.File != "" {
		sources++
		subject.Kind = SubjectFile
		subject.File = rs.File
		subject.Path = rs.Path
	}
	if rs.Query != "" {
		sources++
		subject.Kind = SubjectQuery
		subject.Query = rs.Query
		subject.Column = rs.Column
		subject.DB = rs.DB
	}

	if sources != 1 {
		return nil, &ParseError{
			File:    filename,
			Line:    node.Line,
			Column:  node.Column,
			Message: "subject mapping needs exactly one of value, file or query",
		}
	}
	if rs.Path != "" && subject.Kind != SubjectFile {
		return nil, &ParseError{File: filename, Line: node.Line, Column: node.Column, Message: "subject path requires file"}
	}

	return subject, nil
}

// yamlError turns yaml.v3 errors into a ParseError when a line is known.
func yamlError(filename string, err error) error {
	var te *yaml.TypeError
	if errors.As(err, &te) && len(te.Errors) > 0 {
		line := 0
		fmt.Sscanf(te.Errors[0], "line %d:", &line)
		return &ParseError{File: filename, Line: line, Message: strings.Join(te.Errors, "; ")}
	}

	msg := err.Error()
	line := 0
	if _, scanErr := fmt.Sscanf(msg, "yaml: line %d:", &line); scanErr == nil {
		msg = strings.TrimSpace(msg[strings.Index(msg, ":")+1:])
		msg = strings.TrimSpace(msg[strings.Index(msg, ":")+1:])
	}
	return &ParseError{File: filename, Line: line, Message: msg}
}
