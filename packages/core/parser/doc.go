// Package parser reads hitmatch suite files.
//
// A suite is a YAML document with optional variables, an optional default
// database connection and a list of cases. Each case names an assertion,
// a subject and the positional arguments for the matcher:
//
//	variables:
//	  name: Ann
//	cases:
//	  - name: user name
//	    assert: haveJsonKeyWithValue
//	    subject: '{"user":{"name":"Ann"}}'
//	    args: [user.name, "{{name}}"]
//
// Subjects are literal values, or mappings reading from a file
// ({file, path}) or a database query ({query, column, db}).
package parser
