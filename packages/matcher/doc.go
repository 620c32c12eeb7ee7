// Package matcher implements named assertion matchers and the registry that
// dispatches to them.
//
// A matcher is a stateless predicate over an assertion invocation: the
// assertion name, the subject under test and an ordered argument list. The
// host asks the registry for a matcher that supports the invocation and then
// runs the positive or negative match depending on the assertion polarity.
//
// Built-in matchers:
//   - haveJsonKeyWithValue: subject is JSON with a dotted key path holding a value
//   - haveJsonKey: subject is JSON containing a dotted key path
//   - beValidJson: subject is syntactically valid JSON
//   - rangeBetween: subject is a number within an inclusive range
//
// Failures are returned as Result values carrying a message; matchers never
// panic or return errors for bad input.
package matcher
