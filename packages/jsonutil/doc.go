// Package jsonutil holds the small JSON helpers the matchers and the runner
// share: a validity check, a decoder that keeps integers and floats apart,
// and a dotted-path lookup for pulling subjects out of JSON documents.
package jsonutil
