// Package builtin provides the functions available inside placeholders.
//
// Available functions:
//   - uuid(): Random UUID v4
//   - now(): Current time, RFC 3339
//   - date(format): Current UTC date, Go layout, default 2006-01-02
//   - timestamp(), timestampMs(): Current Unix time as an integer
//   - random(min, max): Random integer in the closed range
//   - base64(s), md5(s), sha256(s): Encodings and digests
//   - upper(s), lower(s), len(s): String helpers
//
// Functions are invoked using the {{$name(args)}} syntax in suite files.
// Integer results keep their type when the placeholder is the whole value,
// so {{$timestamp()}} can be a rangeBetween bound.
package builtin
