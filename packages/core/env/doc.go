// Package env resolves {{variable}} placeholders in suite cases.
//
// Variables come from the suite's variables block, a .env file given with
// --env-file and HITMATCH_VAR_* process environment variables. {{$NAME}}
// reads the process environment directly and {{$name(args)}} calls a
// function from package builtin.
package env
