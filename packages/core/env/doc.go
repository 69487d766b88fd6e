// Package env resolves {{...}} templates in command-line request input.
//
// Routes, header values, and request bodies passed to riqwest may reference
// variables ({{name}}), process environment ({{$NAME}}), and a handful of
// generator functions ({{uuid()}}, {{now()}}, {{timestamp()}}). Variables come
// from .env files and --var flags.
package env
