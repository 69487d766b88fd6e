// Package assertions checks responses against one-line expectations.
//
// An expectation reads "subject operator [value]":
//
//	status == 200
//	body.user.name == "Ada"
//	body.items length 3
//	body.items[0].id exists
//	info.content_type startsWith application/json
//	redirect matches /^https:/
//
// Subjects are status, body (with an optional gjson path), redirect, and
// info.<key>. Values are parsed as JSON when valid and kept as text otherwise.
// Expect turns a set of assertions into a response error handler.
package assertions
