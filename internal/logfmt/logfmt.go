// Package logfmt compiles access-log format templates into line matchers.
//
// A template is literal text interspersed with $name directives, e.g. the
// nginx "combined" format. Compiling a template yields a Matcher whose named
// capture groups are exactly the template's directives, in template order.
package logfmt

import (
	"fmt"
	"regexp"
	"strings"
)

// Built-in format templates, keyed by the name accepted on the command line.
const (
	FormatCombined = `$remote_addr - $remote_user [$time_local] "$request" $status $body_bytes_sent "$http_referer" "$http_user_agent"`
	FormatCommon   = `$remote_addr - $remote_user [$time_local] "$request" $status $body_bytes_sent`
)

var builtinFormats = map[string]string{
	"combined": FormatCombined,
	"common":   FormatCommon,
}

// These patterns are known to compile.
var (
	directiveRegexp   = regexp.MustCompile(`\$([a-zA-Z0-9_]+)`)
	specialCharRegexp = regexp.MustCompile(`([\.\*\+\?\|\(\)\{\}\[\]])`)
)

// CompileError reports a template that did not produce a valid matcher.
type CompileError struct {
	Template string
	Err      error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("logfmt: cannot compile template %q: %v", e.Template, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Resolve maps a format name to its template. A format string that itself
// contains directives is taken verbatim, so callers can pass a custom
// template instead of a built-in name.
func Resolve(format string) (string, error) {
	if t, ok := builtinFormats[format]; ok {
		return t, nil
	}
	if strings.ContainsRune(format, '$') {
		return format, nil
	}
	return "", fmt.Errorf("logfmt: unknown format %q (built-ins: combined, common)", format)
}

// Matcher is a compiled format template. It is immutable and safe for
// concurrent use by any number of goroutines.
type Matcher struct {
	re *regexp.Regexp
}

// Compile turns a format template into a Matcher. Every regex metacharacter
// in the literal text is escaped, then each $name directive becomes the
// capture group (?P<name>.*). The literals between directives bound what
// each group can match.
func Compile(template string) (*Matcher, error) {
	pattern := specialCharRegexp.ReplaceAllString(template, `\$1`)
	pattern = directiveRegexp.ReplaceAllString(pattern, `(?P<$1>.*)`)

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &CompileError{Template: template, Err: err}
	}
	return &Matcher{re: re}, nil
}

// Directives returns the matcher's capture-group names in template order.
func (m *Matcher) Directives() []string {
	names := m.re.SubexpNames()
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Match applies the matcher to one line. On success it returns the captured
// value of every directive; a directive missing from the map means the
// template never declared it. ok is false when the line does not match.
func (m *Matcher) Match(line string) (captures map[string]string, ok bool) {
	sub := m.re.FindStringSubmatch(line)
	if sub == nil {
		return nil, false
	}

	captures = make(map[string]string, len(sub))
	for i, name := range m.re.SubexpNames() {
		if name != "" {
			captures[name] = sub[i]
		}
	}
	return captures, true
}
