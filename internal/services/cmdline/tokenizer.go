// -----------------------------------------------------------------------
// Package cmdline splits build driver trace text into discrete shell
// invocations under Windows (CRT argv) or POSIX quoting rules.
// -----------------------------------------------------------------------

package cmdline

import (
	"fmt"
	"strings"

	"github.com/ternarybob/nativetrace/internal/models"
)

// Warning is a recoverable problem found while tokenizing.
// The affected invocation is still returned.
type Warning struct {
	Line    int    `json:"line" yaml:"line"`
	Message string `json:"message" yaml:"message"`
	Text    string `json:"text" yaml:"text"`
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s: %q", w.Line, w.Message, w.Text)
}

// rules is the per-dialect strategy, chosen once in Tokenize
type rules struct {
	backslash func(l *lexer)
	quote     func(l *lexer, c byte)
	// singleQuotes enables '...' literal groups
	singleQuotes bool
	// backgroundAmp makes "& " end an invocation, keeping "&" as its last argument
	backgroundAmp bool
}

var dialectRules = map[models.Dialect]rules{
	models.DialectWindows: {
		backslash: crtBackslash,
		quote:     crtQuote,
	},
	models.DialectPOSIX: {
		backslash:     posixBackslash,
		quote:         posixQuote,
		singleQuotes:  true,
		backgroundAmp: true,
	},
}

type lexer struct {
	src   string
	pos   int
	line  int
	rules rules

	quote   byte // open quote character, 0 when unquoted
	started bool // current token exists even if empty ("")
	tok     strings.Builder
	tokens  []string

	invStart int
	out      []models.Invocation
	warnings []Warning
}

// Tokenize splits text into invocations. Invocations are separated by
// newlines and "&&"; under POSIX a "&" followed by whitespace also ends the
// invocation and stays on it as a trailing "&" argument. Blank candidates
// produce nothing.
func Tokenize(text string, dialect models.Dialect) ([]models.Invocation, []Warning) {
	r, ok := dialectRules[dialect]
	if !ok {
		r = dialectRules[models.DialectPOSIX]
	}
	l := &lexer{src: text, line: 1, rules: r}
	l.run()
	return l.out, l.warnings
}

// Split tokenizes a single command line and returns its raw tokens,
// executable first. Separators are honoured: only the first invocation is
// returned.
func Split(line string, dialect models.Dialect) []string {
	invs, _ := Tokenize(line, dialect)
	if len(invs) == 0 {
		return nil
	}
	return append([]string{invs[0].Executable}, invs[0].Args...)
}

func (l *lexer) run() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.endInvocation()
			l.pos++
			l.line++
			l.invStart = l.pos
		case c == '\\' && l.quote != '\'':
			l.rules.backslash(l)
		case c == '"' || (c == '\'' && l.rules.singleQuotes):
			l.rules.quote(l, c)
		case l.quote != 0:
			l.write(c)
			l.pos++
		case c == '&' && l.peek(1) == '&':
			l.endInvocation()
			l.pos += 2
			l.invStart = l.pos
		case c == '&' && l.rules.backgroundAmp && isSpace(l.peek(1)):
			l.endToken()
			l.tokens = append(l.tokens, "&")
			l.endInvocation()
			l.pos++
			l.invStart = l.pos
		case isSpace(c):
			l.endToken()
			l.pos++
		default:
			l.write(c)
			l.pos++
		}
	}
	l.endInvocation()
}

func (l *lexer) peek(n int) byte {
	if l.pos+n < len(l.src) {
		return l.src[l.pos+n]
	}
	return 0
}

func (l *lexer) write(c byte) {
	l.tok.WriteByte(c)
	l.started = true
}

func (l *lexer) endToken() {
	if !l.started {
		return
	}
	l.tokens = append(l.tokens, l.tok.String())
	l.tok.Reset()
	l.started = false
}

func (l *lexer) endInvocation() {
	if l.quote != 0 {
		l.warn(fmt.Sprintf("unterminated %c quote", l.quote))
		l.quote = 0
	}
	l.endToken()
	if len(l.tokens) > 0 {
		l.out = append(l.out, models.NewInvocation(l.tokens))
	}
	l.tokens = nil
}

func (l *lexer) warn(msg string) {
	end := l.pos
	if end > len(l.src) {
		end = len(l.src)
	}
	l.warnings = append(l.warnings, Warning{
		Line:    l.line,
		Message: msg,
		Text:    strings.TrimSpace(l.src[l.invStart:end]),
	})
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\v' || c == '\f'
}

// posixBackslash escapes the next character unconditionally.
// Backslash-newline is a line continuation and disappears.
func posixBackslash(l *lexer) {
	next := l.peek(1)
	switch {
	case l.pos+1 >= len(l.src):
		l.warn("dangling escape at end of input")
		l.write('\\')
		l.pos++
	case next == '\n':
		l.pos += 2
		l.line++
	case next == '\r' && l.peek(2) == '\n':
		l.pos += 3
		l.line++
	default:
		l.write(next)
		l.pos += 2
	}
}

func posixQuote(l *lexer, c byte) {
	switch l.quote {
	case 0:
		l.quote = c
	case c:
		l.quote = 0
	default:
		l.tok.WriteByte(c)
	}
	l.started = true
	l.pos++
}

// crtBackslash applies the CRT rule: 2n backslashes + quote -> n backslashes
// and the quote toggles; 2n+1 backslashes + quote -> n backslashes and a
// literal quote. Backslashes not followed by a quote are literal.
func crtBackslash(l *lexer) {
	n := 0
	for l.pos+n < len(l.src) && l.src[l.pos+n] == '\\' {
		n++
	}
	l.started = true
	if l.pos+n < len(l.src) && l.src[l.pos+n] == '"' {
		l.tok.WriteString(strings.Repeat(`\`, n/2))
		if n%2 == 1 {
			l.tok.WriteByte('"')
			l.pos += n + 1
			return
		}
		l.pos += n
		return
	}
	l.tok.WriteString(strings.Repeat(`\`, n))
	l.pos += n
}

// crtQuote toggles quoting; inside quotes "" is one literal quote
func crtQuote(l *lexer, _ byte) {
	l.started = true
	if l.quote != 0 && l.peek(1) == '"' {
		l.tok.WriteByte('"')
		l.pos += 2
		return
	}
	if l.quote == 0 {
		l.quote = '"'
	} else {
		l.quote = 0
	}
	l.pos++
}
