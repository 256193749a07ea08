package httphdr

import "fmt"

// RFC 2616 sections named by parse errors.
const (
	RuleBasic       = "RFC2616:2.2"
	RuleVersion     = "RFC2616:3.1"
	RuleField       = "RFC2616:4.2"
	RuleRequestLine = "RFC2616:5.1"
)

// ParseError reports which grammar rule a header block violated and where.
type ParseError struct {
	Rule   string
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	what := "Header"
	switch e.Rule {
	case RuleBasic:
		what = "Token"
	case RuleRequestLine:
		what = "Request-Line"
	case RuleField:
		what = "Field"
	case RuleVersion:
		what = "HTTP-Version"
	}
	return fmt.Sprintf("%s is not properly formatted [%s]: %s at offset %d", what, e.Rule, e.Msg, e.Offset)
}

func newParseError(rule string, offset int, msg string) *ParseError {
	return &ParseError{
		Rule:   rule,
		Offset: offset,
		Msg:    msg,
	}
}
