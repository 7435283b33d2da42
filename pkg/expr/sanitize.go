package expr

import (
	"fmt"
	"os"
	"strconv"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxExpressionSize is 4KB, far beyond any formula a person types.
	DefaultMaxExpressionSize = 4096
	// EnvMaxExpressionSize is the environment variable to override the default
	EnvMaxExpressionSize = "GSS_MAX_EXPRESSION_SIZE"
)

// Sanitize enforces the size limit, UTF-8 validity and the absence of control characters.
// Unlike free-form text, a formula with control characters is malformed, so it is rejected
// rather than cleaned. A limit <= 0 selects the environment or default limit.
func Sanitize(input string, limit int) error {
	if limit <= 0 {
		limit = maxExpressionSize()
	}
	if len(input) > limit {
		return &invalidf{pos: -1, msg: fmt.Sprintf("expression exceeds maximum allowed size: size=%d limit=%d", len(input), limit)}
	}

	if !utf8.ValidString(input) {
		return &invalidf{pos: -1, msg: "expression contains invalid UTF-8 sequences"}
	}

	for i, r := range input {
		if unicode.IsControl(r) && !isSafeControl(r) {
			return &invalidf{pos: i, msg: fmt.Sprintf("control character %U is not allowed", r)}
		}
	}
	return nil
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

func maxExpressionSize() int {
	if val := os.Getenv(EnvMaxExpressionSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxExpressionSize
}

// invalidf is the package-internal form of an InvalidExpressionError before the
// source text is attached.
type invalidf struct {
	pos int
	msg string
}

func (e *invalidf) Error() string { return e.msg }
