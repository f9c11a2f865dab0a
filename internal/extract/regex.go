package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/TheMichaelB/seedrecover/internal/models"
)

// Pattern names.
const (
	PatternWalletSeed = "wallet_seed"
	PatternWalletV2   = "wallet_v2"
	PatternKeyring    = "keyring_controller"
	PatternMatch      = "fragment_match"
	PatternCapture    = "fragment_capture"
	PatternIV         = "fragment_iv"
	PatternData       = "fragment_data"
	PatternSalt       = "fragment_salt"
)

// JSPatterns are the vault patterns as written for the extension's own
// decryptor, in JavaScript literal form.
var JSPatterns = map[string]string{
	PatternWalletSeed: `/{"wallet-seed":"([^"}]*)"/`,
	PatternWalletV2:   `/"wallet":("{[ -~]*\\"version\\":2}")/`,
	PatternKeyring:    `/"KeyringController":{"vault":"{[^{}]*}"/`,
	PatternMatch:      `/Keyring[0-9][^\}]*(\{[^\{\}]*\\"\})/gu`,
	PatternCapture:    `/Keyring[0-9][^\}]*(\{[^\{\}]*\\"\})/u`,
	PatternIV:         `/\\"iv.{1,4}[^A-Za-z0-9+\/]{1,10}([A-Za-z0-9+\/]{10,40}=*)/u`,
	PatternData:       `/\\"[^":,is]*\\":\\"([A-Za-z0-9+\/]*=*)/u`,
	PatternSalt:       `/,\\"salt.{1,4}[^A-Za-z0-9+\/]{1,10}([A-Za-z0-9+\/]{10,100}=*)/u`,
}

var quantifier = regexp.MustCompile(`^\{\d+(,\d*)?\}`)

// PortJSRegex converts a JavaScript regex literal to RE2 syntax. The slash
// delimiters and flags are dropped and every literal '{' that does not open
// a counted repetition is escaped.
func PortJSRegex(src string) string {
	body := src
	if strings.HasPrefix(src, "/") {
		if end := strings.LastIndex(src, "/"); end > 0 && isFlags(src[end+1:]) {
			body = src[1:end]
		}
	}

	var b strings.Builder
	b.Grow(len(body) + 8)

	escaped := false
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '{' && !quantifier.MatchString(body[i:]):
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}

	return b.String()
}

func isFlags(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// CompilePatterns ports and compiles a set of JavaScript literals.
func CompilePatterns(literals map[string]string) (map[string]*regexp.Regexp, error) {
	out := make(map[string]*regexp.Regexp, len(literals))
	for name, lit := range literals {
		re, err := regexp.Compile(PortJSRegex(lit))
		if err != nil {
			return nil, models.NewError(models.KindFatal, "compile "+name, err)
		}
		out[name] = re
	}
	return out, nil
}

var patterns = mustCompile(JSPatterns)

func mustCompile(literals map[string]string) map[string]*regexp.Regexp {
	compiled, err := CompilePatterns(literals)
	if err != nil {
		panic(fmt.Sprintf("extract: %v", err))
	}
	return compiled
}
