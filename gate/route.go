// Package gate implements the resource-server middleware that enforces
// payment on matching routes: it challenges unpaid requests with a 402,
// delegates verification and settlement to a facilitator, and buffers the
// protected handler's response until settlement has a terminal outcome.
package gate

import (
	"net/url"
	"regexp"
	"strings"
)

// RouteRule binds a method+path pattern to a price and, optionally, to a
// payTo/asset override and request-specific description/timeout/mimetype.
// Patterns compile to a matcher at registration time rather than on every
// request.
type RouteRule struct {
	// Method is the HTTP verb the rule applies to, or "*" for any verb.
	Method string
	// Pattern is the path pattern: "*" matches any run of characters,
	// including "/" separators, and "[name]" matches exactly one path segment.
	Pattern string
	// Price is either a decimal string (interpreted per Asset) or a whole
	// unit amount already in the asset's smallest unit.
	Price string
	// Asset is the required asset, or AssetNative. Empty means AssetNative.
	Asset string
	// AssetDecimals is the contract asset's decimal count; ignored for the
	// native asset. Zero means the default of 7.
	AssetDecimals int
	// PayTo overrides the gate's default receiver account for this rule.
	PayTo string
	// Description, MimeType, and TimeoutSeconds populate the Challenge this
	// rule produces; TimeoutSeconds of zero means the package default.
	Description    string
	MimeType       string
	TimeoutSeconds int
}

// compiledRule is a RouteRule plus its compiled path matcher. Rules compare
// by specificity to break ties between multiple matching rules: literal
// text outranks a "[name]" segment, which outranks a "*" glob.
type compiledRule struct {
	rule    RouteRule
	method  string
	matcher *regexp.Regexp
	// specificity scores how narrowly the pattern matches, so the most
	// specific rule wins when several match the same request.
	specificity int
}

// Specificity weights for one unit of pattern: a literal character pins
// down exactly one input character, a "[name]" segment pins down exactly
// one path segment, and a "*" glob can absorb any run of characters
// (including further "/" separators) so it is the least specific.
const (
	literalWeight  = 100
	paramWeight    = 10
	wildcardWeight = 1
)

// metaCharEscaper matches regexp metacharacters other than * and the bracket
// forms this package gives its own meaning; they are escaped verbatim so a
// literal path segment containing them still matches literally.
var metaCharEscaper = regexp.MustCompile(`[.+?()|{}^$\\]`)

// compilePattern turns a RouteRule path pattern into an anchored regexp:
// "*" becomes ".*?", "[name]" becomes "[^/]+" (a single path segment), and
// every other regexp metacharacter is escaped so it matches literally. It
// also returns the pattern's specificity score for Table.Match's tie-break.
func compilePattern(pattern string) (*regexp.Regexp, string, int, error) {
	var b strings.Builder
	b.WriteString("^")
	specificity := 0
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '*':
			b.WriteString(".*?")
			specificity += wildcardWeight
		case '[':
			end := strings.IndexRune(string(runes[i+1:]), ']')
			if end < 0 {
				b.WriteString(`\[`)
				specificity += literalWeight
				continue
			}
			b.WriteString(`[^/]+`)
			specificity += paramWeight
			i += end + 1
		default:
			b.WriteString(metaCharEscaper.ReplaceAllString(string(runes[i]), `\$0`))
			specificity += literalWeight
		}
	}
	b.WriteString("$")
	source := b.String()
	re, err := regexp.Compile(source)
	if err != nil {
		return nil, "", 0, err
	}
	return re, source, specificity, nil
}

// Table is a compiled, ordered set of RouteRules. It is immutable after
// construction: a gate owns one Table for its process lifetime.
type Table struct {
	rules []compiledRule
}

// NewTable compiles rules into a Table. No pattern is skipped: the first
// error from compilePattern is returned and no Table is built.
func NewTable(rules []RouteRule) (*Table, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		matcher, _, specificity, err := compilePattern(rule.Pattern)
		if err != nil {
			return nil, err
		}
		method := rule.Method
		if method == "" {
			method = "*"
		}
		compiled = append(compiled, compiledRule{
			rule:        rule,
			method:      method,
			matcher:     matcher,
			specificity: specificity,
		})
	}
	return &Table{rules: compiled}, nil
}

// NormalizePath strips query and fragment, collapses redundant slashes, and
// trims a trailing slash (except for the root) so "/x//y/", "/x/y", and
// "/x/y?q=1" all normalize identically.
func NormalizePath(requestURI string) string {
	u, err := url.Parse(requestURI)
	path := requestURI
	if err == nil {
		path = u.Path
	}
	segments := strings.Split(path, "/")
	kept := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		kept = append(kept, seg)
	}
	normalized := "/" + strings.Join(kept, "/")
	return normalized
}

// Match returns the most specific RouteRule whose method and path pattern
// match method and requestURI, and true. It returns false when no rule
// matches. Among multiple matches, the rule with the higher specificity
// score wins.
func (t *Table) Match(method, requestURI string) (RouteRule, bool) {
	path := NormalizePath(requestURI)
	var best *compiledRule
	for i := range t.rules {
		candidate := &t.rules[i]
		if candidate.method != "*" && candidate.method != method {
			continue
		}
		if !candidate.matcher.MatchString(path) {
			continue
		}
		if best == nil || candidate.specificity > best.specificity {
			best = candidate
		}
	}
	if best == nil {
		return RouteRule{}, false
	}
	return best.rule, true
}
