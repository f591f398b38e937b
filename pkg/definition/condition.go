package definition

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/aretw0/switchyard/pkg/domain"
)

// Condition is a parsed branch guard.
type Condition struct {
	Name    string
	Op      string // "", "!", "==" or "!="
	Literal any
	source  string
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ParseCondition parses "name", "!name", "name == literal" or "name != literal".
// The empty string is the always-true condition.
func ParseCondition(s string) (Condition, error) {
	src := strings.TrimSpace(s)
	c := Condition{source: src}
	if src == "" {
		return c, nil
	}

	for _, op := range []string{"==", "!="} {
		if lhs, rhs, ok := strings.Cut(src, op); ok {
			c.Name = strings.TrimSpace(lhs)
			c.Op = op
			c.Literal = ParseScalar(rhs)
			return c, c.checkName(s)
		}
	}

	if rest, ok := strings.CutPrefix(src, "!"); ok {
		c.Op = "!"
		src = strings.TrimSpace(rest)
	}
	c.Name = src
	return c, c.checkName(s)
}

func (c Condition) checkName(raw string) error {
	if !identRe.MatchString(c.Name) {
		return fmt.Errorf("invalid condition %q: %q is not an argument name", raw, c.Name)
	}
	return nil
}

// Always reports whether c is the empty condition.
func (c Condition) Always() bool { return c.Name == "" }

// Eval reports whether args satisfy c. Missing arguments are falsy and
// compare unequal to every literal.
func (c Condition) Eval(args domain.Args) bool {
	if c.Always() {
		return true
	}
	v, ok := args.Get(c.Name)
	switch c.Op {
	case "==":
		return ok && equalValues(v, c.Literal)
	case "!=":
		return !ok || !equalValues(v, c.Literal)
	case "!":
		return !ok || !truthy(v)
	default:
		return ok && truthy(v)
	}
}

func (c Condition) String() string { return c.source }

func equalValues(a, b any) bool {
	a, b = Normalize(a), Normalize(b)
	if !comparableValue(a) || !comparableValue(b) {
		return false
	}
	return a == b
}

func comparableValue(v any) bool {
	return v == nil || reflect.TypeOf(v).Comparable()
}

func truthy(v any) bool {
	switch x := Normalize(v).(type) {
	case nil:
		return false
	case bool:
		return x
	case int64:
		return x != 0
	case float64:
		return x != 0
	case string:
		return x != ""
	default:
		return true
	}
}
