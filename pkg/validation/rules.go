// Package validation evaluates a field's declarative rules against its
// effective value and composes the per-field error message shown to the user.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/values"
)

// RuleFunc evaluates one rule kind against a field's effective value and
// returns zero or more sub-error messages. Messages are composed verbatim
// into the field error, so keep them short and free of the field label.
type RuleFunc func(field schema.FieldDefinition, value string, params map[string]string) []string

// Registry maps rule kinds to their evaluators. The zero value is unusable;
// construct with NewRegistry, which seeds the canonical kinds.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]RuleFunc
}

// NewRegistry returns a registry pre-populated with the canonical rule kinds
// (required, min, max, minLength, maxLength, pattern, email, oneOf).
func NewRegistry() *Registry {
	r := &Registry{rules: make(map[string]RuleFunc)}
	r.MustRegister(schema.ValidationRuleRequired, ruleRequired)
	r.MustRegister(schema.ValidationRuleMin, ruleMin)
	r.MustRegister(schema.ValidationRuleMax, ruleMax)
	r.MustRegister(schema.ValidationRuleMinLength, ruleMinLength)
	r.MustRegister(schema.ValidationRuleMaxLength, ruleMaxLength)
	r.MustRegister(schema.ValidationRulePattern, rulePattern)
	r.MustRegister(schema.ValidationRuleEmail, ruleEmail)
	r.MustRegister(schema.ValidationRuleOneOf, ruleOneOf)
	return r
}

// Register adds a rule evaluator. Duplicate kinds return an error.
func (r *Registry) Register(kind string, fn RuleFunc) error {
	if kind == "" {
		return fmt.Errorf("validation: rule kind is required")
	}
	if fn == nil {
		return fmt.Errorf("validation: rule func is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rules[kind]; exists {
		return fmt.Errorf("validation: rule %q already registered", kind)
	}
	r.rules[kind] = fn
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(kind string, fn RuleFunc) {
	if err := r.Register(kind, fn); err != nil {
		panic(err)
	}
}

func (r *Registry) lookup(kind string) (RuleFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.rules[kind]
	return fn, ok
}

func ruleRequired(field schema.FieldDefinition, value string, _ map[string]string) []string {
	if values.IsEmpty(field, value) {
		return []string{"is required"}
	}
	return nil
}

func ruleMin(field schema.FieldDefinition, value string, params map[string]string) []string {
	if values.IsEmpty(field, value) {
		return nil
	}
	limit, err := strconv.ParseFloat(params["value"], 64)
	if err != nil {
		return []string{"has an invalid minimum rule"}
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed < limit {
		return []string{fmt.Sprintf("must be at least %s", params["value"])}
	}
	return nil
}

func ruleMax(field schema.FieldDefinition, value string, params map[string]string) []string {
	if values.IsEmpty(field, value) {
		return nil
	}
	limit, err := strconv.ParseFloat(params["value"], 64)
	if err != nil {
		return []string{"has an invalid maximum rule"}
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed > limit {
		return []string{fmt.Sprintf("must be at most %s", params["value"])}
	}
	return nil
}

func ruleMinLength(field schema.FieldDefinition, value string, params map[string]string) []string {
	if values.IsEmpty(field, value) {
		return nil
	}
	limit, err := strconv.Atoi(params["value"])
	if err != nil {
		return []string{"has an invalid minLength rule"}
	}
	if len([]rune(value)) < limit {
		return []string{fmt.Sprintf("must be at least %d characters", limit)}
	}
	return nil
}

func ruleMaxLength(field schema.FieldDefinition, value string, params map[string]string) []string {
	if values.IsEmpty(field, value) {
		return nil
	}
	limit, err := strconv.Atoi(params["value"])
	if err != nil {
		return []string{"has an invalid maxLength rule"}
	}
	if len([]rune(value)) > limit {
		return []string{fmt.Sprintf("must be at most %d characters", limit)}
	}
	return nil
}

var (
	patternMu    sync.RWMutex
	patternCache = make(map[string]*regexp.Regexp)
)

func compilePattern(expr string) (*regexp.Regexp, error) {
	patternMu.RLock()
	re, ok := patternCache[expr]
	patternMu.RUnlock()
	if ok {
		return re, nil
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}

	patternMu.Lock()
	patternCache[expr] = re
	patternMu.Unlock()
	return re, nil
}

func rulePattern(field schema.FieldDefinition, value string, params map[string]string) []string {
	if values.IsEmpty(field, value) {
		return nil
	}
	re, err := compilePattern(params["pattern"])
	if err != nil {
		return []string{"has an invalid pattern rule"}
	}
	if !re.MatchString(value) {
		return []string{"has an invalid format"}
	}
	return nil
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func ruleEmail(field schema.FieldDefinition, value string, _ map[string]string) []string {
	if values.IsEmpty(field, value) {
		return nil
	}
	if !emailPattern.MatchString(value) {
		return []string{"must be a valid email address"}
	}
	return nil
}

func ruleOneOf(field schema.FieldDefinition, value string, params map[string]string) []string {
	if values.IsEmpty(field, value) {
		return nil
	}
	allowed := strings.Split(params["values"], ",")
	for _, candidate := range allowed {
		if strings.TrimSpace(candidate) == value {
			return nil
		}
	}
	return []string{"is not an allowed value"}
}
