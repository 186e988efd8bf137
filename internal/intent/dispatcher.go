// Package intent maps free-text cricket questions onto a fixed, ordered catalogue
// of analytical queries.
package intent

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/maxviazov/cricket-stats-service/internal/report"
	"github.com/rs/zerolog"
)

// Param is one captured value. Name is the logical parameter name: the capture
// group name with any trailing digits removed, so player1 and player2 are both
// "player".
type Param struct {
	Name  string
	Value string
}

// Params holds the non-empty captures of a match, left to right, one per logical name.
type Params []Param

// Get returns the value for name, or "".
func (p Params) Get(name string) string {
	for _, it := range p {
		if it.Name == name {
			return it.Value
		}
	}
	return ""
}

// Values returns the captured values in order.
func (p Params) Values() []string {
	out := make([]string, 0, len(p))
	for _, it := range p {
		out = append(out, it.Value)
	}
	return out
}

// Handler runs one read-only query.
type Handler func(ctx context.Context, p Params) (report.Result, error)

// Rule is one catalogue entry. Rules are evaluated in slice order and the first
// whose Pattern matches wins.
type Rule struct {
	Name    string
	Label   string
	Pattern *regexp.Regexp
	Handler Handler
}

// Dispatcher resolves questions against an ordered rule list.
type Dispatcher struct {
	rules []Rule
	log   zerolog.Logger
}

// NewDispatcher checks the rules once so Resolve never has to.
func NewDispatcher(rules []Rule, logger zerolog.Logger) (*Dispatcher, error) {
	if len(rules) == 0 {
		return nil, errors.New("intent: no rules")
	}
	names := make(map[string]struct{}, len(rules))
	for i, r := range rules {
		if r.Name == "" || r.Pattern == nil || r.Handler == nil {
			return nil, fmt.Errorf("intent: rule %d is incomplete", i)
		}
		if _, dup := names[r.Name]; dup {
			return nil, fmt.Errorf("intent: duplicate rule name %q", r.Name)
		}
		names[r.Name] = struct{}{}
	}
	l := logger.With().Str("module", "intent").Str("component", "dispatcher").Logger()
	return &Dispatcher{rules: append([]Rule(nil), rules...), log: l}, nil
}

// Rules returns a copy of the rule list in evaluation order.
func (d *Dispatcher) Rules() []Rule {
	return append([]Rule(nil), d.rules...)
}

// Normalize lower-cases and trims a question the way every pattern expects it.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Match finds the first rule matching text and extracts its parameters.
func (d *Dispatcher) Match(text string) (Rule, Params, bool) {
	normalized := Normalize(text)
	for _, r := range d.rules {
		groups := r.Pattern.FindStringSubmatch(normalized)
		if groups == nil {
			continue
		}
		return r, extractParams(r.Pattern, groups), true
	}
	return Rule{}, nil, false
}

func extractParams(re *regexp.Regexp, groups []string) Params {
	var out Params
	for i, name := range re.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		value := strings.TrimSpace(groups[i])
		if value == "" {
			continue
		}
		logical := strings.TrimRight(name, "0123456789")
		if out.Get(logical) != "" {
			continue
		}
		out = append(out, Param{Name: logical, Value: value})
	}
	return out
}

// Resolve answers text. It never fails: handler errors and unknown questions both
// come back as text.
func (d *Dispatcher) Resolve(ctx context.Context, text string) string {
	rule, params, ok := d.Match(text)
	if !ok {
		d.log.Debug().Str("query", text).Msg("No rule matched")
		return Help(text)
	}
	d.log.Debug().Str("rule", rule.Name).Strs("params", params.Values()).Msg("Rule matched")

	res, err := d.run(ctx, rule, params)
	if err != nil {
		d.log.Error().Err(err).Str("rule", rule.Name).Msg("Query handler failed")
		return "Error executing query: " + err.Error()
	}
	return report.Format(res, rule.Label)
}

// run shields Resolve from a panicking handler.
func (d *Dispatcher) run(ctx context.Context, rule Rule, params Params) (res report.Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%v", rec)
		}
	}()
	return rule.Handler(ctx, params)
}
