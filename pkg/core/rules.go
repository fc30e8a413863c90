package core

import (
	"log"
	"strings"
	"sync"

	"github.com/Knetic/govaluate"

	"sailhook/pkg/event"
	"sailhook/pkg/sailthru"
)

// Rule actions.
const (
	ActionForward = "forward"
	ActionDrop    = "drop"
)

// Rule defines a condition and the action taken when the condition is met.
type Rule struct {
	// ID is an optional identifier for the rule.
	ID string `yaml:"id"`
	// When is a govaluate expression that is evaluated against the event data.
	When string `yaml:"when"`
	// Action is what happens when the 'When' expression is true: forward the
	// event to the destination or drop it. Defaults to forward.
	Action string `yaml:"action"`
}

// compiledRule is a pre-processed version of a Rule.
type compiledRule struct {
	id     string
	when   string
	action string
	vars   []string
	varMap map[string]string
	expr   *govaluate.EvaluableExpression
}

// RuleEngine evaluates events against a set of rules.
type RuleEngine struct {
	mu     sync.RWMutex
	rules  []compiledRule
	strict bool
	logger *log.Logger
}

// RuleEvent is the view of an inbound event the rules evaluate against.
// RawObject is the decoded event body for $-path lookups; Data is a flat
// map for bare identifiers.
type RuleEvent struct {
	RawPayload []byte
	RawObject  interface{}
	Data       map[string]interface{}
}

// RuleEventFrom builds the rules view of a decoded analytics event. Bare
// identifiers see the underscore-flattened event, $-paths see the raw body.
func RuleEventFrom(evt *event.Event) RuleEvent {
	ruleEvent := RuleEvent{Data: sailthru.Flatten(evt.Raw)}
	if evt.Raw != nil {
		ruleEvent.RawObject = evt.Raw
	}
	return ruleEvent
}

// MatchedRule reports the rule that decided an event.
type MatchedRule struct {
	ID     string
	When   string
	Action string
}

// NewRuleEngine creates a new RuleEngine from a set of rules.
// It pre-compiles the expressions in the rules for faster evaluation.
func NewRuleEngine(cfg RulesConfig) (*RuleEngine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	engine := &RuleEngine{logger: logger, strict: cfg.Strict}
	if err := engine.Update(cfg); err != nil {
		return nil, err
	}
	return engine, nil
}

// Update replaces the rule set and strict mode in the engine.
func (r *RuleEngine) Update(cfg RulesConfig) error {
	rules := make([]compiledRule, 0, len(cfg.Rules))
	for _, rule := range cfg.Rules {
		rewritten, varMap := rewriteExpression(rule.When)
		expr, err := govaluate.NewEvaluableExpressionWithFunctions(rewritten, ruleFunctions())
		if err != nil {
			return err
		}
		action := rule.Action
		if action == "" {
			action = ActionForward
		}
		ruleID := strings.TrimSpace(rule.ID)
		if ruleID == "" {
			ruleID = ruleIDFromParts(rule.When, action)
		}
		rules = append(rules, compiledRule{
			id:     ruleID,
			when:   rule.When,
			action: action,
			vars:   expr.Vars(),
			varMap: varMap,
			expr:   expr,
		})
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = rules
	r.strict = cfg.Strict
	if cfg.Logger != nil {
		r.logger = cfg.Logger
	}
	return nil
}

// Allow runs an event through the rules in order. The first rule whose
// condition holds decides the event; with no match, strict mode drops and
// lenient mode forwards. The returned MatchedRule is nil when no rule
// matched.
func (r *RuleEngine) Allow(event RuleEvent) (bool, *MatchedRule) {
	return r.AllowWithLogger(event, nil)
}

// AllowWithLogger evaluates like Allow using the provided logger.
func (r *RuleEngine) AllowWithLogger(event RuleEvent, logger *log.Logger) (bool, *MatchedRule) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if logger == nil {
		logger = r.logger
	}
	if len(r.rules) == 0 {
		return true, nil
	}

	for _, rule := range r.rules {
		params, missing := resolveRuleParams(logger, event, rule.vars, rule.varMap)
		if r.strict && len(missing) > 0 {
			logger.Printf("rule %s skipped, missing params: %v", rule.id, missing)
			continue
		}
		result, err := rule.expr.Evaluate(params)
		if err != nil {
			logger.Printf("rule %s eval failed: %v", rule.id, err)
			continue
		}
		ok, _ := result.(bool)
		if !ok {
			continue
		}
		matched := &MatchedRule{ID: rule.id, When: rule.when, Action: rule.action}
		return rule.action != ActionDrop, matched
	}

	if r.strict {
		return false, nil
	}
	return true, nil
}
