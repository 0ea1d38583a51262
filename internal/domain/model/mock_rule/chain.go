package model

// ChainedRules answers the same request differently on successive calls.
// It is not safe for concurrent use; the owning registry serializes access.
type ChainedRules struct {
	rules []*MatchRule
}

// NewChainedRules returns a chain over rules, head first. Nil rules are
// skipped.
func NewChainedRules(rules ...*MatchRule) *ChainedRules {
	c := &ChainedRules{rules: make([]*MatchRule, 0, len(rules))}
	for _, r := range rules {
		if r != nil {
			c.rules = append(c.rules, r)
		}
	}
	return c
}

// Head returns the current rule, or nil once the chain is exhausted.
func (c *ChainedRules) Head() *MatchRule {
	if len(c.rules) == 0 {
		return nil
	}
	return c.rules[0]
}

// Consume drops the head and returns the new one, nil when exhausted.
func (c *ChainedRules) Consume() *MatchRule {
	if len(c.rules) == 0 {
		return nil
	}
	c.rules[0] = nil
	c.rules = c.rules[1:]
	return c.Head()
}

func (c *ChainedRules) Len() int { return len(c.rules) }

func (c *ChainedRules) Exhausted() bool { return len(c.rules) == 0 }

// Matches reports whether the head answers req.
func (c *ChainedRules) Matches(req RequestInfo) bool {
	head := c.Head()
	return head != nil && head.Matches(req)
}
