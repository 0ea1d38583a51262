package repo

import (
	"fmt"
	"sync"

	model "go_mock_interceptor/internal/domain/model/mock_rule"
	configs "go_mock_interceptor/internal/infra/config"
	"go_mock_interceptor/utils"
)

// registryImpl keeps rules in insertion order behind one RWMutex.
type registryImpl struct {
	mu      sync.RWMutex
	rules   []*model.MatchRule
	ignores []model.IgnoreRule
	chains  []*model.ChainedRules
	mode    model.Mode
	hook    OverrideHook
	version uint64
}

var _ RegistryIface = (*registryImpl)(nil)

var (
	defaultRegistry     RegistryIface
	defaultRegistryOnce sync.Once
)

// Default returns the process-wide registry, created on first use in opt-out
// mode.
func Default() RegistryIface {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry(model.ModeOptOut)
	})
	return defaultRegistry
}

func NewRegistry(mode model.Mode) RegistryIface {
	if !mode.IsValid() {
		mode = model.ModeOptOut
	}
	return &registryImpl{mode: mode}
}

// NewRegistryFromConfig builds a registry with the configured mode and ignore
// rules. Rule fixtures are loaded separately since they may read files.
func NewRegistryFromConfig(c *configs.MockerConfig) (RegistryIface, error) {
	mode := model.Mode(c.Mode)
	if !mode.IsValid() {
		return nil, fmt.Errorf("unknown mode %q", c.Mode)
	}
	r := &registryImpl{mode: mode}
	for i, ic := range c.Ignore {
		ignore, err := model.NewIgnoreRule(ic.URL, model.URLMatchMode(ic.Match))
		if err != nil {
			return nil, fmt.Errorf("ignore[%d]: %w", i, err)
		}
		r.ignores = append(r.ignores, ignore)
	}
	return r, nil
}

func (r *registryImpl) Register(rule *model.MatchRule) bool {
	if rule == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	replaced := false
	kept := r.rules[:0]
	for _, existing := range r.rules {
		if existing.SameSlotAs(rule) {
			replaced = true
			continue
		}
		kept = append(kept, existing)
	}
	for i := len(kept); i < len(r.rules); i++ {
		r.rules[i] = nil
	}
	r.rules = append(kept, rule)
	r.version++

	utils.GetLogger().Debugf("registered %s (replaced: %v)", rule, replaced)
	return replaced
}

func (r *registryImpl) RegisterChain(chain *model.ChainedRules) {
	if chain == nil || chain.Exhausted() {
		return
	}
	r.mu.Lock()
	r.chains = append(r.chains, chain)
	r.version++
	r.mu.Unlock()
	utils.GetLogger().Debugf("registered chain of %d rules", chain.Len())
}

func (r *registryImpl) Ignore(rule model.IgnoreRule) {
	r.mu.Lock()
	r.ignores = append(r.ignores, rule)
	r.version++
	r.mu.Unlock()
	utils.GetLogger().Debugf("added %s", rule)
}

// ShouldHandle decides whether req is intercepted at all. In opt-in mode only
// requests with a rule are, and ignore rules are not consulted.
func (r *registryImpl) ShouldHandle(req model.RequestInfo) bool {
	if r.Mode() == model.ModeOptIn {
		return r.Resolve(req) != nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ignore := range r.ignores {
		if ignore.Matches(req.GetURL()) {
			return false
		}
	}
	return true
}

// Resolve selects the rule for req: override hook, then chains, then URL
// rules, then file-extension rules. Within a pass the first registered rule
// wins.
func (r *registryImpl) Resolve(req model.RequestInfo) *model.MatchRule {
	log := utils.GetLogger()

	// The hook runs without the lock so it may use the registry itself.
	r.mu.RLock()
	hook := r.hook
	r.mu.RUnlock()
	if hook != nil {
		if rule := hook(req); rule != nil {
			log.Debugf("override hook resolved %s %s", req.GetMethod(), req.GetURL())
			return rule
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, chain := range r.chains {
		if chain.Matches(req) {
			head := chain.Head()
			log.Debugf("chain resolved %s %s to %s", req.GetMethod(), req.GetURL(), head.ID())
			return head.WithCompletion(func() { r.consumeChain(chain, head) })
		}
	}

	for _, rule := range r.rules {
		if !rule.IsExtensionRule() && rule.Matches(req) {
			log.Debugf("resolved %s %s to %s", req.GetMethod(), req.GetURL(), rule.ID())
			return rule
		}
	}
	for _, rule := range r.rules {
		if rule.IsExtensionRule() && rule.Matches(req) {
			log.Debugf("resolved %s %s by extension to %s", req.GetMethod(), req.GetURL(), rule.ID())
			return rule
		}
	}
	return nil
}

// consumeChain advances chain once head has been delivered. Concurrent
// deliveries of the same head advance it only once.
func (r *registryImpl) consumeChain(chain *model.ChainedRules, head *model.MatchRule) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if chain.Head() != head {
		return
	}
	r.version++
	next := chain.Consume()
	if next != nil {
		return
	}
	for i, c := range r.chains {
		if c == chain {
			r.chains = append(r.chains[:i], r.chains[i+1:]...)
			break
		}
	}
	utils.GetLogger().Debugf("chain exhausted")
}

func (r *registryImpl) RemoveAll() {
	r.mu.Lock()
	r.rules = nil
	r.ignores = nil
	r.chains = nil
	r.version++
	r.mu.Unlock()
	utils.GetLogger().Info("removed all rules")
}

func (r *registryImpl) SetMode(mode model.Mode) {
	if !mode.IsValid() {
		utils.GetLogger().Warnf("ignoring unknown mode %q", mode)
		return
	}
	r.mu.Lock()
	r.mode = mode
	r.version++
	r.mu.Unlock()
	utils.GetLogger().Infof("mode set to %s", mode)
}

func (r *registryImpl) Mode() model.Mode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mode
}

func (r *registryImpl) SetOverrideHook(hook OverrideHook) {
	r.mu.Lock()
	r.hook = hook
	r.version++
	r.mu.Unlock()
}

func (r *registryImpl) Version() (uint64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version, r.hook == nil
}

func (r *registryImpl) ClearOverrideHook() {
	r.SetOverrideHook(nil)
}

func (r *registryImpl) Rules() []*model.MatchRule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*model.MatchRule(nil), r.rules...)
}

func (r *registryImpl) IgnoreRules() []model.IgnoreRule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.IgnoreRule(nil), r.ignores...)
}
