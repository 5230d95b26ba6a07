package rules

import (
	"fmt"
	"sort"

	"github.com/lunnlew/m3u-filter/internal/models"
)

// Snapshot is a read-only view of the rule set definitions needed for one
// generation run. Sets must be keyed by id with Rules and Children
// preloaded; the evaluator never touches storage.
type Snapshot struct {
	// Sets is the arena of rule set definitions keyed by id.
	Sets map[models.ULID]*models.RuleSet
}

// NewSnapshot builds a snapshot arena from a list of rule sets.
func NewSnapshot(sets []*models.RuleSet) *Snapshot {
	arena := make(map[models.ULID]*models.RuleSet, len(sets))
	for _, s := range sets {
		arena[s.ID] = s
	}
	return &Snapshot{Sets: arena}
}

// compiledSet is one node of the compiled evaluation tree. Children are
// resolved pointers; the containment DAG is validated during compilation so
// evaluation cannot loop.
type compiledSet struct {
	id       models.ULID
	name     string
	enabled  bool
	logic    models.LogicType
	rules    []*CompiledRule
	children []*compiledSet
}

// Evaluator evaluates one compiled rule set tree against tracks. It holds
// no mutable state and is safe for concurrent use across tracks.
type Evaluator struct {
	root *compiledSet
}

// Compile builds an Evaluator for the rule set rooted at rootID. All
// configuration problems (unknown references, cyclic containment,
// malformed patterns on enabled rules) surface here as ConfigErrors,
// before any track is evaluated.
func Compile(rootID models.ULID, snap *Snapshot) (*Evaluator, error) {
	root, ok := snap.Sets[rootID]
	if !ok {
		return nil, &ConfigError{
			Cause:     ErrRuleSetNotFound,
			RuleSetID: rootID,
			Detail:    fmt.Sprintf("rule set %s not found", rootID),
		}
	}
	if !root.IsEnabled {
		return nil, &ConfigError{
			Cause:     ErrRuleSetDisabled,
			RuleSetID: rootID,
			Detail:    fmt.Sprintf("rule set %q is disabled", root.Name),
		}
	}

	onPath := make(map[models.ULID]bool)
	compiled, err := compileSet(root, snap, onPath)
	if err != nil {
		return nil, err
	}
	return &Evaluator{root: compiled}, nil
}

// compileSet recursively compiles one rule set. onPath holds the ids on the
// current containment path; revisiting one is a cycle.
func compileSet(set *models.RuleSet, snap *Snapshot, onPath map[models.ULID]bool) (*compiledSet, error) {
	if onPath[set.ID] {
		return nil, &ConfigError{
			Cause:     ErrCyclicRuleSet,
			RuleSetID: set.ID,
			Detail:    fmt.Sprintf("rule set %q directly or transitively contains itself", set.Name),
		}
	}
	onPath[set.ID] = true
	defer delete(onPath, set.ID)

	node := &compiledSet{
		id:      set.ID,
		name:    set.Name,
		enabled: set.IsEnabled,
		logic:   set.LogicType,
	}

	// A disabled child still needs cycle-safe references, but its rules
	// never run: it contributes a constant false to its parent.
	if node.enabled {
		memberships := append([]models.RuleSetRule(nil), set.Rules...)
		sort.SliceStable(memberships, func(i, j int) bool {
			return memberships[i].Position < memberships[j].Position
		})
		for _, m := range memberships {
			if m.Rule == nil || !m.Rule.IsEnabled {
				continue
			}
			compiled, err := CompileRule(m.Rule)
			if err != nil {
				return nil, err
			}
			node.rules = append(node.rules, compiled)
		}
	}

	children := append([]models.RuleSetChild(nil), set.Children...)
	sort.SliceStable(children, func(i, j int) bool {
		return children[i].Position < children[j].Position
	})
	for _, c := range children {
		childSet, ok := snap.Sets[c.ChildID]
		if !ok {
			return nil, &ConfigError{
				Cause:     ErrRuleSetNotFound,
				RuleSetID: c.ChildID,
				Detail:    fmt.Sprintf("rule set %q references unknown child %s", set.Name, c.ChildID),
			}
		}
		compiledChild, err := compileSet(childSet, snap, onPath)
		if err != nil {
			return nil, err
		}
		node.children = append(node.children, compiledChild)
	}

	return node, nil
}

// Evaluate reports whether the track is included by the rule set tree.
// Deterministic and side-effect free.
func (e *Evaluator) Evaluate(t *models.Track) bool {
	return e.root.evaluate(t)
}

// Filter returns the tracks included by the rule set tree, preserving the
// input's relative order as the pre-sort baseline.
func (e *Evaluator) Filter(tracks []*models.Track) []*models.Track {
	out := make([]*models.Track, 0, len(tracks))
	for _, t := range tracks {
		if e.root.evaluate(t) {
			out = append(out, t)
		}
	}
	return out
}

// evaluate combines rule and child operands under the set's logic type.
// A disabled set contributes false; an enabled rule contributes its match
// result for include actions and the negation for exclude actions.
func (s *compiledSet) evaluate(t *models.Track) bool {
	if !s.enabled {
		return false
	}

	if s.logic == models.LogicTypeOR {
		for _, r := range s.rules {
			if operandValue(r, t) {
				return true
			}
		}
		for _, c := range s.children {
			if c.evaluate(t) {
				return true
			}
		}
		// Vacuous OR is false.
		return false
	}

	for _, r := range s.rules {
		if !operandValue(r, t) {
			return false
		}
	}
	for _, c := range s.children {
		if !c.evaluate(t) {
			return false
		}
	}
	// Vacuous AND is true.
	return true
}

// operandValue applies the rule's action polarity to its match result.
func operandValue(r *CompiledRule, t *models.Track) bool {
	matched := r.Matches(t)
	if r.Action() == models.RuleActionExclude {
		return !matched
	}
	return matched
}
