package plugins

import (
	"context"
)

// PlanStep is one entry in a load plan, in execution order.
type PlanStep struct {
	ID      string `json:"id"`
	Version string `json:"version,omitempty"`
	Action  string `json:"action"` // "load" or "skip" (already claimed)
}

// Plan is the dry-run result of a load: the plugins that would load, in
// order, plus any dependency cycles found on the way. Cycles are reported
// for visibility only; the loader tolerates them.
type Plan struct {
	Target string     `json:"target"`
	Steps  []PlanStep `json:"steps"`
	Cycles [][]string `json:"cycles,omitempty"`
}

// Plan walks the dependency graph the same way Load does, without claiming,
// activating, or instantiating anything. Manifest resolution failures are
// attributed exactly as Load would attribute them.
func (l *Loader) Plan(ctx context.Context, ref PluginRef) (*Plan, error) {
	plan := &Plan{Target: ref.ID}
	visited := make(map[string]bool)

	var walk func(id string, trail []string) error
	walk = func(id string, trail []string) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		// A back-edge onto the current trail is where Load's claim set
		// would break the recursion.
		for i, t := range trail {
			if t == id {
				cycle := append(append([]string(nil), trail[i:]...), id)
				plan.Cycles = append(plan.Cycles, cycle)
				return nil
			}
		}

		if visited[id] {
			return nil
		}
		visited[id] = true

		if l.isClaimed(id) {
			plan.Steps = append(plan.Steps, PlanStep{ID: id, Action: "skip"})
			return nil
		}

		manifest, err := l.manifests.Resolve(ctx, id)
		if err != nil {
			return newLoadError(id, StageManifest, err)
		}

		trail = append(trail, id)
		for _, dep := range manifest.Dependencies {
			if err := walk(dep.ID, trail); err != nil {
				return err
			}
		}

		plan.Steps = append(plan.Steps, PlanStep{ID: id, Version: manifest.Version, Action: "load"})
		return nil
	}

	if err := walk(ref.ID, nil); err != nil {
		return nil, err
	}

	return plan, nil
}
