package githist

import "context"

// Reconcile implements §4.5's startup invalidation decision: it compares
// the cache's stored head against the current branch head and decides
// whether the on-disk cache is still usable, needs an incremental append,
// or requires a full rebuild.
type ReconcileAction int

const (
	ActionNone ReconcileAction = iota
	ActionAppend
	ActionFullRebuild
)

// Reconcile returns which action to take. It never mutates c; the caller
// performs Append/Build based on the result.
func (c *Cache) Reconcile(ctx context.Context) (ReconcileAction, error) {
	c.mu.RLock()
	branch, storedHead := c.Branch, c.HeadHash
	hasData := len(c.commits) > 0 || storedHead != ""
	c.mu.RUnlock()

	if !hasData {
		return ActionFullRebuild, nil
	}

	currentHead, err := c.provider.HeadHash(ctx, branch)
	if err != nil {
		return ActionFullRebuild, nil
	}
	if currentHead == storedHead {
		return ActionNone, nil
	}

	if !c.provider.ObjectExists(ctx, storedHead) {
		// Re-clone or unknown object: the stored hash can't be resolved at
		// all, so there's no base for an incremental log.
		return ActionFullRebuild, nil
	}

	if c.provider.IsAncestor(ctx, storedHead, currentHead) {
		return ActionAppend, nil
	}

	// Force-push or rebase: storedHead is no longer on branch's history.
	return ActionFullRebuild, nil
}

// Apply runs the action Reconcile chose.
func (c *Cache) Apply(ctx context.Context, action ReconcileAction) error {
	switch action {
	case ActionAppend:
		c.mu.RLock()
		old := c.HeadHash
		c.mu.RUnlock()
		return c.Append(ctx, old)
	case ActionFullRebuild:
		return c.Build(ctx)
	default:
		return nil
	}
}
