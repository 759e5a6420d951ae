package listview

import "github.com/go-drift/listdiff/pkg/diff"

// Reload applies staged to surface.
//
// If the surface is not presentable, setData receives the final stage's data
// and the surface is reloaded once. Otherwise each stage runs in its own batch
// update: setData is called with the stage's data first, then the structural
// calls are issued in the order section deletes, inserts, reloads, moves,
// element deletes, inserts, reloads, moves. Empty categories are skipped.
//
// interrupt, if non-nil, is consulted before each stage. Returning true stops
// incremental application: setData receives the final stage's data and the
// surface is reloaded once.
//
// An empty staged changeset makes no calls at all. Panics raised by setData
// or by the surface are not recovered.
func Reload[M diff.Differentiable[M], E diff.Differentiable[E]](
	surface Surface,
	staged diff.StagedChangeset[M, E],
	policy AnimationPolicy,
	interrupt func(diff.Changeset[M, E]) bool,
	setData func([]diff.Section[M, E]),
) {
	last, ok := staged.Last()
	if !ok {
		return
	}

	if !surface.Presentable() {
		setData(last.Data)
		surface.ReloadData()
		return
	}

	for _, stage := range staged {
		if interrupt != nil && interrupt(stage) {
			setData(last.Data)
			surface.ReloadData()
			return
		}
		surface.PerformBatchUpdates(func() {
			setData(stage.Data)
			issue(surface, stage, policy)
		})
	}
}

func issue[M diff.Differentiable[M], E diff.Differentiable[E]](s Surface, c diff.Changeset[M, E], policy AnimationPolicy) {
	if len(c.SectionDeleted) > 0 {
		s.DeleteSections(c.SectionDeleted, policy.SectionDelete)
	}
	if len(c.SectionInserted) > 0 {
		s.InsertSections(c.SectionInserted, policy.SectionInsert)
	}
	if len(c.SectionUpdated) > 0 {
		s.ReloadSections(c.SectionUpdated, policy.SectionReload)
	}
	for _, m := range c.SectionMoved {
		s.MoveSection(m.From, m.To)
	}

	if len(c.ElementDeleted) > 0 {
		s.DeleteElements(c.ElementDeleted, policy.ElementDelete)
	}
	if len(c.ElementInserted) > 0 {
		s.InsertElements(c.ElementInserted, policy.ElementInsert)
	}
	if len(c.ElementUpdated) > 0 {
		s.ReloadElements(c.ElementUpdated, policy.ElementReload)
	}
	for _, m := range c.ElementMoved {
		s.MoveElement(m.From, m.To)
	}
}

// InterruptAbove returns an interrupt predicate that abandons incremental
// updates once a stage carries more than max operations. A non-positive max
// returns nil, which never interrupts.
func InterruptAbove[M diff.Differentiable[M], E diff.Differentiable[E]](max int) func(diff.Changeset[M, E]) bool {
	if max <= 0 {
		return nil
	}
	return func(c diff.Changeset[M, E]) bool {
		return c.ChangeCount() > max
	}
}
