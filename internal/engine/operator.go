package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/folio/internal/engine/register"
	"github.com/zjrosen/folio/internal/engine/undo"
	"github.com/zjrosen/folio/internal/library"
	"github.com/zjrosen/folio/internal/log"
	"github.com/zjrosen/folio/internal/pubsub"
)

// applyOperator runs op over the items at indices. reg is the register
// chosen with "x, or zero.
func (e *Engine) applyOperator(ctx context.Context, op Operator, reg rune, indices []int) tea.Cmd {
	items := e.itemsAt(indices)
	if len(items) == 0 {
		return nil
	}
	log.Debug(log.CatEngine, "operator", "op", op.String(), "items", len(items), "register", string(reg))

	switch op {
	case OpDelete:
		e.deleteItems(ctx, reg, items)
	case OpYank:
		e.yankItems(ctx, reg, items)
	case OpChange:
		e.beginChange(items[0])
	case OpAddTag:
		e.openTagPrompt(lineTagAdd, items)
	case OpRemoveTag:
		if !slices.ContainsFunc(items, func(it library.Item) bool { return len(it.Tags) > 0 }) {
			e.setStatus("No tags to remove")
			return nil
		}
		e.openTagPrompt(lineTagRemove, items)
	}
	return nil
}

// loadFull re-reads each item from the store. Items that fail to load are
// skipped and their errors joined.
func (e *Engine) loadFull(ctx context.Context, items []library.Item) ([]library.Item, error) {
	full := make([]library.Item, 0, len(items))
	var errs []error
	for _, item := range items {
		loaded, err := e.store.Load(ctx, item.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to load %s: %w", item.ID, err))
			continue
		}
		full = append(full, loaded)
	}
	return full, errors.Join(errs...)
}

// batchStatus formats the outcome of a multi-item operation: "Deleted 3
// items", or "Deleted 2/3 items: <first error>" on partial failure.
func batchStatus(verb string, done, total int, err error) string {
	if err == nil && done == total {
		return verb + " " + pluralItems(done)
	}
	msg := fmt.Sprintf("%s %d/%d items", verb, done, total)
	if err != nil {
		msg += ": " + firstLine(err.Error())
	}
	return msg
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func (e *Engine) deleteItems(ctx context.Context, reg rune, items []library.Item) {
	full, loadErr := e.loadFull(ctx, items)
	if len(full) == 0 {
		e.setStatus(batchStatus("Deleted", 0, len(items), loadErr))
		return
	}
	if err := e.registers.Write(reg, register.Items(full)); err != nil {
		log.Warn(log.CatRegister, "register write on delete failed", "error", err)
	}

	n, err := e.history.Do(ctx, e.store, itemsDescription("Delete", full), undo.DeleteItems(full))
	e.refresh(ctx)
	e.setStatus(batchStatus("Deleted", n, len(items), errors.Join(loadErr, err)))
	if n > 0 {
		e.publish(pubsub.DeletedEvent, Event{Count: n})
	}
}

func (e *Engine) yankItems(ctx context.Context, reg rune, items []library.Item) {
	full, loadErr := e.loadFull(ctx, items)
	if len(full) == 0 {
		e.setStatus(batchStatus("Yanked", 0, len(items), loadErr))
		return
	}

	err := e.registers.Write(reg, register.Items(full))
	if errors.Is(err, register.ErrInvalidRegister) {
		e.setStatusf("Invalid register: %c", reg)
		return
	}

	msg := batchStatus("Yanked", len(full), len(items), loadErr)
	if reg != 0 && reg != register.Unnamed {
		msg += fmt.Sprintf(` into "%c`, reg)
	}
	if err != nil {
		msg += "; clipboard write failed: " + firstLine(err.Error())
	}
	e.setStatus(msg)
}

// yankPath stores the current item's file path (Y).
func (e *Engine) yankPath() {
	reg := e.state.Register
	item, ok := e.Current()
	if !ok {
		return
	}
	if !item.HasFile() {
		e.setStatusf("No file attached to %q", item.Title)
		return
	}
	err := e.registers.Write(reg, register.Path(item.FilePath))
	switch {
	case errors.Is(err, register.ErrInvalidRegister):
		e.setStatusf("Invalid register: %c", reg)
	case err != nil:
		e.setStatusf("Yanked path: %s; clipboard write failed: %s", item.FilePath, firstLine(err.Error()))
	default:
		e.setStatusf("Yanked path: %s", item.FilePath)
	}
}

// paste duplicates the register's items under new identities. A single
// item gets a " (copy)" suffix. Clipboard registers holding system text,
// and text or path content, are reported but never materialized.
func (e *Engine) paste(ctx context.Context) tea.Cmd {
	reg := e.state.Register
	n := e.state.CountOr1()
	e.state.Reset()

	if register.IsClipboard(reg) {
		if text, ok := e.registers.ClipboardText(); ok {
			e.setStatusf("Pasted text: %s", firstLine(text))
			return nil
		}
	}
	r, err := e.registers.Get(reg)
	if err != nil {
		if reg == 0 || reg == register.Unnamed {
			e.setStatus("Nothing to paste")
		} else {
			e.setStatusf(`Register "%c is empty`, reg)
		}
		return nil
	}
	if r.Content.Kind == register.KindText || r.Content.Kind == register.KindPath {
		e.setStatusf("Pasted text: %s", firstLine(r.Content.Text))
		return nil
	}

	now := e.clock.Now()
	var created []library.Item
	for range n {
		for _, src := range r.Content.Items {
			dup := src.Clone()
			dup.ID = library.NewID()
			dup.CreatedAt = now
			dup.UpdatedAt = now
			if r.Content.Kind == register.KindSingleItem {
				dup.Title += " (copy)"
			}
			created = append(created, dup)
		}
	}

	// Every item is new, so the recorded inverse is DeleteItems(created).
	applied, err := e.history.Do(ctx, e.store, itemsDescription("Paste", created), undo.UpsertItems(created))
	e.refresh(ctx)
	if applied > 0 {
		e.selectID(created[0].ID)
		e.publish(pubsub.CreatedEvent, Event{Count: applied})
	}
	e.setStatus(batchStatus("Pasted", applied, len(created), err))
	return nil
}

// selectID moves the cursor onto the item with id, if listed.
func (e *Engine) selectID(id string) {
	if i := slices.IndexFunc(e.items, func(it library.Item) bool { return it.ID == id }); i >= 0 {
		e.setCursor(i)
	}
}

// ============================================================================
// Change
// ============================================================================

// beginChange enters Insert mode editing item's title.
func (e *Engine) beginChange(item library.Item) {
	e.editing = item
	e.mode = ModeInsert
	e.line.SetValue(item.Title)
	e.line.CursorEnd()
	e.line.Focus()
}

func (e *Engine) handleInsert(ctx context.Context, msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		e.endInsert()
		e.setStatus("Change cancelled")
		return nil
	case tea.KeyEnter:
		title := strings.TrimSpace(e.line.Value())
		item := e.editing
		e.endInsert()
		e.commitTitle(ctx, item, title)
		return nil
	}
	var cmd tea.Cmd
	e.line, cmd = e.line.Update(msg)
	return cmd
}

func (e *Engine) endInsert() {
	e.line.Blur()
	e.line.SetValue("")
	e.editing = library.Item{}
	e.mode = ModeNormal
	e.state.Reset()
}

func (e *Engine) commitTitle(ctx context.Context, item library.Item, title string) {
	if title == "" || title == item.Title {
		e.setStatus("Title unchanged")
		return
	}
	current, err := e.store.Load(ctx, item.ID)
	if err != nil {
		log.ErrorErr(log.CatEngine, "load for rename failed", err, "id", item.ID)
		e.setStatusf("Rename failed: %s", err)
		return
	}
	updated := current.Clone()
	updated.Title = title
	updated.UpdatedAt = e.clock.Now()

	desc := renameDescription(current.Title, title)
	if _, err := e.history.Do(ctx, e.store, desc, undo.UpsertItems([]library.Item{updated})); err != nil {
		e.setStatusf("Rename failed: %s", firstLine(err.Error()))
		return
	}
	e.refresh(ctx)
	e.publish(pubsub.UpdatedEvent, Event{Count: 1})
	e.setStatus(desc)
}

// ============================================================================
// Tags
// ============================================================================

func (e *Engine) openTagPrompt(kind lineKind, items []library.Item) {
	e.tagTargets = items
	e.openLine(kind, "")
}

// applyTag adds or removes tag on items as one undo entry.
func (e *Engine) applyTag(ctx context.Context, add bool, tag string, items []library.Item) {
	tag = strings.TrimSpace(tag)
	if tag == "" || len(items) == 0 {
		return
	}
	full, loadErr := e.loadFull(ctx, items)
	changed := retag(full, add, tag, e.clock.Now())

	verb := "Tagged"
	desc := fmt.Sprintf("Add tag '%s' to %s", tag, pluralItems(len(changed)))
	if !add {
		verb = "Untagged"
		desc = fmt.Sprintf("Remove tag '%s' from %s", tag, pluralItems(len(changed)))
	}
	if len(changed) == 0 {
		if add {
			e.setStatusf("All items already tagged '%s'", tag)
		} else {
			e.setStatusf("No items tagged '%s'", tag)
		}
		return
	}

	n, err := e.history.Do(ctx, e.store, desc, undo.UpsertItems(changed))
	e.refresh(ctx)
	e.publish(pubsub.UpdatedEvent, Event{Count: n})
	e.setStatus(batchStatus(verb, n, len(changed), errors.Join(loadErr, err)))
}

// retag returns copies of the items whose tags change, stamped with now.
func retag(items []library.Item, add bool, tag string, now time.Time) []library.Item {
	var changed []library.Item
	for _, item := range items {
		c := item.Clone()
		var ok bool
		if add {
			ok = c.AddTag(tag)
		} else {
			ok = c.RemoveTag(tag)
		}
		if ok {
			c.UpdatedAt = now
			changed = append(changed, c)
		}
	}
	return changed
}
