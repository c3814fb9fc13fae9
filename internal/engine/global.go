package engine

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/zjrosen/folio/internal/engine/linecmd"
	"github.com/zjrosen/folio/internal/engine/register"
	"github.com/zjrosen/folio/internal/engine/undo"
	"github.com/zjrosen/folio/internal/library"
	"github.com/zjrosen/folio/internal/log"
	"github.com/zjrosen/folio/internal/pubsub"
)

// global runs :g/pattern/cmd and :v/pattern/cmd. The pattern is matched
// against each visible item's title, authors and tags.
func (e *Engine) global(ctx context.Context, cmd linecmd.Command) error {
	re, err := regexp.Compile(cmd.Pattern)
	if err != nil {
		return e.fail("Invalid regex pattern: %s", cmd.Pattern)
	}
	var matched []library.Item
	for _, item := range e.items {
		if re.MatchString(item.Blob()) != cmd.Invert {
			matched = append(matched, item)
		}
	}
	if len(matched) == 0 {
		return e.fail("No matches for pattern: %s", cmd.Pattern)
	}
	return e.bulk(ctx, "Global", cmd.Action, matched)
}

// bulk applies a global action, "d" or "tag <name>", to targets as a
// single undo entry.
func (e *Engine) bulk(ctx context.Context, source, action string, targets []library.Item) error {
	verb, arg, _ := strings.Cut(strings.TrimSpace(action), " ")
	arg = strings.TrimSpace(arg)

	switch {
	case verb == "d" || verb == "delete":
		return e.bulkDelete(ctx, source, targets)
	case (verb == "tag" || verb == "t") && arg != "":
		return e.bulkTag(ctx, source, arg, targets)
	default:
		return e.fail("%s command not supported: %s", source, action)
	}
}

func (e *Engine) bulkDelete(ctx context.Context, source string, targets []library.Item) error {
	full, loadErr := e.loadFull(ctx, targets)
	if len(full) == 0 {
		return e.fail("%s", batchStatus("Deleted", 0, len(targets), loadErr))
	}
	if err := e.registers.Write(register.Unnamed, register.Items(full)); err != nil {
		log.Warn(log.CatRegister, "register write on bulk delete failed", "error", err)
	}

	desc := fmt.Sprintf("%s delete: %s", source, pluralItems(len(full)))
	n, err := e.history.Do(ctx, e.store, desc, undo.DeleteItems(full))
	e.refresh(ctx)
	if n > 0 {
		e.publish(pubsub.DeletedEvent, Event{Count: n})
	}
	if err = errors.Join(loadErr, err); err != nil || n != len(targets) {
		return e.fail("%s", batchStatus("Deleted", n, len(targets), err))
	}
	e.setStatusf("%s delete executed on %s", source, pluralItems(n))
	return nil
}

func (e *Engine) bulkTag(ctx context.Context, source, tag string, targets []library.Item) error {
	full, loadErr := e.loadFull(ctx, targets)
	changed := retag(full, true, tag, e.clock.Now())
	if len(changed) == 0 {
		if loadErr != nil {
			return e.fail("%s", batchStatus("Tagged", 0, len(targets), loadErr))
		}
		e.setStatusf("All %s already tagged '%s'", pluralItems(len(full)), tag)
		return nil
	}

	desc := fmt.Sprintf("%s tag '%s': %s", source, tag, pluralItems(len(changed)))
	n, err := e.history.Do(ctx, e.store, desc, undo.UpsertItems(changed))
	e.refresh(ctx)
	e.publish(pubsub.UpdatedEvent, Event{Count: n})
	if err = errors.Join(loadErr, err); err != nil {
		return e.fail("%s", batchStatus("Tagged", n, len(changed), err))
	}
	e.setStatusf("%s tag applied to %s", source, pluralItems(n))
	return nil
}

// substitute rewrites titles: :s on the current item, :%s on every
// visible item. Without the g flag only the first match is replaced.
func (e *Engine) substitute(ctx context.Context, cmd linecmd.Command) error {
	re, err := regexp.Compile(cmd.Pattern)
	if err != nil {
		return e.fail("Invalid regex pattern: %s", cmd.Pattern)
	}

	targets := e.items
	if !cmd.WholeList {
		item, ok := e.Current()
		if !ok {
			return e.fail("No item selected")
		}
		targets = []library.Item{item}
	}

	full, loadErr := e.loadFull(ctx, targets)
	now := e.clock.Now()
	var changed []library.Item
	for _, item := range full {
		title := replaceTitle(re, item.Title, cmd.Replacement, cmd.AllMatches)
		if title == item.Title {
			continue
		}
		c := item.Clone()
		c.Title = title
		c.UpdatedAt = now
		changed = append(changed, c)
	}
	if len(changed) == 0 {
		return e.fail("Pattern not found: %s", cmd.Pattern)
	}

	desc := fmt.Sprintf("Substitute '%s' in %s", cmd.Pattern, pluralItems(len(changed)))
	if len(changed) == 1 {
		desc = renameDescription(itemTitle(full, changed[0].ID), changed[0].Title)
	}
	n, err := e.history.Do(ctx, e.store, desc, undo.UpsertItems(changed))
	e.refresh(ctx)
	e.publish(pubsub.UpdatedEvent, Event{Count: n})
	if err = errors.Join(loadErr, err); err != nil {
		return e.fail("%s", batchStatus("Substituted", n, len(changed), err))
	}
	e.setStatusf("Substituted in %s", pluralItems(n))
	return nil
}

func replaceTitle(re *regexp.Regexp, title, repl string, all bool) string {
	if all {
		return re.ReplaceAllString(title, repl)
	}
	loc := re.FindStringSubmatchIndex(title)
	if loc == nil {
		return title
	}
	expanded := re.ExpandString(nil, repl, title, loc)
	return title[:loc[0]] + string(expanded) + title[loc[1]:]
}

func itemTitle(items []library.Item, id string) string {
	for _, item := range items {
		if item.ID == id {
			return item.Title
		}
	}
	return ""
}
