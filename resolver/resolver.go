// Package resolver assigns and resolves the short stable codes used to
// reference business entities in free text. A code is a two-letter base
// derived from the entity name plus a per-agent sequence number; once
// assigned it is never reassigned, so an operator can always address an
// entity by the code shown next to it.
package resolver

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/hupe1980/entitydesk/core"
	"github.com/hupe1980/entitydesk/logging"
)

// codePattern matches a short-code reference: two letters followed by a
// positive sequence number, e.g. "SC1".
var codePattern = regexp.MustCompile(`^[A-Za-z]{2}[0-9]+$`)

// IsCode reports whether the reference has the short-code shape and should
// therefore be resolved by exact lookup instead of name search.
func IsCode(reference string) bool { return codePattern.MatchString(reference) }

// Options configure a Resolver.
type Options struct {
	// Logger receives backfill progress (NoOp if unset).
	Logger logging.Logger
}

// Resolver derives short codes and resolves operator references against the
// entity directory. It holds no mutable state of its own; all persistence
// goes through the core.Directory collaborator.
type Resolver struct {
	dir    core.Directory
	logger logging.Logger
}

// New constructs a Resolver over the given directory.
func New(dir core.Directory, optFns ...func(o *Options)) *Resolver {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Resolver{dir: dir, logger: opts.Logger}
}

// CodeBase derives the two-letter base from a display name: the initial of
// the first and last word. Single-word names take their first two letters;
// a one-letter name duplicates it. The base is always upper case.
func CodeBase(displayName string) string {
	words := strings.Fields(displayName)
	letters := func(s string) []rune {
		var out []rune
		for _, r := range s {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				out = append(out, r)
			}
		}
		return out
	}
	switch {
	case len(words) >= 2:
		first, last := letters(words[0]), letters(words[len(words)-1])
		if len(first) == 0 || len(last) == 0 {
			return "XX"
		}
		return strings.ToUpper(string(first[0]) + string(last[0]))
	case len(words) == 1:
		rs := letters(words[0])
		switch {
		case len(rs) >= 2:
			return strings.ToUpper(string(rs[0]) + string(rs[1]))
		case len(rs) == 1:
			return strings.ToUpper(string(rs[0]) + string(rs[0]))
		}
	}
	return "XX"
}

// AssignCode derives the code for a new entity name: base plus the next
// sequence number for that (agent, base) pair, scanning already-assigned
// codes. Deterministic given the directory contents; the caller persists the
// result via Directory.SetShortCode exactly once per entity.
func (r *Resolver) AssignCode(ctx context.Context, agentID, displayName string) (string, error) {
	base := CodeBase(displayName)

	entities, err := r.dir.List(ctx, agentID)
	if err != nil {
		return "", fmt.Errorf("list entities: %w", err)
	}

	max := 0
	for _, e := range entities {
		if len(e.ShortCode) < 3 || !strings.EqualFold(e.ShortCode[:2], base) {
			continue
		}
		if n, err := strconv.Atoi(e.ShortCode[2:]); err == nil && n > max {
			max = n
		}
	}
	return base + strconv.Itoa(max+1), nil
}

// Resolve maps an operator reference to candidate entities. A reference
// with the code shape is looked up exactly (0 or 1 result); anything else is
// a case-insensitive substring search over display names (0, 1 or many).
// More than one match is never auto-resolved; the caller presents a
// disambiguation list.
func (r *Resolver) Resolve(ctx context.Context, agentID, reference string) ([]core.BusinessEntity, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil
	}

	if IsCode(reference) {
		e, err := r.dir.FindByCode(ctx, agentID, strings.ToUpper(reference))
		if err != nil {
			if err == core.ErrNotFound {
				return nil, nil
			}
			return nil, fmt.Errorf("find by code: %w", err)
		}
		return []core.BusinessEntity{e}, nil
	}

	matches, err := r.dir.SearchByName(ctx, agentID, reference)
	if err != nil {
		return nil, fmt.Errorf("search by name: %w", err)
	}
	return matches, nil
}

// Backfill assigns codes to every entity of the agent lacking one, in
// creation order, using the same sequence rule as AssignCode. Entities that
// already carry a code are skipped, so running it twice is harmless. It is
// intended to run once per agent on first channel use.
func (r *Resolver) Backfill(ctx context.Context, agentID string) error {
	entities, err := r.dir.List(ctx, agentID)
	if err != nil {
		return fmt.Errorf("list entities: %w", err)
	}

	// Track the highest sequence per base across the whole pass so entities
	// backfilled in the same run do not collide.
	max := map[string]int{}
	for _, e := range entities {
		if len(e.ShortCode) < 3 {
			continue
		}
		base := strings.ToUpper(e.ShortCode[:2])
		if n, err := strconv.Atoi(e.ShortCode[2:]); err == nil && n > max[base] {
			max[base] = n
		}
	}

	assigned := 0
	for _, e := range entities {
		if e.ShortCode != "" {
			continue
		}
		base := CodeBase(e.DisplayName)
		max[base]++
		code := base + strconv.Itoa(max[base])
		if err := r.dir.SetShortCode(ctx, agentID, e.ID, code); err != nil {
			if err == core.ErrCodeAlreadyAssigned {
				continue
			}
			return fmt.Errorf("set short code for %s: %w", e.ID, err)
		}
		assigned++
	}
	if assigned > 0 {
		r.logger.Info("backfilled entity codes", "agent_id", agentID, "assigned", assigned)
	}
	return nil
}
