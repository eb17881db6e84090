package reconciliation

import (
	"strings"

	"github.com/fortuna/gridiron/internal/model"
)

// NormalizeName lowercases a full name and drops every character outside
// a-z, so "A.J. Brown" and "AJ Brown" share a key.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NameKey is the best-effort join key for sources without player ids.
type NameKey struct {
	Season   int
	Week     int
	Team     string
	Position string
	Name     string
}

type idKey struct {
	Season int
	Week   int
	ID     string
}

// Player is the player-week side of a join.
type Player struct {
	Season   int
	Week     int
	Team     string
	Position string
	ID       string
	Name     string
}

func (p Player) nameKey() NameKey {
	return NameKey{
		Season:   p.Season,
		Week:     p.Week,
		Team:     strings.ToUpper(p.Team),
		Position: strings.ToUpper(p.Position),
		Name:     NormalizeName(p.Name),
	}
}

func reportNameKey(r model.InjuryReport) NameKey {
	return NameKey{
		Season:   r.Season,
		Week:     r.Week,
		Team:     strings.ToUpper(r.Team),
		Position: strings.ToUpper(r.Position),
		Name:     NormalizeName(r.FullName),
	}
}

type nameEntry struct {
	report model.InjuryReport
	id     string
}

// Index holds injury reports keyed for lookup. Duplicate rows for the same
// player keep the most recently modified one.
type Index struct {
	byID       map[idKey]model.InjuryReport
	byName     map[NameKey]nameEntry
	collisions map[NameKey]struct{}
}

// NewIndex indexes reports in source order.
func NewIndex(reports []model.InjuryReport) *Index {
	idx := &Index{
		byID:       make(map[idKey]model.InjuryReport, len(reports)),
		byName:     make(map[NameKey]nameEntry, len(reports)),
		collisions: make(map[NameKey]struct{}),
	}

	for _, r := range reports {
		if r.GSISID != "" {
			k := idKey{Season: r.Season, Week: r.Week, ID: r.GSISID}
			if prev, ok := idx.byID[k]; !ok || newer(r, prev) {
				idx.byID[k] = r
			}
		}

		nk := reportNameKey(r)
		if nk.Name == "" {
			continue
		}
		prev, ok := idx.byName[nk]
		switch {
		case !ok:
			idx.byName[nk] = nameEntry{report: r, id: r.GSISID}
		case prev.id != "" && r.GSISID != "" && prev.id != r.GSISID:
			idx.collisions[nk] = struct{}{}
		case newer(r, prev.report):
			id := prev.id
			if id == "" {
				id = r.GSISID
			}
			idx.byName[nk] = nameEntry{report: r, id: id}
		}
	}
	return idx
}

// newer keeps later source rows on equal timestamps.
func newer(candidate, current model.InjuryReport) bool {
	return !candidate.DateModified.Before(current.DateModified)
}

func (idx *Index) lookupID(p Player) (model.InjuryReport, bool) {
	if p.ID == "" {
		return model.InjuryReport{}, false
	}
	r, ok := idx.byID[idKey{Season: p.Season, Week: p.Week, ID: p.ID}]
	return r, ok
}

// lookupName also returns the gsis id recorded for the key, if any.
func (idx *Index) lookupName(k NameKey) (model.InjuryReport, string, bool) {
	if _, collided := idx.collisions[k]; collided {
		return model.InjuryReport{}, "", false
	}
	e, ok := idx.byName[k]
	return e.report, e.id, ok
}
