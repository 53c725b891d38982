package core

import (
	"slices"

	"github.com/rs/zerolog/log"
)

// Groups is a many-to-many membership set between connections and named groups.
// It never touches transport resources and is not safe for concurrent use;
// the owner serializes access.
type Groups struct {
	byGroup map[string]map[SessionID]struct{}
}

func NewGroups() *Groups {
	return &Groups{byGroup: make(map[string]map[SessionID]struct{})}
}

// Join adds sid to group and reports whether it was not a member before.
func (g *Groups) Join(sid SessionID, group string) bool {
	members, ok := g.byGroup[group]
	if !ok {
		members = make(map[SessionID]struct{})
		g.byGroup[group] = members
	}
	if _, ok := members[sid]; ok {
		return false
	}
	members[sid] = struct{}{}
	log.Debug().Str("module", "core.groups").Str("sid", string(sid)).Str("group", group).Msg("member added")
	return true
}

// Leave removes sid from group and reports whether it was a member.
// Empty groups are dropped.
func (g *Groups) Leave(sid SessionID, group string) bool {
	members, ok := g.byGroup[group]
	if !ok {
		return false
	}
	if _, ok := members[sid]; !ok {
		return false
	}
	delete(members, sid)
	if len(members) == 0 {
		delete(g.byGroup, group)
	}
	log.Debug().Str("module", "core.groups").Str("sid", string(sid)).Str("group", group).Msg("member removed")
	return true
}

func (g *Groups) Has(group string, sid SessionID) bool {
	_, ok := g.byGroup[group][sid]
	return ok
}

func (g *Groups) Count(group string) int {
	return len(g.byGroup[group])
}

func (g *Groups) IsEmpty(group string) bool {
	return g.Count(group) == 0
}

// Members returns a sorted snapshot of group.
func (g *Groups) Members(group string) []SessionID {
	members := g.byGroup[group]
	out := make([]SessionID, 0, len(members))
	for sid := range members {
		out = append(out, sid)
	}
	slices.Sort(out)
	return out
}
