package workitem

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
)

// StoryNode is a user story together with the tasks that name it as parent.
type StoryNode struct {
	WorkItem
	Tasks map[ID]WorkItem `json:"tasks"`
}

// EpicNode is an epic together with the user stories that name it as parent.
type EpicNode struct {
	WorkItem
	UserStories map[ID]*StoryNode `json:"userStories"`
}

// Hierarchy is the Epic -> User Story -> Task tree. Epics keep the order in which
// they were first seen; that order drives the task parent search.
type Hierarchy struct {
	epics []*EpicNode
	index map[ID]*EpicNode
}

// Counts holds the number of items per tier that made it into the tree.
type Counts struct {
	Epics       int `json:"epics"`
	UserStories int `json:"userStories"`
	Tasks       int `json:"tasks"`
}

// Build assembles the hierarchy from three flat lists.
//
// Stories without a resolvable parent epic and tasks without a resolvable parent
// story are left out of the tree; they are never attached to a synthetic root.
// A task is placed under the first epic (in epic order) whose stories contain
// its parent id.
func Build(epics, stories, tasks []WorkItem) *Hierarchy {
	h := &Hierarchy{
		index: make(map[ID]*EpicNode, len(epics)),
	}

	for _, e := range epics {
		node := &EpicNode{WorkItem: e, UserStories: make(map[ID]*StoryNode)}
		if existing, ok := h.index[e.ID]; ok {
			*existing = *node
			continue
		}
		h.index[e.ID] = node
		h.epics = append(h.epics, node)
	}

	for _, s := range stories {
		parent, ok := ParentID(s)
		if !ok {
			continue
		}
		epic, ok := h.index[parent]
		if !ok {
			continue
		}
		epic.UserStories[s.ID] = &StoryNode{WorkItem: s, Tasks: make(map[ID]WorkItem)}
	}

	for _, t := range tasks {
		parent, ok := ParentID(t)
		if !ok {
			continue
		}
		for _, epic := range h.epics {
			if story, ok := epic.UserStories[parent]; ok {
				story.Tasks[t.ID] = t
				break
			}
		}
	}

	return h
}

// Epics returns the epic nodes in insertion order.
func (h *Hierarchy) Epics() []*EpicNode {
	return h.epics
}

// Epic looks up an epic node by id.
func (h *Hierarchy) Epic(id ID) (*EpicNode, bool) {
	n, ok := h.index[id]
	return n, ok
}

// Counts tallies the items placed in the tree.
func (h *Hierarchy) Counts() Counts {
	c := Counts{Epics: len(h.epics)}
	for _, e := range h.epics {
		c.UserStories += len(e.UserStories)
		for _, s := range e.UserStories {
			c.Tasks += len(s.Tasks)
		}
	}
	return c
}

// Items flattens the tree back into a list: each epic followed by its stories and
// their tasks. Stories and tasks are ordered by id.
func (h *Hierarchy) Items() []WorkItem {
	var out []WorkItem
	for _, e := range h.epics {
		out = append(out, e.WorkItem)
		for _, sid := range SortedIDs(e.UserStories) {
			s := e.UserStories[sid]
			out = append(out, s.WorkItem)
			for _, tid := range SortedIDs(s.Tasks) {
				out = append(out, s.Tasks[tid])
			}
		}
	}
	return out
}

// MarshalJSON encodes the tree as an object keyed by epic id, in epic order.
func (h *Hierarchy) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range h.epics {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(e.ID.String())
		val, err := json.Marshal(e)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// SortedIDs returns the keys of m in ascending order.
func SortedIDs[V any](m map[ID]V) []ID {
	return slices.Sorted(maps.Keys(m))
}
