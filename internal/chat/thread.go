package chat

import (
	"slices"
	"sort"

	"github.com/hirrd/hirrd/internal/store"
)

// Thread is the visible, ordered message list of one chat. Messages can
// arrive from the send response, the feed and history reloads in any order;
// Merge keeps exactly one copy of each id in (created_at, seq) order.
// Thread is not safe for concurrent use.
type Thread struct {
	msgs []store.Message
	ids  map[string]struct{}
}

// NewThread returns an empty thread.
func NewThread() *Thread {
	return &Thread{ids: make(map[string]struct{})}
}

// Merge adds the messages not yet present and returns how many were added.
func (t *Thread) Merge(msgs ...store.Message) int {
	added := 0
	for _, m := range msgs {
		if m.ID == "" {
			continue
		}
		if _, seen := t.ids[m.ID]; seen {
			continue
		}
		i := sort.Search(len(t.msgs), func(i int) bool {
			return m.Before(&t.msgs[i])
		})
		t.msgs = slices.Insert(t.msgs, i, m)
		t.ids[m.ID] = struct{}{}
		added++
	}
	return added
}

// Contains reports whether the thread holds a message with id.
func (t *Thread) Contains(id string) bool {
	_, ok := t.ids[id]
	return ok
}

// Len returns the number of messages.
func (t *Thread) Len() int {
	return len(t.msgs)
}

// Messages returns a copy of the ordered messages.
func (t *Thread) Messages() []store.Message {
	return slices.Clone(t.msgs)
}
