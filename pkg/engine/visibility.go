package engine

import (
	"github.com/goliatone/go-intake/pkg/answers"
	"github.com/goliatone/go-intake/pkg/field"
	"github.com/goliatone/go-intake/pkg/schema"
)

// Node is a visible question with its current value and error. Children holds
// the follow-ups revealed by the current answer.
type Node struct {
	Question schema.Question
	Handler  field.Handler
	Value    answers.Value
	Error    string
	Depth    int
	Children []Node
}

// Revealed reports whether the node's follow-ups are showing.
func (n Node) Revealed() bool {
	return len(n.Children) > 0
}

// Visible returns the visibility tree of the active page.
func (e *Engine) Visible() []Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateReady {
		return nil
	}
	return e.visibleLocked()
}

func (e *Engine) visibleLocked() []Node {
	return e.visibleTree(e.cfg.Pages[e.index].Questions, true, 0)
}

// visibleTree walks the question tree carrying whether the parent is showing.
// A follow-up is visible only when its parent is visible and the parent's
// answer matches the trigger.
func (e *Engine) visibleTree(questions []schema.Question, parentVisible bool, depth int) []Node {
	if !parentVisible || len(questions) == 0 {
		return nil
	}
	nodes := make([]Node, 0, len(questions))
	for _, q := range questions {
		value := e.answers.Get(q.Code)
		node := Node{
			Question: q,
			Handler:  e.kinds.Resolve(q.Type),
			Value:    value,
			Error:    e.errors[q.Code],
			Depth:    depth,
		}
		reveal := q.ShowFollowupWhen != "" && value.Matches(q.ShowFollowupWhen)
		node.Children = e.visibleTree(q.Followups, reveal, depth+1)
		nodes = append(nodes, node)
	}
	return nodes
}

func flattenNodes(nodes []Node) []Node {
	var out []Node
	var walk func([]Node)
	walk = func(list []Node) {
		for _, n := range list {
			out = append(out, n)
			walk(n.Children)
		}
	}
	walk(nodes)
	return out
}

// Flatten lists the nodes of a visibility tree depth-first.
func Flatten(nodes []Node) []Node {
	return flattenNodes(nodes)
}
