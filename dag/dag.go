// Package dag runs a fixed graph of tasks in dependency order with per-task retries.
package dag

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Task is the unit of work a TaskNode runs.
type Task interface {
	Execute(ctx context.Context, rc *RunContext) error
}

// TaskFunc adapts a function to Task.
type TaskFunc func(ctx context.Context, rc *RunContext) error

func (f TaskFunc) Execute(ctx context.Context, rc *RunContext) error {
	return f(ctx, rc)
}

// DefaultArgs apply to every task unless a TaskOption overrides them.
// The email flags are kept for parity with existing DAG definitions and are not acted on.
type DefaultArgs struct {
	Owner          string
	StartDate      time.Time
	DependsOnPast  bool
	Retries        int
	RetryDelay     time.Duration
	EmailOnFailure bool
	EmailOnRetry   bool
}

type DAG struct {
	ID          string
	Description string
	Schedule    string
	DefaultArgs DefaultArgs
	Params      map[string]string
	nodes       []*TaskNode
	byID        map[string]*TaskNode
	errs        []string
}

type TaskNode struct {
	ID         string
	Task       Task
	dag        *DAG
	retries    *int
	retryDelay *time.Duration
	upstream   []*TaskNode
	downstream []*TaskNode
}

type TaskOption func(*TaskNode)

func WithRetries(n int) TaskOption {
	return func(t *TaskNode) {
		t.retries = &n
	}
}

func WithRetryDelay(d time.Duration) TaskOption {
	return func(t *TaskNode) {
		t.retryDelay = &d
	}
}

func New(id string, description string, schedule string, args DefaultArgs) *DAG {
	return &DAG{
		ID:          id,
		Description: description,
		Schedule:    schedule,
		DefaultArgs: args,
		Params:      make(map[string]string),
		byID:        make(map[string]*TaskNode),
	}
}

// AddTask adds a node for t. A duplicate id is reported by Validate.
func (d *DAG) AddTask(id string, t Task, opts ...TaskOption) *TaskNode {
	n := &TaskNode{ID: id, Task: t, dag: d}
	for _, o := range opts {
		o(n)
	}
	if strings.TrimSpace(id) == "" {
		d.errs = append(d.errs, "task id must not be empty")
	} else if _, ok := d.byID[id]; ok {
		d.errs = append(d.errs, fmt.Sprintf("duplicate task id %q", id))
	} else {
		d.byID[id] = n
	}
	if t == nil {
		d.errs = append(d.errs, fmt.Sprintf("task %q has no implementation", id))
	}
	d.nodes = append(d.nodes, n)
	return n
}

// Tasks returns the nodes in insertion order.
func (d *DAG) Tasks() []*TaskNode {
	return append([]*TaskNode(nil), d.nodes...)
}

// Task returns the node with id or nil.
func (d *DAG) Task(id string) *TaskNode {
	return d.byID[id]
}

func (n *TaskNode) Retries() int {
	if n.retries != nil {
		return *n.retries
	}
	return n.dag.DefaultArgs.Retries
}

func (n *TaskNode) RetryDelay() time.Duration {
	if n.retryDelay != nil {
		return *n.retryDelay
	}
	return n.dag.DefaultArgs.RetryDelay
}

// Upstream returns the ids of the direct parents.
func (n *TaskNode) Upstream() []string {
	return nodeIDs(n.upstream)
}

// Downstream returns the ids of the direct children.
func (n *TaskNode) Downstream() []string {
	return nodeIDs(n.downstream)
}

// TaskType names the Go type behind the node's Task.
func (n *TaskNode) TaskType() string {
	if n.Task == nil {
		return ""
	}
	t := reflect.TypeOf(n.Task)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Then makes every node in next depend on n and returns next so calls can be chained.
func (n *TaskNode) Then(next ...*TaskNode) Group {
	for _, c := range next {
		n.dag.addEdge(n, c)
	}
	return Group(next)
}

// Group is a set of nodes that fan out to, or in from, other nodes.
type Group []*TaskNode

// Then makes every node in next depend on every node in g.
func (g Group) Then(next ...*TaskNode) Group {
	for _, p := range g {
		p.Then(next...)
	}
	return Group(next)
}

// Fan makes every node in to depend on every node in from.
func Fan(from []*TaskNode, to []*TaskNode) {
	Group(from).Then(to...)
}

func (d *DAG) addEdge(from *TaskNode, to *TaskNode) {
	if to == nil || from == nil {
		d.errs = append(d.errs, "nil task in dependency")
		return
	}
	if from.dag != to.dag {
		d.errs = append(d.errs, fmt.Sprintf("tasks %q and %q belong to different DAGs", from.ID, to.ID))
		return
	}
	if from == to {
		d.errs = append(d.errs, fmt.Sprintf("task %q cannot depend on itself", from.ID))
		return
	}
	for _, c := range from.downstream {
		if c == to {
			return
		}
	}
	from.downstream = append(from.downstream, to)
	to.upstream = append(to.upstream, from)
}

// Validate reports construction errors and cycles.
func (d *DAG) Validate() error {
	errs := append([]string(nil), d.errs...)
	if d.ID == "" {
		errs = append(errs, "dag id must not be empty")
	}
	if len(d.nodes) == 0 {
		errs = append(errs, "dag has no tasks")
	}
	if len(errs) == 0 {
		if _, err := d.TopologicalOrder(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid dag %q: %v", d.ID, strings.Join(errs, "; "))
	}
	return nil
}

// TopologicalOrder returns the nodes so that each follows all of its parents.
// Among nodes that are ready at the same time the earliest added comes first.
func (d *DAG) TopologicalOrder() ([]*TaskNode, error) {
	indegree := make(map[*TaskNode]int, len(d.nodes))
	for _, n := range d.nodes {
		indegree[n] = len(n.upstream)
	}
	emitted := make(map[*TaskNode]bool, len(d.nodes))
	order := make([]*TaskNode, 0, len(d.nodes))
	for len(order) < len(d.nodes) {
		var next *TaskNode
		for _, n := range d.nodes {
			if !emitted[n] && indegree[n] == 0 {
				next = n
				break
			}
		}
		if next == nil {
			remaining := make([]string, 0)
			for _, n := range d.nodes {
				if !emitted[n] {
					remaining = append(remaining, n.ID)
				}
			}
			return nil, fmt.Errorf("cycle detected between tasks %v", strings.Join(remaining, ", "))
		}
		emitted[next] = true
		order = append(order, next)
		for _, c := range next.downstream {
			indegree[c]--
		}
	}
	return order, nil
}

func nodeIDs(nodes []*TaskNode) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
