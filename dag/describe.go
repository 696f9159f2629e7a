package dag

// Description is the printable shape of a DAG.
type Description struct {
	DagID       string            `json:"dagId"`
	Description string            `json:"description,omitempty"`
	Schedule    string            `json:"schedule"`
	Owner       string            `json:"owner"`
	Retries     int               `json:"retries"`
	RetryDelay  string            `json:"retryDelay"`
	Params      map[string]string `json:"params,omitempty"`
	Tasks       []TaskDescription `json:"tasks"`
}

type TaskDescription struct {
	TaskID     string   `json:"taskId"`
	Type       string   `json:"type"`
	Retries    int      `json:"retries"`
	RetryDelay string   `json:"retryDelay"`
	Upstream   []string `json:"upstream"`
	Downstream []string `json:"downstream"`
}

// Describe lists the tasks in topological order, or insertion order when the DAG is invalid.
func (d *DAG) Describe() Description {
	nodes, err := d.TopologicalOrder()
	if err != nil {
		nodes = d.Tasks()
	}
	out := Description{
		DagID:       d.ID,
		Description: d.Description,
		Schedule:    d.Schedule,
		Owner:       d.DefaultArgs.Owner,
		Retries:     d.DefaultArgs.Retries,
		RetryDelay:  d.DefaultArgs.RetryDelay.String(),
		Params:      d.Params,
		Tasks:       make([]TaskDescription, 0, len(nodes)),
	}
	for _, n := range nodes {
		out.Tasks = append(out.Tasks, TaskDescription{
			TaskID:     n.ID,
			Type:       n.TaskType(),
			Retries:    n.Retries(),
			RetryDelay: n.RetryDelay().String(),
			Upstream:   n.Upstream(),
			Downstream: n.Downstream(),
		})
	}
	return out
}
