package identity

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	applicationPrefix = "application"
	dagPrefix         = "dag"
	vertexPrefix      = "vertex"
	taskPrefix        = "task"
	attemptPrefix     = "attempt"
	separator         = "_"
)

// ApplicationID identifies the job a DAG runs in.
type ApplicationID struct {
	ClusterTimestamp int64 `json:"clusterTimestamp" yaml:"clusterTimestamp"`
	ID               int   `json:"id" yaml:"id"`
}

func (a ApplicationID) suffix() string {
	return fmt.Sprintf("%d_%04d", a.ClusterTimestamp, a.ID)
}

func (a ApplicationID) String() string {
	return applicationPrefix + separator + a.suffix()
}

// DAGID identifies a DAG within an application.
type DAGID struct {
	Application ApplicationID `json:"application" yaml:"application"`
	ID          int           `json:"id" yaml:"id"`
}

func (d DAGID) suffix() string {
	return d.Application.suffix() + separator + strconv.Itoa(d.ID)
}

func (d DAGID) String() string {
	return dagPrefix + separator + d.suffix()
}

// VertexID identifies a vertex within a DAG.
type VertexID struct {
	DAG DAGID `json:"dag" yaml:"dag"`
	ID  int   `json:"id" yaml:"id"`
}

func (v VertexID) suffix() string {
	return fmt.Sprintf("%s_%02d", v.DAG.suffix(), v.ID)
}

func (v VertexID) String() string {
	return vertexPrefix + separator + v.suffix()
}

// TaskID identifies a task within a vertex.
type TaskID struct {
	Vertex VertexID `json:"vertex" yaml:"vertex"`
	ID     int      `json:"id" yaml:"id"`
}

func (t TaskID) suffix() string {
	return fmt.Sprintf("%s_%06d", t.Vertex.suffix(), t.ID)
}

func (t TaskID) String() string {
	return taskPrefix + separator + t.suffix()
}

// TaskAttemptID identifies one execution attempt of a task.
type TaskAttemptID struct {
	Task TaskID `json:"task" yaml:"task"`
	ID   int    `json:"id" yaml:"id"`
}

func (a TaskAttemptID) String() string {
	return attemptPrefix + separator + a.Task.suffix() + separator + strconv.Itoa(a.ID)
}

// ApplicationID returns the application the attempt belongs to.
func (a TaskAttemptID) ApplicationID() ApplicationID {
	return a.Task.Vertex.DAG.Application
}

// NewTaskAttemptID builds an attempt id from its coordinates.
func NewTaskAttemptID(app ApplicationID, dag, vertex, task, attempt int) TaskAttemptID {
	return TaskAttemptID{
		Task: TaskID{
			Vertex: VertexID{
				DAG: DAGID{Application: app, ID: dag},
				ID:  vertex,
			},
			ID: task,
		},
		ID: attempt,
	}
}

// ParseTaskAttemptID parses the String form of a TaskAttemptID.
func ParseTaskAttemptID(text string) (TaskAttemptID, error) {
	parts := strings.Split(text, separator)
	if len(parts) != 7 || parts[0] != attemptPrefix {
		return TaskAttemptID{}, fmt.Errorf("invalid task attempt id %q", text)
	}
	values := make([]int64, 0, 6)
	for _, part := range parts[1:] {
		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil || v < 0 {
			return TaskAttemptID{}, fmt.Errorf("invalid task attempt id %q: bad component %q", text, part)
		}
		values = append(values, v)
	}
	app := ApplicationID{ClusterTimestamp: values[0], ID: int(values[1])}
	return NewTaskAttemptID(app, int(values[2]), int(values[3]), int(values[4]), int(values[5])), nil
}
