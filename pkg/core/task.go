package core

import "time"

// Task is one command execution inside a session. The before/after
// snapshot ids bracket the run.
type Task struct {
	Meta             `mapstructure:",squash"`
	ModelID          string         `mapstructure:"model_id"`
	SessionID        string         `mapstructure:"session_id"`
	Command          string         `mapstructure:"command"`
	CommandList      []string       `mapstructure:"command_list"`
	BeforeSnapshotID string         `mapstructure:"before_snapshot_id"`
	AfterSnapshotID  string         `mapstructure:"after_snapshot_id"`
	RunID            string         `mapstructure:"run_id"`
	Logs             string         `mapstructure:"logs"`
	Status           string         `mapstructure:"status"`
	StartTime        time.Time      `mapstructure:"start_time"`
	EndTime          time.Time      `mapstructure:"end_time"`
	Duration         float64        `mapstructure:"duration"`
	Results          map[string]any `mapstructure:"results"`
	Workspace        string         `mapstructure:"workspace"`
	Interactive      bool           `mapstructure:"interactive"`
	TaskDirpath      string         `mapstructure:"task_dirpath"`
	LogFilepath      string         `mapstructure:"log_filepath"`
	Ports            []string       `mapstructure:"ports"`
	GPU              bool           `mapstructure:"gpu"`
	MemLimit         string         `mapstructure:"mem_limit"`
	Extra            map[string]any `mapstructure:",remain"`
}

// TaskFromDocument translates a document into a Task.
func TaskFromDocument(doc Document) (*Task, error) {
	t := &Task{}
	if err := decodeDocument(CollectionTask, doc, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Collection implements Entity.
func (t *Task) Collection() string { return CollectionTask }

// ToDocument implements Entity.
func (t *Task) ToDocument() Document {
	doc := t.Meta.document()
	doc["model_id"] = t.ModelID
	doc["session_id"] = t.SessionID
	doc["command"] = t.Command
	putStrings(doc, "command_list", t.CommandList)
	doc["before_snapshot_id"] = t.BeforeSnapshotID
	doc["after_snapshot_id"] = t.AfterSnapshotID
	doc["run_id"] = t.RunID
	doc["logs"] = t.Logs
	doc["status"] = t.Status
	putTime(doc, "start_time", t.StartTime)
	putTime(doc, "end_time", t.EndTime)
	doc["duration"] = t.Duration
	putMap(doc, "results", t.Results)
	doc["workspace"] = t.Workspace
	doc["interactive"] = t.Interactive
	doc["task_dirpath"] = t.TaskDirpath
	doc["log_filepath"] = t.LogFilepath
	putStrings(doc, "ports", t.Ports)
	doc["gpu"] = t.GPU
	doc["mem_limit"] = t.MemLimit
	putExtra(doc, t.Extra)
	return doc
}
