package core

// Snapshot pins the code, environment and files of a model at a point in
// time, together with the config and stats recorded for it.
type Snapshot struct {
	Meta             `mapstructure:",squash"`
	ModelID          string         `mapstructure:"model_id"`
	SessionID        string         `mapstructure:"session_id"`
	Message          string         `mapstructure:"message"`
	CodeID           string         `mapstructure:"code_id"`
	EnvironmentID    string         `mapstructure:"environment_id"`
	FileCollectionID string         `mapstructure:"file_collection_id"`
	Config           map[string]any `mapstructure:"config"`
	Stats            map[string]any `mapstructure:"stats"`
	TaskID           string         `mapstructure:"task_id"`
	Label            string         `mapstructure:"label"`
	Visible          bool           `mapstructure:"visible"`
	Extra            map[string]any `mapstructure:",remain"`
}

// SnapshotFromDocument translates a document into a Snapshot. Snapshots
// are visible unless the document says otherwise.
func SnapshotFromDocument(doc Document) (*Snapshot, error) {
	s := &Snapshot{Visible: true}
	if err := decodeDocument(CollectionSnapshot, doc, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Collection implements Entity.
func (s *Snapshot) Collection() string { return CollectionSnapshot }

// ToDocument implements Entity.
func (s *Snapshot) ToDocument() Document {
	doc := s.Meta.document()
	doc["model_id"] = s.ModelID
	doc["session_id"] = s.SessionID
	doc["message"] = s.Message
	doc["code_id"] = s.CodeID
	doc["environment_id"] = s.EnvironmentID
	doc["file_collection_id"] = s.FileCollectionID
	putMap(doc, "config", s.Config)
	putMap(doc, "stats", s.Stats)
	doc["task_id"] = s.TaskID
	doc["label"] = s.Label
	doc["visible"] = s.Visible
	putExtra(doc, s.Extra)
	return doc
}
