package core

// Environment describes the runtime a snapshot or task was produced in.
type Environment struct {
	Meta               `mapstructure:",squash"`
	ModelID            string         `mapstructure:"model_id"`
	DriverType         string         `mapstructure:"driver_type"`
	DefinitionFilename string         `mapstructure:"definition_filename"`
	HardwareInfo       map[string]any `mapstructure:"hardware_info"`
	FileCollectionID   string         `mapstructure:"file_collection_id"`
	UniqueHash         string         `mapstructure:"unique_hash"`
	Language           string         `mapstructure:"language"`
	Description        string         `mapstructure:"description"`
	Extra              map[string]any `mapstructure:",remain"`
}

// EnvironmentFromDocument translates a document into an Environment.
func EnvironmentFromDocument(doc Document) (*Environment, error) {
	e := &Environment{}
	if err := decodeDocument(CollectionEnvironment, doc, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Collection implements Entity.
func (e *Environment) Collection() string { return CollectionEnvironment }

// ToDocument implements Entity.
func (e *Environment) ToDocument() Document {
	doc := e.Meta.document()
	doc["model_id"] = e.ModelID
	doc["driver_type"] = e.DriverType
	doc["definition_filename"] = e.DefinitionFilename
	putMap(doc, "hardware_info", e.HardwareInfo)
	doc["file_collection_id"] = e.FileCollectionID
	doc["unique_hash"] = e.UniqueHash
	doc["language"] = e.Language
	doc["description"] = e.Description
	putExtra(doc, e.Extra)
	return doc
}
