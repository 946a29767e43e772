package core

// Code references a commit captured by a code driver.
type Code struct {
	Meta       `mapstructure:",squash"`
	ModelID    string         `mapstructure:"model_id"`
	DriverType string         `mapstructure:"driver_type"`
	CommitID   string         `mapstructure:"commit_id"`
	Extra      map[string]any `mapstructure:",remain"`
}

// CodeFromDocument translates a document into a Code.
func CodeFromDocument(doc Document) (*Code, error) {
	c := &Code{}
	if err := decodeDocument(CollectionCode, doc, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Collection implements Entity.
func (c *Code) Collection() string { return CollectionCode }

// ToDocument implements Entity.
func (c *Code) ToDocument() Document {
	doc := c.Meta.document()
	doc["model_id"] = c.ModelID
	doc["driver_type"] = c.DriverType
	doc["commit_id"] = c.CommitID
	putExtra(doc, c.Extra)
	return doc
}

// FileCollection references a set of files stored by a file driver,
// addressed by the hash of its contents.
type FileCollection struct {
	Meta       `mapstructure:",squash"`
	ModelID    string         `mapstructure:"model_id"`
	Filehash   string         `mapstructure:"filehash"`
	Path       string         `mapstructure:"path"`
	DriverType string         `mapstructure:"driver_type"`
	Extra      map[string]any `mapstructure:",remain"`
}

// FileCollectionFromDocument translates a document into a FileCollection.
func FileCollectionFromDocument(doc Document) (*FileCollection, error) {
	fc := &FileCollection{}
	if err := decodeDocument(CollectionFileCollection, doc, fc); err != nil {
		return nil, err
	}
	return fc, nil
}

// Collection implements Entity.
func (fc *FileCollection) Collection() string { return CollectionFileCollection }

// ToDocument implements Entity.
func (fc *FileCollection) ToDocument() Document {
	doc := fc.Meta.document()
	doc["model_id"] = fc.ModelID
	doc["filehash"] = fc.Filehash
	doc["path"] = fc.Path
	doc["driver_type"] = fc.DriverType
	putExtra(doc, fc.Extra)
	return doc
}
