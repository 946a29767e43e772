package core

// Model is the root of a project: sessions, code, environments and
// snapshots all reference it through model_id.
type Model struct {
	Meta        `mapstructure:",squash"`
	Name        string         `mapstructure:"name"`
	Description string         `mapstructure:"description"`
	Extra       map[string]any `mapstructure:",remain"`
}

// ModelFromDocument translates a document into a Model.
func ModelFromDocument(doc Document) (*Model, error) {
	m := &Model{}
	if err := decodeDocument(CollectionModel, doc, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Collection implements Entity.
func (m *Model) Collection() string { return CollectionModel }

// ToDocument implements Entity.
func (m *Model) ToDocument() Document {
	doc := m.Meta.document()
	doc["name"] = m.Name
	doc["description"] = m.Description
	putExtra(doc, m.Extra)
	return doc
}

// Session groups tasks and snapshots under a model.
type Session struct {
	Meta    `mapstructure:",squash"`
	ModelID string         `mapstructure:"model_id"`
	Name    string         `mapstructure:"name"`
	Extra   map[string]any `mapstructure:",remain"`
}

// SessionFromDocument translates a document into a Session.
func SessionFromDocument(doc Document) (*Session, error) {
	s := &Session{}
	if err := decodeDocument(CollectionSession, doc, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Collection implements Entity.
func (s *Session) Collection() string { return CollectionSession }

// ToDocument implements Entity.
func (s *Session) ToDocument() Document {
	doc := s.Meta.document()
	doc["model_id"] = s.ModelID
	doc["name"] = s.Name
	putExtra(doc, s.Extra)
	return doc
}

// User is a person operating on models.
type User struct {
	Meta  `mapstructure:",squash"`
	Name  string         `mapstructure:"name"`
	Email string         `mapstructure:"email"`
	Extra map[string]any `mapstructure:",remain"`
}

// UserFromDocument translates a document into a User.
func UserFromDocument(doc Document) (*User, error) {
	u := &User{}
	if err := decodeDocument(CollectionUser, doc, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Collection implements Entity.
func (u *User) Collection() string { return CollectionUser }

// ToDocument implements Entity.
func (u *User) ToDocument() Document {
	doc := u.Meta.document()
	doc["name"] = u.Name
	doc["email"] = u.Email
	putExtra(doc, u.Extra)
	return doc
}
