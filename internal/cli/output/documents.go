package output

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/leapdal/pkg/core"
)

var titleCaser = cases.Title(language.English)

// KindTitle turns a collection name into a display title:
// "file_collection" becomes "File Collection".
func KindTitle(kind string) string {
	return titleCaser.String(strings.ReplaceAll(kind, "_", " "))
}

// Document renders one document of kind.
func (r *Renderer) Document(kind string, doc core.Document) error {
	if ok, err := r.Data(doc); ok {
		return err
	}

	id, _ := doc.ID()
	r.Header(1, fmt.Sprintf("%s %s", KindTitle(kind), id))

	keys := documentKeys([]core.Document{doc})
	if r.EffectiveMode() == ModeMarkdown {
		for _, k := range keys {
			r.Println(FormatKeyValue(k, FormatValue(doc[k])))
		}
		return nil
	}

	t := r.newTable()
	for _, k := range keys {
		t.AppendRow(table.Row{r.styles.Key.Render(k), FormatValue(doc[k])})
	}
	t.Render()
	return nil
}

// Documents renders a list of documents of kind as a table with one
// column per field.
func (r *Renderer) Documents(kind string, docs []core.Document) error {
	if docs == nil {
		docs = []core.Document{}
	}
	if ok, err := r.Data(docs); ok {
		return err
	}

	r.Header(1, fmt.Sprintf("%s (%d)", KindTitle(kind), len(docs)))
	if len(docs) == 0 {
		r.Muted("(no documents)")
		return nil
	}

	keys := documentKeys(docs)
	header := make(table.Row, len(keys))
	for i, k := range keys {
		header[i] = k
	}

	rows := make([]table.Row, len(docs))
	for i, doc := range docs {
		row := make(table.Row, len(keys))
		for j, k := range keys {
			v, ok := doc[k]
			if ok {
				row[j] = FormatValue(v)
			} else {
				row[j] = ""
			}
		}
		rows[i] = row
	}
	r.Table(header, rows)
	return nil
}

// Table renders rows under header: a box-drawn table in text mode, a
// markdown table otherwise.
func (r *Renderer) Table(header table.Row, rows []table.Row) {
	t := r.newTable()
	t.AppendHeader(header)
	t.AppendRows(rows)
	if r.EffectiveMode() == ModeMarkdown {
		t.RenderMarkdown()
		return
	}
	t.Render()
}

func (r *Renderer) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	return t
}

// documentKeys returns the union of keys: id first, timestamps last and
// the rest sorted.
func documentKeys(docs []core.Document) []string {
	seen := map[string]bool{}
	var rest []string
	for _, doc := range docs {
		for k := range doc {
			if seen[k] {
				continue
			}
			seen[k] = true
			switch k {
			case core.KeyID, core.KeyCreatedAt, core.KeyUpdatedAt:
			default:
				rest = append(rest, k)
			}
		}
	}
	sort.Strings(rest)

	var keys []string
	if seen[core.KeyID] {
		keys = append(keys, core.KeyID)
	}
	keys = append(keys, rest...)
	for _, k := range []string{core.KeyCreatedAt, core.KeyUpdatedAt} {
		if seen[k] {
			keys = append(keys, k)
		}
	}
	return keys
}

// FormatValue renders a document value for a table cell. Times use
// RFC 3339 and nested values compact JSON.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case bool, int, int64, float64:
		return fmt.Sprint(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
