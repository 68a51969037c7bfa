package rowstore

import (
	"io"
	"os"
	"slices"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	nt "tableau/entity"
)

const (
	tagKey     = "_tag"
	detailsKey = "_details"

	// local tags for scalars yaml would otherwise read back as strings
	decimalTag = "!decimal"
	timeTag    = "!time"
)

// Save writes rows as a yaml sequence, one mapping per row keyed by column.
// Decimals and times are tagged so they load with their kind and scale.
func (st *Store) Save(w io.Writer) (err error) {

	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, id := range st.order {
		var doc *yaml.Node
		doc, err = st.toDoc(st.rows[id])
		if err != nil {
			return
		}
		seq.Content = append(seq.Content, doc)
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()

	err = enc.Encode(seq)
	err = errors.Wrapf(err, "failed to encode %d rows", len(seq.Content))
	return
}

// Load replaces the store's rows with those read from r.
// Columns absent from the store are added, null-filled.
func (st *Store) Load(r io.Reader) (err error) {

	root := yaml.Node{}
	err = yaml.NewDecoder(r).Decode(&root)
	if err != nil && err != io.EOF {
		err = errors.Wrapf(err, "failed to decode rows")
		return
	}
	err = nil

	docs := []*yaml.Node{}
	if len(root.Content) > 0 && root.Content[0].Kind == yaml.SequenceNode {
		docs = root.Content[0].Content
	}

	recs := make([]nt.Record, len(docs))
	added := []string{}
	for i, doc := range docs {
		recs[i], added, err = st.fromDoc(doc, added)
		if err != nil {
			err = errors.Wrapf(err, "failed to read row %d", i)
			return
		}
	}

	// check ids before the store is touched
	scratch := New(st.ctx, st.indexColumn, nil, st.logger)
	_, err = scratch.Append(recs)
	if err != nil {
		return
	}

	st.Clear()
	slices.Sort(added)
	for _, name := range added {
		err = st.AddColumn(name, nt.Null)
		if err != nil {
			return
		}
	}
	_, err = st.Append(recs)
	return
}

// SaveFile saves rows to path.
func (st *Store) SaveFile(path string) (err error) {

	file, err := os.Create(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to create %s", path)
		return
	}
	defer file.Close()

	err = st.Save(file)
	return
}

// LoadFile loads rows from path.
func (st *Store) LoadFile(path string) (err error) {

	file, err := os.Open(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to open %s", path)
		return
	}
	defer file.Close()

	err = st.Load(file)
	return
}

// unexported

func (st *Store) toDoc(rec *nt.Record) (doc *yaml.Node, err error) {

	doc = &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, val *yaml.Node) {
		doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, val)
	}

	for _, name := range st.columns {
		var val *yaml.Node
		val, err = encodeValue(rec.Values[name].Raw)
		if err != nil {
			err = errors.Wrapf(err, "failed to encode %s of row %d", name, rec.Id)
			return
		}
		add(name, val)
	}

	if rec.Tag != "" {
		add(tagKey, &yaml.Node{Kind: yaml.ScalarNode, Value: rec.Tag})
	}
	if rec.Details != (nt.Details{}) {
		val := &yaml.Node{}
		err = val.Encode(rec.Details)
		if err != nil {
			err = errors.Wrapf(err, "failed to encode details of row %d", rec.Id)
			return
		}
		add(detailsKey, val)
	}
	return
}

func (st *Store) fromDoc(doc *yaml.Node, added []string) (rec nt.Record, _ []string, err error) {

	rec = nt.Record{
		Values:      map[string]nt.Value{},
		FocusColumn: nt.NoFocus,
	}

	if doc.Kind != yaml.MappingNode {
		err = errors.Errorf("expected a mapping at line %d", doc.Line)
		return rec, added, err
	}

	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, val := doc.Content[i].Value, doc.Content[i+1]

		switch key {
		case tagKey:
			rec.Tag = val.Value
		case detailsKey:
			err = val.Decode(&rec.Details)
		default:
			var raw any
			raw, err = decodeValue(val)
			rec.Values[key] = nt.NewValue(raw)
			if !slices.Contains(st.columns, key) && !slices.Contains(added, key) {
				added = append(added, key)
			}
		}
		if err != nil {
			err = errors.Wrapf(err, "failed to decode %s", key)
			return rec, added, err
		}
	}
	return rec, added, nil
}

func encodeValue(raw any) (node *yaml.Node, err error) {

	switch val := raw.(type) {
	case decimal.Decimal:
		text := val.String()
		if val.Exponent() < 0 {
			text = val.StringFixed(-val.Exponent())
		}
		node = &yaml.Node{Kind: yaml.ScalarNode, Tag: decimalTag, Value: text}
		return
	case time.Time:
		node = &yaml.Node{Kind: yaml.ScalarNode, Tag: timeTag, Value: val.Format(time.RFC3339Nano)}
		return
	}

	node = &yaml.Node{}
	err = node.Encode(raw)
	return
}

func decodeValue(node *yaml.Node) (raw any, err error) {

	switch node.Tag {
	case decimalTag:
		raw, err = decimal.NewFromString(node.Value)
		return
	case timeTag:
		raw, err = time.Parse(time.RFC3339Nano, node.Value)
		return
	}

	err = node.Decode(&raw)
	return
}
