package recordsql

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Entry, bir Record içindeki tek anahtar/değer çiftidir.
type Entry struct {
	Key   string
	Value any
}

// Record, serileştirilmiş tek satırdır. Anahtarlar satırdaki kolon sırasını korur;
// bu sayede JSON çıktısı deterministiktir.
type Record []Entry

// Get, anahtara karşılık gelen değeri döndürür.
func (r Record) Get(key string) (any, bool) {
	for _, e := range r {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Keys, anahtarları sırasıyla döndürür.
func (r Record) Keys() []string {
	keys := make([]string, len(r))
	for i, e := range r {
		keys[i] = e.Key
	}
	return keys
}

// Map, sırayı önemsemeyen tüketiciler için kaydı map'e çevirir.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r))
	for _, e := range r {
		m[e.Key] = e.Value
	}
	return m
}

// MarshalJSON, kaydı anahtar sırasını koruyarak JSON nesnesi olarak yazar.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML, kaydı anahtar sırasını koruyan bir YAML eşleme düğümüne çevirir.
func (r Record) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range r {
		var k, v yaml.Node
		if err := k.Encode(e.Key); err != nil {
			return nil, err
		}
		if err := v.Encode(e.Value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &k, &v)
	}
	return node, nil
}
