package db

import (
	"strconv"
	"strings"
)

// IndexBuilder assembles an IndexDefinition fluently.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts a HASH index definition.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name, StorageType: StorageHash}}
}

// Prefix adds key prefixes to the index.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// Numeric adds a NUMERIC field.
func (b *IndexBuilder) Numeric(name string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{Name: name, Type: IndexFieldNumeric})
	return b
}

// Tag adds a TAG field with the given separator ("" keeps the server default).
func (b *IndexBuilder) Tag(name, separator string) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{Name: name, Type: IndexFieldTag, TagSeparator: separator})
	return b
}

// VectorHNSW adds an HNSW FLOAT32 vector field stored under name and queried as alias.
// Zero m or ef keeps the server defaults.
func (b *IndexBuilder) VectorHNSW(name, alias string, dim int, distance DistanceMetric, m, ef int) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{
		Name:              name,
		Alias:             alias,
		Type:              IndexFieldVector,
		VectorAlgo:        VectorHNSW,
		VectorDim:         dim,
		VectorDistance:    distance,
		VectorM:           m,
		VectorEFConstruct: ef,
	})
	return b
}

// Build validates and returns the definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	def := b.def
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// String renders an approximate FT.CREATE command for logs.
func (idx *IndexDefinition) String() string {
	var sb strings.Builder
	sb.WriteString("FT.CREATE ")
	sb.WriteString(idx.Name)
	sb.WriteString(" ON ")
	sb.WriteString(string(idx.StorageType))
	if len(idx.Prefixes) > 0 {
		sb.WriteString(" PREFIX ")
		sb.WriteString(strconv.Itoa(len(idx.Prefixes)))
		for _, p := range idx.Prefixes {
			sb.WriteByte(' ')
			sb.WriteString(p)
		}
	}
	sb.WriteString(" SCHEMA")
	for _, f := range idx.Fields {
		sb.WriteByte(' ')
		sb.WriteString(f.Name)
		if f.Alias != "" {
			sb.WriteString(" AS ")
			sb.WriteString(f.Alias)
		}
		switch f.Type {
		case IndexFieldNumeric:
			sb.WriteString(" NUMERIC")
		case IndexFieldTag:
			sb.WriteString(" TAG")
		case IndexFieldVector:
			sb.WriteString(" VECTOR ")
			sb.WriteString(string(f.VectorAlgo))
			sb.WriteString(" DIM ")
			sb.WriteString(strconv.Itoa(f.VectorDim))
		}
	}
	return sb.String()
}
