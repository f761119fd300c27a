package domain

// Index names one of the two retrieval families.
type Index string

const (
	IndexShops     Index = "shop"
	IndexKnowledge Index = "knowledge"
)

// DefaultKeyPrefix namespaces every key and index the service owns.
const DefaultKeyPrefix = "shopassist:"

// Keyspace derives key and index names under a prefix.
type Keyspace struct {
	Prefix string
}

// RecordPrefix is the key prefix of an index family, e.g. "shopassist:shop:".
func (k Keyspace) RecordPrefix(idx Index) string {
	return k.Prefix + string(idx) + ":"
}

// RecordKey is the hash key of a single record.
func (k Keyspace) RecordKey(idx Index, id string) string {
	return k.RecordPrefix(idx) + id
}

// IndexName is the FT index covering the family, e.g. "shopassist:shop:idx".
func (k Keyspace) IndexName(idx Index) string {
	return k.RecordPrefix(idx) + "idx"
}
