package ger

import (
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/stretchr/testify/assert"
)

func record(keys []string, values []any) *db.Record {
	return &db.Record{Keys: keys, Values: values}
}

func TestRecordValueHelpers(t *testing.T) {
	rec := record(
		[]string{"name", "count", "confidence", "aliases", "seasons", "missing_value"},
		[]any{"Jed Bartlet", int64(3), 0.92, []any{"POTUS", "Mr. President"}, []any{int64(1), int64(2)}, nil},
	)

	assert.Equal(t, "Jed Bartlet", recordString(rec, "name"))
	assert.Equal(t, 3, recordInt(rec, "count"))
	assert.InDelta(t, 0.92, recordFloat(rec, "confidence"), 0.0001)
	assert.Equal(t, []string{"POTUS", "Mr. President"}, recordStrings(rec, "aliases"))
	assert.Equal(t, []int{1, 2}, recordInts(rec, "seasons"))

	assert.Equal(t, "", recordString(rec, "missing_value"))
	assert.Equal(t, "", recordString(rec, "absent_key"))
	assert.Equal(t, 0, recordInt(rec, "absent_key"))
	assert.Nil(t, recordStrings(rec, "absent_key"))
}

func TestRecordNumericCoercion(t *testing.T) {
	rec := record([]string{"int_as_float", "float_as_int"}, []any{42.0, int64(7)})
	assert.Equal(t, 42, recordInt(rec, "int_as_float"))
	assert.InDelta(t, 7.0, recordFloat(rec, "float_as_int"), 0.0001)
}
