// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeEntryValueWrapper(t *testing.T) {
	raw := []byte(`{"@odata.etag":"W/\"7\"","value":[{"SapUUID":"e1","OrderID":"1234","Status":"InProcess"}]}`)
	entry, etag, err := decodeEntry(raw)
	assert.NoError(t, err)
	assert.Equal(t, "e1", entry.ID)
	assert.Equal(t, "1234", entry.OrderID)
	assert.Equal(t, StatusInProcess, entry.Status)
	assert.Equal(t, `W/"7"`, etag)
}

func TestDecodeEntryLegacyWrapper(t *testing.T) {
	raw := []byte(`{"d":{"__metadata":{"etag":"W/\"3\""},"SapUUID":"e2","OrderID":"1234","Status":"Error","ActWrk":"1.5"}}`)
	entry, etag, err := decodeEntry(raw)
	assert.NoError(t, err)
	assert.Equal(t, "e2", entry.ID)
	assert.Equal(t, StatusError, entry.Status)
	assert.Equal(t, Decimal(1.5), entry.ActualWorkHours)
	assert.Equal(t, `W/"3"`, etag)
}

func TestDecodeEntryFlat(t *testing.T) {
	raw := []byte(`{"SapUUID":"e3","OrderID":"1234","OperationSo":"0010","Status":"Completed"}`)
	entry, etag, err := decodeEntry(raw)
	assert.NoError(t, err)
	assert.Equal(t, "e3", entry.ID)
	assert.Equal(t, "0010", entry.OperationID)
	assert.Empty(t, etag)
}

func TestDecodeEntryList(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"value wrapper", `{"value":[{"SapUUID":"e1"},{"SapUUID":"e2"}]}`},
		{"legacy wrapper", `{"d":{"results":[{"SapUUID":"e1"},{"SapUUID":"e2"}]}}`},
		{"bare array", `[{"SapUUID":"e1"},{"SapUUID":"e2"}]`},
	}
	for _, c := range cases {
		entries, err := decodeEntryList([]byte(c.raw))
		assert.NoError(t, err, c.name)
		assert.Len(t, entries, 2, c.name)
		assert.Equal(t, "e1", entries[0].ID, c.name)
		assert.Equal(t, "e2", entries[1].ID, c.name)
	}
}

func TestDecodeEntryListEmpty(t *testing.T) {
	entries, err := decodeEntryList([]byte(`{"value":[]}`))
	assert.NoError(t, err)
	assert.Empty(t, entries)

	_, err = decodeEntryList([]byte(`not json`))
	assert.Error(t, err)
}

func TestDecimalAcceptsStringsAndNumbers(t *testing.T) {
	var d Decimal
	assert.NoError(t, d.UnmarshalJSON([]byte(`"2.50"`)))
	assert.Equal(t, Decimal(2.5), d)
	assert.NoError(t, d.UnmarshalJSON([]byte(`1.25`)))
	assert.Equal(t, Decimal(1.25), d)
	assert.NoError(t, d.UnmarshalJSON([]byte(`""`)))
	assert.Equal(t, Decimal(0), d)
	assert.NoError(t, d.UnmarshalJSON([]byte(`null`)))
	assert.Equal(t, Decimal(0), d)
	assert.Error(t, d.UnmarshalJSON([]byte(`"abc"`)))
}
