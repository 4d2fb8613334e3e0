package backup_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/tally/backup"
)

const legacyDoc = `{
  "products": [{"id": "1", "name": "Mouse"}],
  "customers": [], "suppliers": [], "sales": [],
  "purchases": [], "courses": [], "invoices": [],
  "businessInfo": {"name": "shop"}
}`

func TestDecodeLegacy(t *testing.T) {
	doc, err := backup.Decode(strings.NewReader(legacyDoc))
	require.NoError(t, err)

	assert.True(t, doc.Has(backup.Products))
	assert.False(t, doc.Has("businessInfo"), "unknown keys are dropped")
	assert.False(t, doc.Has(backup.Enrollments))
	assert.Equal(t, backup.Legacy, doc.Names())
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not json", `{"products": [`},
		{"not an object", `[1, 2]`},
		{"null", `null`},
		{"missing sales", `{"products":[],"customers":[],"suppliers":[],"purchases":[],"courses":[],"invoices":[]}`},
		{"legacy table not array", `{"products":{},"customers":[],"suppliers":[],"sales":[],"purchases":[],"courses":[],"invoices":[]}`},
		{"extra table not array", `{"products":[],"customers":[],"suppliers":[],"sales":[],"purchases":[],"courses":[],"invoices":[],"students":"x"}`},
		{"null table", `{"products":null,"customers":[],"suppliers":[],"sales":[],"purchases":[],"courses":[],"invoices":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := backup.Decode(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.True(t, errors.Is(err, backup.ErrInvalidFormat), "got %v", err)
		})
	}
}

func TestEncodeOrder(t *testing.T) {
	doc := backup.Document{
		backup.Students: json.RawMessage(`[]`),
		backup.Products: json.RawMessage(`[{"id":"1"}]`),
	}

	var buf bytes.Buffer
	require.NoError(t, doc.Encode(&buf))

	out := buf.String()
	assert.Less(t, strings.Index(out, `"products"`), strings.Index(out, `"students"`))

	var back map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Len(t, back, 2)
}
