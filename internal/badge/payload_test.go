package badge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPayload(t *testing.T) {
	p := testerBadge().Payload()
	assert.Equal(t, "Relay A", p.Program)
	assert.Zero(t, p.RefereeID)
	data, err := p.Marshal()
	require.NoError(t, err)
	assert.Equal(t,
		`{"ID":42,"CC":"CS101","CN":"Intro to CS","AL":3,"PR":"Relay A","FN":"A. Tester","EM":"a.tester@example.com"}`,
		string(data))

	ref := refereeBadge().Payload()
	assert.Equal(t, "Peer review", ref.Program)
	assert.Equal(t, 11, ref.RefereeID)
	data, err = ref.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"RI":11`)

	assert.Panics(t, func() { Record{ID: 1}.Payload() })
}

func TestParsePayload(t *testing.T) {
	p, err := ParsePayload([]byte(`{"ID":42,"CC":"CS101","CN":"Intro to CS","AL":3,"PR":"Relay A","FN":"A. Tester","EM":"a.tester@example.com"}`))
	require.NoError(t, err)
	assert.Equal(t, testerBadge().Payload(), p)

	for _, key := range requiredKeys {
		fields := map[string]string{"ID": "1", "CC": `"a"`, "CN": `"b"`, "AL": "1", "PR": `"c"`, "FN": `"d"`, "EM": `"e"`}
		delete(fields, key)
		data := "{"
		for k, v := range fields {
			if len(data) > 1 {
				data += ","
			}
			data += `"` + k + `":` + v
		}
		data += "}"
		_, err := ParsePayload([]byte(data))
		assert.ErrorIs(t, err, ErrMissingField, key)
	}

	_, err = ParsePayload([]byte("not json"))
	assert.ErrorIs(t, err, ErrMalformedPayload)
	_, err = ParsePayload([]byte(`{"ID":"x","CC":"a","CN":"b","AL":1,"PR":"c","FN":"d","EM":"e"}`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestErrorMatchesByKind(t *testing.T) {
	err := reject(LevelMismatch, "%d != %d", 3, 4)
	assert.ErrorIs(t, err, ErrLevelMismatch)
	assert.NotErrorIs(t, err, ErrNameMismatch)
	assert.Equal(t, "attained level does not match: 3 != 4", err.Error())
	assert.Equal(t, "payload signature does not match", ErrSignatureMismatch.Error())
}
