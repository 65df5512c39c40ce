package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKinds(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
		text  string
	}{
		{`null`, KindNull, `null`},
		{`true`, KindBool, `true`},
		{`42`, KindNumber, `42`},
		{`42.0`, KindNumber, `42.0`},
		{`"a b"`, KindString, `"a b"`},
		{`[1, 2]`, KindArray, `[1,2]`},
		{`{ "a" : 1 }`, KindObject, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Parse([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.kind, v.Kind())
			assert.Equal(t, tt.text, v.Text())
		})
	}
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte(`{"a":`))
	assert.Error(t, err)
}

func TestString(t *testing.T) {
	assert.Equal(t, "a", MustParse(`"a"`).String())
	assert.Equal(t, "7", MustParse(`7`).String())
	assert.Equal(t, "true", MustParse(`true`).String())
	assert.Equal(t, "null", Value{}.String())
	assert.Equal(t, `{"k":[1,"x"]}`, MustParse(`{"k": [1, "x"]}`).String())
}

func TestNestedDecode(t *testing.T) {
	var doc struct {
		Rows [][]Value `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"rows":[["a"],[7],[]]}`), &doc))
	require.Len(t, doc.Rows, 3)

	s, ok := doc.Rows[0][0].AsString()
	assert.True(t, ok)
	assert.Equal(t, "a", s)

	n, ok := doc.Rows[1][0].AsNumber()
	assert.True(t, ok)
	assert.Equal(t, "7", n)

	assert.Empty(t, doc.Rows[2])
}

func TestConstructors(t *testing.T) {
	assert.Equal(t, `"q\""`, NewString(`q"`).Text())
	assert.Equal(t, `false`, NewBool(false).Text())

	n, err := NewNumber("1e3")
	require.NoError(t, err)
	assert.Equal(t, "1e3", n.Text())

	_, err = NewNumber("abc")
	assert.Error(t, err)
}
