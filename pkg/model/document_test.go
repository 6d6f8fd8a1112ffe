package model

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocument_Marshal(t *testing.T) {
	tasks := mustParse(t, `[{"project":"x"},{"project":"y"},{}]`)

	out, err := json.Marshal(NewDocument(tasks))
	require.NoError(t, err)
	assert.Equal(t, `{"tasks":[{"project":"x"},{"project":"y"},{}],"projects":["x","y"]}`, string(out))
}

func encodeUnescaped(t *testing.T, v any) string {
	t.Helper()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	require.NoError(t, enc.Encode(v))
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}

func TestNewDocument_KeepsHTMLCharacters(t *testing.T) {
	tasks := mustParse(t, `[{"project":"R&D","description":"a < b > c"},{"project":"<ops>"}]`)

	got := encodeUnescaped(t, NewDocument(tasks))
	assert.Equal(t, `{"tasks":[{"project":"R&D","description":"a < b > c"},{"project":"<ops>"}],"projects":["R&D","<ops>"]}`, got)
}

func TestProjects_MarshalDoesNotEscapeHTML(t *testing.T) {
	out, err := Projects{"R&D", "a<b"}.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `["R&D","a<b"]`, string(out))

	out, err = Collection{}.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(out))
}

func TestDocument_EmptyListsAreArrays(t *testing.T) {
	out, err := json.Marshal(Document{})
	require.NoError(t, err)
	assert.Equal(t, `{"tasks":[],"projects":[]}`, string(out))
}

func TestDocument_RoundTrip(t *testing.T) {
	tasks := mustParse(t, `[{"uuid":"1","project":"a","nested":{"deep":[1,2,{"k":true}]}},{"uuid":"2","priority":"H"}]`)
	doc := NewDocument(tasks)

	out, err := json.Marshal(doc)
	require.NoError(t, err)

	var back Document
	require.NoError(t, json.Unmarshal(out, &back))

	again, err := json.Marshal(back)
	require.NoError(t, err)
	assert.JSONEq(t, string(out), string(again))
	assert.Equal(t, doc.Projects, back.Projects)
	require.Len(t, back.Tasks, 2)
	assert.Equal(t, "a", back.Tasks[0].Project())
}

func TestProjects_Unique(t *testing.T) {
	p := Projects{"work", "home", "work", "garden", "home"}

	assert.Equal(t, Projects{"work", "home", "garden"}, p.Unique())
	assert.Equal(t, Projects{"work", "home", "work", "garden", "home"}, p, "receiver must not change")
}
