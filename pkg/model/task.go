package model

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

const projectField = "project"

// Record is a single task as emitted by a task source. Only the project is
// interpreted, every other field is carried through untouched.
type Record struct {
	raw json.RawMessage
}

// NewRecord wraps the raw JSON object of a task.
func NewRecord(raw []byte) (Record, error) {
	var r Record
	if err := r.UnmarshalJSON(raw); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Project returns the task's project, or "" when the task has none.
// Non-string project values are treated as no project.
func (r Record) Project() string {
	v := r.Get(projectField)
	if v.Type != gjson.String {
		return ""
	}
	return v.Str
}

// Get looks up an arbitrary field using gjson path syntax.
func (r Record) Get(path string) gjson.Result {
	return gjson.GetBytes(r.raw, path)
}

func (r Record) MarshalJSON() ([]byte, error) {
	if len(r.raw) == 0 {
		return []byte("{}"), nil
	}
	return r.raw, nil
}

func (r *Record) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if !gjson.ValidBytes(trimmed) {
		return errors.New("task is not valid json")
	}
	if !gjson.ParseBytes(trimmed).IsObject() {
		return errors.Errorf("task must be a json object, got %s", kindOf(trimmed))
	}
	r.raw = append(json.RawMessage(nil), trimmed...)
	return nil
}

// Collection is an ordered list of tasks, in the order the source returned them.
type Collection []Record

// MarshalJSON writes the records as they were received. Nothing is
// re-escaped, so the caller's encoder settings apply.
func (c Collection) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, r := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := r.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// ParseCollection decodes a JSON array of task objects. Anything else,
// including empty input and null, is an error.
func ParseCollection(data []byte) (Collection, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty task list")
	}
	if !gjson.ValidBytes(trimmed) {
		return nil, errors.New("task list is not valid json")
	}
	if !gjson.ParseBytes(trimmed).IsArray() {
		return nil, errors.Errorf("task list must be a json array, got %s", kindOf(trimmed))
	}

	var tasks Collection
	if err := json.Unmarshal(trimmed, &tasks); err != nil {
		return nil, errors.WithStack(err)
	}
	if tasks == nil {
		tasks = Collection{}
	}
	return tasks, nil
}

func kindOf(b []byte) string {
	v := gjson.ParseBytes(b)
	switch v.Type {
	case gjson.Null:
		return "null"
	case gjson.False, gjson.True:
		return "boolean"
	case gjson.Number:
		return "number"
	case gjson.String:
		return "string"
	default:
		if v.IsArray() {
			return "array"
		}
		if v.IsObject() {
			return "object"
		}
		return "unknown"
	}
}
