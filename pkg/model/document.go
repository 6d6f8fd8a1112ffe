package model

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// Document is the unit written to disk: the fetched tasks together with the
// projects they reference.
type Document struct {
	Tasks    Collection `json:"tasks"`
	Projects Projects   `json:"projects"`
}

// NewDocument builds the export document for a single fetch.
func NewDocument(tasks Collection) Document {
	return Document{
		Tasks:    tasks,
		Projects: ExtractProjects(tasks),
	}
}

// Projects is the list of project names referenced by a collection. It keeps
// duplicates and task order.
type Projects []string

func (p Projects) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode([]string(p)); err != nil {
		return nil, errors.WithStack(err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// ExtractProjects returns the project of every task that has a non-empty one,
// in task order. Tasks without a project are skipped.
func ExtractProjects(tasks Collection) Projects {
	projects := make(Projects, 0, len(tasks))
	for _, t := range tasks {
		if p := t.Project(); p != "" {
			projects = append(projects, p)
		}
	}
	return projects
}

// Unique returns the projects with duplicates removed, keeping first-seen order.
func (p Projects) Unique() Projects {
	seen := make(map[string]struct{}, len(p))
	out := make(Projects, 0, len(p))
	for _, name := range p {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
