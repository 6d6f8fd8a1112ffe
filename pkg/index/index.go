package index

import (
	"sort"

	"github.com/spf13/afero"

	"github.com/harrisonrobin/taskdump/pkg/export"
	"github.com/harrisonrobin/taskdump/pkg/model"
)

// ExportIndex gives access to the content of previously written export files.
type ExportIndex struct {
	Paths     []string
	fs        afero.Fs
	documents []model.Document
}

// NewExportIndex loads every path, in sorted order. A nil fs reads from the
// OS filesystem.
func NewExportIndex(fs afero.Fs, paths ...string) (*ExportIndex, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	idx := &ExportIndex{
		Paths: sorted,
		fs:    fs,
	}
	if err := idx.Load(); err != nil {
		return nil, err
	}
	return idx, nil
}

// Load (re)reads every export file.
func (idx *ExportIndex) Load() error {
	docs := make([]model.Document, 0, len(idx.Paths))
	for _, path := range idx.Paths {
		doc, err := export.ReadFile(idx.fs, path)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}
	idx.documents = docs
	return nil
}

// Documents returns the loaded exports in path order.
func (idx *ExportIndex) Documents() []model.Document {
	return idx.documents
}

// Tasks returns the tasks of every export, in path order.
func (idx *ExportIndex) Tasks() model.Collection {
	tasks := model.Collection{}
	for _, doc := range idx.documents {
		tasks = append(tasks, doc.Tasks...)
	}
	return tasks
}

// Projects returns the stored project list of every export, in path order.
func (idx *ExportIndex) Projects() model.Projects {
	projects := model.Projects{}
	for _, doc := range idx.documents {
		projects = append(projects, doc.Projects...)
	}
	return projects
}
