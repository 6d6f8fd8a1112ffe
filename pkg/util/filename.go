package util

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/harrisonrobin/taskdump/pkg/failure"
)

const (
	// DatePlaceholder is replaced by the export date in file name templates.
	DatePlaceholder = "{date}"

	// DateLayout formats the export date as YYYY-MM-DD.
	DateLayout = "2006-01-02"
)

// ExpandTemplate replaces the first DatePlaceholder in template with now.
func ExpandTemplate(template string, now time.Time) string {
	return strings.Replace(template, DatePlaceholder, now.Format(DateLayout), 1)
}

// ResolvePath expands template and joins it onto directory, returning an
// absolute path. An empty directory means the current working directory.
// The date is taken from now, in now's location.
func ResolvePath(template, directory string, now time.Time) (string, error) {
	name := ExpandTemplate(template, now)

	if strings.ContainsRune(directory, 0) {
		return "", failure.InvalidTemplate("export path contains a NUL byte", nil)
	}
	if strings.ContainsRune(name, 0) {
		return "", failure.InvalidTemplate("export format contains a NUL byte", nil)
	}

	if directory == "" {
		directory = "."
	}

	path, err := filepath.Abs(filepath.Join(directory, name))
	if err != nil {
		return "", failure.InvalidTemplate("could not resolve export path "+directory, err)
	}
	return path, nil
}
