package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/dentalshop/backend/internal/domain/content"
)

// versionDigits is the zero padded width of sequential versions, e.g. 000002
const versionDigits = 6

var migrationFileRe = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.(up|down)\.sql$`)

var migrationTemplate = template.Must(template.New("migration").Parse(`-- Migration: {{.Name}}{{if .Rollback}} (Rollback){{end}}
-- Created: {{.Timestamp}}
{{- if .Description}}
-- Description: {{.Description}}
{{- end}}

`))

// MigrationFile describes a newly created up/down pair
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// Entry is one version found in a migrations directory
type Entry struct {
	Version uint
	Name    string
	HasUp   bool
	HasDown bool
}

// CreateMigration writes the next sequential up/down pair into dir
func CreateMigration(dir, name, description string) (*MigrationFile, error) {
	base := sanitizeName(name)
	if base == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	entries, err := ListMigrations(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	var next uint = 1
	if n := len(entries); n > 0 {
		next = entries[n-1].Version + 1
	}

	version := fmt.Sprintf("%0*d", versionDigits, next)
	mf := &MigrationFile{
		Version:     version,
		Name:        base,
		Description: description,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		UpPath:      filepath.Join(dir, version+"_"+base+".up.sql"),
		DownPath:    filepath.Join(dir, version+"_"+base+".down.sql"),
	}

	if err := writeMigrationFile(mf.UpPath, mf, false); err != nil {
		return nil, fmt.Errorf("failed to create up migration: %w", err)
	}
	if err := writeMigrationFile(mf.DownPath, mf, true); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("failed to create down migration: %w", err)
	}
	return mf, nil
}

func writeMigrationFile(path string, mf *MigrationFile, rollback bool) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return migrationTemplate.Execute(f, struct {
		*MigrationFile
		Rollback bool
	}{mf, rollback})
}

// sanitizeName turns a free-form name into a file name segment:
// "Ajouter la catégorie" -> "ajouter_la_categorie".
func sanitizeName(name string) string {
	return strings.ReplaceAll(content.Slugify(name), "-", "_")
}

// ListMigrations returns the versions in fsys sorted ascending. Files that
// do not follow the NNNNNN_name.{up,down}.sql layout are ignored.
func ListMigrations(fsys fs.FS) ([]Entry, error) {
	files, err := fs.ReadDir(fsys, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	byVersion := make(map[uint]*Entry)
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		m := migrationFileRe.FindStringSubmatch(f.Name())
		if m == nil {
			continue
		}
		v, err := strconv.ParseUint(m[1], 10, 32)
		if err != nil {
			continue
		}
		e, ok := byVersion[uint(v)]
		if !ok {
			e = &Entry{Version: uint(v), Name: m[2]}
			byVersion[uint(v)] = e
		}
		if m[3] == "up" {
			e.HasUp = true
		} else {
			e.HasDown = true
		}
	}

	entries := make([]Entry, 0, len(byVersion))
	for _, e := range byVersion {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Version < entries[j].Version })
	return entries, nil
}

// Versions extracts the version numbers of entries
func Versions(entries []Entry) []uint {
	out := make([]uint, len(entries))
	for i, e := range entries {
		out[i] = e.Version
	}
	return out
}
