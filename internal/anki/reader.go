// Package anki reads Anki .apkg decks so their notes can be turned into
// kanji questions.
package anki

import (
	"archive/zip"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// ErrNoCollection is returned when a package has no collection database.
var ErrNoCollection = errors.New("anki: package has no collection database")

// Package is an opened .apkg file.
type Package struct {
	path    string
	tempDir string
	db      *sql.DB

	Models map[int64]*Model
	Decks  map[int64]*Deck
	Notes  []*Note
}

// Model is an Anki note type.
type Model struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Fields []Field `json:"flds"`
}

// Field is one field of a note type.
type Field struct {
	Name string `json:"name"`
	Ord  int    `json:"ord"`
}

// Deck is an Anki deck.
type Deck struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Note is an Anki note.
type Note struct {
	ID      int64
	GUID    string
	ModelID int64
	Tags    string
	Fields  []string // Split on the 0x1f separator
}

// collectionNames are tried in order; newer clients write anki21.
var collectionNames = []string{"collection.anki21", "collection.anki2"}

// OpenPackage extracts and opens an .apkg file.
func OpenPackage(path string) (*Package, error) {
	pkg := &Package{
		path:   path,
		Models: make(map[int64]*Model),
		Decks:  make(map[int64]*Deck),
	}

	tempDir, err := os.MkdirTemp("", "kanjimon-anki-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	pkg.tempDir = tempDir

	if err := pkg.open(); err != nil {
		pkg.Close()
		return nil, err
	}
	return pkg, nil
}

func (p *Package) open() error {
	if err := p.extract(); err != nil {
		return err
	}

	dbPath := ""
	for _, name := range collectionNames {
		candidate := filepath.Join(p.tempDir, name)
		if _, err := os.Stat(candidate); err == nil {
			dbPath = candidate
			break
		}
	}
	if dbPath == "" {
		return ErrNoCollection
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening collection: %w", err)
	}
	p.db = db

	if err := p.loadCollection(); err != nil {
		return err
	}
	return p.loadNotes()
}

// extract unzips the package into the temp dir.
func (p *Package) extract() error {
	r, err := zip.OpenReader(p.path)
	if err != nil {
		return fmt.Errorf("opening zip: %w", err)
	}
	defer r.Close()

	root := filepath.Clean(p.tempDir) + string(os.PathSeparator)
	for _, f := range r.File {
		dest := filepath.Join(p.tempDir, f.Name)
		if !strings.HasPrefix(dest, root) {
			return fmt.Errorf("illegal file path: %s", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := extractFile(f, dest); err != nil {
			return fmt.Errorf("extracting %s: %w", f.Name, err)
		}
	}
	return nil
}

func extractFile(f *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer out.Close()

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	_, err = io.Copy(out, rc)
	return err
}

// loadCollection reads note types and decks from the col table.
func (p *Package) loadCollection() error {
	var models, decks string
	if err := p.db.QueryRow("SELECT models, decks FROM col").Scan(&models, &decks); err != nil {
		return fmt.Errorf("reading collection: %w", err)
	}

	var rawModels map[string]json.RawMessage
	if err := json.Unmarshal([]byte(models), &rawModels); err != nil {
		return fmt.Errorf("parsing models: %w", err)
	}
	for _, raw := range rawModels {
		var m Model
		if json.Unmarshal(raw, &m) == nil {
			p.Models[m.ID] = &m
		}
	}

	var rawDecks map[string]json.RawMessage
	if err := json.Unmarshal([]byte(decks), &rawDecks); err != nil {
		return fmt.Errorf("parsing decks: %w", err)
	}
	for _, raw := range rawDecks {
		var d Deck
		if json.Unmarshal(raw, &d) == nil {
			p.Decks[d.ID] = &d
		}
	}
	return nil
}

func (p *Package) loadNotes() error {
	rows, err := p.db.Query("SELECT id, guid, mid, tags, flds FROM notes ORDER BY id")
	if err != nil {
		return fmt.Errorf("querying notes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			n    Note
			flds string
		)
		if err := rows.Scan(&n.ID, &n.GUID, &n.ModelID, &n.Tags, &flds); err != nil {
			return fmt.Errorf("scanning note: %w", err)
		}
		n.Fields = strings.Split(flds, "\x1f")
		p.Notes = append(p.Notes, &n)
	}
	return rows.Err()
}

// FieldValue returns a note's field by name, case-insensitively.
func (p *Package) FieldValue(note *Note, name string) (string, bool) {
	model := p.Models[note.ModelID]
	if model == nil {
		return "", false
	}
	for _, f := range model.Fields {
		if strings.EqualFold(f.Name, name) && f.Ord < len(note.Fields) {
			return note.Fields[f.Ord], true
		}
	}
	return "", false
}

// FieldNames lists the field names of every note type, deduplicated.
func (p *Package) FieldNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range p.Models {
		for _, f := range m.Fields {
			if !seen[f.Name] {
				seen[f.Name] = true
				names = append(names, f.Name)
			}
		}
	}
	return names
}

// Close removes the extracted files.
func (p *Package) Close() error {
	var err error
	if p.db != nil {
		err = p.db.Close()
	}
	if p.tempDir != "" {
		err = errors.Join(err, os.RemoveAll(p.tempDir))
	}
	return err
}
