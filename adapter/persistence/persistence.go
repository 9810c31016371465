// Package persistence contains the default [domain.Persistence]
// implementation: an append-only datafile holding one JSON document per line.
//
// Every mutation appends the new state of the affected documents. Deleted
// documents are appended as tombstones. Loading replays the file, keeps the
// last state of each id and rewrites the file compacted.
package persistence

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dolmen-go/contextio"
	"github.com/vinicius-lino-figueiredo/doctable/domain"
)

const (
	DefaultDirMode  os.FileMode = 0o755
	DefaultFileMode os.FileMode = 0o644
)

// DeletedField marks a tombstone line.
const DeletedField = "$$deleted"

var errMissingID = errors.New("document has no _id")

// Persistence implements [domain.Persistence].
type Persistence struct {
	filename              string
	fileMode              os.FileMode
	dirMode               os.FileMode
	corruptAlertThreshold float64
}

// NewPersistence returns a new implementation of [domain.Persistence] writing
// to filename.
func NewPersistence(filename string, options ...Option) (domain.Persistence, error) {
	p := Persistence{
		filename:              filename,
		fileMode:              DefaultFileMode,
		dirMode:               DefaultDirMode,
		corruptAlertThreshold: 0.1,
	}
	for _, option := range options {
		option(&p)
	}
	if p.filename == "" || strings.HasSuffix(p.filename, "~") {
		return nil, domain.ErrDatafileName{Name: p.filename, Reason: "cannot be empty or end with '~', reserved for backup files"}
	}
	return &p, nil
}

// Factory returns a [domain.PersistenceFactory] placing one datafile per
// collection under dir.
func Factory(dir string, options ...Option) domain.PersistenceFactory {
	return func(collection string) (domain.Persistence, error) {
		return NewPersistence(filepath.Join(dir, collection+".db"), options...)
	}
}

// Append implements [domain.Persistence].
func (p *Persistence) Append(ctx context.Context, docs ...domain.Row) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	toPersist := new(bytes.Buffer)
	if err := p.write(contextio.NewWriter(ctx, toPersist), docs); err != nil {
		return err
	}
	if toPersist.Len() == 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(p.filename), p.dirMode); err != nil {
		return err
	}
	f, err := os.OpenFile(p.filename, os.O_WRONLY|os.O_CREATE|os.O_APPEND, p.fileMode)
	if err != nil {
		return err
	}
	if _, err := f.Write(toPersist.Bytes()); err != nil {
		return errors.Join(err, f.Close())
	}
	return f.Close()
}

// Load implements [domain.Persistence].
func (p *Persistence) Load(ctx context.Context) ([]domain.Row, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	f, err := os.Open(p.filename)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Row{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	docs, err := p.replay(bufio.NewScanner(contextio.NewReader(ctx, f)))
	if err != nil {
		return nil, err
	}

	return docs, p.compact(ctx, docs)
}

func (p *Persistence) replay(lines *bufio.Scanner) ([]domain.Row, error) {
	order := make([]string, 0)
	byID := make(map[string]domain.Row)
	corruptItems, dataLength := 0, 0

	for lines.Scan() {
		line := lines.Bytes()
		if len(line) == 0 {
			continue
		}
		dataLength++
		doc, id, err := p.parseLine(line)
		if err != nil {
			corruptItems++
			continue
		}
		if deleted, _ := doc[DeletedField].(bool); deleted {
			delete(byID, id)
			continue
		}
		if _, seen := byID[id]; !seen {
			order = append(order, id)
		}
		byID[id] = doc
	}
	if err := lines.Err(); err != nil {
		return nil, err
	}

	if dataLength > 0 {
		rate := float64(corruptItems) / float64(dataLength)
		if rate > p.corruptAlertThreshold {
			return nil, domain.ErrCorruptFiles{
				CorruptionRate:        rate,
				CorruptItems:          corruptItems,
				DataLength:            dataLength,
				CorruptAlertThreshold: p.corruptAlertThreshold,
			}
		}
	}

	docs := make([]domain.Row, 0, len(byID))
	for _, id := range order {
		if doc, ok := byID[id]; ok {
			docs = append(docs, doc)
			delete(byID, id)
		}
	}
	return docs, nil
}

// compact rewrites the datafile with only the given documents, writing to a
// temporary file first so a crash never leaves a truncated datafile behind.
func (p *Persistence) compact(ctx context.Context, docs []domain.Row) error {
	tmp := p.filename + "~"
	buf := new(bytes.Buffer)
	if err := p.write(contextio.NewWriter(ctx, buf), docs); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, buf.Bytes(), p.fileMode); err != nil {
		return err
	}
	return os.Rename(tmp, p.filename)
}

// write encodes docs as one JSON line each.
func (p *Persistence) write(wr io.Writer, docs []domain.Row) error {
	for _, doc := range docs {
		b, err := json.Marshal(encodeValue(doc))
		if err != nil {
			return err
		}
		if _, err := wr.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return nil
}

// parseLine decodes one datafile line. The returned key identifies the
// document among the other lines: it is the JSON form of its "_id", so ids
// of any type can be replayed.
func (p *Persistence) parseLine(line []byte) (domain.Row, string, error) {
	var raw map[string]any
	if err := json.Unmarshal(line, &raw); err != nil {
		return nil, "", err
	}
	if raw[domain.IDField] == nil {
		return nil, "", errMissingID
	}
	doc, ok := decodeValue(raw).(map[string]any)
	if !ok {
		return nil, "", errMissingID
	}
	key, err := json.Marshal(encodeValue(doc[domain.IDField]))
	if err != nil {
		return nil, "", err
	}
	return doc, string(key), nil
}

// Drop implements [domain.Persistence].
func (p *Persistence) Drop(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if err := os.Remove(p.filename); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
