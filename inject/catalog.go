package inject

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"itoc/toc"
)

const catalogSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started TEXT NOT NULL,
	source TEXT NOT NULL,
	destination TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS documents (
	id INTEGER PRIMARY KEY,
	run TEXT NOT NULL REFERENCES runs(id),
	source TEXT NOT NULL,
	output TEXT NOT NULL,
	title TEXT NOT NULL,
	goto_sites INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS headings (
	document INTEGER NOT NULL REFERENCES documents(id),
	seq INTEGER NOT NULL,
	level TEXT NOT NULL,
	anchor TEXT NOT NULL,
	text TEXT NOT NULL,
	markup TEXT NOT NULL,
	position REAL NOT NULL,
	not_numbered INTEGER NOT NULL,
	PRIMARY KEY (document, seq)
);
`

// catalog records tables of contents of processed documents in SQLite
// database. Every run is identified by random id, so the same database may
// collect several runs.
type catalog struct {
	conn *sqlite.Conn
	run  string
	log  *zap.Logger
}

func openCatalog(path, src, dst string, log *zap.Logger) (*catalog, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate)
	if err != nil {
		return nil, fmt.Errorf("unable to open catalog (%s): %w", path, err)
	}
	if err := sqlitex.ExecuteScript(conn, catalogSchema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to prepare catalog schema: %w", err)
	}

	c := &catalog{conn: conn, run: uuid.NewString(), log: log}
	err = sqlitex.Execute(conn, `INSERT INTO runs (id, started, source, destination) VALUES (?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{c.run, time.Now().UTC().Format(time.RFC3339), src, dst}})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to register run in catalog: %w", err)
	}
	log.Debug("Catalog opened", zap.String("file", path), zap.String("run", c.run))
	return c, nil
}

// add stores document with all its table of contents entries in a single
// transaction.
func (c *catalog) add(src, output string, p *toc.Page) (err error) {
	defer sqlitex.Save(c.conn)(&err)

	err = sqlitex.Execute(c.conn, `INSERT INTO documents (run, source, output, title, goto_sites) VALUES (?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{c.run, src, output, p.Doc.Title(), p.GoToSites}})
	if err != nil {
		return fmt.Errorf("unable to add document to catalog: %w", err)
	}
	id := c.conn.LastInsertRowID()

	seq := 0
	for _, e := range p.Entries {
		for _, h := range e.Headings {
			seq++
			err = sqlitex.Execute(c.conn, `INSERT INTO headings (document, seq, level, anchor, text, markup, position, not_numbered) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				&sqlitex.ExecOptions{Args: []any{id, seq, h.Level.String(), h.ID(), h.Text(), h.Markup(), h.Position, boolInt(h.NotNumbered())}})
			if err != nil {
				return fmt.Errorf("unable to add heading to catalog: %w", err)
			}
		}
	}
	return nil
}

func (c *catalog) close() error {
	return c.conn.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
