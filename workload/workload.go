// Package workload generates the deterministic SQL workload that is run
// against each benchmark target. A workload is the pony table DDL plus a
// fixed number of parameterized insert rows.
package workload

import (
	"fmt"
	mrand "math/rand"
)

// Statements for the pony table. The second create deliberately collides
// with the first: the harness uses it to verify that the client surfaces
// failures without aborting.
const (
	TableName       = "pony"
	CreateTable     = "create table pony (id INTEGER PRIMARY KEY AUTOINCREMENT, name, age, color)"
	CreateTableDupe = "create table pony (id, name, age, color)"
	InsertRow       = "insert into pony(name, age, color) VALUES (?,?,?)"
	CountRows       = "SELECT count(0) as c from pony"
	SelectSchema    = "SELECT * from sqlite_schema"
	DropTable       = "drop table pony"
)

// colors is the palette rows are drawn from.
var colors = []string{"blue", "red", "green", "pink", "black", "white"}

// Config controls workload generation parameters.
type Config struct {
	Rows int
	Seed int64
}

// Workload holds the generated insert rows. Each entry is the argument
// tuple (name, age, color) for one InsertRow statement.
type Workload struct {
	Rows [][]any
}

// Summary contains statistics about the generated workload.
type Summary struct {
	Rows            int
	TotalStatements int
}

// Generator produces deterministic workloads from a Config.
type Generator struct {
	cfg Config
	rng *mrand.Rand
}

// NewGenerator creates a Generator from the given Config.
func NewGenerator(cfg Config) *Generator {
	return &Generator{
		cfg: cfg,
		rng: mrand.New(mrand.NewSource(cfg.Seed)),
	}
}

// Generate builds the insert rows. Names and ages are a deterministic
// function of the row index; colors come from the seeded rng.
func (g *Generator) Generate() *Workload {
	rows := make([][]any, 0, g.cfg.Rows)

	for i := 0; i < g.cfg.Rows; i++ {
		rows = append(rows, []any{
			fmt.Sprintf("Pony%d", i),
			int64(i) * 1337,
			colors[g.rng.Intn(len(colors))],
		})
	}

	return &Workload{Rows: rows}
}

// Summary reports the size of the workload, counting the fixed DDL and
// bookkeeping statements the harness issues around the inserts.
func (w *Workload) Summary() Summary {
	// drop, create, dupe create, schema check, count check, final drop.
	const fixedStatements = 6

	return Summary{
		Rows:            len(w.Rows),
		TotalStatements: len(w.Rows) + fixedStatements,
	}
}
