package planfile

import (
	"fmt"

	"ariga.io/atlas/sql/migrate"

	"github.com/syssam/sqlplan/plan"
)

// Renderer turns one symbolic plan step into a migration-file change. The
// default renderer emits the symbolic form; a dialect-aware rendering layer
// plugs in here to produce concrete DDL.
type Renderer interface {
	Render(op plan.Op) (*migrate.Change, error)
}

// RendererFunc lets a function act as a Renderer.
type RendererFunc func(op plan.Op) (*migrate.Change, error)

// Render implements Renderer.
func (f RendererFunc) Render(op plan.Op) (*migrate.Change, error) {
	return f(op)
}

// Symbolic renders each step as its operation kind and ref, without any
// dialect-specific DDL.
func Symbolic() Renderer {
	return RendererFunc(func(op plan.Op) (*migrate.Change, error) {
		return &migrate.Change{
			Cmd:     fmt.Sprintf("%s %s", op.Kind, op.Ref),
			Comment: fmt.Sprintf("%s %s", op.Kind, op.Ref),
		}, nil
	})
}

// Option configures Write.
type Option func(*config)

type config struct {
	fmt      migrate.Formatter
	renderer Renderer
	sum      bool
}

// WithFormatter sets the migration-file formatter, e.g. one of the sqltool
// formatters. Defaults to migrate.DefaultFormatter.
func WithFormatter(f migrate.Formatter) Option {
	return func(c *config) { c.fmt = f }
}

// WithRenderer sets the statement renderer. Defaults to Symbolic.
func WithRenderer(r Renderer) Option {
	return func(c *config) { c.renderer = r }
}

// WithoutSumFile skips maintaining the directory checksum file.
func WithoutSumFile() Option {
	return func(c *config) { c.sum = false }
}

// Write renders the plan into a named migration inside the directory and
// refreshes the directory checksum. An empty plan writes nothing.
func Write(dir migrate.Dir, name string, ops []plan.Op, opts ...Option) error {
	cfg := &config{fmt: migrate.DefaultFormatter, renderer: Symbolic(), sum: true}
	for _, opt := range opts {
		opt(cfg)
	}
	if len(ops) == 0 {
		return nil
	}
	p := &migrate.Plan{Name: name, Transactional: true}
	for _, op := range ops {
		change, err := cfg.renderer.Render(op)
		if err != nil {
			return err
		}
		p.Changes = append(p.Changes, change)
	}
	files, err := cfg.fmt.Format(p)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := dir.WriteFile(f.Name(), f.Bytes()); err != nil {
			return err
		}
	}
	if !cfg.sum {
		return nil
	}
	sum, err := dir.Checksum()
	if err != nil {
		return err
	}
	return migrate.WriteSumFile(dir, sum)
}
