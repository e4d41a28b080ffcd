package migrations

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// Column descreve uma coluna do schema alvo.
type Column struct {
	Name       string
	Type       string
	NotNull    bool
	Default    string
	PrimaryKey bool
}

// Definition monta o trecho de DDL da coluna.
func (c Column) Definition() string {
	var b strings.Builder
	b.WriteString(c.Type)
	if c.PrimaryKey {
		b.WriteString(" PRIMARY KEY")
	}
	if c.NotNull {
		b.WriteString(" NOT NULL")
	}
	if c.Default != "" {
		b.WriteString(" DEFAULT ")
		b.WriteString(c.Default)
	}
	return b.String()
}

// CastType é o tipo usado ao copiar valores para esta coluna.
func (c Column) CastType() string {
	switch strings.ToUpper(c.Type) {
	case "BIGSERIAL":
		return "BIGINT"
	case "SERIAL":
		return "INTEGER"
	default:
		return c.Type
	}
}

type Rename struct {
	From string
	To   string
}

// Store abstrai o banco para que o motor possa ser exercitado sem PostgreSQL.
type Store interface {
	TableExists(ctx context.Context, table string) (bool, error)
	CreateTable(ctx context.Context, table string, columns []Column) error
	Columns(ctx context.Context, table string) ([]string, error)
	RenameColumn(ctx context.Context, table string, from string, to string) error
	AddColumn(ctx context.Context, table string, column Column) error
	DropTable(ctx context.Context, table string) error
	// CopyRows copia todas as linhas de from para to, apenas nas colunas informadas.
	CopyRows(ctx context.Context, from string, to string, columns []Column) (int64, error)
	CountRows(ctx context.Context, table string) (int64, error)
	// SwapTables remove original e renomeia shadow para original numa única transação.
	SwapTables(ctx context.Context, original string, shadow string) error
}

type MigrationError struct {
	Step string
	Err  error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration step %q failed: %v", e.Step, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

func stepError(step string, err error) error {
	return &MigrationError{Step: step, Err: err}
}

type Engine struct {
	logger  *slog.Logger
	store   Store
	table   string
	target  []Column
	renames []Rename
}

func NewEngine(logger *slog.Logger, store Store, table string, target []Column, renames []Rename) *Engine {
	return &Engine{
		logger:  logger,
		store:   store,
		table:   table,
		target:  target,
		renames: renames,
	}
}

// NewPropiedadesEngine configura o motor com o schema canônico da tabela de propriedades.
func NewPropiedadesEngine(logger *slog.Logger, store Store, table string) *Engine {
	return NewEngine(logger, store, table, PropiedadesColumns(), PropiedadesRenames())
}

func (e *Engine) ShadowTable() string {
	return e.table + "_shadow"
}

// Run leva a tabela ao schema alvo. Rodar de novo sobre uma tabela já migrada não faz nada.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.EnsureTable(ctx); err != nil {
		return err
	}

	live, err := e.DetectColumns(ctx)
	if err != nil {
		return err
	}

	for _, rename := range e.renames {
		renamed, err := e.renameIfNeeded(ctx, live, rename)
		if err != nil {
			return err
		}
		if renamed {
			live = replaceColumn(live, rename.From, rename.To)
		}
	}

	extra := e.extraColumns(live)
	if len(extra) > 0 {
		if err := e.DropColumns(ctx, extra); err != nil {
			return err
		}
	} else if missing := e.missingColumns(live); len(missing) > 0 {
		if err := e.AddColumns(ctx, missing); err != nil {
			return err
		}
	}

	return e.verify(ctx)
}

func (e *Engine) EnsureTable(ctx context.Context) error {
	exists, err := e.store.TableExists(ctx, e.table)
	if err != nil {
		return stepError("ensure_table", err)
	}
	if exists {
		return nil
	}

	e.logger.Info("creating table", "table", e.table)
	if err := e.store.CreateTable(ctx, e.table, e.target); err != nil {
		return stepError("ensure_table", err)
	}
	return nil
}

func (e *Engine) DetectColumns(ctx context.Context) ([]string, error) {
	columns, err := e.store.Columns(ctx, e.table)
	if err != nil {
		return nil, stepError("detect_columns", err)
	}
	return columns, nil
}

// RenameColumn só age quando from existe e to ainda não.
func (e *Engine) RenameColumn(ctx context.Context, from string, to string) error {
	live, err := e.DetectColumns(ctx)
	if err != nil {
		return err
	}
	_, err = e.renameIfNeeded(ctx, live, Rename{From: from, To: to})
	return err
}

func (e *Engine) renameIfNeeded(ctx context.Context, live []string, rename Rename) (bool, error) {
	if !slices.Contains(live, rename.From) || slices.Contains(live, rename.To) {
		return false, nil
	}

	e.logger.Info("renaming column", "table", e.table, "from", rename.From, "to", rename.To)
	if err := e.store.RenameColumn(ctx, e.table, rename.From, rename.To); err != nil {
		return false, stepError("rename_column", err)
	}
	return true, nil
}

// DropColumns reconstrói a tabela sem as colunas informadas: cria a shadow com o
// schema alvo, copia as linhas, confere a contagem e só então troca as tabelas.
// A original permanece intacta até o swap.
func (e *Engine) DropColumns(ctx context.Context, names []string) error {
	shadow := e.ShadowTable()
	e.logger.Info("rebuilding table", "table", e.table, "dropping", names)

	live, err := e.DetectColumns(ctx)
	if err != nil {
		return err
	}

	// sobra de uma execução interrompida
	if err := e.store.DropTable(ctx, shadow); err != nil {
		return stepError("drop_stale_shadow", err)
	}

	if err := e.store.CreateTable(ctx, shadow, e.target); err != nil {
		return stepError("create_shadow", err)
	}

	retained := make([]Column, 0, len(e.target))
	for _, column := range e.target {
		if slices.Contains(live, column.Name) && !slices.Contains(names, column.Name) {
			retained = append(retained, column)
		}
	}

	copied, err := e.store.CopyRows(ctx, e.table, shadow, retained)
	if err != nil {
		e.discardShadow(ctx, shadow)
		return stepError("copy_rows", err)
	}

	original, err := e.store.CountRows(ctx, e.table)
	if err != nil {
		e.discardShadow(ctx, shadow)
		return stepError("verify_row_count", err)
	}
	inShadow, err := e.store.CountRows(ctx, shadow)
	if err != nil {
		e.discardShadow(ctx, shadow)
		return stepError("verify_row_count", err)
	}
	if original != inShadow {
		e.discardShadow(ctx, shadow)
		return stepError("verify_row_count", fmt.Errorf("row count mismatch: %s has %d rows, %s has %d (copied %d)",
			e.table, original, shadow, inShadow, copied))
	}

	if err := e.store.SwapTables(ctx, e.table, shadow); err != nil {
		return stepError("swap_tables", err)
	}

	e.logger.Info("table rebuilt", "table", e.table, "rows", copied)
	return nil
}

func (e *Engine) discardShadow(ctx context.Context, shadow string) {
	if err := e.store.DropTable(ctx, shadow); err != nil {
		e.logger.Warn("failed to drop shadow table", "table", shadow, "error", err)
	}
}

// AddColumns adiciona colunas do schema alvo ausentes na tabela, com seus defaults.
func (e *Engine) AddColumns(ctx context.Context, columns []Column) error {
	for _, column := range columns {
		e.logger.Info("adding column", "table", e.table, "column", column.Name)
		if err := e.store.AddColumn(ctx, e.table, column); err != nil {
			return stepError("add_column", err)
		}
	}
	return nil
}

func (e *Engine) verify(ctx context.Context) error {
	live, err := e.DetectColumns(ctx)
	if err != nil {
		return err
	}

	if extra, missing := e.extraColumns(live), e.missingColumns(live); len(extra) > 0 || len(missing) > 0 {
		return stepError("verify", fmt.Errorf("schema mismatch after migration: extra=%v missing=%v", extra, columnNames(missing)))
	}
	return nil
}

func (e *Engine) extraColumns(live []string) []string {
	targetNames := columnNames(e.target)

	var extra []string
	for _, name := range live {
		if !slices.Contains(targetNames, name) {
			extra = append(extra, name)
		}
	}
	return extra
}

func (e *Engine) missingColumns(live []string) []Column {
	var missing []Column
	for _, column := range e.target {
		if !slices.Contains(live, column.Name) {
			missing = append(missing, column)
		}
	}
	return missing
}

func columnNames(columns []Column) []string {
	names := make([]string, 0, len(columns))
	for _, column := range columns {
		names = append(names, column.Name)
	}
	return names
}

func replaceColumn(live []string, from string, to string) []string {
	out := make([]string, 0, len(live))
	for _, name := range live {
		if name == from {
			name = to
		}
		out = append(out, name)
	}
	return out
}
