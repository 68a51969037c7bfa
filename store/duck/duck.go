// Package duck serves rows from a csv, json or parquet file loaded into duckdb.
package duck

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/marcboeker/go-duckdb"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	nt "tableau/entity"
)

const rowsTable = "records"

// Field is a column of the loaded file.
type Field struct {
	Name string
	Type string
}

// Duck answers paged, sorted and filtered queries over one loaded file.
type Duck struct {
	db          *sql.DB
	indexColumn string
	fields      []Field
	filename    string

	where string
	args  []any

	ctx    context.Context
	logger nt.Logger
}

// New opens an in-memory database.
func New(ctx context.Context, indexColumn string, lgr nt.Logger) (dk *Duck, err error) {

	db, err := sql.Open("duckdb", "")
	if err != nil {
		err = errors.Wrapf(err, "failed to open memo duck")
		return
	}

	if indexColumn == "" {
		indexColumn = "index"
	}

	dk = &Duck{
		db:          db,
		indexColumn: indexColumn,
		ctx:         ctx,
		logger:      lgr,
	}
	return
}

func (dk *Duck) Close() {
	dk.db.Close()
}

// Load a file, numbering rows in the index column unless the file has one.
func (dk *Duck) Load(path string) (err error) {

	read, err := reader(path)
	if err != nil {
		return
	}

	_, err = dk.db.ExecContext(dk.ctx, fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS SELECT * FROM %s(%s)",
		rowsTable, read, quoteLiteral(path)))
	if err != nil {
		err = errors.Wrapf(err, "failed to load %s", path)
		return
	}

	dk.fields, err = dk.getFields()
	if err != nil {
		return
	}

	if !slices.ContainsFunc(dk.fields, func(fld Field) bool { return fld.Name == dk.indexColumn }) {
		_, err = dk.db.ExecContext(dk.ctx, fmt.Sprintf(
			"CREATE OR REPLACE TABLE %s AS SELECT (ROW_NUMBER() OVER () - 1)::BIGINT AS %s, * FROM %s",
			rowsTable, quoteIdent(dk.indexColumn), rowsTable))
		if err != nil {
			err = errors.Wrapf(err, "failed to number rows")
			return
		}

		dk.fields, err = dk.getFields()
		if err != nil {
			return
		}
	}

	dk.filename = path
	dk.logger.Info(dk.ctx, "loaded file", "path", path, "fields", len(dk.fields))
	return
}

// Name returns the name of the loaded file
func (dk *Duck) Name() string {
	return dk.filename
}

// IndexColumn returns the name of the id column.
func (dk *Duck) IndexColumn() string {
	return dk.indexColumn
}

// Fields returns the loaded columns in file order, index first when added.
func (dk *Duck) Fields() []Field {
	return slices.Clone(dk.fields)
}

// Columns declares a packed column per field, the index column excepted.
func (dk *Duck) Columns() (cols []nt.Column) {

	for _, fld := range dk.fields {
		if fld.Name == dk.indexColumn {
			continue
		}

		col := nt.Column{
			Field:    fld.Name,
			Width:    max(utf8.RuneCountInString(fld.Name), 4),
			MinWidth: 3,
			Sizing:   nt.Packed,
		}
		if strings.HasPrefix(fld.Type, "TIMESTAMP") {
			col.Format = "2006-01-02 15:04:05"
		}
		cols = append(cols, col)
	}
	return
}

// SetFilter narrows subsequent queries and counts.
func (dk *Duck) SetFilter(f nt.Filter) (err error) {

	args := []any{}
	expr, err := dk.buildFilterExpr(f, &args)
	if err != nil {
		return
	}

	dk.where = ""
	if expr != "" {
		dk.where = "WHERE " + expr
	}
	dk.args = args
	return
}

// Query returns up to limit rows from offset, all of them when limit is zero.
func (dk *Duck) Query(offset, limit int, sort *nt.Sort) (recs []nt.Record, err error) {

	if offset < 0 || limit < 0 {
		err = errors.Errorf("bad page offset %d limit %d", offset, limit)
		return
	}

	order, err := dk.orderBy(sort)
	if err != nil {
		return
	}

	query := fmt.Sprintf("SELECT * FROM %s %s %s", rowsTable, dk.where, order)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
	} else {
		query += fmt.Sprintf(" OFFSET %d", offset)
	}

	rows, err := dk.db.QueryContext(dk.ctx, query, dk.args...)
	if err != nil {
		err = errors.Wrapf(err, "failed to query rows")
		return
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		err = errors.Wrapf(err, "failed to get cols from query rows")
		return
	}

	for rows.Next() {
		var vals []any
		vals, err = scanRow(rows, len(names))
		if err != nil {
			err = errors.Wrapf(err, "failed to scan row")
			return
		}

		raw := make(map[string]any, len(names))
		for i, name := range names {
			raw[name] = convert(vals[i])
		}
		recs = append(recs, nt.NewRecord(raw))
	}

	err = rows.Err()
	err = errors.Wrapf(err, "error iterating rows")
	return
}

// RowCount returns the number of rows passing the filter.
func (dk *Duck) RowCount() (count int, known bool, err error) {

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", rowsTable, dk.where)
	err = dk.db.QueryRowContext(dk.ctx, query, dk.args...).Scan(&count)
	if err != nil {
		err = errors.Wrapf(err, "failed to count rows")
		return
	}

	known = true
	return
}

// unexported

func (dk *Duck) orderBy(sort *nt.Sort) (order string, err error) {

	index := quoteIdent(dk.indexColumn)
	if sort == nil || sort.Field == "" {
		order = "ORDER BY " + index
		return
	}

	err = dk.checkField(sort.Field)
	if err != nil {
		return
	}

	dir := "ASC"
	if sort.Desc {
		dir = "DESC"
	}
	order = fmt.Sprintf("ORDER BY %s %s NULLS FIRST, %s", quoteIdent(sort.Field), dir, index)
	return
}

// buildFilterExpr recursively builds a parameterized filter expression,
// appending operands to args.
func (dk *Duck) buildFilterExpr(f nt.Filter, args *[]any) (expr string, err error) {

	switch f.Op {
	case nt.And, nt.Or:
		var clauses []string
		for _, child := range f.Children {
			var clause string
			clause, err = dk.buildFilterExpr(child, args)
			if err != nil {
				return
			}
			if clause != "" {
				clauses = append(clauses, clause)
			}
		}
		if len(clauses) == 0 {
			return
		}

		join := " AND "
		if f.Op == nt.Or {
			join = " OR "
		}
		expr = "(" + strings.Join(clauses, join) + ")"
		return

	case nt.Not:
		if len(f.Children) == 0 {
			return
		}
		var inner string
		inner, err = dk.buildFilterExpr(f.Children[0], args)
		if inner != "" {
			expr = "NOT (" + inner + ")"
		}
		return
	}

	err = dk.checkField(f.Field)
	if err != nil {
		return
	}
	field := quoteIdent(f.Field)
	text := fmt.Sprintf("CAST(%s AS VARCHAR)", field)

	comparison := map[nt.FilterOp]string{
		nt.Eq: "=", nt.Ne: "!=", nt.Gt: ">", nt.Gte: ">=", nt.Lt: "<", nt.Lte: "<=",
	}

	switch f.Op {
	case nt.Eq, nt.Ne, nt.Gt, nt.Gte, nt.Lt, nt.Lte:
		if f.Value == nil {
			expr = dk.nullExpr(f.Op, field)
			return
		}
		expr = fmt.Sprintf("%s %s ?", field, comparison[f.Op])
		*args = append(*args, f.Value)

	case nt.Contains:
		expr = fmt.Sprintf("contains(%s, ?)", text)
		*args = append(*args, nt.NewValue(f.Value).String())

	case nt.Match:
		expr = fmt.Sprintf("regexp_matches(%s, ?)", text)
		*args = append(*args, nt.NewValue(f.Value).String())

	case nt.Similar:
		target := strings.ToLower(nt.NewValue(f.Value).String())
		limit := max(utf8.RuneCountInString(target)/4, 1)

		expr = fmt.Sprintf(
			"(contains(lower(%s), ?) OR list_min(list_transform(string_split_regex(lower(%s), '\\s+'), w -> levenshtein(w, ?))) <= ?)",
			text, text)
		*args = append(*args, target, target, limit)

	default:
		err = errors.Errorf("unknown filter op %d", f.Op)
		return
	}

	// null never passes a comparison, so negation lets it through
	expr = fmt.Sprintf("COALESCE(%s, FALSE)", expr)
	return
}

func (dk *Duck) nullExpr(op nt.FilterOp, field string) string {

	switch op {
	case nt.Eq:
		return field + " IS NULL"
	case nt.Ne:
		return field + " IS NOT NULL"
	}
	return "FALSE"
}

func (dk *Duck) checkField(name string) error {

	if slices.ContainsFunc(dk.fields, func(fld Field) bool { return fld.Name == name }) {
		return nil
	}
	return nt.InvalidColumnError{Ref: name}
}

func (dk *Duck) getFields() (fields []Field, err error) {

	rows, err := dk.db.QueryContext(dk.ctx, `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_name = ?
		ORDER BY ordinal_position
	`, rowsTable)
	if err != nil {
		err = errors.Wrapf(err, "failed to query schema")
		return
	}
	defer rows.Close()

	for rows.Next() {
		var fld Field
		if err = rows.Scan(&fld.Name, &fld.Type); err != nil {
			err = errors.Wrapf(err, "failed to scan field")
			return
		}
		fields = append(fields, fld)
	}

	err = rows.Err()
	err = errors.Wrapf(err, "error iterating fields")
	return
}

// help

func reader(path string) (read string, err error) {

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		read = "read_csv_auto"
	case ".json", ".jsonl", ".ndjson":
		read = "read_json_auto"
	case ".parquet":
		read = "read_parquet"
	default:
		err = errors.Errorf("unsupported file type for %s", path)
	}
	return
}

func scanRow(rows *sql.Rows, columnCount int) ([]any, error) {
	vals := make([]any, columnCount)
	ptrs := make([]any, columnCount)
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	err := rows.Scan(ptrs...)
	return vals, err
}

// convert maps driver values to those the table orders and displays.
func convert(raw any) any {

	switch val := raw.(type) {
	case duckdb.Decimal:
		if val.Value == nil {
			return decimal.Zero
		}
		return decimal.NewFromBigInt(val.Value, -int32(val.Scale))
	case *big.Int:
		return decimal.NewFromBigInt(val, 0)
	case []byte:
		return string(val)
	}
	return raw
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteLiteral(text string) string {
	return "'" + strings.ReplaceAll(text, "'", "''") + "'"
}
