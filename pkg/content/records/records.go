package records

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/billstark001/fiction-cms-sub001/pkg/access"
	"github.com/billstark001/fiction-cms-sub001/pkg/cmserr"
	"github.com/billstark001/fiction-cms-sub001/pkg/siteconfig"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// ListOptions control ListRecords. Filter is a filter expression (see
// filter.go); OrderBy names a readable column.
type ListOptions struct {
	Filter  string
	OrderBy string
	Desc    bool
	Limit   int
	Offset  int
}

// RecordPage is one page of records plus the unpaginated total.
type RecordPage struct {
	Records []map[string]any `json:"records"`
	Total   int64            `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

// ColumnSchema describes one readable column of an editable table.
type ColumnSchema struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Nullable   bool   `json:"nullable"`
	PrimaryKey bool   `json:"primaryKey"`
	Editable   bool   `json:"editable"`
}

// TableSchema is the readable projection of a table's schema.
type TableSchema struct {
	Name       string         `json:"name"`
	PrimaryKey string         `json:"primaryKey"`
	Columns    []ColumnSchema `json:"columns"`
}

// tableCtx carries the resolved access config and live schema of one
// table for the duration of a single operation.
type tableCtx struct {
	conn     *conn
	tac      *siteconfig.TableAccessConfig
	table    string
	pkColumn string
	columns  []string
	readable []string
}

// resolve locates the relational file, checks the table is editable,
// and loads the live column list. Callers must hold no lock; the
// returned tableCtx borrows the connection, so the caller locks
// conn.mu around queries.
func (s *Store) resolve(cfg *siteconfig.SiteConfig, relPath, table string) (*tableCtx, error) {
	rfc, err := access.ResolveRelationalFile(cfg, relPath)
	if err != nil {
		return nil, err
	}
	tac, err := access.ResolveTableAccess(rfc, table)
	if err != nil {
		return nil, err
	}
	c, err := s.connFor(cfg, relPath)
	if err != nil {
		return nil, err
	}

	if !c.db.Migrator().HasTable(table) {
		return nil, cmserr.New(cmserr.CodeNotFound, "resolve_table", table)
	}
	colTypes, err := c.db.Migrator().ColumnTypes(table)
	if err != nil {
		return nil, cmserr.Wrap(cmserr.CodeInternal, "resolve_table", table, err)
	}
	columns := make([]string, 0, len(colTypes))
	for _, ct := range colTypes {
		columns = append(columns, ct.Name())
	}

	pkColumn := tac.PrimaryKey.Column
	if pkColumn == "" {
		pkColumn = "id"
	}

	return &tableCtx{
		conn:     c,
		tac:      tac,
		table:    table,
		pkColumn: pkColumn,
		columns:  columns,
		readable: access.ReadableColumns(tac, columns),
	}, nil
}

func (tc *tableCtx) hasColumn(name string) bool {
	for _, col := range tc.columns {
		if col == name {
			return true
		}
	}
	return false
}

// filterColumnCheck admits filter and order-by columns that exist and
// fall inside the readable projection.
func (tc *tableCtx) filterColumnCheck(col string) error {
	if !tc.hasColumn(col) {
		return cmserr.New(cmserr.CodeValidation, "filter_column", tc.table+"."+col)
	}
	if !access.IsColumnReadable(tc.tac, col) {
		return cmserr.New(cmserr.CodeAccessDenied, "filter_column", tc.table+"."+col)
	}
	return nil
}

// checkWrite validates a caller-supplied value set: every column must
// be editable per the allow-list and present in the table.
func (tc *tableCtx) checkWrite(values map[string]any) error {
	cols := make([]string, 0, len(values))
	for col := range values {
		cols = append(cols, col)
	}
	if err := access.CheckWritableColumns(tc.tac, cols); err != nil {
		return err
	}
	for _, col := range cols {
		if !tc.hasColumn(col) {
			return cmserr.New(cmserr.CodeValidation, "write_columns", tc.table+"."+col)
		}
	}
	return nil
}

// ListRecords returns a readable-projection page of records matching
// the options.
func (s *Store) ListRecords(ctx context.Context, cfg *siteconfig.SiteConfig, relPath, table string, opts ListOptions) (page *RecordPage, err error) {
	defer func() { s.metrics.ObserveRecordOp("list_records", err == nil) }()

	tc, err := s.resolve(cfg, relPath, table)
	if err != nil {
		return nil, err
	}

	filter, err := compileFilter(opts.Filter, tc.filterColumnCheck)
	if err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	var order string
	if opts.OrderBy != "" {
		if err := tc.filterColumnCheck(opts.OrderBy); err != nil {
			return nil, err
		}
		order = quoteIdent(opts.OrderBy)
		if opts.Desc {
			order += " DESC"
		}
	}

	tc.conn.mu.Lock()
	defer tc.conn.mu.Unlock()

	base := func() *gorm.DB {
		q := tc.conn.db.WithContext(ctx).Table(tc.table)
		if filter != nil {
			q = q.Where(filter.SQL, filter.Args...)
		}
		return q
	}

	var total int64
	if err = base().Count(&total).Error; err != nil {
		return nil, cmserr.Wrap(cmserr.CodeInternal, "list_records", tc.table, err)
	}

	q := base().Select(tc.readable).Limit(limit).Offset(offset)
	if order != "" {
		q = q.Order(order)
	}
	rows := make([]map[string]any, 0, limit)
	if err = q.Find(&rows).Error; err != nil {
		return nil, cmserr.Wrap(cmserr.CodeInternal, "list_records", tc.table, err)
	}

	return &RecordPage{Records: rows, Total: total, Limit: limit, Offset: offset}, nil
}

// GetRecord returns one record by primary key, readable projection
// applied. Fails not_found when the key does not exist.
func (s *Store) GetRecord(ctx context.Context, cfg *siteconfig.SiteConfig, relPath, table string, pk any) (row map[string]any, err error) {
	defer func() { s.metrics.ObserveRecordOp("get_record", err == nil) }()

	tc, err := s.resolve(cfg, relPath, table)
	if err != nil {
		return nil, err
	}

	tc.conn.mu.Lock()
	defer tc.conn.mu.Unlock()
	return tc.get(ctx, pk)
}

func (tc *tableCtx) get(ctx context.Context, pk any) (map[string]any, error) {
	row := map[string]any{}
	err := tc.conn.db.WithContext(ctx).Table(tc.table).
		Select(tc.readable).
		Where(quoteIdent(tc.pkColumn)+" = ?", pk).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, cmserr.New(cmserr.CodeNotFound, "get_record", tc.table)
	}
	if err != nil {
		return nil, cmserr.Wrap(cmserr.CodeInternal, "get_record", tc.table, err)
	}
	return row, nil
}

// CreateRecord inserts a record. Configured insert defaults fill
// columns the caller left unset, then the primary key strategy fills
// the key. The created record is returned with the readable projection
// applied.
func (s *Store) CreateRecord(ctx context.Context, cfg *siteconfig.SiteConfig, relPath, table string, values map[string]any) (row map[string]any, err error) {
	defer func() { s.metrics.ObserveRecordOp("create_record", err == nil) }()

	tc, err := s.resolve(cfg, relPath, table)
	if err != nil {
		return nil, err
	}
	if err = tc.checkWrite(values); err != nil {
		return nil, err
	}

	merged := make(map[string]any, len(values)+len(tc.tac.InsertDefaults))
	for col, v := range tc.tac.InsertDefaults {
		if !tc.hasColumn(col) {
			return nil, cmserr.New(cmserr.CodeValidation, "insert_defaults", tc.table+"."+col)
		}
		merged[col] = v
	}
	for col, v := range values {
		merged[col] = v
	}

	strategy := tc.tac.PrimaryKey.Strategy
	if strategy == "" {
		strategy = siteconfig.PKAutoIncrement
	}
	if _, supplied := merged[tc.pkColumn]; !supplied {
		switch strategy {
		case siteconfig.PKAutoIncrement:
			// The database assigns the key.
		case siteconfig.PKRandomToken:
			merged[tc.pkColumn] = uuid.NewString()
		case siteconfig.PKTimestamp:
			merged[tc.pkColumn] = time.Now().UnixMilli()
		case siteconfig.PKCustom:
			return nil, cmserr.New(cmserr.CodeValidation, "create_record",
				tc.table+"."+tc.pkColumn)
		}
	}

	tc.conn.mu.Lock()
	defer tc.conn.mu.Unlock()

	if err = tc.conn.db.WithContext(ctx).Table(tc.table).Create(merged).Error; err != nil {
		return nil, cmserr.Wrap(cmserr.CodeInternal, "create_record", tc.table, err)
	}

	pk, supplied := merged[tc.pkColumn]
	if !supplied {
		var rowID int64
		if err = tc.conn.db.WithContext(ctx).Raw("SELECT last_insert_rowid()").Scan(&rowID).Error; err != nil {
			return nil, cmserr.Wrap(cmserr.CodeInternal, "create_record", tc.table, err)
		}
		pk = rowID
	}
	return tc.get(ctx, pk)
}

// UpdateRecord applies the values to the record with the given primary
// key. Fails not_found when the key does not exist.
func (s *Store) UpdateRecord(ctx context.Context, cfg *siteconfig.SiteConfig, relPath, table string, pk any, values map[string]any) (err error) {
	defer func() { s.metrics.ObserveRecordOp("update_record", err == nil) }()

	if len(values) == 0 {
		return cmserr.New(cmserr.CodeValidation, "update_record", table)
	}
	tc, err := s.resolve(cfg, relPath, table)
	if err != nil {
		return err
	}
	if err = tc.checkWrite(values); err != nil {
		return err
	}

	tc.conn.mu.Lock()
	defer tc.conn.mu.Unlock()

	var n int64
	err = tc.conn.db.WithContext(ctx).Table(tc.table).
		Where(quoteIdent(tc.pkColumn)+" = ?", pk).
		Count(&n).Error
	if err != nil {
		return cmserr.Wrap(cmserr.CodeInternal, "update_record", tc.table, err)
	}
	if n == 0 {
		return cmserr.New(cmserr.CodeNotFound, "update_record", tc.table)
	}

	err = tc.conn.db.WithContext(ctx).Table(tc.table).
		Where(quoteIdent(tc.pkColumn)+" = ?", pk).
		Updates(values).Error
	if err != nil {
		return cmserr.Wrap(cmserr.CodeInternal, "update_record", tc.table, err)
	}
	return nil
}

// DeleteRecord removes the record with the given primary key. Fails
// not_found when the key does not exist.
func (s *Store) DeleteRecord(ctx context.Context, cfg *siteconfig.SiteConfig, relPath, table string, pk any) (err error) {
	defer func() { s.metrics.ObserveRecordOp("delete_record", err == nil) }()

	tc, err := s.resolve(cfg, relPath, table)
	if err != nil {
		return err
	}

	tc.conn.mu.Lock()
	defer tc.conn.mu.Unlock()

	res := tc.conn.db.WithContext(ctx).Exec(
		"DELETE FROM "+quoteIdent(tc.table)+" WHERE "+quoteIdent(tc.pkColumn)+" = ?", pk)
	if res.Error != nil {
		return cmserr.Wrap(cmserr.CodeInternal, "delete_record", tc.table, res.Error)
	}
	if res.RowsAffected == 0 {
		return cmserr.New(cmserr.CodeNotFound, "delete_record", tc.table)
	}
	return nil
}

// DescribeTable returns the readable projection of the table's schema.
func (s *Store) DescribeTable(ctx context.Context, cfg *siteconfig.SiteConfig, relPath, table string) (schema *TableSchema, err error) {
	defer func() { s.metrics.ObserveRecordOp("describe_table", err == nil) }()

	tc, err := s.resolve(cfg, relPath, table)
	if err != nil {
		return nil, err
	}

	tc.conn.mu.Lock()
	colTypes, err := tc.conn.db.WithContext(ctx).Migrator().ColumnTypes(tc.table)
	tc.conn.mu.Unlock()
	if err != nil {
		return nil, cmserr.Wrap(cmserr.CodeInternal, "describe_table", tc.table, err)
	}

	editable := func(col string) bool {
		if len(tc.tac.EditableColumns) == 0 {
			return true
		}
		for _, c := range tc.tac.EditableColumns {
			if c == col {
				return true
			}
		}
		return false
	}

	schema = &TableSchema{Name: tc.table, PrimaryKey: tc.pkColumn}
	for _, ct := range colTypes {
		if !access.IsColumnReadable(tc.tac, ct.Name()) {
			continue
		}
		nullable, _ := ct.Nullable()
		isPK, _ := ct.PrimaryKey()
		schema.Columns = append(schema.Columns, ColumnSchema{
			Name:       ct.Name(),
			Type:       ct.DatabaseTypeName(),
			Nullable:   nullable,
			PrimaryKey: isPK,
			Editable:   editable(ct.Name()),
		})
	}
	return schema, nil
}

// Tables returns the configured editable tables that actually exist in
// the relational file, in configuration order.
func (s *Store) Tables(ctx context.Context, cfg *siteconfig.SiteConfig, relPath string) (names []string, err error) {
	defer func() { s.metrics.ObserveRecordOp("list_tables", err == nil) }()

	rfc, err := access.ResolveRelationalFile(cfg, relPath)
	if err != nil {
		return nil, err
	}
	c, err := s.connFor(cfg, relPath)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range rfc.EditableTables {
		name := rfc.EditableTables[i].Name
		if c.db.WithContext(ctx).Migrator().HasTable(name) {
			names = append(names, name)
		}
	}
	return names, nil
}
