package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Catalog tables of the SQL document store.
const (
	catalogCollections = "_docstore_collections"
	catalogIndexes     = "_docstore_indexes"
	catalogGraphs      = "_docstore_graphs"
)

var fieldPathPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// dialect holds the per-provider SQL differences.
type dialect struct {
	driverName   string
	versionQuery string
	quote        func(string) string
	jsonField    func(path string) string
	dropIndex    func(index, table string) string
	partial      bool
	rebind       bool
}

var dialects = map[string]dialect{
	ProviderSQLite: {
		driverName:   "sqlite3",
		versionQuery: "SELECT sqlite_version()",
		quote:        doubleQuote,
		jsonField: func(path string) string {
			return fmt.Sprintf("json_extract(doc, '$.%s')", path)
		},
		dropIndex: func(index, _ string) string {
			return "DROP INDEX IF EXISTS " + doubleQuote(index)
		},
		partial: true,
	},
	ProviderPostgres: {
		driverName:   "postgres",
		versionQuery: "SHOW server_version",
		quote:        pq.QuoteIdentifier,
		jsonField: func(path string) string {
			return fmt.Sprintf("((doc::jsonb) #>> '{%s}')", strings.ReplaceAll(path, ".", ","))
		},
		dropIndex: func(index, _ string) string {
			return "DROP INDEX IF EXISTS " + pq.QuoteIdentifier(index)
		},
		partial: true,
		rebind:  true,
	},
	ProviderMySQL: {
		driverName:   "mysql",
		versionQuery: "SELECT VERSION()",
		quote:        backQuote,
		jsonField: func(path string) string {
			return fmt.Sprintf("(CAST(JSON_UNQUOTE(JSON_EXTRACT(doc, '$.%s')) AS CHAR(255)))", path)
		},
		dropIndex: func(index, table string) string {
			return fmt.Sprintf("DROP INDEX %s ON %s", backQuote(index), backQuote(table))
		},
	},
}

func doubleQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func backQuote(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// SQL is a Database that stores collections as JSON document tables in a
// relational database. Collection, index and graph metadata live in catalog
// tables so the store can be described like an ArangoDB database.
type SQL struct {
	db       *sql.DB
	provider string
	name     string
	dialect  dialect
	logger   *slog.Logger
}

// OpenSQL opens the SQL document store described by cfg and makes sure the
// catalog tables exist.
func OpenSQL(ctx context.Context, cfg Config, logger *slog.Logger) (*SQL, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	provider := NormalizeProvider(cfg.Provider)
	d, ok := dialects[provider]
	if !ok {
		return nil, ErrUnsupportedProvider
	}

	dsn, err := DataSourceName(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	if provider == ProviderSQLite {
		// every pooled connection to :memory: would see its own database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	s := &SQL{db: db, provider: provider, name: cfg.Name, dialect: d, logger: logger}
	if err := s.ensureCatalog(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// DataSourceName builds the driver DSN for a SQL provider.
func DataSourceName(cfg Config) (string, error) {
	switch NormalizeProvider(cfg.Provider) {
	case ProviderSQLite:
		if cfg.Name == "" {
			return ":memory:", nil
		}
		return cfg.Name, nil
	case ProviderPostgres:
		if strings.Contains(cfg.Host, "://") {
			return cfg.Host, nil
		}
		u := url.URL{
			Scheme:   "postgres",
			Host:     cfg.Host,
			Path:     "/" + cfg.Name,
			RawQuery: "sslmode=disable",
		}
		if cfg.User != "" {
			u.User = url.UserPassword(cfg.User, cfg.Password)
		}
		return u.String(), nil
	case ProviderMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = cfg.Host
		mc.DBName = cfg.Name
		return mc.FormatDSN(), nil
	default:
		return "", ErrUnsupportedProvider
	}
}

func (s *SQL) ensureCatalog(ctx context.Context) error {
	q := s.dialect.quote
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (name VARCHAR(255) NOT NULL PRIMARY KEY, kind INTEGER NOT NULL, wait_for_sync INTEGER NOT NULL)`,
			q(catalogCollections)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (collection VARCHAR(255) NOT NULL, name VARCHAR(255) NOT NULL, id VARCHAR(255) NOT NULL, fields TEXT NOT NULL, settings TEXT NOT NULL, PRIMARY KEY (collection, name))`,
			q(catalogIndexes)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (name VARCHAR(255) NOT NULL PRIMARY KEY, definition TEXT NOT NULL)`,
			q(catalogGraphs)),
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create catalog: %w", err)
		}
	}
	return nil
}

// bind rewrites ? placeholders for drivers that use numbered ones.
func (s *SQL) bind(query string) string {
	if !s.dialect.rebind {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQL) Name() string { return s.name }

func (s *SQL) ServerVersion(ctx context.Context) (string, error) {
	var version string
	if err := s.db.QueryRowContext(ctx, s.dialect.versionQuery).Scan(&version); err != nil {
		return "", err
	}
	return version, nil
}

func (s *SQL) Collections(ctx context.Context) ([]CollectionInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT name, kind, wait_for_sync FROM %s ORDER BY name", s.dialect.quote(catalogCollections)))
	if err != nil {
		return nil, fmt.Errorf("failed to query collections: %w", err)
	}
	var infos []CollectionInfo
	for rows.Next() {
		info, err := scanCollection(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		if !info.IsSystem {
			infos = append(infos, info)
		}
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	for i := range infos {
		if infos[i].Count, err = s.count(ctx, infos[i].Name); err != nil {
			return nil, err
		}
	}
	return infos, nil
}

func (s *SQL) Collection(ctx context.Context, name string) (CollectionInfo, error) {
	row := s.db.QueryRowContext(ctx,
		s.bind(fmt.Sprintf("SELECT name, kind, wait_for_sync FROM %s WHERE name = ?", s.dialect.quote(catalogCollections))),
		name)
	info, err := scanCollection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return CollectionInfo{}, notFound("collection", name)
	}
	if err != nil {
		return CollectionInfo{}, err
	}
	info.Count, err = s.count(ctx, name)
	return info, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCollection(row scanner) (CollectionInfo, error) {
	var (
		info     CollectionInfo
		kind     int
		waitSync int
	)
	if err := row.Scan(&info.Name, &kind, &waitSync); err != nil {
		return CollectionInfo{}, err
	}
	info.Type = CollectionType(kind)
	info.WaitForSync = waitSync != 0
	info.IsSystem = IsSystemName(info.Name)
	return info, nil
}

func (s *SQL) count(ctx context.Context, name string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+s.dialect.quote(name)).Scan(&n)
	return n, err
}

func (s *SQL) CreateCollection(ctx context.Context, name string, opts CollectionOptions) (CollectionInfo, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return CollectionInfo{}, err
	}
	defer tx.Rollback()

	if err := s.createCollection(ctx, tx, name, opts); err != nil {
		return CollectionInfo{}, err
	}
	if err := tx.Commit(); err != nil {
		return CollectionInfo{}, err
	}
	s.logger.Debug("created collection", "collection", name, "edge", opts.Edge)
	return s.Collection(ctx, name)
}

func (s *SQL) createCollection(ctx context.Context, tx *sql.Tx, name string, opts CollectionOptions) error {
	kind, waitSync := int(DocumentCollection), 0
	if opts.Edge {
		kind = int(EdgeCollection)
	}
	if opts.WaitForSync {
		waitSync = 1
	}

	q := s.dialect.quote
	_, err := tx.ExecContext(ctx,
		s.bind(fmt.Sprintf("INSERT INTO %s (name, kind, wait_for_sync) VALUES (?, ?, ?)", q(catalogCollections))),
		name, kind, waitSync)
	if err != nil {
		if isConflict(err) {
			return conflict("collection", name)
		}
		return err
	}

	_, err = tx.ExecContext(ctx, fmt.Sprintf(
		"CREATE TABLE %s (_key VARCHAR(255) NOT NULL PRIMARY KEY, _from VARCHAR(255), _to VARCHAR(255), doc TEXT NOT NULL)",
		q(name)))
	if err != nil {
		if isConflict(err) {
			return conflict("collection", name)
		}
		return err
	}

	if opts.Edge {
		_, err = tx.ExecContext(ctx, fmt.Sprintf("CREATE INDEX %s ON %s (_from, _to)",
			q(physicalIndexName(name, "edge")), q(name)))
	}
	return err
}

func (s *SQL) DropCollection(ctx context.Context, name string) error {
	if _, err := s.Collection(ctx, name); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	q := s.dialect.quote
	statements := []struct {
		query string
		args  []any
	}{
		{s.bind(fmt.Sprintf("DELETE FROM %s WHERE collection = ?", q(catalogIndexes))), []any{name}},
		{s.bind(fmt.Sprintf("DELETE FROM %s WHERE name = ?", q(catalogCollections))), []any{name}},
		{"DROP TABLE " + q(name), nil},
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt.query, stmt.args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQL) Indexes(ctx context.Context, collection string) ([]Index, error) {
	info, err := s.Collection(ctx, collection)
	if err != nil {
		return nil, err
	}

	indexes := []Index{{
		ID:       collection + "/0",
		Name:     "primary",
		Fields:   []string{"_key"},
		Settings: IndexSettings{Type: PrimaryIndex, Unique: true},
	}}
	if info.Type == EdgeCollection {
		indexes = append(indexes, Index{
			ID:       collection + "/1",
			Name:     "edge",
			Fields:   []string{"_from", "_to"},
			Settings: IndexSettings{Type: EdgeIndex},
		})
	}

	rows, err := s.db.QueryContext(ctx,
		s.bind(fmt.Sprintf("SELECT id, name, fields, settings FROM %s WHERE collection = ? ORDER BY id", s.dialect.quote(catalogIndexes))),
		collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query indexes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		idx, err := scanIndex(rows)
		if err != nil {
			return nil, err
		}
		indexes = append(indexes, idx)
	}
	return indexes, rows.Err()
}

func scanIndex(row scanner) (Index, error) {
	var (
		idx              Index
		fields, settings string
	)
	if err := row.Scan(&idx.ID, &idx.Name, &fields, &settings); err != nil {
		return Index{}, err
	}
	if err := json.Unmarshal([]byte(fields), &idx.Fields); err != nil {
		return Index{}, err
	}
	if err := json.Unmarshal([]byte(settings), &idx.Settings); err != nil {
		return Index{}, err
	}
	return idx, nil
}

func (s *SQL) Index(ctx context.Context, collection, name string) (Index, error) {
	indexes, err := s.Indexes(ctx, collection)
	if err != nil {
		return Index{}, err
	}
	for _, idx := range indexes {
		if idx.Name == name {
			return idx, nil
		}
	}
	return Index{}, notFound("index", name)
}

// CreateIndex records the index in the catalog and, for the ordered index
// kinds, builds a physical index over the JSON field expressions.
func (s *SQL) CreateIndex(ctx context.Context, collection string, index Index) (Index, error) {
	if _, err := s.Collection(ctx, collection); err != nil {
		return Index{}, err
	}
	for _, field := range index.Fields {
		if !fieldPathPattern.MatchString(field) {
			return Index{}, fmt.Errorf("unsupported index field %q", field)
		}
	}

	fields, err := json.Marshal(index.Fields)
	if err != nil {
		return Index{}, err
	}
	settings, err := json.Marshal(index.Settings)
	if err != nil {
		return Index{}, err
	}
	index.ID = collection + "/" + index.Name

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Index{}, err
	}
	defer tx.Rollback()

	q := s.dialect.quote
	_, err = tx.ExecContext(ctx,
		s.bind(fmt.Sprintf("INSERT INTO %s (collection, name, id, fields, settings) VALUES (?, ?, ?, ?, ?)", q(catalogIndexes))),
		collection, index.Name, index.ID, string(fields), string(settings))
	if err != nil {
		if isConflict(err) {
			return Index{}, conflict("index", index.Name)
		}
		return Index{}, err
	}

	if stmt := s.createIndexStatement(collection, index); stmt != "" {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return Index{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return Index{}, err
	}
	return index, nil
}

func (s *SQL) createIndexStatement(collection string, index Index) string {
	switch index.Settings.Type {
	case PersistentIndex, HashIndex, SkipListIndex:
	default:
		return ""
	}

	exprs := make([]string, 0, len(index.Fields))
	for _, field := range index.Fields {
		exprs = append(exprs, "("+s.dialect.jsonField(field)+")")
	}

	var b strings.Builder
	b.WriteString("CREATE ")
	if index.Settings.Unique {
		b.WriteString("UNIQUE ")
	}
	fmt.Fprintf(&b, "INDEX %s ON %s (%s)",
		s.dialect.quote(physicalIndexName(collection, index.Name)),
		s.dialect.quote(collection),
		strings.Join(exprs, ", "))
	if index.Settings.Sparse && s.dialect.partial {
		conds := make([]string, 0, len(index.Fields))
		for _, field := range index.Fields {
			conds = append(conds, s.dialect.jsonField(field)+" IS NOT NULL")
		}
		b.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	return b.String()
}

func physicalIndexName(collection, name string) string {
	return "ix_" + sanitizeIdentifier(collection) + "_" + sanitizeIdentifier(name)
}

func sanitizeIdentifier(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, s)
}

func (s *SQL) DropIndex(ctx context.Context, collection, name string) error {
	idx, err := s.Index(ctx, collection, name)
	if err != nil {
		return err
	}
	if idx.Settings.Type.IsAutomatic() {
		return fmt.Errorf("cannot drop %s index of %s", idx.Settings.Type, collection)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		s.bind(fmt.Sprintf("DELETE FROM %s WHERE collection = ? AND name = ?", s.dialect.quote(catalogIndexes))),
		collection, name)
	if err != nil {
		return err
	}
	if s.createIndexStatement(collection, idx) != "" {
		if _, err := tx.ExecContext(ctx, s.dialect.dropIndex(physicalIndexName(collection, name), collection)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type graphRecord struct {
	EdgeDefinitions   []EdgeDefinition `json:"edge_definitions"`
	OrphanCollections []string         `json:"orphan_collections,omitempty"`
	IsSmart           *bool            `json:"is_smart,omitempty"`
	IsDisjoint        *bool            `json:"is_disjoint,omitempty"`
	Options           *GraphOptions    `json:"options,omitempty"`
}

func (s *SQL) Graphs(ctx context.Context) ([]Graph, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT name, definition FROM %s ORDER BY name", s.dialect.quote(catalogGraphs)))
	if err != nil {
		return nil, fmt.Errorf("failed to query graphs: %w", err)
	}
	defer rows.Close()

	var graphs []Graph
	for rows.Next() {
		g, err := scanGraph(rows)
		if err != nil {
			return nil, err
		}
		graphs = append(graphs, g)
	}
	return graphs, rows.Err()
}

func scanGraph(row scanner) (Graph, error) {
	var (
		name, definition string
		rec              graphRecord
	)
	if err := row.Scan(&name, &definition); err != nil {
		return Graph{}, err
	}
	if err := json.Unmarshal([]byte(definition), &rec); err != nil {
		return Graph{}, err
	}
	return Graph{
		Name:              name,
		EdgeDefinitions:   rec.EdgeDefinitions,
		OrphanCollections: rec.OrphanCollections,
		IsSmart:           rec.IsSmart,
		IsDisjoint:        rec.IsDisjoint,
		Options:           rec.Options,
	}, nil
}

func (s *SQL) Graph(ctx context.Context, name string) (Graph, error) {
	row := s.db.QueryRowContext(ctx,
		s.bind(fmt.Sprintf("SELECT name, definition FROM %s WHERE name = ?", s.dialect.quote(catalogGraphs))),
		name)
	g, err := scanGraph(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Graph{}, notFound("graph", name)
	}
	return g, err
}

// CreateGraph records the graph and creates the collections its edge
// definitions reference that do not exist yet.
func (s *SQL) CreateGraph(ctx context.Context, graph Graph) (Graph, error) {
	definition, err := json.Marshal(graphRecord{
		EdgeDefinitions:   graph.EdgeDefinitions,
		OrphanCollections: graph.OrphanCollections,
		IsSmart:           graph.IsSmart,
		IsDisjoint:        graph.IsDisjoint,
		Options:           graph.Options,
	})
	if err != nil {
		return Graph{}, err
	}

	existing, err := s.Collections(ctx)
	if err != nil {
		return Graph{}, err
	}
	known := make(map[string]bool, len(existing))
	for _, c := range existing {
		known[c.Name] = true
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Graph{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		s.bind(fmt.Sprintf("INSERT INTO %s (name, definition) VALUES (?, ?)", s.dialect.quote(catalogGraphs))),
		graph.Name, string(definition))
	if err != nil {
		if isConflict(err) {
			return Graph{}, conflict("graph", graph.Name)
		}
		return Graph{}, err
	}

	for _, def := range graph.EdgeDefinitions {
		if !known[def.Collection] {
			if err := s.createCollection(ctx, tx, def.Collection, CollectionOptions{Edge: true}); err != nil {
				return Graph{}, err
			}
			known[def.Collection] = true
		}
		for _, vertex := range slices.Concat(def.From, def.To) {
			if !known[vertex] {
				if err := s.createCollection(ctx, tx, vertex, CollectionOptions{}); err != nil {
					return Graph{}, err
				}
				known[vertex] = true
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return Graph{}, err
	}
	return graph, nil
}

func (s *SQL) DropGraph(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx,
		s.bind(fmt.Sprintf("DELETE FROM %s WHERE name = ?", s.dialect.quote(catalogGraphs))),
		name)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound("graph", name)
	}
	return nil
}

// Query runs a raw SQL statement and returns each row as a column map.
func (s *SQL) Query(ctx context.Context, query string) ([]any, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (s *SQL) ReadDocument(ctx context.Context, collection, key string, out any) error {
	if _, err := s.Collection(ctx, collection); err != nil {
		return err
	}
	var doc string
	err := s.db.QueryRowContext(ctx,
		s.bind(fmt.Sprintf("SELECT doc FROM %s WHERE _key = ?", s.dialect.quote(collection))),
		key).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("document", key)
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(doc), out)
}

func (s *SQL) WriteDocument(ctx context.Context, collection, key string, doc any) error {
	if _, err := s.Collection(ctx, collection); err != nil {
		return err
	}
	body, err := withKey(doc, key)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	from, _ := body["_from"].(string)
	to, _ := body["_to"].(string)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	q := s.dialect.quote(collection)
	if _, err := tx.ExecContext(ctx, s.bind(fmt.Sprintf("DELETE FROM %s WHERE _key = ?", q)), key); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		s.bind(fmt.Sprintf("INSERT INTO %s (_key, _from, _to, doc) VALUES (?, ?, ?, ?)", q)),
		key, nullString(from), nullString(to), string(raw))
	if err != nil {
		return err
	}
	return tx.Commit()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *SQL) Close() error {
	return s.db.Close()
}

// isConflict reports whether err is a uniqueness or already-exists failure
// raised by one of the supported drivers.
func isConflict(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint ||
			strings.Contains(sqliteErr.Error(), "already exists")
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" || pqErr.Code == "42P07"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062 || myErr.Number == 1050
	}
	return false
}
