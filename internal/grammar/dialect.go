package grammar

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/masonql/mason/internal/plan"
)

// Dialect bundles every override point a concrete database engine can
// substitute for the ANSI defaults. The grammar calls through this
// interface for identifier quoting, JSON rendering, engine-specific
// statements and literal escaping; everything else is fixed text
// construction shared by all engines.
//
// Methods that the ANSI grammar cannot express return an
// *UnsupportedError instead of emitting incorrect SQL.
type Dialect interface {
	// Name identifies the dialect ("ansi", "mysql", ...).
	Name() string

	// WrapValue quotes a single identifier segment. The grammar has
	// already split qualified and aliased names and filtered "*".
	WrapValue(segment string) string

	// Escape renders a value as a dialect literal for inlining into raw
	// SQL. Values that cannot be represented safely return an error.
	Escape(value any) (string, error)

	// CompileJSONSelector renders a "column->path" selector, unquoting
	// the extracted value where the engine distinguishes the two forms.
	CompileJSONSelector(g *Grammar, selector string) (string, error)

	// CompileJSONBooleanSelector renders a selector for boolean
	// comparison (no unquoting).
	CompileJSONBooleanSelector(g *Grammar, selector string) (string, error)

	// CompileJSONContains tests document containment. param is the
	// already-parameterized value token.
	CompileJSONContains(g *Grammar, column, param string) (string, error)

	// CompileJSONOverlaps tests whether two documents share elements.
	CompileJSONOverlaps(g *Grammar, column, param string) (string, error)

	// CompileJSONContainsKey tests whether a JSON path exists.
	CompileJSONContainsKey(g *Grammar, column string) (string, error)

	// CompileJSONLength compares the length of a JSON array or object.
	CompileJSONLength(g *Grammar, column, operator, param string) (string, error)

	// CompileFullText renders an engine-native full-text predicate. The
	// fragment must consume exactly one placeholder for c.Value.
	CompileFullText(g *Grammar, c plan.FullTextCond) (string, error)

	// CompileLike renders a pattern match. The ANSI default supports
	// only case-insensitive matching and rejects CaseSensitive.
	CompileLike(g *Grammar, c plan.LikeCond) (string, error)

	// CompileBitwise renders a bit-operator comparison. The default is
	// the plain basic form; engines that need a boolean cast override it.
	CompileBitwise(g *Grammar, column, operator string, value any) (string, error)

	// CompileJoinLateral renders a lateral join of the given type over an
	// already-compiled "(sub-select) as alias" expression.
	CompileJoinLateral(g *Grammar, joinType, expression string) (string, error)

	// CompileIndexHint renders an index hint, or "" when the engine has
	// no hint syntax.
	CompileIndexHint(g *Grammar, hint plan.IndexHint) (string, error)

	// CompileUpsert renders an insert that updates on conflict.
	// updateColumns are set to the incoming inserted value; updateValues
	// are parameterized assignments appended after them.
	CompileUpsert(g *Grammar, p *plan.QueryPlan, records []plan.Record, uniqueBy []string, updateColumns []string, updateValues []plan.Assignment) (string, error)

	// CompileInsertOrIgnore renders an insert that skips conflicting
	// rows.
	CompileInsertOrIgnore(g *Grammar, p *plan.QueryPlan, records []plan.Record) (string, error)

	// CompileInsertGetID renders the insert used when the caller wants
	// the generated key for sequence back. The default is a plain
	// insert; engines with RETURNING override it.
	CompileInsertGetID(g *Grammar, p *plan.QueryPlan, record plan.Record, sequence string) (string, error)

	// CompileTruncate renders truncation as SQL→bindings pairs, because
	// some engines need more than one statement.
	CompileTruncate(g *Grammar, p *plan.QueryPlan) (map[string][]any, error)

	// PermitsNonIntegerRawIn relaxes the integer check on raw in-lists.
	// No shipped dialect does; the hook exists so an embedding engine
	// can take responsibility for its own inlining rules.
	PermitsNonIntegerRawIn() bool

	// CompileSavepoint renders savepoint creation SQL.
	CompileSavepoint(name string) string

	// CompileSavepointRollBack renders rollback-to-savepoint SQL.
	CompileSavepointRollBack(name string) string

	// SupportsSavepoints reports whether the engine honors savepoints.
	SupportsSavepoints() bool

	// CompileRandom renders the random-ordering token.
	CompileRandom(seed string) string

	// CompileThreadCount returns the query for the engine's connection
	// count, or "" when the engine has none.
	CompileThreadCount() string
}

// Ansi is the default dialect: no identifier quoting, no JSON, no
// full-text, no lateral joins, no upserts. Concrete dialects embed Ansi
// and override what their engine supports.
//
// The zero value is ready to use.
type Ansi struct{}

var _ Dialect = Ansi{}

func (Ansi) Name() string { return "ansi" }

// WrapValue returns the segment unchanged. This is itself an override
// point: a real engine dialect must supply its quoting character, since
// unquoted identifiers are open to injection.
func (Ansi) WrapValue(segment string) string { return segment }

func (Ansi) Escape(value any) (string, error) { return EscapeLiteral(value) }

func (Ansi) CompileJSONSelector(*Grammar, string) (string, error) {
	return "", Unsupported("json operations")
}

func (Ansi) CompileJSONBooleanSelector(*Grammar, string) (string, error) {
	return "", Unsupported("json operations")
}

func (Ansi) CompileJSONContains(*Grammar, string, string) (string, error) {
	return "", Unsupported("json contains operations")
}

func (Ansi) CompileJSONOverlaps(*Grammar, string, string) (string, error) {
	return "", Unsupported("json overlaps operations")
}

func (Ansi) CompileJSONContainsKey(*Grammar, string) (string, error) {
	return "", Unsupported("json contains key operations")
}

func (Ansi) CompileJSONLength(*Grammar, string, string, string) (string, error) {
	return "", Unsupported("json length operations")
}

func (Ansi) CompileFullText(*Grammar, plan.FullTextCond) (string, error) {
	return "", Unsupported("fulltext search operations")
}

// CompileLike handles the case-insensitive form shared by every engine
// and rejects case-sensitive matching.
func (Ansi) CompileLike(g *Grammar, c plan.LikeCond) (string, error) {
	if c.CaseSensitive {
		return "", Unsupported("case sensitive matching")
	}
	column, err := g.Wrap(c.Column)
	if err != nil {
		return "", err
	}
	operator := "like"
	if c.Not {
		operator = "not like"
	}
	return column + " " + operator + " " + g.Parameter(c.Value), nil
}

func (Ansi) CompileBitwise(g *Grammar, column, operator string, value any) (string, error) {
	return g.whereBasic(column, operator, value)
}

func (Ansi) CompileJoinLateral(*Grammar, string, string) (string, error) {
	return "", Unsupported("lateral joins")
}

func (Ansi) CompileIndexHint(*Grammar, plan.IndexHint) (string, error) {
	return "", nil
}

func (Ansi) CompileUpsert(*Grammar, *plan.QueryPlan, []plan.Record, []string, []string, []plan.Assignment) (string, error) {
	return "", Unsupported("upserts")
}

func (Ansi) CompileInsertOrIgnore(*Grammar, *plan.QueryPlan, []plan.Record) (string, error) {
	return "", Unsupported("inserting while ignoring errors")
}

// CompileInsertGetID compiles a plain insert; the sequence name is only
// meaningful to engines with RETURNING support.
func (Ansi) CompileInsertGetID(g *Grammar, p *plan.QueryPlan, record plan.Record, sequence string) (string, error) {
	return g.InsertSQL(p, []plan.Record{record})
}

func (Ansi) CompileTruncate(g *Grammar, p *plan.QueryPlan) (map[string][]any, error) {
	table, err := g.WrapTable(p.From)
	if err != nil {
		return nil, err
	}
	return map[string][]any{"truncate table " + table: {}}, nil
}

func (Ansi) PermitsNonIntegerRawIn() bool { return false }

func (Ansi) CompileSavepoint(name string) string {
	return "SAVEPOINT " + name
}

func (Ansi) CompileSavepointRollBack(name string) string {
	return "ROLLBACK TO SAVEPOINT " + name
}

func (Ansi) SupportsSavepoints() bool { return true }

func (Ansi) CompileRandom(string) string { return "RANDOM()" }

func (Ansi) CompileThreadCount() string { return "" }

// EscapeLiteral renders a value as a portable SQL literal: strings quote
// with doubled single quotes, booleans become 0/1, byte slices become
// x'..' hex blobs. Strings containing NUL or invalid UTF-8 are rejected
// rather than truncated by the server.
func EscapeLiteral(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "null", nil
	case bool:
		if v {
			return "1", nil
		}
		return "0", nil
	case int:
		return strconv.Itoa(v), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case time.Time:
		return "'" + v.Format("2006-01-02 15:04:05") + "'", nil
	case []byte:
		return "x'" + hex.EncodeToString(v) + "'", nil
	case plan.Expr:
		return v.SQL, nil
	case string:
		if strings.ContainsRune(v, 0) {
			return "", fmt.Errorf("cannot escape string containing NUL bytes")
		}
		if !utf8.ValidString(v) {
			return "", fmt.Errorf("cannot escape string containing invalid UTF-8")
		}
		return "'" + strings.ReplaceAll(v, "'", "''") + "'", nil
	default:
		return "", fmt.Errorf("cannot escape value of type %T", value)
	}
}
