// Package render turns compiled queries into SQL statements for a
// dialect.
package render

import (
	"fmt"
	"log/slog"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/veloxext"
	"github.com/syssam/veloxext/condition"
	"github.com/syssam/veloxext/dialect"
	"github.com/syssam/veloxext/jpql"
	"github.com/syssam/veloxext/metadata"
)

// FilterSource provides the load filter of an entity, as raw SQL over
// unqualified column names. *mapping.Compiled implements it.
type FilterSource interface {
	Filter(entity string) string
}

// Statement is a rendered SQL statement with its positional arguments.
type Statement struct {
	SQL  string
	Args []any
}

// Renderer renders queries of one dialect.
type Renderer struct {
	Dialect string
	Graph   *metadata.Graph
	// Filters is optional.
	Filters FilterSource
	// Now is the clock for interval macros. Defaults to time.Now.
	Now func() time.Time
	// Log receives the rendered statements at debug level. Optional.
	Log *slog.Logger
}

var (
	betweenRe = regexp.MustCompile(`@between\(\s*([A-Za-z_][\w.]*)\s*,\s*now([+-]\d+)?\s*,\s*now([+-]\d+)?\s*,\s*([A-Za-z]+)\s*\)`)
	todayRe   = regexp.MustCompile(`@today\(\s*([A-Za-z_][\w.]*)\s*\)`)
	lower     = cases.Lower(language.Und)
)

// Render renders the query. Joins and property paths longer than one
// segment are not supported.
func (r *Renderer) Render(q *jpql.Query) (*Statement, error) {
	if q.Join != "" {
		return nil, fmt.Errorf("%w: rendering joins", veloxext.ErrUnsupported)
	}
	e, err := r.Graph.Lookup(q.Entity)
	if err != nil {
		return nil, err
	}
	params := make(map[string]any, len(q.Parameters))
	for k, v := range q.Parameters {
		params[k] = v
	}
	where, err := r.expandMacros(q.Where, params)
	if err != nil {
		return nil, err
	}
	where = foldCase(where, q.Alias, params)
	if where, err = r.columns(where, q.Alias, e); err != nil {
		return nil, err
	}
	var filter string
	if r.Filters != nil {
		filter = Qualify(r.Filters.Filter(q.Entity), q.Alias)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s.* FROM %s %s", q.Alias, e.PhysicalTable(), q.Alias)
	switch {
	case where != "" && filter != "":
		fmt.Fprintf(&sb, " WHERE (%s) AND (%s)", where, filter)
	case where != "":
		fmt.Fprintf(&sb, " WHERE (%s)", where)
	case filter != "":
		fmt.Fprintf(&sb, " WHERE (%s)", filter)
	}
	stmt, err := r.bind(sb.String(), params)
	if err != nil {
		return nil, err
	}
	if r.Log != nil {
		r.Log.Debug("render: statement", "entity", q.Entity, "dialect", r.Dialect, "sql", stmt.SQL, "args", stmt.Args)
	}
	return stmt, nil
}

// expandMacros replaces interval macros by half-open time ranges bound
// to generated parameters.
func (r *Renderer) expandMacros(where string, params map[string]any) (string, error) {
	clock := time.Now
	if r.Now != nil {
		clock = r.Now
	}
	now := clock()
	var (
		n    int
		rerr error
	)
	rangeOf := func(prop string, from, to int, unit condition.Unit) string {
		lo, hi := shift(now, from, unit), shift(now, to, unit)
		loName, hiName := fmt.Sprintf("veloxext_t%d", n), fmt.Sprintf("veloxext_t%d", n+1)
		n += 2
		params[loName], params[hiName] = lo, hi
		return fmt.Sprintf("%s >= :%s AND %s < :%s", prop, loName, prop, hiName)
	}
	where = betweenRe.ReplaceAllStringFunc(where, func(m string) string {
		sub := betweenRe.FindStringSubmatch(m)
		unit, err := condition.ParseUnit(sub[4])
		if err != nil {
			rerr = err
			return m
		}
		return rangeOf(sub[1], offset(sub[2]), offset(sub[3]), unit)
	})
	where = todayRe.ReplaceAllStringFunc(where, func(m string) string {
		return rangeOf(todayRe.FindStringSubmatch(m)[1], 0, 1, condition.Day)
	})
	return where, rerr
}

func offset(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}

// shift truncates t to the unit and moves it by n units.
func shift(t time.Time, n int, unit condition.Unit) time.Time {
	y, mo, d := t.Date()
	loc := t.Location()
	switch unit {
	case condition.Year:
		return time.Date(y+n, 1, 1, 0, 0, 0, 0, loc)
	case condition.Month:
		return time.Date(y, mo+time.Month(n), 1, 0, 0, 0, 0, loc)
	case condition.Day:
		return time.Date(y, mo, d+n, 0, 0, 0, 0, loc)
	case condition.Hour:
		return time.Date(y, mo, d, t.Hour()+n, 0, 0, 0, loc)
	default:
		return time.Date(y, mo, d, t.Hour(), t.Minute()+n, 0, 0, loc)
	}
}

// foldCase wraps the column compared to a case-insensitive parameter in
// lower() and folds the parameter value.
func foldCase(where, alias string, params map[string]any) string {
	for name, v := range params {
		s, ok := v.(string)
		if !ok || !strings.HasPrefix(s, veloxext.CaseInsensitiveMarker) {
			continue
		}
		params[name] = lower.String(strings.TrimPrefix(s, veloxext.CaseInsensitiveMarker))
		re := regexp.MustCompile(`(` + regexp.QuoteMeta(alias) + `\.[A-Za-z_][\w.]*)(\s+(?:not\s+)?like\s+:` + regexp.QuoteMeta(name) + `\b)`)
		where = re.ReplaceAllString(where, "lower($1)$2")
	}
	return where
}

// columns replaces property references by their physical columns.
func (r *Renderer) columns(where, alias string, e *metadata.Entity) (string, error) {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(alias) + `\.([A-Za-z_][\w.]*)`)
	var rerr error
	where = re.ReplaceAllStringFunc(where, func(m string) string {
		path := re.FindStringSubmatch(m)[1]
		if strings.Contains(path, ".") {
			rerr = fmt.Errorf("%w: property path %s", veloxext.ErrUnsupported, path)
			return m
		}
		p := e.Property(path)
		switch {
		case p == nil:
			rerr = fmt.Errorf("render: unknown property %s of %s", path, e.Name)
			return m
		case p.Kind() == metadata.ToMany:
			rerr = fmt.Errorf("%w: collection property %s", veloxext.ErrUnsupported, path)
			return m
		}
		return alias + "." + p.PhysicalColumn()
	})
	return where, rerr
}

// bind replaces named parameters by dialect placeholders. Quoted
// literals and identifiers are copied unchanged.
func (r *Renderer) bind(query string, params map[string]any) (*Statement, error) {
	stmt := &Statement{}
	var sb strings.Builder
	for i := 0; i < len(query); {
		c := query[i]
		switch {
		case c == '\'' || c == '"':
			end := quotedEnd(query, i)
			sb.WriteString(query[i:end])
			i = end
		case c == ':' && i+1 < len(query) && isIdentStart(query[i+1]) && (i == 0 || query[i-1] != ':'):
			j := i + 2
			for j < len(query) && isIdentPart(query[j]) {
				j++
			}
			name := query[i+1 : j]
			v, ok := params[name]
			if !ok {
				return nil, fmt.Errorf("render: missing parameter %s", name)
			}
			sb.WriteString(r.bindValue(stmt, v))
			i = j
		default:
			sb.WriteByte(c)
			i++
		}
	}
	stmt.SQL = sb.String()
	return stmt, nil
}

// bindValue appends v to the arguments and returns its placeholder.
// Slices expand to a parenthesized placeholder list.
func (r *Renderer) bindValue(stmt *Statement, v any) string {
	if rv := reflect.ValueOf(v); v != nil && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8 {
		if rv.Len() == 0 {
			return "(NULL)"
		}
		ph := make([]string, rv.Len())
		for i := range ph {
			ph[i] = r.placeholder(stmt, value(rv.Index(i).Interface()))
		}
		return "(" + strings.Join(ph, ", ") + ")"
	}
	return r.placeholder(stmt, value(v))
}

func (r *Renderer) placeholder(stmt *Statement, v any) string {
	stmt.Args = append(stmt.Args, v)
	if r.Dialect == dialect.Postgres {
		return "$" + strconv.Itoa(len(stmt.Args))
	}
	return "?"
}

func value(v any) any {
	if metadata.IsRecord(v) {
		return metadata.RecordID(v)
	}
	return v
}
