package records

import (
	"math"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/billstark001/fiction-cms-sub001/pkg/cmserr"
)

// Filter expressions select records in ListRecords. Grammar:
//
//	expr   := term ( OR term )*
//	term   := factor ( AND factor )*
//	factor := column op value | '(' expr ')'
//	op     := = | != | > | >= | < | <= | LIKE
//	value  := 'string' | "string" | number | TRUE | FALSE | NULL
//
// Keywords are case-insensitive. Strings escape with backslash.
// `= NULL` and `!= NULL` compile to IS NULL / IS NOT NULL. The result
// is a parameterized WHERE fragment; values never splice into the SQL
// text.

var filterLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `'(?:\\.|[^'\\])*'|"(?:\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `[-+]?\d+(?:\.\d+)?`},
	{Name: "Operator", Pattern: `<=|>=|!=|=|<|>`},
	{Name: "Paren", Pattern: `[()]`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
})

type filterExpr struct {
	Or []*filterTerm `parser:"@@ ( 'OR' @@ )*"`
}

type filterTerm struct {
	And []*filterFactor `parser:"@@ ( 'AND' @@ )*"`
}

type filterFactor struct {
	Sub  *filterExpr      `parser:"'(' @@ ')'"`
	Cond *filterCondition `parser:"| @@"`
}

type filterCondition struct {
	Column string      `parser:"@Ident"`
	Op     string      `parser:"@(Operator | 'LIKE')"`
	Value  filterValue `parser:"@@"`
}

type filterValue struct {
	Str    *string  `parser:"@String"`
	Number *float64 `parser:"| @Number"`
	True   bool     `parser:"| @'TRUE'"`
	False  bool     `parser:"| @'FALSE'"`
	Null   bool     `parser:"| @'NULL'"`
}

var filterParser = participle.MustBuild[filterExpr](
	participle.Lexer(filterLexer),
	participle.CaseInsensitive("Ident"),
)

// compiledFilter is a parameterized WHERE fragment.
type compiledFilter struct {
	SQL  string
	Args []any
}

// compileFilter parses and compiles a filter expression. columnOK
// rejects columns outside the readable projection or absent from the
// table. An empty input compiles to nil.
func compileFilter(input string, columnOK func(string) error) (*compiledFilter, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	expr, err := filterParser.ParseString("", input)
	if err != nil {
		return nil, cmserr.Wrap(cmserr.CodeValidation, "parse_filter", input, err)
	}

	out := &compiledFilter{}
	if err := out.compileExpr(expr, columnOK); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *compiledFilter) compileExpr(e *filterExpr, columnOK func(string) error) error {
	for i, term := range e.Or {
		if i > 0 {
			c.SQL += " OR "
		}
		if err := c.compileTerm(term, columnOK); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiledFilter) compileTerm(t *filterTerm, columnOK func(string) error) error {
	for i, factor := range t.And {
		if i > 0 {
			c.SQL += " AND "
		}
		if err := c.compileFactor(factor, columnOK); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiledFilter) compileFactor(f *filterFactor, columnOK func(string) error) error {
	if f.Sub != nil {
		c.SQL += "("
		if err := c.compileExpr(f.Sub, columnOK); err != nil {
			return err
		}
		c.SQL += ")"
		return nil
	}
	return c.compileCondition(f.Cond, columnOK)
}

func (c *compiledFilter) compileCondition(cond *filterCondition, columnOK func(string) error) error {
	if err := columnOK(cond.Column); err != nil {
		return err
	}
	col := quoteIdent(cond.Column)
	op := strings.ToUpper(cond.Op)

	if cond.Value.Null {
		switch op {
		case "=":
			c.SQL += col + " IS NULL"
		case "!=":
			c.SQL += col + " IS NOT NULL"
		default:
			return cmserr.New(cmserr.CodeValidation, "compile_filter",
				cond.Column+" "+op+" NULL")
		}
		return nil
	}

	c.SQL += col + " " + op + " ?"
	c.Args = append(c.Args, cond.Value.arg())
	return nil
}

// arg converts the parsed literal into a bind parameter. Whole numbers
// bind as int64 so integer columns compare without float coercion.
func (v filterValue) arg() any {
	switch {
	case v.Str != nil:
		return unquoteString(*v.Str)
	case v.Number != nil:
		f := *v.Number
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f)
		}
		return f
	case v.True:
		return true
	case v.False:
		return false
	default:
		return nil
	}
}

func unquoteString(s string) string {
	if len(s) < 2 {
		return s
	}
	body := s[1 : len(s)-1]
	if !strings.ContainsRune(body, '\\') {
		return body
	}
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			i++
		}
		b.WriteByte(body[i])
	}
	return b.String()
}

// quoteIdent wraps a name in sqlite identifier quotes. Filter columns
// are lexed as identifiers; table and order-by names are validated
// against the schema before reaching here.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
