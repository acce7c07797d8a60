package database

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect captures the few SQL differences between the supported drivers.
type Dialect struct {
	Driver string
}

var (
	MySQL    = Dialect{Driver: "mysql"}
	Postgres = Dialect{Driver: "postgres"}
)

func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "", "mysql":
		return MySQL, nil
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Quote quotes a table or column name. The schema uses camelCase names,
// which postgres would otherwise fold to lower case.
func (d Dialect) Quote(ident string) string {
	if d.Driver == "postgres" {
		return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
	}
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

// Rebind rewrites ? placeholders into $1..$n for postgres.
// Placeholders inside quoted strings and identifiers are left alone.
func (d Dialect) Rebind(query string) string {
	if d.Driver != "postgres" {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	var quote byte
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '?':
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// LikeEscape is the escape character used by Like. A backslash would need
// different quoting in each dialect.
const LikeEscape = "!"

var likeReplacer = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// Like returns the LIKE operand matching every value starting with prefix,
// with the wildcard characters in prefix escaped. Use with ESCAPE '!'.
func (d Dialect) Like(prefix string) string {
	return likeReplacer.Replace(prefix) + "%"
}
