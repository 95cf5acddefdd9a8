package pgrepos

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/comatt/core"
)

// patch accumulates SET clauses for a partial UPDATE. Columns are added only
// for fields actually present in the incoming payload.
type patch struct {
	cols []string
	args []interface{}
}

func (p *patch) set(col string, val interface{}) {
	p.args = append(p.args, val)
	p.cols = append(p.cols, fmt.Sprintf("%s = $%d", col, len(p.args)))
}

func (p *patch) empty() bool { return len(p.cols) == 0 }

// setClause returns the joined SET clause and the 1-based placeholder index
// available for the WHERE clause.
func (p *patch) setClause() (string, int) {
	return strings.Join(p.cols, ", "), len(p.args) + 1
}

// whereClause joins the accumulated conditions with AND.
func (p *patch) whereClause() string {
	return strings.Join(p.cols, " AND ")
}

func itoa(n int) string { return strconv.Itoa(n) }

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(core.DateFormat, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parsing date %q", s)
	}
	return core.Date(t), nil
}

// orderBy renders a validated ORDER BY clause; unknown fields are skipped so
// client-supplied ordering cannot inject SQL.
func orderBy(ordering []core.DBOrdering, allowed map[string]bool) string {
	clauses := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		if allowed[ord.Field] {
			clauses = append(clauses, ord.String())
		}
	}
	if len(clauses) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(clauses, ", ")
}
