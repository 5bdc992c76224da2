package repository

import (
	"regexp"
	"strings"
	"testing"
)

// Columns the role handler lets callers change on update. Keep in sync with
// the update request shape in internal/role/handler.
var mutableRoleColumns = []string{"name", "display_name", "description", "hierarchy"}

func setClauseColumns(t *testing.T, sql string) map[string]bool {
	t.Helper()
	upper := strings.ToUpper(sql)
	start := strings.Index(upper, " SET ")
	end := strings.Index(upper, " WHERE ")
	if start < 0 || end < 0 || end < start {
		t.Fatalf("statement has no SET ... WHERE clause: %s", sql)
	}
	re := regexp.MustCompile(`(\w+)\s*=`)
	out := make(map[string]bool)
	for _, m := range re.FindAllStringSubmatch(sql[start+len(" SET "):end], -1) {
		out[m[1]] = true
	}
	return out
}

func TestUpdateRoleSQL_WritesEveryMutableColumn(t *testing.T) {
	assigned := setClauseColumns(t, updateRoleSQL)
	for _, col := range mutableRoleColumns {
		if !assigned[col] {
			t.Errorf("updateRoleSQL does not write %q; the handler accepts it and would echo an unpersisted value", col)
		}
	}
}

func TestUpdateRoleSQL_DoesNotTouchImmutableColumns(t *testing.T) {
	assigned := setClauseColumns(t, updateRoleSQL)
	for _, col := range []string{"id", "is_system_role", "created_at"} {
		if assigned[col] {
			t.Errorf("updateRoleSQL must not write %q", col)
		}
	}
}

func TestInsertRoleSQL_CoversAllColumns(t *testing.T) {
	// Eight columns, eight placeholders, in roleColumns order.
	re := regexp.MustCompile(`\$\d+`)
	if got := len(re.FindAllString(insertRoleSQL, -1)); got != 8 {
		t.Errorf("insertRoleSQL has %d placeholders, want 8", got)
	}
}
