package filter

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testColumnTypes = map[string]ColumnType{
	"city":       ColumnTypeString,
	"budget_max": ColumnTypeNumerical,
	"tags":       ColumnTypeArray,
	"updated_at": ColumnTypeTimestamp,
}

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()

	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 mockDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		DryRun: true,
	})
	require.NoError(t, err)
	return gormDB
}

func buildSQL(t *testing.T, apply func(*gorm.DB) *gorm.DB) (string, []interface{}) {
	t.Helper()
	tx := apply(dryRunDB(t).Table("buyers"))
	stmt := tx.Find(&[]map[string]interface{}{}).Statement
	return stmt.SQL.String(), stmt.Vars
}

func TestFilterToSQL(t *testing.T) {
	tests := []struct {
		name         string
		filter       Filter
		expectedSQL  string
		expectedVars []interface{}
	}{
		{
			name: "contains on string column",
			filter: Filter{Items: []FilterItem{
				{Field: "city", Operator: OperatorContains, Value: "Moh"},
			}},
			expectedSQL:  `"city" ILIKE`,
			expectedVars: []interface{}{"%Moh%"},
		},
		{
			name: "equals",
			filter: Filter{Items: []FilterItem{
				{Field: "city", Operator: OperatorEquals, Value: "Mohali"},
			}},
			expectedSQL:  `"city" =`,
			expectedVars: []interface{}{"Mohali"},
		},
		{
			name: "negated equals",
			filter: Filter{Items: []FilterItem{
				{Field: "city", Not: true, Operator: OperatorEquals, Value: "Mohali"},
			}},
			expectedSQL:  `NOT "city" =`,
			expectedVars: []interface{}{"Mohali"},
		},
		{
			name: "numeric comparison",
			filter: Filter{Items: []FilterItem{
				{Field: "budget_max", Operator: OperatorArithmeticGreaterThan, Value: "5000000"},
			}},
			expectedSQL:  `"budget_max" >`,
			expectedVars: []interface{}{"5000000"},
		},
		{
			name: "array membership",
			filter: Filter{Items: []FilterItem{
				{Field: "tags", Operator: OperatorContains, Value: "hot"},
			}},
			expectedSQL:  `= ANY(tags)`,
			expectedVars: []interface{}{"hot"},
		},
		{
			name: "is empty",
			filter: Filter{Items: []FilterItem{
				{Field: "city", Operator: OperatorIsEmpty},
			}},
			expectedSQL: `"city" IS NULL`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sql, vars := buildSQL(t, func(db *gorm.DB) *gorm.DB {
				return tc.filter.ToSQL(db, testColumnTypes)
			})
			assert.Contains(t, sql, tc.expectedSQL)
			if tc.expectedVars != nil {
				assert.Equal(t, tc.expectedVars, vars)
			}
		})
	}
}

func TestFilterToSQLSkipsUnknownFields(t *testing.T) {
	f := Filter{Items: []FilterItem{
		{Field: "evil; DROP TABLE buyers", Operator: OperatorEquals, Value: "x"},
	}}
	sql, vars := buildSQL(t, func(db *gorm.DB) *gorm.DB {
		return f.ToSQL(db, testColumnTypes)
	})
	assert.NotContains(t, sql, "DROP TABLE")
	assert.Empty(t, vars)
}

func TestFilterOrLinkOperator(t *testing.T) {
	f := Filter{
		LinkOperator: LinkOperatorOr,
		Items: []FilterItem{
			{Field: "city", Operator: OperatorEquals, Value: "Mohali"},
			{Field: "city", Operator: OperatorEquals, Value: "Zirakpur"},
		},
	}
	sql, vars := buildSQL(t, func(db *gorm.DB) *gorm.DB {
		return f.ToSQL(db, testColumnTypes)
	})
	assert.Contains(t, sql, "OR")
	assert.Len(t, vars, 2)
}

func TestApplyToQueryOrdering(t *testing.T) {
	opts := &Options{
		SortField: "updated_at",
		Sort:      SortDescending,
		Limit:     10,
		Offset:    20,
	}
	sql, _ := buildSQL(t, func(db *gorm.DB) *gorm.DB {
		return opts.ApplyToQuery(db, testColumnTypes)
	})
	assert.Contains(t, sql, `ORDER BY "updated_at" DESC`)
	assert.Contains(t, sql, "LIMIT")
	assert.Contains(t, sql, "OFFSET")
}

func TestOptionsFromRequest(t *testing.T) {
	req := &http.Request{URL: &url.URL{RawQuery: url.Values{
		"filter":    []string{`{"items":[{"columnField":"city","operatorValue":"equals","value":"Mohali"}],"linkOperator":"and"}`},
		"limit":     []string{"25"},
		"sortField": []string{"created_at"},
		"sort":      []string{"asc"},
	}.Encode()}}

	opts, err := OptionsFromRequest(req, "updated_at", SortDescending)
	require.NoError(t, err)
	assert.Equal(t, 25, opts.Limit)
	assert.Equal(t, "created_at", opts.SortField)
	assert.Equal(t, SortAscending, opts.Sort)
	require.Len(t, opts.Filter.Items, 1)
	assert.Equal(t, "city", opts.Filter.Items[0].Field)
}

func TestOptionsFromRequestDefaults(t *testing.T) {
	req := &http.Request{URL: &url.URL{}}
	opts, err := OptionsFromRequest(req, "updated_at", SortDescending)
	require.NoError(t, err)
	assert.Equal(t, "updated_at", opts.SortField)
	assert.Equal(t, SortDescending, opts.Sort)
	assert.Empty(t, opts.Filter.Items)
}
