// Package filter translates DataGrid-style filter descriptions from request
// query parameters into gorm clauses, plus sorting and pagination.
package filter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ColumnType tells the SQL generator how a field compares: substring match for
// strings, arithmetic for numbers, membership for Postgres arrays.
type ColumnType int

const (
	ColumnTypeString ColumnType = iota
	ColumnTypeNumerical
	ColumnTypeArray
	ColumnTypeTimestamp
)

type Sort string

const (
	SortAscending  Sort = "asc"
	SortDescending Sort = "desc"
)

// LinkOperator determines how to chain multiple filters together, 'AND' and
// 'OR' are supported.
type LinkOperator string

const (
	LinkOperatorAnd LinkOperator = "and"
	LinkOperatorOr  LinkOperator = "or"
)

// Operator defines an operator used for filter items such as equals, contains,
// etc, as well as the arithmetic operators like ==, !=, >, etc.
type Operator string

const (
	OperatorContains   Operator = "contains"
	OperatorEquals     Operator = "equals"
	OperatorStartsWith Operator = "starts with"
	OperatorEndsWith   Operator = "ends with"
	OperatorIsEmpty    Operator = "is empty"
	OperatorIsNotEmpty Operator = "is not empty"

	OperatorArithmeticEquals              Operator = "="
	OperatorArithmeticNotEquals           Operator = "!="
	OperatorArithmeticGreaterThan         Operator = ">"
	OperatorArithmeticGreaterThanOrEquals Operator = ">="
	OperatorArithmeticLessThan            Operator = "<"
	OperatorArithmeticLessThanOrEquals    Operator = "<="
)

// Filter is a collection of FilterItem, with a link operator. It is used to
// chain filters together, for example: where city equals Mohali and
// budget_max > 5000000.
type Filter struct {
	Items        []FilterItem `json:"items"`
	LinkOperator LinkOperator `json:"linkOperator"`
}

// FilterItem is an individual filter consisting of a field, operator, value
// and a not boolean that negates the operator.
type FilterItem struct {
	Field    string   `json:"columnField"`
	Not      bool     `json:"not"`
	Operator Operator `json:"operatorValue"`
	Value    string   `json:"value"`
}

// condition renders this item to a SQL fragment and its argument. The second
// return is false when the operator takes no argument (IS NULL style checks).
func (f FilterItem) condition(fieldType ColumnType) (sql string, arg interface{}, hasArg bool) {
	not := ""
	if f.Not {
		not = "NOT "
	}

	switch f.Operator {
	case OperatorContains:
		// "contains" is overloaded: for array columns it is element
		// membership, for everything else a substring match.
		if fieldType == ColumnTypeArray {
			if f.Not {
				return fmt.Sprintf("? != ALL(%s)", f.Field), f.Value, true
			}
			return fmt.Sprintf("? = ANY(%s)", f.Field), f.Value, true
		}
		return fmt.Sprintf("%s%q ILIKE ?", not, f.Field), "%" + f.Value + "%", true
	case OperatorStartsWith:
		return fmt.Sprintf("%s%q LIKE ?", not, f.Field), f.Value + "%", true
	case OperatorEndsWith:
		return fmt.Sprintf("%s%q LIKE ?", not, f.Field), "%" + f.Value, true
	case OperatorIsEmpty:
		if f.Not {
			return fmt.Sprintf("%q IS NOT NULL", f.Field), nil, false
		}
		return fmt.Sprintf("%q IS NULL", f.Field), nil, false
	case OperatorIsNotEmpty:
		if f.Not {
			return fmt.Sprintf("%q IS NULL", f.Field), nil, false
		}
		return fmt.Sprintf("%q IS NOT NULL", f.Field), nil, false
	}

	// Remaining operators are plain binary comparisons.
	op := ""
	switch f.Operator {
	case OperatorEquals, OperatorArithmeticEquals:
		op = "="
	case OperatorArithmeticNotEquals:
		op = "<>"
	case OperatorArithmeticGreaterThan:
		op = ">"
	case OperatorArithmeticGreaterThanOrEquals:
		op = ">="
	case OperatorArithmeticLessThan:
		op = "<"
	case OperatorArithmeticLessThanOrEquals:
		op = "<="
	default:
		return "", nil, false
	}
	return fmt.Sprintf("%s%q %s ?", not, f.Field, op), f.Value, true
}

// ToSQL chains every filter item onto the query, AND-ed or OR-ed per the link
// operator. Field types come from the caller's column map; unknown fields are
// skipped rather than interpolated.
func (filters Filter) ToSQL(db *gorm.DB, fieldTypes map[string]ColumnType) *gorm.DB {
	for _, f := range filters.Items {
		fieldType, ok := fieldTypes[f.Field]
		if !ok {
			continue
		}
		sql, arg, hasArg := f.condition(fieldType)
		if sql == "" {
			continue
		}
		if filters.LinkOperator == LinkOperatorOr {
			if hasArg {
				db = db.Or(sql, arg)
			} else {
				db = db.Or(sql)
			}
		} else {
			if hasArg {
				db = db.Where(sql, arg)
			} else {
				db = db.Where(sql)
			}
		}
	}
	return db
}

type Options struct {
	Filter    Filter
	SortField string
	Sort      Sort
	Limit     int
	Offset    int
}

// OptionsFromRequest extracts the filter, sort and limit query parameters. The
// filter parameter is the JSON form a DataGrid emits.
func OptionsFromRequest(req *http.Request, defaultSortField string, defaultSort Sort) (*Options, error) {
	opts := &Options{}
	if queryFilter := req.URL.Query().Get("filter"); queryFilter != "" {
		if err := json.Unmarshal([]byte(queryFilter), &opts.Filter); err != nil {
			return nil, fmt.Errorf("could not unmarshal filter: %w", err)
		}
	}

	if limitParam := req.URL.Query().Get("limit"); limitParam != "" {
		limit, err := strconv.Atoi(limitParam)
		if err != nil {
			return nil, fmt.Errorf("error parsing limit param: %s", err)
		}
		opts.Limit = limit
	}

	opts.SortField = req.URL.Query().Get("sortField")
	opts.Sort = Sort(req.URL.Query().Get("sort"))
	if opts.SortField == "" {
		opts.SortField = defaultSortField
	}
	if opts.Sort == "" {
		opts.Sort = defaultSort
	}
	return opts, nil
}

// ApplyToQuery renders filter, order, limit and offset onto the query.
func (opts *Options) ApplyToQuery(db *gorm.DB, fieldTypes map[string]ColumnType) *gorm.DB {
	q := opts.Filter.ToSQL(db, fieldTypes)
	q = q.Order(clause.OrderByColumn{
		Column: clause.Column{Name: opts.SortField},
		Desc:   opts.Sort == SortDescending,
	})
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	return q
}
