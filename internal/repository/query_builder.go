package repository

import "github.com/doug-martin/goqu/v9"

// QueryBuilder collects list filters and renders them against the column
// aliases of a concrete query.
type QueryBuilder interface {
	AddCondition(key string, value interface{})
	Conditions() map[string]interface{}
	BuildConditions(aliases map[string]string) goqu.Ex
}
