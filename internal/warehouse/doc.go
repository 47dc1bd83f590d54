// Package warehouse loads call and attribute tables into DuckDB and answers
// aggregate questions about them in SQL. The DuckDB driver needs cgo; without
// it the package is empty.
package warehouse
