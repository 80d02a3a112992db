// Package postgres implements the account store over PostgreSQL. It maps
// driver errors onto the store error taxonomy and manages the schema
// through embedded goose migrations.
package postgres
