package repositories

import (
	"context"
	"iter"
)

// QueryCondition is a struct representing a query condition.
type QueryCondition struct {
	Field    string      // Field specifies the database or struct field to which the condition applies.
	Operator string      // Operator defines the comparison operator (e.g., "=", ">", "<").
	Value    interface{} // Value is the expected value for the given field.
}

// Entity is implemented by every model handled by a Repository.
// GetID must return the zero value of ID until the store has assigned an identifier.
type Entity[ID comparable] interface {
	GetID() ID
}

// IntegerID lists the identifier types that a store without native sequences can allocate.
type IntegerID interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Query is a struct that wraps both the instance of type T and additional query parameters.
// It is used to construct queries with conditions, sorting, limiting, and offsetting.
type Query[T any] struct {
	Instance   T                // Instance is an optional object of type T used to build conditions from its fields.
	Conditions []QueryCondition // Conditions represent the conditions applied to the query.
	Sort       Sort             // Sort specifies the fields by which the query results should be sorted.
	Limit      int              // Limit specifies the maximum number of results to return.
	Offset     int              // Offset specifies the number of results to skip before starting to return data.
}

// Repository is the generic accessor every entity repository is built from.
// Implementations are stateless with respect to the data: each call is a round trip to
// the backing store, and concurrency is left to the store's own transaction discipline.
type Repository[T Entity[ID], ID comparable] interface {
	// Save inserts data when its identifier is unset, otherwise updates the matching record.
	// The persisted representation is returned, with the identifier populated on insert.
	Save(ctx context.Context, data T) (T, error)
	// SaveAll saves every element of data, atomically where the store supports it.
	SaveAll(ctx context.Context, data []T) ([]T, error)
	// Get retrieves a record by its identifier, failing with NotFoundError if absent.
	Get(ctx context.Context, id ID) (T, error)
	// FindByID retrieves a record by its identifier; found is false if it is absent.
	FindByID(ctx context.Context, id ID) (result T, found bool, err error)
	// ExistsByID reports whether a record with the identifier exists.
	ExistsByID(ctx context.Context, id ID) (bool, error)
	// FindAll returns a lazy sequence over every record. Each iteration re-runs the query.
	FindAll(ctx context.Context, sort Sort) iter.Seq2[T, error]
	// FindAllByID retrieves the records matching ids, skipping the ones that do not exist.
	FindAllByID(ctx context.Context, ids []ID) ([]T, error)
	// FindPage retrieves a single bounded page of records.
	FindPage(ctx context.Context, pageable Pageable) (Page[T], error)
	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)
	// DeleteByID removes a record by its identifier.
	DeleteByID(ctx context.Context, id ID) error
	// Delete removes the record matching the identifier of data.
	Delete(ctx context.Context, data T) error
	// DeleteAllByID removes the records matching ids.
	DeleteAllByID(ctx context.Context, ids []ID) error
	// DeleteAll removes every record.
	DeleteAll(ctx context.Context) error
	// Find retrieves a single record based on a query.
	Find(ctx context.Context, query Query[T]) (T, error)
	// FindBy retrieves multiple records based on a query.
	FindBy(ctx context.Context, query Query[T]) ([]T, error)
	// GetQuery returns an empty query instance for the repository's type.
	GetQuery() Query[T]
}

// Options holds the behaviour switches shared by repository implementations.
type Options struct {
	// StrictDelete makes deletes and updates against a missing identifier fail with
	// NotFoundError instead of being ignored (delete) or turned into an insert (save).
	StrictDelete bool
}

// Option configures a repository.
type Option func(*Options)

// WithStrictDelete enables NotFoundError on deletes and updates of missing records.
func WithStrictDelete() Option {
	return func(o *Options) {
		o.StrictDelete = true
	}
}

// BuildOptions applies opts over the defaults.
func BuildOptions(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// IsNew reports whether data has not been assigned an identifier yet.
func IsNew[T Entity[ID], ID comparable](data T) bool {
	var zero ID
	return data.GetID() == zero
}

// EQ creates a QueryCondition for equality comparison.
// It takes a field name and a value and returns a QueryCondition with the equality operator.
func EQ(field string, value interface{}) QueryCondition {
	return QueryCondition{Field: field, Operator: "=", Value: value}
}

// NEQ creates a QueryCondition for inequality comparison.
func NEQ(field string, value interface{}) QueryCondition {
	return QueryCondition{Field: field, Operator: "!=", Value: value}
}

// GT creates a QueryCondition for greater-than comparison.
// It takes a field name and a value and returns a QueryCondition with the greater-than operator.
func GT(field string, value interface{}) QueryCondition {
	return QueryCondition{Field: field, Operator: ">", Value: value}
}

// GTE creates a QueryCondition for greater-than or equal comparison.
// It takes a field name and a value and returns a QueryCondition with the greater-than or equal operator.
func GTE(field string, value interface{}) QueryCondition {
	return QueryCondition{Field: field, Operator: ">=", Value: value}
}

// LT creates a QueryCondition for less-than comparison.
// It takes a field name and a value and returns a QueryCondition with the less-than operator.
func LT(field string, value interface{}) QueryCondition {
	return QueryCondition{Field: field, Operator: "<", Value: value}
}

// LTE creates a QueryCondition for less-than or equal comparison.
// It takes a field name and a value and returns a QueryCondition with the less-than or equal operator.
func LTE(field string, value interface{}) QueryCondition {
	return QueryCondition{Field: field, Operator: "<=", Value: value}
}

// IN creates a QueryCondition for an "IN" comparison.
// It takes a field name and a slice of values and returns a QueryCondition with the "IN" operator.
func IN(field string, values []interface{}) QueryCondition {
	return QueryCondition{Field: field, Operator: "IN", Value: values}
}

// LIKE creates a QueryCondition for a "LIKE" comparison.
// It takes a field name and a pattern and returns a QueryCondition with the "LIKE" operator.
func LIKE(field, pattern string) QueryCondition {
	return QueryCondition{Field: field, Operator: "LIKE", Value: pattern}
}
