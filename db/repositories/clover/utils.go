package repositories_clover

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	clover "github.com/ostafen/clover/v2"
	clover_d "github.com/ostafen/clover/v2/document"
	clover_q "github.com/ostafen/clover/v2/query"

	"gitlab.com/testpaper/papergen/db/repositories"
)

const (
	// objectIDKey is the key clover stores its own document identifier under.
	objectIDKey = "_id"

	// sequenceCollection holds one counter document per entity collection.
	sequenceCollection = "sequences"
	sequenceNameKey    = "name"
	sequenceValueKey   = "value"
)

// CreateCollections creates the named collections, skipping the ones that already exist.
// The identifier sequence collection is always created.
func CreateCollections(db *clover.DB, names ...string) error {
	for _, name := range append([]string{sequenceCollection}, names...) {
		exists, err := db.HasCollection(name)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := db.CreateCollection(name); err != nil {
			return err
		}
	}
	return nil
}

// handleDBError is a utility function that translates Clover errors into repository errors.
func handleDBError(op string, err error) error {
	if err == nil {
		return nil
	}

	var storageErr *repositories.StorageError
	if errors.As(err, &storageErr) {
		return err
	}

	switch {
	case errors.Is(err, clover.ErrDocumentNotExist):
		return repositories.NewStorageError(op, repositories.NotFoundError, err)
	case errors.Is(err, clover.ErrDuplicateKey):
		return repositories.NewStorageError(op, repositories.ConstraintError, err)
	case errors.Is(err, repositories.InvalidDataError):
		return repositories.NewStorageError(op, repositories.InvalidDataError, err)
	default:
		return repositories.NewStorageError(op, repositories.DatabaseError, err)
	}
}

func toCloverDoc[T any](data T) (*clover_d.Document, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	mappedData := make(map[string]interface{})
	if err := json.Unmarshal(jsonBytes, &mappedData); err != nil {
		return nil, err
	}

	return clover_d.NewDocumentOf(mappedData), nil
}

// toModel decodes doc through its json form so struct tags drive the mapping
// the same way they did when the document was written.
func toModel[T any](doc *clover_d.Document) (T, error) {
	var model T
	jsonBytes, err := json.Marshal(doc.AsMap())
	if err != nil {
		return model, err
	}
	err = json.Unmarshal(jsonBytes, &model)
	return model, err
}

func toModels[T any](docs []*clover_d.Document) ([]T, error) {
	models := make([]T, 0, len(docs))
	for _, doc := range docs {
		model, err := toModel[T](doc)
		if err != nil {
			return nil, err
		}
		models = append(models, model)
	}
	return models, nil
}

func toInt64(value interface{}) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("unexpected identifier type %T", value)
	}
}

// documentKey maps a struct field name, or its json name, onto the document key.
func documentKey[T any](field string) (string, error) {
	name, ok := repositories.ResolveField[T](field)
	if !ok {
		return "", fmt.Errorf("%w: unknown field %q", repositories.InvalidDataError, field)
	}
	return repositories.FieldJSONTag[T](name), nil
}

func applySort[T any](q *clover_q.Query, sort repositories.Sort) (*clover_q.Query, error) {
	if len(sort) == 0 {
		return q, nil
	}

	options := make([]clover_q.SortOption, 0, len(sort))
	for _, order := range sort {
		key, err := documentKey[T](order.Field)
		if err != nil {
			return nil, err
		}
		direction := 1
		if order.Desc {
			direction = -1
		}
		options = append(options, clover_q.SortOption{Field: key, Direction: direction})
	}
	return q.Sort(options...), nil
}

// likePattern turns a SQL LIKE pattern into the anchored regular expression clover matches with.
func likePattern(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return b.String()
}

func spread(value interface{}) []interface{} {
	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Slice && val.Kind() != reflect.Array {
		return []interface{}{value}
	}
	values := make([]interface{}, 0, val.Len())
	for i := 0; i < val.Len(); i++ {
		values = append(values, val.Index(i).Interface())
	}
	return values
}

func criteria(key string, condition repositories.QueryCondition) (clover_q.Criteria, error) {
	field := clover_q.Field(key)
	switch condition.Operator {
	case "=":
		return field.Eq(condition.Value), nil
	case "!=":
		return field.Neq(condition.Value), nil
	case ">":
		return field.Gt(condition.Value), nil
	case ">=":
		return field.GtEq(condition.Value), nil
	case "<":
		return field.Lt(condition.Value), nil
	case "<=":
		return field.LtEq(condition.Value), nil
	case "IN":
		return field.In(spread(condition.Value)...), nil
	case "LIKE":
		pattern, ok := condition.Value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: LIKE needs a string pattern", repositories.InvalidDataError)
		}
		return field.Like(likePattern(pattern)), nil
	default:
		return nil, fmt.Errorf("%w: unsupported operator %q", repositories.InvalidDataError, condition.Operator)
	}
}

// applyConditions applies conditions, sorting, limiting, and offsetting to a Clover query.
// Conditions are combined with AND. Non-zero fields of query.Instance add equality conditions.
func applyConditions[T any](q *clover_q.Query, query repositories.Query[T]) (*clover_q.Query, error) {
	var where clover_q.Criteria
	and := func(c clover_q.Criteria) {
		if where == nil {
			where = c
			return
		}
		where = where.And(c)
	}

	for _, condition := range query.Conditions {
		key, err := documentKey[T](condition.Field)
		if err != nil {
			return nil, err
		}
		c, err := criteria(key, condition)
		if err != nil {
			return nil, err
		}
		and(c)
	}

	if !repositories.IsEmptyValue(query.Instance) {
		// compare against the json form so values match what toCloverDoc stored
		example, err := toCloverDoc(query.Instance)
		if err != nil {
			return nil, err
		}
		exampleType := reflect.TypeOf(query.Instance)
		exampleValue := reflect.ValueOf(query.Instance)
		for i := 0; i < exampleType.NumField(); i++ {
			if !exampleType.Field(i).IsExported() {
				continue
			}
			if repositories.IsEmptyValue(exampleValue.Field(i).Interface()) {
				continue
			}
			key := repositories.JSONName(exampleType.Field(i))
			and(clover_q.Field(key).Eq(example.Get(key)))
		}
	}

	if where != nil {
		q = q.Where(where)
	}

	q, err := applySort[T](q, query.Sort)
	if err != nil {
		return nil, err
	}

	if query.Limit > 0 {
		q = q.Limit(query.Limit)
	}
	if query.Offset > 0 {
		q = q.Skip(query.Offset)
	}

	return q, nil
}
