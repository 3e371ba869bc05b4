package repositories_gorm

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"reflect"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"gitlab.com/testpaper/papergen/db/repositories"
)

const createdAtField = "CreatedAt"

// GenericRepositoryGORM is a generic repository implementation using GORM as an ORM.
// It is intended to be embedded in model repositories to provide basic database operations.
type GenericRepositoryGORM[T repositories.Entity[ID], ID comparable] struct {
	db      *gorm.DB
	schema  *schema.Schema // nil when T could not be parsed, columns then follow the naming strategy
	pk      string
	options repositories.Options
}

// NewGenericRepository creates a new instance of GenericRepositoryGORM.
// It initializes and returns a repository with the provided GORM database.
func NewGenericRepository[T repositories.Entity[ID], ID comparable](
	db *gorm.DB,
	opts ...repositories.Option,
) repositories.Repository[T, ID] {
	return newGenericRepository[T, ID](db, opts...)
}

func newGenericRepository[T repositories.Entity[ID], ID comparable](
	db *gorm.DB,
	opts ...repositories.Option,
) *GenericRepositoryGORM[T, ID] {
	repo := &GenericRepositoryGORM[T, ID]{
		db:      db,
		pk:      "id",
		options: repositories.BuildOptions(opts...),
	}

	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(new(T)); err == nil {
		repo.schema = stmt.Schema
		if field := stmt.Schema.PrioritizedPrimaryField; field != nil {
			repo.pk = field.DBName
		}
	}

	return repo
}

// GetQuery returns a clean Query instance for building queries.
func (repo *GenericRepositoryGORM[T, ID]) GetQuery() repositories.Query[T] {
	return repositories.Query[T]{}
}

// Save inserts data if it has no identifier yet, otherwise updates the matching record.
func (repo *GenericRepositoryGORM[T, ID]) Save(ctx context.Context, data T) (T, error) {
	saved, err := repo.save(repo.db.WithContext(ctx), data)
	if err != nil {
		return data, handleDBError("save", err)
	}
	return saved, nil
}

// SaveAll saves every element of data inside a single transaction.
func (repo *GenericRepositoryGORM[T, ID]) SaveAll(ctx context.Context, data []T) ([]T, error) {
	saved := make([]T, 0, len(data))
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range data {
			result, err := repo.save(tx, item)
			if err != nil {
				return err
			}
			saved = append(saved, result)
		}
		return nil
	})
	if err != nil {
		return nil, handleDBError("save all", err)
	}
	return saved, nil
}

func (repo *GenericRepositoryGORM[T, ID]) save(db *gorm.DB, data T) (T, error) {
	if repositories.IsNew[T, ID](data) {
		err := db.Create(&data).Error
		return data, err
	}

	id := data.GetID()
	omit := []string{repo.pk}
	if repositories.HasField[T](createdAtField) {
		omit = append(omit, createdAtField)
	}

	res := db.Model(new(T)).
		Where(repo.byID(id)).
		Select("*").
		Omit(omit...).
		Updates(data)
	if res.Error != nil {
		return data, res.Error
	}

	if res.RowsAffected == 0 {
		if repo.options.StrictDelete {
			return data, repositories.NewStorageError("save", repositories.NotFoundError, fmt.Errorf("no record with id %v", id))
		}
		if err := db.Create(&data).Error; err != nil {
			return data, err
		}
	}

	var persisted T
	err := db.Where(repo.byID(id)).Take(&persisted).Error
	return persisted, err
}

// Get retrieves a record by its identifier.
func (repo *GenericRepositoryGORM[T, ID]) Get(ctx context.Context, id ID) (T, error) {
	var result T
	err := repo.db.WithContext(ctx).Where(repo.byID(id)).Take(&result).Error
	return result, handleDBError("get", err)
}

// FindByID retrieves a record by its identifier, reporting whether it exists.
func (repo *GenericRepositoryGORM[T, ID]) FindByID(ctx context.Context, id ID) (T, bool, error) {
	var result T
	err := repo.db.WithContext(ctx).Where(repo.byID(id)).Take(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return result, false, nil
	}
	if err != nil {
		return result, false, handleDBError("find by id", err)
	}
	return result, true, nil
}

// ExistsByID reports whether a record with the identifier exists.
func (repo *GenericRepositoryGORM[T, ID]) ExistsByID(ctx context.Context, id ID) (bool, error) {
	var count int64
	err := repo.db.WithContext(ctx).Model(new(T)).Where(repo.byID(id)).Limit(1).Count(&count).Error
	if err != nil {
		return false, handleDBError("exists by id", err)
	}
	return count > 0, nil
}

// FindAll streams every record in the requested order.
// Rows are scanned one at a time, and breaking out of the loop closes the cursor.
func (repo *GenericRepositoryGORM[T, ID]) FindAll(ctx context.Context, sort repositories.Sort) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T

		db, err := repo.applySort(repo.db.WithContext(ctx).Model(new(T)), sort)
		if err != nil {
			yield(zero, handleDBError("find all", err))
			return
		}

		rows, err := db.Rows()
		if err != nil {
			yield(zero, handleDBError("find all", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var item T
			if err := db.ScanRows(rows, &item); err != nil {
				yield(zero, handleDBError("find all", err))
				return
			}
			if !yield(item, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(zero, handleDBError("find all", err))
		}
	}
}

// FindAllByID retrieves the records matching ids.
func (repo *GenericRepositoryGORM[T, ID]) FindAllByID(ctx context.Context, ids []ID) ([]T, error) {
	results := []T{}
	if len(ids) == 0 {
		return results, nil
	}
	err := repo.db.WithContext(ctx).Where(repo.byIDs(ids)).Find(&results).Error
	return results, handleDBError("find all by id", err)
}

// FindPage retrieves one page of records.
func (repo *GenericRepositoryGORM[T, ID]) FindPage(
	ctx context.Context,
	pageable repositories.Pageable,
) (repositories.Page[T], error) {
	if err := pageable.Validate(); err != nil {
		return repositories.Page[T]{}, repositories.NewStorageError("find page", repositories.InvalidDataError, err)
	}

	db, err := repo.applySort(repo.db.WithContext(ctx).Model(new(T)), pageable.Sort)
	if err != nil {
		return repositories.Page[T]{}, handleDBError("find page", err)
	}

	var total int64
	if err := repo.db.WithContext(ctx).Model(new(T)).Count(&total).Error; err != nil {
		return repositories.Page[T]{}, handleDBError("find page", err)
	}

	var content []T
	if int64(pageable.Offset()) < total {
		err = db.Offset(pageable.Offset()).Limit(pageable.Size).Find(&content).Error
		if err != nil {
			return repositories.Page[T]{}, handleDBError("find page", err)
		}
	}

	return repositories.NewPage(content, pageable, total), nil
}

// Count returns the number of records.
func (repo *GenericRepositoryGORM[T, ID]) Count(ctx context.Context) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).Model(new(T)).Count(&count).Error
	return count, handleDBError("count", err)
}

// DeleteByID removes a record by its identifier.
func (repo *GenericRepositoryGORM[T, ID]) DeleteByID(ctx context.Context, id ID) error {
	res := repo.db.WithContext(ctx).Where(repo.byID(id)).Delete(new(T))
	if res.Error != nil {
		return handleDBError("delete", res.Error)
	}
	if res.RowsAffected == 0 && repo.options.StrictDelete {
		return repositories.NewStorageError("delete", repositories.NotFoundError, fmt.Errorf("no record with id %v", id))
	}
	return nil
}

// Delete removes the record matching the identifier of data.
func (repo *GenericRepositoryGORM[T, ID]) Delete(ctx context.Context, data T) error {
	if repositories.IsNew[T, ID](data) {
		if repo.options.StrictDelete {
			return repositories.NewStorageError("delete", repositories.NotFoundError, errors.New("entity has no identifier"))
		}
		return nil
	}
	return repo.DeleteByID(ctx, data.GetID())
}

// DeleteAllByID removes the records matching ids inside a single transaction.
func (repo *GenericRepositoryGORM[T, ID]) DeleteAllByID(ctx context.Context, ids []ID) error {
	if len(ids) == 0 {
		return nil
	}

	unique := make(map[ID]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}

	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where(repo.byIDs(ids)).Delete(new(T))
		if res.Error != nil {
			return res.Error
		}
		if repo.options.StrictDelete && res.RowsAffected != int64(len(unique)) {
			return repositories.NewStorageError(
				"delete all by id",
				repositories.NotFoundError,
				fmt.Errorf("%d of %d records missing", int64(len(unique))-res.RowsAffected, len(unique)),
			)
		}
		return nil
	})
	return handleDBError("delete all by id", err)
}

// DeleteAll removes every record.
func (repo *GenericRepositoryGORM[T, ID]) DeleteAll(ctx context.Context) error {
	err := repo.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(new(T)).Error
	return handleDBError("delete all", err)
}

// Find retrieves a single record based on a query.
func (repo *GenericRepositoryGORM[T, ID]) Find(
	ctx context.Context,
	query repositories.Query[T],
) (T, error) {
	var result T

	db, err := repo.applyConditions(repo.db.WithContext(ctx).Model(new(T)), query)
	if err != nil {
		return result, handleDBError("find", err)
	}

	err = db.Take(&result).Error
	return result, handleDBError("find", err)
}

// FindBy retrieves multiple records based on a query.
func (repo *GenericRepositoryGORM[T, ID]) FindBy(
	ctx context.Context,
	query repositories.Query[T],
) ([]T, error) {
	results := []T{}

	db, err := repo.applyConditions(repo.db.WithContext(ctx).Model(new(T)), query)
	if err != nil {
		return nil, handleDBError("find by", err)
	}

	err = db.Find(&results).Error
	return results, handleDBError("find by", err)
}

func (repo *GenericRepositoryGORM[T, ID]) byID(id ID) map[string]interface{} {
	return map[string]interface{}{repo.pk: id}
}

func (repo *GenericRepositoryGORM[T, ID]) byIDs(ids []ID) map[string]interface{} {
	return map[string]interface{}{repo.pk: ids}
}

// column maps a struct field name, or its json name, onto the database column.
func (repo *GenericRepositoryGORM[T, ID]) column(field string) (string, error) {
	name, ok := repositories.ResolveField[T](field)
	if !ok {
		return "", fmt.Errorf("%w: unknown field %q", repositories.InvalidDataError, field)
	}
	if repo.schema != nil {
		if f := repo.schema.LookUpField(name); f != nil && f.DBName != "" {
			return f.DBName, nil
		}
	}
	return repo.db.NamingStrategy.ColumnName("", name), nil
}

func (repo *GenericRepositoryGORM[T, ID]) applySort(db *gorm.DB, sort repositories.Sort) (*gorm.DB, error) {
	for _, order := range sort {
		column, err := repo.column(order.Field)
		if err != nil {
			return nil, err
		}
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: order.Desc})
	}
	return db, nil
}

var operators = map[string]struct{}{
	"=": {}, "!=": {}, ">": {}, ">=": {}, "<": {}, "<=": {}, "IN": {}, "LIKE": {},
}

// applyConditions applies conditions, sorting, limiting, and offsetting to a GORM database query.
// Conditions are combined with AND. Non-zero fields of query.Instance add equality conditions.
func (repo *GenericRepositoryGORM[T, ID]) applyConditions(
	db *gorm.DB,
	query repositories.Query[T],
) (*gorm.DB, error) {
	for _, condition := range query.Conditions {
		if _, ok := operators[condition.Operator]; !ok {
			return nil, fmt.Errorf("%w: unsupported operator %q", repositories.InvalidDataError, condition.Operator)
		}
		column, err := repo.column(condition.Field)
		if err != nil {
			return nil, err
		}
		db = db.Where(fmt.Sprintf("%s %s ?", column, condition.Operator), condition.Value)
	}

	if !repositories.IsEmptyValue(query.Instance) {
		exampleType := reflect.TypeOf(query.Instance)
		exampleValue := reflect.ValueOf(query.Instance)
		for i := 0; i < exampleType.NumField(); i++ {
			if !exampleType.Field(i).IsExported() {
				continue
			}
			fieldValue := exampleValue.Field(i).Interface()
			if repositories.IsEmptyValue(fieldValue) {
				continue
			}
			column, err := repo.column(exampleType.Field(i).Name)
			if err != nil {
				return nil, err
			}
			db = db.Where(fmt.Sprintf("%s = ?", column), fieldValue)
		}
	}

	db, err := repo.applySort(db, query.Sort)
	if err != nil {
		return nil, err
	}

	if query.Limit > 0 {
		db = db.Limit(query.Limit)
	}
	if query.Offset > 0 {
		db = db.Offset(query.Offset)
	}

	return db, nil
}
