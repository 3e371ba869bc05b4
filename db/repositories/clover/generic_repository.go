package repositories_clover

import (
	"context"
	"fmt"
	"iter"
	"reflect"
	"sync"
	"time"

	"github.com/iancoleman/strcase"
	clover "github.com/ostafen/clover/v2"
	clover_d "github.com/ostafen/clover/v2/document"
	clover_q "github.com/ostafen/clover/v2/query"

	"gitlab.com/testpaper/papergen/db/repositories"
)

const (
	idFieldName    = "ID"
	createdAtField = "CreatedAt"
	updatedAtField = "UpdatedAt"
)

// GenericRepositoryClover is a generic repository implementation using Clover.
// It is intended to be embedded in model repositories to provide basic database operations.
//
// Clover has no sequences, so integer identifiers come from a counter document kept in
// the sequences collection. Allocation and insert happen under mu, which makes the
// repository the only safe writer of its collection within a process.
type GenericRepositoryClover[T repositories.Entity[ID], ID repositories.IntegerID] struct {
	db         *clover.DB // db is the Clover database instance.
	collection string     // collection is the name of the collection in the database.
	idKey      string     // idKey is the document key holding the entity identifier.
	options    repositories.Options
	mu         sync.Mutex
}

// NewGenericRepository creates a new instance of GenericRepositoryClover.
// It initializes and returns a repository with the provided Clover database.
// The collection named by CollectionName must exist.
func NewGenericRepository[T repositories.Entity[ID], ID repositories.IntegerID](
	db *clover.DB,
	opts ...repositories.Option,
) repositories.Repository[T, ID] {
	return &GenericRepositoryClover[T, ID]{
		db:         db,
		collection: CollectionName[T](),
		idKey:      repositories.FieldJSONTag[T](idFieldName),
		options:    repositories.BuildOptions(opts...),
	}
}

// CollectionName returns the collection documents of type T are stored in.
func CollectionName[T any]() string {
	return strcase.ToSnake(reflect.TypeOf(*new(T)).Name())
}

// GetQuery returns a clean Query instance for building queries.
func (repo *GenericRepositoryClover[T, ID]) GetQuery() repositories.Query[T] {
	return repositories.Query[T]{}
}

func (repo *GenericRepositoryClover[T, ID]) query() *clover_q.Query {
	return clover_q.NewQuery(repo.collection)
}

func (repo *GenericRepositoryClover[T, ID]) queryWithID(id ID) *clover_q.Query {
	return repo.query().Where(clover_q.Field(repo.idKey).Eq(int64(id)))
}

func (repo *GenericRepositoryClover[T, ID]) queryWithIDs(ids []ID) *clover_q.Query {
	values := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		values = append(values, int64(id))
	}
	return repo.query().Where(clover_q.Field(repo.idKey).In(values...))
}

// Save inserts data if it has no identifier yet, otherwise updates the matching record.
func (repo *GenericRepositoryClover[T, ID]) Save(ctx context.Context, data T) (T, error) {
	if err := ctx.Err(); err != nil {
		return data, handleDBError("save", err)
	}
	saved, err := repo.save(data)
	if err != nil {
		return data, handleDBError("save", err)
	}
	return saved, nil
}

// SaveAll saves every element of data in order. Clover has no multi-document
// transactions, so elements saved before a failure stay saved.
func (repo *GenericRepositoryClover[T, ID]) SaveAll(ctx context.Context, data []T) ([]T, error) {
	saved := make([]T, 0, len(data))
	for _, item := range data {
		if err := ctx.Err(); err != nil {
			return nil, handleDBError("save all", err)
		}
		result, err := repo.save(item)
		if err != nil {
			return nil, handleDBError("save all", err)
		}
		saved = append(saved, result)
	}
	return saved, nil
}

func (repo *GenericRepositoryClover[T, ID]) save(data T) (T, error) {
	if repositories.IsNew[T, ID](data) {
		return repo.insert(data)
	}

	id := data.GetID()
	stored, err := repo.db.FindFirst(repo.queryWithID(id))
	if err != nil {
		return data, err
	}
	if stored == nil {
		if repo.options.StrictDelete {
			return data, repositories.NewStorageError("save", repositories.NotFoundError, fmt.Errorf("no record with id %v", id))
		}
		return repo.insert(data)
	}

	// the whole document is replaced so zero values overwrite what was stored
	doc, err := toCloverDoc(data)
	if err != nil {
		return data, repositories.NewStorageError("save", repositories.InvalidDataError, err)
	}
	doc.Set(objectIDKey, stored.ObjectId())
	doc.Set(repo.idKey, int64(id))
	if repositories.HasField[T](createdAtField) {
		key := repositories.FieldJSONTag[T](createdAtField)
		doc.Set(key, stored.Get(key))
	}
	if repositories.HasField[T](updatedAtField) {
		doc.Set(repositories.FieldJSONTag[T](updatedAtField), timestamp())
	}

	if err := repo.db.ReplaceById(repo.collection, stored.ObjectId(), doc); err != nil {
		return data, err
	}
	return toModel[T](doc)
}

func (repo *GenericRepositoryClover[T, ID]) insert(data T) (T, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	id, err := repo.nextID(data.GetID())
	if err != nil {
		return data, err
	}

	data, err = repositories.UpdateField(data, idFieldName, id)
	if err != nil {
		return data, err
	}

	doc, err := toCloverDoc(data)
	if err != nil {
		return data, repositories.NewStorageError("save", repositories.InvalidDataError, err)
	}
	doc.Set(repo.idKey, int64(id))
	now := timestamp()
	if repositories.HasField[T](createdAtField) {
		doc.Set(repositories.FieldJSONTag[T](createdAtField), now)
	}
	if repositories.HasField[T](updatedAtField) {
		doc.Set(repositories.FieldJSONTag[T](updatedAtField), now)
	}

	if _, err := repo.db.InsertOne(repo.collection, doc); err != nil {
		return data, err
	}
	return toModel[T](doc)
}

// nextID advances the collection's sequence and returns the identifier to insert with.
// A zero requested id takes the next sequence value; a caller supplied one is kept and
// moves the sequence forward if needed, so identifiers are never handed out twice.
// Callers must hold mu.
func (repo *GenericRepositoryClover[T, ID]) nextID(requested ID) (ID, error) {
	seqQuery := clover_q.NewQuery(sequenceCollection).
		Where(clover_q.Field(sequenceNameKey).Eq(repo.collection))

	seq, err := repo.db.FindFirst(seqQuery)
	if err != nil {
		return 0, err
	}

	var current int64
	if seq == nil {
		// collections written before the sequence existed start from their highest id
		if current, err = repo.lastID(); err != nil {
			return 0, err
		}
	} else if current, err = toInt64(seq.Get(sequenceValueKey)); err != nil {
		return 0, err
	}

	id := current + 1
	if requested != 0 {
		id = int64(requested)
	}
	if id <= current {
		return requested, nil
	}

	if seq == nil {
		doc := clover_d.NewDocument()
		doc.Set(sequenceNameKey, repo.collection)
		doc.Set(sequenceValueKey, id)
		_, err = repo.db.InsertOne(sequenceCollection, doc)
	} else {
		err = repo.db.Update(seqQuery, map[string]interface{}{sequenceValueKey: id})
	}
	if err != nil {
		return 0, err
	}
	return ID(id), nil
}

// lastID returns the highest stored identifier, or zero for an empty collection.
func (repo *GenericRepositoryClover[T, ID]) lastID() (int64, error) {
	doc, err := repo.db.FindFirst(
		repo.query().Sort(clover_q.SortOption{Field: repo.idKey, Direction: -1}),
	)
	if err != nil || doc == nil {
		return 0, err
	}
	return toInt64(doc.Get(repo.idKey))
}

// Get retrieves a record by its identifier.
func (repo *GenericRepositoryClover[T, ID]) Get(ctx context.Context, id ID) (T, error) {
	result, found, err := repo.FindByID(ctx, id)
	if err != nil {
		return result, err
	}
	if !found {
		return result, handleDBError("get", clover.ErrDocumentNotExist)
	}
	return result, nil
}

// FindByID retrieves a record by its identifier, reporting whether it exists.
func (repo *GenericRepositoryClover[T, ID]) FindByID(ctx context.Context, id ID) (T, bool, error) {
	var result T
	if err := ctx.Err(); err != nil {
		return result, false, handleDBError("find by id", err)
	}

	doc, err := repo.db.FindFirst(repo.queryWithID(id))
	if err != nil {
		return result, false, handleDBError("find by id", err)
	}
	if doc == nil {
		return result, false, nil
	}

	result, err = toModel[T](doc)
	if err != nil {
		return result, false, handleDBError("find by id", err)
	}
	return result, true, nil
}

// ExistsByID reports whether a record with the identifier exists.
func (repo *GenericRepositoryClover[T, ID]) ExistsByID(ctx context.Context, id ID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, handleDBError("exists by id", err)
	}
	count, err := repo.db.Count(repo.queryWithID(id))
	if err != nil {
		return false, handleDBError("exists by id", err)
	}
	return count > 0, nil
}

// FindAll streams every record in the requested order.
func (repo *GenericRepositoryClover[T, ID]) FindAll(ctx context.Context, sort repositories.Sort) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T

		if err := ctx.Err(); err != nil {
			yield(zero, handleDBError("find all", err))
			return
		}

		q, err := applySort[T](repo.query(), sort)
		if err != nil {
			yield(zero, handleDBError("find all", err))
			return
		}

		var (
			stopped bool
			convErr error
		)
		err = repo.db.ForEach(q, func(doc *clover_d.Document) bool {
			item, err := toModel[T](doc)
			if err != nil {
				convErr = err
				return false
			}
			if !yield(item, nil) {
				stopped = true
				return false
			}
			return true
		})

		switch {
		case stopped:
		case convErr != nil:
			yield(zero, handleDBError("find all", convErr))
		case err != nil:
			yield(zero, handleDBError("find all", err))
		}
	}
}

// FindAllByID retrieves the records matching ids.
func (repo *GenericRepositoryClover[T, ID]) FindAllByID(ctx context.Context, ids []ID) ([]T, error) {
	results := []T{}
	if len(ids) == 0 {
		return results, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, handleDBError("find all by id", err)
	}

	docs, err := repo.db.FindAll(repo.queryWithIDs(ids))
	if err != nil {
		return nil, handleDBError("find all by id", err)
	}
	results, err = toModels[T](docs)
	return results, handleDBError("find all by id", err)
}

// FindPage retrieves one page of records.
func (repo *GenericRepositoryClover[T, ID]) FindPage(
	ctx context.Context,
	pageable repositories.Pageable,
) (repositories.Page[T], error) {
	if err := pageable.Validate(); err != nil {
		return repositories.Page[T]{}, repositories.NewStorageError("find page", repositories.InvalidDataError, err)
	}
	if err := ctx.Err(); err != nil {
		return repositories.Page[T]{}, handleDBError("find page", err)
	}

	q, err := applySort[T](repo.query(), pageable.Sort)
	if err != nil {
		return repositories.Page[T]{}, handleDBError("find page", err)
	}

	total, err := repo.db.Count(repo.query())
	if err != nil {
		return repositories.Page[T]{}, handleDBError("find page", err)
	}

	var content []T
	if pageable.Offset() < total {
		docs, err := repo.db.FindAll(q.Skip(pageable.Offset()).Limit(pageable.Size))
		if err != nil {
			return repositories.Page[T]{}, handleDBError("find page", err)
		}
		if content, err = toModels[T](docs); err != nil {
			return repositories.Page[T]{}, handleDBError("find page", err)
		}
	}

	return repositories.NewPage(content, pageable, int64(total)), nil
}

// Count returns the number of records.
func (repo *GenericRepositoryClover[T, ID]) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, handleDBError("count", err)
	}
	count, err := repo.db.Count(repo.query())
	return int64(count), handleDBError("count", err)
}

// DeleteByID removes a record by its identifier.
func (repo *GenericRepositoryClover[T, ID]) DeleteByID(ctx context.Context, id ID) error {
	if err := ctx.Err(); err != nil {
		return handleDBError("delete", err)
	}

	if repo.options.StrictDelete {
		count, err := repo.db.Count(repo.queryWithID(id))
		if err != nil {
			return handleDBError("delete", err)
		}
		if count == 0 {
			return repositories.NewStorageError("delete", repositories.NotFoundError, fmt.Errorf("no record with id %v", id))
		}
	}

	return handleDBError("delete", repo.db.Delete(repo.queryWithID(id)))
}

// Delete removes the record matching the identifier of data.
func (repo *GenericRepositoryClover[T, ID]) Delete(ctx context.Context, data T) error {
	if repositories.IsNew[T, ID](data) {
		if repo.options.StrictDelete {
			return repositories.NewStorageError("delete", repositories.NotFoundError, fmt.Errorf("entity has no identifier"))
		}
		return nil
	}
	return repo.DeleteByID(ctx, data.GetID())
}

// DeleteAllByID removes the records matching ids. With the strict policy nothing is
// deleted unless every identifier exists.
func (repo *GenericRepositoryClover[T, ID]) DeleteAllByID(ctx context.Context, ids []ID) error {
	if len(ids) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return handleDBError("delete all by id", err)
	}

	if repo.options.StrictDelete {
		unique := make(map[ID]struct{}, len(ids))
		for _, id := range ids {
			unique[id] = struct{}{}
		}
		count, err := repo.db.Count(repo.queryWithIDs(ids))
		if err != nil {
			return handleDBError("delete all by id", err)
		}
		if count != len(unique) {
			return repositories.NewStorageError(
				"delete all by id",
				repositories.NotFoundError,
				fmt.Errorf("%d of %d records missing", len(unique)-count, len(unique)),
			)
		}
	}

	return handleDBError("delete all by id", repo.db.Delete(repo.queryWithIDs(ids)))
}

// DeleteAll removes every record.
func (repo *GenericRepositoryClover[T, ID]) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return handleDBError("delete all", err)
	}
	return handleDBError("delete all", repo.db.Delete(repo.query()))
}

// Find retrieves a single record based on a query.
func (repo *GenericRepositoryClover[T, ID]) Find(
	ctx context.Context,
	query repositories.Query[T],
) (T, error) {
	var result T
	if err := ctx.Err(); err != nil {
		return result, handleDBError("find", err)
	}

	q, err := applyConditions(repo.query(), query)
	if err != nil {
		return result, handleDBError("find", err)
	}

	doc, err := repo.db.FindFirst(q)
	if err != nil {
		return result, handleDBError("find", err)
	}
	if doc == nil {
		return result, handleDBError("find", clover.ErrDocumentNotExist)
	}

	result, err = toModel[T](doc)
	return result, handleDBError("find", err)
}

// FindBy retrieves multiple records based on a query.
func (repo *GenericRepositoryClover[T, ID]) FindBy(
	ctx context.Context,
	query repositories.Query[T],
) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, handleDBError("find by", err)
	}

	q, err := applyConditions(repo.query(), query)
	if err != nil {
		return nil, handleDBError("find by", err)
	}

	docs, err := repo.db.FindAll(q)
	if err != nil {
		return nil, handleDBError("find by", err)
	}

	results, err := toModels[T](docs)
	return results, handleDBError("find by", err)
}

// timestampLayout is fixed width so stored timestamps sort in time order as strings.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func timestamp() string {
	return time.Now().UTC().Format(timestampLayout)
}
