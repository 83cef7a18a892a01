package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lmt/todolist/internal/config"
	"github.com/lmt/todolist/internal/core/ports"
	"github.com/lmt/todolist/internal/domain"
	"github.com/lmt/todolist/internal/infrastructure/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoTaskCollection = "todos"

type mongoTask struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Task      string             `bson:"task"`
	Status    string             `bson:"status"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (m *mongoTask) toDomain() *domain.Task {
	return &domain.Task{
		ID:        m.ID.Hex(),
		Text:      m.Task,
		Status:    domain.TaskStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func NewMongoConnection(cfg config.DatabaseConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout(cfg))
	defer cancel()

	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.MaxOpenConns > 0 {
		opts.SetMaxPoolSize(uint64(cfg.MaxOpenConns))
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, nil
}

type mongoTaskRepository struct {
	coll *mongo.Collection
	log  *logger.Logger
}

// NewMongoTaskRepository stores tasks as documents in the todos collection of
// database dbName and makes sure the listing index exists.
func NewMongoTaskRepository(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) (ports.TaskRepository, error) {
	coll := client.Database(dbName).Collection(mongoTaskCollection)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "created_at", Value: 1}},
		Options: options.Index().SetName("idx_todos_created_at"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo index: %w", err)
	}
	return &mongoTaskRepository{coll: coll, log: log}, nil
}

// An id that is not a valid ObjectID cannot name a stored document.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrNotFound
	}
	return oid, nil
}

func (r *mongoTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	now := time.Now().UTC()
	doc := mongoTask{
		ID:        primitive.NewObjectID(),
		Task:      task.Text,
		Status:    string(task.Status),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		r.log.Errorw("todo_repo_create_failed", "error", err, "driver", "mongo")
		return err
	}
	*task = *doc.toDomain()
	r.log.Infow("todo_repo_create_ok", "id", task.ID, "driver", "mongo")
	return nil
}

func (r *mongoTaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc mongoTask
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.log.Errorw("todo_repo_get_failed", "id", id, "error", err, "driver", "mongo")
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *mongoTaskRepository) GetAll(ctx context.Context) ([]domain.Task, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		r.log.Errorw("todo_repo_list_failed", "error", err, "driver", "mongo")
		return nil, err
	}
	var docs []mongoTask
	if err := cursor.All(ctx, &docs); err != nil {
		r.log.Errorw("todo_repo_list_decode_failed", "error", err, "driver", "mongo")
		return nil, err
	}

	tasks := make([]domain.Task, 0, len(docs))
	for i := range docs {
		tasks = append(tasks, *docs[i].toDomain())
	}
	r.log.Infow("todo_repo_list_ok", "count", len(tasks), "driver", "mongo")
	return tasks, nil
}

func (r *mongoTaskRepository) Update(ctx context.Context, id string, fields ports.TaskFields) (*domain.Task, error) {
	if fields.Empty() {
		return r.GetByID(ctx, id)
	}
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if fields.Text != nil {
		set["task"] = *fields.Text
	}
	if fields.Status != nil {
		set["status"] = string(*fields.Status)
	}

	var doc mongoTask
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.log.Errorw("todo_repo_update_failed", "id", id, "error", err, "driver", "mongo")
		return nil, err
	}
	r.log.Infow("todo_repo_update_ok", "id", id, "driver", "mongo")
	return doc.toDomain(), nil
}

func (r *mongoTaskRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		r.log.Errorw("todo_repo_delete_failed", "id", id, "error", err, "driver", "mongo")
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	r.log.Infow("todo_repo_delete_ok", "id", id, "driver", "mongo")
	return nil
}
