package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/todoapp/todo-api/internal/model"
	"github.com/todoapp/todo-api/internal/repository"
)

var createdAt = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func todoDoc(id primitive.ObjectID, title string, completed bool, priority string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "title", Value: title},
		{Key: "description", Value: nil},
		{Key: "completed", Value: completed},
		{Key: "priority", Value: priority},
		{Key: "created_at", Value: primitive.NewDateTimeFromTime(createdAt)},
	}
}

func namespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func TestMongo_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("assigns id and created_at", func(mt *mtest.T) {
		repo := repository.NewMongoTodo(mt.Coll, time.Second)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		desc := "2 litres"
		before := time.Now().UTC().Add(-time.Second)
		todo, err := repo.Create(context.Background(), model.Todo{
			ID:          "ignored",
			Title:       "Buy milk",
			Description: &desc,
			Priority:    model.PriorityLow,
		})
		require.NoError(mt, err)

		assert.True(mt, primitive.IsValidObjectID(todo.ID))
		assert.Equal(mt, "Buy milk", todo.Title)
		assert.Equal(mt, model.PriorityLow, todo.Priority)
		assert.False(mt, todo.Completed)
		assert.True(mt, todo.CreatedAt.After(before))

		insert := mt.GetStartedEvent()
		require.NotNil(mt, insert)
		assert.Equal(mt, "insert", insert.CommandName)
	})

	mt.Run("write error", func(mt *mtest.T) {
		repo := repository.NewMongoTodo(mt.Coll, time.Second)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		_, err := repo.Create(context.Background(), model.Todo{Title: "x"})
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "failed to insert todo")
	})
}

func TestMongo_GetByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		repo := repository.NewMongoTodo(mt.Coll, time.Second)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			todoDoc(id, "Buy milk", false, "low")))

		todo, err := repo.GetByID(context.Background(), id.Hex())
		require.NoError(mt, err)

		assert.Equal(mt, id.Hex(), todo.ID)
		assert.Equal(mt, "Buy milk", todo.Title)
		assert.Nil(mt, todo.Description)
		assert.Equal(mt, model.PriorityLow, todo.Priority)
		assert.True(mt, createdAt.Equal(todo.CreatedAt))
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := repository.NewMongoTodo(mt.Coll, time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		_, err := repo.GetByID(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("invalid id never reaches the server", func(mt *mtest.T) {
		repo := repository.NewMongoTodo(mt.Coll, time.Second)

		_, err := repo.GetByID(context.Background(), "1")
		assert.ErrorIs(mt, err, repository.ErrInvalidID)
		assert.Nil(mt, mt.GetStartedEvent())
	})
}

func TestMongo_List(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes every document", func(mt *mtest.T) {
		repo := repository.NewMongoTodo(mt.Coll, time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			todoDoc(primitive.NewObjectID(), "a", true, "high"),
			todoDoc(primitive.NewObjectID(), "b", true, "high"),
		))

		high := model.PriorityHigh
		done := true
		todos, err := repo.List(context.Background(), model.TodoFilter{Completed: &done, Priority: &high}, 0)
		require.NoError(mt, err)
		require.Len(mt, todos, 2)
		assert.Equal(mt, "a", todos[0].Title)
		assert.Equal(mt, "b", todos[1].Title)

		find := mt.GetStartedEvent()
		require.NotNil(mt, find)
		assert.EqualValues(mt, repository.DefaultListLimit, find.Command.Lookup("limit").AsInt64())
		assert.True(mt, find.Command.Lookup("filter", "completed").Boolean())
		assert.Equal(mt, "high", find.Command.Lookup("filter", "priority").StringValue())
	})

	mt.Run("empty result is not nil", func(mt *mtest.T) {
		repo := repository.NewMongoTodo(mt.Coll, time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		todos, err := repo.List(context.Background(), model.TodoFilter{}, 5)
		require.NoError(mt, err)
		assert.NotNil(mt, todos)
		assert.Empty(mt, todos)
	})
}

func TestMongo_Update(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns post-update document", func(mt *mtest.T) {
		repo := repository.NewMongoTodo(mt.Coll, time.Second)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: todoDoc(id, "Buy milk", true, "low")},
		))

		completed := true
		todo, err := repo.Update(context.Background(), id.Hex(), model.TodoPatch{Completed: &completed})
		require.NoError(mt, err)
		assert.True(mt, todo.Completed)
		assert.Equal(mt, "Buy milk", todo.Title)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		set := evt.Command.Lookup("update", "$set").Document()
		assert.True(mt, set.Lookup("completed").Boolean())
		_, err = set.LookupErr("title")
		assert.Error(mt, err, "unset patch fields must not be written")
	})

	mt.Run("missing document", func(mt *mtest.T) {
		repo := repository.NewMongoTodo(mt.Coll, time.Second)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		title := "x"
		_, err := repo.Update(context.Background(), primitive.NewObjectID().Hex(), model.TodoPatch{Title: &title})
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("empty patch", func(mt *mtest.T) {
		repo := repository.NewMongoTodo(mt.Coll, time.Second)

		_, err := repo.Update(context.Background(), primitive.NewObjectID().Hex(), model.TodoPatch{})
		assert.ErrorIs(mt, err, repository.ErrNoFieldsToUpdate)
	})

	mt.Run("invalid id", func(mt *mtest.T) {
		repo := repository.NewMongoTodo(mt.Coll, time.Second)

		title := "x"
		_, err := repo.Update(context.Background(), "not-hex", model.TodoPatch{Title: &title})
		assert.ErrorIs(mt, err, repository.ErrInvalidID)
	})
}

func TestMongo_Delete(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("deleted", func(mt *mtest.T) {
		repo := repository.NewMongoTodo(mt.Coll, time.Second)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		assert.NoError(mt, repo.Delete(context.Background(), primitive.NewObjectID().Hex()))
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := repository.NewMongoTodo(mt.Coll, time.Second)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.Delete(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("invalid id", func(mt *mtest.T) {
		repo := repository.NewMongoTodo(mt.Coll, time.Second)

		assert.ErrorIs(mt, repo.Delete(context.Background(), "zzz"), repository.ErrInvalidID)
	})
}

func TestMongo_Toggle(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("flips completed server side", func(mt *mtest.T) {
		repo := repository.NewMongoTodo(mt.Coll, time.Second)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: todoDoc(id, "Buy milk", true, "low")},
		))

		todo, err := repo.Toggle(context.Background(), id.Hex())
		require.NoError(mt, err)
		assert.True(mt, todo.Completed)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "findAndModify", evt.CommandName)
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := repository.NewMongoTodo(mt.Coll, time.Second)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.Toggle(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}

func TestMongo_Count(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("reads aggregate total", func(mt *mtest.T) {
		repo := repository.NewMongoTodo(mt.Coll, time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(3)}}))

		n, err := repo.Count(context.Background(), model.TodoFilter{})
		require.NoError(mt, err)
		assert.EqualValues(mt, 3, n)
	})

	mt.Run("command error", func(mt *mtest.T) {
		repo := repository.NewMongoTodo(mt.Coll, time.Second)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad value",
		}))

		_, err := repo.Count(context.Background(), model.TodoFilter{})
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "failed to count todos")
	})
}

func TestMongo_SearchEscapesKeyword(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("literal match", func(mt *mtest.T) {
		repo := repository.NewMongoTodo(mt.Coll, time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			todoDoc(primitive.NewObjectID(), "What is 1+1?", false, "medium")))

		results, err := repo.Search(context.Background(), "1+1?")
		require.NoError(mt, err)
		require.Len(mt, results, 1)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		pattern, options := evt.Command.Lookup("filter", "$or", "0", "title").Regex()
		assert.Equal(mt, `1\+1\?`, pattern)
		assert.Equal(mt, "i", options)
	})
}
