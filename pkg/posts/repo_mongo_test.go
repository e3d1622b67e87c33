package posts

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"miniblog/pkg/common"

	gomock "github.com/golang/mock/gomock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type getByFieldCase struct {
	name      string
	cond      bson.M
	cursorErr error
	findErr   error
	f         func(ctx context.Context, r *PostsRepoMongo) ([]*Post, error)
}

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
var categoryID = int64(3)

var getByFieldCases = []getByFieldCase{
	{
		name: "GetPublishedHappyCase",
		cond: bson.M{"published": true, "pubDate": bson.M{"$lte": now}},
		f: func(ctx context.Context, r *PostsRepoMongo) ([]*Post, error) {
			return r.GetPublished(ctx, now)
		},
	},
	{
		name: "GetPublishedByCategoryHappyCase",
		cond: bson.M{"published": true, "pubDate": bson.M{"$lte": now}, "categoryID": categoryID},
		f: func(ctx context.Context, r *PostsRepoMongo) ([]*Post, error) {
			return r.GetPublishedByCategory(ctx, categoryID, now)
		},
	},
	{
		name: "GetByAuthorIDHappyCase",
		cond: bson.M{"authorID": int64(1)},
		f: func(ctx context.Context, r *PostsRepoMongo) ([]*Post, error) {
			return r.GetByAuthorID(ctx, int64(1))
		},
	},
	{
		name:      "FindErrorExpected",
		cond:      bson.M{"published": true, "pubDate": bson.M{"$lte": now}},
		cursorErr: errors.New("error while calling find"),
		f: func(ctx context.Context, r *PostsRepoMongo) ([]*Post, error) {
			return r.GetPublished(ctx, now)
		},
	},
	{
		name:    "CursorErrorExpected",
		cond:    bson.M{"published": true, "pubDate": bson.M{"$lte": now}},
		findErr: errors.New("cursor error"),
		f: func(ctx context.Context, r *PostsRepoMongo) ([]*Post, error) {
			return r.GetPublished(ctx, now)
		},
	},
}

func TestGetByField(t *testing.T) {
	for i, c := range getByFieldCases {
		ctrl := gomock.NewController(t)
		mockCollection := common.NewMockCollectionHelper(ctrl)
		mockCursor := common.NewMockCursorHelper(ctrl)
		repo := &PostsRepoMongo{collection: mockCollection}

		ctx := context.Background()

		expectedPosts := []*Post{
			{ID: primitive.NewObjectID(), AuthorID: int64(1), Title: "test title 1", Text: "test", Published: true, PubDate: now.Add(-time.Hour), Created: now.Add(-2 * time.Hour)},
			{ID: primitive.NewObjectID(), AuthorID: int64(1), CategoryID: &categoryID, Title: "test title 2", Text: "test", Published: true, PubDate: now.Add(-2 * time.Hour), Created: now.Add(-3 * time.Hour)},
		}

		mockCollection.EXPECT().Find(ctx, gomock.Eq(c.cond)).Return(mockCursor, c.cursorErr)
		if c.cursorErr == nil {
			mockCursor.EXPECT().All(ctx, gomock.AssignableToTypeOf(&expectedPosts)).
				SetArg(1, expectedPosts).Return(c.findErr)
			mockCursor.EXPECT().Close(ctx).Return(nil)
		}

		res, err := c.f(ctx, repo)

		if c.cursorErr != nil {
			if c.cursorErr != err {
				t.Errorf("test #%d %s fail, expected error: %v, but was %v", i, c.name, c.cursorErr, err)
			}
		} else if c.findErr != nil {
			if c.findErr != err {
				t.Errorf("test #%d %s fail, expected error: %v, but was %v", i, c.name, c.findErr, err)
			}
		} else if !reflect.DeepEqual(res, expectedPosts) {
			t.Errorf("test #%d %s fail, expected: %v, but was: %v", i, c.name, expectedPosts, res)
		}
	}
}

func TestGetByID(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCollection := common.NewMockCollectionHelper(ctrl)
	mockSingleResult := common.NewMockSingleResultHelper(ctrl)

	repo := &PostsRepoMongo{collection: mockCollection}
	ctx := context.Background()

	id := primitive.NewObjectID()
	bsonM := bson.M{"_id": id}
	mockCollection.EXPECT().FindOne(ctx, gomock.Eq(bsonM)).Return(mockSingleResult)

	expectedPost := &Post{ID: id, AuthorID: int64(1), Title: "test title 1", Text: "test", Published: true, PubDate: now, Created: now}
	mockSingleResult.EXPECT().Decode(gomock.AssignableToTypeOf(expectedPost)).
		SetArg(0, *expectedPost).Return(nil)

	res, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(res, expectedPost) {
		t.Errorf("test fail, expected: %v, but was: %v", expectedPost, res)
	}
}

func TestAdd(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCollection := common.NewMockCollectionHelper(ctrl)
	mockInsertOneResult := common.NewMockInsertOneResultHelper(ctrl)

	repo := &PostsRepoMongo{collection: mockCollection}
	ctx := context.Background()

	expectedInsertID := primitive.NewObjectID()
	post := &Post{AuthorID: int64(256), Title: "test title", Text: "test", Published: true, PubDate: now, Created: now}
	mockCollection.EXPECT().InsertOne(ctx, gomock.AssignableToTypeOf(post)).
		Return(mockInsertOneResult, nil)

	mockInsertOneResult.EXPECT().GetInsertedID().Return(expectedInsertID)

	res, err := repo.Add(ctx, post)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(res, expectedInsertID) {
		t.Errorf("test fail, expected: %v, but was: %v", expectedInsertID, res)
	}
}

func TestUpdate(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCollection := common.NewMockCollectionHelper(ctrl)
	mockUpdateResult := common.NewMockUpdateResultHelper(ctrl)

	repo := &PostsRepoMongo{collection: mockCollection}
	ctx := context.Background()

	id := primitive.NewObjectID()
	post := &Post{ID: id, AuthorID: int64(1), CategoryID: &categoryID, Title: "edited", Text: "edited text", Published: false, PubDate: now, Created: now}

	expectedDoc := bson.M{
		"$set": bson.M{
			"title":      "edited",
			"text":       "edited text",
			"image":      "",
			"published":  false,
			"pubDate":    now,
			"categoryID": categoryID,
		},
		"$unset": bson.M{"locationID": ""},
	}

	mockCollection.EXPECT().UpdateOne(ctx, gomock.Eq(bson.M{"_id": id}), gomock.Eq(expectedDoc)).
		Return(mockUpdateResult, nil)
	mockUpdateResult.EXPECT().GetMatchedCount().Return(int64(1))

	ok, err := repo.Update(ctx, post)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("test fail, expected true but was false")
	}
}

func TestDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCollection := common.NewMockCollectionHelper(ctrl)
	mockDeleteResult := common.NewMockDeleteResultHelper(ctrl)

	repo := &PostsRepoMongo{collection: mockCollection}
	ctx := context.Background()

	id := primitive.NewObjectID()
	bsonM := bson.M{"_id": id}
	mockCollection.EXPECT().DeleteOne(ctx, gomock.AssignableToTypeOf(bsonM)).
		Return(mockDeleteResult, nil)

	mockDeleteResult.EXPECT().GetDeletedCount().Return(int64(1))

	deleted, err := repo.Delete(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !deleted {
		t.Error("test fail, expected true but was false")
	}
}

func TestDeleteByAuthorID(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCollection := common.NewMockCollectionHelper(ctrl)
	mockDeleteResult := common.NewMockDeleteResultHelper(ctrl)

	repo := &PostsRepoMongo{collection: mockCollection}
	ctx := context.Background()

	mockCollection.EXPECT().DeleteMany(ctx, gomock.Eq(bson.M{"authorID": int64(7)})).
		Return(mockDeleteResult, nil)
	mockDeleteResult.EXPECT().GetDeletedCount().Return(int64(3))

	count, err := repo.DeleteByAuthorID(ctx, int64(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Errorf("test fail, expected 3 but was %v", count)
	}
}

func TestClearCategory(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCollection := common.NewMockCollectionHelper(ctrl)
	mockUpdateResult := common.NewMockUpdateResultHelper(ctrl)

	repo := &PostsRepoMongo{collection: mockCollection}
	ctx := context.Background()

	mockCollection.EXPECT().UpdateMany(ctx,
		gomock.Eq(bson.M{"categoryID": categoryID}),
		gomock.Eq(bson.M{"$unset": bson.M{"categoryID": ""}})).
		Return(mockUpdateResult, nil)
	mockUpdateResult.EXPECT().GetModifiedCount().Return(int64(2))

	count, err := repo.ClearCategory(ctx, categoryID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("test fail, expected 2 but was %v", count)
	}
}

func TestClearLocation(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCollection := common.NewMockCollectionHelper(ctrl)
	mockUpdateResult := common.NewMockUpdateResultHelper(ctrl)

	repo := &PostsRepoMongo{collection: mockCollection}
	ctx := context.Background()

	locationID := int64(5)
	mockCollection.EXPECT().UpdateMany(ctx,
		gomock.Eq(bson.M{"locationID": locationID}),
		gomock.Eq(bson.M{"$unset": bson.M{"locationID": ""}})).
		Return(mockUpdateResult, nil)
	mockUpdateResult.EXPECT().GetModifiedCount().Return(int64(1))

	count, err := repo.ClearLocation(ctx, locationID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("test fail, expected 1 but was %v", count)
	}
}

func TestParseID(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCollection := common.NewMockCollectionHelper(ctrl)
	repo := &PostsRepoMongo{collection: mockCollection}

	id := primitive.NewObjectID()
	parsed, err := repo.ParseID(id.Hex())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	objID, ok := parsed.(primitive.ObjectID)
	if !ok {
		t.Fatalf("unexpected type: %t", parsed)
	}

	if objID.Hex() != id.Hex() {
		t.Fatalf("values not equal: %v, %v", objID.Hex(), id.Hex())
	}

	if _, err = repo.ParseID("not-an-object-id"); err == nil {
		t.Fatal("expected error but was nil")
	}
}
