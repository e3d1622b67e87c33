package comments

import (
	"context"
	"reflect"
	"testing"
	"time"

	"miniblog/pkg/common"

	"github.com/golang/mock/gomock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var id = primitive.NewObjectID()
var postID = primitive.NewObjectID()

var expectedComments = []*Comment{
	{
		ID:       id,
		PostID:   postID,
		AuthorID: int64(1),
		Body:     "some comment about something",
		Created:  time.Now(),
	},
}

func TestGetByPostID(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCollection := common.NewMockCollectionHelper(ctrl)
	mockCursor := common.NewMockCursorHelper(ctrl)
	repo := &CommentsRepoMongo{collection: mockCollection}

	ctx := context.Background()

	mockCollection.EXPECT().Find(ctx, gomock.Eq(bson.M{"postID": postID})).Return(mockCursor, nil)
	mockCursor.EXPECT().All(ctx, gomock.AssignableToTypeOf(&expectedComments)).
		SetArg(1, expectedComments).Return(nil)
	mockCursor.EXPECT().Close(ctx).Return(nil)

	res, err := repo.GetByPostID(ctx, postID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(res, expectedComments) {
		t.Errorf("expected %v but was %v", expectedComments, res)
	}
}

func TestGetCommentByID(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCollection := common.NewMockCollectionHelper(ctrl)
	mockSingleResult := common.NewMockSingleResultHelper(ctrl)
	repo := &CommentsRepoMongo{collection: mockCollection}

	ctx := context.Background()

	mockCollection.EXPECT().FindOne(ctx, gomock.Eq(bson.M{"_id": id})).Return(mockSingleResult)
	mockSingleResult.EXPECT().Decode(gomock.AssignableToTypeOf(expectedComments[0])).
		SetArg(0, *expectedComments[0]).Return(nil)

	res, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(res, expectedComments[0]) {
		t.Errorf("expected %v but was %v", expectedComments[0], res)
	}
}

func TestCountByPostID(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCollection := common.NewMockCollectionHelper(ctrl)
	repo := &CommentsRepoMongo{collection: mockCollection}

	ctx := context.Background()

	mockCollection.EXPECT().CountDocuments(ctx, gomock.Eq(bson.M{"postID": postID})).
		Return(int64(4), nil)

	count, err := repo.CountByPostID(ctx, postID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if count != 4 {
		t.Errorf("expected 4 but was %v", count)
	}
}

func TestAddComment(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCollection := common.NewMockCollectionHelper(ctrl)
	mockInsertOneResult := common.NewMockInsertOneResultHelper(ctrl)
	repo := &CommentsRepoMongo{collection: mockCollection}

	ctx := context.Background()

	mockCollection.EXPECT().
		InsertOne(ctx, gomock.AssignableToTypeOf(expectedComments[0])).
		Return(mockInsertOneResult, nil)
	mockInsertOneResult.EXPECT().GetInsertedID().Return(expectedComments[0].ID)

	res, err := repo.Add(ctx, expectedComments[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(res, expectedComments[0].ID) {
		t.Errorf("expected %v but was %v", expectedComments[0].ID, res)
	}
}

func TestUpdateComment(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCollection := common.NewMockCollectionHelper(ctrl)
	mockUpdateResult := common.NewMockUpdateResultHelper(ctrl)
	repo := &CommentsRepoMongo{collection: mockCollection}

	ctx := context.Background()

	mockCollection.EXPECT().UpdateOne(ctx,
		gomock.Eq(bson.M{"_id": id}),
		gomock.Eq(bson.M{"$set": bson.M{"body": "edited"}})).
		Return(mockUpdateResult, nil)
	mockUpdateResult.EXPECT().GetMatchedCount().Return(int64(1))

	ok, err := repo.Update(ctx, id, "edited")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected true but was false")
	}
}

func TestDeleteComment(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCollection := common.NewMockCollectionHelper(ctrl)
	mockDeleteResult := common.NewMockDeleteResultHelper(ctrl)
	repo := &CommentsRepoMongo{collection: mockCollection}

	ctx := context.Background()

	mockCollection.EXPECT().
		DeleteOne(ctx, gomock.Eq(bson.M{"_id": id})).
		Return(mockDeleteResult, nil)
	mockDeleteResult.EXPECT().GetDeletedCount().Return(int64(1))

	deleted, err := repo.Delete(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !deleted {
		t.Error("expected true but was false")
	}
}

func TestDeleteByPostID(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCollection := common.NewMockCollectionHelper(ctrl)
	mockDeleteResult := common.NewMockDeleteResultHelper(ctrl)
	repo := &CommentsRepoMongo{collection: mockCollection}

	ctx := context.Background()

	mockCollection.EXPECT().
		DeleteMany(ctx, gomock.Eq(bson.M{"postID": postID})).
		Return(mockDeleteResult, nil)
	mockDeleteResult.EXPECT().GetDeletedCount().Return(int64(2))

	count, err := repo.DeleteByPostID(ctx, postID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if count != 2 {
		t.Errorf("expected 2 but was %v", count)
	}
}

func TestDeleteByAuthorID(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCollection := common.NewMockCollectionHelper(ctrl)
	mockDeleteResult := common.NewMockDeleteResultHelper(ctrl)
	repo := &CommentsRepoMongo{collection: mockCollection}

	ctx := context.Background()

	mockCollection.EXPECT().
		DeleteMany(ctx, gomock.Eq(bson.M{"authorID": int64(1)})).
		Return(mockDeleteResult, nil)
	mockDeleteResult.EXPECT().GetDeletedCount().Return(int64(5))

	count, err := repo.DeleteByAuthorID(ctx, int64(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if count != 5 {
		t.Errorf("expected 5 but was %v", count)
	}
}
