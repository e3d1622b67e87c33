package posts

import (
	"context"
	"miniblog/pkg/common"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PostsRepoMongo struct {
	collection common.CollectionHelper
}

func NewMongoClient(ctx context.Context, uri string) (*mongo.Client, error) {
	return mongo.Connect(ctx, options.Client().ApplyURI(uri))
}

func NewPostsRepoMongo(db *mongo.Database) *PostsRepoMongo {
	return &PostsRepoMongo{collection: &common.MongoCollection{Collection: db.Collection("posts")}}
}

// publishedFilter matches posts whose own publish state allows public access.
// The category-published condition cannot be expressed here, the feed layer
// applies it against live category data.
func publishedFilter(now time.Time) bson.M {
	return bson.M{"published": true, "pubDate": bson.M{"$lte": now}}
}

func (r *PostsRepoMongo) GetPublished(ctx context.Context, now time.Time) ([]*Post, error) {
	return r.getByFilter(ctx, publishedFilter(now))
}

func (r *PostsRepoMongo) GetPublishedByCategory(ctx context.Context, categoryID int64, now time.Time) ([]*Post, error) {
	filter := publishedFilter(now)
	filter["categoryID"] = categoryID
	return r.getByFilter(ctx, filter)
}

func (r *PostsRepoMongo) GetByAuthorID(ctx context.Context, authorID int64) ([]*Post, error) {
	return r.getByFilter(ctx, bson.M{"authorID": authorID})
}

func (r *PostsRepoMongo) GetByID(ctx context.Context, id interface{}) (*Post, error) {
	res := r.collection.FindOne(ctx, bson.M{"_id": id})

	post := &Post{}
	err := res.Decode(post)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return post, nil
}

func (r *PostsRepoMongo) Add(ctx context.Context, p *Post) (interface{}, error) {
	res, err := r.collection.InsertOne(ctx, p)
	if err != nil {
		return nil, err
	}

	return res.GetInsertedID(), nil
}

func (r *PostsRepoMongo) Update(ctx context.Context, p *Post) (bool, error) {
	update := bson.M{
		"title":     p.Title,
		"text":      p.Text,
		"image":     p.Image,
		"published": p.Published,
		"pubDate":   p.PubDate,
	}
	unset := bson.M{}
	if p.CategoryID != nil {
		update["categoryID"] = *p.CategoryID
	} else {
		unset["categoryID"] = ""
	}
	if p.LocationID != nil {
		update["locationID"] = *p.LocationID
	} else {
		unset["locationID"] = ""
	}

	doc := bson.M{"$set": update}
	if len(unset) > 0 {
		doc["$unset"] = unset
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": p.ID}, doc)
	if err != nil {
		return false, err
	}

	return res.GetMatchedCount() > 0, nil
}

func (r *PostsRepoMongo) Delete(ctx context.Context, id interface{}) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}

	return res.GetDeletedCount() > 0, nil
}

func (r *PostsRepoMongo) DeleteByAuthorID(ctx context.Context, authorID int64) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"authorID": authorID})
	if err != nil {
		return 0, err
	}

	return res.GetDeletedCount(), nil
}

// ClearCategory detaches every post from the deleted category. Posts survive,
// only the reference is dropped.
func (r *PostsRepoMongo) ClearCategory(ctx context.Context, categoryID int64) (int64, error) {
	res, err := r.collection.UpdateMany(ctx, bson.M{"categoryID": categoryID},
		bson.M{"$unset": bson.M{"categoryID": ""}})
	if err != nil {
		return 0, err
	}

	return res.GetModifiedCount(), nil
}

func (r *PostsRepoMongo) ClearLocation(ctx context.Context, locationID int64) (int64, error) {
	res, err := r.collection.UpdateMany(ctx, bson.M{"locationID": locationID},
		bson.M{"$unset": bson.M{"locationID": ""}})
	if err != nil {
		return 0, err
	}

	return res.GetModifiedCount(), nil
}

func (r *PostsRepoMongo) ParseID(in string) (interface{}, error) {
	return primitive.ObjectIDFromHex(in)
}

func (r *PostsRepoMongo) getByFilter(ctx context.Context, filter bson.M) ([]*Post, error) {
	cur, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	defer cur.Close(ctx)

	var posts []*Post
	err = cur.All(ctx, &posts)
	if err != nil {
		return nil, err
	}

	return posts, nil
}
