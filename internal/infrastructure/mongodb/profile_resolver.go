package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ProfileResolver checks company profile references against the shared
// company_profiles collection. The profile service owns the documents;
// this side only reads existence.
type ProfileResolver struct {
	collection *mongo.Collection
}

// NewProfileResolver creates a new ProfileResolver
func NewProfileResolver(db *mongo.Database) *ProfileResolver {
	return &ProfileResolver{
		collection: db.Collection("company_profiles"),
	}
}

// Exists reports whether the profile resolves within the company
func (r *ProfileResolver) Exists(ctx context.Context, companyID, profileID string) (bool, error) {
	filter := bson.M{"companyId": companyID, "profileId": profileID}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
