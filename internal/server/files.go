// files.go - File record collaborator boundary.
//
// File upload, metadata CRUD, pagination, and publish state changes are
// owned by an external collaborator. This core declares the record shape
// and the contract it expects so the stats endpoint and the collaborator
// agree on the files collection, but mounts no file routes itself.
package server

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FileRecord is the persisted shape of a file document as written by the
// upload collaborator. Content bytes live outside the document store.
type FileRecord struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID   primitive.ObjectID `bson:"userId" json:"userId"`
	Name     string             `bson:"name" json:"name"`
	Type     string             `bson:"type" json:"type"`
	IsPublic bool               `bson:"isPublic" json:"isPublic"`
	ParentID primitive.ObjectID `bson:"parentId,omitempty" json:"parentId"`
}

// FileStore is the contract the file collaborator implements on top of the
// shared DocumentStore handle. It exists so authenticated file endpoints
// can be mounted later without widening this core's surface.
type FileStore interface {
	Create(ctx context.Context, rec FileRecord) (string, error)
	Get(ctx context.Context, id string) (*FileRecord, error)
	ListByParent(ctx context.Context, userID, parentID string, page int64) ([]FileRecord, error)
	SetPublic(ctx context.Context, id string, public bool) error
}
