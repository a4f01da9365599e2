package models

import "time"

type AssetKind string

const (
	AssetKindImage AssetKind = "image"
	AssetKindVideo AssetKind = "video"
)

// Asset references one binary object in remote storage.
type Asset struct {
	StorageID string `bson:"storage_id" json:"storage_id"`
	URL       string `bson:"url" json:"url"`
}

// Media is the durable record for one published video. A record is only
// inserted once both assets are durably stored; there is no state with a
// dangling asset reference.
type Media struct {
	ID          string    `bson:"_id" json:"id"`
	OwnerID     string    `bson:"owner_id" json:"owner_id"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	Tags        []string  `bson:"tags" json:"tags"`
	ImageAsset  Asset     `bson:"image_asset" json:"image_asset"`
	VideoAsset  Asset     `bson:"video_asset" json:"video_asset"`
	Views       int64     `bson:"views" json:"views"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// MediaPatch is a partial update to a Media record. Nil fields are left
// untouched. Owner, assets, views and created_at are not patchable.
type MediaPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}
