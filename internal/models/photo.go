package models

// AlbumShare is the sharing side of a user album the photo belongs to.
type AlbumShare struct {
	AlbumID  int64
	SharedTo []int64
}

type Photo struct {
	ImageHash string
	OwnerID   int64
	Public    bool
	SharedTo  []int64
	IsVideo   bool
	// OriginalPath is the absolute path of the photo's main file.
	OriginalPath string
	// LegacyThumbnailPath is set for photos whose thumbnail predates the
	// per-size naming scheme; relative to the media root.
	LegacyThumbnailPath *string
	EmbeddedMediaCount  int
	Albums              []AlbumShare
}

func (p Photo) SharedWith(userID int64) bool {
	return containsID(p.SharedTo, userID)
}

func (a AlbumShare) SharedWith(userID int64) bool {
	return containsID(a.SharedTo, userID)
}

func containsID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
