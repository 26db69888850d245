package gateway

import (
	"testing"

	"photovault/internal/models"
	"photovault/internal/security"
)

func TestAuthorize(t *testing.T) {
	const owner, friend, albumGuest, stranger = 1, 2, 3, 4

	private := models.Photo{
		ImageHash: "h1",
		OwnerID:   owner,
		SharedTo:  []int64{friend},
		Albums: []models.AlbumShare{
			{AlbumID: 10, SharedTo: []int64{99}},
			{AlbumID: 11, SharedTo: []int64{albumGuest}},
		},
	}
	public := private
	public.Public = true

	invalid := security.Principal{Kind: security.PrincipalInvalid}

	tests := []struct {
		name      string
		principal security.Principal
		photo     models.Photo
		want      Decision
	}{
		{"public anonymous", security.Anonymous(), public, Allow},
		{"public invalid token", invalid, public, Allow},
		{"public stranger", security.Identified(stranger), public, Allow},
		{"private anonymous", security.Anonymous(), private, DenyForbidden},
		{"private invalid token", invalid, private, DenyForbidden},
		{"owner", security.Identified(owner), private, Allow},
		{"direct share", security.Identified(friend), private, Allow},
		{"album share", security.Identified(albumGuest), private, Allow},
		{"stranger", security.Identified(stranger), private, DenyNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Authorize(tt.principal, tt.photo); got != tt.want {
				t.Errorf("Authorize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAuthorize_EmptyRelations(t *testing.T) {
	photo := models.Photo{ImageHash: "h", OwnerID: 1}
	if got := Authorize(security.Identified(2), photo); got != DenyNotFound {
		t.Errorf("Authorize() = %v, want DenyNotFound", got)
	}
}
