package core_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/rentalhub/internal/core"
	"github.com/example/rentalhub/internal/db"
	"github.com/example/rentalhub/internal/mocks"
	"github.com/example/rentalhub/internal/models"
)

type listingFixture struct {
	listings *mocks.MockListingRepository
	users    *mocks.MockUserRepository
	store    *mocks.MockObjectStore
	places   *mocks.MockPlacesClient
	svc      core.ListingService
}

func newListingFixture(t *testing.T, listings ...*models.Listing) *listingFixture {
	t.Helper()
	f := &listingFixture{
		listings: mocks.NewMockListingRepository(listings...),
		users:    mocks.NewMockUserRepository(&models.User{ID: "owner", Name: "Landlord", Email: "owner@example.com", Phone: "0771234567"}),
		store:    &mocks.MockObjectStore{},
		places:   &mocks.MockPlacesClient{},
	}
	f.svc = core.NewListingService(f.listings, f.users, f.store, f.places, newRedis(t), time.Minute, nil, zap.NewNop())
	return f
}

func seedListings(n int) []*models.Listing {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	out := make([]*models.Listing, 0, n)
	for i := 0; i < n; i++ {
		s := models.StatusAvailable
		if i%3 == 0 {
			s = models.StatusTaken
		}
		out = append(out, &models.Listing{
			ID:        fmt.Sprintf("l%02d", i),
			Title:     fmt.Sprintf("Listing %d", i),
			Status:    s,
			OwnerID:   "owner",
			Images:    []string{"a.jpg", "b.jpg", "c.jpg"},
			Location:  &models.GeoPoint{Lat: -17.8, Lng: 31.05},
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	return out
}

func TestFetchPage_Pagination(t *testing.T) {
	f := newListingFixture(t, seedListings(20)...)
	ctx := context.Background()

	page, err := f.svc.FetchPage(ctx, models.ListingFilter{}, "", 9)
	require.NoError(t, err)
	require.Len(t, page.Listings, 9)
	assert.True(t, page.HasMore)
	assert.Equal(t, "l19", page.Listings[0].ID, "newest first")
	assert.Equal(t, "l11", page.NextCursor)

	page, err = f.svc.FetchPage(ctx, models.ListingFilter{}, page.NextCursor, 9)
	require.NoError(t, err)
	assert.Len(t, page.Listings, 9)
	assert.True(t, page.HasMore)

	page, err = f.svc.FetchPage(ctx, models.ListingFilter{}, page.NextCursor, 9)
	require.NoError(t, err)
	assert.Len(t, page.Listings, 2)
	assert.False(t, page.HasMore)
}

func TestFetchPage_ExactMultipleNeedsOneEmptyFetch(t *testing.T) {
	f := newListingFixture(t, seedListings(9)...)

	page, err := f.svc.FetchPage(context.Background(), models.ListingFilter{}, "", 9)
	require.NoError(t, err)
	assert.True(t, page.HasMore)

	page, err = f.svc.FetchPage(context.Background(), models.ListingFilter{}, page.NextCursor, 9)
	require.NoError(t, err)
	assert.Empty(t, page.Listings)
	assert.False(t, page.HasMore)
	assert.Empty(t, page.NextCursor)
}

func TestFetchPage_StatusFilter(t *testing.T) {
	f := newListingFixture(t, seedListings(12)...)

	page, err := f.svc.FetchPage(context.Background(), models.ListingFilter{Status: models.StatusTaken}, "", 12)
	require.NoError(t, err)
	assert.Len(t, page.Listings, 4)
	for _, l := range page.Listings {
		assert.Equal(t, models.StatusTaken, l.Status)
	}
	assert.False(t, page.HasMore)
}

func TestFetchPage_Validation(t *testing.T) {
	f := newListingFixture(t)
	ctx := context.Background()

	for _, size := range []int{0, -1, core.MaxPageSize + 1} {
		_, err := f.svc.FetchPage(ctx, models.ListingFilter{}, "", size)
		assert.ErrorIs(t, err, core.ErrValidation, "size %d", size)
	}
	_, err := f.svc.FetchPage(ctx, models.ListingFilter{Status: "sold"}, "", 9)
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = f.svc.FetchPage(ctx, models.ListingFilter{}, "missing", 9)
	assert.ErrorIs(t, err, core.ErrValidation)

	f.listings.QueryFunc = func(ctx context.Context, q db.ListingQuery) ([]*models.Listing, error) {
		return nil, errors.New("unavailable")
	}
	_, err = f.svc.FetchPage(ctx, models.ListingFilter{}, "", 9)
	assert.ErrorIs(t, err, core.ErrUpstream)
}

func ptr(f float64) *float64 { return &f }

func image(name string) core.ImageUpload {
	return core.ImageUpload{Name: name, ContentType: "image/jpeg", Body: strings.NewReader("jpeg")}
}

func TestCreateListing(t *testing.T) {
	freezeTime(t)
	f := newListingFixture(t)

	listing, err := f.svc.CreateListing(context.Background(), "owner", models.CreateListingRequest{
		Title:     "  Garden cottage ",
		Price:     350,
		Amenities: []string{"wifi", " ", "parking"},
		Lat:       ptr(-17.8),
		Lng:       ptr(31.05),
	}, []core.ImageUpload{image("front.jpg"), image("back.jpg")})
	require.NoError(t, err)

	assert.Equal(t, "Garden cottage", listing.Title)
	assert.Equal(t, models.StatusAvailable, listing.Status)
	assert.Equal(t, []string{"wifi", "parking"}, listing.Amenities)
	require.Len(t, listing.Images, 2)
	assert.Equal(t, fmt.Sprintf("https://storage.test/listings/owner/%d-front.jpg", fixedNow.UnixMilli()), listing.Images[0])
	assert.NotEmpty(t, listing.ID)
}

func TestCreateListing_ValidatesBeforeUpload(t *testing.T) {
	tests := []struct {
		name   string
		req    models.CreateListingRequest
		images []core.ImageUpload
		want   string
	}{
		{"no images", models.CreateListingRequest{Title: "x", Lat: ptr(1), Lng: ptr(1)}, nil, "at least one image"},
		{"no location", models.CreateListingRequest{Title: "x"}, []core.ImageUpload{image("a.jpg")}, "location is required"},
		{"negative price", models.CreateListingRequest{Title: "x", Price: -1, Lat: ptr(1), Lng: ptr(1)}, []core.ImageUpload{image("a.jpg")}, "price"},
		{"bad status", models.CreateListingRequest{Title: "x", Status: "sold", Lat: ptr(1), Lng: ptr(1)}, []core.ImageUpload{image("a.jpg")}, "status"},
		{"missing title", models.CreateListingRequest{Lat: ptr(1), Lng: ptr(1)}, []core.ImageUpload{image("a.jpg")}, "title"},
		{"out of range", models.CreateListingRequest{Title: "x", Lat: ptr(91), Lng: ptr(1)}, []core.ImageUpload{image("a.jpg")}, "out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newListingFixture(t)
			_, err := f.svc.CreateListing(context.Background(), "owner", tt.req, tt.images)
			require.ErrorIs(t, err, core.ErrValidation)
			assert.Contains(t, err.Error(), tt.want)
			assert.Zero(t, f.store.Uploads(), "no network call on validation failure")
		})
	}
}

func TestCreateListing_UploadFailure(t *testing.T) {
	f := newListingFixture(t)
	f.store.UploadFunc = func(context.Context, string, string, io.Reader) (string, error) {
		return "", errors.New("bucket unavailable")
	}

	_, err := f.svc.CreateListing(context.Background(), "owner", models.CreateListingRequest{Title: "x", Lat: ptr(1), Lng: ptr(1)}, []core.ImageUpload{image("a.jpg")})
	assert.ErrorIs(t, err, core.ErrUpstream)
	assert.Empty(t, f.listings.Listings)
}

func TestGetListing_Gating(t *testing.T) {
	listings := seedListings(1)
	unlocked := models.AccessTier{TrialStatus: models.TrialActive, DaysLeft: 3, ContentUnlocked: true}
	expired := models.AccessTier{TrialStatus: models.TrialExpired}

	tests := []struct {
		name        string
		viewer      core.Viewer
		wantBlurred bool
	}{
		{"anonymous", core.Viewer{}, true},
		{"expired trial", core.Viewer{UserID: "u1", Tier: expired}, true},
		{"admin without tier is still locked", core.Viewer{UserID: "admin", IsAdmin: true}, true},
		{"active trial", core.Viewer{UserID: "u1", Tier: unlocked}, false},
		{"paid", core.Viewer{UserID: "u1", Tier: models.AccessTier{TrialStatus: models.TrialNone, ContentUnlocked: true}}, false},
		{"owner", core.Viewer{UserID: "owner", Tier: expired}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newListingFixture(t, listings...)
			detail, err := f.svc.GetListing(context.Background(), "l00", tt.viewer)
			require.NoError(t, err)

			assert.Equal(t, tt.wantBlurred, detail.Blurred)
			if tt.wantBlurred {
				assert.Equal(t, []string{"a.jpg"}, detail.Images)
				assert.Nil(t, detail.Location)
				assert.Empty(t, detail.StaticMapURL)
				assert.Nil(t, detail.Contact)
				return
			}
			assert.Len(t, detail.Images, 3)
			assert.NotNil(t, detail.Location)
			assert.NotEmpty(t, detail.StaticMapURL)
			require.NotNil(t, detail.Contact)
			assert.Equal(t, "owner@example.com", detail.Contact.Email)
		})
	}
}

func TestGateFeed(t *testing.T) {
	listings := seedListings(2)
	listings[1].OwnerID = "u1"
	unlocked := models.AccessTier{TrialStatus: models.TrialActive, DaysLeft: 3, ContentUnlocked: true}

	tests := []struct {
		name        string
		viewer      core.Viewer
		wantBlurred []bool
	}{
		{"anonymous", core.Viewer{}, []bool{true, true}},
		{"expired trial sees own listing only", core.Viewer{UserID: "u1", Tier: models.AccessTier{TrialStatus: models.TrialExpired}}, []bool{true, false}},
		{"admin without tier", core.Viewer{UserID: "admin", IsAdmin: true}, []bool{true, true}},
		{"active trial", core.Viewer{UserID: "u2", Tier: unlocked}, []bool{false, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards := core.GateFeed(listings, tt.viewer)
			require.Len(t, cards, len(listings))
			for i, card := range cards {
				assert.Equal(t, listings[i].ID, card.ID)
				assert.Equal(t, tt.wantBlurred[i], card.Blurred)
				if tt.wantBlurred[i] {
					assert.Equal(t, []string{"a.jpg"}, card.Images)
					assert.Nil(t, card.Location)
					continue
				}
				assert.Len(t, card.Images, 3)
				assert.NotNil(t, card.Location)
			}
		})
	}

	assert.Len(t, listings[0].Images, 3, "source listings are not modified")
	assert.NotNil(t, listings[0].Location)
}

func TestGetListing_NotFound(t *testing.T) {
	f := newListingFixture(t)
	_, err := f.svc.GetListing(context.Background(), "nope", core.Viewer{})
	assert.ErrorIs(t, err, core.ErrListingNotFound)
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	f := newListingFixture(t, seedListings(1)...)
	got, err := f.svc.UpdateStatus(ctx, core.Viewer{UserID: "owner"}, "l00", models.StatusWithdrawn)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWithdrawn, got.Status)

	got, err = f.svc.UpdateStatus(ctx, core.Viewer{UserID: "admin", IsAdmin: true}, "l00", models.StatusAvailable)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, got.Status)

	_, err = f.svc.UpdateStatus(ctx, core.Viewer{UserID: "stranger"}, "l00", models.StatusTaken)
	assert.ErrorIs(t, err, core.ErrForbiddenAccess)

	_, err = f.svc.UpdateStatus(ctx, core.Viewer{}, "l00", models.StatusTaken)
	assert.ErrorIs(t, err, core.ErrAuthRequired)

	_, err = f.svc.UpdateStatus(ctx, core.Viewer{UserID: "owner"}, "l00", "sold")
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = f.svc.UpdateStatus(ctx, core.Viewer{UserID: "owner"}, "nope", models.StatusTaken)
	assert.ErrorIs(t, err, core.ErrListingNotFound)
}

func TestListOwnerListings(t *testing.T) {
	all := seedListings(3)
	all[1].OwnerID = "someone-else"
	f := newListingFixture(t, all...)

	got, err := f.svc.ListOwnerListings(context.Background(), "owner")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestNearby(t *testing.T) {
	ctx := context.Background()
	viewer := core.Viewer{UserID: "u1", Tier: models.AccessTier{ContentUnlocked: true}}

	f := newListingFixture(t, seedListings(1)...)
	f.places.NearbyFunc = func(ctx context.Context, center models.GeoPoint, radius int, types []string) ([]models.Place, error) {
		assert.Equal(t, 1000, radius)
		assert.Equal(t, []string{"restaurant", "school", "hospital", "bus_station"}, types)
		return []models.Place{{Name: "Cafe", Type: "restaurant", DistanceKm: 0.2}}, nil
	}

	got, err := f.svc.Nearby(ctx, "l00", viewer, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = f.svc.Nearby(ctx, "l00", viewer, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, f.places.NearbyCalls(), "second lookup served from cache")

	_, err = f.svc.Nearby(ctx, "l00", core.Viewer{UserID: "u2"}, 0)
	assert.ErrorIs(t, err, core.ErrContentLocked)

	_, err = f.svc.Nearby(ctx, "l00", viewer, core.MaxNearbyRadius+1)
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestNearby_UpstreamFailure(t *testing.T) {
	f := newListingFixture(t, seedListings(1)...)
	f.places.NearbyFunc = func(context.Context, models.GeoPoint, int, []string) ([]models.Place, error) {
		return nil, errors.New("OVER_QUERY_LIMIT")
	}
	_, err := f.svc.Nearby(context.Background(), "l00", core.Viewer{UserID: "owner"}, 500)
	assert.ErrorIs(t, err, core.ErrUpstream)
}
