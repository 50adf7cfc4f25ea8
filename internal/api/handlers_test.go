package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/rentalhub/internal/core"
	"github.com/example/rentalhub/internal/metrics"
	"github.com/example/rentalhub/internal/middleware"
	"github.com/example/rentalhub/internal/mocks"
	"github.com/example/rentalhub/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// tokenVerifier accepts "tok-<uid>".
type tokenVerifier struct{}

func (tokenVerifier) Verify(_ context.Context, token string) (*models.Identity, error) {
	uid, ok := strings.CutPrefix(token, "tok-")
	if !ok || uid == "" {
		return nil, errors.New("invalid token")
	}
	return &models.Identity{UID: uid, Email: uid + "@example.com"}, nil
}

type fakeSessions struct {
	signedIn  []models.Identity
	signedOut []string
	err       error
}

func (f *fakeSessions) SignIn(identity models.Identity) {
	f.signedIn = append(f.signedIn, identity)
}

func (f *fakeSessions) SignOut(_ context.Context, uid string) error {
	if f.err != nil {
		return f.err
	}
	f.signedOut = append(f.signedOut, uid)
	return nil
}

type testServer struct {
	router   *gin.Engine
	accounts *mocks.MockAccountService
	listings *mocks.MockListingService
	payments *mocks.MockPaymentService
	sessions *fakeSessions
}

func newTestServer(t *testing.T, users ...*models.User) *testServer {
	t.Helper()
	byID := map[string]*models.User{}
	for _, u := range users {
		byID[u.ID] = u
	}
	s := &testServer{
		router:   gin.New(),
		accounts: &mocks.MockAccountService{},
		listings: &mocks.MockListingService{},
		payments: &mocks.MockPaymentService{},
		sessions: &fakeSessions{},
	}
	s.accounts.GetAccountFunc = func(_ context.Context, userID string) (*models.User, error) {
		if u, ok := byID[userID]; ok {
			return u, nil
		}
		return nil, core.ErrUserNotFound
	}

	logger := zap.NewNop()
	auth := middleware.NewAuthMiddleware(tokenVerifier{}, s.accounts, logger)
	SetupRoutes(s.router, logger, auth, middleware.NewRateLimiter(2, logger), s.sessions,
		Services{Accounts: s.accounts, Listings: s.listings, Payments: s.payments}, metrics.New())
	return s
}

func (s *testServer) do(method, path, uid string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if uid != "" {
		req.Header.Set("Authorization", "Bearer tok-"+uid)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) doJSON(method, path, uid string, payload any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(payload)
	return s.do(method, path, uid, bytes.NewReader(raw), "application/json")
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

var paidUser = &models.User{ID: "paid", Name: "Rudo", IsPaid: true}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/health", "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "UP")

	s.do(http.MethodGet, "/api/v1/listings", "", nil, "")
	w = s.do(http.MethodGet, "/metrics", "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInitializeProfile(t *testing.T) {
	t.Run("creates account", func(t *testing.T) {
		s := newTestServer(t)
		var got models.InitializeProfileRequest
		s.accounts.InitializeProfileFunc = func(_ context.Context, identity models.Identity, req models.InitializeProfileRequest) (*models.User, bool, error) {
			got = req
			return &models.User{ID: identity.UID, Name: req.Name}, true, nil
		}

		w := s.doJSON(http.MethodPost, "/api/v1/users/initialize", "new", models.InitializeProfileRequest{Name: "Farai", Phone: "0771234567"})

		require.Equal(t, http.StatusCreated, w.Code)
		resp := decode[InitializeProfileResponse](t, w)
		assert.True(t, resp.Created)
		assert.Equal(t, "Farai", resp.User.Name)
		assert.Equal(t, models.TrialNone, resp.Tier.TrialStatus)
		assert.Equal(t, "0771234567", got.Phone)
		require.Len(t, s.sessions.signedIn, 1)
		assert.Equal(t, "new", s.sessions.signedIn[0].UID)
	})

	t.Run("existing account without body", func(t *testing.T) {
		s := newTestServer(t, paidUser)
		s.accounts.InitializeProfileFunc = func(context.Context, models.Identity, models.InitializeProfileRequest) (*models.User, bool, error) {
			return paidUser, false, nil
		}

		w := s.do(http.MethodPost, "/api/v1/users/initialize", "paid", nil, "")

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[InitializeProfileResponse](t, w)
		assert.False(t, resp.Created)
		assert.True(t, resp.Tier.ContentUnlocked)
		assert.Empty(t, s.sessions.signedIn)
	})

	t.Run("anonymous", func(t *testing.T) {
		s := newTestServer(t)
		w := s.do(http.MethodPost, "/api/v1/users/initialize", "", nil, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "/auth/login?next=%2Fapi%2Fv1%2Fusers%2Finitialize", decode[ErrorResponse](t, w).RedirectTo)
	})
}

func TestGetCurrentUser(t *testing.T) {
	s := newTestServer(t, paidUser)

	w := s.do(http.MethodGet, "/api/v1/users/me", "paid", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[AccountResponse](t, w)
	assert.Equal(t, "paid", resp.User.ID)
	assert.True(t, resp.Tier.ContentUnlocked)

	w = s.do(http.MethodGet, "/api/v1/users/me", "fresh", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListMyListings(t *testing.T) {
	s := newTestServer(t, paidUser)
	s.listings.ListOwnerListingsFunc = func(_ context.Context, ownerID string) ([]*models.Listing, error) {
		return []*models.Listing{{ID: "l1", OwnerID: ownerID}}, nil
	}

	w := s.do(http.MethodGet, "/api/v1/users/me/listings", "paid", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.EqualValues(t, 1, body["count"])
}

func TestSignOut(t *testing.T) {
	s := newTestServer(t, paidUser)

	w := s.do(http.MethodPost, "/api/v1/auth/signout", "paid", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"paid"}, s.sessions.signedOut)

	s.sessions.err = fmt.Errorf("%w: revoke failed", core.ErrUpstream)
	w = s.do(http.MethodPost, "/api/v1/auth/signout", "paid", nil, "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestListListings(t *testing.T) {
	s := newTestServer(t)
	var gotFilter models.ListingFilter
	var gotCursor string
	var gotSize int
	s.listings.FetchPageFunc = func(_ context.Context, filter models.ListingFilter, cursor string, pageSize int) (*models.ListingPage, error) {
		if pageSize > core.MaxPageSize {
			return nil, fmt.Errorf("%w: pageSize too large", core.ErrValidation)
		}
		gotFilter, gotCursor, gotSize = filter, cursor, pageSize
		return &models.ListingPage{
			Listings: []*models.Listing{
				{ID: "a", Title: "Garden cottage", Description: "Fitted kitchen"},
				{ID: "b", Title: "Studio flat", Description: "Close to town"},
			},
			NextCursor: "b",
			HasMore:    true,
		}, nil
	}

	t.Run("defaults", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/listings", "", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[ListingFeedResponse](t, w)
		assert.Len(t, resp.Listings, 2)
		assert.Equal(t, core.DefaultPageSize, gotSize)
		assert.Empty(t, gotCursor)
		assert.Equal(t, models.ListingFilter{}, gotFilter)
	})

	t.Run("filters and search", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/listings?status=available&cursor=x1&pageSize=2&q=KITCHEN", "", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[ListingFeedResponse](t, w)
		require.Len(t, resp.Listings, 1)
		assert.Equal(t, "a", resp.Listings[0].ID)
		assert.True(t, resp.HasMore, "search does not end pagination")
		assert.Equal(t, "b", resp.NextCursor)
		assert.Equal(t, models.StatusAvailable, gotFilter.Status)
		assert.Equal(t, "x1", gotCursor)
		assert.Equal(t, 2, gotSize)
	})

	t.Run("bad page size", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/listings?pageSize=abc", "", nil, "").Code)
		assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/listings?pageSize=500", "", nil, "").Code)
	})
}

func TestListListings_Gating(t *testing.T) {
	expiredStart := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	lapsed := &models.User{ID: "lapsed", TrialStartDate: &expiredStart}
	s := newTestServer(t, paidUser, lapsed)
	s.listings.FetchPageFunc = func(context.Context, models.ListingFilter, string, int) (*models.ListingPage, error) {
		return &models.ListingPage{Listings: []*models.Listing{
			{ID: "a", OwnerID: "someone", Images: []string{"1.jpg", "2.jpg", "3.jpg"}, Location: &models.GeoPoint{Lat: -17.8, Lng: 31.05}},
			{ID: "b", OwnerID: "lapsed", Images: []string{"1.jpg", "2.jpg"}, Location: &models.GeoPoint{Lat: -17.8, Lng: 31.05}},
		}}, nil
	}

	tests := []struct {
		name        string
		uid         string
		wantBlurred []bool
	}{
		{"anonymous", "", []bool{true, true}},
		{"signed in without profile", "nobody", []bool{true, true}},
		{"expired trial sees own listing", "lapsed", []bool{true, false}},
		{"paid", "paid", []bool{false, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodGet, "/api/v1/listings", tt.uid, nil, "")
			require.Equal(t, http.StatusOK, w.Code)
			resp := decode[ListingFeedResponse](t, w)
			require.Len(t, resp.Listings, 2)
			for i, card := range resp.Listings {
				assert.Equal(t, tt.wantBlurred[i], card.Blurred, card.ID)
				if tt.wantBlurred[i] {
					assert.Len(t, card.Images, 1)
					assert.Nil(t, card.Location)
				} else {
					assert.Greater(t, len(card.Images), 1)
					assert.NotNil(t, card.Location)
				}
			}
		})
	}
}

func TestGetListing(t *testing.T) {
	s := newTestServer(t, paidUser)
	var gotViewer core.Viewer
	s.listings.GetListingFunc = func(_ context.Context, id string, viewer core.Viewer) (*models.ListingDetail, error) {
		gotViewer = viewer
		if id != "l1" {
			return nil, core.ErrListingNotFound
		}
		return &models.ListingDetail{Listing: models.Listing{ID: id}, Blurred: !viewer.Tier.ContentUnlocked}, nil
	}

	w := s.do(http.MethodGet, "/api/v1/listings/l1", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gotViewer.Anonymous())
	assert.True(t, decode[models.ListingDetail](t, w).Blurred)

	w = s.do(http.MethodGet, "/api/v1/listings/l1", "paid", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "paid", gotViewer.UserID)
	assert.False(t, decode[models.ListingDetail](t, w).Blurred)

	w = s.do(http.MethodGet, "/api/v1/listings/missing", "", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, core.ErrListingNotFound.Error(), decode[ErrorResponse](t, w).Error)
}

func multipartListing(t *testing.T, fields map[string][]string, images map[string]string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, vs := range fields {
		for _, v := range vs {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	for name, content := range images {
		fw, err := mw.CreateFormFile(imagesField, name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestCreateListing(t *testing.T) {
	s := newTestServer(t, paidUser)
	var gotReq models.CreateListingRequest
	var gotOwner string
	var gotImages []string
	s.listings.CreateListingFunc = func(_ context.Context, ownerID string, req models.CreateListingRequest, images []core.ImageUpload) (*models.Listing, error) {
		gotOwner, gotReq = ownerID, req
		for _, img := range images {
			b, err := io.ReadAll(img.Body)
			require.NoError(t, err)
			gotImages = append(gotImages, img.Name+"="+string(b))
		}
		return &models.Listing{ID: "new", OwnerID: ownerID, Title: req.Title}, nil
	}

	body, ct := multipartListing(t, map[string][]string{
		"title":     {"Two bed flat"},
		"price":     {"350"},
		"amenities": {"wifi, parking", "borehole"},
		"lat":       {"-17.8"},
		"lng":       {"31.05"},
	}, map[string]string{"front.jpg": "jpeg-bytes"})

	w := s.do(http.MethodPost, "/api/v1/listings", "paid", body, ct)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "paid", gotOwner)
	assert.Equal(t, "Two bed flat", gotReq.Title)
	assert.InDelta(t, 350.0, gotReq.Price, 1e-9)
	assert.Equal(t, []string{"wifi", "parking", "borehole"}, gotReq.Amenities)
	assert.Equal(t, models.StatusAvailable, gotReq.Status)
	require.NotNil(t, gotReq.Lat)
	assert.InDelta(t, -17.8, *gotReq.Lat, 1e-9)
	assert.Equal(t, []string{"front.jpg=jpeg-bytes"}, gotImages)
}

func TestCreateListing_Errors(t *testing.T) {
	s := newTestServer(t, paidUser)
	s.listings.CreateListingFunc = func(context.Context, string, models.CreateListingRequest, []core.ImageUpload) (*models.Listing, error) {
		return nil, fmt.Errorf("%w: at least one image is required", core.ErrValidation)
	}

	body, ct := multipartListing(t, map[string][]string{"title": {"No photos"}, "price": {"10"}}, nil)
	w := s.do(http.MethodPost, "/api/v1/listings", "paid", body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[ErrorResponse](t, w).Details, "image")

	body, ct = multipartListing(t, map[string][]string{"title": {"Bad price"}, "price": {"cheap"}}, nil)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/v1/listings", "paid", body, ct).Code)

	body, ct = multipartListing(t, map[string][]string{"title": {"x"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/v1/listings", "", body, ct).Code)
}

func TestUpdateStatus(t *testing.T) {
	s := newTestServer(t, paidUser)
	s.listings.UpdateStatusFunc = func(_ context.Context, viewer core.Viewer, id string, status models.ListingStatus) (*models.Listing, error) {
		if id == "someone-elses" {
			return nil, core.ErrForbiddenAccess
		}
		return &models.Listing{ID: id, Status: status, OwnerID: viewer.UserID}, nil
	}

	w := s.doJSON(http.MethodPatch, "/api/v1/listings/l1/status", "paid", models.UpdateListingStatusRequest{Status: models.StatusTaken})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusTaken, decode[models.Listing](t, w).Status)

	w = s.doJSON(http.MethodPatch, "/api/v1/listings/someone-elses/status", "paid", models.UpdateListingStatusRequest{Status: models.StatusTaken})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.doJSON(http.MethodPatch, "/api/v1/listings/l1/status", "paid", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNearby(t *testing.T) {
	s := newTestServer(t, paidUser, &models.User{ID: "expired"})
	var gotRadius int
	s.listings.NearbyFunc = func(_ context.Context, _ string, viewer core.Viewer, radius int) ([]models.Place, error) {
		if !viewer.Tier.ContentUnlocked {
			return nil, core.ErrContentLocked
		}
		gotRadius = radius
		return []models.Place{{Name: "Corner Cafe", Type: "restaurant", DistanceKm: 0.3}}, nil
	}

	w := s.do(http.MethodGet, "/api/v1/listings/l1/nearby", "paid", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[NearbyResponse](t, w)
	assert.Equal(t, 1000, resp.RadiusMeters)
	assert.Zero(t, gotRadius)
	require.Len(t, resp.Places, 1)

	w = s.do(http.MethodGet, "/api/v1/listings/l1/nearby?radius=2500", "paid", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2500, gotRadius)

	assert.Equal(t, http.StatusPaymentRequired, s.do(http.MethodGet, "/api/v1/listings/l1/nearby", "expired", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/v1/listings/l1/nearby", "", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/v1/listings/l1/nearby?radius=far", "paid", nil, "").Code)
}

func TestVerifyPayment(t *testing.T) {
	req := models.VerifyPaymentRequest{TransactionID: "MP240601.1200.A1", PhoneNumber: "0771234567"}

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "verified", wantStatus: http.StatusOK},
		{name: "rejected", err: core.ErrPaymentRejected, wantStatus: http.StatusPaymentRequired},
		{name: "reused", err: core.ErrTransactionAlreadyUsed, wantStatus: http.StatusConflict},
		{name: "invalid", err: fmt.Errorf("%w: amount too low", core.ErrValidation), wantStatus: http.StatusBadRequest},
		{name: "rail down", err: fmt.Errorf("%w: timeout", core.ErrUpstream), wantStatus: http.StatusBadGateway},
		{name: "unexpected", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, paidUser)
			if tt.err != nil {
				s.payments.VerifyPaymentFunc = func(context.Context, string, models.VerifyPaymentRequest) (*models.PaymentTransaction, error) {
					return nil, tt.err
				}
			}
			w := s.doJSON(http.MethodPost, "/api/v1/payments/verify", "paid", req)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestVerifyPayment_BindingAndRateLimit(t *testing.T) {
	s := newTestServer(t, paidUser)
	calls := 0
	s.payments.VerifyPaymentFunc = func(_ context.Context, uid string, req models.VerifyPaymentRequest) (*models.PaymentTransaction, error) {
		calls++
		return &models.PaymentTransaction{ID: req.TransactionID, UserID: uid, Status: models.PaymentVerified}, nil
	}

	w := s.doJSON(http.MethodPost, "/api/v1/payments/verify", "paid", map[string]string{"transactionId": "MP1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.doJSON(http.MethodPost, "/api/v1/payments/verify", "paid", models.VerifyPaymentRequest{TransactionID: "MP240601", PhoneNumber: "0771234567"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MP240601", decode[PaymentResponse](t, w).Transaction.ID)

	w = s.doJSON(http.MethodPost, "/api/v1/payments/verify", "paid", models.VerifyPaymentRequest{TransactionID: "MP240602", PhoneNumber: "0771234567"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, 1, calls)
}

func TestAdminRoutes(t *testing.T) {
	admin := &models.User{ID: "boss", IsAdmin: true}
	s := newTestServer(t, paidUser, admin)
	s.accounts.ListAccountsFunc = func(context.Context) ([]*models.User, error) {
		return []*models.User{paidUser, admin}, nil
	}
	var gotPaid *bool
	s.accounts.SetPaidFunc = func(_ context.Context, uid string, isPaid bool) (*models.User, error) {
		if uid == "ghost" {
			return nil, core.ErrUserNotFound
		}
		gotPaid = &isPaid
		return &models.User{ID: uid, IsPaid: isPaid}, nil
	}

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/v1/admin/users", "paid", nil, "").Code)

	w := s.do(http.MethodGet, "/api/v1/admin/users", "boss", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[UsersResponse](t, w).Count)

	w = s.doJSON(http.MethodPatch, "/api/v1/admin/users/paid/payment", "boss", map[string]bool{"isPaid": false})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, gotPaid)
	assert.False(t, *gotPaid)

	w = s.doJSON(http.MethodPatch, "/api/v1/admin/users/paid/payment", "boss", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.doJSON(http.MethodPatch, "/api/v1/admin/users/ghost/payment", "boss", map[string]bool{"isPaid": true})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
