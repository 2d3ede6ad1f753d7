package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bloodlink/internal/domain"
	"bloodlink/internal/repository"
)

var requestTestNow = time.Date(2025, 9, 15, 10, 0, 0, 0, time.UTC)

type captureNotifier struct {
	mu       sync.Mutex
	critical []*domain.BloodRequest
}

func (c *captureNotifier) CriticalRequest(_ context.Context, req *domain.BloodRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.critical = append(c.critical, req)
}

func setupRequestService(t *testing.T) (*repository.MemoryRequestsRepo, *captureNotifier, RequestService) {
	requests := repository.NewMemoryRequestsRepo()
	notifier := &captureNotifier{}
	svc := NewRequestService(requests, notifier, zap.NewNop()).(*requestService)
	svc.now = func() time.Time { return requestTestNow }
	return requests, notifier, svc
}

func validRequest() CreateRequestRequest {
	return CreateRequestRequest{
		RequesterName:    "Mary Jones",
		RequesterContact: "+1 555 000 4444",
		RequesterEmail:   "mary@example.com",
		BloodGroup:       "B-",
		Location:         "Springfield",
		Urgency:          "High",
		Hospital:         "City Hospital",
		RequiredDate:     "2025-09-20",
		UnitsNeeded:      2,
	}
}

func TestCreateRequest_Success(t *testing.T) {
	_, notifier, svc := setupRequestService(t)

	resp, err := svc.CreateRequest(context.Background(), validRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, "pending", resp.Status)
	assert.Empty(t, notifier.critical)
}

func TestCreateRequest_CriticalTriggersNotification(t *testing.T) {
	_, notifier, svc := setupRequestService(t)

	req := validRequest()
	req.Urgency = "Critical"
	resp, err := svc.CreateRequest(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, notifier.critical, 1)
	assert.Equal(t, resp.RequestID, notifier.critical[0].RequestID)
	assert.Equal(t, domain.BNeg, notifier.critical[0].BloodGroup)
}

func TestCreateRequest_Validation(t *testing.T) {
	_, _, svc := setupRequestService(t)

	cases := []struct {
		name   string
		mutate func(*CreateRequestRequest)
		kind   domain.ErrorKind
	}{
		{"past required date", func(r *CreateRequestRequest) { r.RequiredDate = "2025-09-14" }, domain.ErrInvalidInput},
		{"bad urgency", func(r *CreateRequestRequest) { r.Urgency = "Urgent" }, domain.ErrInvalidInput},
		{"zero units", func(r *CreateRequestRequest) { r.UnitsNeeded = 0 }, domain.ErrInvalidInput},
		{"eleven units", func(r *CreateRequestRequest) { r.UnitsNeeded = 11 }, domain.ErrInvalidInput},
		{"bad blood group", func(r *CreateRequestRequest) { r.BloodGroup = "C+" }, domain.ErrInvalidBloodType},
		{"missing hospital", func(r *CreateRequestRequest) { r.Hospital = " " }, domain.ErrInvalidInput},
		{"bad email", func(r *CreateRequestRequest) { r.RequesterEmail = "nope" }, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, err := svc.CreateRequest(context.Background(), req)
			assert.Equal(t, tc.kind, domain.KindOf(err))
		})
	}
}

func TestListRequests_UrgencyOrdering(t *testing.T) {
	_, _, svc := setupRequestService(t)
	ctx := context.Background()

	low := validRequest()
	low.Urgency = "Low"
	_, err := svc.CreateRequest(ctx, low)
	require.NoError(t, err)

	critical := validRequest()
	critical.Urgency = "Critical"
	_, err = svc.CreateRequest(ctx, critical)
	require.NoError(t, err)

	resp, err := svc.ListRequests(ctx, ListRequestsRequest{})
	require.NoError(t, err)
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, "Critical", resp.Requests[0]["urgency"])
	assert.Equal(t, "Low", resp.Requests[1]["urgency"])
}

func TestUpdateStatus(t *testing.T) {
	requests, _, svc := setupRequestService(t)
	ctx := context.Background()

	created, err := svc.CreateRequest(ctx, validRequest())
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(ctx, created.RequestID, "fulfilled"))
	stored, err := requests.GetRequest(ctx, created.RequestID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestFulfilled, stored.Status)

	assert.Equal(t, domain.ErrInvalidInput, domain.KindOf(svc.UpdateStatus(ctx, created.RequestID, "done")))
	assert.Equal(t, domain.ErrNotFound, domain.KindOf(svc.UpdateStatus(ctx, "missing", "fulfilled")))
}

func TestDeleteRequest(t *testing.T) {
	_, _, svc := setupRequestService(t)
	ctx := context.Background()

	created, err := svc.CreateRequest(ctx, validRequest())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRequest(ctx, created.RequestID))
	assert.Equal(t, domain.ErrNotFound, domain.KindOf(svc.DeleteRequest(ctx, created.RequestID)))
}
