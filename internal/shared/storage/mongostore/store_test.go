package mongostore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"leavedesk/internal/shared/model"
	"leavedesk/internal/shared/storage"
)

// newTestStore 连接本地 MongoDB，不可达时跳过测试
func newTestStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("MONGO_URL")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	dbName := fmt.Sprintf("leavedesk_test_%d", time.Now().UnixNano())

	s, err := NewStore(uri, dbName)
	if err != nil {
		t.Skipf("mongodb not available: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.db.Drop(ctx)
		s.Close()
	})
	return s
}

func TestMongoUserRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &model.User{
		ID: "usr-1", UserName: "alice", Email: "alice@example.com",
		Mobile: "13800000001", PasswordHash: "$2a$12$hash",
		Role: model.RoleEmployee, CreatedOn: time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.GetUserByEmail(ctx, "alice@example.com")
	if err != nil || got == nil || got.UserName != "alice" {
		t.Fatalf("get by email: (%v, %v)", got, err)
	}

	missing, err := s.GetUserByEmail(ctx, "nobody@example.com")
	if err != nil || missing != nil {
		t.Fatalf("expected (nil, nil), got (%v, %v)", missing, err)
	}

	// 唯一索引
	dup := &model.User{
		ID: "usr-2", UserName: "alice2", Email: "alice@example.com",
		Mobile: "13800000002", PasswordHash: "h", Role: model.RoleEmployee, CreatedOn: time.Now(),
	}
	if err := s.CreateUser(ctx, dup); !errors.Is(err, storage.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestMongoLeaveFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	seed := func(id, userID, reason string, status model.RequestStatus, start, created time.Time) {
		t.Helper()
		err := s.CreateLeaveRequest(ctx, &model.LeaveRequest{
			ID: id, UserID: userID, StartDate: start, EndDate: start.Add(48 * time.Hour),
			Reason: reason, Status: status, LeaveType: "Casual", CreatedOn: created,
		})
		if err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}
	seed("lr-1", "usr-1", "family vacation", model.StatusPending, base, base)
	seed("lr-2", "usr-1", "medical appointment", model.StatusApproved, base.AddDate(0, 0, 5), base.Add(time.Hour))
	seed("lr-3", "usr-2", "vacation abroad", model.StatusApproved, base.AddDate(0, 0, 10), base.Add(2*time.Hour))

	items, total, err := s.ListLeaveRequests(ctx, storage.RequestFilter{})
	if err != nil || total != 3 {
		t.Fatalf("list: total %d, err %v", total, err)
	}
	if items[0].ID != "lr-3" {
		t.Fatalf("default createdOn desc order wrong: %s first", items[0].ID)
	}

	_, total, err = s.ListLeaveRequests(ctx, storage.RequestFilter{Search: "VACATION"})
	if err != nil || total != 2 {
		t.Fatalf("search: total %d, err %v", total, err)
	}

	items, total, err = s.ListLeaveRequests(ctx, storage.RequestFilter{UserID: "usr-1", Status: "Approved"})
	if err != nil || total != 1 || items[0].ID != "lr-2" {
		t.Fatalf("combined: total %d, err %v", total, err)
	}

	items, total, err = s.ListLeaveRequests(ctx, storage.RequestFilter{OnDate: time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)})
	if err != nil || total != 1 || items[0].ID != "lr-2" {
		t.Fatalf("date: total %d, err %v", total, err)
	}

	items, _, err = s.ListLeaveRequests(ctx, storage.RequestFilter{Sort: storage.SortAsc})
	if err != nil || items[0].ID != "lr-1" {
		t.Fatalf("sort asc: err %v", err)
	}

	items, total, err = s.ListLeaveRequests(ctx, storage.RequestFilter{Limit: 2, Offset: 2})
	if err != nil || total != 3 || len(items) != 1 {
		t.Fatalf("pagination: total %d, items %d, err %v", total, len(items), err)
	}
}

func TestMongoLeaveUpdateDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	lr := &model.LeaveRequest{
		ID: "lr-1", UserID: "usr-1", StartDate: base, EndDate: base.Add(48 * time.Hour),
		Reason: "family vacation", Status: model.StatusPending, LeaveType: "Casual", CreatedOn: base,
	}
	if err := s.CreateLeaveRequest(ctx, lr); err != nil {
		t.Fatalf("create: %v", err)
	}

	status := model.StatusApproved
	updated, err := s.UpdateLeaveRequest(ctx, "lr-1", storage.RequestUpdate{Status: &status})
	if err != nil || updated.Status != model.StatusApproved || updated.Reason != "family vacation" {
		t.Fatalf("update: (%+v, %v)", updated, err)
	}

	if _, err := s.UpdateLeaveRequest(ctx, "lr-missing", storage.RequestUpdate{Status: &status}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.DeleteLeaveRequest(ctx, "lr-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteLeaveRequest(ctx, "lr-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
