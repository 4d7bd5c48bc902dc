package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"leavedesk/internal/shared/model"
	"leavedesk/internal/shared/storage"
	"leavedesk/internal/shared/storage/driver/sqlite"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	store, err := NewStore(db, sqlite.NewDialect())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedUser(t *testing.T, s *Store, id, name, email string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{
		ID:           id,
		UserName:     name,
		Email:        email,
		Mobile:       "13" + id,
		PasswordHash: "$2a$12$hash",
		Role:         role,
		CreatedOn:    time.Now().UTC().Truncate(time.Second),
	}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
	return u
}

func seedLeave(t *testing.T, s *Store, id, userID, reason string, status model.RequestStatus, start, created time.Time) *model.LeaveRequest {
	t.Helper()
	lr := &model.LeaveRequest{
		ID:        id,
		UserID:    userID,
		StartDate: start,
		EndDate:   start.Add(48 * time.Hour),
		Reason:    reason,
		Status:    status,
		LeaveType: "Casual",
		CreatedOn: created,
	}
	if err := s.CreateLeaveRequest(context.Background(), lr); err != nil {
		t.Fatalf("seed leave %s: %v", id, err)
	}
	return lr
}

func TestUserCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "usr-1", "alice", "alice@example.com", model.RoleEmployee)

	u, err := s.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if u == nil || u.UserName != "alice" || u.Role != model.RoleEmployee {
		t.Fatalf("unexpected user: %+v", u)
	}

	missing, err := s.GetUserByEmail(ctx, "nobody@example.com")
	if err != nil || missing != nil {
		t.Fatalf("expected (nil, nil) for missing user, got (%v, %v)", missing, err)
	}

	byID, err := s.GetUserByID(ctx, u.ID)
	if err != nil || byID == nil || byID.Email != "alice@example.com" {
		t.Fatalf("get by id failed: (%v, %v)", byID, err)
	}
}

func TestUserDuplicate(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "usr-1", "alice", "alice@example.com", model.RoleEmployee)

	dup := &model.User{
		ID: "usr-2", UserName: "alice2", Email: "alice@example.com",
		Mobile: "139", PasswordHash: "h", Role: model.RoleEmployee, CreatedOn: time.Now(),
	}
	err := s.CreateUser(context.Background(), dup)
	if !errors.Is(err, storage.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestListEmployees(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "usr-1", "charlie", "charlie@example.com", model.RoleEmployee)
	seedUser(t, s, "usr-2", "alice", "alice@corp.io", model.RoleEmployee)
	seedUser(t, s, "usr-3", "bob", "bob@example.com", model.RoleManager)

	// userName 升序
	users, total, err := s.ListEmployees(ctx, storage.EmployeeFilter{Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(users) != 3 {
		t.Fatalf("expected 3/3, got %d/%d", total, len(users))
	}
	if users[0].UserName != "alice" || users[2].UserName != "charlie" {
		t.Fatalf("wrong order: %s, %s, %s", users[0].UserName, users[1].UserName, users[2].UserName)
	}

	// search 同时匹配 userName 与 email
	users, total, err = s.ListEmployees(ctx, storage.EmployeeFilter{Search: "example", Limit: 10})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 matches on email, got %d", total)
	}
	users, total, err = s.ListEmployees(ctx, storage.EmployeeFilter{Search: "ALICE", Limit: 10})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 1 || users[0].UserName != "alice" {
		t.Fatalf("case-insensitive name search failed: %d", total)
	}

	// 分页
	users, total, err = s.ListEmployees(ctx, storage.EmployeeFilter{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if total != 3 || len(users) != 1 || users[0].UserName != "charlie" {
		t.Fatalf("pagination failed: total %d, got %d items", total, len(users))
	}
}

func TestGetUsersByIDs(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "usr-1", "alice", "alice@example.com", model.RoleEmployee)
	seedUser(t, s, "usr-2", "bob", "bob@example.com", model.RoleManager)

	m, err := s.GetUsersByIDs(context.Background(), []string{"usr-1", "usr-2", "usr-missing", "usr-1"})
	if err != nil {
		t.Fatalf("get by ids: %v", err)
	}
	if len(m) != 2 || m["usr-1"].UserName != "alice" || m["usr-2"].UserName != "bob" {
		t.Fatalf("unexpected map: %+v", m)
	}

	empty, err := s.GetUsersByIDs(context.Background(), nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty map, got (%v, %v)", empty, err)
	}
}

func TestLeaveRequestFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	seedUser(t, s, "usr-1", "alice", "alice@example.com", model.RoleEmployee)
	seedLeave(t, s, "lr-1", "usr-1", "family vacation", model.StatusPending, base, base)
	seedLeave(t, s, "lr-2", "usr-1", "medical appointment", model.StatusApproved, base.AddDate(0, 0, 5), base.Add(time.Hour))
	seedLeave(t, s, "lr-3", "usr-2", "vacation abroad", model.StatusApproved, base.AddDate(0, 0, 10), base.Add(2*time.Hour))

	// 默认 createdOn 倒序
	items, total, err := s.ListLeaveRequests(ctx, storage.RequestFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || items[0].ID != "lr-3" || items[2].ID != "lr-1" {
		t.Fatalf("default order wrong: total %d, first %s", total, items[0].ID)
	}

	// reason 子串搜索（大小写不敏感）
	_, total, err = s.ListLeaveRequests(ctx, storage.RequestFilter{Search: "VACATION"})
	if err != nil || total != 2 {
		t.Fatalf("search: total %d, err %v", total, err)
	}

	// status + userID 组合
	items, total, err = s.ListLeaveRequests(ctx, storage.RequestFilter{UserID: "usr-1", Status: "Approved"})
	if err != nil || total != 1 || items[0].ID != "lr-2" {
		t.Fatalf("combined filter: total %d, err %v", total, err)
	}

	// date 命中 [date, date+24h)
	items, total, err = s.ListLeaveRequests(ctx, storage.RequestFilter{OnDate: time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)})
	if err != nil || total != 1 || items[0].ID != "lr-2" {
		t.Fatalf("date filter: total %d, err %v", total, err)
	}

	// startDate 显式升序
	items, _, err = s.ListLeaveRequests(ctx, storage.RequestFilter{Sort: storage.SortAsc})
	if err != nil || items[0].ID != "lr-1" {
		t.Fatalf("sort asc: err %v", err)
	}

	// 分页：total 是筛选后的总数，不受 limit 影响
	items, total, err = s.ListLeaveRequests(ctx, storage.RequestFilter{Limit: 2, Offset: 2})
	if err != nil || total != 3 || len(items) != 1 {
		t.Fatalf("pagination: total %d, items %d, err %v", total, len(items), err)
	}
}

func TestLeaveRequestUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	seedLeave(t, s, "lr-1", "usr-1", "family vacation", model.StatusPending, base, base)

	status := model.StatusApproved
	updated, err := s.UpdateLeaveRequest(ctx, "lr-1", storage.RequestUpdate{Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != model.StatusApproved {
		t.Fatalf("status not updated: %s", updated.Status)
	}
	// 其余字段不变
	if updated.Reason != "family vacation" || updated.LeaveType != "Casual" {
		t.Fatalf("partial update touched other fields: %+v", updated)
	}

	// 空更新返回当前记录
	same, err := s.UpdateLeaveRequest(ctx, "lr-1", storage.RequestUpdate{})
	if err != nil || same.Status != model.StatusApproved {
		t.Fatalf("empty update: (%v, %v)", same, err)
	}

	// 不存在的记录
	_, err = s.UpdateLeaveRequest(ctx, "lr-missing", storage.RequestUpdate{Status: &status})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLeaveRequestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC()
	seedLeave(t, s, "lr-1", "usr-1", "vacation", model.StatusPending, base, base)

	if err := s.DeleteLeaveRequest(ctx, "lr-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := s.GetLeaveRequest(ctx, "lr-1")
	if err != nil || got != nil {
		t.Fatalf("expected gone, got (%v, %v)", got, err)
	}
	if err := s.DeleteLeaveRequest(ctx, "lr-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWfhRequestRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	wr := &model.WfhRequest{
		ID: "wfh-1", UserID: "usr-1", StartDate: base, EndDate: base.Add(24 * time.Hour),
		Reason: "internet repair", Status: model.StatusPending, CreatedOn: base,
	}
	if err := s.CreateWfhRequest(ctx, wr); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.GetWfhRequest(ctx, "wfh-1")
	if err != nil || got == nil || got.Reason != "internet repair" {
		t.Fatalf("get: (%v, %v)", got, err)
	}

	reason := "router replacement"
	updated, err := s.UpdateWfhRequest(ctx, "wfh-1", storage.RequestUpdate{Reason: &reason})
	if err != nil || updated.Reason != reason {
		t.Fatalf("update: (%v, %v)", updated, err)
	}

	if err := s.DeleteWfhRequest(ctx, "wfh-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}
