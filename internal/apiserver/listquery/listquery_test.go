package listquery

import (
	"net/url"
	"testing"

	"leavedesk/internal/shared/storage"
)

func TestParseDefaults(t *testing.T) {
	p := ParseValues(url.Values{}, 10)
	if p.Page != 1 || p.Limit != 10 {
		t.Fatalf("expected page 1 limit 10, got page %d limit %d", p.Page, p.Limit)
	}
	if p.HasAny() {
		t.Fatal("empty query should not count as having params")
	}
	if p.Offset() != 0 {
		t.Fatalf("expected offset 0, got %d", p.Offset())
	}
}

func TestParseInvalidNumbersFallBack(t *testing.T) {
	tests := []struct {
		page, limit string
	}{
		{"abc", "xyz"},
		{"0", "0"},
		{"-3", "-1"},
	}
	for _, tt := range tests {
		p := ParseValues(url.Values{"page": {tt.page}, "limit": {tt.limit}}, 5)
		if p.Page != 1 || p.Limit != 5 {
			t.Errorf("page=%q limit=%q: expected fallback 1/5, got %d/%d",
				tt.page, tt.limit, p.Page, p.Limit)
		}
		// 非法值仍算显式传参，接口不走全量回退
		if !p.HasPage || !p.HasLimit {
			t.Errorf("page=%q limit=%q: expected HasPage/HasLimit true", tt.page, tt.limit)
		}
	}
}

func TestParseSort(t *testing.T) {
	p := ParseValues(url.Values{"sort": {"asc"}}, 10)
	if p.Sort != storage.SortAsc {
		t.Fatalf("expected asc, got %q", p.Sort)
	}
	// asc 以外的任何值都按降序处理
	for _, v := range []string{"desc", "DESC", "banana"} {
		p := ParseValues(url.Values{"sort": {v}}, 10)
		if p.Sort != storage.SortDesc {
			t.Errorf("sort=%q: expected desc, got %q", v, p.Sort)
		}
	}
}

func TestParseDate(t *testing.T) {
	p := ParseValues(url.Values{"date": {"2026-03-15"}}, 10)
	if p.OnDate.IsZero() {
		t.Fatal("expected date to be parsed")
	}
	if y, m, d := p.OnDate.Date(); y != 2026 || int(m) != 3 || d != 15 {
		t.Fatalf("unexpected date: %v", p.OnDate)
	}
	if !p.HasAny() {
		t.Fatal("date filter should count as a list param")
	}

	bad := ParseValues(url.Values{"date": {"15/03/2026"}}, 10)
	if !bad.OnDate.IsZero() {
		t.Fatal("malformed date should be ignored")
	}
}

func TestOffset(t *testing.T) {
	p := ParseValues(url.Values{"page": {"3"}, "limit": {"5"}}, 10)
	if p.Offset() != 10 {
		t.Fatalf("expected offset 10, got %d", p.Offset())
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, limit        int
		floorZero, floorOne int
	}{
		{0, 5, 0, 1},
		{1, 5, 1, 1},
		{5, 5, 1, 1},
		{6, 5, 2, 2},
		{12, 5, 3, 3},
		{100, 10, 10, 10},
		{101, 10, 11, 11},
	}
	for _, tt := range tests {
		if got := TotalPagesFloorZero(tt.total, tt.limit); got != tt.floorZero {
			t.Errorf("FloorZero(%d, %d) = %d, want %d", tt.total, tt.limit, got, tt.floorZero)
		}
		if got := TotalPagesFloorOne(tt.total, tt.limit); got != tt.floorOne {
			t.Errorf("FloorOne(%d, %d) = %d, want %d", tt.total, tt.limit, got, tt.floorOne)
		}
	}
}

func TestFilter(t *testing.T) {
	p := ParseValues(url.Values{
		"search": {"vacation"},
		"status": {"Approved"},
		"page":   {"2"},
		"limit":  {"5"},
	}, 10)
	f := p.Filter("usr-1")
	want := storage.RequestFilter{
		UserID: "usr-1",
		Search: "vacation",
		Status: "Approved",
		Limit:  5,
		Offset: 5,
	}
	if f != want {
		t.Fatalf("filter mismatch:\n got %+v\nwant %+v", f, want)
	}
}
