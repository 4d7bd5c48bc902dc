// Package listquery 列表查询参数解析与分页计算
//
// 解析 search / status / sort / date / page / limit 查询参数，
// 并提供两套 totalPages 口径：
//   - TotalPagesFloorOne: 空集也至少 1 页（员工目录、全量列表）
//   - TotalPagesFloorZero: 空集为 0 页（按用户查询的请求列表）
package listquery

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"leavedesk/internal/shared/storage"
)

// Params 解析后的列表查询参数
type Params struct {
	Search string
	Status string
	// OnDate 零值表示未按日期过滤
	OnDate time.Time
	Sort   storage.SortDirection
	Page   int
	Limit  int

	// HasPage / HasLimit 区分显式传参与默认值，
	// 部分接口在完全未分页时返回全量集合
	HasPage   bool
	HasLimit  bool
	HasSearch bool
	HasStatus bool
	HasSort   bool
}

// Parse 解析查询参数，defaultLimit 为接口各自的默认每页条数
func Parse(r *http.Request, defaultLimit int) Params {
	q := r.URL.Query()
	p := Params{Page: 1, Limit: defaultLimit, Sort: storage.SortNone}

	if v := q.Get("search"); v != "" {
		p.Search = v
		p.HasSearch = true
	}
	if v := q.Get("status"); v != "" {
		p.HasStatus = true
		p.Status = v
	}
	if v := q.Get("sort"); v != "" {
		p.HasSort = true
		if v == "asc" {
			p.Sort = storage.SortAsc
		} else {
			p.Sort = storage.SortDesc
		}
	}
	if v := q.Get("date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			p.OnDate = t
		}
	}
	if v := q.Get("page"); v != "" {
		p.HasPage = true
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Page = n
		}
	}
	if v := q.Get("limit"); v != "" {
		p.HasLimit = true
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Limit = n
		}
	}
	return p
}

// HasAny 是否携带了任意列表修饰参数
// 全部缺省时部分接口退化为全量查询
func (p Params) HasAny() bool {
	return p.HasSearch || p.HasStatus || p.HasSort || p.HasPage || p.HasLimit || !p.OnDate.IsZero()
}

// Offset 计算跳过的记录数
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Filter 转换为存储层的请求过滤条件
func (p Params) Filter(userID string) storage.RequestFilter {
	return storage.RequestFilter{
		UserID: userID,
		Search: p.Search,
		Status: p.Status,
		OnDate: p.OnDate,
		Sort:   p.Sort,
		Limit:  p.Limit,
		Offset: p.Offset(),
	}
}

// TotalPagesFloorOne 计算总页数，最少为 1
func TotalPagesFloorOne(totalItems, limit int) int {
	pages := TotalPagesFloorZero(totalItems, limit)
	if pages < 1 {
		return 1
	}
	return pages
}

// TotalPagesFloorZero 计算总页数，空集为 0
func TotalPagesFloorZero(totalItems, limit int) int {
	if limit <= 0 {
		if totalItems > 0 {
			return 1
		}
		return 0
	}
	return (totalItems + limit - 1) / limit
}

// ParseValues 基于已有的 url.Values 解析（测试辅助）
func ParseValues(values url.Values, defaultLimit int) Params {
	r := &http.Request{URL: &url.URL{RawQuery: values.Encode()}}
	return Parse(r, defaultLimit)
}
