package service

import (
	"math"
	"strings"

	"todoapp/internal/model"
	"todoapp/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPageSize = 5
	MaxPageSize     = 100

	FilterOpen      = "open"
	FilterCompleted = "completed"

	SortTitleAsc        = "title_asc"
	SortTitleDesc       = "title_desc"
	SortDescriptionAsc  = "descript_asc"
	SortDescriptionDesc = "descript_desc"
	SortDateAsc         = "date_asc"
	SortDateDesc        = "date_desc"
	SortStatusAsc       = "status_asc"
	SortStatusDesc      = "status_desc"
)

// ListTasksRequest describes one page of the task list as seen by a caller.
type ListTasksRequest struct {
	CallerID    string
	IsAdmin     bool
	OwnerQuery  string // admin only: substring of the owner's user name or email
	SearchQuery string
	Filter      string
	SortOrder   string
	PageNumber  int
	PageSize    int
}

type ListTasksResult struct {
	Tasks      []model.Task
	TotalCount int64
	PageNumber int
	PageSize   int
	TotalPages int
}

type sortColumn struct {
	column string
	desc   bool
}

var sortOrders = map[string]sortColumn{
	SortTitleAsc:        {"title", false},
	SortTitleDesc:       {"title", true},
	SortDescriptionAsc:  {"description", false},
	SortDescriptionDesc: {"description", true},
	SortDateAsc:         {"created_at", false},
	SortDateDesc:        {"created_at", true},
	SortStatusAsc:       {"is_completed", false},
	SortStatusDesc:      {"is_completed", true},
}

// taskFilters composes the caller's scope with the optional status filter
// and free-text search.
func taskFilters(req ListTasksRequest) []repository.Scope {
	filters := []repository.Scope{baseScope(req)}
	if f := statusFilter(req.Filter); f != nil {
		filters = append(filters, f)
	}
	if s := searchFilter(req.SearchQuery); s != nil {
		filters = append(filters, s)
	}
	return filters
}

// baseScope restricts non-admins to their own tasks. Admins see every task,
// optionally narrowed to owners whose user name or email contains OwnerQuery.
func baseScope(req ListTasksRequest) repository.Scope {
	if !req.IsAdmin {
		callerID := req.CallerID
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("owner_id = ?", callerID)
		}
	}

	if req.OwnerQuery == "" {
		return func(db *gorm.DB) *gorm.DB { return db }
	}

	return func(db *gorm.DB) *gorm.DB {
		pattern := containsPattern(db, req.OwnerQuery)
		owners := db.Session(&gorm.Session{NewDB: true}).
			Model(&model.User{}).
			Select("id").
			Where(`(LOWER(user_name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\')`, pattern, pattern)
		return db.Where("owner_id IN (?)", owners)
	}
}

func statusFilter(filter string) repository.Scope {
	switch strings.ToLower(strings.TrimSpace(filter)) {
	case FilterOpen:
		return func(db *gorm.DB) *gorm.DB { return db.Where("is_completed = ?", false) }
	case FilterCompleted:
		return func(db *gorm.DB) *gorm.DB { return db.Where("is_completed = ?", true) }
	default:
		return nil
	}
}

// searchFilter matches title or description case-insensitively. A NULL
// description never matches.
func searchFilter(query string) repository.Scope {
	if query == "" {
		return nil
	}
	return func(db *gorm.DB) *gorm.DB {
		pattern := containsPattern(db, query)
		return db.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(COALESCE(description, '')) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
}

// sortScope orders by the requested key, newest first when the key is unknown.
// The id breaks ties in the same direction so pages never overlap.
func sortScope(key string) repository.Scope {
	col, ok := sortOrders[key]
	if !ok {
		col = sortOrders[SortDateDesc]
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Order(clause.OrderByColumn{Column: clause.Column{Name: col.column}, Desc: col.desc}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: col.desc})
	}
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 1
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// pageOffset saturates at math.MaxInt so a huge page number lands past the
// last row instead of wrapping.
func pageOffset(page, size int) int {
	if page-1 > math.MaxInt/size {
		return math.MaxInt
	}
	return (page - 1) * size
}

// containsPattern lowers s the same way the store's LOWER() does: SQLite
// only folds ASCII letters, postgres folds Unicode.
func containsPattern(db *gorm.DB, s string) string {
	if db.Dialector != nil && db.Dialector.Name() == "sqlite" {
		s = asciiLower(s)
	} else {
		s = strings.ToLower(s)
	}
	return "%" + likeEscaper.Replace(s) + "%"
}

func asciiLower(s string) string {
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}
