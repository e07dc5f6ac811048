package service_test

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"todoapp/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_NonAdminSeesOnlyOwnTasks(t *testing.T) {
	svc, db := newTaskService(t)
	seedTasks(t, db,
		taskSeed{owner: "user1", title: "Test Todo 1"},
		taskSeed{owner: "user2", title: "Test Todo 2", completed: true},
	)

	for _, ownerQuery := range []string{"", "user2", "example"} {
		res, err := svc.List(context.Background(), service.ListTasksRequest{
			CallerID:   "user1",
			OwnerQuery: ownerQuery,
			PageSize:   10,
		})
		require.NoError(t, err)
		require.Len(t, res.Tasks, 1, "owner query %q", ownerQuery)
		assert.Equal(t, "user1", res.Tasks[0].OwnerID)
		assert.Equal(t, int64(1), res.TotalCount)
	}
}

func TestList_AdminSeesAllOwners(t *testing.T) {
	svc, db := newTaskService(t)
	seedTasks(t, db,
		taskSeed{owner: "user1", title: "A"},
		taskSeed{owner: "user2", title: "B"},
		taskSeed{owner: "user3", title: "C"},
	)

	res, err := svc.List(context.Background(), service.ListTasksRequest{
		CallerID: "admin",
		IsAdmin:  true,
		PageSize: 2,
	})

	require.NoError(t, err)
	assert.Len(t, res.Tasks, 2)
	assert.Equal(t, int64(3), res.TotalCount)
	assert.Equal(t, 2, res.TotalPages)
}

func TestList_AdminOwnerQueryMatchesUserNameOrEmail(t *testing.T) {
	svc, db := newTaskService(t)
	seedUser(t, db, "u-alice", "alice@example.com")
	seedUser(t, db, "u-bob", "bob@example.org")
	seedTasks(t, db,
		taskSeed{owner: "u-alice", title: "Alice task"},
		taskSeed{owner: "u-bob", title: "Bob task"},
	)

	tests := []struct {
		query string
		want  []string
	}{
		{"alice", []string{"Alice task"}},
		{"ALICE", []string{"Alice task"}},
		{"example.org", []string{"Bob task"}},
		{"example", []string{"Alice task", "Bob task"}},
		{"carol", []string{}},
		{"%", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res, err := svc.List(context.Background(), service.ListTasksRequest{
				CallerID:   "admin",
				IsAdmin:    true,
				OwnerQuery: tt.query,
				SortOrder:  service.SortTitleAsc,
				PageSize:   10,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(res.Tasks))
			assert.Equal(t, int64(len(tt.want)), res.TotalCount)
		})
	}
}

func TestList_StatusFilter(t *testing.T) {
	svc, db := newTaskService(t)
	seedTasks(t, db,
		taskSeed{owner: "user1", title: "done", completed: true},
		taskSeed{owner: "user1", title: "todo"},
		taskSeed{owner: "user1", title: "also done", completed: true},
	)

	tests := []struct {
		filter string
		want   int
	}{
		{"completed", 2},
		{"COMPLETED", 2},
		{"open", 1},
		{" Open ", 1},
		{"", 3},
		{"archived", 3},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			res, err := svc.List(context.Background(), service.ListTasksRequest{
				CallerID: "user1",
				Filter:   tt.filter,
				PageSize: 10,
			})
			require.NoError(t, err)
			assert.Len(t, res.Tasks, tt.want)
			for _, task := range res.Tasks {
				switch tt.filter {
				case "completed", "COMPLETED":
					assert.True(t, task.IsCompleted)
				case "open", " Open ":
					assert.False(t, task.IsCompleted)
				}
			}
		})
	}
}

func TestList_SearchTitleOrDescription(t *testing.T) {
	svc, db := newTaskService(t)
	seedTasks(t, db,
		taskSeed{owner: "user1", title: "Projekt vorbereiten"},
		taskSeed{owner: "user1", title: "Einkaufen"},
		taskSeed{owner: "user1", title: "Call", description: strPtr("about the PROJEKT budget")},
		taskSeed{owner: "user1", title: "Nothing", description: nil},
		taskSeed{owner: "user1", title: "100% done", description: strPtr("literal percent")},
	)

	res, err := svc.List(context.Background(), service.ListTasksRequest{
		CallerID:    "user1",
		SearchQuery: "projekt",
		SortOrder:   service.SortTitleAsc,
		PageSize:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Call", "Projekt vorbereiten"}, titles(res.Tasks))

	res, err = svc.List(context.Background(), service.ListTasksRequest{
		CallerID:    "user1",
		SearchQuery: "0%",
		PageSize:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"100% done"}, titles(res.Tasks))
}

func TestList_SearchSkipsNullDescription(t *testing.T) {
	svc, db := newTaskService(t)
	seedTasks(t, db, taskSeed{owner: "user1", title: "Groceries", description: nil})

	res, err := svc.List(context.Background(), service.ListTasksRequest{
		CallerID:    "user1",
		SearchQuery: "laundry",
		PageSize:    5,
	})

	require.NoError(t, err)
	assert.Empty(t, res.Tasks)
	assert.Equal(t, int64(0), res.TotalCount)
}

func TestList_DefaultSortIsNewestFirst(t *testing.T) {
	svc, db := newTaskService(t)
	seedTasks(t, db,
		taskSeed{owner: "user1", title: "old", age: 3 * time.Hour},
		taskSeed{owner: "user1", title: "newest", age: 0},
		taskSeed{owner: "user1", title: "middle", age: time.Hour},
	)

	for _, sortOrder := range []string{"", "bogus"} {
		res, err := svc.List(context.Background(), service.ListTasksRequest{
			CallerID:  "user1",
			SortOrder: sortOrder,
			PageSize:  5,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"newest", "middle", "old"}, titles(res.Tasks))
	}
}

func TestList_SortOrders(t *testing.T) {
	svc, db := newTaskService(t)
	seedTasks(t, db,
		taskSeed{owner: "user1", title: "b", description: strPtr("z"), completed: true, age: 2 * time.Hour},
		taskSeed{owner: "user1", title: "a", description: strPtr("y"), age: time.Hour},
		taskSeed{owner: "user1", title: "c", description: strPtr("x"), age: 3 * time.Hour},
	)

	tests := []struct {
		sort string
		want []string
	}{
		{service.SortTitleAsc, []string{"a", "b", "c"}},
		{service.SortTitleDesc, []string{"c", "b", "a"}},
		{service.SortDescriptionAsc, []string{"c", "a", "b"}},
		{service.SortDescriptionDesc, []string{"b", "a", "c"}},
		{service.SortDateAsc, []string{"c", "b", "a"}},
		{service.SortDateDesc, []string{"a", "b", "c"}},
		{service.SortStatusDesc, []string{"b", "c", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.sort, func(t *testing.T) {
			res, err := svc.List(context.Background(), service.ListTasksRequest{
				CallerID:  "user1",
				SortOrder: tt.sort,
				PageSize:  5,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(res.Tasks))
		})
	}
}

func TestList_StatusAscPutsOpenFirst(t *testing.T) {
	svc, db := newTaskService(t)
	seedTasks(t, db,
		taskSeed{owner: "user1", title: "done", completed: true},
		taskSeed{owner: "user1", title: "open"},
	)

	res, err := svc.List(context.Background(), service.ListTasksRequest{
		CallerID:  "user1",
		SortOrder: service.SortStatusAsc,
		PageSize:  5,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"open", "done"}, titles(res.Tasks))
}

func TestList_SecondPage(t *testing.T) {
	svc, db := newTaskService(t)
	seeds := make([]taskSeed, 8)
	for i := range seeds {
		seeds[i] = taskSeed{owner: "user1", title: fmt.Sprintf("task %d", i+1), age: time.Duration(i) * time.Minute}
	}
	seedTasks(t, db, seeds...)

	res, err := svc.List(context.Background(), service.ListTasksRequest{
		CallerID:   "user1",
		PageNumber: 2,
		PageSize:   5,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(8), res.TotalCount)
	assert.Equal(t, []string{"task 6", "task 7", "task 8"}, titles(res.Tasks))
	assert.Equal(t, 2, res.TotalPages)
}

func TestList_PageBeyondEndIsEmpty(t *testing.T) {
	svc, db := newTaskService(t)
	seedTasks(t, db, taskSeed{owner: "user1", title: "only"})

	res, err := svc.List(context.Background(), service.ListTasksRequest{
		CallerID:   "user1",
		PageNumber: 4,
		PageSize:   5,
	})

	require.NoError(t, err)
	assert.Empty(t, res.Tasks)
	assert.Equal(t, int64(1), res.TotalCount)
}

func TestList_HugePageNumberIsEmpty(t *testing.T) {
	svc, db := newTaskService(t)
	seedTasks(t, db,
		taskSeed{owner: "user1", title: "a"},
		taskSeed{owner: "user1", title: "b", age: time.Hour},
	)

	for _, page := range []int{math.MaxInt/5 + 2, math.MaxInt} {
		res, err := svc.List(context.Background(), service.ListTasksRequest{
			CallerID:   "user1",
			PageNumber: page,
			PageSize:   5,
		})

		require.NoError(t, err)
		assert.Empty(t, res.Tasks, "page %d", page)
		assert.Equal(t, int64(2), res.TotalCount)
	}
}

func TestList_SearchKeepsNonASCIILetters(t *testing.T) {
	svc, db := newTaskService(t)
	seedTasks(t, db,
		taskSeed{owner: "user1", title: "Übung machen"},
		taskSeed{owner: "user1", title: "Einkaufen"},
	)

	for _, query := range []string{"Übung", "ÜBUNG MACHEN", "machen"} {
		res, err := svc.List(context.Background(), service.ListTasksRequest{
			CallerID:    "user1",
			SearchQuery: query,
			PageSize:    10,
		})

		require.NoError(t, err)
		require.Len(t, res.Tasks, 1, "query %q", query)
		assert.Equal(t, "Übung machen", res.Tasks[0].Title)
	}
}

func TestList_ClampsPageAndSize(t *testing.T) {
	svc, db := newTaskService(t)
	seedTasks(t, db,
		taskSeed{owner: "user1", title: "new"},
		taskSeed{owner: "user1", title: "old", age: time.Hour},
	)

	res, err := svc.List(context.Background(), service.ListTasksRequest{
		CallerID:   "user1",
		PageNumber: 0,
		PageSize:   -3,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.PageNumber)
	assert.Equal(t, 1, res.PageSize)
	assert.Equal(t, []string{"new"}, titles(res.Tasks))
	assert.Equal(t, 2, res.TotalPages)

	res, err = svc.List(context.Background(), service.ListTasksRequest{
		CallerID: "user1",
		PageSize: 1000,
	})
	require.NoError(t, err)
	assert.Equal(t, service.MaxPageSize, res.PageSize)
	assert.Len(t, res.Tasks, 2)
}

func TestList_EndToEndAdminOwnerSearch(t *testing.T) {
	svc, db := newTaskService(t)
	seedUser(t, db, "id-1", "first@todo.test")
	seedUser(t, db, "id-2", "second@todo.test")
	seedTasks(t, db,
		taskSeed{owner: "id-1", title: "first user's task"},
		taskSeed{owner: "id-2", title: "second user's task"},
	)

	res, err := svc.List(context.Background(), service.ListTasksRequest{
		CallerID:   "admin",
		IsAdmin:    true,
		OwnerQuery: "second@",
		PageNumber: 1,
		PageSize:   5,
	})

	require.NoError(t, err)
	require.Len(t, res.Tasks, 1)
	assert.Equal(t, "id-2", res.Tasks[0].OwnerID)
	assert.Equal(t, int64(1), res.TotalCount)
}
