package service

import "todoapp/internal/model"

// CanManage reports whether the caller may view or change task: its owner
// always may, and so may any admin.
func CanManage(task *model.Task, callerID string, isAdmin bool) bool {
	if task == nil {
		return false
	}
	return isAdmin || (callerID != "" && task.OwnerID == callerID)
}
