// Package authz holds the pure role/scope policy consulted by the grade and
// honor state machines. It has no storage or transport dependencies so the
// rules stay trivially testable.
package authz

import (
	"fmt"

	"github.com/classtrack/approval-api/internal/models"
	appErrors "github.com/classtrack/approval-api/pkg/errors"
)

// Action enumerates the guarded workflow operations.
type Action string

const (
	ActionGradeSubmit    Action = "grade.submit"
	ActionGradeApprove   Action = "grade.approve"
	ActionGradeReturn    Action = "grade.return"
	ActionHonorDecide    Action = "honor.decide"
	ActionHonorView      Action = "honor.view"
	ActionCriteriaManage Action = "criteria.manage"
)

// Target carries the scope attributes a decision depends on.
type Target struct {
	// DepartmentID of the subject's course (grades) or the student's course
	// (honors). Empty means the check is scope-free.
	DepartmentID string
	// InstructorID is the subject's assigned instructor, checked on submit.
	InstructorID string
	// FinalPeriod marks grades whose grading period is the summative one;
	// their approval is reserved for the principal.
	FinalPeriod bool
}

// CanAct reports whether the actor may perform the action against the target.
func CanAct(actor models.Actor, action Action, target Target) bool {
	switch action {
	case ActionGradeSubmit:
		return actor.Role == models.RoleInstructor && actor.UserID == target.InstructorID
	case ActionGradeApprove, ActionGradeReturn:
		switch actor.Role {
		case models.RolePrincipal:
			return true
		case models.RoleChairperson:
			// Final-period grades are explicitly reserved for the principal
			// even when the department matches.
			if target.FinalPeriod {
				return false
			}
			return actor.DepartmentID != "" && actor.DepartmentID == target.DepartmentID
		default:
			return false
		}
	case ActionHonorDecide:
		return actor.Role == models.RolePrincipal
	case ActionHonorView:
		switch actor.Role {
		case models.RolePrincipal:
			return true
		case models.RoleChairperson:
			return target.DepartmentID == "" || actor.DepartmentID == target.DepartmentID
		default:
			return false
		}
	case ActionCriteriaManage:
		return actor.Role == models.RolePrincipal || actor.Role == models.RoleAdmin
	default:
		return false
	}
}

// Require returns a typed Forbidden error naming the missing privilege when
// the actor may not act, nil otherwise.
func Require(actor models.Actor, action Action, target Target) error {
	if CanAct(actor, action, target) {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, forbiddenMessage(actor, action, target))
}

func forbiddenMessage(actor models.Actor, action Action, target Target) string {
	switch action {
	case ActionGradeSubmit:
		return "only the subject's assigned instructor may submit grades"
	case ActionGradeApprove, ActionGradeReturn:
		if target.FinalPeriod && actor.Role == models.RoleChairperson {
			return "final-period grades require principal approval"
		}
		if actor.Role == models.RoleChairperson {
			return fmt.Sprintf("grade belongs to department %s, outside your scope", target.DepartmentID)
		}
		return "chairperson or principal role required"
	case ActionHonorDecide:
		return "honor decisions require principal role"
	case ActionHonorView:
		return "honors outside your department scope"
	case ActionCriteriaManage:
		return "honor criteria management requires admin or principal role"
	default:
		return "forbidden"
	}
}
