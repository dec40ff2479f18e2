package chat

import (
	"context"
	"regexp"
	"strconv"

	"github.com/Yaroslav326/TaskManagement/internal"
	"github.com/Yaroslav326/TaskManagement/internal/company"
)

var departmentRoomPattern = regexp.MustCompile(`^department_([0-9]+)$`)

const companyRoom = "company"

// DepartmentDirectory is the membership lookup the resolver needs; the
// company service implements it.
type DepartmentDirectory interface {
	DepartmentsFor(ctx context.Context, userID int64) ([]company.Department, error)
	DepartmentByID(ctx context.Context, id int64) (*company.Department, error)
	IsMember(ctx context.Context, departmentID, userID int64) (bool, error)
}

// Resolver maps room names to scope keys, enforcing membership on every
// connection attempt.
type Resolver struct {
	directory DepartmentDirectory
}

func NewResolver(directory DepartmentDirectory) *Resolver {
	return &Resolver{directory: directory}
}

// Resolve validates the room name and the caller's access to it.
//
// "company" resolves to the company-wide scope of the caller's company;
// "department_<id>" resolves to that department's scope when the caller is
// personnel of it. Anything else is an invalid room.
func (r *Resolver) Resolve(ctx context.Context, roomName string, userID int64) (ScopeKey, error) {
	if roomName == companyRoom {
		depts, err := r.directory.DepartmentsFor(ctx, userID)
		if err != nil {
			return ScopeKey{}, err
		}
		if len(depts) == 0 {
			return ScopeKey{}, internal.ErrNotMember
		}
		return ScopeKey{CompanyID: depts[0].CompanyID}, nil
	}

	m := departmentRoomPattern.FindStringSubmatch(roomName)
	if m == nil {
		return ScopeKey{}, internal.ErrInvalidRoom
	}

	departmentID, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return ScopeKey{}, internal.ErrInvalidRoom
	}

	dept, err := r.directory.DepartmentByID(ctx, departmentID)
	if err != nil {
		return ScopeKey{}, internal.ErrRoomNotFound.WithCause(err)
	}

	member, err := r.directory.IsMember(ctx, departmentID, userID)
	if err != nil {
		return ScopeKey{}, err
	}
	if !member {
		return ScopeKey{}, internal.ErrNotMember
	}

	return ScopeKey{CompanyID: dept.CompanyID, DepartmentID: departmentID}, nil
}
