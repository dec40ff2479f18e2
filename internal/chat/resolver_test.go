package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/Yaroslav326/TaskManagement/internal"
	"github.com/Yaroslav326/TaskManagement/internal/company"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestChat(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Chat Module Suite")
}

// Mock DepartmentDirectory for testing
type mockDirectory struct {
	departments map[int64]*company.Department
	memberships map[int64][]int64 // userID -> department ids
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{
		departments: map[int64]*company.Department{
			10: {ID: 10, Name: "Management", CompanyID: 1},
			11: {ID: 11, Name: "Engineering", CompanyID: 1},
			20: {ID: 20, Name: "Sales", CompanyID: 2},
		},
		memberships: map[int64][]int64{
			1: {10, 11},
			2: {11},
			3: {20},
		},
	}
}

func (m *mockDirectory) DepartmentsFor(ctx context.Context, userID int64) ([]company.Department, error) {
	var out []company.Department
	for _, id := range m.memberships[userID] {
		out = append(out, *m.departments[id])
	}
	return out, nil
}

func (m *mockDirectory) DepartmentByID(ctx context.Context, id int64) (*company.Department, error) {
	d, ok := m.departments[id]
	if !ok {
		return nil, errors.New("department not found")
	}
	return d, nil
}

func (m *mockDirectory) IsMember(ctx context.Context, departmentID, userID int64) (bool, error) {
	for _, id := range m.memberships[userID] {
		if id == departmentID {
			return true, nil
		}
	}
	return false, nil
}

var _ = ginkgo.Describe("Resolver", func() {
	var resolver *Resolver

	ginkgo.BeforeEach(func() {
		resolver = NewResolver(newMockDirectory())
	})

	ginkgo.Describe("company room", func() {
		ginkgo.It("should resolve to the caller's company scope", func() {
			key, err := resolver.Resolve(context.Background(), "company", 1)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(key).To(gomega.Equal(ScopeKey{CompanyID: 1}))
		})

		ginkgo.It("should reject a caller without any membership", func() {
			_, err := resolver.Resolve(context.Background(), "company", 99)
			gomega.Expect(errors.Is(err, internal.ErrNotMember)).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("department rooms", func() {
		ginkgo.It("should resolve for a member", func() {
			key, err := resolver.Resolve(context.Background(), "department_11", 2)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(key).To(gomega.Equal(ScopeKey{CompanyID: 1, DepartmentID: 11}))
		})

		ginkgo.It("should reject a non-member even from the same company", func() {
			_, err := resolver.Resolve(context.Background(), "department_10", 2)
			gomega.Expect(errors.Is(err, internal.ErrNotMember)).To(gomega.BeTrue())
		})

		ginkgo.It("should reject a member of another company", func() {
			_, err := resolver.Resolve(context.Background(), "department_11", 3)
			gomega.Expect(errors.Is(err, internal.ErrNotMember)).To(gomega.BeTrue())
		})

		ginkgo.It("should report a missing department as room not found", func() {
			_, err := resolver.Resolve(context.Background(), "department_404", 1)
			gomega.Expect(errors.Is(err, internal.ErrRoomNotFound)).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("room name validation", func() {
		invalid := []string{
			"",
			"Company",
			"department_",
			"department_abc",
			"department_-1",
			"department_1x",
			"dept_1",
			"department_1 ",
		}

		for _, name := range invalid {
			name := name
			ginkgo.It("should reject "+name, func() {
				_, err := resolver.Resolve(context.Background(), name, 1)
				gomega.Expect(errors.Is(err, internal.ErrInvalidRoom)).To(gomega.BeTrue())
			})
		}
	})
})
