package user

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fraudshield/admin-dashboard/internal/model"
	"github.com/fraudshield/admin-dashboard/internal/repository/memory"
	apperrors "github.com/fraudshield/admin-dashboard/pkg/errors"
)

func newService() (*Service, *memory.Stores) {
	stores := memory.Seed()
	return NewService(stores.Users), stores
}

func TestUsersFilters(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	tests := []struct {
		name string
		f    Filter
		want []string
	}{
		{"everyone", Filter{}, []string{"1", "2", "3", "4"}},
		{"search name", Filter{Search: "alice"}, []string{"4"}},
		{"search email", Filter{Search: "JANE.SMITH@"}, []string{"2"}},
		{"role", Filter{Role: model.RoleAnalyst}, []string{"2", "4"}},
		{"status", Filter{Status: StatusInactive}, []string{"3"}},
		{"role and status", Filter{Role: model.RoleAnalyst, Status: StatusPending}, []string{"4"}},
		{"all sentinel", Filter{Role: "all", Status: "all"}, []string{"1", "2", "3", "4"}},
		{"no match", Filter{Role: model.RoleViewer, Status: StatusActive}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Users(ctx, tt.f)
			require.NoError(t, err)
			ids := make([]string, len(got))
			for i, u := range got {
				ids[i] = u.ID
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestStats(t *testing.T) {
	svc, _ := newService()

	st, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 4, Active: 2, Pending: 1, Inactive: 1}, st)
}

func TestUpdateUserChangesPermissions(t *testing.T) {
	svc, stores := newService()
	ctx := context.Background()

	msg, err := svc.UpdateUser(ctx, "3", Update{Name: "Bob Wilson", Email: "bob.wilson@example.com", Role: model.RoleAnalyst, Status: StatusActive})
	require.NoError(t, err)
	assert.Equal(t, MsgSaved, msg)

	u, err := stores.Users.Get(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAnalyst, u.Role)
	assert.Equal(t, []string{"view_analytics", "edit_patterns"}, u.Permissions)
}

func TestUpdateUserRejects(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	tests := []struct {
		name   string
		id     string
		u      Update
		status int
	}{
		{"bad email", "2", Update{Name: "Jane", Email: "jane", Role: model.RoleAnalyst, Status: StatusActive}, http.StatusBadRequest},
		{"bad role", "2", Update{Name: "Jane", Email: "jane@example.com", Role: "owner", Status: StatusActive}, http.StatusBadRequest},
		{"taken email", "2", Update{Name: "Jane", Email: "John.Doe@example.com", Role: model.RoleAnalyst, Status: StatusActive}, http.StatusConflict},
		{"last admin demoted", "1", Update{Name: "John", Email: "john.doe@example.com", Role: model.RoleViewer, Status: StatusActive}, http.StatusConflict},
		{"unknown", "99", Update{Name: "X", Email: "x@example.com", Role: model.RoleViewer, Status: StatusActive}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateUser(ctx, tt.id, tt.u)
			require.Error(t, err)
			assert.Equal(t, tt.status, apperrors.StatusOf(err))
		})
	}
}

func TestCreateAndDelete(t *testing.T) {
	svc, stores := newService()
	ctx := context.Background()

	msg, err := svc.CreateUser(ctx, Update{Name: "Carol King", Email: "carol@example.com", Role: model.RoleAdmin, Status: StatusActive})
	require.NoError(t, err)
	assert.Equal(t, MsgCreated, msg)

	all, err := stores.Users.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 5)
	carol := all[4]
	assert.Equal(t, "Carol King", carol.Name)
	assert.Contains(t, carol.Permissions, "manage_users")

	msg, err = svc.DeleteUser(ctx, "1")
	require.NoError(t, err, "another active admin remains")
	assert.Equal(t, MsgDeleted, msg)

	_, err = svc.DeleteUser(ctx, carol.ID)
	assert.ErrorIs(t, err, ErrLastAdmin)

	_, err = svc.DeleteUser(ctx, "1")
	assert.Equal(t, http.StatusNotFound, apperrors.StatusOf(err))
}
