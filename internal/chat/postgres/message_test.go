package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/Yaroslav326/TaskManagement/internal/chat"
	"github.com/Yaroslav326/TaskManagement/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&user.User{}, &chat.Message{}))

	require.NoError(t, db.Create(&user.User{ID: 1, Username: "anna", Email: "anna@example.com"}).Error)
	require.NoError(t, db.Create(&user.User{ID: 2, Email: "boris@example.com"}).Error)

	return db
}

func TestMessageStoreAppendAndRecent(t *testing.T) {
	store := NewMessageStore(setupTestDB(t))
	ctx := context.Background()
	key := chat.ScopeKey{CompanyID: 1}

	for i := 0; i < 3; i++ {
		err := store.Append(ctx, &chat.Message{
			Body:      fmt.Sprintf("msg-%d", i),
			UserID:    1,
			CompanyID: key.CompanyID,
		})
		require.NoError(t, err)
	}

	msgs, err := store.Recent(ctx, key, 50)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "msg-0", msgs[0].Body)
	assert.Equal(t, "msg-2", msgs[2].Body)
	require.NotNil(t, msgs[0].User)
	assert.Equal(t, "anna", msgs[0].User.Username)
}

func TestMessageStoreRecentReturnsTailAscending(t *testing.T) {
	store := NewMessageStore(setupTestDB(t))
	ctx := context.Background()
	key := chat.ScopeKey{CompanyID: 1}

	for i := 0; i < 60; i++ {
		err := store.Append(ctx, &chat.Message{
			Body:      fmt.Sprintf("msg-%d", i),
			UserID:    1,
			CompanyID: key.CompanyID,
		})
		require.NoError(t, err)
	}

	msgs, err := store.Recent(ctx, key, 50)
	require.NoError(t, err)
	require.Len(t, msgs, 50)
	assert.Equal(t, "msg-10", msgs[0].Body)
	assert.Equal(t, "msg-59", msgs[49].Body)
	for i := 1; i < len(msgs); i++ {
		assert.Less(t, msgs[i-1].ID, msgs[i].ID)
	}
}

func TestMessageStoreScopeIsolation(t *testing.T) {
	store := NewMessageStore(setupTestDB(t))
	ctx := context.Background()

	companyWide := chat.ScopeKey{CompanyID: 1}
	dept := chat.ScopeKey{CompanyID: 1, DepartmentID: 5}
	otherCompany := chat.ScopeKey{CompanyID: 2}

	post := func(key chat.ScopeKey, body string) {
		err := store.Append(ctx, &chat.Message{
			Body:         body,
			UserID:       1,
			CompanyID:    key.CompanyID,
			DepartmentID: key.DepartmentRef(),
		})
		require.NoError(t, err)
	}

	post(companyWide, "company message")
	post(dept, "department message")
	post(otherCompany, "other company message")

	msgs, err := store.Recent(ctx, companyWide, 50)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "company message", msgs[0].Body)

	msgs, err = store.Recent(ctx, dept, 50)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "department message", msgs[0].Body)

	msgs, err = store.Recent(ctx, otherCompany, 50)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "other company message", msgs[0].Body)
}

func TestMessageStoreRecentEmptyScope(t *testing.T) {
	store := NewMessageStore(setupTestDB(t))

	msgs, err := store.Recent(context.Background(), chat.ScopeKey{CompanyID: 9}, 50)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
