package directory

import (
	"errors"
	"testing"

	"heyo-service/database"
	"heyo-service/model"
	"heyo-service/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) model.User {
	t.Helper()
	user := model.User{Username: username, Email: username + "@heyo.test", Password: "x", Role: "user"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestFindUser(t *testing.T) {
	db := newTestDB(t)
	d := New(db)
	alice := createUser(t, db, "alice")

	found, err := d.FindByID(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", found.Username)

	found, err = d.FindByLogin("alice@heyo.test")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)

	_, err = d.FindByUsername("nobody")
	assert.True(t, errors.Is(err, utils.ErrNotFound))
}

func TestFriendshipIsSymmetric(t *testing.T) {
	db := newTestDB(t)
	d := New(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")

	require.NoError(t, d.AddFriendship(bob.ID, alice.ID))
	require.NoError(t, d.AddFriendship(alice.ID, bob.ID))
	require.NoError(t, d.AddFriendship(alice.ID, carol.ID))

	ok, err := d.AreFriends(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = d.AreFriends(bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ids, err := d.FriendIDs(alice.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{bob.ID, carol.ID}, ids)

	ids, err = d.FriendIDs(bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{alice.ID}, ids)

	require.NoError(t, d.RemoveFriendship(bob.ID, alice.ID))
	ok, err = d.AreFriends(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	friends, err := d.Friends(bob.ID)
	require.NoError(t, err)
	assert.Empty(t, friends)

	assert.True(t, errors.Is(d.AddFriendship(alice.ID, alice.ID), utils.ErrBadRequest))
}

func TestSetPresence(t *testing.T) {
	db := newTestDB(t)
	d := New(db)
	alice := createUser(t, db, "alice")

	require.NoError(t, d.SetPresence(alice.ID, true))
	user, err := d.FindByID(alice.ID)
	require.NoError(t, err)
	assert.True(t, user.Online)
	assert.Nil(t, user.LastSeen)

	online, err := d.OnlineUsers()
	require.NoError(t, err)
	require.Len(t, online, 1)

	require.NoError(t, d.SetPresence(alice.ID, false))
	user, err = d.FindByID(alice.ID)
	require.NoError(t, err)
	assert.False(t, user.Online)
	assert.NotNil(t, user.LastSeen)

	assert.True(t, errors.Is(d.SetPresence(999, true), utils.ErrNotFound))
}

func TestSearch(t *testing.T) {
	db := newTestDB(t)
	d := New(db)
	alice := createUser(t, db, "Alice")
	createUser(t, db, "malice")
	createUser(t, db, "bob")

	users, err := d.Search("ALI", 0)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = d.Search("ali", alice.ID)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "malice", users[0].Username)
}

func TestSearchTreatsWildcardsLiterally(t *testing.T) {
	db := newTestDB(t)
	d := New(db)
	for _, name := range []string{"a_b", "axb", "50%off", "50xoff", `back\slash`, "backxslash"} {
		createUser(t, db, name)
	}

	cases := map[string][]string{
		"a_b":  {"a_b"},
		"%":    {"50%off"},
		`k\s`:  {`back\slash`},
		"_":    {"a_b"},
		"50%o": {"50%off"},
	}
	for query, want := range cases {
		users, err := d.Search(query, 0)
		require.NoError(t, err)
		names := make([]string, 0, len(users))
		for _, u := range users {
			names = append(names, u.Username)
		}
		assert.Equal(t, want, names, query)
	}
}
