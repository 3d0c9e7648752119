package command

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bookex/database"
	"bookex/internal/config"
	"bookex/internal/http-api/models"
	"bookex/internal/testutil"
)

// run executes the CLI against testDB with fresh flag values.
func run(t *testing.T, testDB *gorm.DB, args ...string) (string, error) {
	t.Helper()
	connect = func() (*config.Config, *gorm.DB, func(), error) {
		return &config.Config{DatabaseDriver: "sqlite", JWTSecret: "0123456789abcdef0123456789abcdef", SessionTTL: time.Hour}, testDB, func() {}, nil
	}
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestMigrate_SeedsMenuOnce(t *testing.T) {
	db := testutil.NewDB(t)

	for range 2 {
		out, err := run(t, db, "migrate")
		require.NoError(t, err)
		assert.Contains(t, out, "Schema is up to date")
	}

	var count int64
	require.NoError(t, db.Model(&models.MenuItem{}).Count(&count).Error)
	assert.Equal(t, int64(len(database.DefaultMenu)), count)
}

func TestUserCreateAndPromote(t *testing.T) {
	db := testutil.NewDB(t)

	out, err := run(t, db, "user", "create", "-u", "alice", "-p", "password123", "-e", "alice@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Role: user")

	_, err = run(t, db, "user", "create", "-u", "alice", "-p", "password123", "-e", "other@example.com")
	assert.Error(t, err)

	out, err = run(t, db, "user", "create", "-u", "root", "-p", "password123", "-e", "root@example.com", "--admin")
	require.NoError(t, err)
	assert.Contains(t, out, "Role: admin")

	_, err = run(t, db, "user", "promote", "alice")
	require.NoError(t, err)
	var alice models.User
	require.NoError(t, db.Where("username = ?", "alice").First(&alice).Error)
	assert.True(t, alice.IsAdmin())

	_, err = run(t, db, "user", "promote", "alice", "--role", "user")
	require.NoError(t, err)
	require.NoError(t, db.Where("username = ?", "alice").First(&alice).Error)
	assert.False(t, alice.IsAdmin())

	_, err = run(t, db, "user", "promote", "ghost")
	assert.ErrorContains(t, err, "not found")

	_, err = run(t, db, "user", "promote", "alice", "--role", "owner")
	assert.ErrorContains(t, err, "invalid role")
}

func TestMenuAddAndList(t *testing.T) {
	db := testutil.NewDB(t)

	out, err := run(t, db, "menu", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No menu items")

	_, err = run(t, db, "menu", "add", "Home", "/")
	require.NoError(t, err)
	_, err = run(t, db, "menu", "add", "Books", "/displaybooks")
	require.NoError(t, err)
	_, err = run(t, db, "menu", "add", "Home", "/home")
	assert.ErrorContains(t, err, "already exists")

	out, err = run(t, db, "menu", "list")
	require.NoError(t, err)
	assert.Less(t, bytes.Index([]byte(out), []byte("Home")), bytes.Index([]byte(out), []byte("Books")))
	assert.Contains(t, out, "/displaybooks")
}
