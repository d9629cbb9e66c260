package service_test

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/propsnap/propsnap/internal/apperr"
	"github.com/propsnap/propsnap/internal/auth"
	"github.com/propsnap/propsnap/internal/cache"
	"github.com/propsnap/propsnap/internal/events"
	"github.com/propsnap/propsnap/internal/imagestore"
	"github.com/propsnap/propsnap/internal/metrics"
	"github.com/propsnap/propsnap/internal/service"
	"github.com/propsnap/propsnap/internal/store"
	"github.com/propsnap/propsnap/internal/testutil"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type testEnv struct {
	db     *gorm.DB
	svc    *service.Services
	jwt    *auth.JWTManager
	events *events.Recorder
	images *imagestore.LocalStore
	cache  *cache.Memory
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	images, err := imagestore.NewLocalStore(t.TempDir(), "http://localhost:5000/uploads", 1<<20)
	require.NoError(t, err)
	jwt, err := auth.NewJWTManager("test-secret", time.Hour, "propsnap")
	require.NoError(t, err)

	env := &testEnv{
		db:     db,
		jwt:    jwt,
		events: &events.Recorder{},
		images: images,
		cache:  cache.NewMemory(),
	}
	env.svc = service.New(service.Deps{
		Store:     store.New(db),
		Images:    images,
		Cache:     env.cache,
		Events:    env.events,
		Metrics:   metrics.New(),
		CacheTTL:  time.Minute,
		MaxImages: 3,
	}, service.AuthOptions{JWT: jwt, Hasher: auth.NewPasswordHasher(4)})
	return env
}

func (e *testEnv) storedFiles(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(e.images.Dir())
	require.NoError(t, err)
	return len(entries)
}

func png(name string) service.Upload {
	return service.Upload{Filename: name, Content: bytes.NewReader(pngHeader)}
}

func assertKind(t *testing.T, want apperr.Kind, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want.String(), apperr.KindOf(err).String(), err.Error())
}

func TestRegisterAndLogin(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	in := service.RegisterUserInput{
		Name:        "Asha",
		Email:       "asha@example.com",
		Password:    "hunter22",
		Phone:       "9876543210",
		CountryCode: "+91",
	}
	u, err := env.svc.Auth.Register(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "+919876543210", u.Phone)
	assert.NotEqual(t, "hunter22", u.Password)

	_, err = env.svc.Auth.Register(ctx, in)
	assertKind(t, apperr.KindConflict, err)

	bad := in
	bad.Email = "second@example.com"
	bad.Phone = "12345"
	_, err = env.svc.Auth.Register(ctx, bad)
	assertKind(t, apperr.KindValidation, err)

	session, err := env.svc.Auth.Login(ctx, service.LoginInput{Email: "asha@example.com", Password: "hunter22"})
	require.NoError(t, err)
	p, err := env.jwt.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.ID)

	_, err = env.svc.Auth.Login(ctx, service.LoginInput{Email: "asha@example.com", Password: "wrong-one"})
	assertKind(t, apperr.KindUnauthenticated, err)
	_, err = env.svc.Auth.Login(ctx, service.LoginInput{Email: "nobody@example.com", Password: "hunter22"})
	assertKind(t, apperr.KindUnauthenticated, err)

	long := in
	long.Email = "long@example.com"
	long.Password = strings.Repeat("a", 80)
	_, err = env.svc.Auth.Register(ctx, long)
	assertKind(t, apperr.KindValidation, err)

	// 40 characters but 80 bytes: within the tag, over bcrypt's limit.
	long.Password = strings.Repeat("é", 40)
	_, err = env.svc.Auth.Register(ctx, long)
	assertKind(t, apperr.KindValidation, err)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "password")

	me, err := env.svc.Auth.Me(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "Asha", me.Name)
}
