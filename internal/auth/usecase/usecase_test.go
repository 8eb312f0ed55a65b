package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/otpauth/internal/auth/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/clock"
	"github.com/shandysiswandi/otpauth/internal/pkg/config"
	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
	"github.com/shandysiswandi/otpauth/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpauth/internal/pkg/hash"
	"github.com/shandysiswandi/otpauth/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpauth/internal/pkg/instrument"
	"github.com/shandysiswandi/otpauth/internal/pkg/jwt"
	"github.com/shandysiswandi/otpauth/internal/pkg/otp"
	"github.com/shandysiswandi/otpauth/internal/pkg/uid"
	"github.com/shandysiswandi/otpauth/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	aliceID       int64 = 1001
	alicePassword       = "p@ss"
	aliceOTP            = "123456"
	bobID         int64 = 1002
	adminID       int64 = 1
)

type fakeDB struct {
	mu    sync.Mutex
	users map[int64]entity.User
	err   error
}

func newFakeDB() *fakeDB {
	return &fakeDB{users: make(map[int64]entity.User)}
}

func (f *fakeDB) find(match func(entity.User) bool) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (f *fakeDB) GetUserByIdentifier(_ context.Context, identifier string) (*entity.User, error) {
	return f.find(func(u entity.User) bool { return u.Username == identifier || u.Contact == identifier })
}

func (f *fakeDB) GetUserByUsername(_ context.Context, username string) (*entity.User, error) {
	return f.find(func(u entity.User) bool { return u.Username == username })
}

func (f *fakeDB) GetUserByID(_ context.Context, id int64) (*entity.User, error) {
	return f.find(func(u entity.User) bool { return u.ID == id })
}

func (f *fakeDB) GetUserList(context.Context) ([]entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	out := make([]entity.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeDB) CreateUser(_ context.Context, in entity.NewUser) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Username == in.Username || u.Contact == in.Contact {
			return nil, goerror.ErrConflict
		}
	}
	u := entity.User{
		ID:           in.ID,
		Username:     in.Username,
		Contact:      in.Contact,
		Role:         in.Role,
		PasswordHash: in.PasswordHash,
		PasswordSalt: in.PasswordSalt,
	}
	f.users[u.ID] = u
	return &u, nil
}

func (f *fakeDB) UpdateUserPassword(_ context.Context, id int64, pair hash.Pair) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return goerror.ErrNotFound
	}
	u.PasswordHash, u.PasswordSalt = pair.Hash, pair.Salt
	f.users[id] = u
	return nil
}

func (f *fakeDB) DeleteUser(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[id]; !ok {
		return goerror.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeMQ struct {
	events chan OTPRequestedEvent
	err    error
}

func (f *fakeMQ) PublishOTPRequested(_ context.Context, msg OTPRequestedEvent) error {
	f.events <- msg
	return f.err
}

type fakeIdempotency struct {
	mu   sync.Mutex
	done map[string]bool
}

func (f *fakeIdempotency) Exec(ctx context.Context, key string, fn func(context.Context) error, _ ...idempotency.Option) error {
	f.mu.Lock()
	if f.done[key] {
		f.mu.Unlock()
		return idempotency.ErrAlreadyCompleted
	}
	f.mu.Unlock()

	if err := fn(ctx); err != nil {
		return err
	}

	f.mu.Lock()
	f.done[key] = true
	f.mu.Unlock()
	return nil
}

type testEnv struct {
	uc       *Usecase
	db       *fakeDB
	mq       *fakeMQ
	codec    *jwt.HS512
	clock    *clock.Manual
	password *hash.Argon2id
}

func newTestEnv(t *testing.T, env string) *testEnv {
	t.Helper()

	clk := clock.NewManual(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	codec, err := jwt.NewHS512(jwt.Config{
		Secret:     []byte(strings.Repeat("s", 64)),
		Issuer:     "otpauth-test",
		SessionTTL: time.Hour,
		Clock:      clk,
		UUID:       uid.NewUUID(),
	})
	require.NoError(t, err)

	otpHash, err := hash.NewHMACSHA256(strings.Repeat("h", 32))
	require.NoError(t, err)

	val, err := validator.NewV10Validator()
	require.NoError(t, err)

	cfg, err := config.NewViperFromBytes("yaml", []byte("app:\n  env: "+env+"\n"))
	require.NoError(t, err)

	snow, err := uid.NewSnowflake()
	require.NoError(t, err)

	enf, err := NewEnforcer(DefaultPolicies)
	require.NoError(t, err)

	gr := goroutine.NewManager(10)
	t.Cleanup(func() { _ = gr.Wait() })

	password := hash.NewArgon2id("pepper")
	db := newFakeDB()
	mq := &fakeMQ{events: make(chan OTPRequestedEvent, 8)}

	seed := func(id int64, username, contact, plain string, role entity.Role) {
		pair, err := password.Hash(plain)
		require.NoError(t, err)
		db.users[id] = entity.User{
			ID: id, Username: username, Contact: contact, Role: role,
			PasswordHash: pair.Hash, PasswordSalt: pair.Salt,
		}
	}
	seed(aliceID, "alice", "alice@example.com", alicePassword, entity.RoleUser)
	seed(bobID, "bob", "+628123456789", "b0bpassword", entity.RoleUser)
	seed(adminID, "root", "root@example.com", "rootpassword", entity.RoleAdmin)

	uc := New(Dependency{
		RepoDB:        db,
		RepoMessaging: mq,
		Idempotency:   &fakeIdempotency{done: make(map[string]bool)},
		Validator:     val,
		Config:        cfg,
		Password:      password,
		OTPHash:       otpHash,
		OTP:           otp.Static(aliceOTP),
		UID:           snow,
		Codec:         codec,
		Instrument:    instrument.NewNoop(),
		Enforcer:      enf,
		Goroutine:     gr,
	})

	return &testEnv{uc: uc, db: db, mq: mq, codec: codec, clock: clk, password: password}
}

func (e *testEnv) nextEvent(t *testing.T) OTPRequestedEvent {
	t.Helper()
	select {
	case evt := <-e.mq.events:
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("otp delivery was not published")
		return OTPRequestedEvent{}
	}
}

func (e *testEnv) noEvent(t *testing.T) {
	t.Helper()
	select {
	case evt := <-e.mq.events:
		t.Fatalf("unexpected otp delivery for %s", evt.Username)
	case <-time.After(50 * time.Millisecond):
	}
}

func asIdentityCtx(u entity.User) context.Context {
	return jwt.SetAuth(context.Background(), toIdentity(u))
}

func assertUnauthorized(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, goerror.IsCode(err, goerror.CodeUnauthorized), "want unauthorized, got %v", err)
}

func TestUsecase_IsDevelopment(t *testing.T) {
	assert.True(t, newTestEnv(t, "development").uc.IsDevelopment())
	assert.True(t, newTestEnv(t, "TEST").uc.IsDevelopment())
	assert.False(t, newTestEnv(t, "production").uc.IsDevelopment())
}

func TestUsecase_Register(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t, "test")

		// Act
		resp, err := env.uc.Register(context.Background(), RegisterInput{
			Username: "carol",
			Contact:  " Carol@Example.com ",
			Password: "carolpassword",
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "carol", resp.Username)
		assert.Equal(t, "carol@example.com", resp.Contact)
		assert.Equal(t, "user", resp.Role)

		stored, err := env.db.GetUserByUsername(context.Background(), "carol")
		require.NoError(t, err)
		assert.True(t, env.password.Verify("carolpassword", hash.Pair{Hash: stored.PasswordHash, Salt: stored.PasswordSalt}))
	})

	t.Run("Conflict", func(t *testing.T) {
		env := newTestEnv(t, "test")

		_, err := env.uc.Register(context.Background(), RegisterInput{
			Username: "alice",
			Contact:  "other@example.com",
			Password: "alicepassword",
		})

		assert.True(t, goerror.IsCode(err, goerror.CodeConflict))
	})

	t.Run("InvalidInput", func(t *testing.T) {
		env := newTestEnv(t, "test")

		_, err := env.uc.Register(context.Background(), RegisterInput{
			Username: "dave",
			Contact:  "not a contact",
			Password: "short",
		})

		assert.True(t, goerror.IsCode(err, goerror.CodeInvalidInput))
	})

	t.Run("NumericUsernameRejected", func(t *testing.T) {
		env := newTestEnv(t, "test")

		_, err := env.uc.Register(context.Background(), RegisterInput{
			Username: "628123456789",
			Contact:  "dana@example.com",
			Password: "danapassword",
		})

		assert.True(t, goerror.IsCode(err, goerror.CodeInvalidInput))
		_, err = env.db.GetUserByUsername(context.Background(), "628123456789")
		assert.ErrorIs(t, err, goerror.ErrNotFound)
	})

	t.Run("IdempotentRetry", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t, "test")
		in := RegisterInput{
			IdempotencyKey: "key-1",
			Username:       "erin",
			Contact:        "erin@example.com",
			Password:       "erinpassword",
		}

		// Act
		first, err1 := env.uc.Register(context.Background(), in)
		_, err2 := env.uc.Register(context.Background(), in)

		// Assert
		require.NoError(t, err1)
		assert.Equal(t, "erin", first.Username)
		assert.True(t, goerror.IsCode(err2, goerror.CodeConflict))
	})
}

func TestUsecase_RequestOTP(t *testing.T) {
	t.Run("ByUsernameEmailOrPhone", func(t *testing.T) {
		for _, identifier := range []string{"alice", "alice@example.com"} {
			env := newTestEnv(t, "test")

			chal, err := env.uc.RequestOTP(context.Background(), RequestOTPInput{Identifier: identifier})

			require.NoError(t, err)
			assert.NotEmpty(t, chal.Token)
			assert.Equal(t, aliceOTP, chal.Code)
			evt := env.nextEvent(t)
			assert.Equal(t, aliceID, evt.UserID)
			assert.Equal(t, "alice@example.com", evt.Contact)
			assert.Equal(t, aliceOTP, evt.Code)
		}

		env := newTestEnv(t, "test")
		_, err := env.uc.RequestOTP(context.Background(), RequestOTPInput{Identifier: "+628123456789"})
		require.NoError(t, err)
		assert.Equal(t, bobID, env.nextEvent(t).UserID)
	})

	t.Run("ChallengeTokenHoldsNoPlaintext", func(t *testing.T) {
		env := newTestEnv(t, "test")

		chal, err := env.uc.RequestOTP(context.Background(), RequestOTPInput{Identifier: "alice"})
		require.NoError(t, err)

		p, err := jwt.VerifyAs[jwt.ChallengePayload](env.codec, chal.Token)
		require.NoError(t, err)
		assert.NotContains(t, p.Hash, aliceOTP)
		assert.NotContains(t, p.Salt, aliceOTP)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		env := newTestEnv(t, "test")

		_, err := env.uc.RequestOTP(context.Background(), RequestOTPInput{Identifier: "mallory"})

		assertUnauthorized(t, err)
		env.noEvent(t)
	})

	t.Run("DeliveryFailureDoesNotFail", func(t *testing.T) {
		env := newTestEnv(t, "test")
		env.mq.err = errors.New("broker down")

		chal, err := env.uc.RequestOTP(context.Background(), RequestOTPInput{Identifier: "alice"})

		require.NoError(t, err)
		assert.NotEmpty(t, chal.Token)
		env.nextEvent(t)
	})

	t.Run("RepositoryError", func(t *testing.T) {
		env := newTestEnv(t, "test")
		env.db.err = errors.New("connection reset")

		_, err := env.uc.RequestOTP(context.Background(), RequestOTPInput{Identifier: "alice"})

		assert.True(t, goerror.IsCode(err, goerror.CodeInternal))
	})
	t.Run("MalformedInputIsUnauthorized", func(t *testing.T) {
		env := newTestEnv(t, "test")

		for _, identifier := range []string{"", "   ", strings.Repeat("a", 256)} {
			_, err := env.uc.RequestOTP(context.Background(), RequestOTPInput{Identifier: identifier})
			assertUnauthorized(t, err)
		}
		env.noEvent(t)
	})
}

func TestUsecase_VerifyOTP(t *testing.T) {
	request := func(t *testing.T, env *testEnv) string {
		t.Helper()
		chal, err := env.uc.RequestOTP(context.Background(), RequestOTPInput{Identifier: "alice"})
		require.NoError(t, err)
		env.nextEvent(t)
		return chal.Token
	}

	t.Run("Success", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t, "test")
		token := request(t, env)

		// Act
		sess, err := env.uc.VerifyOTP(context.Background(), VerifyOTPInput{Username: "alice", ChallengeToken: token, OTP: aliceOTP})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, aliceID, sess.User.UserID)

		raw, ok := jwt.UnwrapBearer(sess.SessionToken)
		require.True(t, ok)
		sp, err := jwt.VerifyAs[jwt.SessionPayload](env.codec, raw)
		require.NoError(t, err)
		assert.Equal(t, "alice", sp.Identity.Username)

		dp, err := jwt.VerifyAs[jwt.DevicePayload](env.codec, sess.DeviceToken)
		require.NoError(t, err)
		assert.Equal(t, aliceID, dp.UserID)
	})

	t.Run("WrongOTP", func(t *testing.T) {
		env := newTestEnv(t, "test")
		token := request(t, env)

		sess, err := env.uc.VerifyOTP(context.Background(), VerifyOTPInput{Username: "alice", ChallengeToken: token, OTP: "654321"})

		assertUnauthorized(t, err)
		assert.Nil(t, sess)
	})

	t.Run("MissingOrForeignToken", func(t *testing.T) {
		env := newTestEnv(t, "test")
		device, err := env.codec.Sign(jwt.DevicePayload{UserID: aliceID})
		require.NoError(t, err)

		for _, token := range []string{"", "garbage", device} {
			_, err := env.uc.VerifyOTP(context.Background(), VerifyOTPInput{Username: "alice", ChallengeToken: token, OTP: aliceOTP})
			assertUnauthorized(t, err)
		}
	})

	t.Run("ExpiredChallenge", func(t *testing.T) {
		env := newTestEnv(t, "test")
		token := request(t, env)
		env.clock.Advance(15*time.Minute + time.Second)

		_, err := env.uc.VerifyOTP(context.Background(), VerifyOTPInput{Username: "alice", ChallengeToken: token, OTP: aliceOTP})

		assertUnauthorized(t, err)
	})

	t.Run("UnknownUsername", func(t *testing.T) {
		env := newTestEnv(t, "test")
		token := request(t, env)

		_, err := env.uc.VerifyOTP(context.Background(), VerifyOTPInput{Username: "mallory", ChallengeToken: token, OTP: aliceOTP})

		assertUnauthorized(t, err)
	})
	t.Run("ChallengeBoundToRequestingUser", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t, "test")
		chal, err := env.uc.RequestOTP(context.Background(), RequestOTPInput{Identifier: "bob"})
		require.NoError(t, err)
		evt := env.nextEvent(t)
		require.Equal(t, "+628123456789", evt.Contact)

		// Act
		asAlice, errAlice := env.uc.VerifyOTP(context.Background(), VerifyOTPInput{Username: "alice", ChallengeToken: chal.Token, OTP: evt.Code})
		asBob, errBob := env.uc.VerifyOTP(context.Background(), VerifyOTPInput{Username: "bob", ChallengeToken: chal.Token, OTP: evt.Code})

		// Assert
		assertUnauthorized(t, errAlice)
		assert.Nil(t, asAlice)
		require.NoError(t, errBob)
		assert.Equal(t, bobID, asBob.User.UserID)
	})

	t.Run("PasswordChallengeBoundToUser", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t, "test")
		out, err := env.uc.LoginPassword(context.Background(), LoginPasswordInput{Username: "bob", Password: "b0bpassword"})
		require.NoError(t, err)
		require.NotNil(t, out.Challenge)
		evt := env.nextEvent(t)

		// Act
		_, err = env.uc.VerifyOTP(context.Background(), VerifyOTPInput{Username: "alice", ChallengeToken: out.Challenge.Token, OTP: evt.Code})

		// Assert
		assertUnauthorized(t, err)
	})

	t.Run("MalformedInputIsUnauthorized", func(t *testing.T) {
		env := newTestEnv(t, "test")
		token := request(t, env)

		for _, in := range []VerifyOTPInput{
			{Username: "alice", ChallengeToken: token, OTP: ""},
			{Username: "alice", ChallengeToken: token, OTP: strings.Repeat("1", 17)},
			{Username: "  ", ChallengeToken: token, OTP: aliceOTP},
		} {
			sess, err := env.uc.VerifyOTP(context.Background(), in)
			assertUnauthorized(t, err)
			assert.Nil(t, sess)
		}
	})
}

func TestUsecase_LoginPasswordOnly(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		env := newTestEnv(t, "test")

		resp, err := env.uc.LoginPasswordOnly(context.Background(), LoginPasswordOnlyInput{Username: "alice", Password: alicePassword})

		require.NoError(t, err)
		assert.Equal(t, UserResponse{UserID: aliceID, Username: "alice", Contact: "alice@example.com", Role: "user"}, *resp)
		env.noEvent(t)
	})

	t.Run("WrongPasswordOrUnknownUser", func(t *testing.T) {
		env := newTestEnv(t, "test")

		_, err1 := env.uc.LoginPasswordOnly(context.Background(), LoginPasswordOnlyInput{Username: "alice", Password: "wrong"})
		_, err2 := env.uc.LoginPasswordOnly(context.Background(), LoginPasswordOnlyInput{Username: "mallory", Password: alicePassword})

		assertUnauthorized(t, err1)
		assertUnauthorized(t, err2)
		assert.Equal(t, err1.Error(), err2.Error())
		env.noEvent(t)
	})
	t.Run("MalformedInputIsUnauthorized", func(t *testing.T) {
		env := newTestEnv(t, "test")

		for _, in := range []LoginPasswordOnlyInput{
			{Username: "alice", Password: strings.Repeat("p", 73)},
			{Username: "alice", Password: ""},
			{Username: "", Password: alicePassword},
		} {
			_, err := env.uc.LoginPasswordOnly(context.Background(), in)
			assertUnauthorized(t, err)
		}

		out, err := env.uc.LoginPassword(context.Background(), LoginPasswordInput{Username: "alice", Password: strings.Repeat("p", 73)})
		assertUnauthorized(t, err)
		assert.Nil(t, out)
		env.noEvent(t)
	})
}

func TestUsecase_LoginPassword(t *testing.T) {
	deviceFor := func(t *testing.T, env *testEnv, userID int64) string {
		t.Helper()
		tok, err := env.codec.Sign(jwt.DevicePayload{UserID: userID})
		require.NoError(t, err)
		return tok
	}

	t.Run("TrustedMatch", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t, "test")

		// Act
		out, err := env.uc.LoginPassword(context.Background(), LoginPasswordInput{
			Username: "alice", Password: alicePassword, DeviceToken: deviceFor(t, env, aliceID),
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, entity.BranchTrustedMatch, out.Branch)
		require.NotNil(t, out.Session)
		assert.Nil(t, out.Challenge)
		assert.True(t, strings.HasPrefix(out.Session.SessionToken, jwt.BearerPrefix))
		assert.NotEmpty(t, out.Session.DeviceToken)
		env.noEvent(t)
	})

	t.Run("TrustedMismatch", func(t *testing.T) {
		env := newTestEnv(t, "test")

		out, err := env.uc.LoginPassword(context.Background(), LoginPasswordInput{
			Username: "alice", Password: alicePassword, DeviceToken: deviceFor(t, env, bobID),
		})

		require.NoError(t, err)
		assert.Equal(t, entity.BranchTrustedMismatch, out.Branch)
		assert.Nil(t, out.Session)
		require.NotNil(t, out.Challenge)
		_, err = jwt.VerifyAs[jwt.ChallengePayload](env.codec, out.Challenge.Token)
		assert.NoError(t, err)
		assert.Equal(t, aliceID, env.nextEvent(t).UserID)
	})

	t.Run("Untrusted", func(t *testing.T) {
		for name, device := range map[string]string{"Absent": "", "Garbage": "x.y.z"} {
			t.Run(name, func(t *testing.T) {
				env := newTestEnv(t, "test")

				out, err := env.uc.LoginPassword(context.Background(), LoginPasswordInput{
					Username: "alice", Password: alicePassword, DeviceToken: device,
				})

				require.NoError(t, err)
				assert.Equal(t, entity.BranchUntrusted, out.Branch)
				assert.Nil(t, out.Session)
				require.NotNil(t, out.Challenge)
				env.nextEvent(t)
			})
		}
	})

	t.Run("ExpiredDeviceIsUntrusted", func(t *testing.T) {
		env := newTestEnv(t, "test")
		device := deviceFor(t, env, aliceID)
		env.clock.Advance(31 * 24 * time.Hour)

		out, err := env.uc.LoginPassword(context.Background(), LoginPasswordInput{
			Username: "alice", Password: alicePassword, DeviceToken: device,
		})

		require.NoError(t, err)
		assert.Equal(t, entity.BranchUntrusted, out.Branch)
		env.nextEvent(t)
	})

	t.Run("WrongPasswordNeverIssuesTokens", func(t *testing.T) {
		env := newTestEnv(t, "test")

		for _, device := range []string{"", deviceFor(t, env, aliceID), deviceFor(t, env, bobID)} {
			out, err := env.uc.LoginPassword(context.Background(), LoginPasswordInput{
				Username: "alice", Password: "wrong", DeviceToken: device,
			})

			assertUnauthorized(t, err)
			assert.Nil(t, out)
		}
		env.noEvent(t)
	})
}

// TestUsecase_AliceScenario walks a full login cycle: OTP login, then a
// password login on the now-known device, then the same without the device.
func TestUsecase_AliceScenario(t *testing.T) {
	env := newTestEnv(t, "test")
	ctx := context.Background()

	chal, err := env.uc.RequestOTP(ctx, RequestOTPInput{Identifier: "alice"})
	require.NoError(t, err)
	env.nextEvent(t)

	s1, err := env.uc.VerifyOTP(ctx, VerifyOTPInput{Username: "alice", ChallengeToken: chal.Token, OTP: aliceOTP})
	require.NoError(t, err)
	require.NotEmpty(t, s1.SessionToken)
	require.NotEmpty(t, s1.DeviceToken)

	fast, err := env.uc.LoginPassword(ctx, LoginPasswordInput{Username: "alice", Password: alicePassword, DeviceToken: s1.DeviceToken})
	require.NoError(t, err)
	assert.Equal(t, entity.BranchTrustedMatch, fast.Branch)
	require.NotNil(t, fast.Session)
	env.noEvent(t)

	slow, err := env.uc.LoginPassword(ctx, LoginPasswordInput{Username: "alice", Password: alicePassword})
	require.NoError(t, err)
	assert.Equal(t, entity.BranchUntrusted, slow.Branch)
	assert.Nil(t, slow.Session)
	require.NotNil(t, slow.Challenge)
	env.nextEvent(t)
}

func TestUsecase_PasswordChange(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		env := newTestEnv(t, "test")
		ctx := asIdentityCtx(env.db.users[aliceID])

		err := env.uc.PasswordChange(ctx, PasswordChangeInput{CurrentPassword: alicePassword, NewPassword: "n3w-password"})

		require.NoError(t, err)
		_, err = env.uc.LoginPasswordOnly(context.Background(), LoginPasswordOnlyInput{Username: "alice", Password: "n3w-password"})
		assert.NoError(t, err)
		_, err = env.uc.LoginPasswordOnly(context.Background(), LoginPasswordOnlyInput{Username: "alice", Password: alicePassword})
		assertUnauthorized(t, err)
	})

	t.Run("WrongCurrent", func(t *testing.T) {
		env := newTestEnv(t, "test")
		ctx := asIdentityCtx(env.db.users[aliceID])

		err := env.uc.PasswordChange(ctx, PasswordChangeInput{CurrentPassword: "nope", NewPassword: "n3w-password"})

		assertUnauthorized(t, err)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		env := newTestEnv(t, "test")

		err := env.uc.PasswordChange(context.Background(), PasswordChangeInput{CurrentPassword: alicePassword, NewPassword: "n3w-password"})

		assertUnauthorized(t, err)
	})
}

func TestUsecase_UserManagement(t *testing.T) {
	t.Run("AdminListsUsers", func(t *testing.T) {
		env := newTestEnv(t, "test")

		users, err := env.uc.UserList(asIdentityCtx(env.db.users[adminID]))

		require.NoError(t, err)
		assert.Len(t, users, 3)
	})

	t.Run("UserForbidden", func(t *testing.T) {
		env := newTestEnv(t, "test")
		ctx := asIdentityCtx(env.db.users[aliceID])

		_, err := env.uc.UserList(ctx)
		assert.True(t, goerror.IsCode(err, goerror.CodeForbidden))

		err = env.uc.UserDelete(ctx, UserDeleteInput{ID: bobID})
		assert.True(t, goerror.IsCode(err, goerror.CodeForbidden))
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		env := newTestEnv(t, "test")

		_, err := env.uc.UserList(context.Background())

		assertUnauthorized(t, err)
	})

	t.Run("AdminDeletesUser", func(t *testing.T) {
		env := newTestEnv(t, "test")
		ctx := asIdentityCtx(env.db.users[adminID])

		require.NoError(t, env.uc.UserDelete(ctx, UserDeleteInput{ID: bobID}))

		err := env.uc.UserDelete(ctx, UserDeleteInput{ID: bobID})
		assert.True(t, goerror.IsCode(err, goerror.CodeNotFound))

		err = env.uc.UserDelete(ctx, UserDeleteInput{ID: adminID})
		assert.True(t, goerror.IsCode(err, goerror.CodeForbidden))
	})
}

func TestUsecase_Refresh(t *testing.T) {
	env := newTestEnv(t, "test")

	id, err := env.uc.Refresh(asIdentityCtx(env.db.users[aliceID]))
	require.NoError(t, err)
	assert.Equal(t, aliceID, id.UserID)

	_, err = env.uc.Refresh(context.Background())
	assertUnauthorized(t, err)
}

func TestUsecase_DevToken(t *testing.T) {
	in := DevTokenInput{UserID: 77, Username: "tester", Role: "admin"}

	t.Run("Development", func(t *testing.T) {
		env := newTestEnv(t, "development")

		sess, err := env.uc.DevToken(context.Background(), in)

		require.NoError(t, err)
		raw, ok := jwt.UnwrapBearer(sess.SessionToken)
		require.True(t, ok)
		sp, err := jwt.VerifyAs[jwt.SessionPayload](env.codec, raw)
		require.NoError(t, err)
		assert.Equal(t, "admin", sp.Identity.Role)
	})

	t.Run("Production", func(t *testing.T) {
		env := newTestEnv(t, "production")

		sess, err := env.uc.DevToken(context.Background(), in)

		assert.Nil(t, sess)
		assert.True(t, goerror.IsCode(err, goerror.CodeNotFound))
	})
}
