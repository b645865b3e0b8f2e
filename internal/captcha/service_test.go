package captcha

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/mallkit/internal/cache"
	"github.com/dropDatabas3/mallkit/internal/session"
)

type fakeSender struct {
	mu   sync.Mutex
	ok   bool
	sent []sentMail
}

type sentMail struct{ to, subject, body string }

func (f *fakeSender) SendMessage(ctx context.Context, to, subject, body string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{to, subject, body})
	return f.ok
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func fixedCode(code int) func() (int, error) {
	return func() (int, error) { return code, nil }
}

type fixture struct {
	svc    *Service
	store  session.Store
	sender *fakeSender
	clk    *clock
}

func newFixture(t *testing.T, senderOK bool) *fixture {
	t.Helper()
	clk := &clock{t: time.Unix(1_700_000_000, 0)}
	store := session.NewCacheStore(cache.NewMemory("test", 0), time.Hour)
	sender := &fakeSender{ok: senderOK}
	svc := NewService(store, sender, Config{}, WithClock(clk.now), WithCodeGenerator(fixedCode(424242)))
	return &fixture{svc: svc, store: store, sender: sender, clk: clk}
}

const addr = "buyer@example.com"

func TestSendCaptcha_StoresRecordAndSendsBody(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	require.NoError(t, f.svc.SendCaptcha(ctx, addr, Register))

	require.Len(t, f.sender.sent, 1)
	m := f.sender.sent[0]
	assert.Equal(t, addr, m.to)
	assert.Equal(t, "【注册账号】验证您的电子邮件", m.subject)
	assert.Contains(t, m.body, "424242")

	rec, err := f.store.Get(ctx, Register.Key(addr))
	require.NoError(t, err)
	assert.Equal(t, 424242, rec.Code)
	assert.Equal(t, f.clk.t.Unix(), rec.Time)
}

func TestSendCaptcha_ImmediateResendIsRateLimited(t *testing.T) {
	for _, p := range Purposes() {
		t.Run(p.String(), func(t *testing.T) {
			f := newFixture(t, true)
			ctx := context.Background()

			require.NoError(t, f.svc.SendCaptcha(ctx, addr, p))
			err := f.svc.SendCaptcha(ctx, addr, p)
			require.ErrorIs(t, err, ErrRateLimited)
			require.Len(t, f.sender.sent, 1, "no second delivery")
		})
	}
}

func TestSendCaptcha_CooldownBoundary(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	require.NoError(t, f.svc.SendCaptcha(ctx, addr, Forget))

	f.clk.advance(59 * time.Second)
	require.ErrorIs(t, f.svc.SendCaptcha(ctx, addr, Forget), ErrRateLimited)

	// time + 60 > now deja de cumplirse justo a los 60s
	f.clk.advance(1 * time.Second)
	require.NoError(t, f.svc.SendCaptcha(ctx, addr, Forget))
	require.Len(t, f.sender.sent, 2)
}

func TestSendCaptcha_NewSendOverwritesRecord(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	require.NoError(t, f.svc.SendCaptcha(ctx, addr, BindNew))
	f.clk.advance(2 * time.Minute)

	f.svc.newCode = fixedCode(111111)
	require.NoError(t, f.svc.SendCaptcha(ctx, addr, BindNew))

	assert.False(t, f.svc.CheckCaptcha(ctx, addr, BindNew, 424242))
	assert.True(t, f.svc.CheckCaptcha(ctx, addr, BindNew, 111111))
}

func TestSendCaptcha_DeliveryFailureStoresNothing(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	err := f.svc.SendCaptcha(ctx, addr, Register)
	require.ErrorIs(t, err, ErrSendFailed)

	has, err := f.store.Has(ctx, Register.Key(addr))
	require.NoError(t, err)
	require.False(t, has)

	// sin registro no hay cooldown
	err = f.svc.SendCaptcha(ctx, addr, Register)
	require.ErrorIs(t, err, ErrSendFailed)
	require.Len(t, f.sender.sent, 2)
}

func TestSendCaptcha_InvalidInput(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	require.ErrorIs(t, f.svc.SendCaptcha(ctx, "not-an-email", Register), ErrInvalidEmail)
	require.ErrorIs(t, f.svc.SendCaptcha(ctx, addr, Purpose(42)), ErrInvalidPurpose)
	require.Empty(t, f.sender.sent)
}

func TestCheckCaptcha_ValidWithinTTL(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	require.NoError(t, f.svc.SendCaptcha(ctx, addr, Register))

	assert.True(t, f.svc.CheckCaptcha(ctx, addr, Register, 424242))

	f.clk.advance(299 * time.Second)
	assert.True(t, f.svc.CheckCaptcha(ctx, addr, Register, 424242))
}

func TestCheckCaptcha_ExpiredAtExactlyTTL(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	require.NoError(t, f.svc.SendCaptcha(ctx, addr, Register))

	f.clk.advance(300 * time.Second)
	assert.False(t, f.svc.CheckCaptcha(ctx, addr, Register, 424242))

	f.clk.advance(time.Hour)
	assert.False(t, f.svc.CheckCaptcha(ctx, addr, Register, 424242))
}

func TestCheckCaptcha_WrongCode(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	require.NoError(t, f.svc.SendCaptcha(ctx, addr, Register))

	assert.False(t, f.svc.CheckCaptcha(ctx, addr, Register, 424243))
	// check no consume el código
	assert.True(t, f.svc.CheckCaptcha(ctx, addr, Register, 424242))
}

func TestCheckCaptcha_NoPriorSend(t *testing.T) {
	f := newFixture(t, true)
	for _, p := range Purposes() {
		assert.False(t, f.svc.CheckCaptcha(context.Background(), addr, p, 424242))
	}
	assert.False(t, f.svc.CheckCaptcha(context.Background(), addr, Purpose(-1), 424242))
}

func TestDestroyCaptcha(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	require.NoError(t, f.svc.SendCaptcha(ctx, addr, BindOld))

	require.NoError(t, f.svc.DestroyCaptcha(ctx, addr, BindOld))
	assert.False(t, f.svc.CheckCaptcha(ctx, addr, BindOld, 424242))

	// no-op si no existe
	require.NoError(t, f.svc.DestroyCaptcha(ctx, addr, BindOld))
	require.NoError(t, f.svc.DestroyCaptcha(ctx, "other@example.com", Register))
}

func TestPurposes_UseDisjointKeys(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	require.NoError(t, f.svc.SendCaptcha(ctx, addr, Register))

	assert.False(t, f.svc.CheckCaptcha(ctx, addr, Forget, 424242))
	// otro propósito no está rate-limited por el envío de Register
	require.NoError(t, f.svc.SendCaptcha(ctx, addr, Forget))

	keys := map[string]struct{}{}
	for _, p := range Purposes() {
		keys[p.Key(addr)] = struct{}{}
	}
	require.Len(t, keys, len(Purposes()))
}

func TestRandomCode_InRange(t *testing.T) {
	for i := 0; i < 500; i++ {
		c, err := randomCode()
		require.NoError(t, err)
		require.GreaterOrEqual(t, c, 100000)
		require.LessOrEqual(t, c, 999999)
		require.Len(t, strconv.Itoa(c), 6)
	}
}

func TestParsePurpose(t *testing.T) {
	p, err := ParsePurpose("bind_new")
	require.NoError(t, err)
	require.Equal(t, BindNew, p)

	p, err = ParsePurpose(" REGISTER ")
	require.NoError(t, err)
	require.Equal(t, Register, p)

	p, err = ParsePurpose("3")
	require.NoError(t, err)
	require.Equal(t, BindOld, p)

	_, err = ParsePurpose("login")
	require.ErrorIs(t, err, ErrInvalidPurpose)
}

func TestPurposeBodies(t *testing.T) {
	for _, p := range Purposes() {
		body := p.Body(123456)
		require.True(t, strings.Contains(body, "123456"), p.String())
		require.NotEmpty(t, p.Subject())
	}
}

func TestInvalidPurpose_TextsAreEmpty(t *testing.T) {
	for _, p := range []Purpose{-1, 4, 9} {
		require.NotPanics(t, func() {
			require.Empty(t, p.Subject())
			require.Empty(t, p.Body(123456))
		})
		require.Equal(t, "unknown", p.String())
	}
}

func TestUserMessage(t *testing.T) {
	require.Equal(t, "验证码发送频繁，请稍后再试", UserMessage(ErrRateLimited))
	require.Equal(t, "验证码发送失败，请稍后再试", UserMessage(ErrSendFailed))
	require.NotEmpty(t, UserMessage(errors.New("x")))
}
