package settings

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dropDatabas3/ajustes/internal/domain/repository"
	"github.com/dropDatabas3/ajustes/internal/email"
	"github.com/dropDatabas3/ajustes/internal/jwt"
	"github.com/dropDatabas3/ajustes/internal/rate"
	"github.com/dropDatabas3/ajustes/internal/rollback"
	"github.com/dropDatabas3/ajustes/internal/security/password"
	"github.com/dropDatabas3/ajustes/internal/storage"
)

// ─── Fakes de repositorios ───

type memSettings struct {
	mu      sync.Mutex
	docs    map[string]*repository.SettingsDocument
	failPut error
	puts    int
}

func newMemSettings() *memSettings {
	return &memSettings{docs: make(map[string]*repository.SettingsDocument)}
}

func (m *memSettings) Get(ctx context.Context, uid string) (*repository.SettingsDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[uid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (m *memSettings) Put(ctx context.Context, doc *repository.SettingsDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut != nil {
		return m.failPut
	}
	m.puts++
	cp := *doc
	m.docs[doc.UID] = &cp
	return nil
}

type memIdentity struct {
	mu    sync.Mutex
	recs  map[string]*repository.IdentityRecord
	reads int
}

func newMemIdentity() *memIdentity {
	return &memIdentity{recs: make(map[string]*repository.IdentityRecord)}
}

func (m *memIdentity) GetByUID(ctx context.Context, uid string) (*repository.IdentityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	rec, ok := m.recs[uid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *memIdentity) UpdateEmail(ctx context.Context, uid, email string, verified bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[uid]
	if !ok {
		return repository.ErrNotFound
	}
	rec.Email = email
	rec.EmailVerified = verified
	return nil
}

func (m *memIdentity) SetEmailVerified(ctx context.Context, uid string, verified bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[uid]
	if !ok {
		return repository.ErrNotFound
	}
	rec.EmailVerified = verified
	return nil
}

type memVerify struct {
	mu     sync.Mutex
	tokens map[string]*repository.VerificationToken
}

func newMemVerify() *memVerify {
	return &memVerify{tokens: make(map[string]*repository.VerificationToken)}
}

func (m *memVerify) Create(ctx context.Context, in repository.CreateVerificationTokenInput) (*repository.VerificationToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, t := range m.tokens {
		if t.UID == in.UID && t.UsedAt == nil {
			used := now
			t.UsedAt = &used
		}
	}
	vt := &repository.VerificationToken{
		ID:        in.TokenHash[:8],
		UID:       in.UID,
		Email:     in.Email,
		TokenHash: in.TokenHash,
		ExpiresAt: now.Add(in.TTL),
		CreatedAt: now,
	}
	m.tokens[in.TokenHash] = vt
	return vt, nil
}

func (m *memVerify) Use(ctx context.Context, tokenHash string) (*repository.VerificationToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vt, ok := m.tokens[tokenHash]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if vt.UsedAt != nil {
		return nil, repository.ErrTokenUsed
	}
	if time.Now().After(vt.ExpiresAt) {
		return nil, repository.ErrTokenExpired
	}
	now := time.Now()
	vt.UsedAt = &now
	cp := *vt
	return &cp, nil
}

func (m *memVerify) DeleteExpired(ctx context.Context) (int, error) { return 0, nil }

type fakeSender struct {
	mu    sync.Mutex
	err   error
	sent  []string // cuerpos de texto
	calls int
}

func (f *fakeSender) Send(to, subject, htmlBody, textBody string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, textBody)
	return nil
}

var linkTokenRe = regexp.MustCompile(`token=([0-9a-f]+)`)

func (f *fakeSender) lastToken(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("no se envió ningún email")
	}
	m := linkTokenRe.FindStringSubmatch(f.sent[len(f.sent)-1])
	if m == nil {
		t.Fatal("el cuerpo no contiene el token del link")
	}
	return m[1]
}

// ─── Harness ───

type env struct {
	svc       *Service
	settings  *memSettings
	identity  *memIdentity
	verify    *memVerify
	bucket    *storage.Memory
	sender    *fakeSender
	rollbacks *rollback.MemoryStore
	jwtm      *jwt.Manager
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		settings:  newMemSettings(),
		identity:  newMemIdentity(),
		verify:    newMemVerify(),
		bucket:    storage.NewMemory("http://cdn.test"),
		sender:    &fakeSender{},
		rollbacks: rollback.NewMemoryStore(),
		jwtm:      jwt.NewManager("secreto-de-test", "ajustes"),
	}

	hash, err := password.Hash(password.Default, "hunter2!")
	if err != nil {
		t.Fatal(err)
	}
	e.identity.recs["u1"] = &repository.IdentityRecord{
		UID:           "u1",
		Email:         "admin@example.com",
		EmailVerified: true,
		PasswordHash:  &hash,
		CreatedAt:     time.Now(),
	}

	emails, err := email.NewService(email.ServiceConfig{
		Sender:  e.sender,
		BaseURL: "http://panel.test",
	})
	if err != nil {
		t.Fatal(err)
	}

	e.svc = NewService(Deps{
		Settings:     e.settings,
		Identity:     e.identity,
		VerifyTokens: e.verify,
		Objects:      e.bucket,
		Emails:       emails,
		Cooldowns:    rate.NewMemoryCooldowns(),
		Rollbacks:    e.rollbacks,
		Tokens:       e.jwtm,
	})
	return e
}

func (e *env) reauth(t *testing.T) string {
	t.Helper()
	tok, err := e.svc.Reauth(context.Background(), "u1", "hunter2!")
	if err != nil {
		t.Fatalf("Reauth: %v", err)
	}
	return tok
}

func wantCode(t *testing.T, err error, code Code) {
	t.Helper()
	ae, ok := AsAccessError(err)
	if !ok {
		t.Fatalf("err = %v, want AccessError %s", err, code)
	}
	if ae.Code != code {
		t.Fatalf("code = %s, want %s", ae.Code, code)
	}
}

// ─── Tests ───

func TestLoadSettingsCreatesDefaults(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	doc, err := e.svc.LoadSettings(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if doc.Profile.Email != "admin@example.com" {
		t.Errorf("email default = %q", doc.Profile.Email)
	}
	if doc.Appearance.Theme != "system" || doc.Appearance.AccentColor != defaultAccent {
		t.Errorf("apariencia default inesperada: %+v", doc.Appearance)
	}
	if !doc.Notifications.EmailEnabled {
		t.Error("notificaciones por email deben arrancar habilitadas")
	}

	// Segunda lectura devuelve el mismo documento, no uno nuevo
	again, err := e.svc.LoadSettings(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if again.UpdatedAt != doc.UpdatedAt {
		t.Error("la segunda lectura no debe recrear el documento")
	}
}

func TestUpdateAppearanceRoundTrip(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	before, err := e.svc.LoadSettings(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}

	res, err := e.svc.UpdateAppearance(ctx, "u1", repository.AppearanceSettings{
		Theme:       "dark",
		AccentColor: "#fbbf24",
		Density:     "compact",
	})
	if err != nil {
		t.Fatalf("UpdateAppearance: %v", err)
	}
	if res.RollbackToken == "" {
		t.Fatal("mutación sin rollback token")
	}
	if res.Settings.Appearance.Theme != "dark" {
		t.Errorf("tema = %q", res.Settings.Appearance.Theme)
	}

	restored, err := e.svc.Rollback(ctx, res.RollbackToken)
	if err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if restored.Appearance != before.Appearance {
		t.Errorf("rollback no restauró la apariencia exacta:\n got %+v\nwant %+v",
			restored.Appearance, before.Appearance)
	}

	// Y el documento persistido coincide
	now, _ := e.svc.LoadSettings(ctx, "u1")
	if now.Appearance != before.Appearance {
		t.Error("el documento persistido no coincide con el snapshot restaurado")
	}
}

func TestRollbackSingleConsumption(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res, err := e.svc.UpdateNotifications(ctx, "u1", repository.NotificationSettings{
		EmailEnabled: false,
		InAppEnabled: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := e.svc.Rollback(ctx, res.RollbackToken); err != nil {
		t.Fatalf("primer rollback: %v", err)
	}
	_, err = e.svc.Rollback(ctx, res.RollbackToken)
	wantCode(t, err, CodeRollbackInvalid)
}

func TestRollbackUnknownToken(t *testing.T) {
	e := newEnv(t)
	_, err := e.svc.Rollback(context.Background(), "no-existe")
	wantCode(t, err, CodeRollbackInvalid)
}

func TestRollbackLazyExpiry(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// Avatar previo que la expiración debe limpiar
	up, err := e.svc.UploadAvatar(ctx, "u1", "image/webp", []byte("avatar-a"))
	if err != nil {
		t.Fatal(err)
	}
	res, err := e.svc.UpdateProfile(ctx, "u1", ProfileInput{AvatarStoragePath: &up.StoragePath})
	if err != nil {
		t.Fatal(err)
	}

	nuevo := []byte("avatar-b")
	up2, err := e.svc.UploadAvatar(ctx, "u1", "image/webp", nuevo)
	if err != nil {
		t.Fatal(err)
	}
	res, err = e.svc.UpdateProfile(ctx, "u1", ProfileInput{AvatarStoragePath: &up2.StoragePath})
	if err != nil {
		t.Fatal(err)
	}

	// Adelantar el reloj del servicio más allá de la ventana, sin sweep
	lenBefore := e.rollbacks.Len()
	e.svc.now = func() time.Time { return time.Now().Add(6 * time.Minute) }

	_, err = e.svc.Rollback(ctx, res.RollbackToken)
	wantCode(t, err, CodeRollbackInvalid)

	// El chequeo lazy corrió las compensaciones de expiración: el avatar
	// viejo ya no existe, el nuevo sí
	if e.bucket.Has(up.StoragePath) {
		t.Error("el avatar viejo debió borrarse al expirar")
	}
	if !e.bucket.Has(up2.StoragePath) {
		t.Error("el avatar vigente no debe borrarse")
	}

	// Y el token quedó consumido para siempre
	if e.rollbacks.Len() != lenBefore-1 {
		t.Error("la entrada vencida debe quedar eliminada")
	}
}

func TestAvatarReplaceRollbackScenario(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// Estado inicial: avatar "a"
	upA, err := e.svc.UploadAvatar(ctx, "u1", "image/webp", []byte("a"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.svc.UpdateProfile(ctx, "u1", ProfileInput{AvatarStoragePath: &upA.StoragePath}); err != nil {
		t.Fatal(err)
	}

	// Reemplazo por "b"
	upB, err := e.svc.UploadAvatar(ctx, "u1", "image/webp", []byte("b"))
	if err != nil {
		t.Fatal(err)
	}
	if !e.bucket.Has(upB.StoragePath) {
		t.Fatal("el objeto nuevo debe existir tras el upload")
	}
	res, err := e.svc.UpdateProfile(ctx, "u1", ProfileInput{AvatarStoragePath: &upB.StoragePath})
	if err != nil {
		t.Fatal(err)
	}

	// Rollback: el path vuelve a "a", el objeto "b" se borra, "a" sigue
	restored, err := e.svc.Rollback(ctx, res.RollbackToken)
	if err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if restored.Profile.AvatarStoragePath != upA.StoragePath {
		t.Errorf("path restaurado = %q, want %q", restored.Profile.AvatarStoragePath, upA.StoragePath)
	}
	if e.bucket.Has(upB.StoragePath) {
		t.Error("el avatar nuevo debe borrarse en el rollback")
	}
	if !e.bucket.Has(upA.StoragePath) {
		t.Error("el avatar previo debe seguir existiendo")
	}
}

func TestAvatarExpirySweepScenario(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	upA, _ := e.svc.UploadAvatar(ctx, "u1", "image/webp", []byte("a"))
	_, _ = e.svc.UpdateProfile(ctx, "u1", ProfileInput{AvatarStoragePath: &upA.StoragePath})
	upB, _ := e.svc.UploadAvatar(ctx, "u1", "image/webp", []byte("b"))
	if _, err := e.svc.UpdateProfile(ctx, "u1", ProfileInput{AvatarStoragePath: &upB.StoragePath}); err != nil {
		t.Fatal(err)
	}

	// Vencer todas las entradas y correr una pasada del sweep
	e.rollbacks.SetNow(func() time.Time { return time.Now().Add(6 * time.Minute) })
	sweeper := rollback.NewSweeper(e.rollbacks, e.svc.Compensator(), time.Minute)
	if _, err := sweeper.SweepOnce(ctx); err != nil {
		t.Fatal(err)
	}

	if e.bucket.Has(upA.StoragePath) {
		t.Error("tras expirar, el avatar reemplazado no debe existir")
	}
	if !e.bucket.Has(upB.StoragePath) {
		t.Error("tras expirar, el avatar vigente debe seguir existiendo")
	}
}

func TestUpdateProfilePersistFailureCleansOrphan(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// Asegurar que el documento exista antes de romper Put
	if _, err := e.svc.LoadSettings(ctx, "u1"); err != nil {
		t.Fatal(err)
	}

	up, err := e.svc.UploadAvatar(ctx, "u1", "image/webp", []byte("nuevo"))
	if err != nil {
		t.Fatal(err)
	}

	e.settings.failPut = errors.New("write timeout")
	_, err = e.svc.UpdateProfile(ctx, "u1", ProfileInput{AvatarStoragePath: &up.StoragePath})
	wantCode(t, err, CodeStoreError)

	// Sin token emitido y sin objeto huérfano
	if e.rollbacks.Len() != 0 {
		t.Error("no debe registrarse rollback si la escritura falló")
	}
	if e.bucket.Has(up.StoragePath) {
		t.Error("el avatar nuevo huérfano debe borrarse best-effort")
	}
}

func TestChangeEmailSuccessAndRollback(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res, err := e.svc.ChangeEmail(ctx, "u1", "nuevo@example.com", e.reauth(t))
	if err != nil {
		t.Fatalf("ChangeEmail: %v", err)
	}
	if res.Settings.Profile.Email != "nuevo@example.com" {
		t.Errorf("email del documento = %q", res.Settings.Profile.Email)
	}

	rec, _ := e.identity.GetByUID(ctx, "u1")
	if rec.Email != "nuevo@example.com" || rec.EmailVerified {
		t.Errorf("identidad = %q verified=%v, want nuevo sin verificar", rec.Email, rec.EmailVerified)
	}
	if e.sender.calls != 1 {
		t.Errorf("emails enviados = %d, want 1", e.sender.calls)
	}

	// El rollback restaura documento E identidad desde un solo token
	restored, err := e.svc.Rollback(ctx, res.RollbackToken)
	if err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if restored.Profile.Email != "admin@example.com" {
		t.Errorf("email restaurado = %q", restored.Profile.Email)
	}
	rec, _ = e.identity.GetByUID(ctx, "u1")
	if rec.Email != "admin@example.com" || !rec.EmailVerified {
		t.Errorf("identidad restaurada = %q verified=%v", rec.Email, rec.EmailVerified)
	}
}

func TestChangeEmailSendFailureCompensates(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.sender.err = errors.New("smtp down")

	_, err := e.svc.ChangeEmail(ctx, "u1", "nuevo@example.com", e.reauth(t))
	if err == nil {
		t.Fatal("el fallo de envío debe propagarse")
	}

	// La identidad volvió al estado previo
	rec, _ := e.identity.GetByUID(ctx, "u1")
	if rec.Email != "admin@example.com" || !rec.EmailVerified {
		t.Errorf("identidad no revertida: %q verified=%v", rec.Email, rec.EmailVerified)
	}
	// Y no quedó token de rollback
	if e.rollbacks.Len() != 0 {
		t.Error("mutación fallida no debe dejar rollback token")
	}
}

func TestChangeEmailPersistFailureCompensates(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if _, err := e.svc.LoadSettings(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	e.settings.failPut = errors.New("write timeout")

	_, err := e.svc.ChangeEmail(ctx, "u1", "nuevo@example.com", e.reauth(t))
	wantCode(t, err, CodeStoreError)

	rec, _ := e.identity.GetByUID(ctx, "u1")
	if rec.Email != "admin@example.com" || !rec.EmailVerified {
		t.Errorf("identidad no revertida tras fallo de persistencia: %q", rec.Email)
	}
}

func TestChangeEmailCooldown(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if _, err := e.svc.ChangeEmail(ctx, "u1", "nuevo@example.com", e.reauth(t)); err != nil {
		t.Fatal(err)
	}

	identityReads := e.identity.reads
	senderCalls := e.sender.calls

	_, err := e.svc.ChangeEmail(ctx, "u1", "otro@example.com", e.reauth(t))
	var ce *CooldownError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want CooldownError", err)
	}
	if ce.RetryAfter <= 0 {
		t.Error("CooldownError sin RetryAfter")
	}

	// El rechazo no tocó identidad ni transporte (el reauth previo al
	// segundo intento cuenta una lectura propia, nada más)
	if e.sender.calls != senderCalls {
		t.Error("el cooldown no debe llegar al transporte de email")
	}
	if e.identity.reads > identityReads+1 {
		t.Error("el cooldown no debe leer identidad dentro de ChangeEmail")
	}
}

func TestChangeEmailFailureDoesNotMarkCooldown(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.sender.err = errors.New("smtp down")

	if _, err := e.svc.ChangeEmail(ctx, "u1", "nuevo@example.com", e.reauth(t)); err == nil {
		t.Fatal("debe fallar")
	}

	// El intento fallido no consume la ventana
	e.sender.err = nil
	if _, err := e.svc.ChangeEmail(ctx, "u1", "nuevo@example.com", e.reauth(t)); err != nil {
		t.Errorf("el reintento inmediato tras un fallo debe permitirse: %v", err)
	}
}

func TestChangeEmailBadReauth(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.ChangeEmail(ctx, "u1", "nuevo@example.com", "token-basura")
	if !errors.Is(err, ErrReauthFailed) {
		t.Errorf("err = %v, want ErrReauthFailed", err)
	}

	// Un reauth de otro principal tampoco sirve
	otro, err := e.jwtm.IssueReauth("u2", 5*time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	_, err = e.svc.ChangeEmail(ctx, "u1", "nuevo@example.com", otro)
	if !errors.Is(err, ErrReauthFailed) {
		t.Errorf("err = %v, want ErrReauthFailed", err)
	}
}

func TestConfirmEmailFlow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if _, err := e.svc.ChangeEmail(ctx, "u1", "nuevo@example.com", e.reauth(t)); err != nil {
		t.Fatal(err)
	}

	raw := e.sender.lastToken(t)
	if err := e.svc.ConfirmEmail(ctx, raw); err != nil {
		t.Fatalf("ConfirmEmail: %v", err)
	}

	rec, _ := e.identity.GetByUID(ctx, "u1")
	if !rec.EmailVerified {
		t.Error("el email debe quedar verificado tras confirmar")
	}

	// Un link es de un solo uso
	if err := e.svc.ConfirmEmail(ctx, raw); !errors.Is(err, ErrVerificationInvalid) {
		t.Errorf("segundo uso = %v, want ErrVerificationInvalid", err)
	}
}

func TestConfirmEmailStaleLink(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res, err := e.svc.ChangeEmail(ctx, "u1", "nuevo@example.com", e.reauth(t))
	if err != nil {
		t.Fatal(err)
	}
	raw := e.sender.lastToken(t)

	// El rollback devolvió la identidad al email original: el link viejo
	// ya no verifica nada
	if _, err := e.svc.Rollback(ctx, res.RollbackToken); err != nil {
		t.Fatal(err)
	}
	if err := e.svc.ConfirmEmail(ctx, raw); !errors.Is(err, ErrVerificationInvalid) {
		t.Errorf("link obsoleto = %v, want ErrVerificationInvalid", err)
	}
}

func TestSendEmailVerificationCooldown(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// Marcar el email como no verificado
	_ = e.identity.SetEmailVerified(ctx, "u1", false)

	if err := e.svc.SendEmailVerification(ctx, "u1"); err != nil {
		t.Fatalf("SendEmailVerification: %v", err)
	}
	err := e.svc.SendEmailVerification(ctx, "u1")
	var ce *CooldownError
	if !errors.As(err, &ce) {
		t.Errorf("segundo envío = %v, want CooldownError", err)
	}
}

func TestAppearanceContrastRejectedBeforeWrite(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	before, err := e.svc.LoadSettings(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	putsBefore := e.settings.puts

	_, err = e.svc.UpdateAppearance(ctx, "u1", repository.AppearanceSettings{
		Theme:       "light",
		AccentColor: "#ffffff",
		Density:     "comfortable",
	})
	if _, ok := AsValidationError(err); !ok {
		t.Fatalf("err = %v, want ValidationError", err)
	}

	// Rechazado antes de cualquier escritura: ni documento ni token
	if e.settings.puts != putsBefore {
		t.Error("la validación debe correr antes de escribir")
	}
	if e.rollbacks.Len() != 0 {
		t.Error("no debe emitirse rollback token")
	}
	after, _ := e.svc.LoadSettings(ctx, "u1")
	if after.Appearance != before.Appearance {
		t.Error("el documento no debe cambiar")
	}
}

func TestResetAppearance(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if _, err := e.svc.UpdateAppearance(ctx, "u1", repository.AppearanceSettings{
		Theme:       "dark",
		AccentColor: "#fbbf24",
		Density:     "compact",
	}); err != nil {
		t.Fatal(err)
	}

	res, err := e.svc.ResetAppearance(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if res.Settings.Appearance != defaultAppearance() {
		t.Errorf("reset no aplicó defaults: %+v", res.Settings.Appearance)
	}
	if res.RollbackToken == "" {
		t.Error("el reset también es una mutación con deshacer")
	}
}

func TestUpdateNotificationsValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.UpdateNotifications(ctx, "u1", repository.NotificationSettings{
		EmailEnabled: true,
		QuietHours:   &repository.QuietHours{From: "25:00", To: "07:00"},
	})
	if _, ok := AsValidationError(err); !ok {
		t.Errorf("quiet hours inválidas = %v, want ValidationError", err)
	}

	res, err := e.svc.UpdateNotifications(ctx, "u1", repository.NotificationSettings{
		EmailEnabled: false,
		InAppEnabled: true,
		QuietHours:   &repository.QuietHours{From: "22:00", To: "07:00"},
	})
	if err != nil {
		t.Fatalf("notificaciones válidas rechazadas: %v", err)
	}
	if res.Settings.Notifications.EmailEnabled {
		t.Error("el toggle no se aplicó")
	}
}

func TestReauthWrongPassword(t *testing.T) {
	e := newEnv(t)
	_, err := e.svc.Reauth(context.Background(), "u1", "incorrecta")
	if !errors.Is(err, ErrReauthFailed) {
		t.Errorf("err = %v, want ErrReauthFailed", err)
	}
}

func TestValidationRejectsBadProfile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	empty := "   "
	if _, err := e.svc.UpdateProfile(ctx, "u1", ProfileInput{DisplayName: &empty}); err == nil {
		t.Error("display name vacío debe rechazarse")
	}

	long := strings.Repeat("x", maxDisplayName+1)
	if _, err := e.svc.UpdateProfile(ctx, "u1", ProfileInput{DisplayName: &long}); err == nil {
		t.Error("display name demasiado largo debe rechazarse")
	}

	badTZ := "Marte/Olympus"
	if _, err := e.svc.UpdateProfile(ctx, "u1", ProfileInput{Timezone: &badTZ}); err == nil {
		t.Error("timezone desconocida debe rechazarse")
	}
}
